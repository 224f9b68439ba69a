package chrono

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"github.com/ersonp/lore-timeline/internal/domain/entities"
)

var (
	// reBracketedEra matches a designator wrapped in brackets, e.g. "[Age 2] 340".
	reBracketedEra = regexp.MustCompile(`^[\[(]([^\])]+)[\])]\s*(.*)$`)
	// reYearQualifiers matches a year with optional month and day, separated
	// by "-", "/", ".", "," or spaces.
	reYearQualifiers = regexp.MustCompile(`^(\d+)(?:[-/.,\s]+(\d{1,2})\b(?:[-/.,\s]+(\d{1,2})\b)?)?`)
	// rePlainDate matches YYYY, YYYY-MM and YYYY-MM-DD.
	rePlainDate = regexp.MustCompile(`^(-?\d+)(?:[-/.](\d{1,2})(?:[-/.](\d{1,2}))?)?$`)
)

// eraDateRule is one way of reading an era-qualified date. Rules are tried
// in order and the first match wins.
type eraDateRule func(s string) (entities.EraDate, bool)

var eraDateRules = []eraDateRule{
	parseBracketedEraDate,
	parsePrefixedEraDate,
}

// ParseEraDate reads a date of the form "<era> <year>[-<month>[-<day>]]".
// The era is whatever precedes the first digit ("SE", "A.C."), or a
// bracketed token which may hold digits ("[Age 2]"). It reports false when
// the input has no era designator or no year.
func ParseEraDate(raw string) (entities.EraDate, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return entities.EraDate{}, false
	}
	// An opening bracket commits to a bracketed designator.
	if s[0] == '[' || s[0] == '(' {
		return parseBracketedEraDate(s)
	}
	for _, rule := range eraDateRules {
		if d, ok := rule(s); ok {
			return d, true
		}
	}
	return entities.EraDate{}, false
}

func parseBracketedEraDate(s string) (entities.EraDate, bool) {
	m := reBracketedEra.FindStringSubmatch(s)
	if m == nil {
		return entities.EraDate{}, false
	}
	era := strings.TrimSpace(m[1])
	rest := strings.TrimSpace(m[2])
	negative := false
	if strings.HasPrefix(rest, "-") {
		negative = true
		rest = rest[1:]
	}
	return qualifiedDate(era, rest, negative)
}

func parsePrefixedEraDate(s string) (entities.EraDate, bool) {
	idx := strings.IndexFunc(s, isASCIIDigit)
	if idx <= 0 {
		return entities.EraDate{}, false
	}
	label := s[:idx]
	rest := s[idx:]

	// A minus directly before the year is a sign when it stands apart from
	// the designator: "BE -20" is year -20 of BE, "BE-20" is year 20.
	negative := false
	if strings.HasSuffix(label, "-") {
		before := strings.TrimSuffix(label, "-")
		if before == "" || strings.HasSuffix(before, " ") || strings.HasSuffix(before, "\t") {
			negative = true
			label = before
		}
	}

	era := strings.TrimRightFunc(label, func(r rune) bool {
		return unicode.IsSpace(r) || r == ':' || r == ',' || r == '-' || r == '/'
	})
	era = strings.TrimSpace(era)
	if unclosedBracket(era) {
		return entities.EraDate{}, false
	}
	return qualifiedDate(era, rest, negative)
}

// unclosedBracket reports whether label opens a "[" or "(" it never closes.
func unclosedBracket(label string) bool {
	return strings.Count(label, "[") > strings.Count(label, "]") ||
		strings.Count(label, "(") > strings.Count(label, ")")
}

func qualifiedDate(era, rest string, negative bool) (entities.EraDate, bool) {
	if era == "" {
		return entities.EraDate{}, false
	}
	m := reYearQualifiers.FindStringSubmatch(rest)
	if m == nil {
		return entities.EraDate{}, false
	}
	year, err := strconv.Atoi(m[1])
	if err != nil {
		return entities.EraDate{}, false
	}
	if negative {
		year = -year
	}
	return entities.EraDate{
		Era:   era,
		Year:  year,
		Month: atoiOrZero(m[2]),
		Day:   atoiOrZero(m[3]),
	}, true
}

// PlainDate is a calendar date without an era.
type PlainDate struct {
	Year  int
	Month int
	Day   int
}

// ParsePlainDate reads YYYY, YYYY-MM or YYYY-MM-DD ("/" and "." also work as
// separators). The year may be negative.
func ParsePlainDate(raw string) (PlainDate, bool) {
	m := rePlainDate.FindStringSubmatch(strings.TrimSpace(raw))
	if m == nil {
		return PlainDate{}, false
	}
	year, err := strconv.Atoi(m[1])
	if err != nil {
		return PlainDate{}, false
	}
	return PlainDate{Year: year, Month: atoiOrZero(m[2]), Day: atoiOrZero(m[3])}, true
}

func isASCIIDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

func atoiOrZero(s string) int {
	if s == "" {
		return 0
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return v
}
