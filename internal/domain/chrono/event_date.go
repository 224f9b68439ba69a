package chrono

import (
	"fmt"
	"strings"

	"github.com/ersonp/lore-timeline/internal/domain/entities"
)

// approximateMarkers prefix a date written as "about then".
var approximateMarkers = []string{"~", "circa ", "approx. ", "approx ", "ca. ", "c. "}

// rangeSeparator splits the two ends of a range.
const rangeSeparator = ".."

// ParseEventDate reads user or model supplied date text:
//
//	"SE 300-04-02"      exact, era SE
//	"1999-05-01"        exact, no era
//	"~SE 300", "c. SE"  approximate (the year may be missing)
//	"SE 300 .. SE 310"  range; an end without era inherits the start's era
//
// Anything else yields an unresolved date.
func ParseEventDate(raw string) entities.EventDate {
	s := strings.TrimSpace(raw)
	if s == "" {
		return entities.EventDate{}
	}

	if start, end, found := strings.Cut(s, rangeSeparator); found {
		return parseRange(start, end)
	}

	if rest, ok := trimApproximate(s); ok {
		if c, ok := parsePoint(rest); ok {
			return entities.ApproximateDate(c)
		}
		if rest != "" && strings.IndexFunc(rest, isASCIIDigit) < 0 {
			return entities.ApproximateDate(entities.CalendarDate{Era: rest})
		}
		return entities.EventDate{}
	}

	if c, ok := parsePoint(s); ok {
		return entities.EventDate{Kind: entities.DateExact, CalendarDate: c}
	}
	return entities.EventDate{}
}

func parseRange(startText, endText string) entities.EventDate {
	start, ok := parsePoint(startText)
	if !ok {
		return entities.EventDate{}
	}
	end, ok := parsePoint(endText)
	if !ok {
		return entities.EventDate{}
	}
	if end.Era == "" {
		end.Era = start.Era
	}
	return entities.RangeDate(start, end)
}

func trimApproximate(s string) (string, bool) {
	lower := strings.ToLower(s)
	for _, marker := range approximateMarkers {
		if strings.HasPrefix(lower, marker) {
			return strings.TrimSpace(s[len(marker):]), true
		}
	}
	return s, false
}

func parsePoint(s string) (entities.CalendarDate, bool) {
	s = strings.TrimSpace(s)
	if d, ok := ParseEraDate(s); ok {
		return entities.Calendar(d.Era, d.Year, d.Month, d.Day), true
	}
	if d, ok := ParsePlainDate(s); ok {
		return entities.Calendar("", d.Year, d.Month, d.Day), true
	}
	return entities.CalendarDate{}, false
}

// FormatEventDate renders a date in the form ParseEventDate reads.
func FormatEventDate(d entities.EventDate) string {
	switch d.Kind {
	case entities.DateExact:
		if !d.HasYear() {
			return "unknown"
		}
		return formatPoint(d.CalendarDate)
	case entities.DateApproximate:
		if !d.HasYear() {
			if era := d.EraLabel(); era != "" {
				return "~" + era
			}
			return "~unknown"
		}
		return "~" + formatPoint(d.CalendarDate)
	case entities.DateRange:
		if d.Start == nil || d.End == nil || !d.Start.HasYear() || !d.End.HasYear() {
			return "unknown"
		}
		return formatPoint(*d.Start) + " " + rangeSeparator + " " + formatPoint(*d.End)
	default:
		return "unknown"
	}
}

func formatPoint(c entities.CalendarDate) string {
	var b strings.Builder
	if era := c.EraLabel(); era != "" {
		if strings.IndexFunc(era, isASCIIDigit) >= 0 || strings.HasSuffix(era, "-") {
			b.WriteString("[" + era + "]")
		} else {
			b.WriteString(era)
		}
		b.WriteString(" ")
	}
	fmt.Fprintf(&b, "%d", *c.Year)
	if c.Month > 0 {
		fmt.Fprintf(&b, "-%02d", c.Month)
		if c.Day > 0 {
			fmt.Fprintf(&b, "-%02d", c.Day)
		}
	}
	return b.String()
}
