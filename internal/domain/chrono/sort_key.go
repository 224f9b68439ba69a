package chrono

import (
	"cmp"
	"math"
	"strings"
	"unicode/utf8"

	"github.com/ersonp/lore-timeline/internal/domain/entities"
)

// Placement says how much a SortKey can be trusted.
type Placement int

const (
	// PlacementLast marks a date that cannot be placed; it sorts after
	// everything else.
	PlacementLast Placement = iota
	// PlacementUnranked is a deterministic best-effort key: the date has no
	// era, or its era is missing from the era ordering. Its position relative
	// to ranked dates is not meaningful.
	PlacementUnranked
	// PlacementRanked is a key whose era was found in the era ordering.
	PlacementRanked
)

func (p Placement) String() string {
	switch p {
	case PlacementRanked:
		return "ranked"
	case PlacementUnranked:
		return "unranked"
	default:
		return "last"
	}
}

const (
	// LastValue is the key value of dates that sort last.
	LastValue int64 = math.MaxInt64

	// MaxSortableYear bounds the year magnitude used in keys. Larger years
	// are clamped so that keys never overflow.
	MaxSortableYear = 10_000_000_000

	// MaxRankedEras bounds the era index used in ranked keys. Eras at this
	// index or later share one rank.
	MaxRankedEras = 9_000

	eraStride        int64 = 1_000_000_000_000_000
	yearStride       int64 = 10_000
	monthStride      int64 = 100
	unknownEraStride int64 = 1_000
	maxMonthOrDay          = 99
)

// SortKey is a single comparable integer for a date plus a tag telling
// whether the era ordering could place it.
type SortKey struct {
	Value     int64
	Placement Placement
	// EraIndex is the rank of the date's era, or -1 when unranked.
	EraIndex int
}

// Trusted reports whether the key is ranked by a known era.
func (k SortKey) Trusted() bool {
	return k.Placement == PlacementRanked
}

// Compare orders two keys: negative when k sorts before o.
func (k SortKey) Compare(o SortKey) int {
	return cmp.Compare(k.Value, o.Value)
}

var lastKey = SortKey{Value: LastValue, Placement: PlacementLast, EraIndex: -1}

// Key computes the chronological sort key of date against an era ordering.
// Ranges sort by their start. Approximate dates without a year, unresolved
// dates and nil sort last.
//
// A date whose era is at index i of eraOrder sorts after every date of the
// eras before i whatever the year. Eras from index MaxRankedEras on collapse
// into one rank and order among themselves by year alone. A date whose era is not in eraOrder gets
// firstRune(era)*1000 + year*10000 + month*100 + day, and an era-less date
// gets year*10000 + month*100 + day. Both are stable for the same input but
// do not order correctly against ranked dates.
func Key(date *entities.EventDate, eraOrder []string) SortKey {
	if date == nil {
		return lastKey
	}
	switch date.Kind {
	case entities.DateRange:
		if date.Start == nil {
			return lastKey
		}
		return pointKey(*date.Start, eraOrder)
	case entities.DateExact, entities.DateApproximate:
		return pointKey(date.CalendarDate, eraOrder)
	default:
		return lastKey
	}
}

// KeyWithEras is Key using the ordering of an era table.
func KeyWithEras(date *entities.EventDate, eras []entities.EraConfig) SortKey {
	return Key(date, EraNames(eras))
}

// Compare orders two dates chronologically: negative when a is earlier,
// positive when later and zero when their keys tie.
func Compare(a, b *entities.EventDate, eraOrder []string) int {
	return Key(a, eraOrder).Compare(Key(b, eraOrder))
}

func pointKey(c entities.CalendarDate, eraOrder []string) SortKey {
	if !c.HasYear() {
		return lastKey
	}
	offset := dayOffset(*c.Year, c.Month, c.Day)

	era := c.EraLabel()
	if era == "" {
		return SortKey{Value: offset, Placement: PlacementUnranked, EraIndex: -1}
	}

	if idx := indexOf(eraOrder, era); idx >= 0 {
		rank := int64(min(idx, MaxRankedEras))
		return SortKey{Value: rank*eraStride + offset, Placement: PlacementRanked, EraIndex: idx}
	}

	first, _ := utf8.DecodeRuneInString(era)
	return SortKey{
		Value:     int64(first)*unknownEraStride + offset,
		Placement: PlacementUnranked,
		EraIndex:  -1,
	}
}

func dayOffset(year, month, day int) int64 {
	y := max(-MaxSortableYear, min(int64(year), MaxSortableYear))
	m := int64(max(0, min(month, maxMonthOrDay)))
	d := int64(max(0, min(day, maxMonthOrDay)))
	return y*yearStride + m*monthStride + d
}

func indexOf(eraOrder []string, era string) int {
	for i, name := range eraOrder {
		if strings.TrimSpace(name) == era {
			return i
		}
	}
	return -1
}
