package entities

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// DateKind tags the shape of an EventDate.
type DateKind string

// Known date kinds. Any other value, including the empty string, is an
// unresolved date.
const (
	DateExact       DateKind = "exact"
	DateRange       DateKind = "range"
	DateApproximate DateKind = "approximate"
)

// CalendarDate is a point on a story calendar. Era is optional, Year is
// optional only for approximate dates. Month and Day use 0 for "absent".
type CalendarDate struct {
	Era   string `json:"era,omitempty"`
	Year  *int   `json:"year,omitempty"`
	Month int    `json:"month,omitempty"`
	Day   int    `json:"day,omitempty"`
}

// HasYear reports whether the year is set.
func (c CalendarDate) HasYear() bool {
	return c.Year != nil
}

// EraLabel returns the era with surrounding whitespace removed.
func (c CalendarDate) EraLabel() string {
	return strings.TrimSpace(c.Era)
}

// EventDate is the tagged date value stored on timeline events and used as
// an age query point. Exact and approximate dates use the embedded
// CalendarDate; ranges use Start and End.
type EventDate struct {
	Kind DateKind `json:"kind,omitempty"`
	CalendarDate
	Start *CalendarDate `json:"start,omitempty"`
	End   *CalendarDate `json:"end,omitempty"`
}

// Year returns a pointer to y, for building CalendarDate literals.
func Year(y int) *int {
	return &y
}

// Calendar builds a CalendarDate with a known year.
func Calendar(era string, year, month, day int) CalendarDate {
	return CalendarDate{Era: era, Year: Year(year), Month: month, Day: day}
}

// ExactDate builds an exact date. Pass 0 for an absent month or day.
func ExactDate(era string, year, month, day int) EventDate {
	return EventDate{Kind: DateExact, CalendarDate: Calendar(era, year, month, day)}
}

// ApproximateDate builds an approximate date; its year may be nil.
func ApproximateDate(c CalendarDate) EventDate {
	return EventDate{Kind: DateApproximate, CalendarDate: c}
}

// RangeDate builds a date spanning start to end.
func RangeDate(start, end CalendarDate) EventDate {
	return EventDate{Kind: DateRange, Start: &start, End: &end}
}

// IsResolved reports whether the kind is one of the known kinds.
func (d EventDate) IsResolved() bool {
	switch d.Kind {
	case DateExact, DateRange, DateApproximate:
		return true
	default:
		return false
	}
}

// EraDate is a date anchored to a named era. A value with an empty Era is
// not a valid EraDate.
type EraDate struct {
	Era   string `json:"era"`
	Year  int    `json:"year"`
	Month int    `json:"month,omitempty"`
	Day   int    `json:"day,omitempty"`
}

// MonthDay returns month and day with absent values read as 1.
func (d EraDate) MonthDay() (int, int) {
	m, day := d.Month, d.Day
	if m == 0 {
		m = 1
	}
	if day == 0 {
		day = 1
	}
	return m, day
}

// YearBound is an era bound kept in its original textual form (so "0001"
// survives a round trip) together with its parsed value.
type YearBound struct {
	Text  string
	Value int
	Known bool
}

// ParseYearBound trims and parses text. Text that is not an integer yields an
// unknown bound that still remembers the text.
func ParseYearBound(text string) YearBound {
	text = strings.TrimSpace(text)
	b := YearBound{Text: text}
	if v, err := strconv.Atoi(text); err == nil {
		b.Value = v
		b.Known = true
	}
	return b
}

// KnownYear builds a parsed bound from an integer.
func KnownYear(v int) YearBound {
	return YearBound{Text: strconv.Itoa(v), Value: v, Known: true}
}

// IsZero reports whether the bound was never set.
func (b YearBound) IsZero() bool {
	return b.Text == "" && !b.Known
}

// String returns the original text.
func (b YearBound) String() string {
	return b.Text
}

// MarshalJSON writes the original text, or null when unset.
func (b YearBound) MarshalJSON() ([]byte, error) {
	if b.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(b.Text)
}

// UnmarshalJSON accepts a string, a number or null. Any other JSON value
// leaves the bound unknown instead of failing the surrounding document.
func (b *YearBound) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case len(data) == 0 || bytes.Equal(data, []byte("null")):
		*b = YearBound{}
	case data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			*b = YearBound{}
			return nil
		}
		*b = ParseYearBound(s)
	default:
		*b = ParseYearBound(string(data))
	}
	return nil
}

// EraConfig is one entry of a timeline's era table. The position of an
// entry in its list is its chronological rank.
type EraConfig struct {
	Name      string    `json:"name"`
	StartYear YearBound `json:"startYear"`
	EndYear   YearBound `json:"endYear"`
}
