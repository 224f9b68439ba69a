package chrono

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ersonp/lore-timeline/internal/domain/entities"
)

func TestParseEraDate(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected entities.EraDate
		ok       bool
	}{
		{
			name:     "full date with zero padding",
			input:    "BE 0010-05-01",
			expected: entities.EraDate{Era: "BE", Year: 10, Month: 5, Day: 1},
			ok:       true,
		},
		{
			name:     "year only",
			input:    "SE 300",
			expected: entities.EraDate{Era: "SE", Year: 300},
			ok:       true,
		},
		{
			name:     "year and month",
			input:    "SE 300-12",
			expected: entities.EraDate{Era: "SE", Year: 300, Month: 12},
			ok:       true,
		},
		{
			name:     "multi word era",
			input:    "Third Age 3019-03-25",
			expected: entities.EraDate{Era: "Third Age", Year: 3019, Month: 3, Day: 25},
			ok:       true,
		},
		{
			name:     "bracketed era with digits",
			input:    "[Age 2] 340-01",
			expected: entities.EraDate{Era: "Age 2", Year: 340, Month: 1},
			ok:       true,
		},
		{
			name:     "symbolic era",
			input:    "A.C. 300/4/2",
			expected: entities.EraDate{Era: "A.C.", Year: 300, Month: 4, Day: 2},
			ok:       true,
		},
		{
			name:     "unicode era",
			input:    "✦ 12",
			expected: entities.EraDate{Era: "✦", Year: 12},
			ok:       true,
		},
		{
			name:     "separator after era",
			input:    "SE: 12",
			expected: entities.EraDate{Era: "SE", Year: 12},
			ok:       true,
		},
		{
			name:     "negative year",
			input:    "BE -20",
			expected: entities.EraDate{Era: "BE", Year: -20},
			ok:       true,
		},
		{
			name:     "hyphen joined to era is not a sign",
			input:    "BE-20",
			expected: entities.EraDate{Era: "BE", Year: 20},
			ok:       true,
		},
		{
			name:     "trailing words ignored",
			input:    "SE 300 4th moon",
			expected: entities.EraDate{Era: "SE", Year: 300},
			ok:       true,
		},
		{
			name:     "comma separated qualifiers",
			input:    "SE 300, 4, 2",
			expected: entities.EraDate{Era: "SE", Year: 300, Month: 4, Day: 2},
			ok:       true,
		},
		{
			name:     "parenthesized era",
			input:    "(Year 3) 12",
			expected: entities.EraDate{Era: "Year 3", Year: 12},
			ok:       true,
		},
		{
			name:  "bracketed era without year",
			input: "[Age 2]",
		},
		{
			name:  "parenthesized era without year",
			input: "(Year 3)",
		},
		{
			name:  "nested bracket in era",
			input: "[Age (2)] 5",
		},
		{
			name:  "unclosed bracket inside era",
			input: "Age (2 5",
		},
		{
			name:  "empty",
			input: "",
		},
		{
			name:  "whitespace",
			input: "   ",
		},
		{
			name:  "no year",
			input: "SE",
		},
		{
			name:  "no era",
			input: "1999-05-01",
		},
		{
			name:  "sign without era",
			input: "-20",
		},
		{
			name:  "year overflows",
			input: "SE 99999999999999999999999",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, ok := ParseEraDate(tt.input)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.expected, result)
			}
		})
	}
}

func TestParsePlainDate(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected PlainDate
		ok       bool
	}{
		{name: "full date", input: "0010-05-01", expected: PlainDate{Year: 10, Month: 5, Day: 1}, ok: true},
		{name: "year only", input: "1999", expected: PlainDate{Year: 1999}, ok: true},
		{name: "year and month", input: "1999-05", expected: PlainDate{Year: 1999, Month: 5}, ok: true},
		{name: "single digit parts", input: "1999-5-1", expected: PlainDate{Year: 1999, Month: 5, Day: 1}, ok: true},
		{name: "slashes", input: "1999/05/01", expected: PlainDate{Year: 1999, Month: 5, Day: 1}, ok: true},
		{name: "negative year", input: "-50-02-03", expected: PlainDate{Year: -50, Month: 2, Day: 3}, ok: true},
		{name: "surrounding whitespace", input: " 1999 ", expected: PlainDate{Year: 1999}, ok: true},
		{name: "words", input: "May 1999"},
		{name: "era qualified", input: "BE 10"},
		{name: "empty", input: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, ok := ParsePlainDate(tt.input)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.expected, result)
			}
		})
	}
}
