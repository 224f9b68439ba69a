package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ersonp/lore-timeline/internal/domain/chrono"
	"github.com/ersonp/lore-timeline/internal/domain/entities"
	"github.com/ersonp/lore-timeline/internal/domain/services"
)

func TestDescribeAge(t *testing.T) {
	mara := &entities.Character{Name: "Mara", BirthDate: "BE 995"}
	at := chrono.ParseEventDate("SE 3-01-01")

	tests := []struct {
		name     string
		estimate chrono.AgeEstimate
		at       entities.EventDate
		expected string
	}{
		{
			name:     "known",
			estimate: chrono.AgeEstimate{Years: 7, Known: true},
			at:       at,
			expected: "Mara is 7 at SE 3-01-01",
		},
		{
			name:     "partial",
			estimate: chrono.AgeEstimate{Years: 2, Known: true, Partial: true},
			at:       at,
			expected: "Mara is 2 at SE 3-01-01 (at least; some era lengths are unknown)",
		},
		{
			name:     "not exact",
			estimate: chrono.AgeEstimate{Reason: chrono.ReasonNotExact},
			at:       chrono.ParseEventDate("~SE 3"),
			expected: "Age of Mara unknown: ~SE 3 is not an exact date",
		},
		{
			name:     "configuration gap",
			estimate: chrono.AgeEstimate{Reason: chrono.ReasonConfigurationGap},
			at:       at,
			expected: "Age of Mara unknown: the eras between birth and SE 3-01-01 are not configured",
		},
		{
			name:     "impossible ordering",
			estimate: chrono.AgeEstimate{Reason: chrono.ReasonImpossibleOrdering},
			at:       at,
			expected: "Age of Mara unknown: birth era comes after the era of SE 3-01-01",
		},
		{
			name:     "parse failure",
			estimate: chrono.AgeEstimate{Reason: chrono.ReasonParseFailure},
			at:       at,
			expected: `Age of Mara unknown: birth date "BE 995" cannot be read`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := &services.AgeResult{Character: mara, At: tt.at, AgeEstimate: tt.estimate}
			assert.Equal(t, tt.expected, describeAge(result))
		})
	}
}

func TestPrintCharacters(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, printCharacters(&buf, []*entities.Character{
		{Name: "Aren"},
		{Name: "Mara", BirthDate: "BE 995"},
	}))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, []string{"Aren", "-"}, strings.Fields(lines[1]))
	assert.Equal(t, []string{"Mara", "BE", "995"}, strings.Fields(lines[2]))

	buf.Reset()
	require.NoError(t, printCharacters(&buf, nil))
	assert.Equal(t, "No characters.\n", buf.String())
}
