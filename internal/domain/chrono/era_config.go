// Package chrono is the story-calendar engine: era tables, era-qualified
// dates, chronological sort keys and ages that cross era boundaries.
//
// Every function in this package is pure. Nothing here logs, blocks or
// returns an error: input that cannot be understood yields an empty or
// "unknown" result and callers decide how to present it.
package chrono

import (
	"encoding/json"
	"strings"

	"github.com/ersonp/lore-timeline/internal/domain/entities"
)

// ParseEraConfig turns a timeline's era definition into an ordered era
// table. The input is either a comma separated list of names or JSON: an
// array of names, an array of {name, startYear, endYear} objects, or a single
// such object. JSON that fails to decode is read as a comma list instead.
func ParseEraConfig(raw string) []entities.EraConfig {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return []entities.EraConfig{}
	}

	if trimmed[0] == '[' || trimmed[0] == '{' {
		if eras, ok := parseStructuredEras(trimmed); ok {
			return eras
		}
	}

	return parsePlainEras(trimmed)
}

// EraNames returns the era ordering of a table.
func EraNames(eras []entities.EraConfig) []string {
	names := make([]string, 0, len(eras))
	for _, era := range eras {
		names = append(names, strings.TrimSpace(era.Name))
	}
	return names
}

// EraIndex returns the rank of the era named name in eras, or -1.
func EraIndex(eras []entities.EraConfig, name string) int {
	name = strings.TrimSpace(name)
	for i := range eras {
		if strings.TrimSpace(eras[i].Name) == name {
			return i
		}
	}
	return -1
}

func parseStructuredEras(text string) ([]entities.EraConfig, bool) {
	var items []json.RawMessage
	if text[0] == '{' {
		if !json.Valid([]byte(text)) {
			return nil, false
		}
		items = []json.RawMessage{json.RawMessage(text)}
	} else if err := json.Unmarshal([]byte(text), &items); err != nil {
		return nil, false
	}

	eras := make([]entities.EraConfig, 0, len(items))
	for _, item := range items {
		if era, ok := decodeEra(item); ok {
			eras = append(eras, era)
		}
	}
	return eras, true
}

// eraObject mirrors one structured era entry. Name is decoded loosely so a
// non-string name drops the entry instead of the whole table.
type eraObject struct {
	Name      any                `json:"name"`
	StartYear entities.YearBound `json:"startYear"`
	EndYear   entities.YearBound `json:"endYear"`
}

func decodeEra(item json.RawMessage) (entities.EraConfig, bool) {
	var name string
	if err := json.Unmarshal(item, &name); err == nil {
		name = strings.TrimSpace(name)
		return entities.EraConfig{Name: name}, name != ""
	}

	var obj eraObject
	if err := json.Unmarshal(item, &obj); err != nil {
		return entities.EraConfig{}, false
	}
	s, ok := obj.Name.(string)
	if !ok {
		return entities.EraConfig{}, false
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return entities.EraConfig{}, false
	}

	return entities.EraConfig{
		Name:      s,
		StartYear: obj.StartYear,
		EndYear:   obj.EndYear,
	}, true
}

func parsePlainEras(text string) []entities.EraConfig {
	parts := strings.Split(text, ",")
	eras := make([]entities.EraConfig, 0, len(parts))
	for _, part := range parts {
		name := strings.TrimSpace(part)
		if name == "" {
			continue
		}
		eras = append(eras, entities.EraConfig{Name: name})
	}
	return eras
}
