package parsers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
)

// JSONParser parses events from JSON. The document may be an array of
// events, a single event object, or an object with an "events" array.
type JSONParser struct{}

// Parse reads events from the reader. LineNum is the 1-based position of
// the event in the document.
func (p *JSONParser) Parse(r io.Reader) ([]RawEvent, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading JSON: %w", err)
	}

	events, err := decodeEvents(bytes.TrimSpace(data))
	if err != nil {
		return nil, fmt.Errorf("parsing JSON: %w", err)
	}

	for i := range events {
		events[i].LineNum = i + 1
	}
	return events, nil
}

func decodeEvents(data []byte) ([]RawEvent, error) {
	if len(data) == 0 || data[0] != '{' {
		var events []RawEvent
		err := json.Unmarshal(data, &events)
		return events, err
	}

	var wrapper struct {
		Events *[]RawEvent `json:"events"`
	}
	if err := json.Unmarshal(data, &wrapper); err != nil {
		return nil, err
	}
	if wrapper.Events != nil {
		return *wrapper.Events, nil
	}

	var single RawEvent
	if err := json.Unmarshal(data, &single); err != nil {
		return nil, err
	}
	return []RawEvent{single}, nil
}
