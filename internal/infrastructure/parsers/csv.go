package parsers

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode"
)

// CSVParser parses events from CSV format.
//
// The header must name a title column and either a date column holding the
// full date text ("SE 300-04-02") or split era, year, month and day columns
// as spreadsheet timelines often have. When both are present a non-empty
// date wins.
type CSVParser struct{}

// Parse reads CSV from the reader and returns parsed events.
func (p *CSVParser) Parse(r io.Reader) ([]RawEvent, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	cols, err := readHeader(reader)
	if err != nil {
		return nil, err
	}

	var events []RawEvent
	for lineNum := 2; ; lineNum++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNum, err)
		}

		date := cols.get(record, "date")
		if date == "" {
			date = joinDate(cols.get(record, "era"), cols.get(record, "year"), cols.get(record, "month"), cols.get(record, "day"))
		}

		events = append(events, RawEvent{
			ID:          cols.get(record, "id"),
			Title:       cols.get(record, "title"),
			Description: cols.get(record, "description"),
			Date:        date,
			SourceFile:  cols.get(record, "source_file"),
			LineNum:     lineNum,
		})
	}

	return events, nil
}

// columns maps lowercased header names to their index.
type columns map[string]int

func readHeader(reader *csv.Reader) (columns, error) {
	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("reading CSV header: %w", err)
	}

	cols := make(columns, len(header))
	for i, col := range header {
		cols[strings.ToLower(strings.TrimSpace(col))] = i
	}

	if !cols.has("title") {
		return nil, errors.New("missing required column: title")
	}
	if !cols.has("date") && !cols.has("year") {
		return nil, errors.New("missing required column: date (or year)")
	}
	return cols, nil
}

func (c columns) has(name string) bool {
	_, ok := c[name]
	return ok
}

// get returns the trimmed value of a column, or "" when the column is
// absent or the record is short.
func (c columns) get(record []string, name string) string {
	if idx, ok := c[name]; ok && idx < len(record) {
		return strings.TrimSpace(record[idx])
	}
	return ""
}

// joinDate builds date text from split columns. An era containing digits is
// bracketed so its digits are not read as the year.
func joinDate(era, year, month, day string) string {
	if year == "" {
		return ""
	}

	date := year
	if month != "" {
		date += "-" + month
		if day != "" {
			date += "-" + day
		}
	}

	switch {
	case era == "":
		return date
	case strings.ContainsFunc(era, unicode.IsDigit):
		return "[" + era + "] " + date
	default:
		return era + " " + date
	}
}
