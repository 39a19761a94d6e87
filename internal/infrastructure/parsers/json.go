package parsers

import (
	"encoding/json"
	"fmt"
	"io"
)

// JSONParser parses an array of {"id", "sequence"} objects.
type JSONParser struct{}

// Parse reads JSON from the reader and returns parsed records.
func (p *JSONParser) Parse(r io.Reader) ([]Record, error) {
	var records []Record

	decoder := json.NewDecoder(r)
	if err := decoder.Decode(&records); err != nil {
		return nil, fmt.Errorf("parsing JSON: %w", err)
	}

	// Array index + 1, 1-indexed
	for i := range records {
		records[i].Line = i + 1
	}

	return records, nil
}
