package parsers

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
)

// CSVParser parses records from CSV format.
type CSVParser struct{}

// Parse reads CSV from the reader and returns parsed records.
// Expected columns: sequence, and optionally id.
func (p *CSVParser) Parse(r io.Reader) ([]Record, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	colIndex, err := p.readHeader(reader)
	if err != nil {
		return nil, err
	}

	return p.readRecords(reader, colIndex)
}

// readHeader reads and validates the CSV header row.
func (p *CSVParser) readHeader(reader *csv.Reader) (map[string]int, error) {
	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("reading CSV header: %w", err)
	}

	colIndex := make(map[string]int)
	for i, col := range header {
		colIndex[strings.ToLower(strings.TrimSpace(col))] = i
	}

	if _, ok := colIndex["sequence"]; !ok {
		return nil, fmt.Errorf("missing required column: sequence")
	}

	return colIndex, nil
}

// readRecords reads all data rows and converts them to Records.
func (p *CSVParser) readRecords(reader *csv.Reader, colIndex map[string]int) ([]Record, error) {
	var records []Record

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading CSV: %w", err)
		}

		line, _ := reader.FieldPos(0)
		records = append(records, Record{
			ID:       getColumn(record, colIndex, "id"),
			Sequence: getColumn(record, colIndex, "sequence"),
			Line:     line,
		})
	}

	return records, nil
}

// getColumn safely retrieves a column value from a record.
func getColumn(record []string, colIndex map[string]int, col string) string {
	if idx, ok := colIndex[col]; ok && idx < len(record) {
		return strings.TrimSpace(record[idx])
	}
	return ""
}
