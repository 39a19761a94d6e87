package parsers

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// TextParser parses one sequence per line. Blank lines and lines starting
// with '#' are skipped.
type TextParser struct{}

// Parse reads lines from the reader and returns parsed records.
func (p *TextParser) Parse(r io.Reader) ([]Record, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), maxLineBytes)

	var records []Record
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		records = append(records, Record{Sequence: line, Line: lineNum})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("line %d: %w", lineNum+1, err)
	}

	return records, nil
}
