package parsers

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// maxLineBytes bounds a single input line; unwrapped FASTA can be long.
const maxLineBytes = 16 << 20

// FASTAParser parses records in FASTA format. The record id is the first
// word of the header line; sequence lines are joined. Lines starting with
// ';' are comments.
type FASTAParser struct{}

// Parse reads FASTA from the reader and returns parsed records.
func (p *FASTAParser) Parse(r io.Reader) ([]Record, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), maxLineBytes)

	var (
		records []Record
		cur     *Record
		seq     strings.Builder
		lineNum int
	)

	flush := func() {
		if cur != nil {
			cur.Sequence = seq.String()
			records = append(records, *cur)
			seq.Reset()
		}
	}

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		switch {
		case line == "" || strings.HasPrefix(line, ";"):
			continue
		case strings.HasPrefix(line, ">"):
			flush()
			id := ""
			if fields := strings.Fields(line[1:]); len(fields) > 0 {
				id = fields[0]
			}
			cur = &Record{ID: id, Line: lineNum}
		default:
			if cur == nil {
				return nil, fmt.Errorf("line %d: sequence data before first header", lineNum)
			}
			seq.WriteString(line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("line %d: %w", lineNum+1, err)
	}
	flush()

	return records, nil
}
