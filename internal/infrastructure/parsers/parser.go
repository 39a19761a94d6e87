// Package parsers reads sequence records from FASTA, plain text, CSV and JSON input.
package parsers

import (
	"compress/gzip"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Record is one sequence read from an input file.
type Record struct {
	ID       string `json:"id,omitempty"`
	Sequence string `json:"sequence"`
	Line     int    `json:"-"` // Line (or array position for JSON) where the record starts
}

// Parser defines the interface for parsing records from an input format.
type Parser interface {
	Parse(r io.Reader) ([]Record, error)
}

// ForFormat returns the appropriate parser for the given format.
// Supported formats: "fasta", "txt", "csv", "json".
func ForFormat(format string) Parser {
	switch strings.ToLower(format) {
	case "fasta", "fa":
		return &FASTAParser{}
	case "txt", "text":
		return &TextParser{}
	case "csv":
		return &CSVParser{}
	case "json":
		return &JSONParser{}
	default:
		return nil
	}
}

// ForFile returns the appropriate parser based on file extension. A
// trailing .gz is ignored.
func ForFile(filename string) Parser {
	name := strings.TrimSuffix(strings.ToLower(filename), ".gz")
	switch filepath.Ext(name) {
	case ".fasta", ".fa", ".fna", ".fas":
		return &FASTAParser{}
	case ".txt", ".seq":
		return &TextParser{}
	case ".csv":
		return &CSVParser{}
	case ".json":
		return &JSONParser{}
	default:
		return nil
	}
}

type multiReadCloser struct {
	io.Reader
	closers []io.Closer
}

func (m *multiReadCloser) Close() error {
	var err error
	for _, c := range m.closers {
		if cerr := c.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}
	return err
}

// Open opens path for reading, with "-" meaning stdin. Gzip input is
// detected by its magic number or a .gz suffix and decompressed.
func Open(path string) (io.ReadCloser, error) {
	if path == "-" {
		return io.NopCloser(os.Stdin), nil
	}
	fh, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	var sig [2]byte
	n, _ := fh.Read(sig[:])
	if _, err := fh.Seek(0, io.SeekStart); err != nil {
		_ = fh.Close()
		return nil, err
	}
	if (n == 2 && sig[0] == 0x1f && sig[1] == 0x8b) || strings.HasSuffix(path, ".gz") {
		gr, err := gzip.NewReader(fh)
		if err != nil {
			_ = fh.Close()
			return nil, err
		}
		return &multiReadCloser{Reader: gr, closers: []io.Closer{gr, fh}}, nil
	}
	return fh, nil
}
