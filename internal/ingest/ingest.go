package ingest

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/KaramelBytes/dataloom-cli/internal/dataset"
)

// Error reports a dataset that could not be read or parsed at all. Single
// malformed rows never produce one; they are skipped and counted instead.
type Error struct {
	Path   string
	Reason string
	Err    error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("ingest %s: %s: %v", e.Path, e.Reason, e.Err)
	}
	return fmt.Sprintf("ingest %s: %s", e.Path, e.Reason)
}

func (e *Error) Unwrap() error { return e.Err }

// Options control delimited-text parsing.
type Options struct {
	// Delimiter for the file. 0 sniffs by extension (.tsv means tab).
	Delimiter rune
}

// Load reads a delimited text file into a Table. The raw bytes are decoded
// with the detected encoding before parsing. Rows whose field count does not
// match the header, and rows the CSV reader rejects, are skipped.
func Load(path string, opt Options) (*dataset.Table, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, &Error{Path: path, Reason: "read file", Err: err}
	}
	enc, encName := DetectEncoding(raw)
	text, err := decode(raw, enc)
	if err != nil {
		return nil, &Error{Path: path, Reason: "decode as " + encName, Err: err}
	}

	delim := opt.Delimiter
	if delim == 0 {
		delim = sniffDelimiter(path)
	}
	r := csv.NewReader(bytes.NewReader(text))
	r.Comma = delim
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	r.TrimLeadingSpace = true

	header, err := r.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, &Error{Path: path, Reason: "empty file"}
		}
		return nil, &Error{Path: path, Reason: "read header", Err: err}
	}
	names := make([]string, len(header))
	for i, h := range header {
		names[i] = strings.TrimSpace(h)
	}
	if len(names) == 1 && names[0] == "" {
		return nil, &Error{Path: path, Reason: "missing header"}
	}

	ncol := len(names)
	cols := make([][]string, ncol)
	skipped, rows := 0, 0
	for {
		rec, err := r.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			var perr *csv.ParseError
			if errors.As(err, &perr) {
				skipped++
				continue
			}
			return nil, &Error{Path: path, Reason: "read rows", Err: err}
		}
		if len(rec) != ncol {
			skipped++
			continue
		}
		for j, v := range rec {
			cols[j] = append(cols[j], dataset.NormalizeCell(v))
		}
		rows++
	}
	if rows == 0 {
		return nil, &Error{Path: path, Reason: "no data rows"}
	}

	t := &dataset.Table{
		Name:        filepath.Base(path),
		Encoding:    encName,
		Columns:     make([]dataset.Column, ncol),
		SkippedRows: skipped,
	}
	for j := range cols {
		t.Columns[j] = dataset.Column{
			Name:   names[j],
			Kind:   dataset.InferKind(cols[j]),
			Values: cols[j],
		}
	}
	return t, nil
}

func sniffDelimiter(path string) rune {
	if strings.HasSuffix(strings.ToLower(path), ".tsv") {
		return '\t'
	}
	return ','
}
