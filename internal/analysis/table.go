package analysis

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"
)

// ReadOptions controls ingestion of delimited text.
type ReadOptions struct {
	// Delimiter for CSV. If 0, uses '\t' for .tsv names and ',' otherwise.
	Delimiter rune
	// MaxRows rejects tables with more data rows; 0 means unlimited.
	MaxRows int
}

// DefaultReadOptions returns reasonable defaults for uploads.
func DefaultReadOptions() ReadOptions {
	return ReadOptions{MaxRows: 1_000_000}
}

// RawTable is an uploaded table as given: header names and rows in file order.
type RawTable struct {
	Name   string
	Header []string
	Rows   [][]string
}

// Column returns the position of the named column or -1.
func (t *RawTable) Column(name string) int {
	for i, h := range t.Header {
		if h == name {
			return i
		}
	}
	return -1
}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// ReadCSV parses CSV bytes into a RawTable. Rows must all have as many fields
// as the header; any syntax problem fails the whole read, and so does a table
// longer than MaxRows.
func ReadCSV(data []byte, name string, opt ReadOptions) (*RawTable, error) {
	data = bytes.TrimPrefix(data, utf8BOM)
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, &IngestionError{Source: name, Err: ErrEmptyInput}
	}
	if !utf8.Valid(data) {
		return nil, &IngestionError{Source: name, Err: ErrInvalidEncoding}
	}
	delim := opt.Delimiter
	if delim == 0 {
		delim = sniffDelimiter(name)
	}
	r := csv.NewReader(bytes.NewReader(data))
	r.Comma = delim
	r.FieldsPerRecord = 0
	r.TrimLeadingSpace = true

	header, err := r.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, &IngestionError{Source: name, Err: ErrEmptyInput}
		}
		return nil, csvIngestionError(name, err)
	}
	t := &RawTable{Name: name, Header: dedupeHeader(header)}

	maxRows := opt.MaxRows
	if maxRows <= 0 {
		maxRows = math.MaxInt
	}
	n := 0
	for {
		rec, err := r.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, csvIngestionError(name, err)
		}
		n++
		// Past the limit, keep reading so syntax errors still surface.
		if n <= maxRows {
			t.Rows = append(t.Rows, rec)
		}
	}
	if n > maxRows {
		return nil, tooManyRows(name, n, maxRows)
	}
	return t, nil
}

func tooManyRows(name string, n, limit int) error {
	return &IngestionError{Source: name, Err: fmt.Errorf("%w: %d data rows, limit is %d", ErrTooManyRows, n, limit)}
}

func csvIngestionError(name string, err error) error {
	var pe *csv.ParseError
	if errors.As(err, &pe) {
		return &IngestionError{Source: name, Line: pe.Line, Err: pe.Err}
	}
	return &IngestionError{Source: name, Err: err}
}

// dedupeHeader trims names and suffixes repeats as name.1, name.2, ...
func dedupeHeader(header []string) []string {
	out := make([]string, len(header))
	used := make(map[string]bool, len(header))
	for i, h := range header {
		h = strings.TrimSpace(h)
		if h == "" {
			h = fmt.Sprintf("Unnamed: %d", i)
		}
		name := h
		for n := 1; used[name]; n++ {
			name = h + "." + strconv.Itoa(n)
		}
		used[name] = true
		out[i] = name
	}
	return out
}

func sniffDelimiter(name string) rune {
	if strings.HasSuffix(strings.ToLower(name), ".tsv") {
		return '\t'
	}
	return ','
}
