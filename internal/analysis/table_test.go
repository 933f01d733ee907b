package analysis

import (
	"encoding/csv"
	"errors"
	"strings"
	"testing"
)

func TestReadCSV(t *testing.T) {
	data := []byte("\xEF\xBB\xBFTime,Lux,Note\n2024-01-01 10:00:00,12.5,a\n2024-01-01 10:01:00,13,b\n")
	raw, err := ReadCSV(data, "lux.csv", DefaultReadOptions())
	if err != nil {
		t.Fatalf("ReadCSV: %v", err)
	}
	if !equalStrings(raw.Header, []string{"Time", "Lux", "Note"}) {
		t.Fatalf("header = %#v", raw.Header)
	}
	if len(raw.Rows) != 2 || raw.Rows[1][1] != "13" {
		t.Fatalf("rows = %#v", raw.Rows)
	}
	if raw.Column("Time") != 0 || raw.Column("time") != -1 {
		t.Fatalf("Time column lookup must be exact")
	}
}

func TestReadCSVMalformed(t *testing.T) {
	cases := map[string]struct {
		data string
		want error
	}{
		"unterminated quote": {data: "a,b\n1,\"2\n", want: csv.ErrQuote},
		"inconsistent count": {data: "a,b\n1,2\n3\n", want: csv.ErrFieldCount},
		"empty":              {data: "", want: ErrEmptyInput},
		"blank":              {data: "\n\n  \n", want: ErrEmptyInput},
		"invalid utf8":       {data: "a,b\n\xff\xfe,1\n", want: ErrInvalidEncoding},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			raw, err := ReadCSV([]byte(tc.data), "bad.csv", DefaultReadOptions())
			if raw != nil {
				t.Fatalf("expected no table, got %#v", raw)
			}
			var ie *IngestionError
			if !errors.As(err, &ie) {
				t.Fatalf("expected IngestionError, got %v", err)
			}
			if !errors.Is(err, tc.want) {
				t.Fatalf("error %v does not wrap %v", err, tc.want)
			}
		})
	}
}

func TestReadCSVDelimiterAndLimit(t *testing.T) {
	raw, err := ReadCSV([]byte("a\tb\n1\t2\n3\t4\n"), "x.tsv", ReadOptions{MaxRows: 2})
	if err != nil {
		t.Fatalf("ReadCSV: %v", err)
	}
	if len(raw.Header) != 2 || len(raw.Rows) != 2 || raw.Rows[1][1] != "4" {
		t.Fatalf("unexpected table: %#v", raw)
	}

	raw, err = ReadCSV([]byte("a;b\n1;2\n"), "x.csv", ReadOptions{Delimiter: ';'})
	if err != nil {
		t.Fatalf("ReadCSV ';': %v", err)
	}
	if raw.Rows[0][1] != "2" {
		t.Fatalf("rows = %#v", raw.Rows)
	}
}

func TestReadCSVRowLimitRejectsWholeTable(t *testing.T) {
	_, err := ReadCSV([]byte("v\n1\n2\n3\n"), "x.csv", ReadOptions{MaxRows: 2})
	var ie *IngestionError
	if !errors.As(err, &ie) || !errors.Is(err, ErrTooManyRows) {
		t.Fatalf("expected ErrTooManyRows, got %v", err)
	}
	if !strings.Contains(err.Error(), "3 data rows, limit is 2") {
		t.Fatalf("error = %v", err)
	}

	// A broken row past the limit is still a syntax error.
	_, err = ReadCSV([]byte("v\n1\n2\n3\n\"bad\n"), "x.csv", ReadOptions{MaxRows: 2})
	if !errors.As(err, &ie) || errors.Is(err, ErrTooManyRows) {
		t.Fatalf("expected a parse error, got %v", err)
	}
	_, err = ReadCSV([]byte("a,b\n1,2\n3,4\n5\n"), "x.csv", ReadOptions{MaxRows: 1})
	if !errors.As(err, &ie) || ie.Line != 4 {
		t.Fatalf("expected ragged row error on line 4, got %v", err)
	}
}

func TestDedupeHeader(t *testing.T) {
	got := dedupeHeader([]string{"x", "x", " y ", "", "x", "x.1"})
	want := []string{"x", "x.1", "y", "Unnamed: 3", "x.2", "x.1.1"}
	if !equalStrings(got, want) {
		t.Fatalf("dedupeHeader = %#v, want %#v", got, want)
	}
}
