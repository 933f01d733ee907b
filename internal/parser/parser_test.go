package parser_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/KaramelBytes/luxboard/internal/analysis"
	"github.com/KaramelBytes/luxboard/internal/parser"
)

func TestLoadFileCSV(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "sensor_luz.csv")
	content := "Time,lux\n" +
		"2024-08-10 10:05:00,120\n" +
		"2024-08-10 10:00:00,80\n"
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	tbl, err := parser.LoadFile(p, parser.DefaultOptions())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if tbl.Name != "sensor_luz.csv" || !tbl.HasIndex() {
		t.Fatalf("unexpected table %q index=%v", tbl.Name, tbl.HasIndex())
	}
	if tbl.Values[0] != 80 || tbl.Values[1] != 120 {
		t.Fatalf("rows not ordered by time: %v", tbl.Values)
	}
}

func TestReadTSVByName(t *testing.T) {
	raw, err := parser.Read("lecturas.tsv", []byte("lux\tnota\n1\ta\n"), parser.DefaultOptions())
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(raw.Header) != 2 || raw.Header[1] != "nota" {
		t.Fatalf("header = %#v", raw.Header)
	}
}

func TestReadUnknownNameFallsBackToCSV(t *testing.T) {
	raw, err := parser.Read("blob", []byte("a;b\n1;2\n"), parser.Options{Delimiter: ';'})
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if raw.Rows[0][1] != "2" {
		t.Fatalf("rows = %#v", raw.Rows)
	}
}

func TestReadZipWithoutWorkbook(t *testing.T) {
	_, err := parser.Read("upload", []byte("PK\x03\x04not really a zip"), parser.DefaultOptions())
	var ie *analysis.IngestionError
	if !errors.As(err, &ie) {
		t.Fatalf("expected IngestionError, got %v", err)
	}
}

func TestLoadPropagatesNormalizationErrors(t *testing.T) {
	_, err := parser.Load("only_time.csv", []byte("Time\n2024-01-01\n"), parser.DefaultOptions())
	if !errors.Is(err, analysis.ErrNoValueColumn) {
		t.Fatalf("expected ErrNoValueColumn, got %v", err)
	}

	opt := parser.DefaultOptions()
	opt.Normalize.ValueColumn = "lux"
	tbl, err := parser.Load("two.csv", []byte("id,lux\n1,5\n"), opt)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if tbl.Values[0] != 5 {
		t.Fatalf("values = %v", tbl.Values)
	}
}

func TestLoadFileMissing(t *testing.T) {
	_, err := parser.LoadFile(filepath.Join(t.TempDir(), "nope.csv"), parser.DefaultOptions())
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected not-exist error, got %v", err)
	}
}
