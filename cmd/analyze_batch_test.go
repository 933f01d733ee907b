package cmd

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestAnalyzeBatch_OutDirAndSuppressSamples(t *testing.T) {
	home, _ := setupHome(t)

	// Two files with the same basename in different directories
	d1 := filepath.Join(home, "d1")
	d2 := filepath.Join(home, "d2")
	if err := os.MkdirAll(d1, 0o755); err != nil {
		t.Fatalf("mkdir d1: %v", err)
	}
	if err := os.MkdirAll(d2, 0o755); err != nil {
		t.Fatalf("mkdir d2: %v", err)
	}
	p1 := filepath.Join(d1, "sensor.csv")
	p2 := filepath.Join(d2, "sensor.csv")
	if err := os.WriteFile(p1, []byte("Time,Luz\n2024-01-01,1\n2024-01-02,2\n"), 0o644); err != nil {
		t.Fatalf("write p1: %v", err)
	}
	if err := os.WriteFile(p2, []byte("Luz\n10\n20\n30\n"), 0o644); err != nil {
		t.Fatalf("write p2: %v", err)
	}

	outDir := filepath.Join(home, "summaries")
	out := runCmd(t, "analyze-batch", filepath.Join(home, "d*", "sensor.csv"), "-d", outDir, "--sample-rows", "0")
	if !strings.Contains(out, "[1/2] Processing sensor.csv") || !strings.Contains(out, "[2/2] Processing sensor.csv") {
		t.Fatalf("missing progress lines:\n%s", out)
	}

	b1 := filepath.Join(outDir, "sensor.summary.md")
	b2 := filepath.Join(outDir, "sensor__2.summary.md")
	body1, err := os.ReadFile(b1)
	if err != nil {
		t.Fatalf("missing first summary: %v", err)
	}
	body2, err := os.ReadFile(b2)
	if err != nil {
		t.Fatalf("missing second summary: %v", err)
	}
	if !strings.Contains(string(body1), "Rows: 2") || !strings.Contains(string(body2), "Rows: 3") {
		t.Fatalf("summaries out of order:\n%s\n%s", body1, body2)
	}
	for _, body := range [][]byte{body1, body2} {
		if strings.Contains(string(body), "[HEAD AND SAMPLE ROWS]") {
			t.Fatalf("expected no sample rows:\n%s", body)
		}
	}
}

func TestAnalyzeBatch_FailsOnBadFile(t *testing.T) {
	home, good := setupHome(t)
	bad := filepath.Join(home, "bad.csv")
	if err := os.WriteFile(bad, []byte("Time\n2024-01-01\n"), 0o644); err != nil {
		t.Fatalf("write bad: %v", err)
	}
	_, err := execute(t, "analyze-batch", good, bad, "--quiet")
	if err == nil || !strings.Contains(err.Error(), "bad.csv") {
		t.Fatalf("expected error naming bad.csv, got %v", err)
	}
	if _, err := execute(t, "analyze-batch", filepath.Join(home, "*.nothing")); err == nil {
		t.Fatalf("expected no-match error")
	}
}
