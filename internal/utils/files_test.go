package utils_test

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/KaramelBytes/luxboard/internal/utils"
)

func TestSafeWriteFileCreatesDirs(t *testing.T) {
	p := filepath.Join(t.TempDir(), "out", "datos_filtrados.csv")
	if err := utils.SafeWriteFile(p, []byte("a\n")); err != nil {
		t.Fatalf("SafeWriteFile: %v", err)
	}
	b, err := os.ReadFile(p)
	if err != nil || string(b) != "a\n" {
		t.Fatalf("read back %q, %v", b, err)
	}
	if _, err := os.Stat(p + ".tmp"); !os.IsNotExist(err) {
		t.Fatalf("temp file left behind")
	}
}

func TestWriteOutputStdout(t *testing.T) {
	var buf bytes.Buffer
	for _, p := range []string{"", "-"} {
		buf.Reset()
		if err := utils.WriteOutput(&buf, p, []byte("x")); err != nil {
			t.Fatalf("WriteOutput(%q): %v", p, err)
		}
		if buf.String() != "x" {
			t.Fatalf("stdout = %q", buf.String())
		}
	}
}

func TestPrettyJSON(t *testing.T) {
	b, err := utils.PrettyJSON(map[string]int{"count": 5})
	if err != nil {
		t.Fatalf("PrettyJSON: %v", err)
	}
	if !strings.Contains(string(b), "\n  \"count\": 5") {
		t.Fatalf("not indented: %s", b)
	}
}
