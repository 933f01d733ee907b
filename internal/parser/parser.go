package parser

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/KaramelBytes/luxboard/internal/analysis"
)

// Options configures ingestion and normalization of an upload.
type Options struct {
	// Delimiter for delimited text; 0 picks from the file name.
	Delimiter rune
	MaxRows   int
	// Sheet and SheetIndex select the worksheet of a workbook.
	Sheet      string
	SheetIndex int
	Normalize  analysis.NormalizeOptions
}

// DefaultOptions returns the options used for browser uploads.
func DefaultOptions() Options {
	return Options{MaxRows: analysis.DefaultReadOptions().MaxRows}
}

// Reader defines a table reader implementation.
type Reader interface {
	CanRead(filename string) bool
	Read(name string, data []byte, opt Options) (*analysis.RawTable, error)
}

var registry []Reader

// Register adds a reader implementation to the registry.
func Register(r Reader) {
	registry = append(registry, r)
}

var zipMagic = []byte("PK\x03\x04")

// Read selects a reader based on the file name and returns the raw table.
// Unknown names fall back to workbook detection by content, then CSV.
func Read(name string, data []byte, opt Options) (*analysis.RawTable, error) {
	for _, r := range registry {
		if r.CanRead(name) {
			return r.Read(name, data, opt)
		}
	}
	if bytes.HasPrefix(data, zipMagic) {
		return xlsxReader{}.Read(name, data, opt)
	}
	return csvReader{}.Read(name, data, opt)
}

// Load reads and normalizes an upload in one step.
func Load(name string, data []byte, opt Options) (*analysis.Table, error) {
	raw, err := Read(name, data, opt)
	if err != nil {
		return nil, err
	}
	return analysis.Normalize(raw, opt.Normalize)
}

// LoadFile reads path from disk and normalizes it.
func LoadFile(path string, opt Options) (*analysis.Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}
	return Load(filepath.Base(path), data, opt)
}

func init() {
	Register(csvReader{})
	Register(xlsxReader{})
}
