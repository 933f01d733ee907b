package parser

import (
	"strings"

	"github.com/KaramelBytes/luxboard/internal/analysis"
)

type csvReader struct{}

func (csvReader) CanRead(filename string) bool {
	name := strings.ToLower(filename)
	return strings.HasSuffix(name, ".csv") || strings.HasSuffix(name, ".tsv") || strings.HasSuffix(name, ".txt")
}

func (csvReader) Read(name string, data []byte, opt Options) (*analysis.RawTable, error) {
	return analysis.ReadCSV(data, name, analysis.ReadOptions{Delimiter: opt.Delimiter, MaxRows: opt.MaxRows})
}
