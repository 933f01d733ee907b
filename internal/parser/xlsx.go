package parser

import (
	"fmt"
	"strings"

	"github.com/KaramelBytes/luxboard/internal/analysis"
)

type xlsxReader struct{}

func (xlsxReader) CanRead(filename string) bool {
	return strings.HasSuffix(strings.ToLower(filename), ".xlsx")
}

func (xlsxReader) Read(name string, data []byte, opt Options) (*analysis.RawTable, error) {
	raw, err := analysis.ReadXLSX(data, name, analysis.XLSXOptions{
		SheetName:  opt.Sheet,
		SheetIndex: opt.SheetIndex,
		MaxRows:    opt.MaxRows,
	})
	if err != nil {
		return nil, err
	}
	if opt.Sheet != "" {
		raw.Name = fmt.Sprintf("%s (sheet: %s)", raw.Name, opt.Sheet)
	}
	return raw, nil
}
