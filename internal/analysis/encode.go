package analysis

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
)

// WriteCSV writes the table as CSV with the Time index first when present.
// Cells are written as read, so re-reading yields an equal table.
func (t *Table) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Header()); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for i := range t.Rows {
		if err := cw.Write(t.Record(i)); err != nil {
			return fmt.Errorf("write row %d: %w", i+1, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return nil
}

// EncodeCSV returns the whole CSV encoding of the table.
func (t *Table) EncodeCSV() ([]byte, error) {
	var buf bytes.Buffer
	if err := t.WriteCSV(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
