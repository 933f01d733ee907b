package analysis

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"path/filepath"
	"strings"
)

// XLSXOptions selects the worksheet of a workbook upload.
type XLSXOptions struct {
	// SheetName wins over SheetIndex when set.
	SheetName string
	// SheetIndex is 1-based; 0 selects the first sheet.
	SheetIndex int
	MaxRows    int
}

// ReadXLSX extracts the selected worksheet of a .xlsx workbook as a RawTable.
// The first row is the header.
func ReadXLSX(data []byte, name string, opt XLSXOptions) (*RawTable, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, &IngestionError{Source: name, Err: fmt.Errorf("open xlsx: %w", err)}
	}
	workbookXML := readZipFile(zr, "xl/workbook.xml")
	relsXML := readZipFile(zr, "xl/_rels/workbook.xml.rels")
	sharedXML := readZipFile(zr, "xl/sharedStrings.xml")
	sheets := parseWorkbook(workbookXML)
	rels := parseRelationships(relsXML)

	target := ""
	if opt.SheetName != "" {
		for _, s := range sheets {
			if strings.EqualFold(s.Name, opt.SheetName) {
				if rel, ok := rels[s.RID]; ok {
					target = normalizeRelPath(rel)
				}
				break
			}
		}
		if target == "" {
			available := make([]string, len(sheets))
			for i, s := range sheets {
				available[i] = s.Name
			}
			return nil, &IngestionError{Source: name, Err: fmt.Errorf("sheet %q not found (available: %s)", opt.SheetName, strings.Join(available, ", "))}
		}
	}
	if target == "" {
		idx := opt.SheetIndex
		if idx <= 0 {
			idx = 1
		}
		var rid string
		for _, s := range sheets {
			if s.SheetID == idx {
				rid = s.RID
				break
			}
		}
		if rel, ok := rels[rid]; ok && rid != "" {
			target = normalizeRelPath(rel)
		}
		if target == "" {
			target = filepath.Join("xl", "worksheets", fmt.Sprintf("sheet%d.xml", idx))
		}
	}
	sheetXML := readZipFile(zr, target)
	if len(sheetXML) == 0 {
		return nil, &IngestionError{Source: name, Err: fmt.Errorf("worksheet %s: %w", target, ErrEmptyInput)}
	}
	rr := newSheetRowReader(sheetXML, parseSharedStrings(sharedXML))
	header, ok := rr.Next()
	if !ok || len(header) == 0 {
		return nil, &IngestionError{Source: name, Err: ErrEmptyInput}
	}
	t := &RawTable{Name: name, Header: dedupeHeader(header)}
	ncol := len(header)
	n := 0
	for {
		row, ok := rr.Next()
		if !ok {
			break
		}
		n++
		if len(row) > ncol {
			return nil, &IngestionError{Source: name, Line: n + 1, Err: fmt.Errorf("row has %d cells, header has %d", len(row), ncol)}
		}
		if opt.MaxRows > 0 && n > opt.MaxRows {
			continue
		}
		if len(row) < ncol {
			tmp := make([]string, ncol)
			copy(tmp, row)
			row = tmp
		}
		t.Rows = append(t.Rows, row)
	}
	if opt.MaxRows > 0 && n > opt.MaxRows {
		return nil, tooManyRows(name, n, opt.MaxRows)
	}
	return t, nil
}

// parseWorkbook extracts sheet entries with names and relationship ids.
func parseWorkbook(data []byte) []wbSheet {
	if len(data) == 0 {
		return nil
	}
	dec := xml.NewDecoder(bytes.NewReader(data))
	var sheets []wbSheet
	for {
		tok, err := dec.Token()
		if err != nil {
			if err == io.EOF {
				break
			}
			return sheets
		}
		switch se := tok.(type) {
		case xml.StartElement:
			if se.Name.Local == "sheet" {
				var s wbSheet
				for _, a := range se.Attr {
					switch a.Name.Local {
					case "name":
						s.Name = a.Value
					case "sheetId":
						s.SheetID = atoiSafe(a.Value)
					case "id":
						s.RID = a.Value // in r: namespace
					}
				}
				sheets = append(sheets, s)
			}
		}
	}
	return sheets
}

type wbSheet struct {
	Name    string
	SheetID int
	RID     string
}

func parseRelationships(data []byte) map[string]string {
	// returns map[r:id]Target
	out := map[string]string{}
	if len(data) == 0 {
		return out
	}
	dec := xml.NewDecoder(bytes.NewReader(data))
	for {
		tok, err := dec.Token()
		if err != nil {
			if err == io.EOF {
				break
			}
			return out
		}
		switch se := tok.(type) {
		case xml.StartElement:
			if se.Name.Local == "Relationship" {
				var id, target string
				for _, a := range se.Attr {
					switch a.Name.Local {
					case "Id":
						id = a.Value
					case "Target":
						target = a.Value
					}
				}
				if id != "" && target != "" {
					out[id] = target
				}
			}
		}
	}
	return out
}

func readZipFile(zr *zip.Reader, name string) []byte {
	for _, f := range zr.File {
		if f.Name == name {
			rc, err := f.Open()
			if err != nil {
				return nil
			}
			defer rc.Close()
			b, _ := io.ReadAll(rc)
			return b
		}
	}
	return nil
}

// shared strings
func parseSharedStrings(data []byte) []string {
	if len(data) == 0 {
		return nil
	}
	dec := xml.NewDecoder(bytes.NewReader(data))
	var out []string
	var buf strings.Builder
	var inT bool
	for {
		tok, err := dec.Token()
		if err != nil {
			if err == io.EOF {
				break
			}
			return out
		}
		switch se := tok.(type) {
		case xml.StartElement:
			if se.Name.Local == "si" {
				buf.Reset()
			}
			if se.Name.Local == "t" {
				inT = true
			}
		case xml.EndElement:
			if se.Name.Local == "t" {
				inT = false
			}
			if se.Name.Local == "si" {
				out = append(out, buf.String())
				buf.Reset()
			}
		case xml.CharData:
			if inT {
				buf.Write([]byte(se))
			}
		}
	}
	return out
}

// sheet row reader
type sheetRowReader struct {
	dec    *xml.Decoder
	shared []string
	inRow  bool
	curRow []string
	maxCol int
}

func newSheetRowReader(data []byte, shared []string) *sheetRowReader {
	return &sheetRowReader{dec: xml.NewDecoder(bytes.NewReader(data)), shared: shared}
}

func (r *sheetRowReader) Next() ([]string, bool) {
	for {
		tok, err := r.dec.Token()
		if err != nil {
			return nil, false
		}
		switch se := tok.(type) {
		case xml.StartElement:
			if se.Name.Local == "row" {
				r.inRow = true
				r.curRow = nil
				r.maxCol = 0
			}
			if r.inRow && se.Name.Local == "c" {
				// cell: attributes r (A1), t (type)
				var rAttr, tAttr string
				for _, a := range se.Attr {
					switch a.Name.Local {
					case "r":
						rAttr = a.Value
					case "t":
						tAttr = a.Value
					}
				}
				colIdx := colIndexFromRef(rAttr)
				if colIdx+1 > r.maxCol {
					r.maxCol = colIdx + 1
				}
				val := r.readCellValue(tAttr)
				// ensure capacity
				if len(r.curRow) <= colIdx {
					tmp := make([]string, colIdx+1)
					copy(tmp, r.curRow)
					r.curRow = tmp
				}
				r.curRow[colIdx] = val
			}
		case xml.EndElement:
			if se.Name.Local == "row" {
				// normalize length
				if len(r.curRow) < r.maxCol {
					tmp := make([]string, r.maxCol)
					copy(tmp, r.curRow)
					r.curRow = tmp
				}
				r.inRow = false
				return r.curRow, true
			}
		}
	}
}

func (r *sheetRowReader) readCellValue(tAttr string) string {
	var val string
	// read until end of c; capture <v> or <is><t>
	for {
		tok, err := r.dec.Token()
		if err != nil {
			return val
		}
		switch se := tok.(type) {
		case xml.StartElement:
			if se.Name.Local == "v" || se.Name.Local == "t" {
				var sb strings.Builder
				for {
					tk, er := r.dec.Token()
					if er != nil {
						break
					}
					if ed, ok := tk.(xml.EndElement); ok && (ed.Name.Local == "v" || ed.Name.Local == "t") {
						break
					}
					if ch, ok := tk.(xml.CharData); ok {
						sb.Write([]byte(ch))
					}
				}
				val = sb.String()
			}
		case xml.EndElement:
			if se.Name.Local == "c" {
				if tAttr == "s" { // shared string
					idx := atoiSafe(val)
					if idx >= 0 && idx < len(r.shared) {
						return r.shared[idx]
					}
					return ""
				}
				return val
			}
		}
	}
}

// helpers for refs like "C12" -> 2 (0-based index)
func colIndexFromRef(ref string) int {
	i := 0
	for i < len(ref) {
		c := ref[i]
		if c >= 'A' && c <= 'Z' || c >= 'a' && c <= 'z' {
			i++
			continue
		}
		break
	}
	s := ref[:i]
	s = strings.ToUpper(s)
	idx := 0
	for j := 0; j < len(s); j++ {
		idx = idx*26 + int(s[j]-'A'+1)
	}
	return idx - 1
}

func atoiSafe(s string) int {
	n := 0
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c < '0' || c > '9' {
			break
		}
		n = n*10 + int(c-'0')
	}
	return n
}

// normalizeRelPath converts relationship Target paths to ZIP-compatible paths.
// Relationships may have leading slashes (e.g., "/xl/worksheets/sheet1.xml")
// but ZIP entries don't include the leading slash.
func normalizeRelPath(rel string) string {
	// Strip leading slash if present
	rel = strings.TrimPrefix(rel, "/")
	// If it already starts with "xl/", use as-is; otherwise prepend "xl/"
	if strings.HasPrefix(rel, "xl/") {
		return rel
	}
	return filepath.Join("xl", rel)
}
