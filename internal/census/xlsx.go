package census

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"path"
	"strconv"
	"strings"
)

// ReadSheet extracts all rows of the named worksheet from an .xlsx workbook as
// strings. The statistics office publishes the stratified population counts as
// one sheet of a larger workbook, so selection is by name; an empty name means
// the first sheet.
func ReadSheet(file string, sheetName string) ([][]string, error) {
	b, err := os.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("read workbook: %w", err)
	}
	zr, err := zip.NewReader(bytes.NewReader(b), int64(len(b)))
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}

	sheets := parseWorkbook(zipEntry(zr, "xl/workbook.xml"))
	rels := parseRelationships(zipEntry(zr, "xl/_rels/workbook.xml.rels"))
	shared := parseSharedStrings(zipEntry(zr, "xl/sharedStrings.xml"))

	target := ""
	if sheetName == "" && len(sheets) > 0 {
		target = rels[sheets[0].rid]
	} else {
		for _, s := range sheets {
			if strings.EqualFold(s.name, sheetName) {
				target = rels[s.rid]
				break
			}
		}
	}
	if target == "" {
		names := make([]string, len(sheets))
		for i, s := range sheets {
			names[i] = s.name
		}
		return nil, fmt.Errorf("sheet %q not found; workbook has: %s",
			sheetName, strings.Join(names, ", "))
	}

	data := zipEntry(zr, sheetPath(target))
	if data == nil {
		return nil, fmt.Errorf("worksheet part %q missing from workbook", target)
	}
	var rows [][]string
	rr := newRowReader(data, shared)
	for {
		row, ok := rr.next()
		if !ok {
			break
		}
		rows = append(rows, row)
	}
	return rows, nil
}

type wbSheet struct {
	name string
	rid  string
}

func parseWorkbook(data []byte) []wbSheet {
	if len(data) == 0 {
		return nil
	}
	dec := xml.NewDecoder(bytes.NewReader(data))
	var sheets []wbSheet
	for {
		tok, err := dec.Token()
		if err != nil {
			return sheets
		}
		if se, ok := tok.(xml.StartElement); ok && se.Name.Local == "sheet" {
			var s wbSheet
			for _, a := range se.Attr {
				switch a.Name.Local {
				case "name":
					s.name = a.Value
				case "id":
					s.rid = a.Value
				}
			}
			sheets = append(sheets, s)
		}
	}
}

func parseRelationships(data []byte) map[string]string {
	out := map[string]string{}
	if len(data) == 0 {
		return out
	}
	dec := xml.NewDecoder(bytes.NewReader(data))
	for {
		tok, err := dec.Token()
		if err != nil {
			return out
		}
		if se, ok := tok.(xml.StartElement); ok && se.Name.Local == "Relationship" {
			var id, rel string
			for _, a := range se.Attr {
				switch a.Name.Local {
				case "Id":
					id = a.Value
				case "Target":
					rel = a.Value
				}
			}
			if id != "" && rel != "" {
				out[id] = rel
			}
		}
	}
}

func parseSharedStrings(data []byte) []string {
	if len(data) == 0 {
		return nil
	}
	dec := xml.NewDecoder(bytes.NewReader(data))
	var out []string
	var buf strings.Builder
	inT := false
	for {
		tok, err := dec.Token()
		if err != nil {
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
			}
		case xml.CharData:
			if inT {
				buf.Write([]byte(se))
			}
		}
	}
}

func zipEntry(zr *zip.Reader, name string) []byte {
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

// sheetPath normalizes relationship targets ("worksheets/sheet1.xml" or
// "/xl/worksheets/sheet1.xml") to ZIP entry paths.
func sheetPath(rel string) string {
	rel = strings.TrimPrefix(rel, "/")
	if strings.HasPrefix(rel, "xl/") {
		return rel
	}
	return path.Join("xl", rel)
}

// rowReader streams <row> elements from a worksheet part, resolving shared
// strings and A1-style column references.
type rowReader struct {
	dec    *xml.Decoder
	shared []string
	cur    []string
	width  int
	inRow  bool
}

func newRowReader(data []byte, shared []string) *rowReader {
	return &rowReader{dec: xml.NewDecoder(bytes.NewReader(data)), shared: shared}
}

func (r *rowReader) next() ([]string, bool) {
	for {
		tok, err := r.dec.Token()
		if err != nil {
			return nil, false
		}
		switch se := tok.(type) {
		case xml.StartElement:
			if se.Name.Local == "row" {
				r.inRow = true
				r.cur = nil
				r.width = 0
			}
			if r.inRow && se.Name.Local == "c" {
				var ref, typ string
				for _, a := range se.Attr {
					switch a.Name.Local {
					case "r":
						ref = a.Value
					case "t":
						typ = a.Value
					}
				}
				idx := colIndex(ref)
				if idx < 0 {
					// No reference attribute; append after the last seen cell.
					idx = len(r.cur)
				}
				if idx+1 > r.width {
					r.width = idx + 1
				}
				if len(r.cur) <= idx {
					grown := make([]string, idx+1)
					copy(grown, r.cur)
					r.cur = grown
				}
				r.cur[idx] = r.cellValue(typ)
			}
		case xml.EndElement:
			if se.Name.Local == "row" {
				if len(r.cur) < r.width {
					grown := make([]string, r.width)
					copy(grown, r.cur)
					r.cur = grown
				}
				r.inRow = false
				return r.cur, true
			}
		}
	}
}

func (r *rowReader) cellValue(typ string) string {
	var val string
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
					tk, err := r.dec.Token()
					if err != nil {
						break
					}
					if end, ok := tk.(xml.EndElement); ok && (end.Name.Local == "v" || end.Name.Local == "t") {
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
				if typ == "s" {
					idx, err := strconv.Atoi(val)
					if err != nil || idx < 0 || idx >= len(r.shared) {
						return ""
					}
					return r.shared[idx]
				}
				return val
			}
		}
	}
}

// colIndex converts an A1 reference ("C12") to a 0-based column index.
func colIndex(ref string) int {
	n := 0
	for i := 0; i < len(ref); i++ {
		c := ref[i]
		switch {
		case c >= 'A' && c <= 'Z':
			n = n*26 + int(c-'A'+1)
		case c >= 'a' && c <= 'z':
			n = n*26 + int(c-'a'+1)
		default:
			return n - 1
		}
	}
	return n - 1
}
