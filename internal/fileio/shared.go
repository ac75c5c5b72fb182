package fileio

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
)

var ErrUnsupported = errors.New("unsupported file type")

// Options controls how a table is read.
type Options struct {
	HeaderRow int  // 1-based
	Delimiter rune // delimited text only, ',' when zero
}

// ReadAnyMaps picks a parser by extension and returns rows as header->value maps.
// Headers and values are trimmed; fully empty rows are dropped.
func ReadAnyMaps(r io.Reader, filename string, opts Options) ([]map[string]string, error) {
	if opts.HeaderRow <= 0 {
		opts.HeaderRow = 1
	}
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".xlsx":
		return readXLSX(r, opts.HeaderRow)
	case ".xls":
		return readXLS(r, opts.HeaderRow)
	case ".csv", ".txt":
		return readCSV(r, opts.HeaderRow, opts.Delimiter)
	case ".tsv":
		return readCSV(r, opts.HeaderRow, '\t')
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupported, filename)
	}
}

// pickHeader takes the header row and names blank columns "Column N".
func pickHeader(rows [][]string, headerRow int) []string {
	idx := headerRow - 1
	if idx < 0 || idx >= len(rows) {
		idx = 0
	}
	h := rows[idx]
	out := make([]string, len(h))
	for i, v := range h {
		v = strings.TrimSpace(strings.TrimPrefix(v, bom))
		if v == "" {
			v = fmt.Sprintf("Column %d", i+1)
		}
		out[i] = v
	}
	return out
}

// rowsToMaps converts rows after the header into maps. Short rows get "" for the missing cells.
func rowsToMaps(rows [][]string, headers []string, headerRow int) []map[string]string {
	var out []map[string]string
	for r := headerRow; r < len(rows); r++ {
		rec := rows[r]
		m := make(map[string]string, len(headers))
		empty := true
		for c, h := range headers {
			var v string
			if c < len(rec) {
				v = strings.TrimSpace(rec[c])
			}
			if v != "" {
				empty = false
			}
			m[h] = v
		}
		if !empty {
			out = append(out, m)
		}
	}
	return out
}
