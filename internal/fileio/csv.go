package fileio

import (
	"bufio"
	"encoding/csv"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/saintfish/chardet"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/transform"
)

const (
	bom           = "\ufeff"
	minConfidence = 50
)

// readCSV reads delimited text with headerRow (1-based). A UTF-8 BOM is dropped and
// non-UTF-8 input is transcoded to UTF-8.
func readCSV(r io.Reader, headerRow int, delim rune) ([]map[string]string, error) {
	br := bufio.NewReader(r)

	if b, err := br.Peek(len(bom)); err == nil && string(b) == bom {
		_, _ = br.Discard(len(bom))
	}

	var dec io.Reader = br
	peek, _ := br.Peek(4096)
	if len(peek) > 0 && !utf8.Valid(trimPartialRune(peek)) {
		dec = transform.NewReader(br, detectEncoding(peek).NewDecoder())
	}

	cr := csv.NewReader(dec)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	if delim != 0 {
		cr.Comma = delim
	}

	var rows [][]string
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		rows = append(rows, rec)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	h := pickHeader(rows, headerRow)
	return rowsToMaps(rows, h, headerRow), nil
}

// detectEncoding trusts chardet only when it is confident; otherwise the file is
// assumed to be Windows-874, which is what Excel writes on Thai locales. chardet has
// no Thai model and reports Latin-1 for any unknown 8-bit text, so that answer is
// ignored too.
func detectEncoding(sample []byte) encoding.Encoding {
	det, err := chardet.NewTextDetector().DetectBest(sample)
	if err != nil || det == nil || det.Confidence < minConfidence {
		return charmap.Windows874
	}
	cs := strings.ToLower(det.Charset)
	if cs == "iso-8859-1" || cs == "windows-1252" {
		return charmap.Windows874
	}
	if enc, err := htmlindex.Get(cs); err == nil && enc != nil {
		return enc
	}
	return charmap.Windows874
}

// peek may cut a multi-byte rune in half
func trimPartialRune(b []byte) []byte {
	for i := 0; i < utf8.UTFMax && len(b) > 0; i++ {
		if r, _ := utf8.DecodeLastRune(b); r != utf8.RuneError {
			return b
		}
		b = b[:len(b)-1]
	}
	return b
}
