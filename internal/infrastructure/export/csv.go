// Package export writes attendance and exam data as CSV (spreadsheet-friendly,
// locale-aware delimiter) and as XLSX workbooks.
package export

import (
	"io"
	"strings"
)

// utf8BOM lets spreadsheet applications detect the encoding.
const utf8BOM = "\ufeff"

// Separator returns the locale delimiter: ';' for French and Arabic, ','
// otherwise.
func Separator(language string) rune {
	switch language {
	case "fr", "ar":
		return ';'
	default:
		return ','
	}
}

// EscapeCell quotes s when it contains a quote, a line break, the separator,
// or leading or trailing whitespace. Embedded quotes are doubled.
func EscapeCell(s string, sep rune) string {
	needsQuote := strings.ContainsAny(s, "\"\r\n") ||
		strings.ContainsRune(s, sep) ||
		(s != "" && (isSpace(s[0]) || isSpace(s[len(s)-1])))
	esc := strings.ReplaceAll(s, `"`, `""`)
	if needsQuote {
		return `"` + esc + `"`
	}
	return esc
}

func isSpace(b byte) bool {
	switch b {
	case ' ', '\t', '\n', '\r', '\v', '\f':
		return true
	}
	return false
}

// WriteCSV writes rows with a UTF-8 BOM and CRLF line breaks. sep == 0 uses
// Separator(language).
func WriteCSV(w io.Writer, rows [][]string, language string, sep rune) error {
	if sep == 0 {
		sep = Separator(language)
	}

	var b strings.Builder
	b.WriteString(utf8BOM)
	for i, row := range rows {
		if i > 0 {
			b.WriteString("\r\n")
		}
		for j, cell := range row {
			if j > 0 {
				b.WriteRune(sep)
			}
			b.WriteString(EscapeCell(cell, sep))
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}
