package worklog

import (
	"strings"

	"github.com/nao1215/worklog/domain/model"
)

// Tokenize splits a document into logical rows and each row into fields.
func Tokenize(text string) [][]string {
	rows := SplitRows(text)
	out := make([][]string, len(rows))
	for i, row := range rows {
		out[i] = SplitFields(row)
	}
	return out
}

// SplitRows splits a document into logical rows.
//
// A leading byte order mark is removed and invalid UTF-8 is replaced.
// Rows end at a newline outside quotes; a newline inside an open quote
// belongs to the field. Carriage returns are dropped wherever they occur
// and rows that are blank after trimming are discarded. An unterminated
// quote runs to the end of the input.
func SplitRows(text string) []string {
	text = strings.TrimPrefix(text, byteOrderMark)
	text = strings.ToValidUTF8(text, "\uFFFD")

	var rows []string
	emit := func(row string) {
		if strings.IndexByte(row, '\r') >= 0 {
			row = strings.ReplaceAll(row, "\r", "")
		}
		if strings.TrimSpace(row) != "" {
			rows = append(rows, row)
		}
	}

	inQuotes := false
	start := 0
	for i := 0; i < len(text); i++ {
		switch text[i] {
		case quoteChar:
			inQuotes = !inQuotes
		case '\n':
			if !inQuotes {
				emit(text[start:i])
				start = i + 1
			}
		}
	}
	if start < len(text) {
		emit(text[start:])
	}
	return rows
}

// SplitFields splits one logical row on FieldSeparator.
//
// Separators inside quotes are literal, a doubled quote inside an open
// quote collapses to one quote character, delimiting quotes are removed
// and every field is trimmed. A row always yields at least one field.
func SplitFields(row string) []string {
	fields := make([]string, 0, model.FieldCount)
	var b strings.Builder
	inQuotes := false
	for i := 0; i < len(row); i++ {
		c := row[i]
		switch {
		case c == quoteChar:
			if inQuotes && i+1 < len(row) && row[i+1] == quoteChar {
				b.WriteByte(quoteChar)
				i++
				continue
			}
			inQuotes = !inQuotes
		case c == FieldSeparator && !inQuotes:
			fields = append(fields, strings.TrimSpace(b.String()))
			b.Reset()
		default:
			b.WriteByte(c)
		}
	}
	return append(fields, strings.TrimSpace(b.String()))
}

// isEmptyRow reports whether every field is blank.
func isEmptyRow(fields []string) bool {
	for _, f := range fields {
		if f != "" {
			return false
		}
	}
	return true
}
