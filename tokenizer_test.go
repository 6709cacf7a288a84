package worklog

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitRows(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{
			name:  "lf rows",
			input: "a;b\nc;d\n",
			want:  []string{"a;b", "c;d"},
		},
		{
			name:  "crlf rows",
			input: "a;b\r\nc;d\r\n",
			want:  []string{"a;b", "c;d"},
		},
		{
			name:  "stray carriage return dropped",
			input: "a;\rb\nc",
			want:  []string{"a;b", "c"},
		},
		{
			name:  "byte order mark stripped",
			input: "\uFEFFh1;h2\nx;y",
			want:  []string{"h1;h2", "x;y"},
		},
		{
			name:  "blank rows discarded",
			input: "a\n\n   \n\t\nb",
			want:  []string{"a", "b"},
		},
		{
			name:  "newline inside quotes kept",
			input: "1;\"line one\r\nline two\";3\n4;5;6",
			want:  []string{"1;\"line one\nline two\";3", "4;5;6"},
		},
		{
			name:  "doubled quote does not end quoting",
			input: "\"say \"\"hi\"\"\nthere\";x\ny",
			want:  []string{"\"say \"\"hi\"\"\nthere\";x", "y"},
		},
		{
			name:  "unterminated quote consumes to end",
			input: "a;\"open\nb;c\nd",
			want:  []string{"a;\"open\nb;c\nd"},
		},
		{
			name:  "empty input",
			input: "",
			want:  nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, SplitRows(tt.input))
		})
	}
}

func TestSplitFields(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{
			name:  "plain fields trimmed",
			input: " a ; b;c ",
			want:  []string{"a", "b", "c"},
		},
		{
			name:  "quoted separator preserved",
			input: `1;"Smith; John";3`,
			want:  []string{"1", "Smith; John", "3"},
		},
		{
			name:  "doubled quote collapses",
			input: `"He said ""yes""";x`,
			want:  []string{`He said "yes"`, "x"},
		},
		{
			name:  "only quotes",
			input: `"""";""`,
			want:  []string{`"`, ""},
		},
		{
			name:  "embedded newline",
			input: "\"a\nb\";c",
			want:  []string{"a\nb", "c"},
		},
		{
			name:  "empty fields",
			input: ";;",
			want:  []string{"", "", ""},
		},
		{
			name:  "unterminated quote",
			input: `a;"b;c`,
			want:  []string{"a", "b;c"},
		},
		{
			name:  "empty row",
			input: "",
			want:  []string{""},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, SplitFields(tt.input))
		})
	}
}

func TestTokenize_QuotedSeparatorProperty(t *testing.T) {
	t.Parallel()

	values := []string{
		"plain",
		"with;separator",
		`with "quotes"`,
		"multi\nline;and \"both\"",
		";;;",
	}
	for _, v := range values {
		quoted := `"` + strings.ReplaceAll(v, `"`, `""`) + `"`
		doc := "h1;h2;h3\nx;" + quoted + ";y\n"

		rows := Tokenize(doc)
		if assert.Len(t, rows, 2, "value %q", v) {
			assert.Equal(t, []string{"x", v, "y"}, rows[1], "value %q", v)
		}
	}
}

func TestIsEmptyRow(t *testing.T) {
	t.Parallel()

	assert.True(t, isEmptyRow(nil))
	assert.True(t, isEmptyRow([]string{"", "", ""}))
	assert.False(t, isEmptyRow([]string{"", "x"}))
}
