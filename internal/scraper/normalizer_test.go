package scraper

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"only whitespace", " \t\r\n ", ""},
		{"surrounding blank lines", "  a\n\nb  ", "a b"},
		{"crlf", "first\r\nsecond", "first second"},
		{"bare cr", "first\rsecond", "first second"},
		{"tabs and runs", "a\t\t b   c", "a b c"},
		{"already clean", "Hello there.", "Hello there."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.in))
		})
	}
}

func TestNormalize_Properties(t *testing.T) {
	inputs := []string{
		"",
		"   ",
		"line one\nline two\r\nline three\rline four",
		"  leading and trailing  ",
		"double  space\t\ttab",
		"\n\n\n",
		"日本語\n テキスト",
	}

	for _, in := range inputs {
		out := Normalize(in)
		assert.NotContains(t, out, "\n", "input %q", in)
		assert.NotContains(t, out, "\r", "input %q", in)
		assert.NotContains(t, out, "  ", "input %q", in)
		assert.Equal(t, strings.TrimSpace(out), out, "input %q", in)
		assert.Equal(t, out, Normalize(out), "not idempotent for %q", in)
	}
}

func TestStripBreaks(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Hi<br>there", "Hi there"},
		{"Hi<br/>there", "Hi there"},
		{"Hi<BR />there", "Hi there"},
		{"Hi< br >there", "Hi there"},
		{"no breaks", "no breaks"},
		{"<bread>", "<bread>"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, StripBreaks(tt.in))
		})
	}
}
