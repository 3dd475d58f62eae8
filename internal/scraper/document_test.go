package scraper

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parseDoc(t *testing.T, body string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader("<html><body>" + body + "</body></html>"))
	require.NoError(t, err)
	return doc
}

func table(rows ...string) string {
	return "<table>" + strings.Join(rows, "") + "</table>"
}

func TestExtractEntry_Languages(t *testing.T) {
	doc := parseDoc(t, table(
		`<tr><td id="1">1</td><td><img src="face.png"></td>`+
			`<td><span class="name">Estelle</span> Hello,
   Joshua!</td>`+
			`<td><span class="name">エステル</span>こんにちは</td></tr>`,
	))

	t.Run("english reads cell 2", func(t *testing.T) {
		e, ok := ExtractEntry(doc, 1, EN)
		require.True(t, ok)
		assert.Equal(t, Entry{Number: 1, Text: "Hello, Joshua!", CharacterName: "Estelle"}, e)
	})

	t.Run("japanese reads cell 3", func(t *testing.T) {
		e, ok := ExtractEntry(doc, 1, JP)
		require.True(t, ok)
		assert.Equal(t, Entry{Number: 1, Text: "こんにちは", CharacterName: "エステル"}, e)
	})
}

func TestExtractEntry_NotFound(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{
			name: "id absent",
			body: table(`<tr><td id="2">2</td><td></td><td>text</td><td>jp</td></tr>`),
		},
		{
			name: "fewer than four cells",
			body: table(`<tr><td id="1">1</td><td></td><td>Some text</td></tr>`),
		},
		{
			name: "not inside a row",
			body: `<div id="1">1 hello</div>`,
		},
		{
			name: "no digits in first cell",
			body: table(`<tr><td id="1">n/a</td><td></td><td>text</td><td>jp</td></tr>`),
		},
		{
			name: "empty text cell",
			body: table(`<tr><td id="1">1</td><td></td><td>  
  </td><td>jp</td></tr>`),
		},
		{
			name: "text is only the speaker name",
			body: table(`<tr><td id="1">1</td><td></td><td><span class="name">Bob</span></td><td>jp</td></tr>`),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, ok := ExtractEntry(parseDoc(t, tt.body), 1, EN)
			assert.False(t, ok)
		})
	}
}

func TestExtractEntry_StripsLeadingName(t *testing.T) {
	doc := parseDoc(t, table(
		`<tr><td id="4">4</td><td><b>Bob</b></td><td>Bob says hi</td><td>jp</td></tr>`,
	))

	e, ok := ExtractEntry(doc, 4, EN)
	require.True(t, ok)
	assert.Equal(t, "Bob", e.CharacterName)
	assert.Equal(t, "says hi", e.Text)
}

func TestExtractEntry_StripsNameAfterLeadingWhitespace(t *testing.T) {
	doc := parseDoc(t, table(
		"<tr><td id=\"4\">4</td><td><b>Bob</b></td><td>\n  Bob says hi</td><td>jp</td></tr>",
	))

	e, ok := ExtractEntry(doc, 4, EN)
	require.True(t, ok)
	assert.Equal(t, "Bob", e.CharacterName)
	assert.Equal(t, "says hi", e.Text)
}

func TestExtractEntry_NameOnlyStrippedOnce(t *testing.T) {
	doc := parseDoc(t, table(
		`<tr><td id="4">4</td><td><b>Bob</b></td><td>Bob Bob!</td><td>jp</td></tr>`,
	))

	e, ok := ExtractEntry(doc, 4, EN)
	require.True(t, ok)
	assert.Equal(t, "Bob!", e.Text)
}

func TestExtractEntry_UnknownSpeaker(t *testing.T) {
	doc := parseDoc(t, table(
		`<tr><td id="9">9</td><td></td><td>The wind howls.</td><td>jp</td></tr>`,
	))

	e, ok := ExtractEntry(doc, 9, EN)
	require.True(t, ok)
	assert.Equal(t, UnknownCharacter, e.CharacterName)
	assert.Equal(t, "The wind howls.", e.Text)
}

func TestExtractEntry_DisplayNumberDiffersFromID(t *testing.T) {
	doc := parseDoc(t, table(
		`<tr><td id="12">#0034</td><td></td><td>Line</td><td>jp</td></tr>`,
	))

	e, ok := ExtractEntry(doc, 12, EN)
	require.True(t, ok)
	assert.Equal(t, 34, e.Number)
}

func TestExtractEntry_CountsDirectCellsOnly(t *testing.T) {
	// the nested table adds cells, but the outer row still has three
	doc := parseDoc(t, table(
		`<tr><td id="1">1</td><td></td><td><table><tr><td>a</td><td>b</td></tr></table></td></tr>`,
	))

	_, ok := ExtractEntry(doc, 1, EN)
	assert.False(t, ok)
}

func TestDocumentSource(t *testing.T) {
	doc := parseDoc(t, table(
		`<tr><td id="1">1</td><td></td><td>First</td><td>jp</td></tr>`,
		`<tr><td id="2">2</td><td></td><td></td><td>jp</td></tr>`,
		`<tr><td id="3">3</td><td></td><td>Third</td><td>jp</td></tr>`,
	))
	src := NewDocumentSource(doc, EN)

	e, ok := src.Entry(1)
	require.True(t, ok)
	assert.Equal(t, "First", e.Text)

	_, ok = src.Entry(2)
	assert.False(t, ok, "empty text is a miss")

	e, ok = src.Entry(3)
	require.True(t, ok)
	assert.Equal(t, 3, e.Number)

	_, ok = src.Entry(4)
	assert.False(t, ok)
}

func TestDocumentSource_FirstIDWins(t *testing.T) {
	doc := parseDoc(t, table(
		`<tr><td id="5">5</td><td></td><td>Original</td><td>jp</td></tr>`,
		`<tr><td id="5">50</td><td></td><td>Duplicate</td><td>jp</td></tr>`,
	))

	e, ok := NewDocumentSource(doc, EN).Entry(5)
	require.True(t, ok)
	assert.Equal(t, "Original", e.Text)

	fromDoc, ok := ExtractEntry(doc, 5, EN)
	require.True(t, ok)
	assert.Equal(t, e, fromDoc)
}
