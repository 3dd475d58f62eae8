package scraper

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/text/cases"
)

// Row is one script table row split into cells.
type Row struct {
	Sel   *goquery.Selection
	Cells *goquery.Selection
	// Text is the cell holding dialogue for the selected language.
	Text *goquery.Selection
}

// NameAttempt looks for the speaker name in a row.
type NameAttempt func(row Row) (string, bool)

// NameAttempts are tried in order; the first hit wins. Explicit name classes
// beat structural position.
var NameAttempts = []NameAttempt{
	nameByClassInTextCell,
	nameInFirstCell,
	boldInRow,
	nameByClassSubstring,
}

// CharacterName runs attempts in order and falls back to UnknownCharacter.
func CharacterName(row Row, attempts []NameAttempt) (string, bool) {
	for _, attempt := range attempts {
		if name, ok := attempt(row); ok {
			return name, true
		}
	}
	return UnknownCharacter, false
}

func nameByClassInTextCell(row Row) (string, bool) {
	return firstText(row.Text.Find("span, div, strong, b").FilterFunction(func(_ int, s *goquery.Selection) bool {
		return hasClassContaining(s, "name", "character")
	}))
}

func nameInFirstCell(row Row) (string, bool) {
	return firstText(row.Cells.First().Find("span, div, strong, b"))
}

func boldInRow(row Row) (string, bool) {
	return firstText(row.Sel.Find("strong, b"))
}

func nameByClassSubstring(row Row) (string, bool) {
	return firstText(row.Text.Find("div, span, p").FilterFunction(func(_ int, s *goquery.Selection) bool {
		return hasClassContaining(s, "name", "char")
	}))
}

// firstText takes the first element of sel only; an empty first match is a miss.
func firstText(sel *goquery.Selection) (string, bool) {
	if sel.Length() == 0 {
		return "", false
	}
	name := strings.TrimSpace(sel.First().Text())
	if name == "" {
		return "", false
	}
	return name, true
}

func hasClassContaining(s *goquery.Selection, needles ...string) bool {
	class, ok := s.Attr("class")
	if !ok {
		return false
	}
	fold := cases.Fold()
	for _, c := range strings.Fields(class) {
		c = fold.String(c)
		for _, n := range needles {
			if strings.Contains(c, n) {
				return true
			}
		}
	}
	return false
}
