package scraper

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

const minRowCells = 4

var digitRun = regexp.MustCompile(`\d+`)

// DocumentSource extracts entries from a fetched script page. Ids are the
// element id attributes anchoring each table row.
type DocumentSource struct {
	lang     Language
	attempts []NameAttempt
	byID     map[string]*goquery.Selection
}

func NewDocumentSource(doc *goquery.Document, lang Language) *DocumentSource {
	s := &DocumentSource{
		lang:     lang,
		attempts: NameAttempts,
		byID:     make(map[string]*goquery.Selection),
	}
	doc.Find("[id]").Each(func(_ int, sel *goquery.Selection) {
		id, _ := sel.Attr("id")
		if _, seen := s.byID[id]; !seen {
			s.byID[id] = sel
		}
	})
	return s
}

func (s *DocumentSource) Entry(id int) (Entry, bool) {
	sel, ok := s.byID[strconv.Itoa(id)]
	if !ok {
		return Entry{}, false
	}
	return extractRow(sel, s.lang, s.attempts)
}

// ExtractEntry finds the row anchored at id in doc and extracts it.
func ExtractEntry(doc *goquery.Document, id int, lang Language) (Entry, bool) {
	sel := doc.Find(`[id="` + strconv.Itoa(id) + `"]`).First()
	if sel.Length() == 0 {
		return Entry{}, false
	}
	return extractRow(sel, lang, NameAttempts)
}

func extractRow(anchor *goquery.Selection, lang Language, attempts []NameAttempt) (Entry, bool) {
	tr := anchor.ParentsFiltered("tr").First()
	if tr.Length() == 0 {
		return Entry{}, false
	}
	cells := tr.ChildrenFiltered("td")
	if cells.Length() < minRowCells {
		return Entry{}, false
	}

	digits := digitRun.FindString(strings.TrimSpace(cells.First().Text()))
	if digits == "" {
		return Entry{}, false
	}
	number, err := strconv.Atoi(digits)
	if err != nil {
		return Entry{}, false
	}

	textIdx := 2
	if lang == JP {
		textIdx = 3
	}
	row := Row{Sel: tr, Cells: cells, Text: cells.Eq(textIdx)}

	name, found := CharacterName(row, attempts)

	raw := joinText(row.Text)
	if found {
		trimmed := strings.TrimLeftFunc(raw, unicode.IsSpace)
		if strings.HasPrefix(trimmed, name) {
			raw = trimmed[len(name):]
		}
	}

	text := Normalize(raw)
	if text == "" {
		return Entry{}, false
	}
	return Entry{Number: number, Text: text, CharacterName: name}, true
}

// joinText joins every descendant text node with a single space, leaving
// the whitespace inside nodes untouched.
func joinText(sel *goquery.Selection) string {
	var parts []string
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			parts = append(parts, n.Data)
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	for _, n := range sel.Nodes {
		walk(n)
	}
	return strings.Join(parts, " ")
}
