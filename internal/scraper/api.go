package scraper

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/baxromumarov/trailscript/internal/trailsdb"
)

// MapRecord turns one script detail record into an Entry. Records without a
// usable row, outside rng, or with no text left after normalization are skipped.
func MapRecord(rec trailsdb.Script, lang Language, rng ScanRange) (Entry, bool) {
	row, ok := parseRow(rec.Row)
	if !ok || !rng.Contains(row) {
		return Entry{}, false
	}

	var text, name string
	switch lang {
	case JP:
		text = firstNonEmpty(rec.JpnHTMLText, rec.JpnSearchText)
		name = rec.JpnChrName
	default:
		text = firstNonEmpty(rec.EngHTMLText, rec.EngSearchText)
		name = rec.EngChrName
	}
	name = strings.TrimSpace(name)
	if name == "" {
		name = UnknownCharacter
	}

	text = Normalize(StripBreaks(text))
	if text == "" {
		return Entry{}, false
	}
	return Entry{Number: row, Text: text, CharacterName: name}, true
}

func parseRow(raw json.RawMessage) (int, bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return 0, false
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return 0, false
		}
		raw = []byte(strings.TrimSpace(s))
	}
	if n, err := strconv.Atoi(string(raw)); err == nil {
		return n, true
	}
	f, err := strconv.ParseFloat(string(raw), 64)
	if err != nil || f != math.Trunc(f) || math.Abs(f) > math.MaxInt32 {
		return 0, false
	}
	return int(f), true
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

// APISource serves entries decoded from a script detail response, keyed by row.
type APISource struct {
	byRow map[int]Entry
	max   int
}

// NewAPISource maps every record once. When a row appears more than once
// the first record wins.
func NewAPISource(records []trailsdb.Script, lang Language) *APISource {
	s := &APISource{byRow: make(map[int]Entry, len(records))}
	all := OpenRange(1)
	for _, rec := range records {
		e, ok := MapRecord(rec, lang, all)
		if !ok {
			continue
		}
		if _, dup := s.byRow[e.Number]; dup {
			continue
		}
		s.byRow[e.Number] = e
		if e.Number > s.max {
			s.max = e.Number
		}
	}
	return s
}

func (s *APISource) Entry(id int) (Entry, bool) {
	e, ok := s.byRow[id]
	return e, ok
}

func (s *APISource) MaxID() int {
	return s.max
}

func (s *APISource) Len() int {
	return len(s.byRow)
}
