package scraper

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// UnknownCharacter is used when no speaker name can be located.
const UnknownCharacter = "Unknown"

var (
	ErrNoEntries    = errors.New("no entries found")
	ErrInvalidRange = errors.New("invalid scan range")
)

// Entry is one line of dialogue.
type Entry struct {
	Number        int    `json:"number"`
	Text          string `json:"text"`
	CharacterName string `json:"character_name"`
}

// Language selects which of the parallel text columns is read.
type Language int

const (
	EN Language = iota
	JP
)

func ParseLanguage(s string) (Language, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "en", "":
		return EN, nil
	case "jp":
		return JP, nil
	default:
		return EN, fmt.Errorf("unknown language %q (want en or jp)", s)
	}
}

func (l Language) String() string {
	if l == JP {
		return "jp"
	}
	return "en"
}

// ScanRange is either bounded (Start..End inclusive) or open-ended.
type ScanRange struct {
	Start int
	End   int
	Open  bool
}

func NewRange(start, end int) ScanRange {
	return ScanRange{Start: start, End: end}
}

func OpenRange(start int) ScanRange {
	return ScanRange{Start: start, Open: true}
}

func (r ScanRange) Validate() error {
	if r.Start < 1 {
		return fmt.Errorf("%w: start must be at least 1, got %d", ErrInvalidRange, r.Start)
	}
	if !r.Open && r.End < r.Start {
		return fmt.Errorf("%w: finish %d is before start %d", ErrInvalidRange, r.End, r.Start)
	}
	return nil
}

// Contains reports whether id lies inside the range. An open range has no upper bound.
func (r ScanRange) Contains(id int) bool {
	if id < r.Start {
		return false
	}
	return r.Open || id <= r.End
}

// EndLabel is the finish bound as typed by the user: a number or "end".
func (r ScanRange) EndLabel() string {
	if r.Open {
		return "end"
	}
	return strconv.Itoa(r.End)
}

func (r ScanRange) String() string {
	return strconv.Itoa(r.Start) + "-" + r.EndLabel()
}

// Source yields the entry stored under an id, or false when there is none.
type Source interface {
	Entry(id int) (Entry, bool)
}

// Bounded is implemented by sources that know their highest id up front.
type Bounded interface {
	MaxID() int
}
