package config

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/baxromumarov/trailscript/internal/scraper"
	"github.com/baxromumarov/trailscript/internal/urlutil"
)

// ScriptURL identifies one script file on the site.
type ScriptURL struct {
	// URL is the page address with any #anchor removed.
	URL      string
	FileName string
	GameID   int
}

// ParseScriptURL reads the required fname and game_id query parameters.
func ParseScriptURL(raw string) (ScriptURL, error) {
	u, err := urlutil.Parse(raw)
	if err != nil {
		return ScriptURL{}, fmt.Errorf("%w: url %q: %v", ErrInvalidConfig, raw, err)
	}

	q := u.Query()
	fname := strings.TrimSpace(q.Get("fname"))
	if fname == "" {
		return ScriptURL{}, fmt.Errorf("%w: url %q has no fname parameter", ErrInvalidConfig, raw)
	}
	gameRaw := strings.TrimSpace(q.Get("game_id"))
	if gameRaw == "" {
		return ScriptURL{}, fmt.Errorf("%w: url %q has no game_id parameter", ErrInvalidConfig, raw)
	}
	gameID, err := strconv.Atoi(gameRaw)
	if err != nil {
		return ScriptURL{}, fmt.Errorf("%w: game_id %q is not an integer", ErrInvalidConfig, gameRaw)
	}

	return ScriptURL{URL: u.String(), FileName: fname, GameID: gameID}, nil
}

// ParseRange reads a start id and a finish that is either an id or "end"
// in any case.
func ParseRange(start, finish string) (scraper.ScanRange, error) {
	s, err := strconv.Atoi(strings.TrimSpace(start))
	if err != nil {
		return scraper.ScanRange{}, fmt.Errorf("%w: start must be a number, got %q", ErrInvalidConfig, start)
	}
	if s < 1 {
		return scraper.ScanRange{}, fmt.Errorf("%w: start number must be at least 1", ErrInvalidConfig)
	}

	finish = strings.TrimSpace(finish)
	if strings.EqualFold(finish, "end") {
		return scraper.OpenRange(s), nil
	}
	f, err := strconv.Atoi(finish)
	if err != nil {
		return scraper.ScanRange{}, fmt.Errorf("%w: finish must be a number or 'end'/'END', got %q", ErrInvalidConfig, finish)
	}
	if f < 1 {
		return scraper.ScanRange{}, fmt.Errorf("%w: finish number must be at least 1", ErrInvalidConfig)
	}
	if f < s {
		return scraper.ScanRange{}, fmt.Errorf("%w: finish number must be greater than or equal to start number", ErrInvalidConfig)
	}
	return scraper.NewRange(s, f), nil
}
