package scraper

import (
	"context"
	"log/slog"
	"math"

	"github.com/baxromumarov/trailscript/internal/observability"
)

const DefaultMissThreshold = 10

// Scanner walks a range of ids over a Source.
type Scanner struct {
	// MissThreshold ends an open-ended scan after that many consecutive misses.
	MissThreshold int
}

func NewScanner(missThreshold int) *Scanner {
	if missThreshold <= 0 {
		missThreshold = DefaultMissThreshold
	}
	return &Scanner{MissThreshold: missThreshold}
}

// Scan visits ids in ascending order and collects every hit. Misses are
// skipped; the only errors are an invalid range and ctx cancellation.
func (s *Scanner) Scan(ctx context.Context, src Source, rng ScanRange) ([]Entry, error) {
	if err := rng.Validate(); err != nil {
		return nil, err
	}
	if rng.Open {
		return s.scanOpen(ctx, src, rng.Start)
	}

	end := rng.End
	// ids past the source's highest one can only miss
	if b, ok := src.(Bounded); ok && b.MaxID() < end {
		end = b.MaxID()
	}

	slog.InfoContext(ctx, "scanning entries", "start", rng.Start, "finish", rng.End)
	var entries []Entry
	for id := rng.Start; id <= end; id++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if e, ok := s.visit(ctx, src, id); ok {
			entries = append(entries, e)
		}
		// end may be math.MaxInt
		if id == end {
			break
		}
	}
	return entries, nil
}

func (s *Scanner) scanOpen(ctx context.Context, src Source, start int) ([]Entry, error) {
	threshold := s.MissThreshold
	if threshold <= 0 {
		threshold = DefaultMissThreshold
	}
	maxID := -1
	if b, ok := src.(Bounded); ok {
		maxID = b.MaxID()
	}

	slog.InfoContext(ctx, "scanning entries until end", "start", start, "miss_threshold", threshold)
	var entries []Entry
	misses := 0
	id := start
	for misses < threshold {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		// every id past the source's highest one is a miss
		if maxID >= 0 && id > maxID {
			slog.DebugContext(ctx, "passed highest known id", "id", id, "max_id", maxID)
			break
		}
		if e, ok := s.visit(ctx, src, id); ok {
			entries = append(entries, e)
			misses = 0
		} else {
			misses++
		}
		if id == math.MaxInt {
			break
		}
		id++
	}

	if misses >= threshold {
		slog.InfoContext(ctx, "stopped after consecutive missing entries", "misses", threshold, "last_id", id-1)
	}
	return entries, nil
}

func (s *Scanner) visit(ctx context.Context, src Source, id int) (Entry, bool) {
	e, ok := src.Entry(id)
	if !ok {
		observability.IncEntryMiss()
		slog.DebugContext(ctx, "entry not found", "id", id)
		return Entry{}, false
	}
	observability.IncEntryFound()
	slog.DebugContext(ctx, "found entry", "id", id, "number", e.Number, "text", preview(e.Text, 50), "character", e.CharacterName)
	return e, true
}

func preview(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
