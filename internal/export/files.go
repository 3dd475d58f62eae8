// Package export renders entries as text and HTML files.
package export

import (
	"bytes"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/baxromumarov/trailscript/internal/scraper"
)

type Format int

const (
	FormatText Format = 1 << iota
	FormatHTML

	FormatBoth = FormatText | FormatHTML
)

func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "txt", "text":
		return FormatText, nil
	case "html":
		return FormatHTML, nil
	case "both", "":
		return FormatBoth, nil
	default:
		return 0, fmt.Errorf("unknown format %q (want txt, html or both)", s)
	}
}

// BaseFilename is output_{fname}_{start}_{finish}_{lang} with finish "end"
// for open ranges.
func BaseFilename(fname string, rng scraper.ScanRange, lang scraper.Language) string {
	return fmt.Sprintf("output_%s_%d_%s_%s", sanitize(fname), rng.Start, rng.EndLabel(), lang)
}

func sanitize(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return "output"
	}
	return strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|':
			return '_'
		}
		return r
	}, name)
}

type Options struct {
	Dir    string
	Base   string
	Format Format
	Text   TextOptions
	HTML   HTMLOptions
}

// WriteFiles writes the selected formats and returns the paths written. An
// empty entry list is refused so a failed run never leaves empty files.
func WriteFiles(entries []scraper.Entry, opts Options) ([]string, error) {
	if len(entries) == 0 {
		return nil, scraper.ErrNoEntries
	}
	if opts.Dir == "" {
		opts.Dir = "."
	}
	if err := os.MkdirAll(opts.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}

	var written []string
	if opts.Format&FormatText != 0 {
		var buf bytes.Buffer
		if err := WriteText(&buf, entries, opts.Text); err != nil {
			return written, err
		}
		path := filepath.Join(opts.Dir, opts.Base+".txt")
		if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
			return written, fmt.Errorf("write %s: %w", path, err)
		}
		slog.Info("exported entries", "count", len(entries), "path", path)
		written = append(written, path)
	}
	if opts.Format&FormatHTML != 0 {
		var buf bytes.Buffer
		if err := WriteHTML(&buf, entries, opts.HTML); err != nil {
			return written, err
		}
		path := filepath.Join(opts.Dir, opts.Base+".html")
		if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
			return written, fmt.Errorf("write %s: %w", path, err)
		}
		slog.Info("exported entries", "count", len(entries), "path", path)
		written = append(written, path)
	}
	return written, nil
}
