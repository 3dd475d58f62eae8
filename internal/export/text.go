package export

import (
	"bufio"
	"fmt"
	"io"
	"strconv"

	"github.com/baxromumarov/trailscript/internal/scraper"
)

type TextOptions struct {
	// Numbered writes `N. "text", name` one per line instead of the
	// default `"text" name` blocks.
	Numbered bool
}

// FormatLine renders one entry in the default line format.
func FormatLine(e scraper.Entry) string {
	return `"` + e.Text + `" ` + e.CharacterName
}

// FormatNumbered renders one entry with its number.
func FormatNumbered(e scraper.Entry) string {
	return strconv.Itoa(e.Number) + `. "` + e.Text + `", ` + e.CharacterName
}

// WriteText writes entries separated by a blank line, or one per line when
// opts.Numbered is set.
func WriteText(w io.Writer, entries []scraper.Entry, opts TextOptions) error {
	bw := bufio.NewWriter(w)
	for i, e := range entries {
		var err error
		if opts.Numbered {
			_, err = fmt.Fprintln(bw, FormatNumbered(e))
		} else {
			if i > 0 {
				if _, err = bw.WriteString("\n"); err != nil {
					return err
				}
			}
			_, err = fmt.Fprintln(bw, FormatLine(e))
		}
		if err != nil {
			return err
		}
	}
	return bw.Flush()
}
