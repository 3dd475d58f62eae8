package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/baxromumarov/trailscript/internal/config"
	"github.com/baxromumarov/trailscript/internal/export"
	"github.com/baxromumarov/trailscript/internal/httpx"
	"github.com/baxromumarov/trailscript/internal/observability"
	"github.com/baxromumarov/trailscript/internal/scraper"
	"github.com/baxromumarov/trailscript/internal/trailsdb"
)

var ErrSourceUnavailable = errors.New("source unavailable")

// scanFlags are shared by every command that runs a scan.
type scanFlags struct {
	lang          string
	source        string
	missThreshold int
	ignoreRobots  bool
	numbered      bool
}

func addScanFlags(cmd *cobra.Command, f *scanFlags) {
	cmd.Flags().StringVar(&f.lang, "lang", "en", "Language: en for English, jp for Japanese")
	cmd.Flags().StringVar(&f.source, "source", config.SourceHTML, "Where entries come from: html (parse the page) or api (script detail API)")
	cmd.Flags().IntVar(&f.missThreshold, "miss-threshold", scraper.DefaultMissThreshold, "Consecutive misses that end an open-ended scan")
	cmd.Flags().BoolVar(&f.ignoreRobots, "ignore-robots", false, "Do not consult robots.txt")
	cmd.Flags().BoolVar(&f.numbered, "numbered", false, `Write text as 'N. "text", name' one per line`)
}

// runPlan is everything resolved before the first request goes out.
type runPlan struct {
	cfg    config.Config
	script config.ScriptURL
	rng    scraper.ScanRange
	lang   scraper.Language
}

func buildPlan(cmd *cobra.Command, args []string, f *scanFlags) (runPlan, error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return runPlan{}, err
	}

	flags := cmd.Flags()
	if flags.Changed("lang") {
		cfg.Language = f.lang
	}
	if flags.Changed("source") {
		cfg.Source = f.source
	}
	if flags.Changed("miss-threshold") {
		cfg.MissThreshold = f.missThreshold
	}
	if flags.Changed("ignore-robots") {
		respect := !f.ignoreRobots
		cfg.RespectRobots = &respect
	}
	cfg.Source = strings.ToLower(cfg.Source)
	if err := cfg.Validate(); err != nil {
		return runPlan{}, err
	}

	script, err := config.ParseScriptURL(args[0])
	if err != nil {
		return runPlan{}, err
	}
	rng, err := config.ParseRange(args[1], args[2])
	if err != nil {
		return runPlan{}, err
	}
	lang, err := scraper.ParseLanguage(cfg.Language)
	if err != nil {
		return runPlan{}, fmt.Errorf("%w: %v", config.ErrInvalidConfig, err)
	}

	return runPlan{cfg: cfg, script: script, rng: rng, lang: lang}, nil
}

// loadSource performs the single fetch of a run and wraps the result as a Source.
func loadSource(ctx context.Context, plan runPlan) (scraper.Source, error) {
	cfg := plan.cfg
	if cfg.Source == config.SourceAPI {
		var transport http.RoundTripper
		if cfg.Robots() {
			transport = httpx.NewPoliteTransport(nil, cfg.UserAgent, cfg.RequestsPerSecond)
		}
		client := trailsdb.NewClient(trailsdb.Options{
			BaseURL:    cfg.BaseURL,
			UserAgent:  cfg.UserAgent,
			Timeout:    cfg.Timeout.Duration,
			Attempts:   cfg.Retries,
			RetryDelay: cfg.RetryDelay.Duration,
			Transport:  transport,
		})

		observability.IncAPICall()
		scripts, err := client.GetScriptDetail(ctx, plan.script.GameID, plan.script.FileName)
		if err != nil {
			observability.IncError(observability.ClassifyAPIError(err), "trailsdb")
			return nil, fmt.Errorf("%w: %w", ErrSourceUnavailable, err)
		}
		src := scraper.NewAPISource(scripts, plan.lang)
		slog.InfoContext(ctx, "loaded script records", "records", len(scripts), "usable", src.Len(), "max_row", src.MaxID())
		return src, nil
	}

	fetcher := httpx.NewCollyFetcher(httpx.FetcherOptions{
		UserAgent:         cfg.UserAgent,
		Timeout:           cfg.Timeout.Duration,
		Attempts:          cfg.Retries,
		RetryDelay:        cfg.RetryDelay.Duration,
		RequestsPerSecond: cfg.RequestsPerSecond,
		IgnoreRobots:      !cfg.Robots(),
	})
	started := time.Now()
	doc, err := fetcher.FetchDocument(ctx, plan.script.URL)
	if err != nil {
		observability.IncError(observability.ClassifyFetchError(err), "fetcher")
		return nil, fmt.Errorf("%w: %w", ErrSourceUnavailable, err)
	}
	observability.IncPagesFetched()
	observability.ObserveFetchDuration(time.Since(started).Seconds())
	return scraper.NewDocumentSource(doc, plan.lang), nil
}

// collect runs the whole pipeline up to the entry list.
func collect(ctx context.Context, plan runPlan) ([]scraper.Entry, error) {
	src, err := loadSource(ctx, plan)
	if err != nil {
		return nil, err
	}
	entries, err := scraper.NewScanner(plan.cfg.MissThreshold).Scan(ctx, src, plan.rng)
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, scraper.ErrNoEntries
	}
	return entries, nil
}

func (p runPlan) textOptions(numbered bool) export.TextOptions {
	return export.TextOptions{Numbered: numbered}
}

func (p runPlan) htmlOptions() export.HTMLOptions {
	return export.HTMLOptions{Title: export.DefaultTitle + ": " + p.script.FileName}
}
