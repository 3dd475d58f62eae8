// Package config holds the run configuration: built-in defaults, an optional
// TOML file merged on top, and parsing of the source URL and scan range.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"dario.cat/mergo"
	"github.com/pelletier/go-toml/v2"

	"github.com/baxromumarov/trailscript/internal/export"
	"github.com/baxromumarov/trailscript/internal/httpx"
	"github.com/baxromumarov/trailscript/internal/scraper"
	"github.com/baxromumarov/trailscript/internal/trailsdb"
)

// DefaultFile is read from the working directory when --config is not given.
const DefaultFile = "trailscript.toml"

// ErrInvalidConfig wraps every problem found before a scan starts.
var ErrInvalidConfig = errors.New("invalid configuration")

const (
	SourceHTML = "html"
	SourceAPI  = "api"
)

type Config struct {
	BaseURL           string   `toml:"base_url"`
	UserAgent         string   `toml:"user_agent"`
	Timeout           Duration `toml:"timeout"`
	Retries           int      `toml:"retries"`
	RetryDelay        Duration `toml:"retry_delay"`
	RequestsPerSecond float64  `toml:"requests_per_second"`
	RespectRobots     *bool    `toml:"respect_robots"`
	MissThreshold     int      `toml:"miss_threshold"`
	Language          string   `toml:"language"`
	Format            string   `toml:"format"`
	OutputDir         string   `toml:"output_dir"`
	Source            string   `toml:"source"`
}

// Duration decodes TOML strings such as "1s" or "250ms".
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

func Defaults() Config {
	respect := true
	return Config{
		BaseURL:           trailsdb.DefaultBaseURL,
		UserAgent:         httpx.DefaultUserAgent,
		Timeout:           Duration{10 * time.Second},
		Retries:           3,
		RetryDelay:        Duration{time.Second},
		RequestsPerSecond: 2,
		RespectRobots:     &respect,
		MissThreshold:     scraper.DefaultMissThreshold,
		Language:          "en",
		Format:            "both",
		OutputDir:         ".",
		Source:            SourceHTML,
	}
}

// Load reads path and fills anything it leaves unset from Defaults. A
// missing DefaultFile is not an error; a missing explicit path is.
func Load(path string) (Config, error) {
	cfg := Defaults()
	explicit := path != ""
	if !explicit {
		path = DefaultFile
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && !explicit {
			return cfg, nil
		}
		return cfg, fmt.Errorf("%w: read %s: %v", ErrInvalidConfig, path, err)
	}

	var file Config
	if err := toml.Unmarshal(data, &file); err != nil {
		return cfg, fmt.Errorf("%w: parse %s: %v", ErrInvalidConfig, path, err)
	}
	if err := mergo.Merge(&file, cfg); err != nil {
		return cfg, fmt.Errorf("%w: merge defaults: %v", ErrInvalidConfig, err)
	}
	slog.Debug("loaded config file", "path", path)

	if err := file.Validate(); err != nil {
		return cfg, err
	}
	return file, nil
}

func (c Config) Validate() error {
	var problems []string
	if c.Retries < 1 {
		problems = append(problems, "retries must be at least 1")
	}
	if c.MissThreshold < 1 {
		problems = append(problems, "miss_threshold must be at least 1")
	}
	if _, err := scraper.ParseLanguage(c.Language); err != nil {
		problems = append(problems, err.Error())
	}
	if _, err := export.ParseFormat(c.Format); err != nil {
		problems = append(problems, err.Error())
	}
	switch strings.ToLower(c.Source) {
	case SourceHTML, SourceAPI:
	default:
		problems = append(problems, fmt.Sprintf("unknown source %q (want html or api)", c.Source))
	}
	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(problems, "; "))
	}
	return nil
}

func (c Config) Robots() bool {
	return c.RespectRobots == nil || *c.RespectRobots
}
