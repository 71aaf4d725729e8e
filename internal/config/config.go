// Package config builds the immutable run configuration from defaults, an
// optional YAML file, the environment and CLI flags, in that order.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"mapscout/internal/discovery"
	"mapscout/internal/extract"
	"mapscout/internal/logger"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// EnvPrefix namespaces every environment override.
const EnvPrefix = "MAPSCOUT_"

type Config struct {
	Site       string `yaml:"site"`
	MaxResults int    `yaml:"max_results"`
	BatchSize  int    `yaml:"batch_size"`

	// Browser
	Headless bool   `yaml:"headless"`
	ProxyURL string `yaml:"proxy"`

	// Timeouts
	NavTimeout       time.Duration `yaml:"nav_timeout"`
	ContainerTimeout time.Duration `yaml:"container_timeout"`
	HeadingTimeout   time.Duration `yaml:"heading_timeout"`

	// NavWait is when a candidate navigation counts as done: "load" or
	// "idle" (load, then network idle)
	NavWait string `yaml:"nav_wait"`

	// Pacing
	SettleDelay time.Duration `yaml:"settle_delay"` // after each candidate navigation
	RestDelay   time.Duration `yaml:"rest_delay"`   // between batches

	Discovery discovery.Config  `yaml:"discovery"`
	Selectors extract.Selectors `yaml:"selectors"`

	PlaceholderTitles []string `yaml:"placeholder_titles"`

	// Outputs
	OutputDir   string `yaml:"output_dir"`
	ReportLimit int    `yaml:"report_limit"`
	SaveHTMLDir string `yaml:"save_html_dir"`
	WebhookURL  string `yaml:"webhook_url"`

	Log Log `yaml:"log"`
}

type Log struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Default returns the configuration used when nothing overrides it.
func Default() Config {
	return Config{
		Site:              "gmaps",
		MaxResults:        20,
		BatchSize:         5,
		Headless:          true,
		NavTimeout:        30 * time.Second,
		ContainerTimeout:  20 * time.Second,
		HeadingTimeout:    10 * time.Second,
		NavWait:           "load",
		SettleDelay:       2 * time.Second,
		RestDelay:         5 * time.Second,
		Discovery:         discovery.DefaultConfig(),
		Selectors:         extract.DefaultSelectors(),
		PlaceholderTitles: []string{"Google Maps"},
		OutputDir:         "output",
		ReportLimit:       100,
		Log:               Log{Level: "info", Format: "console"},
	}
}

// Load applies the YAML file at path (if non-empty), then a .env file in the
// working directory (if present), then MAPSCOUT_* variables.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		logger.Get().Warn().Err(err).Msg("failed to load .env")
	}

	cfg.applyEnv(newEnv(EnvPrefix))
	return cfg, nil
}

func (c *Config) applyEnv(e env) {
	c.Site = e.MayString("SITE", c.Site)
	c.MaxResults = e.MayInt("MAX_RESULTS", c.MaxResults)
	c.BatchSize = e.MayInt("BATCH_SIZE", c.BatchSize)
	c.Headless = e.MayBool("HEADLESS", c.Headless)
	c.ProxyURL = e.MayString("PROXY", c.ProxyURL)
	c.NavTimeout = e.MayDuration("NAV_TIMEOUT", c.NavTimeout)
	c.ContainerTimeout = e.MayDuration("CONTAINER_TIMEOUT", c.ContainerTimeout)
	c.HeadingTimeout = e.MayDuration("HEADING_TIMEOUT", c.HeadingTimeout)
	c.NavWait = e.MayString("NAV_WAIT", c.NavWait)
	c.SettleDelay = e.MayDuration("SETTLE_DELAY", c.SettleDelay)
	c.RestDelay = e.MayDuration("REST_DELAY", c.RestDelay)
	c.OutputDir = e.MayString("OUTPUT_DIR", c.OutputDir)
	c.ReportLimit = e.MayInt("REPORT_LIMIT", c.ReportLimit)
	c.SaveHTMLDir = e.MayString("SAVE_HTML_DIR", c.SaveHTMLDir)
	c.WebhookURL = e.MayString("WEBHOOK_URL", c.WebhookURL)
	c.Log.Level = e.MayString("LOG_LEVEL", c.Log.Level)
	c.Log.Format = e.MayString("LOG_FORMAT", c.Log.Format)

	d := e.Prefix("SCROLL_")
	c.Discovery.Step = d.MayInt("STEP", c.Discovery.Step)
	c.Discovery.Settle = d.MayDuration("SETTLE", c.Discovery.Settle)
	c.Discovery.RetryCap = d.MayInt("RETRY_CAP", c.Discovery.RetryCap)
	c.Discovery.WiggleAt = d.MayInt("WIGGLE_AT", c.Discovery.WiggleAt)
	c.Discovery.WiggleBack = d.MayInt("WIGGLE_BACK", c.Discovery.WiggleBack)
	c.Discovery.MaxIterations = d.MayInt("MAX_ITERATIONS", c.Discovery.MaxIterations)
}

// Validate rejects values the run cannot work with.
func (c Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.Site) == "" {
		errs = append(errs, errors.New("site is required"))
	}
	if c.MaxResults < 0 {
		errs = append(errs, fmt.Errorf("max_results must be >= 0, got %d", c.MaxResults))
	}
	if c.BatchSize < 1 {
		errs = append(errs, fmt.Errorf("batch_size must be >= 1, got %d", c.BatchSize))
	}
	if c.ReportLimit < 0 {
		errs = append(errs, fmt.Errorf("report_limit must be >= 0, got %d", c.ReportLimit))
	}
	for name, d := range map[string]time.Duration{
		"nav_timeout":       c.NavTimeout,
		"container_timeout": c.ContainerTimeout,
		"heading_timeout":   c.HeadingTimeout,
	} {
		if d <= 0 {
			errs = append(errs, fmt.Errorf("%s must be positive, got %s", name, d))
		}
	}
	if c.NavWait != "load" && c.NavWait != "idle" {
		errs = append(errs, fmt.Errorf("nav_wait must be load or idle, got %q", c.NavWait))
	}
	if c.SettleDelay < 0 || c.RestDelay < 0 || c.Discovery.Settle < 0 {
		errs = append(errs, errors.New("delays must not be negative"))
	}
	if c.Discovery.Step <= 0 {
		errs = append(errs, fmt.Errorf("discovery.step must be positive, got %d", c.Discovery.Step))
	}
	if c.Discovery.RetryCap < 0 || c.Discovery.WiggleAt < 0 || c.Discovery.WiggleBack < 0 {
		errs = append(errs, errors.New("discovery retry_cap, wiggle_at and wiggle_back must not be negative"))
	}
	if c.Discovery.MaxIterations <= 0 {
		errs = append(errs, fmt.Errorf("discovery.max_iterations must be positive, got %d", c.Discovery.MaxIterations))
	}
	if !logger.ValidLevel(c.Log.Level) {
		errs = append(errs, fmt.Errorf("unknown log level: %s", c.Log.Level))
	}
	return errors.Join(errs...)
}
