package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"mapscout/internal/config"
	"mapscout/internal/export"
	"mapscout/internal/formatter"
	"mapscout/internal/logger"
	"mapscout/internal/notify"
	"mapscout/internal/scraper"
	_ "mapscout/internal/sites/gmaps"
	"mapscout/internal/ui"

	"github.com/spf13/cobra"
)

var version = "dev"

// options holds the raw flag values. Config fields are only overridden by
// flags the user actually set.
type options struct {
	configPath   string
	site         string
	maxResults   int
	batchSize    int
	timeout      time.Duration
	showUI       bool
	proxyURL     string
	outputDir    string
	reportLimit  int
	saveHTML     string
	webhook      string
	logLevel     string
	logFormat    string
	outputFormat string
	outputFile   string

	scrollStep    int
	scrollSettle  time.Duration
	scrollRetries int
}

func main() {
	if err := newRootCmd(&options{}).Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(opts *options) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "mapscout [QUERY]",
		Short:   "Collect business listings from Google Maps",
		Version: version,
		Long: `mapscout searches Google Maps in a real browser, scrolls the results feed,
visits every listed business and extracts its name, phone, address, website,
rating and review count. Results are written as CSV plus a DOCX report and can
be forwarded to a webhook.`,
		Example: `  # Prompt for the query interactively
  mapscout

  # Collect up to 50 bakeries and print them as markdown
  mapscout -n 50 -f markdown "bakeries in Austin"

  # Visible browser, through a proxy, forwarding results to a webhook
  mapscout --showui -p http://127.0.0.1:7890 --webhook https://hooks.example/run "dentists in Lyon"

  # Re-extract saved detail pages offline
  mapscout extract -f json pages/*.html`,
		Args:         cobra.MaximumNArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, opts, args)
		},
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&opts.configPath, "config", "c", "", "YAML config file")
	pf.StringVarP(&opts.outputFormat, "format", "f", "text", "Stdout format (html, text, markdown, json, csv)")
	pf.StringVarP(&opts.outputFile, "output", "o", "", "Write formatted output to file (format inferred from extension if -f not specified)")
	pf.StringVar(&opts.logLevel, "log-level", "info", "Log level (trace, debug, info, warn, error)")
	pf.StringVar(&opts.logFormat, "log-format", "console", "Log format (console, json)")

	f := rootCmd.Flags()
	f.StringVar(&opts.site, "site", "gmaps", "Site to scrape")
	f.IntVarP(&opts.maxResults, "max-results", "n", 20, "Maximum businesses to visit")
	f.IntVar(&opts.batchSize, "batch-size", 5, "Candidates visited between rests")
	f.DurationVarP(&opts.timeout, "timeout", "t", 30*time.Second, "Navigation timeout")
	f.BoolVar(&opts.showUI, "showui", false, "Show browser UI (disable headless mode)")
	f.StringVarP(&opts.proxyURL, "proxy", "p", "", "Proxy URL (e.g. http://127.0.0.1:7890), defaults to MAPSCOUT_PROXY env var")
	f.StringVar(&opts.outputDir, "output-dir", "output", "Directory for the CSV and report files")
	f.IntVar(&opts.reportLimit, "report-limit", export.DefaultReportLimit, "Maximum businesses in the report")
	f.StringVar(&opts.saveHTML, "save-html", "", "Save each visited detail page's HTML to this directory")
	f.StringVar(&opts.webhook, "webhook", "", "Webhook URL receiving the results")
	f.IntVar(&opts.scrollStep, "scroll-step", 800, "Feed scroll advance in pixels")
	f.DurationVar(&opts.scrollSettle, "scroll-settle", 1500*time.Millisecond, "Wait after each feed scroll")
	f.IntVar(&opts.scrollRetries, "scroll-retries", 5, "Stalled scrolls tolerated before the feed counts as exhausted")

	rootCmd.AddCommand(newExtractCmd(opts))
	return rootCmd
}

// loadConfig resolves defaults, file, environment and flags, then validates.
func loadConfig(cmd *cobra.Command, opts *options) (config.Config, error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return config.Config{}, err
	}
	applyFlags(cmd, opts, &cfg)
	if err := cfg.Validate(); err != nil {
		return config.Config{}, fmt.Errorf("invalid configuration: %w", err)
	}
	logger.Init(logger.Options{Level: cfg.Log.Level, Format: cfg.Log.Format})
	return cfg, nil
}

func applyFlags(cmd *cobra.Command, opts *options, cfg *config.Config) {
	changed := func(name string) bool {
		fl := cmd.Flags().Lookup(name)
		return fl != nil && fl.Changed
	}

	if changed("site") {
		cfg.Site = opts.site
	}
	if changed("max-results") {
		cfg.MaxResults = opts.maxResults
	}
	if changed("batch-size") {
		cfg.BatchSize = opts.batchSize
	}
	if changed("timeout") {
		cfg.NavTimeout = opts.timeout
	}
	if changed("showui") {
		cfg.Headless = !opts.showUI
	}
	if changed("proxy") {
		cfg.ProxyURL = opts.proxyURL
	}
	if changed("output-dir") {
		cfg.OutputDir = opts.outputDir
	}
	if changed("report-limit") {
		cfg.ReportLimit = opts.reportLimit
	}
	if changed("save-html") {
		cfg.SaveHTMLDir = opts.saveHTML
	}
	if changed("webhook") {
		cfg.WebhookURL = opts.webhook
	}
	if changed("log-level") {
		cfg.Log.Level = opts.logLevel
	}
	if changed("log-format") {
		cfg.Log.Format = opts.logFormat
	}
	if changed("scroll-step") {
		cfg.Discovery.Step = opts.scrollStep
	}
	if changed("scroll-settle") {
		cfg.Discovery.Settle = opts.scrollSettle
	}
	if changed("scroll-retries") {
		cfg.Discovery.RetryCap = opts.scrollRetries
	}
}

// resolveFormat infers the format from -o when -f was not given.
func resolveFormat(cmd *cobra.Command, opts *options) (string, error) {
	format := opts.outputFormat
	if opts.outputFile != "" && !cmd.Flags().Changed("format") {
		if inferred := inferFormatFromExtension(opts.outputFile); inferred != "" {
			format = inferred
		}
	}
	validFormats := map[string]bool{
		"html":     true,
		"text":     true,
		"markdown": true,
		"json":     true,
		"csv":      true,
	}
	if !validFormats[format] {
		return "", fmt.Errorf("invalid output format: %s", format)
	}
	return format, nil
}

func run(cmd *cobra.Command, opts *options, args []string) error {
	cfg, err := loadConfig(cmd, opts)
	if err != nil {
		return err
	}
	log := logger.Named("main")

	format, err := resolveFormat(cmd, opts)
	if err != nil {
		return err
	}

	s, ok := scraper.Get(cfg.Site)
	if !ok {
		return fmt.Errorf("unknown site: %s (available: %s)", cfg.Site, strings.Join(scraper.Names(), ", "))
	}

	var query string
	if len(args) > 0 {
		query = strings.TrimSpace(args[0])
	}
	if query == "" {
		if query, err = ui.PromptQuery(ui.TerminalAsk); err != nil {
			return err
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	started := time.Now()
	content, scrapeErr := s.Scrape(ctx, query, scraper.Options{
		Config:   cfg,
		Progress: ui.NewProgress(os.Stderr),
	})
	if content == nil {
		return fmt.Errorf("failed to scrape: %w", scrapeErr)
	}
	if scrapeErr != nil {
		log.Warn().Err(scrapeErr).Msg("run interrupted, exporting partial results")
	}

	records := content.Records()
	log.Info().Int("records", len(records)).Dur("elapsed", time.Since(started)).Msg("run finished")

	csvPath, reportPath := export.Paths(cfg.OutputDir, query, started)
	if err := export.WriteCSV(csvPath, records); err != nil {
		return fmt.Errorf("failed to write CSV: %w", err)
	}
	if err := export.WriteReport(reportPath, "Google Maps: "+query, records, cfg.ReportLimit); err != nil {
		log.Error().Err(err).Msg("failed to write report")
		reportPath = ""
	}

	if wh := notify.NewWebhook(cfg.WebhookURL); wh.Enabled() {
		files := []string{csvPath}
		if reportPath != "" {
			files = append(files, reportPath)
		}
		sendCtx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		err := wh.Send(sendCtx, notify.Summary{Query: query, Count: len(records), Timestamp: started.UTC()}, files...)
		cancel()
		if err != nil {
			log.Error().Err(err).Msg("failed to notify webhook")
		} else {
			log.Info().Str("url", cfg.WebhookURL).Msg("webhook notified")
		}
	}

	if opts.outputFile != "" || cmd.Flags().Changed("format") {
		if err := writeOutput(content, format, opts.outputFile); err != nil {
			return err
		}
	}

	if err := ui.PrintSummary(os.Stderr, query, records, ui.Artifacts{CSV: csvPath, Report: reportPath}); err != nil {
		log.Warn().Err(err).Msg("failed to render summary")
	}

	return scrapeErr
}

func writeOutput(content scraper.Content, format, outputFile string) error {
	out, err := formatter.Format(content, format)
	if err != nil {
		return fmt.Errorf("failed to format output: %w", err)
	}
	if outputFile == "" {
		fmt.Println(out)
		return nil
	}
	if err := os.WriteFile(outputFile, []byte(out), 0644); err != nil {
		return fmt.Errorf("failed to write to file: %w", err)
	}
	fmt.Fprintf(os.Stderr, "Output written to: %s\n", outputFile)
	return nil
}

// inferFormatFromExtension infers output format from file extension
func inferFormatFromExtension(filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".md", ".markdown":
		return "markdown"
	case ".json":
		return "json"
	case ".html", ".htm":
		return "html"
	case ".txt":
		return "text"
	case ".csv":
		return "csv"
	default:
		return ""
	}
}
