package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"mapscout/internal/dom"
	"mapscout/internal/extract"
	"mapscout/internal/listing"
	"mapscout/internal/logger"
	"mapscout/internal/sites/gmaps"

	"github.com/spf13/cobra"
)

func newExtractCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "extract FILE...",
		Short: "Extract business records from saved detail pages",
		Long: `extract runs the detail-page heuristics over HTML files previously stored
with --save-html (or saved from a browser), without launching a browser.`,
		Args:         cobra.MinimumNArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, opts)
			if err != nil {
				return err
			}
			format, err := resolveFormat(cmd, opts)
			if err != nil {
				return err
			}

			records, err := extractFiles(cmd.Context(), extract.New(cfg.Selectors), args)
			if err != nil {
				return err
			}
			content := gmaps.NewResultsContent("saved pages", "", records)
			return writeOutput(content, format, opts.outputFile)
		},
	}
}

// extractFiles skips pages that cannot be read or carry no business name.
func extractFiles(ctx context.Context, engine *extract.Engine, paths []string) ([]listing.Record, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	log := logger.Named("extract")

	var records []listing.Record
	for _, path := range paths {
		rec, err := extractFile(ctx, engine, path)
		if err != nil {
			if ctx.Err() != nil {
				return records, ctx.Err()
			}
			log.Warn().Err(err).Str("file", path).Msg("skipping page")
			continue
		}
		records = append(records, rec)
	}
	return records, nil
}

func extractFile(ctx context.Context, engine *extract.Engine, path string) (listing.Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return listing.Record{}, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	doc, err := dom.Parse(f)
	if err != nil {
		return listing.Record{}, err
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	return engine.Extract(ctx, doc, "file://"+filepath.ToSlash(abs))
}
