package gmaps

import (
	"context"
	"fmt"
	"time"

	"mapscout/internal/config"
	"mapscout/internal/discovery"
	"mapscout/internal/listing"
	"mapscout/internal/logger"
	"mapscout/internal/scraper"
)

// Session is what Collect needs from a browser-backed client.
type Session interface {
	Search(ctx context.Context, query string) (discovery.Container, error)
	Open(ctx context.Context, id string) error
	Extract(ctx context.Context, id string) (listing.Record, error)
}

// Collect discovers candidates for query and visits them one at a time.
// Only search and discovery failures abort the run; a failing candidate is
// logged and skipped. On cancellation the records gathered so far are
// returned together with the context error.
func Collect(ctx context.Context, s Session, query string, cfg config.Config, progress scraper.Progress) (*listing.ResultSet, error) {
	log := logger.Named("gmaps")
	results := listing.NewResultSet()

	container, err := s.Search(ctx, query)
	if err != nil {
		return results, err
	}

	ids, err := discovery.New(cfg.Discovery).Discover(ctx, container, cfg.MaxResults)
	if err != nil {
		return results, fmt.Errorf("failed to discover candidates: %w", err)
	}
	log.Info().Int("candidates", len(ids)).Msg("visiting candidates")

	batch := cfg.BatchSize
	if batch < 1 {
		batch = 1
	}

	progress.Start(len(ids))
	defer progress.Stop()

	for i, id := range ids {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		if i > 0 && i%batch == 0 {
			log.Debug().Int("done", i).Dur("rest", cfg.RestDelay).Msg("batch finished, resting")
			if err := sleep(ctx, cfg.RestDelay); err != nil {
				return results, err
			}
		}

		rec, err := visit(ctx, s, id, cfg.SettleDelay)
		progress.Step(fmt.Sprintf("%d/%d", i+1, len(ids)))
		if err != nil {
			if ctx.Err() != nil {
				return results, ctx.Err()
			}
			log.Warn().Err(err).Str("id", id).Msg("skipping candidate")
			continue
		}
		if listing.IsPlaceholder(rec.Name, cfg.PlaceholderTitles) {
			log.Debug().Str("id", id).Str("name", rec.Name).Msg("skipping placeholder page")
			continue
		}

		results.Append(rec)
		log.Info().Str("name", rec.Name).Int("collected", results.Len()).Msg("extracted")
	}
	return results, nil
}

func visit(ctx context.Context, s Session, id string, settle time.Duration) (listing.Record, error) {
	if err := s.Open(ctx, id); err != nil {
		return listing.Record{}, err
	}
	if err := sleep(ctx, settle); err != nil {
		return listing.Record{}, err
	}
	return s.Extract(ctx, id)
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
