package marketplace

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/multierr"

	"github.com/agriconnect/agriconnect-backend/pkg/enums"
	"github.com/agriconnect/agriconnect-backend/pkg/logger"
)

const (
	defaultSweepInterval  = time.Hour
	defaultSweepBatchSize = 200
)

// ExpirySweeperParams configure the listing expiry sweeper.
type ExpirySweeperParams struct {
	Logger    *logger.Logger
	Repo      Repository
	Interval  time.Duration
	BatchSize int
}

// ExpirySweeper periodically marks active listings past their expiry time as
// expired. Sold listings are never touched.
type ExpirySweeper struct {
	logg      *logger.Logger
	repo      Repository
	interval  time.Duration
	batchSize int
	now       func() time.Time
}

// NewExpirySweeper builds the listing expiry sweeper.
func NewExpirySweeper(params ExpirySweeperParams) (*ExpirySweeper, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Repo == nil {
		return nil, fmt.Errorf("repository required")
	}
	interval := params.Interval
	if interval <= 0 {
		interval = defaultSweepInterval
	}
	batchSize := params.BatchSize
	if batchSize <= 0 {
		batchSize = defaultSweepBatchSize
	}
	return &ExpirySweeper{
		logg:      params.Logger,
		repo:      params.Repo,
		interval:  interval,
		batchSize: batchSize,
		now:       time.Now,
	}, nil
}

// Run sweeps on a fixed cadence until the context is canceled.
func (s *ExpirySweeper) Run(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx = s.logg.WithField(ctx, "job", "listing-expiry")

	if err := s.SweepOnce(ctx); err != nil {
		s.logg.Error(ctx, "listing expiry sweep failed", err)
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logg.Info(ctx, "listing expiry sweeper context canceled")
			return ctx.Err()
		case <-ticker.C:
			if err := s.SweepOnce(ctx); err != nil {
				s.logg.Error(ctx, "listing expiry sweep failed", err)
			}
		}
	}
}

// SweepOnce expires one batch of overdue active listings. A failure on one
// listing does not stop the rest of the batch.
func (s *ExpirySweeper) SweepOnce(ctx context.Context) error {
	cutoff := s.now().UTC()
	listings, err := s.repo.FindExpiredActiveListings(ctx, cutoff, s.batchSize)
	if err != nil {
		return fmt.Errorf("query expired listings: %w", err)
	}

	var errs error
	expired := 0
	for _, listing := range listings {
		updates := map[string]any{"status": enums.ListingStatusExpired}
		if err := s.repo.UpdateListing(ctx, listing.ID, updates); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("expire listing %s: %w", listing.ID, err))
			continue
		}
		expired++
	}

	logCtx := s.logg.WithFields(ctx, map[string]any{"expired": expired})
	s.logg.Info(logCtx, "listing expiry sweep complete")
	return errs
}
