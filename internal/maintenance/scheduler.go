// Package maintenance runs the periodic background jobs: expiring stale
// tracking links and pruning raw analytics rows past their retention.
package maintenance

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// Store defines the interface for maintenance data access.
type Store interface {
	DeactivateExpiredLinks(ctx context.Context, now time.Time) (int64, error)
	PruneAnalytics(ctx context.Context, before time.Time) (int64, error)
	PruneActivityEvents(ctx context.Context, before time.Time) (int64, error)
}

// Publisher announces maintenance sweeps on the activity feed. May be nil.
type Publisher interface {
	PublishLinksExpired(ctx context.Context, count int64) error
}

// Scheduler runs the periodic cleanup jobs.
type Scheduler struct {
	store         Store
	feed          Publisher
	retentionDays int
	cron          *cron.Cron
	logger        zerolog.Logger
	mu            sync.Mutex
	running       bool
}

// NewScheduler creates a maintenance scheduler. retentionDays bounds how
// long raw analytics rows and feed entries are kept.
func NewScheduler(store Store, feed Publisher, retentionDays int, logger zerolog.Logger) *Scheduler {
	return &Scheduler{
		store:         store,
		feed:          feed,
		retentionDays: retentionDays,
		cron:          cron.New(),
		logger:        logger.With().Str("component", "maintenance").Logger(),
	}
}

// Start schedules the link expiry sweep hourly and the analytics prune
// daily at 03:00 UTC.
func (s *Scheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return errors.New("maintenance scheduler already running")
	}

	if _, err := s.cron.AddFunc("@hourly", s.runLinkExpiry); err != nil {
		return err
	}
	if _, err := s.cron.AddFunc("0 3 * * *", s.runPrune); err != nil {
		return err
	}

	s.cron.Start()
	s.running = true

	s.logger.Info().
		Int("retention_days", s.retentionDays).
		Msg("maintenance scheduler started")

	return nil
}

// Stop stops the scheduler gracefully. The returned context is done when
// any in-flight job finishes.
func (s *Scheduler) Stop() context.Context {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		return ctx
	}

	s.running = false
	s.logger.Info().Msg("stopping maintenance scheduler")
	return s.cron.Stop()
}

// runLinkExpiry deactivates tracking links past their expiry.
func (s *Scheduler) runLinkExpiry() {
	ctx := context.Background()

	expired, err := s.store.DeactivateExpiredLinks(ctx, time.Now())
	if err != nil {
		s.logger.Error().Err(err).Msg("link expiry sweep failed")
		return
	}
	if expired == 0 {
		return
	}

	s.logger.Info().Int64("expired", expired).Msg("expired tracking links deactivated")
	if s.feed != nil {
		if err := s.feed.PublishLinksExpired(ctx, expired); err != nil {
			s.logger.Warn().Err(err).Msg("failed to publish expiry event")
		}
	}
}

// runPrune removes analytics and feed rows older than the retention window.
func (s *Scheduler) runPrune() {
	ctx := context.Background()
	cutoff := time.Now().AddDate(0, 0, -s.retentionDays)

	s.logger.Info().
		Int("retention_days", s.retentionDays).
		Msg("starting analytics prune")

	pruned, err := s.store.PruneAnalytics(ctx, cutoff)
	if err != nil {
		s.logger.Error().Err(err).Msg("analytics prune failed")
		return
	}

	events, err := s.store.PruneActivityEvents(ctx, cutoff)
	if err != nil {
		s.logger.Error().Err(err).Msg("activity event prune failed")
		return
	}

	s.logger.Info().
		Int64("analytics_rows", pruned).
		Int64("event_rows", events).
		Msg("analytics prune completed")
}

// RunNow triggers both jobs immediately (useful for testing and the admin
// CLI).
func (s *Scheduler) RunNow() {
	s.runLinkExpiry()
	s.runPrune()
}
