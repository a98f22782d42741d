package presence

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/vbrandao/batepapo-server/internal/store"
)

// Sweeper periodically evicts participants whose heartbeat is older than the
// staleness threshold. It coordinates with request handlers only through the
// shared store, never through in-process state, so a heartbeat racing a sweep
// can at worst remove a participant that just became live again. Eviction is
// best-effort and self-healing on the next cycle.
type Sweeper struct {
	registry  *Registry
	store     store.Store
	interval  time.Duration
	threshold time.Duration
	log       *zerolog.Logger
}

// NewSweeper creates an eviction sweeper. interval is the sweep period,
// threshold the maximum heartbeat age before a participant is evicted.
func NewSweeper(registry *Registry, st store.Store, interval, threshold time.Duration, logger *zerolog.Logger) *Sweeper {
	return &Sweeper{
		registry:  registry,
		store:     st,
		interval:  interval,
		threshold: threshold,
		log:       logger,
	}
}

// Run executes sweep cycles on the configured interval until the context is
// cancelled. Store failures are logged, never fatal.
func (s *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.log.Info().
		Dur("interval", s.interval).
		Dur("threshold", s.threshold).
		Msg("eviction sweeper started")

	for {
		select {
		case <-ctx.Done():
			s.log.Info().Msg("eviction sweeper stopped")
			return
		case <-ticker.C:
			s.sweepOnce(ctx, time.Now())
		}
	}
}

// sweepOnce removes every stale participant and appends one departure notice
// per removal. A failure on one participant does not abort the rest; the next
// cycle retries whatever is still stale.
func (s *Sweeper) sweepOnce(ctx context.Context, now time.Time) {
	stale, err := s.registry.StaleEntries(ctx, s.threshold, now)
	if err != nil {
		s.log.Error().Err(err).Msg("sweep: failed to list stale participants")
		return
	}
	if len(stale) == 0 {
		return
	}

	evicted := 0
	for _, p := range stale {
		if err := s.store.DeleteParticipant(ctx, p.ID); err != nil {
			s.log.Error().Err(err).Str("name", p.Name).Msg("sweep: failed to remove participant")
			continue
		}

		// Removal and announcement are two store operations with no
		// transaction between them: a crash here leaves a removed
		// participant without a departure notice. Accepted inconsistency.
		if _, err := s.store.InsertMessage(ctx, statusNotice(p.Name, leaveNoticeText, now)); err != nil {
			s.log.Error().Err(err).Str("name", p.Name).Msg("sweep: failed to insert departure notice")
			continue
		}

		evicted++
		s.log.Info().Str("name", p.Name).Msg("participant evicted")
	}

	s.log.Debug().Int("stale", len(stale)).Int("evicted", evicted).Msg("sweep cycle finished")
}
