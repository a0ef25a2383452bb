package session

import (
	"context"
	"log/slog"
	"time"

	"datacleanr/internal/infrastructure"
)

// ExpiryHook runs for every swept session id
type ExpiryHook func(ctx context.Context, id string)

// Sweeper periodically evicts idle sessions from a store
type Sweeper struct {
	store    Store
	ttl      time.Duration
	interval time.Duration
	hooks    []ExpiryHook
	logger   *slog.Logger
}

// NewSweeper creates a sweeper evicting sessions idle longer than ttl,
// checking every interval
func NewSweeper(store Store, ttl, interval time.Duration, logger *slog.Logger, hooks ...ExpiryHook) *Sweeper {
	if logger == nil {
		logger = slog.Default()
	}
	return &Sweeper{
		store:    store,
		ttl:      ttl,
		interval: interval,
		hooks:    hooks,
		logger:   logger.With(slog.String("component", "session_sweeper")),
	}
}

// Run sweeps until ctx is cancelled
func (s *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.logger.InfoContext(ctx, "session sweeper started",
		slog.Duration("ttl", s.ttl),
		slog.Duration("interval", s.interval))

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("session sweeper stopped")
			return
		case <-ticker.C:
			s.SweepOnce(ctx)
		}
	}
}

// SweepOnce evicts expired sessions and runs the hooks for each of them
func (s *Sweeper) SweepOnce(ctx context.Context) int {
	ctx = infrastructure.EnsureTraceID(ctx)
	ids, err := s.store.Sweep(ctx, s.ttl)
	if err != nil {
		s.logger.ErrorContext(ctx, "session sweep failed", slog.String("error", err.Error()))
		return 0
	}
	for _, id := range ids {
		hookCtx := infrastructure.WithFileID(ctx, id)
		for _, hook := range s.hooks {
			hook(hookCtx, id)
		}
	}
	if len(ids) > 0 {
		s.logger.InfoContext(ctx, "expired sessions removed", slog.Int("count", len(ids)))
	}
	return len(ids)
}
