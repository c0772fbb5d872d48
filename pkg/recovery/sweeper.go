package recovery

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/dmitrymomot/recoverykey/pkg/logger"
)

// Sweeper periodically removes expired recovery keys.
type Sweeper struct {
	svc      *Service
	ttl      time.Duration
	interval time.Duration
	logger   *slog.Logger
}

type SweeperOption func(*Sweeper)

// WithSweepInterval sets how often the sweep runs. Defaults to the TTL.
func WithSweepInterval(d time.Duration) SweeperOption {
	return func(s *Sweeper) {
		if d > 0 {
			s.interval = d
		}
	}
}

// WithSweeperLogger sets the logger for sweep results.
func WithSweeperLogger(l *slog.Logger) SweeperOption {
	return func(s *Sweeper) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewSweeper creates a sweeper that removes keys older than ttl.
func NewSweeper(svc *Service, ttl time.Duration, opts ...SweeperOption) *Sweeper {
	s := &Sweeper{
		svc:      svc,
		ttl:      ttl,
		interval: ttl,
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.interval <= 0 {
		s.interval = time.Hour
	}
	return s
}

// Run sweeps once immediately and then on every tick until ctx is done.
// Failed sweeps are logged and retried on the next tick.
func (s *Sweeper) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.Sweep(ctx)

	for {
		select {
		case <-ctx.Done():
			s.logger.InfoContext(ctx, "recovery key sweeper stopped", logger.Component("sweeper"))
			return ctx.Err()
		case <-ticker.C:
			s.Sweep(ctx)
		}
	}
}

// Sweep runs a single cleanup pass and returns the number of removed records.
func (s *Sweeper) Sweep(ctx context.Context) int {
	start := time.Now()

	removed, err := s.svc.cleanExpired(ctx, s.ttl)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to clean expired recovery keys",
			logger.Component("sweeper"),
			logger.Error(err),
		)
		return 0
	}

	s.logger.DebugContext(ctx, "cleaned expired recovery keys",
		logger.Component("sweeper"),
		logger.Count(removed),
		logger.Duration(time.Since(start)),
	)
	return removed
}
