package app

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/fairyhunter13/ai-career-advisor/internal/ui"
)

// SessionSweeper periodically drops visitor controllers idle for longer than ttl.
type SessionSweeper struct {
	visitors *ui.Registry
	ttl      time.Duration
	interval time.Duration
	now      func() time.Time
}

// NewSessionSweeper returns a sweeper for visitors, or nil when there is no registry.
func NewSessionSweeper(visitors *ui.Registry, ttl, interval time.Duration) *SessionSweeper {
	if visitors == nil {
		return nil
	}
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	if interval <= 0 {
		interval = time.Minute
	}
	return &SessionSweeper{
		visitors: visitors,
		ttl:      ttl,
		interval: interval,
		now:      time.Now,
	}
}

// Run evicts idle visitor sessions every interval until ctx is done.
func (s *SessionSweeper) Run(ctx context.Context) {
	if s == nil || s.visitors == nil {
		return
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("session sweeper stopping")
			return
		case <-ticker.C:
			s.sweepOnce(ctx)
		}
	}
}

func (s *SessionSweeper) sweepOnce(ctx context.Context) int {
	_, span := otel.Tracer("ui.sweeper").Start(ctx, "SessionSweeper.sweepOnce")
	defer span.End()

	removed := s.visitors.SweepIdle(s.now().Add(-s.ttl))
	remaining := s.visitors.Len()
	span.SetAttributes(
		attribute.Int("sessions.removed", removed),
		attribute.Int("sessions.remaining", remaining),
		attribute.Float64("sessions.ttl_seconds", s.ttl.Seconds()),
	)
	if removed > 0 {
		slog.Info("idle visitor sessions swept",
			slog.Int("removed", removed),
			slog.Int("remaining", remaining))
	}
	return removed
}
