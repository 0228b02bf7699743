package worker

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// SessionEvictor closes dashboards that have been idle too long.
type SessionEvictor interface {
	EvictIdle(maxIdle time.Duration) int
}

// SessionJanitor periodically evicts idle dashboard sessions.
type SessionJanitor struct {
	sessions SessionEvictor
	interval time.Duration
	maxIdle  time.Duration
	logger   *zap.Logger
}

// NewSessionJanitor constructs a janitor. A non-positive interval disables it.
func NewSessionJanitor(sessions SessionEvictor, interval, maxIdle time.Duration, logger *zap.Logger) *SessionJanitor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SessionJanitor{
		sessions: sessions,
		interval: interval,
		maxIdle:  maxIdle,
		logger:   logger,
	}
}

// Run sweeps on every tick until ctx is cancelled.
func (j *SessionJanitor) Run(ctx context.Context) {
	if j.sessions == nil || j.interval <= 0 || j.maxIdle <= 0 {
		j.logger.Info("session janitor disabled")
		return
	}

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			j.Sweep()
		}
	}
}

// Sweep evicts idle sessions once and returns how many were closed.
func (j *SessionJanitor) Sweep() int {
	n := j.sessions.EvictIdle(j.maxIdle)
	if n > 0 {
		j.logger.Info("evicted idle dashboard sessions", zap.Int("count", n))
	}
	return n
}
