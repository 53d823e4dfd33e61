package worker

import (
	"context"
	"log/slog"
	"time"

	"user-management/internal/service"
)

// Sweeper periodically deletes expired and inactive sessions.
type Sweeper struct {
	Sessions service.SessionSweeper
	Interval time.Duration
	Logger   *slog.Logger
}

func NewSweeper(sessions service.SessionSweeper, interval time.Duration, logger *slog.Logger) *Sweeper {
	if logger == nil {
		logger = slog.Default()
	}
	return &Sweeper{Sessions: sessions, Interval: interval, Logger: logger}
}

// Run sweeps once immediately and then on every tick until ctx is done. A
// non-positive interval disables the worker.
func (w *Sweeper) Run(ctx context.Context) {
	if w.Interval <= 0 {
		w.Logger.Info("session sweeper disabled")
		return
	}
	w.Logger.Info("session sweeper started", "interval", w.Interval.String())

	w.sweep(ctx)
	ticker := time.NewTicker(w.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			w.Logger.Info("session sweeper stopped")
			return
		case <-ticker.C:
			w.sweep(ctx)
		}
	}
}

func (w *Sweeper) sweep(ctx context.Context) {
	n, err := w.Sessions.SweepExpired(ctx)
	if err != nil {
		if ctx.Err() == nil {
			w.Logger.Error("session sweep failed", "error", err)
		}
		return
	}
	if n > 0 {
		w.Logger.Info("expired sessions removed", "count", n)
	}
}
