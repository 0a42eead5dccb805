package application

import (
	"context"
	"errors"
	"log/slog"
	"time"
)

// Trigger starts a portfolio refresh. Implemented by Coordinator.
type Trigger interface {
	TriggerUpdate(ctx context.Context) error
}

// Scheduler invokes the coordinator on a fixed interval. A tick that lands
// while a refresh is still running is skipped, not queued.
type Scheduler struct {
	coordinator Trigger
	interval    time.Duration
	stopChan    chan struct{}
}

func NewScheduler(coordinator Trigger, interval time.Duration) *Scheduler {
	return &Scheduler{
		coordinator: coordinator,
		interval:    interval,
		stopChan:    make(chan struct{}),
	}
}

func (s *Scheduler) Start(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	slog.Info("Update scheduler started", "interval", s.interval)

	for {
		select {
		case <-ticker.C:
			switch err := s.coordinator.TriggerUpdate(ctx); {
			case errors.Is(err, ErrUpdateInProgress):
				slog.Info("Scheduled update skipped, previous still running")
			case err != nil:
				slog.Error("Error triggering scheduled update", "error", err)
			}
		case <-s.stopChan:
			slog.Info("Update scheduler stopped")
			return
		case <-ctx.Done():
			slog.Info("Update scheduler stopped due to context cancellation")
			return
		}
	}
}

func (s *Scheduler) Stop() {
	close(s.stopChan)
}
