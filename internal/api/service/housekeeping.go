package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/routefleet/routerman/internal/api/store"
)

// HousekeepingService periodically removes expired opaque tokens and
// telemetry older than the retention window, so neither table grows without
// bound.
type HousekeepingService struct {
	Store     store.Store
	Logger    *slog.Logger
	Interval  time.Duration
	Retention time.Duration // how long telemetry is kept

	stopCh chan struct{}
	doneCh chan struct{}
}

// NewHousekeepingService creates the service. Interval defaults to 1 hour,
// retention to 30 days.
func NewHousekeepingService(st store.Store, logger *slog.Logger, interval, retention time.Duration) *HousekeepingService {
	if interval <= 0 {
		interval = time.Hour
	}
	if retention <= 0 {
		retention = 30 * 24 * time.Hour
	}

	return &HousekeepingService{
		Store:     st,
		Logger:    logger,
		Interval:  interval,
		Retention: retention,
		stopCh:    make(chan struct{}),
		doneCh:    make(chan struct{}),
	}
}

// Start begins the background worker. Non-blocking; call Stop to shut down.
func (s *HousekeepingService) Start() {
	go s.run()
	s.Logger.Info("housekeeping started",
		"interval", s.Interval, "retention", s.Retention)
}

// Stop shuts the worker down, blocking until any in-progress cleanup ends.
func (s *HousekeepingService) Stop() {
	close(s.stopCh)
	<-s.doneCh
	s.Logger.Info("housekeeping stopped")
}

func (s *HousekeepingService) run() {
	defer close(s.doneCh)

	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()

	// Run once on startup so a long interval doesn't delay the first pass.
	s.cleanup()

	for {
		select {
		case <-ticker.C:
			s.cleanup()
		case <-s.stopCh:
			return
		}
	}
}

// cleanup runs each deletion independently; one failing doesn't stop the
// others.
func (s *HousekeepingService) cleanup() {
	ctx := context.Background()

	if err := s.Store.Tokens().DeleteExpired(ctx); err != nil {
		s.Logger.Error("failed to delete expired tokens", "error", err)
	}

	cutoff := time.Now().UTC().Add(-s.Retention)
	if err := s.Store.Devices().DeleteTelemetryBefore(ctx, cutoff); err != nil {
		s.Logger.Error("failed to trim telemetry", "error", err)
	}
}
