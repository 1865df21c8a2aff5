package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/croftbay/accounts/internal/accounts/store"
)

// CleanupService periodically deletes accounts that were never activated
// within the retention window. It fires once per day at a fixed wall-clock
// hour, 01:00 local by default.
type CleanupService struct {
	Store     store.Store
	Logger    *slog.Logger
	RunHour   int           // local hour of day the sweep fires at
	Retention time.Duration // how long an unactivated account survives

	// Internal channels for lifecycle management
	stopCh chan struct{}
	doneCh chan struct{}
}

const (
	defaultRunHour   = 1
	defaultRetention = 3 * 24 * time.Hour
)

// NewCleanupService creates a cleanup service. A runHour outside [0,23] falls
// back to 01:00; a non-positive retention falls back to 3 days.
func NewCleanupService(st store.Store, logger *slog.Logger, runHour int, retention time.Duration) *CleanupService {
	if runHour < 0 || runHour > 23 {
		runHour = defaultRunHour
	}
	if retention <= 0 {
		retention = defaultRetention
	}

	return &CleanupService{
		Store:     st,
		Logger:    logger,
		RunHour:   runHour,
		Retention: retention,
		stopCh:    make(chan struct{}),
		doneCh:    make(chan struct{}),
	}
}

// Start begins the background worker. Non-blocking; call Stop() to shut down.
func (s *CleanupService) Start() {
	go s.run()
	s.Logger.Info("cleanup service started", "run_hour", s.RunHour, "retention", s.Retention)
}

// Stop gracefully shuts down the background worker. Blocks until any
// in-progress sweep has finished. Accounts already deleted stay deleted; the
// remainder is untouched until the next run.
func (s *CleanupService) Stop() {
	close(s.stopCh)
	<-s.doneCh
	s.Logger.Info("cleanup service stopped")
}

// run is the main background worker loop.
func (s *CleanupService) run() {
	defer close(s.doneCh)

	for {
		wait := time.Until(nextRunAfter(time.Now(), s.RunHour))
		timer := time.NewTimer(wait)

		select {
		case <-timer.C:
			s.Sweep(context.Background())
		case <-s.stopCh:
			timer.Stop()
			return
		}
	}
}

// nextRunAfter returns the first instant strictly after now whose local
// wall-clock hour is runHour.
func nextRunAfter(now time.Time, runHour int) time.Time {
	next := time.Date(now.Year(), now.Month(), now.Day(), runHour, 0, 0, 0, now.Location())
	if !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}

// Sweep deletes all unactivated accounts created before now minus the
// retention window. Deletions are independent: one failure is logged and
// skipped, never aborting the rest. Running the sweep twice in a row deletes
// nothing new the second time. Returns the number of accounts deleted.
func (s *CleanupService) Sweep(ctx context.Context) int {
	cutoff := time.Now().Add(-s.Retention)
	s.Logger.Info("starting stale account sweep", "cutoff", cutoff)

	stale, err := s.Store.Accounts().ListUnactivatedCreatedBefore(ctx, cutoff)
	if err != nil {
		s.Logger.Error("failed to list stale accounts", "error", err)
		return 0
	}

	var deleted int
	for _, account := range stale {
		if err := s.Store.Accounts().Delete(ctx, account.ID); err != nil {
			s.Logger.Error("failed to delete stale account",
				"login", account.Login,
				"error", err,
			)
			continue
		}
		s.Logger.Debug("deleted stale account", "login", account.Login)
		deleted++
	}

	s.Logger.Info("stale account sweep completed", "deleted", deleted, "candidates", len(stale))
	return deleted
}
