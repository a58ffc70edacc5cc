package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/campusware/edukit/internal/addon/store"
)

// HousekeepingService periodically deletes expired sessions and pending
// authorization states so the database does not grow without bound.
type HousekeepingService struct {
	Store    store.Store
	Logger   *slog.Logger
	Interval time.Duration

	stopCh chan struct{}
	doneCh chan struct{}
}

// NewHousekeepingService creates a housekeeping service. A zero or negative
// interval defaults to 15 minutes.
func NewHousekeepingService(st store.Store, logger *slog.Logger, interval time.Duration) *HousekeepingService {
	if interval <= 0 {
		interval = 15 * time.Minute
	}
	return &HousekeepingService{
		Store:    st,
		Logger:   logger,
		Interval: interval,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

// Start begins the background worker. Non-blocking; call Stop to shut down.
func (s *HousekeepingService) Start() {
	go s.run()
	s.Logger.Info("housekeeping started", "interval", s.Interval)
}

// Stop shuts the worker down, blocking until any in-progress sweep ends.
func (s *HousekeepingService) Stop() {
	close(s.stopCh)
	<-s.doneCh
	s.Logger.Info("housekeeping stopped")
}

func (s *HousekeepingService) run() {
	defer close(s.doneCh)

	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()

	s.sweep()

	for {
		select {
		case <-ticker.C:
			s.sweep()
		case <-s.stopCh:
			return
		}
	}
}

// sweep deletes expired rows. Each deletion is independent; one failing
// does not stop the others.
func (s *HousekeepingService) sweep() {
	ctx := context.Background()
	now := time.Now().UTC()

	if err := s.Store.Sessions().DeleteExpiredSessions(ctx, now); err != nil {
		s.Logger.Error("expired session sweep failed", "error", err)
	}
	if err := s.Store.Credentials().DeleteExpiredPendingStates(ctx, now); err != nil {
		s.Logger.Error("expired pending state sweep failed", "error", err)
	}
}
