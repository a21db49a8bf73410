package services

import (
	"context"
	"sync"
	"time"

	"github.com/siftlabs/sift/internal/core/ports/driving"
	"github.com/siftlabs/sift/internal/logger"
)

// Ensure Scheduler implements the interface.
var _ driving.Scheduler = (*Scheduler)(nil)

// DefaultSyncInterval is the gap between automatic incremental syncs.
const DefaultSyncInterval = 15 * time.Minute

// Scheduler triggers incremental syncs for all sources on a fixed interval.
// Sources mid-sync are skipped by the orchestrator, so overlapping ticks
// never stack runs.
type Scheduler struct {
	orchestrator driving.SyncOrchestrator
	interval     time.Duration

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// NewScheduler creates a scheduler. A non-positive interval falls back to
// the default.
func NewScheduler(orchestrator driving.SyncOrchestrator, interval time.Duration) *Scheduler {
	if interval <= 0 {
		interval = DefaultSyncInterval
	}
	return &Scheduler{orchestrator: orchestrator, interval: interval}
}

// Start launches the background loop. Calling Start on a running scheduler
// is a no-op.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		return nil
	}

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.done = make(chan struct{})

	go s.run(ctx, s.done)
	logger.Info("Scheduler started, interval %s", s.interval)
	return nil
}

// Stop halts the loop and waits for any in-flight tick to finish.
func (s *Scheduler) Stop() error {
	s.mu.Lock()
	cancel, done := s.cancel, s.done
	s.cancel, s.done = nil, nil
	s.mu.Unlock()

	if cancel == nil {
		return nil
	}
	cancel()
	<-done
	logger.Info("Scheduler stopped")
	return nil
}

func (s *Scheduler) run(ctx context.Context, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			results, err := s.orchestrator.SyncAll(ctx, false)
			if err != nil {
				logger.Warn("Scheduled sync failed: %v", err)
				continue
			}
			for _, result := range results {
				if !result.Success {
					logger.Warn("Scheduled sync for %s finished with %d errors",
						result.Source, len(result.Errors))
				}
			}
		}
	}
}
