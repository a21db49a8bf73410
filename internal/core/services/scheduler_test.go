package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/siftlabs/sift/internal/core/domain"
	"github.com/siftlabs/sift/internal/core/ports/driving"
)

// tickOrchestrator signals each scheduled SyncAll invocation.
type tickOrchestrator struct {
	ticks chan struct{}
}

func (o *tickOrchestrator) Sync(_ context.Context, source string, _ bool) (*domain.SyncResult, error) {
	return &domain.SyncResult{Source: source, Success: true}, nil
}

func (o *tickOrchestrator) SyncAll(_ context.Context, _ bool) ([]domain.SyncResult, error) {
	select {
	case o.ticks <- struct{}{}:
	default:
	}
	return nil, nil
}

func (o *tickOrchestrator) Status(_ context.Context, sourceID string) (*driving.SyncStatus, error) {
	return &driving.SyncStatus{SourceID: sourceID}, nil
}

func TestScheduler_StartTicksAndStops(t *testing.T) {
	orch := &tickOrchestrator{ticks: make(chan struct{}, 1)}
	var s driving.Scheduler = NewScheduler(orch, 10*time.Millisecond)

	require.NoError(t, s.Start(context.Background()))

	select {
	case <-orch.ticks:
	case <-time.After(2 * time.Second):
		t.Fatal("scheduler never triggered a sync")
	}

	require.NoError(t, s.Stop())
}

func TestScheduler_StartTwiceIsNoOp(t *testing.T) {
	orch := &tickOrchestrator{ticks: make(chan struct{}, 1)}
	s := NewScheduler(orch, time.Minute)

	require.NoError(t, s.Start(context.Background()))
	require.NoError(t, s.Start(context.Background()))
	require.NoError(t, s.Stop())
}

func TestScheduler_StopWithoutStart(t *testing.T) {
	s := NewScheduler(&tickOrchestrator{ticks: make(chan struct{}, 1)}, time.Minute)
	require.NoError(t, s.Stop())
}
