package application

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/davarch/bwatch/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestScheduler_PollsUntilCancelled(t *testing.T) {
	f := &domain.MockFetcher{}
	rep := &domain.MockReporter{}
	uc := NewPollUseCase(zap.NewNop(), f, rep, nil, nil)
	s := NewScheduler(zap.NewNop(), uc, []domain.Target{domain.MockTarget{Name: "a"}}, 10*time.Millisecond, "")

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	done := make(chan struct{})
	go func() {
		s.Run(ctx)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("scheduler did not stop after cancel")
	}
	assert.GreaterOrEqual(t, len(rep.Reports), 2)
}

func TestScheduler_PauseFileSkipsCycles(t *testing.T) {
	pause := filepath.Join(t.TempDir(), "paused")
	require.NoError(t, os.WriteFile(pause, nil, 0o644))

	f := &domain.MockFetcher{}
	uc := NewPollUseCase(zap.NewNop(), f, &domain.MockReporter{}, nil, nil)
	s := NewScheduler(zap.NewNop(), uc, []domain.Target{domain.MockTarget{Name: "a"}}, 10*time.Millisecond, pause)

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Millisecond)
	defer cancel()
	s.Run(ctx)

	assert.Equal(t, 0, f.Called)
}

func TestScheduler_UpdateSwapsTargets(t *testing.T) {
	f := &domain.MockFetcher{}
	rep := &domain.MockReporter{}
	uc := NewPollUseCase(zap.NewNop(), f, rep, nil, nil)
	s := NewScheduler(zap.NewNop(), uc, []domain.Target{domain.MockTarget{Name: "old"}}, time.Hour, "")

	s.Update([]domain.Target{domain.MockTarget{Name: "new"}, domain.MockTarget{Name: "other"}}, 10*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	s.Run(ctx)

	require.NotEmpty(t, rep.Reports)
	last := rep.Reports[len(rep.Reports)-1]
	require.Len(t, last, 2)
	assert.Equal(t, "new", last[0].Target.Title())
}

func TestScheduler_ReconfigureSwapsUseCase(t *testing.T) {
	oldRep := &domain.MockReporter{}
	old := NewPollUseCase(zap.NewNop(), &domain.MockFetcher{}, oldRep, nil, nil)
	s := NewScheduler(zap.NewNop(), old, []domain.Target{domain.MockTarget{Name: "a"}}, 10*time.Millisecond, "")

	pause := filepath.Join(t.TempDir(), "paused")
	newRep := &domain.MockReporter{}
	s.Reconfigure(NewPollUseCase(zap.NewNop(), &domain.MockFetcher{}, newRep, nil, nil), pause)

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Millisecond)
	defer cancel()
	s.Run(ctx)

	assert.Empty(t, oldRep.Reports)
	assert.NotEmpty(t, newRep.Reports)

	require.NoError(t, os.WriteFile(pause, nil, 0o644))
	assert.True(t, s.isPaused())
}
