package application

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/davarch/bwatch/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func targets(n int) []domain.Target {
	out := make([]domain.Target, n)
	for i := range out {
		// Later targets answer first.
		out[i] = domain.MockTarget{Name: fmt.Sprintf("t%02d", i), Delay: time.Duration(n-i) * time.Millisecond}
	}
	return out
}

func TestAggregate_KeepsInputOrder(t *testing.T) {
	ts := targets(8)
	results := Aggregate(context.Background(), &domain.MockFetcher{}, ts)

	require.Len(t, results, len(ts))
	for i, r := range results {
		assert.Equal(t, ts[i].Title(), r.Target.Title())
		assert.Equal(t, "https://ci.example/"+ts[i].Title(), r.Status.URL)
	}
}

func TestAggregate_Completeness(t *testing.T) {
	const n = 6
	for k := 0; k <= n; k++ {
		t.Run(fmt.Sprintf("%d of %d succeed", k, n), func(t *testing.T) {
			ts := targets(n)
			f := &domain.MockFetcher{Errs: map[string]error{}}
			for i := k; i < n; i++ {
				f.Errs[ts[i].Title()] = domain.NewError(domain.KindHTTPStatus, "invalid status 500")
			}

			results := Aggregate(context.Background(), f, ts)
			require.Len(t, results, n)
			assert.Equal(t, n, f.Called)

			okCount := 0
			for _, r := range results {
				if r.OK() {
					okCount++
				}
			}
			assert.Equal(t, k, okCount)
		})
	}
}

// barrierFetcher blocks every fetch until all of them have started, so it
// only returns if the fetches really run at the same time.
type barrierFetcher struct {
	n       int
	mu      sync.Mutex
	started int
	all     chan struct{}
}

func (b *barrierFetcher) Fetch(ctx context.Context, t domain.Target) (domain.BuildStatus, error) {
	b.mu.Lock()
	b.started++
	if b.started == b.n {
		close(b.all)
	}
	b.mu.Unlock()

	select {
	case <-b.all:
		return domain.BuildStatus{Status: domain.StatusGreen}, nil
	case <-time.After(2 * time.Second):
		return domain.BuildStatus{}, errors.New("fetches did not run concurrently")
	}
}

func TestAggregate_RunsConcurrently(t *testing.T) {
	const n = 10
	f := &barrierFetcher{n: n, all: make(chan struct{})}

	results := Aggregate(context.Background(), f, targets(n))
	for _, r := range results {
		assert.NoError(t, r.Err)
	}
}

type panicFetcher struct{}

func (panicFetcher) Fetch(ctx context.Context, t domain.Target) (domain.BuildStatus, error) {
	if t.Title() == "t01" {
		panic("bad payload")
	}
	return domain.BuildStatus{Status: domain.StatusRed}, nil
}

func TestAggregate_PanicStaysWithItsTarget(t *testing.T) {
	results := Aggregate(context.Background(), panicFetcher{}, targets(3))

	require.Len(t, results, 3)
	assert.NoError(t, results[0].Err)
	require.Error(t, results[1].Err)
	assert.Contains(t, results[1].Err.Error(), "bad payload")
	assert.NoError(t, results[2].Err)
}

func TestAggregate_Empty(t *testing.T) {
	assert.Empty(t, Aggregate(context.Background(), &domain.MockFetcher{}, nil))
}
