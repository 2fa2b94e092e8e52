package application

import (
	"context"
	"fmt"
	"sync"

	"github.com/davarch/bwatch/internal/domain"
)

// Aggregate fetches every target concurrently and returns once all of them
// have settled. results[i] always belongs to targets[i].
func Aggregate(ctx context.Context, f domain.StatusFetcher, targets []domain.Target) []domain.Result {
	results := make([]domain.Result, len(targets))

	var wg sync.WaitGroup
	for i, t := range targets {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i] = fetchOne(ctx, f, t)
		}()
	}
	wg.Wait()

	return results
}

func fetchOne(ctx context.Context, f domain.StatusFetcher, t domain.Target) (res domain.Result) {
	res.Target = t
	defer func() {
		if r := recover(); r != nil {
			res.Status = domain.BuildStatus{}
			res.Err = fmt.Errorf("fetch panicked: %v", r)
		}
	}()

	res.Status, res.Err = f.Fetch(ctx, t)
	return res
}
