package domain

import (
	"context"
	"sync"
	"time"
)

type MockTarget struct {
	Name  string
	Tags  []string
	Delay time.Duration
}

func (t MockTarget) Kind() string     { return "mock" }
func (t MockTarget) Title() string    { return t.Name }
func (t MockTarget) Groups() []string { return t.Tags }

// MockFetcher answers by target title. Titles missing from both maps succeed green.
type MockFetcher struct {
	Statuses map[string]BuildStatus
	Errs     map[string]error

	mu     sync.Mutex
	Called int
}

func (m *MockFetcher) Fetch(ctx context.Context, t Target) (BuildStatus, error) {
	m.mu.Lock()
	m.Called++
	m.mu.Unlock()

	if mt, ok := t.(MockTarget); ok && mt.Delay > 0 {
		select {
		case <-time.After(mt.Delay):
		case <-ctx.Done():
			return BuildStatus{}, WrapError(KindTransport, "request error", ctx.Err())
		}
	}

	if err, ok := m.Errs[t.Title()]; ok {
		return BuildStatus{}, err
	}
	if s, ok := m.Statuses[t.Title()]; ok {
		return s, nil
	}
	return BuildStatus{Status: StatusGreen, URL: "https://ci.example/" + t.Title()}, nil
}

type MockReporter struct {
	Reports [][]Result
	Err     error
}

func (r *MockReporter) Report(results []Result) error {
	r.Reports = append(r.Reports, results)
	return r.Err
}

type MockNotifier struct {
	Messages []string
	Err      error
}

func (n *MockNotifier) Notify(ctx context.Context, title, body, url string) error {
	n.Messages = append(n.Messages, title+"|"+body+"|"+url)
	return n.Err
}

type MockSummary struct {
	Summaries []Summary
	Err       error
}

func (c *MockSummary) Write(ctx context.Context, s Summary) error {
	if c.Err != nil {
		return c.Err
	}
	c.Summaries = append(c.Summaries, s)
	return nil
}
