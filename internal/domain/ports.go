package domain

import "context"

type Target interface {
	Kind() string
	Title() string
	Groups() []string
}

type StatusFetcher interface {
	Fetch(ctx context.Context, t Target) (BuildStatus, error)
}

type Reporter interface {
	Report(results []Result) error
}

type Notifier interface {
	Notify(ctx context.Context, title, body, url string) error
}

type SummaryWriter interface {
	Write(ctx context.Context, s Summary) error
}
