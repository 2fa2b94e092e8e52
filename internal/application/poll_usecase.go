package application

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/davarch/bwatch/internal/domain"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type PollUseCase struct {
	log     *zap.Logger
	fetch   domain.StatusFetcher
	report  domain.Reporter
	note    domain.Notifier
	summary domain.SummaryWriter
	now     func() time.Time
}

// note and summary may be nil.
func NewPollUseCase(log *zap.Logger, fetch domain.StatusFetcher, report domain.Reporter, note domain.Notifier, summary domain.SummaryWriter) *PollUseCase {
	return &PollUseCase{
		log: log, fetch: fetch, report: report, note: note, summary: summary,
		now: time.Now,
	}
}

// PollOnce runs one poll cycle. Failing targets never fail the cycle; only
// a failure to print the report does.
func (uc *PollUseCase) PollOnce(ctx context.Context, targets []domain.Target) ([]domain.Result, error) {
	cycle := uuid.New().String()
	start := uc.now()

	results := Aggregate(ctx, uc.fetch, targets)
	s := domain.Summarize(results, uc.now().Unix())

	for _, r := range results {
		if !r.OK() {
			uc.log.Debug("fetch failed",
				zap.String("cycle", cycle),
				zap.String("kind", r.Target.Kind()),
				zap.String("title", r.Target.Title()),
				zap.Stringer("error_kind", domain.KindOf(r.Err)),
				zap.Error(r.Err),
			)
		}
	}
	uc.log.Debug("poll cycle done",
		zap.String("cycle", cycle),
		zap.Int("targets", len(targets)),
		zap.Int("green", s.Green),
		zap.Int("red", s.Red),
		zap.Int("failed", s.Failed),
		zap.Duration("took", uc.now().Sub(start)),
	)

	if err := uc.report.Report(results); err != nil {
		return results, err
	}

	if uc.summary != nil {
		if err := uc.summary.Write(ctx, s); err != nil {
			uc.log.Warn("summary write failed", zap.String("cycle", cycle), zap.Error(err))
		}
	}

	if uc.note != nil && (s.Red > 0 || s.Failed > 0) {
		if err := uc.note.Notify(ctx, titleFor(s), bodyFor(s), firstRedURL(results)); err != nil {
			uc.log.Warn("notify failed", zap.String("cycle", cycle), zap.Error(err))
		}
	}

	return results, nil
}

func titleFor(s domain.Summary) string {
	var parts []string
	if s.Red > 0 {
		parts = append(parts, strconv.Itoa(s.Red)+" red")
	}
	if s.Failed > 0 {
		parts = append(parts, strconv.Itoa(s.Failed)+" failed")
	}
	return "❌ bwatch: " + strings.Join(parts, ", ")
}

func bodyFor(s domain.Summary) string {
	lines := append([]string{}, s.RedTitles...)
	return strings.Join(append(lines, s.Failures...), "\n")
}

func firstRedURL(results []domain.Result) string {
	for _, r := range results {
		if r.OK() && r.Status.Status == domain.StatusRed {
			return r.Status.URL
		}
	}
	return ""
}
