// Package terminal prints one poll cycle as an aligned table. Titles become
// OSC 8 hyperlinks when the output supports them.
package terminal

import (
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/davarch/bwatch/internal/domain"
	"github.com/mattn/go-runewidth"
)

const (
	glyphGreen = "✅"
	glyphRed   = "❌"
	glyphError = "❗"

	dateLayout = "2006-01-02 15:04:05"
)

type Renderer struct {
	w           io.Writer
	hyperlinks  bool
	errStyle    lipgloss.Style
	headerStyle lipgloss.Style
	now         func() time.Time
}

func New(w io.Writer, hyperlinks bool) *Renderer {
	lr := lipgloss.NewRenderer(w)
	return &Renderer{
		w:           w,
		hyperlinks:  hyperlinks,
		errStyle:    lr.NewStyle().Foreground(lipgloss.Color("#EA4335")),
		headerStyle: lr.NewStyle().Foreground(lipgloss.Color("#9AA0A6")).Bold(true),
	}
}

// WithHeader prefixes every report with a timestamp line, for watch mode.
func (r *Renderer) WithHeader(now func() time.Time) *Renderer {
	r.now = now
	return r
}

// Report writes the table of successful results, then one line per failure
// in input order.
func (r *Renderer) Report(results []domain.Result) error {
	ok := make([]domain.Result, 0, len(results))
	var failed []domain.Result
	for _, res := range results {
		if res.OK() {
			ok = append(ok, res)
		} else {
			failed = append(failed, res)
		}
	}

	if r.now != nil {
		header := "── bwatch " + r.now().Format(dateLayout) + " ──"
		if _, err := fmt.Fprintln(r.w, r.headerStyle.Render(header)); err != nil {
			return err
		}
	}

	for _, line := range Lines(ok, r.hyperlinks) {
		if _, err := fmt.Fprintln(r.w, line); err != nil {
			return err
		}
	}
	for _, res := range failed {
		if _, err := fmt.Fprintln(r.w, r.errStyle.Render(ErrorLine(res))); err != nil {
			return err
		}
	}
	return nil
}

func ErrorLine(res domain.Result) string {
	return fmt.Sprintf("%s %s | %s", glyphError, res.Target.Title(), res.Err)
}

type row struct {
	glyph       string
	title       string
	url         string
	completedAt string
	duration    string
}

// Lines formats successful results. Widths are measured over every row
// before any row is formatted.
func Lines(results []domain.Result, hyperlinks bool) []string {
	rows := make([]row, 0, len(results))
	var maxTitle, maxURL, maxCompleted, maxDuration int

	for _, res := range results {
		rw := row{
			glyph: glyphFor(res.Status.Status),
			title: res.Target.Title(),
			url:   res.Status.URL,
		}
		if ti := res.Status.TimeInfo; ti != nil {
			rw.completedAt = formatCompletedAt(ti.CompletedAt)
			rw.duration = HumanDuration(ti.DurationSecs)
		}

		maxTitle = max(maxTitle, runewidth.StringWidth(rw.title))
		maxURL = max(maxURL, runewidth.StringWidth(rw.url))
		maxCompleted = max(maxCompleted, runewidth.StringWidth(rw.completedAt))
		maxDuration = max(maxDuration, runewidth.StringWidth(rw.duration))

		rows = append(rows, rw)
	}

	sort.SliceStable(rows, func(i, j int) bool { return rows[i].title < rows[j].title })

	out := make([]string, 0, len(rows))
	for _, rw := range rows {
		title := runewidth.FillRight(rw.title, maxTitle)
		completed := runewidth.FillRight(rw.completedAt, maxCompleted)
		duration := runewidth.FillRight(rw.duration, maxDuration)

		if hyperlinks {
			link := ansi.SetHyperlink(rw.url) + title + ansi.ResetHyperlink()
			out = append(out, fmt.Sprintf("%s %s | %s | %s", rw.glyph, link, completed, duration))
			continue
		}
		url := runewidth.FillRight(rw.url, maxURL)
		out = append(out, fmt.Sprintf("%s %s | %s | %s | %s", rw.glyph, title, url, completed, duration))
	}
	return out
}

func glyphFor(s domain.Status) string {
	if s == domain.StatusGreen {
		return glyphGreen
	}
	return glyphRed
}

// Unparsable timestamps are shown as the backend sent them.
func formatCompletedAt(s string) string {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return s
	}
	return t.Format(dateLayout)
}
