package summary_fs

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/davarch/bwatch/internal/domain"
)

func TestSummary_WriteCreatesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "bwatch.json")

	c := New(path)
	s := domain.Summary{
		Green:     3,
		Red:       1,
		Failed:    1,
		RedTitles: []string{"MY-PLAN"},
		Failures:  []string{"o/r/main: invalid status 404"},
		Retrieved: 123,
	}
	if err := c.Write(context.Background(), s); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("file not created: %v", err)
	}

	var got out
	if err := json.Unmarshal(b, &got); err != nil {
		t.Fatalf("bad json: %v", err)
	}
	if got.Class != "red" {
		t.Errorf("class = %q, want red", got.Class)
	}
	if got.Text != "✅ 3 ❌ 1 ❗ 1" {
		t.Errorf("text = %q", got.Text)
	}
	if got.Tooltip != "MY-PLAN\no/r/main: invalid status 404" {
		t.Errorf("tooltip = %q", got.Tooltip)
	}
	if got.Retrieved != 123 {
		t.Errorf("retrieved = %d, want 123", got.Retrieved)
	}
}

func TestSummary_OverwritesPreviousCycle(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bwatch.json")
	c := New(path)

	_ = c.Write(context.Background(), domain.Summary{Red: 2, RedTitles: []string{"a", "b"}})
	if err := c.Write(context.Background(), domain.Summary{Green: 2}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	b, _ := os.ReadFile(path)
	var got out
	_ = json.Unmarshal(b, &got)
	if got.Class != "green" || got.Red != 0 || got.Tooltip != "" {
		t.Errorf("previous cycle leaked into %+v", got)
	}
}

func TestSummary_EmptyPath(t *testing.T) {
	if err := New("").Write(context.Background(), domain.Summary{}); err == nil {
		t.Fatal("expected error for empty path")
	}
}
