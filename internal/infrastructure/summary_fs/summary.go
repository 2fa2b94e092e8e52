package summary_fs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/davarch/bwatch/internal/domain"
)

// FSSummary overwrites one JSON file per poll cycle in the shape status bars
// such as waybar read: text, tooltip, class.
type FSSummary struct {
	path string
}

func New(path string) *FSSummary { return &FSSummary{path: path} }

type out struct {
	Text      string `json:"text"`
	Tooltip   string `json:"tooltip"`
	Class     string `json:"class"`
	Green     int    `json:"green"`
	Red       int    `json:"red"`
	Failed    int    `json:"failed"`
	Retrieved int64  `json:"retrieved"`
}

func (c *FSSummary) Write(_ context.Context, s domain.Summary) error {
	if c.path == "" {
		return errors.New("summary path is empty")
	}

	if err := os.MkdirAll(filepath.Dir(c.path), 0o755); err != nil {
		return err
	}

	b, err := json.MarshalIndent(toOut(s), "", "  ")
	if err != nil {
		return err
	}

	tmp := c.path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		return err
	}
	if err := os.Rename(tmp, c.path); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return nil
}

func toOut(s domain.Summary) out {
	class := "green"
	switch {
	case s.Red > 0:
		class = "red"
	case s.Failed > 0:
		class = "failed"
	}

	text := fmt.Sprintf("✅ %d ❌ %d", s.Green, s.Red)
	if s.Failed > 0 {
		text += fmt.Sprintf(" ❗ %d", s.Failed)
	}

	tooltip := append(append([]string{}, s.RedTitles...), s.Failures...)

	return out{
		Text:      text,
		Tooltip:   strings.Join(tooltip, "\n"),
		Class:     class,
		Green:     s.Green,
		Red:       s.Red,
		Failed:    s.Failed,
		Retrieved: s.Retrieved,
	}
}
