package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/davarch/bwatch/internal/domain"
	"github.com/davarch/bwatch/internal/registry"
	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"
)

const (
	DefaultFile            = "~/.bwatch.json"
	defaultPollingInterval = 60_000
	defaultRequestTimeout  = 10_000
	defaultPauseFile       = "~/.cache/bwatch_paused"
)

// Build is one entry of "builds". Tag selects which of the other fields apply.
type Build struct {
	Tag        string   `json:"tag" yaml:"tag" toml:"tag"`
	ServerURL  string   `json:"serverUrl,omitempty" yaml:"serverUrl,omitempty" toml:"serverUrl,omitempty"`
	Plan       string   `json:"plan,omitempty" yaml:"plan,omitempty" toml:"plan,omitempty"`
	Org        string   `json:"org,omitempty" yaml:"org,omitempty" toml:"org,omitempty"`
	Repo       string   `json:"repo,omitempty" yaml:"repo,omitempty" toml:"repo,omitempty"`
	Repository string   `json:"repository,omitempty" yaml:"repository,omitempty" toml:"repository,omitempty"`
	Branch     string   `json:"branch,omitempty" yaml:"branch,omitempty" toml:"branch,omitempty"`
	User       string   `json:"user,omitempty" yaml:"user,omitempty" toml:"user,omitempty"`
	Token      string   `json:"token,omitempty" yaml:"token,omitempty" toml:"token,omitempty"`
	Groups     []string `json:"groups,omitempty" yaml:"groups,omitempty" toml:"groups,omitempty"`
}

// Durations are milliseconds.
type Config struct {
	PollingInterval int64   `json:"pollingInterval" yaml:"pollingInterval" toml:"pollingInterval"`
	RequestTimeout  int64   `json:"requestTimeout" yaml:"requestTimeout" toml:"requestTimeout"`
	PauseFile       string  `json:"pauseFile,omitempty" yaml:"pauseFile,omitempty" toml:"pauseFile,omitempty"`
	SummaryFile     string  `json:"summaryFile,omitempty" yaml:"summaryFile,omitempty" toml:"summaryFile,omitempty"`
	Builds          []Build `json:"builds" yaml:"builds" toml:"builds"`
}

func (c Config) Interval() time.Duration {
	return time.Duration(c.PollingInterval) * time.Millisecond
}

func (c Config) Timeout() time.Duration {
	return time.Duration(c.RequestTimeout) * time.Millisecond
}

func Load(path string, lookup Lookup) (Config, error) {
	if path == "" {
		path = DefaultFile
	}
	path = ExpandHome(path)

	b, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	return Parse(b, formatOf(path), lookup)
}

// Parse decodes data as "json", "yaml" or "toml", resolves placeholders,
// applies BWATCH_* overrides and defaults, and validates the builds.
func Parse(data []byte, format string, lookup Lookup) (Config, error) {
	if lookup == nil {
		lookup = func(string) (string, bool) { return "", false }
	}

	var c Config
	var err error
	switch format {
	case "yaml":
		err = yaml.Unmarshal(data, &c)
	case "toml":
		_, err = toml.Decode(string(data), &c)
	default:
		err = json.Unmarshal(data, &c)
	}
	if err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}

	c.substitute(lookup)
	c.applyEnv(lookup)

	if c.PollingInterval <= 0 {
		c.PollingInterval = defaultPollingInterval
	}
	if c.RequestTimeout <= 0 {
		c.RequestTimeout = defaultRequestTimeout
	}
	if c.PauseFile == "" {
		c.PauseFile = defaultPauseFile
	}
	c.PauseFile = ExpandHome(c.PauseFile)
	c.SummaryFile = ExpandHome(c.SummaryFile)

	if len(c.Builds) == 0 {
		return c, errors.New("configuration must define at least one build")
	}
	if _, err := c.Targets(); err != nil {
		return c, err
	}
	return c, nil
}

func (c *Config) substitute(lookup Lookup) {
	sub := func(s *string) { *s = SubstituteVariables(*s, lookup) }

	sub(&c.PauseFile)
	sub(&c.SummaryFile)
	for i := range c.Builds {
		b := &c.Builds[i]
		for _, f := range []*string{&b.ServerURL, &b.Plan, &b.Org, &b.Repo, &b.Repository, &b.Branch, &b.User, &b.Token} {
			sub(f)
		}
		for j := range b.Groups {
			sub(&b.Groups[j])
		}
	}
}

func (c *Config) applyEnv(lookup Lookup) {
	if v, ok := lookup("BWATCH_INTERVAL"); ok && v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.PollingInterval = d.Milliseconds()
		}
	}
	if v, ok := lookup("BWATCH_TIMEOUT"); ok && v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.RequestTimeout = d.Milliseconds()
		}
	}
	if v, ok := lookup("BWATCH_SUMMARY_FILE"); ok && v != "" {
		c.SummaryFile = v
	}
	if v, ok := lookup("BWATCH_PAUSE_FILE"); ok && v != "" {
		c.PauseFile = v
	}
}

// Targets turns the builds into registry variants, keeping their order.
// All invalid builds are reported at once.
func (c Config) Targets() ([]domain.Target, error) {
	var errs error
	out := make([]domain.Target, 0, len(c.Builds))

	for i, b := range c.Builds {
		t, err := b.target()
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("builds[%d]: %w", i, err))
			continue
		}
		out = append(out, t)
	}
	if errs != nil {
		return nil, errs
	}
	return out, nil
}

func (b Build) target() (domain.Target, error) {
	var missing []string
	need := func(name, v string) {
		if strings.TrimSpace(v) == "" {
			missing = append(missing, name)
		}
	}

	var t domain.Target
	switch b.Tag {
	case registry.KindBamboo:
		need("serverUrl", b.ServerURL)
		need("plan", b.Plan)
		t = registry.Bamboo{ServerURL: b.ServerURL, Plan: b.Plan, Token: b.Token, GroupNames: b.Groups}
	case registry.KindCircleCI:
		need("org", b.Org)
		need("repo", b.Repo)
		need("branch", b.Branch)
		t = registry.CircleCI{Org: b.Org, Repo: b.Repo, Branch: b.Branch, Token: b.Token, GroupNames: b.Groups}
	case registry.KindTravis:
		need("serverUrl", b.ServerURL)
		need("repository", b.Repository)
		need("branch", b.Branch)
		t = registry.Travis{ServerURL: b.ServerURL, Repository: b.Repository, Branch: b.Branch, Token: b.Token, GroupNames: b.Groups}
	case registry.KindJenkins:
		need("serverUrl", b.ServerURL)
		need("plan", b.Plan)
		need("branch", b.Branch)
		t = registry.Jenkins{ServerURL: b.ServerURL, Plan: b.Plan, Branch: b.Branch, User: b.User, Token: b.Token, GroupNames: b.Groups}
	default:
		return nil, fmt.Errorf("unknown tag %q (want one of %s)", b.Tag, strings.Join(registry.Kinds, ", "))
	}

	if len(missing) > 0 {
		return nil, fmt.Errorf("%s: missing %s", b.Tag, strings.Join(missing, ", "))
	}
	return t, nil
}

// BuildOf is the inverse of the tag switch above, used to print targets back
// as configuration.
func BuildOf(t domain.Target) Build {
	switch v := t.(type) {
	case registry.Bamboo:
		return Build{Tag: registry.KindBamboo, ServerURL: v.ServerURL, Plan: v.Plan, Token: v.Token, Groups: v.GroupNames}
	case registry.CircleCI:
		return Build{Tag: registry.KindCircleCI, Org: v.Org, Repo: v.Repo, Branch: v.Branch, Token: v.Token, Groups: v.GroupNames}
	case registry.Travis:
		return Build{Tag: registry.KindTravis, ServerURL: v.ServerURL, Repository: v.Repository, Branch: v.Branch, Token: v.Token, Groups: v.GroupNames}
	case registry.Jenkins:
		return Build{Tag: registry.KindJenkins, ServerURL: v.ServerURL, Plan: v.Plan, Branch: v.Branch, User: v.User, Token: v.Token, Groups: v.GroupNames}
	default:
		return Build{Tag: t.Kind()}
	}
}

func formatOf(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return "yaml"
	case ".toml":
		return "toml"
	default:
		return "json"
	}
}

// ExpandHome resolves a leading "~/" against the user home directory.
func ExpandHome(p string) string {
	if strings.HasPrefix(p, "~/") {
		if h, _ := os.UserHomeDir(); h != "" {
			return h + p[1:]
		}
	}
	return p
}
