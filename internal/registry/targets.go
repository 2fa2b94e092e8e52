// Package registry holds the closed set of build target kinds and routes a
// fetch to the adapter of each kind.
package registry

import (
	"slices"

	"github.com/davarch/bwatch/internal/domain"
)

const (
	KindBamboo   = "bamboo"
	KindCircleCI = "circleci"
	KindTravis   = "travis"
	KindJenkins  = "jenkins"
)

// Kinds lists every supported tag in a stable order.
var Kinds = []string{KindBamboo, KindCircleCI, KindTravis, KindJenkins}

type Bamboo struct {
	ServerURL  string
	Plan       string
	Token      string
	GroupNames []string
}

func (t Bamboo) Kind() string     { return KindBamboo }
func (t Bamboo) Title() string    { return t.Plan }
func (t Bamboo) Groups() []string { return t.GroupNames }

type CircleCI struct {
	Org        string
	Repo       string
	Branch     string
	Token      string
	GroupNames []string
}

func (t CircleCI) Kind() string     { return KindCircleCI }
func (t CircleCI) Title() string    { return t.Org + "/" + t.Repo + "/" + t.Branch }
func (t CircleCI) Groups() []string { return t.GroupNames }

type Travis struct {
	ServerURL  string
	Repository string
	Branch     string
	Token      string
	GroupNames []string
}

func (t Travis) Kind() string     { return KindTravis }
func (t Travis) Title() string    { return t.Repository + "/" + t.Branch }
func (t Travis) Groups() []string { return t.GroupNames }

type Jenkins struct {
	ServerURL  string
	Plan       string
	Branch     string
	User       string
	Token      string
	GroupNames []string
}

func (t Jenkins) Kind() string     { return KindJenkins }
func (t Jenkins) Title() string    { return t.Plan + "/" + t.Branch }
func (t Jenkins) Groups() []string { return t.GroupNames }

// InGroup keeps the order of targets. An empty group keeps everything.
func InGroup(targets []domain.Target, group string) []domain.Target {
	if group == "" {
		return targets
	}
	out := make([]domain.Target, 0, len(targets))
	for _, t := range targets {
		if slices.Contains(t.Groups(), group) {
			out = append(out, t)
		}
	}
	return out
}
