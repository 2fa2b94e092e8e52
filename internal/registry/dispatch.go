package registry

import (
	"context"
	"fmt"

	"github.com/davarch/bwatch/internal/domain"
	"github.com/davarch/bwatch/internal/infrastructure/bamboo_http"
	"github.com/davarch/bwatch/internal/infrastructure/circleci_http"
	"github.com/davarch/bwatch/internal/infrastructure/jenkins_http"
	"github.com/davarch/bwatch/internal/infrastructure/rest_http"
	"github.com/davarch/bwatch/internal/infrastructure/travis_http"
)

type Dispatcher struct {
	bamboo   *bamboo_http.Client
	circleci *circleci_http.Client
	travis   *travis_http.Client
	jenkins  *jenkins_http.Client
}

func NewDispatcher(rest *rest_http.Client) *Dispatcher {
	return &Dispatcher{
		bamboo:   bamboo_http.New(rest),
		circleci: circleci_http.New(rest),
		travis:   travis_http.New(rest),
		jenkins:  jenkins_http.New(rest),
	}
}

// NewDispatcherWithCircleCI overrides the CircleCI API base, which is the
// only backend without a configurable server.
func NewDispatcherWithCircleCI(rest *rest_http.Client, circleBaseURL string) *Dispatcher {
	d := NewDispatcher(rest)
	d.circleci = circleci_http.NewWithBaseURL(rest, circleBaseURL)
	return d
}

func (d *Dispatcher) Fetch(ctx context.Context, t domain.Target) (domain.BuildStatus, error) {
	switch v := t.(type) {
	case Bamboo:
		return d.bamboo.LatestBuild(ctx, v.ServerURL, v.Plan, v.Token)
	case CircleCI:
		return d.circleci.LatestBuild(ctx, v.Org, v.Repo, v.Branch, v.Token)
	case Travis:
		return d.travis.LatestBuild(ctx, v.ServerURL, v.Repository, v.Branch, v.Token)
	case Jenkins:
		return d.jenkins.LatestBuild(ctx, v.ServerURL, v.Plan, v.Branch, v.User, v.Token)
	default:
		return domain.BuildStatus{}, fmt.Errorf("unsupported target %T", t)
	}
}
