package jenkins_http

import (
	"context"
	"fmt"
	"strings"

	"github.com/davarch/bwatch/internal/domain"
	"github.com/davarch/bwatch/internal/infrastructure/rest_http"
)

const treeQuery = "tree=url,building,timestamp,estimatedDuration,result,duration&depth=0"

type Client struct {
	rest *rest_http.Client
}

func New(rest *rest_http.Client) *Client { return &Client{rest: rest} }

type buildDTO struct {
	URL       string `json:"url"`
	Building  bool   `json:"building"`
	Result    string `json:"result"`
	Timestamp int64  `json:"timestamp"`
	Duration  int64  `json:"duration"`
}

func (c *Client) LatestBuild(ctx context.Context, serverURL, plan, branch, user, token string) (domain.BuildStatus, error) {
	url := fmt.Sprintf("%s/job/%s/job/%s/lastCompletedBuild/api/json?%s", strings.TrimRight(serverURL, "/"), plan, branch, treeQuery)

	opts := []rest_http.Option{rest_http.WithHeader("Accept", "application/json")}
	if user != "" {
		opts = append(opts, rest_http.WithBasicAuth(user, token))
	}

	var b buildDTO
	if err := c.rest.GetJSON(ctx, url, &b, opts...); err != nil {
		return domain.BuildStatus{}, err
	}
	return toBuildStatus(b)
}

func toBuildStatus(b buildDTO) (domain.BuildStatus, error) {
	switch {
	case b.URL == "":
		return domain.BuildStatus{}, domain.NewError(domain.KindDecode, "JSON decode error: missing field url")
	case b.Result == "":
		return domain.BuildStatus{}, domain.NewError(domain.KindDecode, "JSON decode error: missing field result")
	}

	switch b.Result {
	case "SUCCESS":
		return domain.BuildStatus{Status: domain.StatusGreen, URL: b.URL}, nil
	case "FAILURE":
		return domain.BuildStatus{Status: domain.StatusRed, URL: b.URL}, nil
	default:
		return domain.BuildStatus{}, domain.NewError(domain.KindUnknownState, "unhandled result %s", b.Result)
	}
}
