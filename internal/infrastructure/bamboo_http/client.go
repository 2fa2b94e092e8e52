package bamboo_http

import (
	"context"
	"fmt"
	"strings"

	"github.com/davarch/bwatch/internal/domain"
	"github.com/davarch/bwatch/internal/infrastructure/rest_http"
)

type Client struct {
	rest *rest_http.Client
}

func New(rest *rest_http.Client) *Client { return &Client{rest: rest} }

type responseDTO struct {
	Results struct {
		Size   int         `json:"size"`
		Result []resultDTO `json:"result"`
	} `json:"results"`
}

type resultDTO struct {
	BuildState         string `json:"buildState"`
	LifeCycleState     string `json:"lifeCycleState"`
	BuildResultKey     string `json:"buildResultKey"`
	BuildCompletedTime string `json:"buildCompletedTime"`
	BuildDuration      uint64 `json:"buildDuration"`
}

func (c *Client) LatestBuild(ctx context.Context, serverURL, plan, token string) (domain.BuildStatus, error) {
	serverURL = strings.TrimRight(serverURL, "/")
	url := fmt.Sprintf("%s/rest/api/latest/result/%s.json?max-results=1&expand=results.result", serverURL, plan)

	opts := []rest_http.Option{rest_http.WithHeader("Accept", "application/json")}
	if token != "" {
		opts = append(opts, rest_http.WithHeader("Authorization", "Bearer "+token))
	}

	var resp responseDTO
	if err := c.rest.GetJSON(ctx, url, &resp, opts...); err != nil {
		return domain.BuildStatus{}, err
	}

	return toBuildStatus(resp, serverURL)
}

// Only the first result counts, and only once Bamboo has finished it.
// Timing and state are checked only for finished results.
func toBuildStatus(resp responseDTO, serverURL string) (domain.BuildStatus, error) {
	if len(resp.Results.Result) == 0 {
		return domain.BuildStatus{}, errNoBuild
	}
	r := resp.Results.Result[0]
	if err := missing("lifeCycleState", r.LifeCycleState, "buildResultKey", r.BuildResultKey); err != nil {
		return domain.BuildStatus{}, err
	}
	if r.LifeCycleState != "Finished" {
		return domain.BuildStatus{}, errNoBuild
	}
	if err := missing("buildState", r.BuildState, "buildCompletedTime", r.BuildCompletedTime); err != nil {
		return domain.BuildStatus{}, err
	}

	status := domain.StatusRed
	if r.BuildState == "Successful" {
		status = domain.StatusGreen
	}

	return domain.BuildStatus{
		Status: status,
		URL:    serverURL + "/browse/" + r.BuildResultKey,
		TimeInfo: &domain.TimeInfo{
			CompletedAt:  r.BuildCompletedTime,
			DurationSecs: r.BuildDuration / 1000,
		},
	}, nil
}

var errNoBuild = domain.NewError(domain.KindNoData, "no build found in response")

// missing takes name/value pairs and reports the first empty value.
func missing(pairs ...string) error {
	for i := 0; i+1 < len(pairs); i += 2 {
		if pairs[i+1] == "" {
			return domain.NewError(domain.KindDecode, "JSON decode error: missing field %s", pairs[i])
		}
	}
	return nil
}
