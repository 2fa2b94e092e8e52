package travis_http

import (
	"context"
	"fmt"
	"strings"

	"github.com/davarch/bwatch/internal/domain"
	"github.com/davarch/bwatch/internal/infrastructure/rest_http"
)

const publicServer = "https://travis-ci.org"

type Client struct {
	rest *rest_http.Client
}

func New(rest *rest_http.Client) *Client { return &Client{rest: rest} }

type branchDTO struct {
	LastBuild    *buildDTO `json:"last_build"`
	ErrorMessage *string   `json:"error_message"`
}

type buildDTO struct {
	ID            uint64  `json:"id"`
	State         string  `json:"state"`
	PreviousState string  `json:"previous_state"`
	FinishedAt    *string `json:"finished_at"`
	Duration      uint64  `json:"duration"`
}

// APIURL maps the public server to its API host; enterprise installs serve
// the API under /api.
func APIURL(serverURL string) string {
	if serverURL == publicServer {
		return "https://api.travis-ci.org"
	}
	return serverURL + "/api"
}

func encodeSegment(s string) string {
	return strings.ReplaceAll(s, "/", "%2F")
}

func (c *Client) LatestBuild(ctx context.Context, serverURL, repository, branch, token string) (domain.BuildStatus, error) {
	serverURL = strings.TrimRight(serverURL, "/")
	repository = encodeSegment(repository)
	url := fmt.Sprintf("%s/repo/%s/branch/%s", APIURL(serverURL), repository, encodeSegment(branch))

	opts := []rest_http.Option{
		rest_http.WithJSONHeaders(),
		rest_http.WithHeader("Travis-API-Version", "3"),
	}
	if token != "" {
		opts = append(opts, rest_http.WithHeader("Authorization", "token "+token))
	}

	var resp branchDTO
	if err := c.rest.GetJSON(ctx, url, &resp, opts...); err != nil {
		return domain.BuildStatus{}, err
	}
	return toBuildStatus(resp, serverURL, repository)
}

func toBuildStatus(resp branchDTO, serverURL, repository string) (domain.BuildStatus, error) {
	b := resp.LastBuild
	if b == nil {
		if resp.ErrorMessage != nil {
			return domain.BuildStatus{}, domain.NewError(domain.KindBackendReported, "%s", *resp.ErrorMessage)
		}
		return domain.BuildStatus{}, domain.NewError(domain.KindNoData, "no error message available")
	}
	if b.ID == 0 {
		return domain.BuildStatus{}, domain.NewError(domain.KindDecode, "JSON decode error: missing field id")
	}

	// A running build reports the outcome of the one before it.
	state := b.State
	if state == "started" || state == "created" {
		state = b.PreviousState
	}

	var ti *domain.TimeInfo
	if b.FinishedAt != nil {
		ti = &domain.TimeInfo{CompletedAt: *b.FinishedAt, DurationSecs: b.Duration}
	}
	link := fmt.Sprintf("%s/%s/builds/%d", serverURL, repository, b.ID)

	switch state {
	case "passed":
		return domain.BuildStatus{Status: domain.StatusGreen, URL: link, TimeInfo: ti}, nil
	case "failed", "errored":
		return domain.BuildStatus{Status: domain.StatusRed, URL: link, TimeInfo: ti}, nil
	default:
		return domain.BuildStatus{}, domain.NewError(domain.KindUnknownState, "unhandled state: %s", state)
	}
}
