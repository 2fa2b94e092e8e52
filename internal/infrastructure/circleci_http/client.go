package circleci_http

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/davarch/bwatch/internal/domain"
	"github.com/davarch/bwatch/internal/infrastructure/rest_http"
)

const (
	DefaultBaseURL = "https://circleci.com/api/v2"
	appURL         = "https://app.circleci.com/pipelines/github"
)

type Client struct {
	rest    *rest_http.Client
	baseURL string
}

func New(rest *rest_http.Client) *Client {
	return NewWithBaseURL(rest, DefaultBaseURL)
}

func NewWithBaseURL(rest *rest_http.Client, baseURL string) *Client {
	return &Client{rest: rest, baseURL: strings.TrimRight(baseURL, "/")}
}

type pipelinesDTO struct {
	Items []struct {
		ID string `json:"id"`
	} `json:"items"`
}

type workflowsDTO struct {
	Items []workflowDTO `json:"items"`
}

type workflowDTO struct {
	ID             string `json:"id"`
	Status         string `json:"status"`
	PipelineNumber uint64 `json:"pipeline_number"`
}

// LatestBuild looks up the newest pipeline of the branch, then its first workflow.
func (c *Client) LatestBuild(ctx context.Context, org, repo, branch, token string) (domain.BuildStatus, error) {
	opts := []rest_http.Option{rest_http.WithJSONHeaders()}
	if token != "" {
		opts = append(opts, rest_http.WithHeader("Circle-Token", token))
	}

	pipelineURL := fmt.Sprintf("%s/project/github/%s/%s/pipeline?branch=%s",
		c.baseURL, org, repo, url.QueryEscape(branch))

	var pipelines pipelinesDTO
	if err := c.rest.GetJSON(ctx, pipelineURL, &pipelines, opts...); err != nil {
		return domain.BuildStatus{}, err
	}
	if len(pipelines.Items) == 0 {
		return domain.BuildStatus{}, domain.NewError(domain.KindNoData, "no pipeline found")
	}
	if pipelines.Items[0].ID == "" {
		return domain.BuildStatus{}, errMissing("pipeline id")
	}

	workflowURL := fmt.Sprintf("%s/pipeline/%s/workflow", c.baseURL, pipelines.Items[0].ID)

	var workflows workflowsDTO
	if err := c.rest.GetJSON(ctx, workflowURL, &workflows, opts...); err != nil {
		return domain.BuildStatus{}, err
	}
	if len(workflows.Items) == 0 {
		return domain.BuildStatus{}, domain.NewError(domain.KindNoData, "no workflow item found")
	}

	return toBuildStatus(workflows.Items[0], org, repo)
}

func toBuildStatus(w workflowDTO, org, repo string) (domain.BuildStatus, error) {
	switch {
	case w.ID == "":
		return domain.BuildStatus{}, errMissing("workflow id")
	case w.Status == "":
		return domain.BuildStatus{}, errMissing("workflow status")
	}

	link := fmt.Sprintf("%s/%s/%s/%d/workflows/%s", appURL, org, repo, w.PipelineNumber, w.ID)

	switch w.Status {
	case "success":
		return domain.BuildStatus{Status: domain.StatusGreen, URL: link}, nil
	case "failed", "failing":
		return domain.BuildStatus{Status: domain.StatusRed, URL: link}, nil
	case "error":
		return domain.BuildStatus{}, domain.NewError(domain.KindBackendReported, "build error")
	default:
		return domain.BuildStatus{}, domain.NewError(domain.KindUnknownState, "unhandled status %s", w.Status)
	}
}

func errMissing(field string) error {
	return domain.NewError(domain.KindDecode, "JSON decode error: missing %s", field)
}
