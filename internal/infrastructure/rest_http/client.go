package rest_http

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"time"

	"github.com/davarch/bwatch/internal/domain"
)

// Client performs single-shot GET requests and decodes JSON bodies.
// Anything but 200 is an error; there is no retry.
type Client struct {
	hc *http.Client
}

func New(timeout time.Duration) *Client {
	tr := &http.Transport{
		DialContext:         (&net.Dialer{Timeout: 5 * time.Second}).DialContext,
		TLSHandshakeTimeout: 5 * time.Second,
		MaxIdleConns:        100,
		IdleConnTimeout:     90 * time.Second,
	}

	return &Client{hc: &http.Client{Transport: tr, Timeout: timeout}}
}

// NewWithHTTPClient is used by tests to point at an httptest server.
func NewWithHTTPClient(hc *http.Client) *Client {
	return &Client{hc: hc}
}

type request struct {
	header   http.Header
	user     string
	password string
	basic    bool
}

type Option func(*request)

func WithHeader(key, value string) Option {
	return func(r *request) { r.header.Set(key, value) }
}

func WithJSONHeaders() Option {
	return func(r *request) {
		r.header.Set("Accept", "application/json")
		r.header.Set("Content-Type", "application/json")
	}
}

func WithBasicAuth(user, password string) Option {
	return func(r *request) {
		r.user, r.password, r.basic = user, password, true
	}
}

func (c *Client) GetJSON(ctx context.Context, url string, out any, opts ...Option) error {
	r := request{header: http.Header{}}
	for _, o := range opts {
		o(&r)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return domain.WrapError(domain.KindTransport, "request error", err)
	}
	for k, vs := range r.header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	if r.basic {
		req.SetBasicAuth(r.user, r.password)
	}

	resp, err := c.hc.Do(req)
	if err != nil {
		return domain.WrapError(domain.KindTransport, "request error", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return domain.NewError(domain.KindHTTPStatus, "invalid status %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return domain.WrapError(domain.KindDecode, "JSON decode error", err)
	}
	return nil
}
