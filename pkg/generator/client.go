// Package generator is the thin client for the slow report generation
// backend. Trigger is fire-and-forget: its response body is never treated as
// the source of truth, only the status endpoint is.
package generator

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/hashicorp/go-retryablehttp"

	"github.com/fortuna-labs/report-funnel/pkg/models/domain"
	"github.com/fortuna-labs/report-funnel/pkg/services/config"
)

type Client interface {
	Trigger(ctx context.Context, accessToken string) error
	Status(ctx context.Context, accessToken string) (bool, error)
	Fetch(ctx context.Context, accessToken string) (map[string]string, error)
}

type httpClient struct {
	endpoint config.Endpoint
	trigger  *http.Client
	read     *retryablehttp.Client
}

func NewClient(endpoint config.Endpoint) Client {
	read := retryablehttp.NewClient()
	read.RetryMax = 2
	read.RetryWaitMin = 200 * time.Millisecond
	read.RetryWaitMax = 2 * time.Second
	read.Logger = nil

	return &httpClient{
		endpoint: endpoint,
		trigger:  &http.Client{Timeout: 10 * time.Second},
		read:     read,
	}
}

func (c *httpClient) Trigger(ctx context.Context, accessToken string) error {
	payload, err := json.Marshal(map[string]string{"accessToken": accessToken})
	if err != nil {
		return fmt.Errorf("encode trigger request: %w", err)
	}

	url := c.endpoint.Host + "/v1/generate"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build trigger request: %w", err)
	}
	c.authorize(req.Header)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.trigger.Do(req)
	if err != nil {
		return &domain.NetworkError{Op: "generator.Trigger", Err: err}
	}
	defer resp.Body.Close()

	// 202-style ack; anything below 300 counts as accepted.
	if resp.StatusCode >= 300 {
		return &domain.NetworkError{
			Op:  "generator.Trigger",
			Err: fmt.Errorf("generator returned %d", resp.StatusCode),
		}
	}
	return nil
}

func (c *httpClient) Status(ctx context.Context, accessToken string) (bool, error) {
	url := c.endpoint.Host + "/v1/status?accessToken=" + accessToken
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return false, fmt.Errorf("build status request: %w", err)
	}
	c.authorize(req.Header)

	resp, err := c.read.Do(req)
	if err != nil {
		return false, &domain.NetworkError{Op: "generator.Status", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return false, &domain.NetworkError{
			Op:  "generator.Status",
			Err: fmt.Errorf("generator returned %d", resp.StatusCode),
		}
	}

	var body struct {
		IsCompleted bool `json:"isCompleted"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return false, fmt.Errorf("decode status: %w", err)
	}
	return body.IsCompleted, nil
}

func (c *httpClient) Fetch(ctx context.Context, accessToken string) (map[string]string, error) {
	url := c.endpoint.Host + "/v1/report?accessToken=" + accessToken
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build fetch request: %w", err)
	}
	c.authorize(req.Header)

	resp, err := c.read.Do(req)
	if err != nil {
		return nil, &domain.NetworkError{Op: "generator.Fetch", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return nil, &domain.NetworkError{
			Op:  "generator.Fetch",
			Err: fmt.Errorf("generator returned %d", resp.StatusCode),
		}
	}

	var body struct {
		Sections map[string]string `json:"sections"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode generated report: %w", err)
	}
	return body.Sections, nil
}

func (c *httpClient) authorize(h http.Header) {
	if c.endpoint.Token != "" {
		h.Set("Authorization", "Bearer "+c.endpoint.Token)
	}
}
