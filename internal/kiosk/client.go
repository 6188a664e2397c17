// Package kiosk holds the client-resident side of check-in: the durable
// offline queue and the sync state machine that drains it once connectivity
// returns.
package kiosk

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/jmorrell/narthex/internal/domain/checkin"
)

// ErrServerUnavailable marks transport-level failures (timeout, 5xx) that
// leave the queued entry in place for a later sync attempt, as opposed to
// business rejections which are terminal.
var ErrServerUnavailable = errors.New("server unavailable")

// Client talks to the check-in service over HTTP.
type Client struct {
	http *resty.Client
}

// NewClient creates an API client for the given base URL.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	c := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")
	return &Client{http: c}
}

// Ping probes connectivity against the health endpoint.
func (c *Client) Ping(ctx context.Context) bool {
	resp, err := c.http.R().SetContext(ctx).Get("/health")
	return err == nil && resp.StatusCode() == http.StatusOK
}

// CheckIn submits a batch of items. Business rejections come back inside the
// BatchResult; ErrServerUnavailable means the request may not have been
// applied and is safe to replay thanks to its idempotency keys.
func (c *Client) CheckIn(ctx context.Context, items []checkin.RequestItem) (*checkin.BatchResult, error) {
	var result checkin.BatchResult
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(map[string]any{"items": items}).
		SetResult(&result).
		Post("/checkins")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrServerUnavailable, err)
	}
	if resp.StatusCode() >= http.StatusInternalServerError {
		return nil, fmt.Errorf("%w: status %d", ErrServerUnavailable, resp.StatusCode())
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("check-in rejected: status %d", resp.StatusCode())
	}
	return &result, nil
}

// Checkout ends an attendance record.
func (c *Client) Checkout(ctx context.Context, attendanceID string) error {
	resp, err := c.http.R().
		SetContext(ctx).
		Post(fmt.Sprintf("/checkins/%s/checkout", attendanceID))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrServerUnavailable, err)
	}
	if resp.StatusCode() >= http.StatusInternalServerError {
		return fmt.Errorf("%w: status %d", ErrServerUnavailable, resp.StatusCode())
	}
	if resp.StatusCode() != http.StatusOK {
		return fmt.Errorf("checkout rejected: status %d", resp.StatusCode())
	}
	return nil
}

// Configuration fetches the kiosk bootstrap read model.
func (c *Client) Configuration(ctx context.Context, campusID string) (map[string]any, error) {
	var cfg map[string]any
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParam("campus", campusID).
		SetResult(&cfg).
		Get("/checkin-configuration")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrServerUnavailable, err)
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("configuration fetch failed: status %d", resp.StatusCode())
	}
	return cfg, nil
}
