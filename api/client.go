package api

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

// ErrRequestFailed indicates the searcher could not be reached or did not
// return a SubmitResponse.
var ErrRequestFailed = errors.New("api: request failed")

// Client talks to a running searcher.
type Client struct {
	http *resty.Client
}

// NewClient creates a Client for the searcher at baseURL.
func NewClient(baseURL string, timeout time.Duration) *Client {
	rc := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetTimeout(timeout).
		SetHeader("Accept", "application/json")
	return &Client{http: rc}
}

// SubmitPSBT posts encoded to /submit-psbt. A searcher-side failure is
// returned as a SubmitResponse with Success false and a nil error.
func (c *Client) SubmitPSBT(ctx context.Context, encoded string) (*SubmitResponse, error) {
	var ok, failed SubmitResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(SubmitRequest{PSBT: encoded}).
		SetResult(&ok).
		SetError(&failed).
		Post("/submit-psbt")
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRequestFailed, err)
	}
	if resp.IsError() {
		if failed.Error == nil && failed.Message == "" {
			return nil, fmt.Errorf("%w: HTTP %d: %s", ErrRequestFailed, resp.StatusCode(), resp.String())
		}
		return &failed, nil
	}
	return &ok, nil
}
