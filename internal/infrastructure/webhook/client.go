// Package webhook posts JSON payloads to an incoming-webhook endpoint.
package webhook

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/valyala/fasthttp"

	"github.com/fastygo/todo/usecase/notification"
)

var ErrNoURL = errors.New("webhook url is not configured")

// Client sends each payload as a single POST bounded by a timeout.
type Client struct {
	url     string
	timeout time.Duration
	http    *fasthttp.Client
}

var _ notification.Sender = (*Client)(nil)

func NewClient(url string, timeout time.Duration, name string) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		url:     url,
		timeout: timeout,
		http: &fasthttp.Client{
			Name:                     name,
			ReadTimeout:              timeout,
			WriteTimeout:             timeout,
			NoDefaultUserAgentHeader: name == "",
		},
	}
}

// Send posts payload as JSON. The effective timeout is the shorter of the
// client timeout and the context deadline.
func (c *Client) Send(ctx context.Context, payload notification.Payload) error {
	if c.url == "" {
		return ErrNoURL
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	timeout := c.timeout
	if deadline, ok := ctx.Deadline(); ok {
		if remaining := time.Until(deadline); remaining < timeout {
			timeout = remaining
		}
	}
	if timeout <= 0 {
		return context.DeadlineExceeded
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(c.url)
	req.Header.SetMethod(fasthttp.MethodPost)
	req.Header.SetContentType("application/json")
	req.SetBody(body)

	if err := c.http.DoTimeout(req, resp, timeout); err != nil {
		return fmt.Errorf("post webhook: %w", err)
	}
	if status := resp.StatusCode(); status < 200 || status >= 300 {
		return fmt.Errorf("post webhook: unexpected status %d", status)
	}
	return nil
}
