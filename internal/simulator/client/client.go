// Package client posts BOD documents to the integration endpoint and
// classifies the outcome. Every send is a single attempt; duplicates and
// failures are reported, never retried.
package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"
)

const sourceHeader = "Mock-ION"

type OutcomeKind int

const (
	Accepted OutcomeKind = iota
	Duplicate
	HTTPError
	Timeout
	ConnectionError
)

func (k OutcomeKind) String() string {
	switch k {
	case Accepted:
		return "accepted"
	case Duplicate:
		return "duplicate"
	case HTTPError:
		return "http_error"
	case Timeout:
		return "timeout"
	default:
		return "connection_error"
	}
}

// Result describes what the endpoint did with one submission.
type Result struct {
	Kind       OutcomeKind
	StatusCode int
	OrderID    string
	Detail     string
}

type Client struct {
	url    string
	client *http.Client
}

func New(url string, timeout time.Duration) *Client {
	return &Client{
		url: url,
		client: &http.Client{
			Timeout: timeout,
		},
	}
}

// Send posts one XML document and classifies the response.
func (c *Client) Send(ctx context.Context, payload string) Result {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, strings.NewReader(payload))
	if err != nil {
		return Result{Kind: ConnectionError, Detail: err.Error()}
	}
	req.Header.Set("Content-Type", "application/xml")
	req.Header.Set("X-Source", sourceHeader)

	resp, err := c.client.Do(req)
	if err != nil {
		return classifyTransportError(err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
	if err != nil {
		return Result{Kind: ConnectionError, StatusCode: resp.StatusCode, Detail: err.Error()}
	}

	var parsed struct {
		Status  string `json:"status"`
		OrderID string `json:"order_id"`
		Reason  string `json:"reason"`
		Detail  string `json:"detail"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		parsed.Detail = strings.TrimSpace(string(body))
	}

	switch resp.StatusCode {
	case http.StatusOK:
		return Result{Kind: Accepted, StatusCode: resp.StatusCode, OrderID: parsed.OrderID}
	case http.StatusConflict:
		return Result{Kind: Duplicate, StatusCode: resp.StatusCode, OrderID: parsed.OrderID}
	default:
		detail := parsed.Detail
		if detail == "" {
			detail = parsed.Reason
		}
		if detail == "" {
			detail = parsed.Error
		}
		if detail == "" {
			detail = fmt.Sprintf("HTTP %d", resp.StatusCode)
		}
		return Result{Kind: HTTPError, StatusCode: resp.StatusCode, Detail: detail}
	}
}

func classifyTransportError(err error) Result {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return Result{Kind: Timeout, Detail: err.Error()}
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return Result{Kind: Timeout, Detail: err.Error()}
	}
	return Result{Kind: ConnectionError, Detail: err.Error()}
}
