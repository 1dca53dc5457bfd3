// Package transport provides the authenticated HTTP client used by the
// hosted content store backend. Requests are bounded by a fixed timeout;
// expiry aborts the in-flight request and surfaces as a timeout error the
// caller can branch on.
package transport

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"io"
	"net/http"
	"time"

	"github.com/rpampin/mercadito/pkg/errors"
)

// DefaultHTTPTimeout bounds every network-bound content store call.
var DefaultHTTPTimeout = 15 * time.Second

// Client provides HTTP client functionality with authentication.
type Client struct {
	http *http.Client
	auth Authenticator
}

// New creates a new transport client with the specified authenticator.
func New(auth Authenticator) *Client {
	return &Client{
		http: &http.Client{Timeout: DefaultHTTPTimeout},
		auth: auth,
	}
}

// NewWithTimeout creates a transport client with a custom timeout.
func NewWithTimeout(auth Authenticator, timeout time.Duration) *Client {
	return &Client{
		http: &http.Client{Timeout: timeout},
		auth: auth,
	}
}

// Do performs an HTTP request with authentication applied. A request that
// exceeds the client timeout is reported as a timeout error; note the
// server may still have applied the write.
func (c *Client) Do(ctx context.Context, req *http.Request) (*http.Response, error) {
	c.auth.Apply(req)

	req.Header.Set("Accept", "application/json")
	if req.Method == http.MethodPost || req.Method == http.MethodPut || req.Method == http.MethodDelete {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req.WithContext(ctx))
	if err != nil {
		if isTimeout(ctx, err) {
			return nil, errors.NewTimeoutError(req.Method+" "+req.URL.Path, c.http.Timeout.String(), err.Error())
		}
		return nil, errors.WrapIO("request", req.URL.Path, err)
	}
	return resp, nil
}

// DecodeResponse decodes a JSON response into the target structure,
// mapping non-2xx statuses to typed API errors.
func DecodeResponse(resp *http.Response, endpoint string, target any) error {
	defer func() {
		_ = resp.Body.Close()
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.WrapIO("read", "response body", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return errors.NewAPIError(resp.StatusCode, endpoint, apiMessage(body, resp.StatusCode))
	}

	if target == nil {
		return nil
	}
	if err := json.Unmarshal(body, target); err != nil {
		return errors.WrapParse("json", endpoint, err)
	}
	return nil
}

// apiMessage extracts the hosted API's human-readable message field,
// falling back to the raw body.
func apiMessage(body []byte, status int) string {
	var payload struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err == nil && payload.Message != "" {
		return payload.Message
	}
	if len(body) > 0 {
		return string(body)
	}
	return http.StatusText(status)
}

func isTimeout(ctx context.Context, err error) bool {
	if ctx.Err() == context.DeadlineExceeded {
		return true
	}
	type timeouter interface{ Timeout() bool }
	var t timeouter
	if stderrors.As(err, &t) {
		return t.Timeout()
	}
	return false
}
