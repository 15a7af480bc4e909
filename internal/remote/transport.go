package remote

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"
)

// DefaultTimeout bounds a single delivery attempt.
const DefaultTimeout = 2 * time.Second

// Transport sends one serialized entry to the collector.
type Transport interface {
	Post(ctx context.Context, payload []byte) error
}

// TransportFunc adapts a function to the Transport interface.
type TransportFunc func(ctx context.Context, payload []byte) error

// Post calls f.
func (f TransportFunc) Post(ctx context.Context, payload []byte) error {
	return f(ctx, payload)
}

// HTTPTransport posts JSON payloads to a fixed URL.
type HTTPTransport struct {
	URL    string
	Client *http.Client
}

// NewHTTPTransport creates an HTTPTransport whose client gives up after
// timeout.
func NewHTTPTransport(url string, timeout time.Duration) *HTTPTransport {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &HTTPTransport{
		URL:    url,
		Client: &http.Client{Timeout: timeout},
	}
}

// Post sends payload as the body of a POST request. Any non-2xx response
// is an error; the response body is discarded.
func (t *HTTPTransport) Post(ctx context.Context, payload []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.URL, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	client := t.Client
	if client == nil {
		client = &http.Client{Timeout: DefaultTimeout}
	}

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to post log entry: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("collector returned HTTP %d", resp.StatusCode)
	}
	return nil
}

// Endpoint builds the collector URL from its parts.
func Endpoint(host, port, path string) string {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return "http://" + net.JoinHostPort(host, port) + path
}
