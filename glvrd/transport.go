package glvrd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
)

// HTTPTransport is the default Transport backed by net/http
type HTTPTransport struct {
	http *http.Client
}

// NewHTTPTransport creates a transport with the given request timeout
func NewHTTPTransport(timeout time.Duration) *HTTPTransport {
	return &HTTPTransport{
		http: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        10,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
}

// NewHTTPTransportWithClient wraps an existing http.Client
func NewHTTPTransportWithClient(client *http.Client) *HTTPTransport {
	return &HTTPTransport{http: client}
}

// Do sends the request. Any status code is returned as a Response;
// only failures to reach the service are returned as errors.
func (t *HTTPTransport) Do(ctx context.Context, method, url, body string) (*Response, error) {
	var reader io.Reader
	if method == http.MethodPost {
		reader = strings.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", formMimeType)
	requestID := uuid.NewString()
	req.Header.Set("X-Request-Id", requestID)

	resp, err := t.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send request %s: %w", requestID, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response %s: %w", requestID, err)
	}

	slog.Debug("glvrd request completed",
		"method", method,
		"request_id", requestID,
		"status", resp.StatusCode,
		"bytes", len(data))

	return &Response{
		StatusCode: resp.StatusCode,
		StatusText: http.StatusText(resp.StatusCode),
		Body:       data,
	}, nil
}
