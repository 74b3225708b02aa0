package glvrd

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

// formField is one key=value pair of a POST body
type formField struct {
	Key   string
	Value string
}

// encodeForm joins the fields in order as key=value pairs separated by &.
// Values are escaped like JavaScript's encodeURIComponent.
func encodeForm(fields ...formField) string {
	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, f.Key+"="+escapeComponent(f.Value))
	}
	return strings.Join(parts, "&")
}

const upperhex = "0123456789ABCDEF"

// escapeComponent percent-encodes every UTF-8 byte outside
// A-Z a-z 0-9 - _ . ! ~ * ' ( )
func escapeComponent(s string) string {
	var sb strings.Builder
	sb.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if isUnreserved(c) {
			sb.WriteByte(c)
			continue
		}
		sb.WriteByte('%')
		sb.WriteByte(upperhex[c>>4])
		sb.WriteByte(upperhex[c&15])
	}
	return sb.String()
}

func isUnreserved(c byte) bool {
	switch {
	case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z', '0' <= c && c <= '9':
		return true
	}
	switch c {
	case '-', '_', '.', '!', '~', '*', '\'', '(', ')':
		return true
	}
	return false
}

// apiURL builds base/operation/?app=...&session=...
// The session parameter is present only while the session is valid.
func (c *Client) apiURL(operation string) string {
	var token string
	if s, ok := c.sessions.current(); ok {
		token = s.Token
	}
	return c.sessionURL(operation, token)
}

// sessionURL builds the URL for operation under token; an empty token
// omits the session parameter.
func (c *Client) sessionURL(operation, token string) string {
	var params []string
	if c.config.App != "" {
		params = append(params, "app="+escapeComponent(c.config.App))
	}
	if token != "" {
		params = append(params, "session="+escapeComponent(token))
	}
	return c.baseURL + operation + "/?" + strings.Join(params, "&")
}

// call sends one request under whatever session is valid right now
func (c *Client) call(ctx context.Context, method, operation string, out interface{}, fields ...formField) error {
	return c.send(ctx, method, operation, c.apiURL(operation), out, fields...)
}

// callInSession sends one request under token, so that the request and
// anything cached from its answer belong to the same session.
func (c *Client) callInSession(ctx context.Context, token, method, operation string, out interface{}, fields ...formField) error {
	return c.send(ctx, method, operation, c.sessionURL(operation, token), out, fields...)
}

// send performs the request and decodes a successful payload into out.
// Success means a 2xx status and a JSON body whose status is "ok".
func (c *Client) send(ctx context.Context, method, operation, url string, out interface{}, fields ...formField) error {
	var body string
	if method == http.MethodPost {
		body = encodeForm(fields...)
	}

	start := time.Now()
	resp, err := c.transport.Do(ctx, method, url, body)
	elapsed := time.Since(start).Seconds()
	if err != nil {
		slog.Debug("glvrd transport failure",
			"operation", operation,
			"error", err)
		c.metrics.RecordAPICall(operation, CodeNetwork, elapsed)
		return networkError(0, err.Error())
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.metrics.RecordAPICall(operation, CodeNetwork, elapsed)
		return networkError(resp.StatusCode, resp.StatusText)
	}

	var envelope struct {
		Status     string `json:"status"`
		Code       string `json:"code"`
		StatusText string `json:"statusText"`
		Message    string `json:"message"`
	}
	if err := json.Unmarshal(resp.Body, &envelope); err != nil {
		c.metrics.RecordAPICall(operation, "malformed", elapsed)
		return fmt.Errorf("decode %s response: %w", operation, err)
	}

	if envelope.Status != StatusOK {
		apiErr := &APIError{
			Status:     envelope.Status,
			Code:       envelope.Code,
			StatusText: envelope.StatusText,
			HTTPStatus: resp.StatusCode,
		}
		if apiErr.StatusText == "" {
			apiErr.StatusText = envelope.Message
		}
		// The envelope already parsed, so this cannot fail.
		_ = json.Unmarshal(resp.Body, &apiErr.Body)
		slog.Debug("glvrd request rejected",
			"operation", operation,
			"status", envelope.Status,
			"code", envelope.Code)
		c.metrics.RecordAPICall(operation, "rejected", elapsed)
		return apiErr
	}

	c.metrics.RecordAPICall(operation, StatusOK, elapsed)
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(resp.Body, out); err != nil {
		return fmt.Errorf("decode %s response: %w", operation, err)
	}
	return nil
}
