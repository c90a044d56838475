// Package api is the HTTP/JSON transport to the host-metrics server.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	hwerrors "github.com/tonhe/hostwatch/internal/errors"
)

// RequestIDHeader carries the per-request correlation id.
const RequestIDHeader = "X-Request-ID"

// maxBodyBytes bounds how much of a response body is read.
const maxBodyBytes = 8 << 20

// Transport performs one JSON request. body is encoded when non-nil; out is
// decoded from a 2xx response when non-nil.
type Transport interface {
	Do(ctx context.Context, method, path string, body, out any) error
}

// StatusError is the cause attached to NETWORK errors for non-2xx responses.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("HTTP error! status: %d", e.StatusCode)
}

// Reason is the one-line text shown to users for a failed call. A server
// rejection shows the server's message. Other failures keep their cause, so
// a refused connection reads as one.
func Reason(err error) string {
	if err == nil {
		return ""
	}
	var hwErr *hwerrors.Error
	if !hwerrors.As(err, &hwErr) {
		return err.Error()
	}
	var status *StatusError
	switch {
	case hwErr.Cause == nil, hwerrors.As(err, &status):
		return hwErr.Message
	case hwErr.Message == "":
		return hwErr.Cause.Error()
	}
	return hwErr.Message + ": " + hwErr.Cause.Error()
}

// HTTPTransport implements Transport over net/http.
type HTTPTransport struct {
	base   string
	client *http.Client
	logger *zap.Logger
}

// NewHTTPTransport creates a transport rooted at baseURL. A zero timeout
// leaves the client without a deadline; contexts still apply.
func NewHTTPTransport(baseURL string, timeout time.Duration, logger *zap.Logger) *HTTPTransport {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HTTPTransport{
		base:   strings.TrimRight(baseURL, "/"),
		client: &http.Client{Timeout: timeout},
		logger: logger,
	}
}

// BaseURL returns the server root requests are sent to.
func (t *HTTPTransport) BaseURL() string {
	return t.base
}

// Do sends the request and classifies failures as NETWORK errors.
func (t *HTTPTransport) Do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return hwerrors.Wrap(err, hwerrors.ErrValidation, "encode request body")
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, t.base+path, reader)
	if err != nil {
		return hwerrors.Wrap(err, hwerrors.ErrNetwork, fmt.Sprintf("%s %s", method, path))
	}
	reqID := uuid.NewString()
	req.Header.Set(RequestIDHeader, reqID)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	log := t.logger.With(
		zap.String("request_id", reqID),
		zap.String("method", method),
		zap.String("path", path),
	)

	start := time.Now()
	resp, err := t.client.Do(req)
	if err != nil {
		log.Warn("request failed", zap.Error(err))
		return hwerrors.Wrap(err, hwerrors.ErrNetwork, fmt.Sprintf("%s %s", method, path))
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		log.Warn("read response failed", zap.Error(err))
		return hwerrors.Wrap(err, hwerrors.ErrNetwork, fmt.Sprintf("%s %s", method, path))
	}
	log.Debug("request completed",
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(start)),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		statusErr := &StatusError{StatusCode: resp.StatusCode, Body: string(data)}
		msg := statusErr.Error()
		var eb errorBody
		if json.Unmarshal(data, &eb) == nil {
			if eb.Error != "" {
				msg = eb.Error
			} else if eb.Message != "" {
				msg = eb.Message
			}
		}
		return &hwerrors.Error{Code: hwerrors.ErrNetwork, Message: msg, Cause: statusErr}
	}

	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if raw, ok := out.(*json.RawMessage); ok {
		*raw = append((*raw)[:0], data...)
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		log.Warn("invalid response body", zap.Error(err))
		return hwerrors.Wrap(err, hwerrors.ErrNetwork, fmt.Sprintf("%s %s: invalid response", method, path))
	}
	return nil
}
