package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/de-tools/spend-watch/pkg/models/domain"
)

const (
	DefaultTimeout = 15 * time.Second
	userAgent      = "spend-watch/1.0"
	maxErrorBody   = 512
)

// Channel delivers alerts to one external destination.
type Channel interface {
	// Name returns the channel identifier used in config and logs.
	Name() string

	// Send delivers an alert. A nil error means the destination accepted it.
	Send(ctx context.Context, alert domain.Alert) error
}

// StatusError is returned when a destination answers with a non-2xx status.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("unexpected status %d", e.Code)
	}
	return fmt.Sprintf("unexpected status %d: %s", e.Code, e.Body)
}

func newHTTPClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &http.Client{Timeout: timeout}
}

func postJSON(ctx context.Context, client *http.Client, url string, payload any, header http.Header) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	if header == nil {
		header = http.Header{}
	}
	header.Set("Content-Type", "application/json")
	return post(ctx, client, url, bytes.NewReader(body), header)
}

func post(ctx context.Context, client *http.Client, url string, body io.Reader, header http.Header) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &StatusError{Code: resp.StatusCode, Body: string(bytes.TrimSpace(respBody))}
	}
	return nil
}
