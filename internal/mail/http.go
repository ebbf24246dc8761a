package mail

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// HTTPTransport posts messages to an ntfy-style push endpoint. The recipient
// travels in the Email header so the relay can forward it.
type HTTPTransport struct {
	URL    string
	Client *http.Client
}

func NewHTTPTransport(url string, timeout time.Duration) *HTTPTransport {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &HTTPTransport{URL: url, Client: &http.Client{Timeout: timeout}}
}

func (h *HTTPTransport) Deliver(ctx context.Context, e Email) error {
	if h.URL == "" {
		return fmt.Errorf("URL is required")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.URL, strings.NewReader(e.Body))
	if err != nil {
		return fmt.Errorf("failed to create HTTP request: %w", err)
	}
	req.Header.Set("Content-Type", "text/plain")
	req.Header.Set("Title", e.Subject)
	req.Header.Set("Email", e.To)
	req.Header.Set("Tags", "calendar")

	resp, err := h.Client.Do(req)
	if err != nil {
		return fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("HTTP %d error: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return nil
}
