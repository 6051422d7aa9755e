package notify

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/de-tools/spend-watch/pkg/models/domain"
)

// NtfyNotifier publishes the raw message to an ntfy topic.
type NtfyNotifier struct {
	topicURL string
	token    string
	priority int
	client   *http.Client
}

func NewNtfyNotifier(baseURL, topic, token string, priority int, timeout time.Duration) *NtfyNotifier {
	return &NtfyNotifier{
		topicURL: strings.TrimRight(baseURL, "/") + "/" + url.PathEscape(topic),
		token:    token,
		priority: priority,
		client:   newHTTPClient(timeout),
	}
}

func (n *NtfyNotifier) Name() string { return "ntfy" }

func (n *NtfyNotifier) Send(ctx context.Context, alert domain.Alert) error {
	header := http.Header{}
	header.Set("Content-Type", "text/plain; charset=utf-8")
	if n.token != "" {
		header.Set("Authorization", "Bearer "+n.token)
	}
	if alert.Title != "" {
		header.Set("Title", alert.Title)
	}

	priority := n.priority
	if alert.Priority > 0 {
		priority = alert.Priority
	}
	if priority > 0 {
		header.Set("Priority", strconv.Itoa(priority))
	}

	if err := post(ctx, n.client, n.topicURL, strings.NewReader(alert.Message), header); err != nil {
		return fmt.Errorf("send ntfy notification: %w", err)
	}
	return nil
}
