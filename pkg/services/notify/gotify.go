package notify

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/de-tools/spend-watch/pkg/models/domain"
)

const markdownContentType = "text/markdown"

// GotifyNotifier creates a message on a Gotify server using an app token.
type GotifyNotifier struct {
	baseURL  string
	token    string
	priority int
	client   *http.Client
}

func NewGotifyNotifier(baseURL, token string, priority int, timeout time.Duration) *GotifyNotifier {
	return &GotifyNotifier{
		baseURL:  strings.TrimRight(baseURL, "/"),
		token:    token,
		priority: priority,
		client:   newHTTPClient(timeout),
	}
}

func (g *GotifyNotifier) Name() string { return "gotify" }

func (g *GotifyNotifier) Send(ctx context.Context, alert domain.Alert) error {
	priority := g.priority
	if alert.Priority > 0 {
		priority = alert.Priority
	}

	payload := gotifyMessage{
		Title:    alert.Title,
		Message:  alert.Message,
		Priority: priority,
		Extras: map[string]any{
			"client::display": map[string]string{"contentType": markdownContentType},
		},
	}

	header := http.Header{}
	header.Set("X-Gotify-Key", g.token)

	if err := postJSON(ctx, g.client, g.baseURL+"/message", payload, header); err != nil {
		return fmt.Errorf("send gotify notification: %w", err)
	}
	return nil
}

type gotifyMessage struct {
	Title    string         `json:"title"`
	Message  string         `json:"message"`
	Priority int            `json:"priority"`
	Extras   map[string]any `json:"extras,omitempty"`
}
