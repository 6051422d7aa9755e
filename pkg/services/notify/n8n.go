package notify

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/de-tools/spend-watch/pkg/models/domain"
)

// N8NNotifier posts title and message to an n8n webhook node protected by
// basic auth. credentials is the already base64-encoded "user:password".
type N8NNotifier struct {
	webhookURL  string
	credentials string
	client      *http.Client
}

func NewN8NNotifier(webhookURL, credentials string, timeout time.Duration) *N8NNotifier {
	return &N8NNotifier{
		webhookURL:  webhookURL,
		credentials: credentials,
		client:      newHTTPClient(timeout),
	}
}

func (n *N8NNotifier) Name() string { return "n8n" }

func (n *N8NNotifier) Send(ctx context.Context, alert domain.Alert) error {
	header := http.Header{}
	if n.credentials != "" {
		header.Set("Authorization", "Basic "+n.credentials)
	}

	payload := n8nPayload{Title: alert.Title, Message: alert.Message}
	if err := postJSON(ctx, n.client, n.webhookURL, payload, header); err != nil {
		return fmt.Errorf("send n8n notification: %w", err)
	}
	return nil
}

type n8nPayload struct {
	Title   string `json:"title"`
	Message string `json:"message"`
}
