package notify

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/de-tools/spend-watch/pkg/models/domain"
)

// DiscordNotifier posts the alert message to a Discord webhook.
type DiscordNotifier struct {
	webhookURL string
	client     *http.Client
}

func NewDiscordNotifier(webhookURL string, timeout time.Duration) *DiscordNotifier {
	return &DiscordNotifier{
		webhookURL: webhookURL,
		client:     newHTTPClient(timeout),
	}
}

func (d *DiscordNotifier) Name() string { return "discord" }

func (d *DiscordNotifier) Send(ctx context.Context, alert domain.Alert) error {
	payload := discordPayload{Content: alert.Message}
	if err := postJSON(ctx, d.client, d.webhookURL, payload, nil); err != nil {
		return fmt.Errorf("send discord notification: %w", err)
	}
	return nil
}

type discordPayload struct {
	Content string `json:"content"`
}
