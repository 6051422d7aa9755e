package notify

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/de-tools/spend-watch/pkg/models/domain"
)

// SlackNotifier sends alerts to a Slack incoming webhook.
type SlackNotifier struct {
	webhookURL string
	channel    string
	client     *http.Client
}

func NewSlackNotifier(webhookURL, channel string, timeout time.Duration) *SlackNotifier {
	return &SlackNotifier{
		webhookURL: webhookURL,
		channel:    channel,
		client:     newHTTPClient(timeout),
	}
}

func (s *SlackNotifier) Name() string { return "slack" }

func (s *SlackNotifier) Send(ctx context.Context, alert domain.Alert) error {
	color := "#36a64f" // green
	if alert.Kind == domain.AlertKindThreshold {
		color = "#cc0000" // dark red
	}

	payload := slackPayload{
		Channel: s.channel,
		Text:    alert.Message,
		Attachments: []slackAttachment{
			{
				Color: color,
				Title: alert.Title,
				Fields: []slackField{
					{Title: "Amount", Value: fmt.Sprintf("%.2f %s", alert.Totals.Amount, alert.Currency), Short: true},
					{Title: "Quantity", Value: fmt.Sprintf("%.2f", alert.Totals.Quantity), Short: true},
				},
				Footer: "spend-watch",
				Ts:     time.Now().Unix(),
			},
		},
	}

	if err := postJSON(ctx, s.client, s.webhookURL, payload, nil); err != nil {
		return fmt.Errorf("send slack notification: %w", err)
	}
	return nil
}

type slackPayload struct {
	Channel     string            `json:"channel,omitempty"`
	Text        string            `json:"text"`
	Attachments []slackAttachment `json:"attachments"`
}

type slackAttachment struct {
	Color  string       `json:"color"`
	Title  string       `json:"title"`
	Fields []slackField `json:"fields"`
	Footer string       `json:"footer"`
	Ts     int64        `json:"ts"`
}

type slackField struct {
	Title string `json:"title"`
	Value string `json:"value"`
	Short bool   `json:"short"`
}
