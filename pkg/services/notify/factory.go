package notify

import (
	"github.com/de-tools/spend-watch/pkg/services/config"
)

// NewChannels builds every channel that has settings, in dispatch order.
func NewChannels(s *config.Settings) []Channel {
	c := s.Channels
	timeout := s.Timeouts.Notify

	var channels []Channel
	for _, name := range s.EnabledChannels() {
		switch name {
		case "discord":
			channels = append(channels, NewDiscordNotifier(c.Discord.WebhookURL, timeout))
		case "slack":
			channels = append(channels, NewSlackNotifier(c.Slack.WebhookURL, c.Slack.Channel, timeout))
		case "gotify":
			channels = append(channels, NewGotifyNotifier(c.Gotify.URL, c.Gotify.Token, c.Gotify.Priority, timeout))
		case "n8n":
			channels = append(channels, NewN8NNotifier(c.N8N.WebhookURL, c.N8N.Credentials, timeout))
		case "ntfy":
			channels = append(channels, NewNtfyNotifier(c.Ntfy.URL, c.Ntfy.Topic, c.Ntfy.Token, c.Ntfy.Priority, timeout))
		case "mqtt":
			channels = append(channels, NewMQTTNotifier(MQTTOptions{
				Broker:   c.MQTT.Broker,
				Topic:    c.MQTT.Topic,
				Username: c.MQTT.Username,
				Password: c.MQTT.Password,
				ClientID: c.MQTT.ClientID,
			}, timeout))
		}
	}
	return channels
}

// NewDispatcherFromSettings wires all configured channels under the
// configured success policy.
func NewDispatcherFromSettings(s *config.Settings) (*Dispatcher, error) {
	policy, err := ParsePolicy(s.Dispatch.Policy, s.Dispatch.Required)
	if err != nil {
		return nil, err
	}
	return NewDispatcher(policy, NewChannels(s)...), nil
}
