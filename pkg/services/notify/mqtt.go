package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/de-tools/spend-watch/pkg/models/domain"
)

const mqttQoS = 1

var errMQTTTimeout = errors.New("timed out waiting for broker")

type MQTTOptions struct {
	Broker   string // host:port or a full tcp:// / ssl:// URL
	Topic    string
	Username string
	Password string
	ClientID string
}

type mqttClient interface {
	Connect() mqtt.Token
	Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token
	Disconnect(quiesce uint)
}

// MQTTNotifier publishes a JSON alert to a broker topic. It connects for each
// Send and disconnects afterwards, since runs are minutes or hours apart.
type MQTTNotifier struct {
	client  mqttClient
	topic   string
	timeout time.Duration
}

func NewMQTTNotifier(opts MQTTOptions, timeout time.Duration) *MQTTNotifier {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	broker := opts.Broker
	if !strings.Contains(broker, "://") {
		broker = fmt.Sprintf("tcp://%s", broker)
	}

	clientOpts := mqtt.NewClientOptions()
	clientOpts.AddBroker(broker)
	clientOpts.SetClientID(opts.ClientID)
	clientOpts.SetAutoReconnect(false)
	clientOpts.SetConnectTimeout(timeout)
	if opts.Username != "" {
		clientOpts.SetUsername(opts.Username)
	}
	if opts.Password != "" {
		clientOpts.SetPassword(opts.Password)
	}

	return newMQTTNotifier(mqtt.NewClient(clientOpts), opts.Topic, timeout)
}

func newMQTTNotifier(client mqttClient, topic string, timeout time.Duration) *MQTTNotifier {
	return &MQTTNotifier{client: client, topic: topic, timeout: timeout}
}

func (m *MQTTNotifier) Name() string { return "mqtt" }

func (m *MQTTNotifier) Send(ctx context.Context, alert domain.Alert) error {
	payload, err := json.Marshal(mqttPayload{
		Kind:      string(alert.Kind),
		Title:     alert.Title,
		Message:   alert.Message,
		Amount:    alert.Totals.Amount,
		Quantity:  alert.Totals.Quantity,
		Threshold: alert.Threshold,
		Currency:  alert.Currency,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		return fmt.Errorf("marshal mqtt payload: %w", err)
	}

	if err := m.wait(ctx, m.client.Connect()); err != nil {
		return fmt.Errorf("connect to MQTT broker: %w", err)
	}
	defer m.client.Disconnect(250)

	if err := m.wait(ctx, m.client.Publish(m.topic, mqttQoS, false, payload)); err != nil {
		return fmt.Errorf("publish to %s: %w", m.topic, err)
	}
	return nil
}

func (m *MQTTNotifier) wait(ctx context.Context, token mqtt.Token) error {
	timer := time.NewTimer(m.timeout)
	defer timer.Stop()

	select {
	case <-token.Done():
		return token.Error()
	case <-timer.C:
		return errMQTTTimeout
	case <-ctx.Done():
		return ctx.Err()
	}
}

type mqttPayload struct {
	Kind      string  `json:"kind"`
	Title     string  `json:"title"`
	Message   string  `json:"message"`
	Amount    float64 `json:"total_computed_amount"`
	Quantity  float64 `json:"total_computed_quantity"`
	Threshold float64 `json:"threshold"`
	Currency  string  `json:"currency"`
	Timestamp string  `json:"timestamp"`
}
