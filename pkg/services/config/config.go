package config

import (
	"errors"
	"fmt"
	"math"
	"slices"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const EnvPrefix = "SPENDWATCH"

type Settings struct {
	Provider   string            `mapstructure:"provider"`
	Profile    string            `mapstructure:"profile"`
	Tenant     string            `mapstructure:"tenant"`
	Threshold  float64           `mapstructure:"threshold"`
	Currency   string            `mapstructure:"currency"`
	AlertTitle string            `mapstructure:"alert_title"`
	Interval   time.Duration     `mapstructure:"interval"`
	OCI        OCISettings       `mapstructure:"oci"`
	AWS        AWSSettings       `mapstructure:"aws"`
	Azure      AzureSettings     `mapstructure:"azure"`
	Timeouts   TimeoutSettings   `mapstructure:"timeouts"`
	Dispatch   DispatchSettings  `mapstructure:"dispatch"`
	Heartbeat  HeartbeatSettings `mapstructure:"heartbeat"`
	Channels   ChannelSettings   `mapstructure:"channels"`
	Status     StatusSettings    `mapstructure:"status"`
	Server     ServerSettings    `mapstructure:"server"`
	Logging    LoggingSettings   `mapstructure:"logging"`
}

type OCISettings struct {
	ConfigPaths []string `mapstructure:"config_paths"`
}

type AWSSettings struct {
	Region string `mapstructure:"region"`
}

type AzureSettings struct {
	SubscriptionID string `mapstructure:"subscription_id"`
}

type TimeoutSettings struct {
	Notify    time.Duration `mapstructure:"notify"`
	Heartbeat time.Duration `mapstructure:"heartbeat"`
	Query     time.Duration `mapstructure:"query"`
}

type DispatchSettings struct {
	Policy   string   `mapstructure:"policy"`
	Required []string `mapstructure:"required"`
}

type HeartbeatSettings struct {
	URL            string `mapstructure:"url"`
	OnQueryFailure bool   `mapstructure:"on_query_failure"`
}

type ChannelSettings struct {
	Discord DiscordSettings `mapstructure:"discord"`
	Slack   SlackSettings   `mapstructure:"slack"`
	Gotify  GotifySettings  `mapstructure:"gotify"`
	N8N     N8NSettings     `mapstructure:"n8n"`
	Ntfy    NtfySettings    `mapstructure:"ntfy"`
	MQTT    MQTTSettings    `mapstructure:"mqtt"`
}

type DiscordSettings struct {
	WebhookURL string `mapstructure:"webhook_url"`
}

type SlackSettings struct {
	WebhookURL string `mapstructure:"webhook_url"`
	Channel    string `mapstructure:"channel"`
}

type GotifySettings struct {
	URL      string `mapstructure:"url"`
	Token    string `mapstructure:"token"`
	Priority int    `mapstructure:"priority"`
}

type N8NSettings struct {
	WebhookURL  string `mapstructure:"webhook_url"`
	Credentials string `mapstructure:"credentials"`
}

type NtfySettings struct {
	URL      string `mapstructure:"url"`
	Topic    string `mapstructure:"topic"`
	Token    string `mapstructure:"token"`
	Priority int    `mapstructure:"priority"`
}

type MQTTSettings struct {
	Broker   string `mapstructure:"broker"`
	Topic    string `mapstructure:"topic"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	ClientID string `mapstructure:"client_id"`
}

type StatusSettings struct {
	Channels []string `mapstructure:"channels"`
}

type ServerSettings struct {
	Addr string `mapstructure:"addr"`
}

type LoggingSettings struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

var (
	providers = []string{"oci", "aws", "azure"}
	policies  = []string{"any", "all", "required"}
)

// legacyEnv maps setting keys to the bare environment names used by the
// original cron deployment.
var legacyEnv = map[string]string{
	"threshold":                    "THRESHOLD",
	"heartbeat.url":                "HEALTHCHECKS_URL_OCI_USAGE_COST",
	"channels.discord.webhook_url": "DISCORD_WEBHOOK_URL",
	"channels.n8n.webhook_url":     "N8N_WEBHOOK_URL",
	"channels.n8n.credentials":     "N8N_CREDENTIALS",
}

var ErrMissingThreshold = errors.New("threshold is required")

// Load reads settings from the optional config file, a .env file and the
// environment. Validation is left to the caller.
func Load(cfgFile string) (*Settings, error) {
	_ = godotenv.Load()

	v := viper.New()
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("spend-watch")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/spend-watch")
	}

	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for key, legacy := range legacyEnv {
		prefixed := EnvPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		if err := v.BindEnv(key, prefixed, legacy); err != nil {
			return nil, fmt.Errorf("failed to bind env for %s: %w", key, err)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	if !v.IsSet("threshold") {
		return nil, ErrMissingThreshold
	}

	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return nil, fmt.Errorf("failed to parse settings: %w", err)
	}
	return &s, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("provider", "oci")
	v.SetDefault("profile", "DEFAULT")
	v.SetDefault("tenant", "")
	v.SetDefault("currency", "USD")
	v.SetDefault("alert_title", "OCI Usage Cost")
	v.SetDefault("interval", "1h")

	v.SetDefault("oci.config_paths", []string{"~/.oci/config", "/scripts/config"})
	v.SetDefault("aws.region", "us-east-1")
	v.SetDefault("azure.subscription_id", "")

	v.SetDefault("timeouts.notify", "15s")
	v.SetDefault("timeouts.heartbeat", "10s")
	v.SetDefault("timeouts.query", "60s")

	v.SetDefault("dispatch.policy", "any")
	v.SetDefault("dispatch.required", []string{})

	v.SetDefault("heartbeat.on_query_failure", false)

	v.SetDefault("channels.slack.webhook_url", "")
	v.SetDefault("channels.slack.channel", "")
	v.SetDefault("channels.gotify.url", "")
	v.SetDefault("channels.gotify.token", "")
	v.SetDefault("channels.gotify.priority", 8)
	v.SetDefault("channels.ntfy.url", "https://ntfy.sh")
	v.SetDefault("channels.ntfy.topic", "")
	v.SetDefault("channels.ntfy.token", "")
	v.SetDefault("channels.ntfy.priority", 4)
	v.SetDefault("channels.mqtt.broker", "")
	v.SetDefault("channels.mqtt.topic", "spend-watch/alerts")
	v.SetDefault("channels.mqtt.username", "")
	v.SetDefault("channels.mqtt.password", "")
	v.SetDefault("channels.mqtt.client_id", "spend-watch")

	v.SetDefault("status.channels", []string{"n8n"})
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
}

// EnabledChannels returns the names of channels that have enough settings to
// be constructed, in dispatch order.
func (s *Settings) EnabledChannels() []string {
	var names []string
	c := s.Channels
	if c.Discord.WebhookURL != "" {
		names = append(names, "discord")
	}
	if c.Slack.WebhookURL != "" {
		names = append(names, "slack")
	}
	if c.Gotify.URL != "" && c.Gotify.Token != "" {
		names = append(names, "gotify")
	}
	if c.N8N.WebhookURL != "" {
		names = append(names, "n8n")
	}
	if c.Ntfy.URL != "" && c.Ntfy.Topic != "" {
		names = append(names, "ntfy")
	}
	if c.MQTT.Broker != "" {
		names = append(names, "mqtt")
	}
	return names
}

// Validate reports the first configuration problem that must stop startup.
func (s *Settings) Validate() error {
	if math.IsNaN(s.Threshold) || math.IsInf(s.Threshold, 0) {
		return fmt.Errorf("threshold must be a finite number, got %v", s.Threshold)
	}
	if s.Threshold < 0 {
		return fmt.Errorf("threshold must be non-negative, got %v", s.Threshold)
	}
	if !slices.Contains(providers, s.Provider) {
		return fmt.Errorf("unsupported provider %q, expected one of %v", s.Provider, providers)
	}
	if s.Interval <= 0 {
		return fmt.Errorf("interval must be positive, got %s", s.Interval)
	}
	if !slices.Contains(policies, s.Dispatch.Policy) {
		return fmt.Errorf("unsupported dispatch policy %q, expected one of %v", s.Dispatch.Policy, policies)
	}
	if s.Dispatch.Policy == "required" && len(s.Dispatch.Required) == 0 {
		return errors.New("dispatch policy \"required\" needs at least one channel in dispatch.required")
	}

	enabled := s.EnabledChannels()
	for _, name := range s.Dispatch.Required {
		if !slices.Contains(enabled, name) {
			return fmt.Errorf("required channel %q is not configured", name)
		}
		// status channels never receive alerts
		if slices.Contains(s.Status.Channels, name) {
			return fmt.Errorf("required channel %q is a status channel and receives no alerts", name)
		}
	}
	return nil
}

// MissingStatusChannels lists status channels that have no settings. They are
// skipped at run time rather than rejected, since the default names n8n.
func (s *Settings) MissingStatusChannels() []string {
	enabled := s.EnabledChannels()
	var missing []string
	for _, name := range s.Status.Channels {
		if !slices.Contains(enabled, name) {
			missing = append(missing, name)
		}
	}
	return missing
}
