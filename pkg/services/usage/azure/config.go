package azure

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"gopkg.in/ini.v1"
)

const (
	DefaultProfile = "default"
)

type Config struct {
	SubscriptionID string
	TenantID       string
	Credentials    *azidentity.DefaultAzureCredential
}

// LoadConfig resolves the subscription to query. An explicit subscription wins;
// otherwise it is read from the profile section of ~/.azure/config.
func LoadConfig(profile, subscriptionID string) (*Config, error) {
	cfg := &Config{SubscriptionID: subscriptionID}

	if cfg.SubscriptionID == "" {
		section, err := loadProfileSection(profile)
		if err != nil {
			return nil, err
		}
		cfg.SubscriptionID = section.Key("subscription").String()
		cfg.TenantID = section.Key("tenant").String()
	}

	if cfg.SubscriptionID == "" {
		return nil, fmt.Errorf("subscription ID not found in profile %s", profile)
	}

	credentials, err := azidentity.NewDefaultAzureCredential(&azidentity.DefaultAzureCredentialOptions{
		TenantID: cfg.TenantID,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Azure credential: %w", err)
	}
	cfg.Credentials = credentials
	return cfg, nil
}

func loadProfileSection(profile string) (*ini.Section, error) {
	if profile == "" || profile == ini.DefaultSection {
		profile = DefaultProfile
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("unable to get home directory: %w", err)
	}

	configPath := filepath.Join(homeDir, ".azure", "config")
	cfg, err := ini.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("unable to load Azure config file: %w", err)
	}

	section, err := cfg.GetSection(profile)
	if err != nil {
		return nil, fmt.Errorf("profile %s not found in Azure config: %w", profile, err)
	}
	return section, nil
}
