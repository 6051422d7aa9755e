package oci

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/ini.v1"
)

const (
	DefaultProfile = "DEFAULT"
)

var ErrConfigNotFound = errors.New("OCI config file not found")

type Profile struct {
	Name        string
	Path        string
	Tenancy     string
	Region      string
	User        string
	Fingerprint string
	KeyFile     string
}

// ResolveConfigPath returns the first candidate that exists on disk.
// A leading ~ is expanded to the user's home directory.
func ResolveConfigPath(candidates []string) (string, error) {
	for _, candidate := range candidates {
		path, err := expandHome(candidate)
		if err != nil {
			return "", err
		}
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}
	return "", fmt.Errorf("%w, tried %v", ErrConfigNotFound, candidates)
}

// LoadProfile reads one profile section of an OCI CLI config file.
func LoadProfile(path, profile string) (*Profile, error) {
	if profile == "" {
		profile = DefaultProfile
	}

	cfg, err := ini.Load(path)
	if err != nil {
		return nil, fmt.Errorf("unable to load OCI config file: %w", err)
	}

	section, err := cfg.GetSection(profile)
	if err != nil {
		return nil, fmt.Errorf("profile %s not found in OCI config: %w", profile, err)
	}

	// keys missing from a named profile are inherited from DEFAULT
	lookup := func(key string) string {
		if section.HasKey(key) {
			return section.Key(key).String()
		}
		return cfg.Section(ini.DefaultSection).Key(key).String()
	}

	p := &Profile{
		Name:        profile,
		Path:        path,
		Tenancy:     lookup("tenancy"),
		Region:      lookup("region"),
		User:        lookup("user"),
		Fingerprint: lookup("fingerprint"),
		KeyFile:     lookup("key_file"),
	}

	if p.Tenancy == "" {
		return nil, fmt.Errorf("tenancy not found in profile %s", profile)
	}
	return p, nil
}

func expandHome(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("unable to get home directory: %w", err)
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
}
