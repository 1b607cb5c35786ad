package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/ini.v1"
	"gopkg.in/yaml.v3"
)

// Config represents the renovate configuration.
type Config struct {
	Platform PlatformConfig `yaml:"platform"`
}

// PlatformConfig represents the Git hosting platform configuration.
type PlatformConfig struct {
	Endpoint string `yaml:"endpoint"`
	Token    string `yaml:"token"`
}

// LoadConfig loads configuration from the default location.
func LoadConfig() (*Config, error) {
	configPath, err := GetConfigPath()
	if err != nil {
		return nil, err
	}

	return LoadConfigFromPath(configPath)
}

// LoadConfigFromPath loads configuration from a specific path.
func LoadConfigFromPath(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return &Config{}, nil // Return empty config if file doesn't exist
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return &config, nil
}

// GetConfigPath returns the default configuration file path.
func GetConfigPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}

	return filepath.Join(homeDir, ".renovate", "config.yaml"), nil
}

// GetCredentialsPath returns the default credentials file path.
func GetCredentialsPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}

	return filepath.Join(homeDir, ".renovate", "credentials.ini"), nil
}

// ResolveToken returns the platform token, in order of preference: the
// RENOVATE_TOKEN environment variable, the config file, the credentials
// file. An empty result is not an error here; the platform layer rejects
// missing credentials itself.
func (c *Config) ResolveToken() (string, error) {
	if token := os.Getenv("RENOVATE_TOKEN"); token != "" {
		return strings.TrimSpace(token), nil
	}

	if c.Platform.Token != "" {
		return strings.TrimSpace(c.Platform.Token), nil
	}

	credentialsPath, err := GetCredentialsPath()
	if err != nil {
		return "", err
	}
	return tokenFromCredentialsFile(credentialsPath)
}

// tokenFromCredentialsFile reads the [platform] token from an INI
// credentials file. A missing file yields an empty token, not an error.
func tokenFromCredentialsFile(path string) (string, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return "", nil
	}

	file, err := ini.Load(path)
	if err != nil {
		return "", fmt.Errorf("failed to parse credentials file: %w", err)
	}

	return strings.TrimSpace(file.Section("platform").Key("token").String()), nil
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Platform.Endpoint != "" &&
		!strings.HasPrefix(c.Platform.Endpoint, "https://") &&
		!strings.HasPrefix(c.Platform.Endpoint, "http://") {
		return fmt.Errorf("platform endpoint must be an http(s) URL")
	}

	return nil
}
