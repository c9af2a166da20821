package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/evcraddock/client-visits/internal/config"
)

// CLIConfig holds CLI configuration persisted to disk.
type CLIConfig struct {
	ServerURL string `yaml:"server_url,omitempty"`
	Email     string `yaml:"email,omitempty"`
	Password  string `yaml:"password,omitempty"`
}

// configPath returns the path to the CLI config file.
func configPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("finding home directory: %w", err)
	}
	return filepath.Join(home, ".config", "cv", "config.yaml"), nil
}

// loadConfig reads the CLI config from disk.
// Returns a zero-value config if the file doesn't exist.
func loadConfig() (CLIConfig, error) {
	path, err := configPath()
	if err != nil {
		return CLIConfig{}, err
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return CLIConfig{}, nil
	}
	if err != nil {
		return CLIConfig{}, fmt.Errorf("reading config: %w", err)
	}

	var cfg CLIConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return CLIConfig{}, fmt.Errorf("parsing config: %w", err)
	}

	return cfg, nil
}

// saveConfig writes the CLI config to disk. The file holds a password, so
// it is readable by the owner only.
func saveConfig(cfg CLIConfig) error {
	path, err := configPath()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	return nil
}

// getServerURL returns the server URL from the --server flag, env var, or
// config. Empty means the CLI works on the local store.
func getServerURL() string {
	if flagServer != "" {
		return strings.TrimRight(flagServer, "/")
	}
	if v := config.FromEnv().ServerURL; v != "" {
		return v
	}
	cfg, err := loadConfig()
	if err == nil {
		return strings.TrimRight(cfg.ServerURL, "/")
	}
	return ""
}

// getCredentials returns the email and password from env vars or config.
func getCredentials() (email, password string) {
	cfg, _ := loadConfig()
	email, password = cfg.Email, cfg.Password
	if v := os.Getenv("CV_EMAIL"); v != "" {
		email = v
	}
	if v := os.Getenv("CV_PASSWORD"); v != "" {
		password = v
	}
	return email, password
}
