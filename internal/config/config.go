// Package config reads process configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"github.com/evcraddock/client-visits/internal/blob"
)

// Config holds process-wide settings.
type Config struct {
	DevMode   bool
	Port      string
	ServerURL string // set when the CLI talks to a remote server
	Scoping   bool   // restrict each user to their own visits
	Storage   blob.Config
}

// LoadDotEnv loads variables from a .env file without overriding ones
// already set. A missing file is not an error.
func LoadDotEnv(path string) error {
	if path == "" {
		path = ".env"
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("loading %s: %w", path, err)
	}
	return nil
}

// FromEnv creates a Config from environment variables.
func FromEnv() Config {
	return Config{
		DevMode:   envBool("CV_DEV_MODE", false),
		Port:      envOrDefault("CV_PORT", "8080"),
		ServerURL: strings.TrimRight(os.Getenv("CV_SERVER_URL"), "/"),
		Scoping:   envBool("CV_SCOPING", true),
		Storage: blob.Config{
			Driver:  blob.Driver(envOrDefault("CV_STORAGE", string(blob.DriverSQLite))),
			DBPath:  os.Getenv("CV_DB"),
			DataDir: envOrDefault("CV_DATA_DIR", defaultDataDir()),
			S3: blob.S3Config{
				Bucket:    os.Getenv("CV_S3_BUCKET"),
				Region:    os.Getenv("CV_S3_REGION"),
				Endpoint:  os.Getenv("CV_S3_ENDPOINT"),
				Prefix:    os.Getenv("CV_S3_PREFIX"),
				PathStyle: envBool("CV_S3_PATH_STYLE", false),
			},
		},
	}
}

// Validate checks settings that would otherwise fail later and less clearly.
func (c Config) Validate() error {
	if !c.Storage.Driver.IsValid() {
		return fmt.Errorf("invalid CV_STORAGE %q (valid: %s)", c.Storage.Driver, validDrivers())
	}
	if c.Storage.Driver == blob.DriverS3 && c.Storage.S3.Bucket == "" {
		return fmt.Errorf("CV_S3_BUCKET is required when CV_STORAGE=s3")
	}
	if _, err := strconv.Atoi(c.Port); err != nil {
		return fmt.Errorf("invalid CV_PORT %q", c.Port)
	}
	return nil
}

func validDrivers() string {
	names := make([]string, len(blob.ValidDrivers))
	for i, d := range blob.ValidDrivers {
		names[i] = string(d)
	}
	return strings.Join(names, ", ")
}

func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "data"
	}
	return filepath.Join(home, ".config", "cv", "data")
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// envBool accepts the usual spellings of on and off and falls back on
// anything else.
func envBool(key string, fallback bool) bool {
	switch strings.ToLower(strings.TrimSpace(os.Getenv(key))) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	default:
		return fallback
	}
}
