// Package config provides environment configuration for pi-assistant.
package config

import (
	"os"
	"time"

	"github.com/joho/godotenv"
)

// Defaults used when the environment does not say otherwise.
// DefaultHostname is the factory hostname of the Pi audio image; it is
// offered as a suggestion, never registered automatically.
const (
	DefaultHostname    = "raspberrypi"
	DefaultListenAddr  = ":8099"
	DefaultPipelineURL = "ws://127.0.0.1:10700/pipeline"
	DefaultPollEvery   = 10 * time.Second
)

// Load reads a .env file from the working directory, if present.
// Environment variables that are already set take precedence.
func Load() {
	_ = godotenv.Load()
}

// Hostname returns the device hostname to register at startup from
// DEVICE_HOSTNAME. Empty means no device is pre-registered.
func Hostname() string {
	return os.Getenv("DEVICE_HOSTNAME")
}

// ListenAddr returns the HTTP listen address from LISTEN_ADDR.
func ListenAddr() string {
	return getenv("LISTEN_ADDR", DefaultListenAddr)
}

// PipelineURL returns the staged pipeline WebSocket URL from PIPELINE_URL.
func PipelineURL() string {
	return getenv("PIPELINE_URL", DefaultPipelineURL)
}

// LogLevel returns the log level from LOG_LEVEL.
func LogLevel() string {
	return getenv("LOG_LEVEL", "info")
}

// PollInterval returns the device state polling interval from
// POLL_INTERVAL, parsed as a Go duration.
func PollInterval() time.Duration {
	raw := os.Getenv("POLL_INTERVAL")
	if raw == "" {
		return DefaultPollEvery
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		return DefaultPollEvery
	}
	return d
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
