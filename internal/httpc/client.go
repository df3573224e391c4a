// Package httpc provides shared HTTP clients with explicit timeouts.
// Use these instead of http.DefaultClient to ensure requests cannot
// hang forever.
package httpc

import (
	"net"
	"net/http"
	"time"
)

// Default timeouts for HTTP operations.
const (
	// DefaultTimeout bounds ordinary outbound requests.
	DefaultTimeout = 30 * time.Second

	// DeviceTimeout bounds calls to the audio device on the local
	// network. The device may be offline at any time; callers degrade
	// to an unavailable state instead of waiting.
	DeviceTimeout = 1 * time.Second

	DefaultConnectTimeout  = 10 * time.Second
	DefaultKeepAlive       = 30 * time.Second
	DefaultIdleConnTimeout = 90 * time.Second
)

// Client is a shared HTTP client with production-ready defaults.
var Client = NewClient(DefaultTimeout)

// Device is a shared client for audio-device control calls. Its short
// timeout keeps a flaky device from stalling callers.
var Device = NewClient(DeviceTimeout)

// NewClient creates a new HTTP client with the specified timeout.
// For most cases, use the shared Client or Device variables instead.
func NewClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			DialContext: (&net.Dialer{
				Timeout:   DefaultConnectTimeout,
				KeepAlive: DefaultKeepAlive,
			}).DialContext,
			MaxIdleConns:          100,
			MaxIdleConnsPerHost:   10,
			IdleConnTimeout:       DefaultIdleConnTimeout,
			TLSHandshakeTimeout:   10 * time.Second,
			ExpectContinueTimeout: 1 * time.Second,
		},
	}
}
