// Package device talks to a Pi audio-output device over its HTTP
// control API and mirrors its playback state in process.
package device

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/mKenfenheuer/pi-assistant/internal/httpc"
	"github.com/mKenfenheuer/pi-assistant/internal/log"
)

// Client is a stateless wrapper around the device's HTTP API. All
// calls carry a short timeout; transport failures degrade to sentinel
// results instead of errors because the device may be transiently
// offline.
type Client struct {
	BaseURL string
	HTTP    *http.Client

	log *slog.Logger
}

// NewClient creates a client for the device at the given hostname.
func NewClient(hostname string) *Client {
	return &Client{
		BaseURL: "http://" + hostname,
		HTTP:    httpc.Device,
		log:     log.Component("device").With("hostname", hostname),
	}
}

// stateResponse mirrors the GET /api/state JSON body.
type stateResponse struct {
	State                  string    `json:"state"`
	IsVolumeMuted          bool      `json:"is_volume_muted"`
	MediaDuration          float64   `json:"media_duration"`
	MediaContentType       string    `json:"media_content_type"`
	MediaPosition          float64   `json:"media_position"`
	MediaPositionUpdatedAt time.Time `json:"media_position_updated_at"`
	Repeat                 string    `json:"repeat"`
	Shuffle                bool      `json:"shuffle"`
	Source                 string    `json:"source"`
	VolumeLevel            float64   `json:"volume_level"`
	VolumeStep             float64   `json:"volume_step"`
}

// commandResponse mirrors the POST /api/command/{command} JSON body.
type commandResponse struct {
	Success bool `json:"success"`
}

// FetchState reads the device's current playback state. On timeout or
// any transport error it returns an Unavailable snapshot.
func (c *Client) FetchState() State {
	resp, err := c.HTTP.Get(c.BaseURL + "/api/state")
	if err != nil {
		c.logger().Debug("state fetch failed", "error", err)
		return unavailableState()
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.logger().Debug("state fetch rejected", "status", resp.StatusCode)
		return unavailableState()
	}

	var body stateResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		c.logger().Debug("state decode failed", "error", err)
		return unavailableState()
	}

	return State{
		Availability:      Online,
		Playback:          PlaybackState(body.State),
		VolumeLevel:       clampVolume(body.VolumeLevel),
		VolumeMuted:       body.IsVolumeMuted,
		VolumeStep:        body.VolumeStep,
		MediaDuration:     body.MediaDuration,
		MediaPosition:     body.MediaPosition,
		PositionUpdatedAt: body.MediaPositionUpdatedAt,
		ContentType:       body.MediaContentType,
		Repeat:            body.Repeat,
		Shuffle:           body.Shuffle,
		Source:            body.Source,
	}
}

// SendCommand posts a command to the device. It returns false on any
// transport failure or when the device reports non-success; it never
// returns an error to the caller.
func (c *Client) SendCommand(command string, args any) bool {
	if args == nil {
		args = map[string]any{}
	}
	payload, err := json.Marshal(args)
	if err != nil {
		c.logger().Warn("command marshal failed", "command", command, "error", err)
		return false
	}

	url := fmt.Sprintf("%s/api/command/%s", c.BaseURL, command)
	resp, err := c.HTTP.Post(url, "application/json", bytes.NewReader(payload))
	if err != nil {
		c.logger().Debug("command failed", "command", command, "error", err)
		return false
	}
	defer resp.Body.Close()

	var body commandResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		c.logger().Debug("command decode failed", "command", command, "error", err)
		return false
	}
	return body.Success
}

func (c *Client) logger() *slog.Logger {
	if c.log == nil {
		c.log = log.Component("device")
	}
	return c.log
}
