package device

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/mKenfenheuer/pi-assistant/internal/log"
	"github.com/mKenfenheuer/pi-assistant/pkg/media"
)

// ErrVolumeOutOfRange is returned when a requested volume lies outside
// [0, 1]. The command is rejected before any dispatch.
var ErrVolumeOutOfRange = errors.New("device: volume must be within [0, 1]")

// Player is the in-process proxy for one audio device. It caches the
// device's playback state and exposes outward command methods that
// delegate to the Client. Commands are fire-and-forget: the boolean
// result reports dispatch success and nothing is retried.
//
// The cached state is mutated only by RefreshState; command methods
// never touch it. The hostname is read-only after construction, so
// concurrent runs against the same Player need no extra locking.
type Player struct {
	hostname string
	id       string
	client   *Client
	resolver media.Resolver
	log      *slog.Logger

	mu    sync.RWMutex
	state State
}

// NewPlayer creates a proxy for the device at hostname. A nil resolver
// restricts PlayMedia to plain URLs.
func NewPlayer(hostname string, resolver media.Resolver) *Player {
	if resolver == nil {
		resolver = media.Passthrough{}
	}
	return &Player{
		hostname: hostname,
		id:       DeriveID(hostname),
		client:   NewClient(hostname),
		resolver: resolver,
		log:      log.Component("player").With("device_id", DeriveID(hostname)),
		state:    unavailableState(),
	}
}

// ID returns the derived device identity.
func (p *Player) ID() string { return p.id }

// Hostname returns the device hostname.
func (p *Player) Hostname() string { return p.hostname }

// State returns a copy of the cached device state.
func (p *Player) State() State {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.state
}

// RefreshState polls the device and updates the cached state. When the
// device is unreachable only the availability flips to Unavailable;
// all other fields keep their last known values.
func (p *Player) RefreshState() {
	snap := p.client.FetchState()

	p.mu.Lock()
	defer p.mu.Unlock()
	if snap.Availability == Unavailable {
		p.state.Availability = Unavailable
		return
	}
	p.state = snap
}

// PlayMedia resolves a media reference and dispatches it for playback.
// This is the command the pipeline orchestrator uses to play back
// synthesized speech.
func (p *Player) PlayMedia(ctx context.Context, mediaID string) bool {
	url := mediaID
	if media.IsSourceID(mediaID) {
		resolved, err := p.resolver.Resolve(ctx, mediaID)
		if err != nil {
			p.log.Warn("media resolution failed", "media_id", mediaID, "error", err)
			return false
		}
		url = resolved
	}
	return p.client.SendCommand("play_media", map[string]any{"url": url})
}

// Play resumes playback.
func (p *Player) Play() bool {
	return p.client.SendCommand("media_play", nil)
}

// Pause pauses playback.
func (p *Player) Pause() bool {
	return p.client.SendCommand("media_pause", nil)
}

// Stop stops playback.
func (p *Player) Stop() bool {
	return p.client.SendCommand("media_stop", nil)
}

// Seek moves the playback position, in seconds.
func (p *Player) Seek(position float64) bool {
	return p.client.SendCommand("media_seek", map[string]any{"position": position})
}

// SetVolume sets the volume level. Values outside [0, 1] are rejected
// before dispatch with ErrVolumeOutOfRange.
func (p *Player) SetVolume(level float64) (bool, error) {
	if level < 0 || level > 1 {
		return false, ErrVolumeOutOfRange
	}
	return p.client.SendCommand("set_volume", map[string]any{"volume": level}), nil
}

// Mute toggles the device mute flag. The device flips its own mute
// state; the argument only records caller intent.
func (p *Player) Mute(_ bool) bool {
	return p.client.SendCommand("volume_mute", nil)
}
