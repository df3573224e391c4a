package device

import "time"

// Availability says whether the last state read actually reached the
// device. When Unavailable, the remaining fields hold the last known
// values and must not be treated as fresh.
type Availability string

const (
	Online      Availability = "online"
	Unavailable Availability = "unavailable"
)

// PlaybackState is the device-reported playback status.
type PlaybackState string

const (
	StatePlaying PlaybackState = "playing"
	StatePaused  PlaybackState = "paused"
	StateStopped PlaybackState = "stopped"
)

// State is a snapshot of the device's playback state.
type State struct {
	Availability Availability
	Playback     PlaybackState

	VolumeLevel float64 // always within [0, 1]
	VolumeMuted bool
	VolumeStep  float64

	MediaDuration     float64
	MediaPosition     float64
	PositionUpdatedAt time.Time
	ContentType       string

	Repeat  string
	Shuffle bool
	Source  string
}

// unavailableState is the sentinel returned when the device cannot be
// reached.
func unavailableState() State {
	return State{Availability: Unavailable}
}

// clampVolume forces a device-reported volume into [0, 1].
func clampVolume(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
