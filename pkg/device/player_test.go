package device

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/mKenfenheuer/pi-assistant/internal/httpc"
	"github.com/mKenfenheuer/pi-assistant/pkg/media"
)

// commandRecorder fakes the device API and records dispatched commands.
type commandRecorder struct {
	mu       sync.Mutex
	commands []string
	args     []map[string]any
	state    string
	fail     bool
}

func (r *commandRecorder) handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		if req.URL.Path == "/api/state" {
			if r.state == "" {
				http.Error(w, "no state", http.StatusInternalServerError)
				return
			}
			w.Write([]byte(r.state))
			return
		}

		var args map[string]any
		json.NewDecoder(req.Body).Decode(&args)

		r.mu.Lock()
		r.commands = append(r.commands, req.URL.Path)
		r.args = append(r.args, args)
		fail := r.fail
		r.mu.Unlock()

		if fail {
			w.Write([]byte(`{"success": false}`))
			return
		}
		w.Write([]byte(`{"success": true}`))
	})
}

func (r *commandRecorder) last() (string, map[string]any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.commands) == 0 {
		return "", nil
	}
	return r.commands[len(r.commands)-1], r.args[len(r.args)-1]
}

func (r *commandRecorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.commands)
}

func newTestPlayer(t *testing.T, rec *commandRecorder, resolver media.Resolver) *Player {
	t.Helper()
	srv := httptest.NewServer(rec.handler())
	t.Cleanup(srv.Close)

	p := NewPlayer("Test Pi", resolver)
	p.client.BaseURL = srv.URL
	p.client.HTTP = httpc.NewClient(time.Second)
	return p
}

func TestPlayerID(t *testing.T) {
	p := NewPlayer("Living Room!!Pi", nil)
	if p.ID() != "living_room_pi" {
		t.Errorf("expected living_room_pi, got %s", p.ID())
	}
}

func TestPlayerCommands(t *testing.T) {
	rec := &commandRecorder{}
	p := newTestPlayer(t, rec, nil)

	tests := []struct {
		name     string
		call     func() bool
		wantPath string
	}{
		{"play", p.Play, "/api/command/media_play"},
		{"pause", p.Pause, "/api/command/media_pause"},
		{"stop", p.Stop, "/api/command/media_stop"},
		{"mute", func() bool { return p.Mute(true) }, "/api/command/volume_mute"},
		{"seek", func() bool { return p.Seek(4.5) }, "/api/command/media_seek"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !tt.call() {
				t.Fatal("command dispatch failed")
			}
			path, _ := rec.last()
			if path != tt.wantPath {
				t.Errorf("got %s, want %s", path, tt.wantPath)
			}
		})
	}
}

func TestPlayerSetVolume(t *testing.T) {
	rec := &commandRecorder{}
	p := newTestPlayer(t, rec, nil)

	tests := []struct {
		name    string
		level   float64
		wantErr bool
	}{
		{"lower bound", 0, false},
		{"upper bound", 1, false},
		{"mid", 0.5, false},
		{"below range", -0.1, true},
		{"above range", 1.1, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := rec.count()
			ok, err := p.SetVolume(tt.level)
			if tt.wantErr {
				if !errors.Is(err, ErrVolumeOutOfRange) {
					t.Fatalf("expected ErrVolumeOutOfRange, got %v", err)
				}
				if rec.count() != before {
					t.Fatal("out-of-range volume must be rejected before dispatch")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !ok {
				t.Fatal("expected dispatch success")
			}
			_, args := rec.last()
			if args["volume"] != tt.level {
				t.Errorf("volume arg = %v, want %v", args["volume"], tt.level)
			}
		})
	}
}

func TestPlayerPlayMedia(t *testing.T) {
	rec := &commandRecorder{}
	p := newTestPlayer(t, rec, nil)

	if !p.PlayMedia(context.Background(), "http://example.com/tts.mp3") {
		t.Fatal("expected dispatch success")
	}
	path, args := rec.last()
	if path != "/api/command/play_media" {
		t.Errorf("got %s", path)
	}
	if args["url"] != "http://example.com/tts.mp3" {
		t.Errorf("url arg = %v", args["url"])
	}
}

func TestPlayerPlayMediaResolvesSourceIDs(t *testing.T) {
	rec := &commandRecorder{}
	resolver := media.Static{
		"media-source://tts/result": "http://resolved.example/audio.mp3",
	}
	p := newTestPlayer(t, rec, resolver)

	if !p.PlayMedia(context.Background(), "media-source://tts/result") {
		t.Fatal("expected dispatch success")
	}
	_, args := rec.last()
	if args["url"] != "http://resolved.example/audio.mp3" {
		t.Errorf("url arg = %v", args["url"])
	}
}

func TestPlayerPlayMediaUnresolvable(t *testing.T) {
	rec := &commandRecorder{}
	p := newTestPlayer(t, rec, media.Passthrough{})

	if p.PlayMedia(context.Background(), "media-source://library/unknown") {
		t.Fatal("expected failure for unresolvable reference")
	}
	if rec.count() != 0 {
		t.Fatal("no command should be dispatched when resolution fails")
	}
}

func TestPlayerRefreshState(t *testing.T) {
	rec := &commandRecorder{state: `{
		"state": "paused",
		"is_volume_muted": true,
		"media_duration": 30,
		"media_content_type": "audio/mpeg",
		"media_position": 10,
		"media_position_updated_at": "2024-05-01T10:00:00Z",
		"repeat": "all",
		"shuffle": true,
		"source": "speaker",
		"volume_level": 0.6,
		"volume_step": 0.1
	}`}
	p := newTestPlayer(t, rec, nil)

	p.RefreshState()
	state := p.State()

	if state.Availability != Online {
		t.Fatalf("expected online, got %s", state.Availability)
	}
	if state.Playback != StatePaused {
		t.Errorf("expected paused, got %s", state.Playback)
	}
	if !state.VolumeMuted {
		t.Error("expected muted")
	}
	if state.VolumeLevel != 0.6 {
		t.Errorf("expected 0.6, got %f", state.VolumeLevel)
	}
}

func TestPlayerRefreshStatePreservesLastKnownOnUnavailable(t *testing.T) {
	rec := &commandRecorder{state: `{"state": "playing", "volume_level": 0.8, "source": "speaker"}`}
	p := newTestPlayer(t, rec, nil)

	p.RefreshState()
	if p.State().Availability != Online {
		t.Fatal("setup: expected online")
	}

	// Device goes dark: only availability flips, last values stay.
	p.client.HTTP = httpc.NewClient(time.Nanosecond)
	p.RefreshState()

	state := p.State()
	if state.Availability != Unavailable {
		t.Fatalf("expected unavailable, got %s", state.Availability)
	}
	if state.Playback != StatePlaying {
		t.Errorf("playback should keep last-known value, got %s", state.Playback)
	}
	if state.VolumeLevel != 0.8 {
		t.Errorf("volume should keep last-known value, got %f", state.VolumeLevel)
	}
	if state.Source != "speaker" {
		t.Errorf("source should keep last-known value, got %s", state.Source)
	}
}
