package media

import (
	"context"
	"errors"
	"testing"
)

func TestPassthrough(t *testing.T) {
	url, err := Passthrough{}.Resolve(context.Background(), "http://host/audio.mp3")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if url != "http://host/audio.mp3" {
		t.Errorf("got %s", url)
	}

	_, err = Passthrough{}.Resolve(context.Background(), "media-source://tts/xyz")
	if !errors.Is(err, ErrNotResolvable) {
		t.Fatalf("expected ErrNotResolvable, got %v", err)
	}
}

func TestStatic(t *testing.T) {
	r := Static{"media-source://tts/xyz": "http://host/xyz.mp3"}

	url, err := r.Resolve(context.Background(), "media-source://tts/xyz")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if url != "http://host/xyz.mp3" {
		t.Errorf("got %s", url)
	}

	// Plain URLs pass through.
	url, err = r.Resolve(context.Background(), "http://host/other.mp3")
	if err != nil || url != "http://host/other.mp3" {
		t.Fatalf("got %s, %v", url, err)
	}

	_, err = r.Resolve(context.Background(), "media-source://library/missing")
	if !errors.Is(err, ErrNotResolvable) {
		t.Fatalf("expected ErrNotResolvable, got %v", err)
	}
}

func TestIsSourceID(t *testing.T) {
	if !IsSourceID("media-source://tts/a") {
		t.Error("expected source ID")
	}
	if IsSourceID("http://host/a.mp3") {
		t.Error("plain URL is not a source ID")
	}
}
