package assist

import (
	"testing"
	"time"
)

func TestRunOptionsDefaults(t *testing.T) {
	opts := RunOptions{}.withDefaults()

	if opts.StartStage != StageSTT {
		t.Errorf("default start stage = %s, want %s", opts.StartStage, StageSTT)
	}
	if opts.WakeWord.Timeout != 5*time.Second {
		t.Errorf("default wake word timeout = %s, want 5s", opts.WakeWord.Timeout)
	}
	if opts.Audio.VolumeMultiplier != 1.0 {
		t.Errorf("default volume multiplier = %f, want 1.0", opts.Audio.VolumeMultiplier)
	}

	stt := opts.STT
	if stt.Format != "wav" || stt.Codec != "pcm" {
		t.Errorf("default stt format = %s/%s, want wav/pcm", stt.Format, stt.Codec)
	}
	if stt.SampleRate != 16000 || stt.Channels != 1 || stt.BitRate != 16 {
		t.Errorf("default stt audio = %d Hz, %d ch, %d bit", stt.SampleRate, stt.Channels, stt.BitRate)
	}
}

func TestRunOptionsKeepsExplicitValues(t *testing.T) {
	audio := AudioSettings{NoiseSuppressionLevel: 2, VolumeMultiplier: 0.5}
	ww := WakeWordSettings{Timeout: 10 * time.Second}
	opts := RunOptions{
		StartStage: StageWakeWord,
		Audio:      &audio,
		WakeWord:   &ww,
	}.withDefaults()

	if opts.StartStage != StageWakeWord {
		t.Errorf("start stage overridden to %s", opts.StartStage)
	}
	if opts.WakeWord.Timeout != 10*time.Second {
		t.Errorf("wake word timeout overridden to %s", opts.WakeWord.Timeout)
	}
	if opts.Audio.VolumeMultiplier != 0.5 {
		t.Errorf("volume multiplier overridden to %f", opts.Audio.VolumeMultiplier)
	}
}

func TestRunOptionsZeroTimeoutGetsDefault(t *testing.T) {
	ww := WakeWordSettings{}
	opts := RunOptions{WakeWord: &ww}.withDefaults()

	if opts.WakeWord.Timeout != 5*time.Second {
		t.Errorf("zero timeout should default to 5s, got %s", opts.WakeWord.Timeout)
	}
	// The caller's settings must not be mutated.
	if ww.Timeout != 0 {
		t.Errorf("caller settings mutated: %s", ww.Timeout)
	}
}
