package assist

import "time"

// Stage identifies where a run enters the staged pipeline.
type Stage string

const (
	StageWakeWord Stage = "wake_word"
	StageSTT      Stage = "stt"
	StageIntent   Stage = "intent"
	StageTTS      Stage = "tts"
)

// AudioSettings tunes the capture audio fed to the pipeline.
type AudioSettings struct {
	NoiseSuppressionLevel int     `json:"noise_suppression_level"`
	AutoGainDBFS          int     `json:"auto_gain_dbfs"`
	VolumeMultiplier      float64 `json:"volume_multiplier"`
}

// DefaultAudioSettings returns pass-through audio settings.
func DefaultAudioSettings() AudioSettings {
	return AudioSettings{VolumeMultiplier: 1.0}
}

// WakeWordSettings tunes the wake-word stage. The timeout is enforced
// by the staged pipeline itself, not by the orchestrator.
type WakeWordSettings struct {
	Timeout time.Duration `json:"timeout"`
}

// DefaultWakeWordSettings returns a 5 second detection timeout.
func DefaultWakeWordSettings() WakeWordSettings {
	return WakeWordSettings{Timeout: 5 * time.Second}
}

// STTMetadata describes the audio format sent to speech recognition.
type STTMetadata struct {
	Language   string `json:"language"`
	Format     string `json:"format"`
	Codec      string `json:"codec"`
	BitRate    int    `json:"bit_rate"`
	SampleRate int    `json:"sample_rate"`
	Channels   int    `json:"channels"`
}

// DefaultSTTMetadata returns 16 kHz mono 16-bit PCM WAV.
func DefaultSTTMetadata() STTMetadata {
	return STTMetadata{
		Format:     "wav",
		Codec:      "pcm",
		BitRate:    16,
		SampleRate: 16000,
		Channels:   1,
	}
}

// RunOptions configures one pipeline run. Zero values mean "use the
// documented default". Options are immutable once the run starts.
type RunOptions struct {
	StartStage     Stage             `json:"start_stage,omitempty"`
	ConversationID string            `json:"conversation_id,omitempty"`
	WakeWordPhrase string            `json:"wake_word_phrase,omitempty"`
	Audio          *AudioSettings    `json:"audio,omitempty"`
	WakeWord       *WakeWordSettings `json:"wake_word,omitempty"`
	STT            *STTMetadata      `json:"stt,omitempty"`
}

// withDefaults fills in every unset option.
func (o RunOptions) withDefaults() RunOptions {
	if o.StartStage == "" {
		o.StartStage = StageSTT
	}
	if o.Audio == nil {
		audio := DefaultAudioSettings()
		o.Audio = &audio
	}
	if o.WakeWord == nil {
		ww := DefaultWakeWordSettings()
		o.WakeWord = &ww
	} else if o.WakeWord.Timeout <= 0 {
		ww := *o.WakeWord
		ww.Timeout = DefaultWakeWordSettings().Timeout
		o.WakeWord = &ww
	}
	if o.STT == nil {
		stt := DefaultSTTMetadata()
		o.STT = &stt
	}
	return o
}
