package assist

import "context"

// Request describes one staged pipeline execution.
type Request struct {
	// RunID is the correlation token for the run.
	RunID string

	// DeviceID identifies the target audio device.
	DeviceID string

	// PipelineID selects the staged pipeline configuration.
	PipelineID string

	ConversationID string
	StartStage     Stage
	WakeWordPhrase string

	Audio    AudioSettings
	WakeWord WakeWordSettings
	STT      STTMetadata

	// TTSAudioOutput is the requested synthesis container format.
	TTSAudioOutput string

	// AudioIn streams capture audio into the pipeline. The source
	// drains it until the run ends or the channel closes.
	AudioIn <-chan []byte
}

// Source is the boundary to the external staged pipeline service. Run
// blocks until the pipeline's event stream closes, invoking onEvent
// for each stage event in order. It returns ErrPipelineNotFound,
// ErrWakeWordAborted or a *WakeWordError for the documented failure
// modes, and wraps anything else.
type Source interface {
	Run(ctx context.Context, req Request, onEvent func(StageEvent)) error
}

// SourceFunc adapts a function to the Source interface.
type SourceFunc func(ctx context.Context, req Request, onEvent func(StageEvent)) error

// Run implements Source.
func (f SourceFunc) Run(ctx context.Context, req Request, onEvent func(StageEvent)) error {
	return f(ctx, req, onEvent)
}
