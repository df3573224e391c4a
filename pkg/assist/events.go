package assist

// EventKind enumerates the public event vocabulary. It is deliberately
// decoupled from the staged pipeline's internal stage-event types so
// upstream renames never leak to callers.
type EventKind string

const (
	EventSTTText      EventKind = "stt_text"
	EventIntentResult EventKind = "intent_result"
	EventTTSText      EventKind = "tts_text"
	EventError        EventKind = "error"
)

// Event is one notification delivered to the run's caller.
type Event struct {
	Kind    EventKind         `json:"kind"`
	Payload map[string]string `json:"payload,omitempty"`
}

// StageEvent is a notification from the staged pipeline. The set of
// implementations is closed: sources decode upstream payloads into
// these variants once, at the subscription boundary, so the
// orchestrator never digs through loose key/value maps.
type StageEvent interface {
	isStageEvent()
}

// RunStarted marks the start of a staged pipeline execution.
type RunStarted struct{}

// RunEnded marks the end of the staged pipeline's event stream.
type RunEnded struct{}

// WakeWordStarted marks the start of wake-word detection.
type WakeWordStarted struct{}

// WakeWordEnded carries the detection result. An empty WakeWord means
// the stage timed out without detecting anything.
type WakeWordEnded struct {
	WakeWord string
}

// STTStarted marks the start of speech recognition.
type STTStarted struct{}

// STTEnded carries the recognized text.
type STTEnded struct {
	Text string
}

// IntentStarted marks the start of intent resolution.
type IntentStarted struct{}

// IntentEnded carries the conversation ID the intent engine settled
// on. It may be empty.
type IntentEnded struct {
	ConversationID string
}

// TTSStarted carries the text about to be synthesized.
type TTSStarted struct {
	Input string
}

// TTSEnded carries the URL of the synthesized audio. An empty URL
// means synthesis legitimately produced no output.
type TTSEnded struct {
	URL string
}

// StageErrored is an error reported from inside the event stream.
type StageErrored struct {
	Code    string
	Message string
}

func (RunStarted) isStageEvent()      {}
func (RunEnded) isStageEvent()        {}
func (WakeWordStarted) isStageEvent() {}
func (WakeWordEnded) isStageEvent()   {}
func (STTStarted) isStageEvent()      {}
func (STTEnded) isStageEvent()        {}
func (IntentStarted) isStageEvent()   {}
func (IntentEnded) isStageEvent()     {}
func (TTSStarted) isStageEvent()      {}
func (TTSEnded) isStageEvent()        {}
func (StageErrored) isStageEvent()    {}
