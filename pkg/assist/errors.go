package assist

import (
	"errors"
	"fmt"
)

// Sentinel errors a Source may return from Run.
var (
	// ErrPipelineNotFound indicates the selected pipeline does not
	// exist upstream.
	ErrPipelineNotFound = errors.New("assist: pipeline not found")

	// ErrWakeWordAborted indicates wake-word detection was cancelled
	// on purpose. The caller initiated it, so no error event is
	// emitted for it.
	ErrWakeWordAborted = errors.New("assist: wake word detection aborted")
)

// WakeWordError is a genuine wake-word engine fault, as opposed to an
// intentional abort.
type WakeWordError struct {
	Code    string
	Message string
}

func (e *WakeWordError) Error() string {
	return fmt.Sprintf("assist: wake word detection failed [%s]: %s", e.Code, e.Message)
}
