package assist

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"github.com/mKenfenheuer/pi-assistant/internal/log"
	"github.com/mKenfenheuer/pi-assistant/pkg/device"
)

// Status is the lifecycle state of a run. Transitions are monotonic;
// once Finished, a run never emits again.
type Status string

const (
	StatusPending          Status = "pending"
	StatusRunning          Status = "running"
	StatusAwaitingPlayback Status = "awaiting_playback"
	StatusFinished         Status = "finished"
)

var statusRank = map[Status]int{
	StatusPending:          0,
	StatusRunning:          1,
	StatusAwaitingPlayback: 2,
	StatusFinished:         3,
}

// EventHandler receives translated public events for a run. Calls are
// serialized and happen strictly in stage order.
type EventHandler func(Event)

// FinishedHandler signals run termination. It fires exactly once per
// run, after every event, regardless of which path ended the run.
type FinishedHandler func()

// latch is a one-shot completion signal. Setting it twice is a no-op.
type latch struct {
	once sync.Once
	done chan struct{}
}

func newLatch() *latch {
	return &latch{done: make(chan struct{})}
}

func (l *latch) set() {
	l.once.Do(func() { close(l.done) })
}

func (l *latch) wait(ctx context.Context) {
	select {
	case <-l.done:
	case <-ctx.Done():
	}
}

// Pipeline coordinates one voice interaction: it drives the staged
// pipeline, translates its stage events into the public protocol, and
// dispatches synthesized speech to the device for playback. A Pipeline
// is single-use; create a new one per run.
type Pipeline struct {
	runID    string
	source   Source
	selector *Selector
	player   *device.Player
	log      *slog.Logger

	handleEvent    EventHandler
	handleFinished FinishedHandler

	queue   chan []byte
	ttsDone *latch

	finishOnce sync.Once

	// eventMu serializes stage-event handling so public events for
	// this run are never delivered concurrently.
	eventMu sync.Mutex

	mu            sync.Mutex
	status        Status
	running       bool
	stopRequested bool
	ctx           context.Context
}

// New creates a pipeline run against the given player. onEvent and
// onFinished may be nil.
func New(source Source, selector *Selector, player *device.Player, onEvent EventHandler, onFinished FinishedHandler) *Pipeline {
	runID := uuid.NewString()
	return &Pipeline{
		runID:          runID,
		source:         source,
		selector:       selector,
		player:         player,
		log:            log.Component("assist").With("run_id", runID),
		handleEvent:    onEvent,
		handleFinished: onFinished,
		queue:          make(chan []byte, 256),
		ttsDone:        newLatch(),
		status:         StatusPending,
		ctx:            context.Background(),
	}
}

// RunID returns the run's correlation token.
func (p *Pipeline) RunID() string { return p.runID }

// Status returns the run's current lifecycle state.
func (p *Pipeline) Status() Status {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.status
}

// IsRunning reports whether the run has started and has not been asked
// to stop.
func (p *Pipeline) IsRunning() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.running && !p.stopRequested
}

// SendAudio feeds a chunk of capture audio into the run. Chunks are
// dropped when the buffer is full rather than blocking the capture
// path.
func (p *Pipeline) SendAudio(chunk []byte) {
	select {
	case p.queue <- chunk:
	default:
		p.log.Debug("audio buffer full, dropping chunk", "size", len(chunk))
	}
}

// Stop requests the run to end. The run still terminates through the
// normal single-shot completion, without an error event.
func (p *Pipeline) Stop() {
	p.mu.Lock()
	p.stopRequested = true
	p.mu.Unlock()
	p.ttsDone.set()
}

// Run executes the staged pipeline for a device and blocks until the
// run terminates. Recognized failures surface as public ERROR events,
// not as return values; the returned error is non-nil only for
// unexpected faults, and even then the terminal callback has fired.
func (p *Pipeline) Run(ctx context.Context, deviceID string, opts RunOptions) error {
	if deviceID == "" {
		return fmt.Errorf("assist: device id required")
	}

	opts = opts.withDefaults()

	p.mu.Lock()
	p.ctx = ctx
	p.mu.Unlock()
	p.setStatus(StatusRunning)

	// Termination is guaranteed no matter which branch ends the run.
	defer p.finish()

	req := Request{
		RunID:          p.runID,
		DeviceID:       deviceID,
		PipelineID:     p.selector.Choose(deviceID),
		ConversationID: opts.ConversationID,
		StartStage:     opts.StartStage,
		WakeWordPhrase: opts.WakeWordPhrase,
		Audio:          *opts.Audio,
		WakeWord:       *opts.WakeWord,
		STT:            *opts.STT,
		TTSAudioOutput: "mp3",
		AudioIn:        p.queue,
	}

	p.log.Debug("starting pipeline",
		"device_id", deviceID,
		"pipeline_id", req.PipelineID,
		"start_stage", req.StartStage)

	err := p.source.Run(ctx, req, p.handleStageEvent)
	switch {
	case err == nil:
		// The stream closing is not the end of the run: block until
		// synthesis has either been dispatched for playback or has
		// legitimately produced no output.
		p.ttsDone.wait(ctx)
		p.log.Debug("pipeline finished")
	case errors.Is(err, ErrPipelineNotFound):
		p.emit(EventError, map[string]string{
			"code":    "pipeline not found",
			"message": "Selected pipeline not found",
		})
		p.log.Warn("pipeline not found", "device_id", deviceID)
	case errors.Is(err, ErrWakeWordAborted):
		// The caller initiated the abort; finishing is enough.
	default:
		var wakeErr *WakeWordError
		if errors.As(err, &wakeErr) {
			p.emit(EventError, map[string]string{
				"code":    wakeErr.Code,
				"message": wakeErr.Message,
			})
			return nil
		}
		p.log.Error("pipeline run failed", "error", err)
		return fmt.Errorf("assist: run failed: %w", err)
	}
	return nil
}

// handleStageEvent translates one internal stage event into the public
// protocol and advances the run's synchronization state.
func (p *Pipeline) handleStageEvent(ev StageEvent) {
	p.eventMu.Lock()
	defer p.eventMu.Unlock()

	switch ev := ev.(type) {
	case STTStarted:
		p.mu.Lock()
		p.running = true
		p.mu.Unlock()

	case STTEnded:
		p.emit(EventSTTText, map[string]string{"text": ev.Text})

	case IntentEnded:
		p.emit(EventIntentResult, map[string]string{
			"conversation_id": ev.ConversationID,
		})

	case TTSStarted:
		p.emit(EventTTSText, map[string]string{"text": ev.Input})

	case TTSEnded:
		if ev.URL != "" {
			p.setStatus(StatusAwaitingPlayback)
			p.mu.Lock()
			ctx := p.ctx
			p.mu.Unlock()
			if !p.player.PlayMedia(ctx, ev.URL) {
				p.log.Warn("playback dispatch failed", "url", ev.URL)
			}
		}
		// Either playback has been dispatched or there is nothing to
		// play. Unblock the run.
		p.ttsDone.set()

	case WakeWordEnded:
		if ev.WakeWord == "" {
			p.emit(EventError, map[string]string{
				"code":    "no_wake_word",
				"message": "No wake word detected",
			})
			p.fail()
		}

	case StageErrored:
		p.emit(EventError, map[string]string{
			"code":    ev.Code,
			"message": ev.Message,
		})
		p.fail()
	}
}

// fail unblocks the run and terminates it after an error event.
func (p *Pipeline) fail() {
	p.ttsDone.set()
	p.finish()
}

// finish fires the terminal callback. Safe to call from any path;
// only the first call has effect.
func (p *Pipeline) finish() {
	p.finishOnce.Do(func() {
		p.setStatus(StatusFinished)
		if p.handleFinished != nil {
			p.handleFinished()
		}
	})
}

func (p *Pipeline) emit(kind EventKind, payload map[string]string) {
	if p.handleEvent != nil {
		p.handleEvent(Event{Kind: kind, Payload: payload})
	}
}

func (p *Pipeline) setStatus(s Status) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if statusRank[s] > statusRank[p.status] {
		p.status = s
	}
}
