// Package remote implements assist.Source against a staged pipeline
// service reached over WebSocket. Stage events arrive as loosely typed
// JSON envelopes; this package decodes them into the closed stage-event
// variants once, at the subscription boundary.
package remote

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/gorilla/websocket"

	"github.com/mKenfenheuer/pi-assistant/internal/log"
	"github.com/mKenfenheuer/pi-assistant/pkg/assist"
)

const dialTimeout = 10 * time.Second

// Source subscribes to a staged pipeline service over WebSocket.
type Source struct {
	url    string
	dialer *websocket.Dialer
	log    *slog.Logger
}

// NewSource creates a source for the pipeline service at url
// (ws:// or wss://).
func NewSource(url string) *Source {
	return &Source{
		url: url,
		dialer: &websocket.Dialer{
			HandshakeTimeout: dialTimeout,
		},
		log: log.Component("pipeline-source"),
	}
}

// envelope is the wire form of a message to or from the service.
type envelope struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// runStart is the payload opening a pipeline run.
type runStart struct {
	RunID          string  `json:"run_id"`
	DeviceID       string  `json:"device_id"`
	PipelineID     string  `json:"pipeline_id"`
	ConversationID string  `json:"conversation_id,omitempty"`
	StartStage     string  `json:"start_stage"`
	WakeWordPhrase string  `json:"wake_word_phrase,omitempty"`
	TimeoutSeconds float64 `json:"wake_word_timeout"`

	NoiseSuppressionLevel int     `json:"noise_suppression_level"`
	AutoGainDBFS          int     `json:"auto_gain_dbfs"`
	VolumeMultiplier      float64 `json:"volume_multiplier"`

	STTLanguage   string `json:"stt_language,omitempty"`
	STTFormat     string `json:"stt_format"`
	STTCodec      string `json:"stt_codec"`
	STTBitRate    int    `json:"stt_bit_rate"`
	STTSampleRate int    `json:"stt_sample_rate"`
	STTChannels   int    `json:"stt_channels"`

	TTSAudioOutput string `json:"tts_audio_output"`
}

// rejection is the payload of a "run-rejected" envelope. For wake-word
// engine faults the engine's own code and message ride alongside.
type rejection struct {
	Code          string `json:"code"`
	Message       string `json:"message"`
	EngineCode    string `json:"engine_code,omitempty"`
	EngineMessage string `json:"engine_message,omitempty"`
}

// Run implements assist.Source. It blocks until the event stream ends,
// the run is rejected, or ctx is cancelled. Cancellation maps to
// assist.ErrWakeWordAborted since only the caller can trigger it.
func (s *Source) Run(ctx context.Context, req assist.Request, onEvent func(assist.StageEvent)) error {
	conn, resp, err := s.dialer.DialContext(ctx, s.url, nil)
	if err != nil {
		return fmt.Errorf("remote: dial %s: %w", s.url, err)
	}
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	defer conn.Close()

	if err := s.openRun(conn, req); err != nil {
		return err
	}

	// Forward capture audio while the event stream is read. The
	// goroutine exits when the run ends or ctx is cancelled.
	streamCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go s.pumpAudio(streamCtx, conn, req.AudioIn)

	// Unblock the blocking read when ctx is cancelled.
	go func() {
		<-streamCtx.Done()
		conn.SetReadDeadline(time.Now())
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return assist.ErrWakeWordAborted
			}
			return fmt.Errorf("remote: event stream closed: %w", err)
		}

		var env envelope
		if err := json.Unmarshal(data, &env); err != nil {
			s.log.Warn("malformed envelope", "error", err)
			continue
		}

		switch env.Type {
		case "run-rejected":
			return decodeRejection(env.Data)
		case "run-end":
			onEvent(assist.RunEnded{})
			return nil
		default:
			ev, err := decodeStageEvent(env)
			if err != nil {
				s.log.Warn("undecodable stage event", "type", env.Type, "error", err)
				continue
			}
			if ev != nil {
				onEvent(ev)
			}
		}
	}
}

// openRun sends the run-start message.
func (s *Source) openRun(conn *websocket.Conn, req assist.Request) error {
	start := runStart{
		RunID:          req.RunID,
		DeviceID:       req.DeviceID,
		PipelineID:     req.PipelineID,
		ConversationID: req.ConversationID,
		StartStage:     string(req.StartStage),
		WakeWordPhrase: req.WakeWordPhrase,
		TimeoutSeconds: req.WakeWord.Timeout.Seconds(),

		NoiseSuppressionLevel: req.Audio.NoiseSuppressionLevel,
		AutoGainDBFS:          req.Audio.AutoGainDBFS,
		VolumeMultiplier:      req.Audio.VolumeMultiplier,

		STTLanguage:   req.STT.Language,
		STTFormat:     req.STT.Format,
		STTCodec:      req.STT.Codec,
		STTBitRate:    req.STT.BitRate,
		STTSampleRate: req.STT.SampleRate,
		STTChannels:   req.STT.Channels,

		TTSAudioOutput: req.TTSAudioOutput,
	}

	data, err := json.Marshal(start)
	if err != nil {
		return fmt.Errorf("remote: marshal run-start: %w", err)
	}
	msg, err := json.Marshal(envelope{Type: "run-start", Data: data})
	if err != nil {
		return fmt.Errorf("remote: marshal envelope: %w", err)
	}
	if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
		return fmt.Errorf("remote: send run-start: %w", err)
	}
	return nil
}

// pumpAudio forwards capture audio as binary frames.
func (s *Source) pumpAudio(ctx context.Context, conn *websocket.Conn, in <-chan []byte) {
	for {
		select {
		case <-ctx.Done():
			return
		case chunk, ok := <-in:
			if !ok {
				return
			}
			if err := conn.WriteMessage(websocket.BinaryMessage, chunk); err != nil {
				s.log.Debug("audio forward failed", "error", err)
				return
			}
		}
	}
}

func decodeRejection(data json.RawMessage) error {
	var rej rejection
	if err := json.Unmarshal(data, &rej); err != nil {
		return fmt.Errorf("remote: undecodable rejection: %w", err)
	}
	switch rej.Code {
	case "pipeline-not-found":
		return assist.ErrPipelineNotFound
	case "wake-word-aborted":
		return assist.ErrWakeWordAborted
	case "wake-word-error":
		return &assist.WakeWordError{Code: rej.EngineCode, Message: rej.EngineMessage}
	default:
		return fmt.Errorf("remote: run rejected [%s]: %s", rej.Code, rej.Message)
	}
}

// decodeStageEvent maps one upstream envelope to a stage event. It
// returns (nil, nil) for envelope types that carry nothing the
// orchestrator cares about.
func decodeStageEvent(env envelope) (assist.StageEvent, error) {
	switch env.Type {
	case "run-start":
		return assist.RunStarted{}, nil

	case "wake_word-start":
		return assist.WakeWordStarted{}, nil

	case "wake_word-end":
		var data struct {
			WakeWordOutput *struct {
				WakeWordID string `json:"wake_word_id"`
			} `json:"wake_word_output"`
		}
		if err := json.Unmarshal(env.Data, &data); err != nil {
			return nil, err
		}
		if data.WakeWordOutput == nil {
			return assist.WakeWordEnded{}, nil
		}
		return assist.WakeWordEnded{WakeWord: data.WakeWordOutput.WakeWordID}, nil

	case "stt-start":
		return assist.STTStarted{}, nil

	case "stt-end":
		var data struct {
			STTOutput struct {
				Text string `json:"text"`
			} `json:"stt_output"`
		}
		if err := json.Unmarshal(env.Data, &data); err != nil {
			return nil, err
		}
		return assist.STTEnded{Text: data.STTOutput.Text}, nil

	case "intent-start":
		return assist.IntentStarted{}, nil

	case "intent-end":
		var data struct {
			IntentOutput struct {
				ConversationID string `json:"conversation_id"`
			} `json:"intent_output"`
		}
		if err := json.Unmarshal(env.Data, &data); err != nil {
			return nil, err
		}
		return assist.IntentEnded{ConversationID: data.IntentOutput.ConversationID}, nil

	case "tts-start":
		var data struct {
			TTSInput string `json:"tts_input"`
		}
		if err := json.Unmarshal(env.Data, &data); err != nil {
			return nil, err
		}
		return assist.TTSStarted{Input: data.TTSInput}, nil

	case "tts-end":
		var data struct {
			TTSOutput *struct {
				URL string `json:"url"`
			} `json:"tts_output"`
		}
		if err := json.Unmarshal(env.Data, &data); err != nil {
			return nil, err
		}
		if data.TTSOutput == nil {
			return assist.TTSEnded{}, nil
		}
		return assist.TTSEnded{URL: data.TTSOutput.URL}, nil

	case "error":
		var data struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		}
		if err := json.Unmarshal(env.Data, &data); err != nil {
			return nil, err
		}
		return assist.StageErrored{Code: data.Code, Message: data.Message}, nil

	default:
		// Unknown stage events are skipped rather than failing the run.
		return nil, nil
	}
}
