// Package assist orchestrates voice-command pipeline runs.
//
// A run drives the external staged pipeline (wake word → STT → intent
// → TTS) for one voice interaction, translates its stage events into a
// stable public protocol, and on successful synthesis dispatches the
// resulting audio URL to the target device for playback.
//
// # Usage
//
// Create a Pipeline per interaction and run it:
//
//	p := assist.New(source, selector, player,
//	    func(ev assist.Event) {
//	        fmt.Println(ev.Kind, ev.Payload)
//	    },
//	    func() {
//	        fmt.Println("run finished")
//	    })
//
//	go p.Run(ctx, player.ID(), assist.RunOptions{
//	    StartStage: assist.StageWakeWord,
//	})
//
//	for chunk := range microphone {
//	    p.SendAudio(chunk)
//	}
//
// # Guarantees
//
// Events for a run are delivered serialized and in stage order. The
// finished callback fires exactly once per run, after every event,
// whether the run completed, errored, was aborted, or synthesized
// nothing. Recognized failures surface as ERROR events with stable
// codes; callers never see transport-level errors or the upstream
// stage-event vocabulary.
package assist
