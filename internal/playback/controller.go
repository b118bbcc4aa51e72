// Package playback narrates assistant messages: at most one audio source
// is ever active, whichever message or conversation it belongs to.
package playback

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// State is the controller's exclusive mode.
type State int

const (
	StateIdle State = iota
	StateLoading
	StatePlaying
)

// Status is a snapshot of the controller. Index is meaningful only when
// State is not StateIdle.
type Status struct {
	State State
	Index int
}

// ErrSpeechUnavailable wraps a synthesis, decode or device failure. The
// controller is back to idle when it is returned.
type ErrSpeechUnavailable struct {
	Err error
}

func (e *ErrSpeechUnavailable) Error() string {
	return "Không thể phát âm thanh vào lúc này."
}

func (e *ErrSpeechUnavailable) Unwrap() error { return e.Err }

// Synthesizer turns message text into raw PCM. Satisfied by
// tutor.Generator.
type Synthesizer interface {
	Speech(ctx context.Context, text, voiceID string) ([]byte, error)
}

// Controller is the single-flight playback state machine.
type Controller struct {
	synth  Synthesizer
	device Device

	mu      sync.Mutex
	enabled bool
	state   State
	index   int
	token   uuid.UUID // identity of the active source; rotates on every start/stop
	handle  Handle
}

// NewController creates an enabled, idle controller.
func NewController(synth Synthesizer, device Device) *Controller {
	return &Controller{
		synth:   synth,
		device:  device,
		enabled: true,
	}
}

// Toggle requests narration of text for the message at index, using voice.
//
//   - idle: synthesize + decode + start; loading(index) → playing(index).
//   - same index active: stop it and go idle (the re-click pause).
//   - different index active: stop the old source fully, then start fresh.
//
// Failures reset to idle and return ErrSpeechUnavailable. When narration
// is disabled the call is a no-op.
func (c *Controller) Toggle(ctx context.Context, text string, index int, voice string) error {
	c.mu.Lock()
	if !c.enabled {
		c.mu.Unlock()
		return nil
	}

	sameIndex := c.state != StateIdle && c.index == index

	// Stop whatever is active before anything else may start.
	c.stopLocked()

	if sameIndex {
		c.mu.Unlock()
		return nil
	}

	tok := uuid.New()
	c.state = StateLoading
	c.index = index
	c.token = tok
	c.mu.Unlock()

	pcm, err := c.synth.Speech(ctx, text, voice)
	var buf *Buffer
	if err == nil {
		buf, err = DecodePCM(pcm, SampleRate, Channels)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	// A newer request or a disable superseded this load; its result is
	// discarded without touching the current state.
	if c.token != tok {
		return nil
	}

	if err != nil {
		c.resetLocked()
		return &ErrSpeechUnavailable{Err: err}
	}

	handle, err := c.device.Start(buf, func() { c.sourceEnded(tok) })
	if err != nil {
		c.resetLocked()
		return &ErrSpeechUnavailable{Err: err}
	}

	c.handle = handle
	c.state = StatePlaying
	return nil
}

// SetEnabled flips the master narration switch. Disabling mid-load or
// mid-play stops the active source immediately.
func (c *Controller) SetEnabled(enabled bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.enabled = enabled
	if !enabled {
		c.stopLocked()
	}
}

// Enabled reports the master switch.
func (c *Controller) Enabled() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.enabled
}

// Stop halts any active source and returns to idle.
func (c *Controller) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stopLocked()
}

// Status returns a snapshot of the state machine.
func (c *Controller) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Status{State: c.state, Index: c.index}
}

// sourceEnded handles the natural end-of-playback notification. A source
// that was already superseded must not reset state for its successor.
func (c *Controller) sourceEnded(tok uuid.UUID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.token != tok {
		return
	}
	c.handle = nil
	c.resetLocked()
}

// stopLocked releases the active source, if any, and resets to idle.
func (c *Controller) stopLocked() {
	if c.handle != nil {
		c.handle.Stop()
		c.handle = nil
	}
	c.resetLocked()
}

// resetLocked returns to idle and invalidates the active source token so
// late notifications and loads become no-ops.
func (c *Controller) resetLocked() {
	c.state = StateIdle
	c.index = 0
	c.token = uuid.Nil
}
