package playback

import "sync"

// Device is the audio output boundary. Start begins playing buf and calls
// onEnded exactly once if the source exhausts on its own; the returned
// Handle stops it early. Implementations need not call onEnded after Stop.
type Device interface {
	Start(buf *Buffer, onEnded func()) (Handle, error)
}

// Handle controls one started source.
type Handle interface {
	Stop()
}

// MemDevice is a Device for tests. It records "start"/"stop" events in
// order and lets a test trigger the natural end of any started source.
type MemDevice struct {
	mu     sync.Mutex
	Events []string

	// StartErr, when set, makes Start fail.
	StartErr error

	ended []func()
}

func (d *MemDevice) Start(buf *Buffer, onEnded func()) (Handle, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.StartErr != nil {
		return nil, d.StartErr
	}
	d.Events = append(d.Events, "start")
	d.ended = append(d.ended, onEnded)
	return &memHandle{device: d}, nil
}

// FinishSource invokes the end-of-playback notification of the i-th
// started source (0-based), simulating natural exhaustion.
func (d *MemDevice) FinishSource(i int) {
	d.mu.Lock()
	fn := d.ended[i]
	d.mu.Unlock()
	fn()
}

// EventLog returns a snapshot of recorded events.
func (d *MemDevice) EventLog() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]string, len(d.Events))
	copy(out, d.Events)
	return out
}

type memHandle struct {
	device *MemDevice
}

func (h *memHandle) Stop() {
	h.device.mu.Lock()
	defer h.device.mu.Unlock()
	h.device.Events = append(h.device.Events, "stop")
}
