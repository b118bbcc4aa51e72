package playback

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"os/exec"
	"sync"
)

// ExecDevice plays PCM through an external player process (ffplay by
// default), feeding samples over stdin. One process per source; Stop kills
// it. Requires the player binary on PATH.
type ExecDevice struct {
	// Player overrides the binary name. Empty means "ffplay".
	Player string
}

func (d *ExecDevice) player() string {
	if d.Player != "" {
		return d.Player
	}
	return "ffplay"
}

// Start launches the player and streams buf to it in the background.
// onEnded fires once the process exits on its own; it does not fire after
// Stop.
func (d *ExecDevice) Start(buf *Buffer, onEnded func()) (Handle, error) {
	cmd := exec.Command(d.player(),
		"-f", "s16le",
		"-ar", fmt.Sprint(buf.SampleRate),
		"-ch_layout", "mono",
		"-nodisp", "-autoexit", "-loglevel", "quiet",
		"-",
	)
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("player stdin: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start %s: %w", d.player(), err)
	}

	h := &execHandle{cmd: cmd}
	go func() {
		writeSamples(stdin, buf.Samples)
		stdin.Close()
		err := cmd.Wait()

		h.mu.Lock()
		stopped := h.stopped
		h.mu.Unlock()
		if !stopped && err == nil {
			onEnded()
		}
	}()
	return h, nil
}

type execHandle struct {
	cmd *exec.Cmd

	mu      sync.Mutex
	stopped bool
}

func (h *execHandle) Stop() {
	h.mu.Lock()
	if h.stopped {
		h.mu.Unlock()
		return
	}
	h.stopped = true
	h.mu.Unlock()

	if h.cmd.Process != nil {
		_ = h.cmd.Process.Kill()
	}
}

// writeSamples converts float32 samples back to s16le and writes them out.
// Write errors end playback early; the player exiting mid-stream is normal
// on Stop.
func writeSamples(out io.Writer, samples []float32) {
	w := bufio.NewWriter(out)
	frame := make([]byte, 2)
	for _, s := range samples {
		if s > 1 {
			s = 1
		}
		if s < -1 {
			s = -1
		}
		binary.LittleEndian.PutUint16(frame, uint16(int16(s*32767)))
		if _, err := w.Write(frame); err != nil {
			return
		}
	}
	w.Flush()
}
