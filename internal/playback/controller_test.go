package playback

import (
	"context"
	"errors"
	"testing"
)

type memSynth struct {
	calls int
	err   error
}

func (s *memSynth) Speech(ctx context.Context, text, voiceID string) ([]byte, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	// Two s16le samples.
	return []byte{0x00, 0x40, 0x00, 0xC0}, nil
}

func TestToggleStartsPlayback(t *testing.T) {
	synth := &memSynth{}
	device := &MemDevice{}
	c := NewController(synth, device)

	if err := c.Toggle(context.Background(), "xin chào", 2, "Kore"); err != nil {
		t.Fatalf("Toggle: %v", err)
	}

	st := c.Status()
	if st.State != StatePlaying || st.Index != 2 {
		t.Fatalf("status = %+v, want playing at 2", st)
	}
	if got := device.EventLog(); len(got) != 1 || got[0] != "start" {
		t.Fatalf("events = %v, want [start]", got)
	}
}

func TestToggleSameIndexStopsWithoutResynthesis(t *testing.T) {
	synth := &memSynth{}
	device := &MemDevice{}
	c := NewController(synth, device)

	ctx := context.Background()
	if err := c.Toggle(ctx, "a", 1, "Kore"); err != nil {
		t.Fatalf("first Toggle: %v", err)
	}
	if err := c.Toggle(ctx, "a", 1, "Kore"); err != nil {
		t.Fatalf("second Toggle: %v", err)
	}

	if st := c.Status(); st.State != StateIdle {
		t.Fatalf("status = %+v, want idle", st)
	}
	if synth.calls != 1 {
		t.Fatalf("synth calls = %d, want exactly 1", synth.calls)
	}
	want := []string{"start", "stop"}
	got := device.EventLog()
	if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
		t.Fatalf("events = %v, want %v", got, want)
	}
}

func TestToggleOtherIndexStopsThenStarts(t *testing.T) {
	device := &MemDevice{}
	c := NewController(&memSynth{}, device)

	ctx := context.Background()
	if err := c.Toggle(ctx, "a", 0, "Kore"); err != nil {
		t.Fatalf("Toggle 0: %v", err)
	}
	if err := c.Toggle(ctx, "b", 1, "Kore"); err != nil {
		t.Fatalf("Toggle 1: %v", err)
	}

	if st := c.Status(); st.State != StatePlaying || st.Index != 1 {
		t.Fatalf("status = %+v, want playing at 1", st)
	}

	got := device.EventLog()
	want := []string{"start", "stop", "start"}
	if len(got) != len(want) {
		t.Fatalf("events = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("events = %v, want %v", got, want)
		}
	}
}

func TestStaleEndNotificationIgnored(t *testing.T) {
	device := &MemDevice{}
	c := NewController(&memSynth{}, device)

	ctx := context.Background()
	if err := c.Toggle(ctx, "a", 0, "Kore"); err != nil {
		t.Fatalf("Toggle 0: %v", err)
	}
	if err := c.Toggle(ctx, "b", 1, "Kore"); err != nil {
		t.Fatalf("Toggle 1: %v", err)
	}

	// The first source reports its natural end after it was replaced.
	device.FinishSource(0)

	if st := c.Status(); st.State != StatePlaying || st.Index != 1 {
		t.Fatalf("status = %+v, want playing at 1 after stale end", st)
	}
}

func TestNaturalEndReturnsToIdle(t *testing.T) {
	device := &MemDevice{}
	c := NewController(&memSynth{}, device)

	if err := c.Toggle(context.Background(), "a", 0, "Kore"); err != nil {
		t.Fatalf("Toggle: %v", err)
	}
	device.FinishSource(0)

	if st := c.Status(); st.State != StateIdle {
		t.Fatalf("status = %+v, want idle", st)
	}
}

func TestDisabledToggleIsNoop(t *testing.T) {
	synth := &memSynth{}
	c := NewController(synth, &MemDevice{})

	c.SetEnabled(false)
	if err := c.Toggle(context.Background(), "a", 0, "Kore"); err != nil {
		t.Fatalf("Toggle while disabled: %v", err)
	}
	if synth.calls != 0 {
		t.Fatalf("synth calls = %d, want 0", synth.calls)
	}
	if st := c.Status(); st.State != StateIdle {
		t.Fatalf("status = %+v, want idle", st)
	}
}

func TestDisableStopsActiveSource(t *testing.T) {
	device := &MemDevice{}
	c := NewController(&memSynth{}, device)

	if err := c.Toggle(context.Background(), "a", 0, "Kore"); err != nil {
		t.Fatalf("Toggle: %v", err)
	}
	c.SetEnabled(false)

	if st := c.Status(); st.State != StateIdle {
		t.Fatalf("status = %+v, want idle", st)
	}
	got := device.EventLog()
	if len(got) != 2 || got[1] != "stop" {
		t.Fatalf("events = %v, want [start stop]", got)
	}
}

func TestSynthFailureResetsToIdle(t *testing.T) {
	boom := errors.New("boom")
	c := NewController(&memSynth{err: boom}, &MemDevice{})

	err := c.Toggle(context.Background(), "a", 0, "Kore")
	var unavailable *ErrSpeechUnavailable
	if !errors.As(err, &unavailable) {
		t.Fatalf("err = %v, want ErrSpeechUnavailable", err)
	}
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want wrapped cause", err)
	}
	if st := c.Status(); st.State != StateIdle {
		t.Fatalf("status = %+v, want idle", st)
	}
}

func TestDeviceStartFailureResetsToIdle(t *testing.T) {
	device := &MemDevice{StartErr: errors.New("no output")}
	c := NewController(&memSynth{}, device)

	err := c.Toggle(context.Background(), "a", 0, "Kore")
	var unavailable *ErrSpeechUnavailable
	if !errors.As(err, &unavailable) {
		t.Fatalf("err = %v, want ErrSpeechUnavailable", err)
	}
	if st := c.Status(); st.State != StateIdle {
		t.Fatalf("status = %+v, want idle", st)
	}
}
