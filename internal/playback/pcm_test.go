package playback

import (
	"math"
	"testing"
	"time"
)

func TestDecodePCM(t *testing.T) {
	// 0x4000 = 16384 → 0.5; 0xC000 = -16384 → -0.5.
	buf, err := DecodePCM([]byte{0x00, 0x40, 0x00, 0xC0}, SampleRate, Channels)
	if err != nil {
		t.Fatalf("DecodePCM: %v", err)
	}
	if len(buf.Samples) != 2 {
		t.Fatalf("samples = %d, want 2", len(buf.Samples))
	}
	if math.Abs(float64(buf.Samples[0]-0.5)) > 1e-4 {
		t.Errorf("sample 0 = %f, want 0.5", buf.Samples[0])
	}
	if math.Abs(float64(buf.Samples[1]+0.5)) > 1e-4 {
		t.Errorf("sample 1 = %f, want -0.5", buf.Samples[1])
	}
}

func TestDecodePCMOddLength(t *testing.T) {
	if _, err := DecodePCM([]byte{0x00, 0x40, 0x00}, SampleRate, Channels); err == nil {
		t.Fatal("want error for odd-length PCM")
	}
}

func TestBufferDuration(t *testing.T) {
	buf := &Buffer{
		Samples:    make([]float32, SampleRate), // one second of mono audio
		SampleRate: SampleRate,
		Channels:   1,
	}
	if d := buf.Duration(); d != time.Second {
		t.Fatalf("duration = %v, want 1s", d)
	}
}
