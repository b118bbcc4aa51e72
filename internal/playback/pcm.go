package playback

import (
	"encoding/binary"
	"fmt"
	"time"
)

// Narration audio format: raw 16-bit little-endian PCM, 24 kHz mono.
const (
	SampleRate = 24000
	Channels   = 1
)

// Buffer is decoded audio ready for an output device.
type Buffer struct {
	Samples    []float32
	SampleRate int
	Channels   int
}

// Duration returns the playback length of the buffer.
func (b *Buffer) Duration() time.Duration {
	if b.SampleRate == 0 || b.Channels == 0 {
		return 0
	}
	frames := len(b.Samples) / b.Channels
	return time.Duration(float64(frames) / float64(b.SampleRate) * float64(time.Second))
}

// DecodePCM converts raw s16le bytes into normalized float32 samples in
// [-1, 1).
func DecodePCM(data []byte, sampleRate, channels int) (*Buffer, error) {
	if len(data)%2 != 0 {
		return nil, fmt.Errorf("odd PCM byte length %d", len(data))
	}

	samples := make([]float32, len(data)/2)
	for i := range samples {
		s := int16(binary.LittleEndian.Uint16(data[i*2:]))
		samples[i] = float32(s) / 32768.0
	}

	return &Buffer{
		Samples:    samples,
		SampleRate: sampleRate,
		Channels:   channels,
	}, nil
}
