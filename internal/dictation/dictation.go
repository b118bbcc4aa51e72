// Package dictation defines the speech-to-text boundary. The core only
// consumes final transcripts; capture and interim hypotheses live behind
// the Recognizer interface.
package dictation

import "context"

// Recognizer captures one utterance and returns its final transcript.
// Implementations block until the utterance ends or ctx is cancelled.
// An empty transcript with a nil error means nothing was recognized.
type Recognizer interface {
	Listen(ctx context.Context) (string, error)
}

// MemRecognizer replays scripted transcripts in order. Once the script is
// exhausted it returns empty transcripts.
type MemRecognizer struct {
	Transcripts []string
	Err         error

	next int
}

func (m *MemRecognizer) Listen(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if m.Err != nil {
		return "", m.Err
	}
	if m.next >= len(m.Transcripts) {
		return "", nil
	}
	t := m.Transcripts[m.next]
	m.next++
	return t, nil
}
