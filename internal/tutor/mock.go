package tutor

import (
	"context"
	"fmt"
	"iter"
	"sync"
)

// MockGenerator is a deterministic Generator for tests. Zero value is
// usable: every call succeeds with canned content unless an error is
// scripted for its method name.
type MockGenerator struct {
	mu sync.Mutex

	// TurnChunks is what StreamTurn yields, in order.
	TurnChunks []string
	// AssistantChunks is what AssistantStream yields; falls back to
	// TurnChunks when nil.
	AssistantChunks []string
	// Initial is the welcome message text.
	Initial string
	// QuizResult is returned by Quiz.
	QuizResult *Quiz
	// SpeechData is returned by Speech.
	SpeechData []byte
	// ImageData is returned by Image.
	ImageData []byte
	// RefineResult is returned by Refine.
	RefineResult string

	// Fail maps method name ("StreamTurn", "Quiz", "Image", "Speech",
	// "InitialMessage", "Refine", "AssistantStream") to a scripted error.
	Fail map[string]error

	// Calls records method invocations in order.
	Calls []string
}

func (m *MockGenerator) record(method string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls = append(m.Calls, method)
	if err, ok := m.Fail[method]; ok {
		return err
	}
	return nil
}

// CallCount returns how many times method was invoked.
func (m *MockGenerator) CallCount(method string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, c := range m.Calls {
		if c == method {
			n++
		}
	}
	return n
}

func (m *MockGenerator) InitialMessage(_ context.Context, profile Profile) (string, error) {
	if err := m.record("InitialMessage"); err != nil {
		return "", err
	}
	if m.Initial != "" {
		return m.Initial, nil
	}
	return fmt.Sprintf("Chào mừng bạn đến với môn %s!", profile.Subject), nil
}

func (m *MockGenerator) StreamTurn(_ context.Context, _ []Message, _ string, _ Profile, _ *InlineImage) iter.Seq2[string, error] {
	err := m.record("StreamTurn")
	return m.stream(m.TurnChunks, err)
}

func (m *MockGenerator) Quiz(_ context.Context, _ []Message, _ Profile) (*Quiz, error) {
	if err := m.record("Quiz"); err != nil {
		return nil, err
	}
	if m.QuizResult != nil {
		return m.QuizResult, nil
	}
	return &Quiz{Questions: []QuizQuestion{{
		Question:    "1 + 1 = ?",
		Options:     []string{"1", "2", "3", "4"},
		Answer:      "2",
		Explanation: "Cộng hai đơn vị.",
	}}}, nil
}

func (m *MockGenerator) Image(_ context.Context, _ string) ([]byte, error) {
	if err := m.record("Image"); err != nil {
		return nil, err
	}
	if m.ImageData != nil {
		return m.ImageData, nil
	}
	return []byte("png-bytes"), nil
}

func (m *MockGenerator) Speech(_ context.Context, _, _ string) ([]byte, error) {
	if err := m.record("Speech"); err != nil {
		return nil, err
	}
	if m.SpeechData != nil {
		return m.SpeechData, nil
	}
	// Two silent s16le frames.
	return []byte{0, 0, 0, 0}, nil
}

func (m *MockGenerator) Refine(_ context.Context, text string, _ RefineAction) (string, error) {
	if err := m.record("Refine"); err != nil {
		return "", err
	}
	if m.RefineResult != "" {
		return m.RefineResult, nil
	}
	return text, nil
}

func (m *MockGenerator) AssistantStream(_ context.Context, _ []Message, _ string) iter.Seq2[string, error] {
	err := m.record("AssistantStream")
	chunks := m.AssistantChunks
	if chunks == nil {
		chunks = m.TurnChunks
	}
	return m.stream(chunks, err)
}

func (m *MockGenerator) stream(chunks []string, err error) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		if err != nil {
			yield("", err)
			return
		}
		for _, c := range chunks {
			if !yield(c, nil) {
				return
			}
		}
	}
}
