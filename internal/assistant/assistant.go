// Package assistant is the general-purpose helper chat that sits beside
// the tutoring sessions: one flat message history per user, streamed
// replies, persisted after every completed exchange.
package assistant

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/abhisek/giasu/internal/store"
	"github.com/abhisek/giasu/internal/tutor"
)

// greeting seeds a fresh or unreadable history.
const greeting = "Xin chào! Tôi là trợ lý AI. Tôi có thể giúp gì cho bạn hôm nay?"

// apology replaces the placeholder when the stream fails.
const apology = "Rất tiếc, tôi đang gặp sự cố. Vui lòng thử lại sau."

// Service loads, streams and persists the helper chat.
type Service struct {
	adapter store.Adapter
	gen     tutor.Generator
}

// NewService creates an assistant service.
func NewService(adapter store.Adapter, gen tutor.Generator) *Service {
	return &Service{adapter: adapter, gen: gen}
}

// Load returns the user's helper chat history. Absent or unreadable blobs
// both yield a fresh history holding only the greeting.
func (s *Service) Load(ctx context.Context, user string) ([]tutor.Message, error) {
	raw, ok, err := s.adapter.Get(ctx, store.AssistantHistoryKey(user))
	if err != nil {
		return nil, fmt.Errorf("load assistant history: %w", err)
	}
	if !ok {
		return freshHistory(), nil
	}

	var history []tutor.Message
	if err := json.Unmarshal([]byte(raw), &history); err != nil {
		slog.Warn("assistant history unreadable, starting fresh", "user", user, "error", err)
		return freshHistory(), nil
	}
	return history, nil
}

// Save persists the full history as one blob.
func (s *Service) Save(ctx context.Context, user string, history []tutor.Message) error {
	blob, err := json.Marshal(history)
	if err != nil {
		return fmt.Errorf("encode assistant history: %w", err)
	}
	if err := s.adapter.Set(ctx, store.AssistantHistoryKey(user), string(blob)); err != nil {
		return fmt.Errorf("save assistant history: %w", err)
	}
	return nil
}

// Send appends the user message and a placeholder, streams the reply into
// the placeholder, persists, and returns the updated history. observer
// (may be nil) sees each intermediate snapshot.
func (s *Service) Send(ctx context.Context, user string, history []tutor.Message, text string, observer func([]tutor.Message)) ([]tutor.Message, error) {
	working := make([]tutor.Message, len(history), len(history)+2)
	copy(working, history)

	working = append(working, tutor.Message{Role: tutor.RoleUser, Content: text})
	working = append(working, tutor.Message{Role: tutor.RoleModel})
	last := len(working) - 1
	notify(observer, working)

	var acc string
	for chunk, err := range s.gen.AssistantStream(ctx, working[:last-1], text) {
		if err != nil {
			working[last].Content = apology
			notify(observer, working)
			break
		}
		acc += chunk
		working[last].Content = acc
		notify(observer, working)
	}

	if err := s.Save(ctx, user, working); err != nil {
		return nil, err
	}
	return working, nil
}

func freshHistory() []tutor.Message {
	return []tutor.Message{{Role: tutor.RoleModel, Content: greeting}}
}

func notify(observer func([]tutor.Message), history []tutor.Message) {
	if observer == nil {
		return
	}
	snapshot := make([]tutor.Message, len(history))
	copy(snapshot, history)
	observer(snapshot)
}
