// Package turn drives one assistant turn at a time: append the user
// message, route it, stream or generate the reply into a working copy of
// the conversation, and hand the finished conversation back for commit.
package turn

import (
	"context"
	"encoding/base64"
	"fmt"
	"sync"

	"github.com/abhisek/giasu/internal/tutor"
)

// ErrTurnInFlight is returned when a turn is already streaming into the
// same conversation.
type ErrTurnInFlight struct {
	Key string
}

func (e *ErrTurnInFlight) Error() string {
	return fmt.Sprintf("a turn is already in flight for %q", e.Key)
}

// ErrQuizUnavailable wraps a quiz generation or parse failure. The
// conversation is handed back without a quiz and without a placeholder.
type ErrQuizUnavailable struct {
	Err error
}

func (e *ErrQuizUnavailable) Error() string {
	return "Không thể tạo bài kiểm tra vào lúc này."
}

func (e *ErrQuizUnavailable) Unwrap() error { return e.Err }

// Input is one user turn.
type Input struct {
	// Conversation is the committed conversation the turn starts from.
	// The coordinator works on a copy; the caller's slice is never touched.
	Conversation tutor.Conversation

	// Text is the raw user input, before trimming.
	Text string

	// Image is an optional attachment on the user message.
	Image *tutor.InlineImage

	Profile tutor.Profile

	// FromVoice marks input that came from dictation; it flows through to
	// the result so the caller can auto-narrate the reply.
	FromVoice bool
}

// Result is a completed turn, ready to commit.
type Result struct {
	// Conversation holds the full conversation including the new user
	// message and the finished assistant message.
	Conversation tutor.Conversation

	// Quiz is set when the turn was a /quiz command.
	Quiz *tutor.Quiz

	// Streamed is true for the conversational route: the final message
	// content grew chunk by chunk.
	Streamed bool

	// Failed is true when generation failed and the apology fallback was
	// substituted. The turn still commits.
	Failed bool

	FromVoice bool
}

// Observer sees each intermediate state of the working conversation while
// a reply streams. Snapshots only grow; no rollback is ever visible.
type Observer func(conv tutor.Conversation)

// Coordinator runs turns, one per conversation key at a time.
type Coordinator struct {
	gen tutor.Generator

	mu       sync.Mutex
	inFlight map[string]bool
}

// NewCoordinator creates a Coordinator over the given generator.
func NewCoordinator(gen tutor.Generator) *Coordinator {
	return &Coordinator{
		gen:      gen,
		inFlight: make(map[string]bool),
	}
}

// Busy reports whether a turn is currently streaming for key. While true,
// externally loaded session state must not replace the working
// conversation: the in-memory stream is the source of truth until commit.
func (c *Coordinator) Busy(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.inFlight[key]
}

// StartTurn runs one turn for the conversation identified by key. observer
// may be nil. On a quiz failure the input conversation is abandoned
// unchanged; on a streaming failure the result carries the apology
// fallback and is still meant to be committed.
func (c *Coordinator) StartTurn(ctx context.Context, key string, in Input, observer Observer) (*Result, error) {
	if err := c.acquire(key); err != nil {
		return nil, err
	}
	defer c.release(key)

	// Phase 1: append the user's message to a working copy.
	userMsg := tutor.Message{Role: tutor.RoleUser, Content: in.Text, UserImage: in.Image}
	working := append(in.Conversation.Clone(), userMsg)
	notify(observer, working)

	// Phase 2: command routing.
	kind, prompt := Route(in.Text)
	switch kind {
	case KindQuiz:
		return c.runQuiz(ctx, in, working, observer)
	case KindImage:
		return c.runImage(ctx, in, working, prompt, observer)
	case KindImageNoPrompt:
		working = append(working, tutor.Message{Role: tutor.RoleModel, Content: imagePromptRequest})
		notify(observer, working)
		return &Result{Conversation: working, FromVoice: in.FromVoice}, nil
	}

	return c.runChat(ctx, in, working, observer)
}

// runChat is the standard conversational route: placeholder, chunk
// accumulation, follow-up split, apology fallback.
func (c *Coordinator) runChat(ctx context.Context, in Input, working tutor.Conversation, observer Observer) (*Result, error) {
	// Phase 3: placeholder, then stream into it.
	working = append(working, tutor.Message{Role: tutor.RoleModel})
	last := len(working) - 1
	notify(observer, working)

	history := in.Conversation // excludes the new user message, passed separately
	var acc string
	var failed bool

	for chunk, err := range c.gen.StreamTurn(ctx, history, in.Text, in.Profile, in.Image) {
		if err != nil {
			// Phase 5: substitute the apology; the turn still commits.
			working[last].Content = apologyMessage
			working[last].SuggestedFollowups = nil
			failed = true
			notify(observer, working)
			break
		}
		acc += chunk
		working[last].Content = acc
		notify(observer, working)
	}

	// Phase 4: extract trailing follow-up suggestions.
	if !failed {
		content, followups := splitFollowups(acc)
		working[last].Content = content
		working[last].SuggestedFollowups = followups
		notify(observer, working)
	}

	return &Result{
		Conversation: working,
		Streamed:     true,
		Failed:       failed,
		FromVoice:    in.FromVoice,
	}, nil
}

// runQuiz generates the quiz from the history excluding the triggering
// command message, then appends the fixed lead-in.
func (c *Coordinator) runQuiz(ctx context.Context, in Input, working tutor.Conversation, observer Observer) (*Result, error) {
	quiz, err := c.gen.Quiz(ctx, in.Conversation, in.Profile)
	if err != nil {
		return nil, &ErrQuizUnavailable{Err: err}
	}

	working = append(working, tutor.Message{Role: tutor.RoleModel, Content: quizLeadIn})
	notify(observer, working)

	return &Result{
		Conversation: working,
		Quiz:         quiz,
		FromVoice:    in.FromVoice,
	}, nil
}

// runImage appends one completed model message carrying the generated
// image as a data URL. Generation failure degrades to the apology message.
func (c *Coordinator) runImage(ctx context.Context, in Input, working tutor.Conversation, prompt string, observer Observer) (*Result, error) {
	png, err := c.gen.Image(ctx, prompt)
	if err != nil {
		working = append(working, tutor.Message{Role: tutor.RoleModel, Content: apologyMessage})
		notify(observer, working)
		return &Result{Conversation: working, Failed: true, FromVoice: in.FromVoice}, nil
	}

	working = append(working, tutor.Message{
		Role:          tutor.RoleModel,
		Content:       fmt.Sprintf("Đây là hình ảnh cho: %q", prompt),
		ModelImageURL: "data:image/png;base64," + base64.StdEncoding.EncodeToString(png),
	})
	notify(observer, working)

	return &Result{Conversation: working, FromVoice: in.FromVoice}, nil
}

func (c *Coordinator) acquire(key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.inFlight[key] {
		return &ErrTurnInFlight{Key: key}
	}
	c.inFlight[key] = true
	return nil
}

func (c *Coordinator) release(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.inFlight, key)
}

func notify(observer Observer, conv tutor.Conversation) {
	if observer != nil {
		observer(conv.Clone())
	}
}
