package tutor

import (
	"context"
	"iter"
)

// Generator is the abstraction over the generative backend. Calls are not
// retried here; a failed call surfaces as a service error and the caller
// substitutes localized fallback content.
type Generator interface {
	// InitialMessage produces the welcome turn for a freshly created
	// subject or a new conversation within it.
	InitialMessage(ctx context.Context, profile Profile) (string, error)

	// StreamTurn produces the assistant reply to newText as an ordered
	// sequence of text chunks. history is the conversation before the new
	// user message; the new message travels separately.
	StreamTurn(ctx context.Context, history []Message, newText string, profile Profile, image *InlineImage) iter.Seq2[string, error]

	// Quiz generates a multiple-choice quiz from the conversation so far.
	Quiz(ctx context.Context, history []Message, profile Profile) (*Quiz, error)

	// Image renders an educational illustration for prompt. Returns PNG bytes.
	Image(ctx context.Context, prompt string) ([]byte, error)

	// Speech synthesizes text with the given prebuilt voice. Returns raw
	// 16-bit little-endian PCM at 24 kHz mono.
	Speech(ctx context.Context, text, voiceID string) ([]byte, error)

	// Refine rewrites the learner's draft input according to action.
	Refine(ctx context.Context, text string, action RefineAction) (string, error)

	// AssistantStream is the general-purpose helper chat, independent of
	// any subject profile.
	AssistantStream(ctx context.Context, history []Message, newText string) iter.Seq2[string, error]
}
