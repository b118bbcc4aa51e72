package tutor

import (
	"context"
	"encoding/json"
	"fmt"
	"iter"
	"strings"

	"github.com/abhisek/giasu/internal/llm"
)

// Token budgets per call kind. Tutoring turns run long because of the
// follow-up suggestion block; refinement is a one-liner.
const (
	maxTokensTurn    = 4096
	maxTokensInitial = 512
	maxTokensQuiz    = 4096
	maxTokensRefine  = 512
)

// Service implements Generator over the llm provider layer. primary serves
// tutoring turns and quizzes; fast serves the helper chat and text
// refinement; media serves image and speech synthesis (nil when the
// configured provider has no media support).
type Service struct {
	primary llm.Provider
	fast    llm.Provider
	media   llm.MediaProvider
}

// NewService creates a Service. fast may equal primary; media may be nil.
func NewService(primary, fast llm.Provider, media llm.MediaProvider) *Service {
	if fast == nil {
		fast = primary
	}
	return &Service{primary: primary, fast: fast, media: media}
}

func (s *Service) InitialMessage(ctx context.Context, profile Profile) (string, error) {
	ctx = llm.WithPurpose(ctx, "initial-message")

	resp, err := s.primary.Generate(ctx, llm.Request{
		Messages:  []llm.Message{{Role: llm.RoleUser, Content: initialMessagePrompt(profile)}},
		MaxTokens: maxTokensInitial,
	})
	if err != nil {
		return "", fmt.Errorf("generate initial message: %w", err)
	}
	return string(resp.Content), nil
}

func (s *Service) StreamTurn(ctx context.Context, history []Message, newText string, profile Profile, image *InlineImage) iter.Seq2[string, error] {
	ctx = llm.WithPurpose(ctx, "tutor-turn")

	msgs := buildHistory(history)
	userMsg := llm.Message{Role: llm.RoleUser, Content: newText}
	if image != nil {
		userMsg.Image = &llm.ImagePart{Base64: image.Base64, MIMEType: image.MIMEType}
	}
	msgs = append(msgs, userMsg)

	return s.primary.GenerateStream(ctx, llm.Request{
		System:    systemInstruction(profile),
		Messages:  msgs,
		MaxTokens: maxTokensTurn,
	})
}

func (s *Service) Quiz(ctx context.Context, history []Message, profile Profile) (*Quiz, error) {
	ctx = llm.WithPurpose(ctx, "quiz")

	msgs := append(buildHistory(history), llm.Message{Role: llm.RoleUser, Content: quizPrompt})

	resp, err := s.primary.Generate(ctx, llm.Request{
		System:    systemInstruction(profile),
		Messages:  msgs,
		Schema:    quizSchema(),
		MaxTokens: maxTokensQuiz,
	})
	if err != nil {
		return nil, fmt.Errorf("generate quiz: %w", err)
	}

	var quiz Quiz
	if err := json.Unmarshal(resp.Content, &quiz); err != nil {
		return nil, &llm.ErrInvalidResponse{Content: resp.Content, Err: err}
	}
	if len(quiz.Questions) == 0 {
		return nil, &llm.ErrInvalidResponse{Content: resp.Content, Err: fmt.Errorf("quiz has no questions")}
	}
	return &quiz, nil
}

func (s *Service) Image(ctx context.Context, prompt string) ([]byte, error) {
	if s.media == nil {
		return nil, &llm.ErrProviderUnavailable{Err: fmt.Errorf("configured provider has no image generation")}
	}
	ctx = llm.WithPurpose(ctx, "image")
	return s.media.GenerateImage(ctx, imagePrompt(prompt))
}

func (s *Service) Speech(ctx context.Context, text, voiceID string) ([]byte, error) {
	if s.media == nil {
		return nil, &llm.ErrProviderUnavailable{Err: fmt.Errorf("configured provider has no speech synthesis")}
	}
	ctx = llm.WithPurpose(ctx, "speech")
	return s.media.GenerateSpeech(ctx, text, voiceID)
}

func (s *Service) Refine(ctx context.Context, text string, action RefineAction) (string, error) {
	prompt := refinePrompt(text, action)
	if prompt == "" {
		// Unknown action: hand the draft back untouched.
		return text, nil
	}

	ctx = llm.WithPurpose(ctx, "refine")
	resp, err := s.fast.Generate(ctx, llm.Request{
		Messages:  []llm.Message{{Role: llm.RoleUser, Content: prompt}},
		MaxTokens: maxTokensRefine,
	})
	if err != nil {
		return "", fmt.Errorf("refine text: %w", err)
	}
	return strings.TrimSpace(string(resp.Content)), nil
}

func (s *Service) AssistantStream(ctx context.Context, history []Message, newText string) iter.Seq2[string, error] {
	ctx = llm.WithPurpose(ctx, "assistant")

	msgs := append(buildHistory(history), llm.Message{Role: llm.RoleUser, Content: newText})

	return s.fast.GenerateStream(ctx, llm.Request{
		System:    assistantInstruction,
		Messages:  msgs,
		MaxTokens: maxTokensTurn,
	})
}

// buildHistory maps conversation messages into provider messages, carrying
// user images along.
func buildHistory(history []Message) []llm.Message {
	out := make([]llm.Message, 0, len(history))
	for _, m := range history {
		role := llm.RoleUser
		if m.Role == RoleModel {
			role = llm.RoleAssistant
		}
		msg := llm.Message{Role: role, Content: m.Content}
		if m.Role == RoleUser && m.UserImage != nil {
			msg.Image = &llm.ImagePart{Base64: m.UserImage.Base64, MIMEType: m.UserImage.MIMEType}
		}
		out = append(out, msg)
	}
	return out
}
