package tutor

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/abhisek/giasu/internal/llm"
)

func testProfile() Profile {
	return Profile{Username: "an", Subject: "Sinh học", Goal: "thi tốt", Level: "lớp 10", Voice: "Kore"}
}

func TestInitialMessage(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Content: json.RawMessage("Chào mừng bạn!")})
	s := NewService(mock, nil, nil)

	got, err := s.InitialMessage(context.Background(), testProfile())
	if err != nil {
		t.Fatalf("InitialMessage: %v", err)
	}
	if got != "Chào mừng bạn!" {
		t.Errorf("message = %q", got)
	}
	if len(mock.Calls) != 1 || mock.Calls[0].Schema != nil {
		t.Errorf("calls = %+v, want one schemaless request", mock.Calls)
	}
}

func TestStreamTurnSendsHistoryAndSystemPrompt(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Chunks: []string{"một ", "hai"}})
	s := NewService(mock, nil, nil)

	history := []Message{
		{Role: RoleModel, Content: "Chào!"},
		{Role: RoleUser, Content: "câu trước"},
	}
	var got string
	for chunk, err := range s.StreamTurn(context.Background(), history, "câu mới", testProfile(), nil) {
		if err != nil {
			t.Fatalf("stream: %v", err)
		}
		got += chunk
	}
	if got != "một hai" {
		t.Errorf("accumulated = %q", got)
	}

	req := mock.Calls[0]
	if req.System == "" {
		t.Error("system instruction missing")
	}
	if len(req.Messages) != 3 {
		t.Fatalf("messages = %d, want history plus new text", len(req.Messages))
	}
	if req.Messages[0].Role != llm.RoleAssistant {
		t.Errorf("first role = %v, want model mapped to assistant", req.Messages[0].Role)
	}
	if req.Messages[2].Content != "câu mới" {
		t.Errorf("last message = %q", req.Messages[2].Content)
	}
}

func TestStreamTurnCarriesImage(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Chunks: []string{"ok"}})
	s := NewService(mock, nil, nil)

	img := &InlineImage{Base64: "aGVsbG8=", MIMEType: "image/png"}
	for range s.StreamTurn(context.Background(), nil, "nhìn này", testProfile(), img) {
	}

	req := mock.Calls[0]
	if req.Messages[0].Image == nil || req.Messages[0].Image.Base64 != "aGVsbG8=" {
		t.Errorf("image part = %+v", req.Messages[0].Image)
	}
}

func TestQuizParsesSchemaResponse(t *testing.T) {
	payload := `{"questions":[{"question":"1+1?","options":["1","2","3","4"],"answer":"2","explanation":"cộng"}]}`
	mock := llm.NewMockProvider(llm.MockResponse{Content: json.RawMessage(payload)})
	s := NewService(mock, nil, nil)

	quiz, err := s.Quiz(context.Background(), nil, testProfile())
	if err != nil {
		t.Fatalf("Quiz: %v", err)
	}
	if len(quiz.Questions) != 1 || quiz.Questions[0].Answer != "2" {
		t.Errorf("quiz = %+v", quiz)
	}
	if mock.Calls[0].Schema == nil {
		t.Error("quiz request must carry a schema")
	}
}

func TestQuizRejectsEmptyQuestions(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Content: json.RawMessage(`{"questions":[]}`)})
	s := NewService(mock, nil, nil)

	_, err := s.Quiz(context.Background(), nil, testProfile())
	var invalid *llm.ErrInvalidResponse
	if !errors.As(err, &invalid) {
		t.Fatalf("err = %v, want ErrInvalidResponse", err)
	}
}

func TestMediaWithoutProvider(t *testing.T) {
	mock := llm.NewMockProvider()
	s := NewService(mock, nil, nil)

	var unavail *llm.ErrProviderUnavailable
	if _, err := s.Image(context.Background(), "tế bào"); !errors.As(err, &unavail) {
		t.Errorf("Image err = %v, want ErrProviderUnavailable", err)
	}
	if _, err := s.Speech(context.Background(), "đọc", "Kore"); !errors.As(err, &unavail) {
		t.Errorf("Speech err = %v, want ErrProviderUnavailable", err)
	}
}

func TestRefineUsesFastProvider(t *testing.T) {
	primary := llm.NewMockProvider()
	fast := llm.NewMockProvider(llm.MockResponse{Content: json.RawMessage("Đã sửa ngữ pháp.")})
	s := NewService(primary, fast, nil)

	got, err := s.Refine(context.Background(), "toi viet sai", RefineFixGrammar)
	if err != nil {
		t.Fatalf("Refine: %v", err)
	}
	if got != "Đã sửa ngữ pháp." {
		t.Errorf("refined = %q", got)
	}
	if primary.CallCount() != 0 || fast.CallCount() != 1 {
		t.Errorf("calls = primary %d / fast %d, want refinement on fast", primary.CallCount(), fast.CallCount())
	}
}

func TestRefineUnknownActionPassesThrough(t *testing.T) {
	mock := llm.NewMockProvider()
	s := NewService(mock, nil, nil)

	got, err := s.Refine(context.Background(), "giữ nguyên", RefineAction("no-such-action"))
	if err != nil {
		t.Fatalf("Refine: %v", err)
	}
	if got != "giữ nguyên" {
		t.Errorf("refined = %q, want input unchanged", got)
	}
	if mock.CallCount() != 0 {
		t.Error("unknown action must not call the provider")
	}
}

func TestAssistantStreamIndependentOfProfile(t *testing.T) {
	primary := llm.NewMockProvider()
	fast := llm.NewMockProvider(llm.MockResponse{Chunks: []string{"giúp ", "bạn"}})
	s := NewService(primary, fast, nil)

	var got string
	for chunk, err := range s.AssistantStream(context.Background(), nil, "chào") {
		if err != nil {
			t.Fatalf("stream: %v", err)
		}
		got += chunk
	}
	if got != "giúp bạn" {
		t.Errorf("accumulated = %q", got)
	}
	if fast.Calls[0].System != assistantInstruction {
		t.Error("assistant stream must use the helper instruction")
	}
}
