package llm

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
)

func TestMockProviderFIFO(t *testing.T) {
	mock := NewMockProvider(
		MockResponse{Content: json.RawMessage(`{"a":1}`), Usage: Usage{InputTokens: 10, OutputTokens: 5}},
		MockResponse{Content: json.RawMessage(`{"b":2}`)},
	)

	resp, err := mock.Generate(context.Background(), Request{Messages: []Message{{Role: RoleUser, Content: "first"}}})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if string(resp.Content) != `{"a":1}` {
		t.Errorf("content = %s", resp.Content)
	}
	if resp.Usage.InputTokens != 10 {
		t.Errorf("input tokens = %d", resp.Usage.InputTokens)
	}

	resp, err = mock.Generate(context.Background(), Request{})
	if err != nil {
		t.Fatalf("second Generate: %v", err)
	}
	if string(resp.Content) != `{"b":2}` {
		t.Errorf("content = %s", resp.Content)
	}
}

func TestMockProviderEmptyQueue(t *testing.T) {
	mock := NewMockProvider()
	_, err := mock.Generate(context.Background(), Request{})
	var unavail *ErrProviderUnavailable
	if !errors.As(err, &unavail) {
		t.Fatalf("err = %T, want ErrProviderUnavailable", err)
	}
}

func TestMockProviderStreamYieldsChunks(t *testing.T) {
	mock := NewMockProvider(
		MockResponse{Chunks: []string{"xin ", "chào"}},
	)

	var got string
	for chunk, err := range mock.GenerateStream(context.Background(), Request{}) {
		if err != nil {
			t.Fatalf("stream error: %v", err)
		}
		got += chunk
	}
	if got != "xin chào" {
		t.Errorf("accumulated = %q", got)
	}
}

func TestMockProviderStreamScriptedError(t *testing.T) {
	boom := errors.New("boom")
	mock := NewMockProvider(MockResponse{Err: boom})

	var sawErr error
	for _, err := range mock.GenerateStream(context.Background(), Request{}) {
		if err != nil {
			sawErr = err
		}
	}
	if !errors.Is(sawErr, boom) {
		t.Fatalf("stream err = %v, want scripted error", sawErr)
	}
}

func TestMockProviderRecordsRequests(t *testing.T) {
	mock := NewMockProvider(MockResponse{Content: json.RawMessage(`{}`)})

	req := Request{System: "sys", Messages: []Message{{Role: RoleUser, Content: "hello"}}}
	if _, err := mock.Generate(context.Background(), req); err != nil {
		t.Fatalf("Generate: %v", err)
	}

	if mock.CallCount() != 1 {
		t.Fatalf("calls = %d, want 1", mock.CallCount())
	}
	if mock.Calls[0].System != "sys" {
		t.Errorf("recorded system = %q", mock.Calls[0].System)
	}
}

func TestPurposeContext(t *testing.T) {
	ctx := WithPurpose(context.Background(), "tutor-turn")
	if got := PurposeFrom(ctx); got != "tutor-turn" {
		t.Errorf("purpose = %q", got)
	}
	if got := PurposeFrom(context.Background()); got != "unknown" {
		t.Errorf("default purpose = %q", got)
	}
}

func TestResolveModel(t *testing.T) {
	models := map[string]string{"alias": "real-id"}
	if got := resolveModel("alias", models); got != "real-id" {
		t.Errorf("resolveModel(alias) = %q", got)
	}
	if got := resolveModel("passthrough-id", models); got != "passthrough-id" {
		t.Errorf("resolveModel(passthrough) = %q", got)
	}
}

func TestKnownModelsHavePricing(t *testing.T) {
	ids := KnownModels()
	if len(ids) == 0 {
		t.Fatal("no known models")
	}
	for _, id := range ids {
		if LookupCost(id) == nil {
			t.Errorf("model %s has no pricing", id)
		}
	}
	if LookupCost("not-a-model") != nil {
		t.Error("unknown model returned pricing")
	}
}

func TestModelCost(t *testing.T) {
	c := ModelCost{InputPerMTok: 1, OutputPerMTok: 10}
	if got := c.Cost(1_000_000, 100_000); got != 2.0 {
		t.Errorf("cost = %f, want 2.0", got)
	}
}
