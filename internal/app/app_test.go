package app

import (
	"context"
	"iter"
	"sync"
	"testing"

	"github.com/abhisek/giasu/internal/assistant"
	"github.com/abhisek/giasu/internal/auth"
	"github.com/abhisek/giasu/internal/dictation"
	"github.com/abhisek/giasu/internal/playback"
	"github.com/abhisek/giasu/internal/session"
	"github.com/abhisek/giasu/internal/store"
	"github.com/abhisek/giasu/internal/turn"
	"github.com/abhisek/giasu/internal/tutor"
)

type fixture struct {
	app     *App
	adapter *store.MemAdapter
	gen     *tutor.MockGenerator
	device  *playback.MemDevice
}

func newFixture(t *testing.T, gen *tutor.MockGenerator) *fixture {
	t.Helper()
	adapter := store.NewMemAdapter()
	device := &playback.MemDevice{}
	a := New(Deps{
		Auth:      auth.NewService(adapter),
		Sessions:  session.NewStore(adapter, gen),
		Turns:     turn.NewCoordinator(gen),
		Playback:  playback.NewController(gen, device),
		Assistant: assistant.NewService(adapter, gen),
		Dictation: &dictation.MemRecognizer{},
		Generator: gen,
	})
	return &fixture{app: a, adapter: adapter, gen: gen, device: device}
}

func signIn(t *testing.T, f *fixture, username string) {
	t.Helper()
	ctx := context.Background()
	if err := f.app.Register(ctx, username, "mk"); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if err := f.app.SignIn(ctx, username, "mk"); err != nil {
		t.Fatalf("SignIn: %v", err)
	}
}

func TestOperationsRequireSignIn(t *testing.T) {
	f := newFixture(t, &tutor.MockGenerator{})

	if _, err := f.app.Subjects(); err != ErrNotSignedIn {
		t.Errorf("Subjects err = %v, want ErrNotSignedIn", err)
	}
	if _, err := f.app.Send(context.Background(), "hi", nil, false, nil); err != ErrNotSignedIn {
		t.Errorf("Send err = %v, want ErrNotSignedIn", err)
	}
	if _, err := f.app.CreateSubject(context.Background(), tutor.Profile{Subject: "Lý"}); err != ErrNotSignedIn {
		t.Errorf("CreateSubject err = %v, want ErrNotSignedIn", err)
	}
}

func TestResumePicksUpCurrentUser(t *testing.T) {
	f := newFixture(t, &tutor.MockGenerator{})
	signIn(t, f, "an")

	// A second App over the same adapter resumes without credentials.
	other := New(Deps{
		Auth:      auth.NewService(f.adapter),
		Sessions:  session.NewStore(f.adapter, f.gen),
		Turns:     turn.NewCoordinator(f.gen),
		Playback:  playback.NewController(f.gen, &playback.MemDevice{}),
		Assistant: assistant.NewService(f.adapter, f.gen),
		Dictation: &dictation.MemRecognizer{},
		Generator: f.gen,
	})

	ok, err := other.Resume(context.Background())
	if err != nil || !ok {
		t.Fatalf("Resume = (%v, %v), want resumed", ok, err)
	}
	if user, _ := other.User(); user != "an" {
		t.Errorf("user = %q, want an", user)
	}
}

func TestSendCommitsTurn(t *testing.T) {
	gen := &tutor.MockGenerator{TurnChunks: []string{"Trả ", "lời."}}
	f := newFixture(t, gen)
	signIn(t, f, "an")
	ctx := context.Background()

	if _, err := f.app.CreateSubject(ctx, tutor.Profile{Subject: "Sinh"}); err != nil {
		t.Fatalf("CreateSubject: %v", err)
	}

	res, err := f.app.Send(ctx, "Quang hợp?", nil, false, nil)
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if got := res.Conversation[len(res.Conversation)-1].Content; got != "Trả lời." {
		t.Errorf("reply = %q", got)
	}

	sess, err := f.app.ActiveSession()
	if err != nil {
		t.Fatalf("ActiveSession: %v", err)
	}
	if got := len(sess.Current()); got != 3 {
		t.Fatalf("conversation length = %d, want welcome+user+reply", got)
	}
}

func TestVoiceTurnNarratesReply(t *testing.T) {
	gen := &tutor.MockGenerator{TurnChunks: []string{"Đáp án."}}
	f := newFixture(t, gen)
	signIn(t, f, "an")
	ctx := context.Background()

	if _, err := f.app.CreateSubject(ctx, tutor.Profile{Subject: "Sinh"}); err != nil {
		t.Fatalf("CreateSubject: %v", err)
	}

	if _, err := f.app.Send(ctx, "câu hỏi", nil, true, nil); err != nil {
		t.Fatalf("Send: %v", err)
	}

	if gen.CallCount("Speech") != 1 {
		t.Fatalf("Speech calls = %d, want auto-narration exactly once", gen.CallCount("Speech"))
	}
	if st := f.app.PlaybackStatus(); st.State != playback.StatePlaying {
		t.Errorf("playback state = %v, want playing", st.State)
	}
}

func TestTypedTurnDoesNotNarrate(t *testing.T) {
	gen := &tutor.MockGenerator{TurnChunks: []string{"Đáp án."}}
	f := newFixture(t, gen)
	signIn(t, f, "an")
	ctx := context.Background()

	if _, err := f.app.CreateSubject(ctx, tutor.Profile{Subject: "Sinh"}); err != nil {
		t.Fatalf("CreateSubject: %v", err)
	}
	if _, err := f.app.Send(ctx, "câu hỏi", nil, false, nil); err != nil {
		t.Fatalf("Send: %v", err)
	}
	if gen.CallCount("Speech") != 0 {
		t.Errorf("Speech calls = %d, want none for typed input", gen.CallCount("Speech"))
	}
}

func TestSelectSubjectStopsNarration(t *testing.T) {
	gen := &tutor.MockGenerator{}
	f := newFixture(t, gen)
	signIn(t, f, "an")
	ctx := context.Background()

	if _, err := f.app.CreateSubject(ctx, tutor.Profile{Subject: "Sinh"}); err != nil {
		t.Fatalf("CreateSubject Sinh: %v", err)
	}
	if _, err := f.app.CreateSubject(ctx, tutor.Profile{Subject: "Lý"}); err != nil {
		t.Fatalf("CreateSubject Lý: %v", err)
	}
	if err := f.app.ToggleSpeech(ctx, 0); err != nil {
		t.Fatalf("ToggleSpeech: %v", err)
	}

	if _, err := f.app.SelectSubject("Sinh"); err != nil {
		t.Fatalf("SelectSubject: %v", err)
	}
	if st := f.app.PlaybackStatus(); st.State != playback.StateIdle {
		t.Errorf("playback state = %v, want idle after subject switch", st.State)
	}
}

func TestDeleteActiveSubjectDeselects(t *testing.T) {
	f := newFixture(t, &tutor.MockGenerator{})
	signIn(t, f, "an")
	ctx := context.Background()

	if _, err := f.app.CreateSubject(ctx, tutor.Profile{Subject: "Sinh"}); err != nil {
		t.Fatalf("CreateSubject: %v", err)
	}
	if err := f.app.DeleteSubject(ctx, "Sinh"); err != nil {
		t.Fatalf("DeleteSubject: %v", err)
	}

	if _, err := f.app.ActiveSession(); err != ErrNoActiveSubject {
		t.Errorf("ActiveSession err = %v, want ErrNoActiveSubject", err)
	}
	subjects, _ := f.app.Subjects()
	if len(subjects) != 0 {
		t.Errorf("subjects = %v, want none", subjects)
	}
}

func TestInFlightTurnCommitsIntoOriginSubject(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})
	gen := &switchBlockGenerator{started: started, release: release}
	f := newFixture(t, &gen.MockGenerator)
	f.app.turns = turn.NewCoordinator(gen)
	signIn(t, f, "an")
	ctx := context.Background()

	if _, err := f.app.CreateSubject(ctx, tutor.Profile{Subject: "Sinh"}); err != nil {
		t.Fatalf("CreateSubject Sinh: %v", err)
	}
	if _, err := f.app.CreateSubject(ctx, tutor.Profile{Subject: "Lý"}); err != nil {
		t.Fatalf("CreateSubject Lý: %v", err)
	}
	if _, err := f.app.SelectSubject("Sinh"); err != nil {
		t.Fatalf("SelectSubject: %v", err)
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		if _, err := f.app.Send(ctx, "câu hỏi dài", nil, false, nil); err != nil {
			t.Errorf("Send: %v", err)
		}
	}()

	<-started
	// The learner flips to another subject while the reply streams.
	if _, err := f.app.SelectSubject("Lý"); err != nil {
		t.Fatalf("SelectSubject mid-stream: %v", err)
	}
	close(release)
	wg.Wait()

	all, err := session.NewStore(f.adapter, &gen.MockGenerator).Load(ctx, "an")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got := len(all["Sinh"].Current()); got != 3 {
		t.Errorf("origin subject conversation length = %d, want the turn committed there", got)
	}
	if got := len(all["Lý"].Current()); got != 1 {
		t.Errorf("other subject conversation length = %d, want untouched", got)
	}
}

func TestDictateSendsVoiceTurn(t *testing.T) {
	gen := &tutor.MockGenerator{TurnChunks: []string{"Đáp."}}
	adapter := store.NewMemAdapter()
	a := New(Deps{
		Auth:      auth.NewService(adapter),
		Sessions:  session.NewStore(adapter, gen),
		Turns:     turn.NewCoordinator(gen),
		Playback:  playback.NewController(gen, &playback.MemDevice{}),
		Assistant: assistant.NewService(adapter, gen),
		Dictation: &dictation.MemRecognizer{Transcripts: []string{"quang hợp là gì"}},
		Generator: gen,
	})
	ctx := context.Background()
	if err := a.Register(ctx, "an", "mk"); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if err := a.SignIn(ctx, "an", "mk"); err != nil {
		t.Fatalf("SignIn: %v", err)
	}
	if _, err := a.CreateSubject(ctx, tutor.Profile{Subject: "Sinh"}); err != nil {
		t.Fatalf("CreateSubject: %v", err)
	}

	res, err := a.Dictate(ctx, nil)
	if err != nil {
		t.Fatalf("Dictate: %v", err)
	}
	if res == nil || !res.FromVoice {
		t.Fatalf("result = %+v, want a voice turn", res)
	}
	if res.Conversation[1].Content != "quang hợp là gì" {
		t.Errorf("user message = %q", res.Conversation[1].Content)
	}
	if gen.CallCount("Speech") != 1 {
		t.Errorf("Speech calls = %d, want auto-narration", gen.CallCount("Speech"))
	}

	// An exhausted recognizer yields no turn.
	if res, err := a.Dictate(ctx, nil); err != nil || res != nil {
		t.Errorf("Dictate on silence = (%+v, %v), want (nil, nil)", res, err)
	}
}

func TestAssistantIndependentOfSubjects(t *testing.T) {
	gen := &tutor.MockGenerator{AssistantChunks: []string{"giúp gì?"}}
	f := newFixture(t, gen)
	signIn(t, f, "an")
	ctx := context.Background()

	// No subject selected; the helper chat still works.
	history, err := f.app.AssistantHistory(ctx)
	if err != nil {
		t.Fatalf("AssistantHistory: %v", err)
	}
	updated, err := f.app.AssistantSend(ctx, history, "chào", nil)
	if err != nil {
		t.Fatalf("AssistantSend: %v", err)
	}
	if len(updated) != 3 {
		t.Fatalf("history = %d messages, want 3", len(updated))
	}
}

// switchBlockGenerator blocks the first StreamTurn until released.
type switchBlockGenerator struct {
	tutor.MockGenerator
	started chan struct{}
	release chan struct{}
	once    sync.Once
}

func (g *switchBlockGenerator) StreamTurn(ctx context.Context, history []tutor.Message, newText string, profile tutor.Profile, image *tutor.InlineImage) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		g.once.Do(func() { close(g.started) })
		<-g.release
		yield("đáp", nil)
	}
}
