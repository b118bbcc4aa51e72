// Package app wires the tutoring core together: auth gates everything,
// sessions hold state, the coordinator runs turns, playback narrates
// replies. It owns the signed-in user's in-memory session mapping.
package app

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/abhisek/giasu/internal/assistant"
	"github.com/abhisek/giasu/internal/auth"
	"github.com/abhisek/giasu/internal/dictation"
	"github.com/abhisek/giasu/internal/playback"
	"github.com/abhisek/giasu/internal/session"
	"github.com/abhisek/giasu/internal/turn"
	"github.com/abhisek/giasu/internal/tutor"
)

// ErrNotSignedIn is returned when an operation needs a current user.
var ErrNotSignedIn = errors.New("chưa đăng nhập")

// ErrNoActiveSubject is returned when an operation needs a selected subject.
var ErrNoActiveSubject = errors.New("chưa chọn môn học")

// App is the top-level orchestrator. All methods are safe for concurrent
// use; a streaming turn holds no App lock while its chunks arrive.
type App struct {
	auth     *auth.Service
	sessions *session.Store
	turns    *turn.Coordinator
	playback *playback.Controller
	helper   *assistant.Service
	dict     dictation.Recognizer
	gen      tutor.Generator

	mu      sync.Mutex
	user    string
	all     tutor.AllSessions
	subject string
}

// Deps collects the collaborators New needs.
type Deps struct {
	Auth      *auth.Service
	Sessions  *session.Store
	Turns     *turn.Coordinator
	Playback  *playback.Controller
	Assistant *assistant.Service
	Dictation dictation.Recognizer
	Generator tutor.Generator
}

// New creates an App. Nothing is loaded until SignIn or Resume.
func New(d Deps) *App {
	return &App{
		auth:     d.Auth,
		sessions: d.Sessions,
		turns:    d.Turns,
		playback: d.Playback,
		helper:   d.Assistant,
		dict:     d.Dictation,
		gen:      d.Generator,
	}
}

// Register creates an account without signing it in.
func (a *App) Register(ctx context.Context, username, password string) error {
	return a.auth.Register(ctx, username, password)
}

// SignIn authenticates, then loads and migrates the user's sessions.
func (a *App) SignIn(ctx context.Context, username, password string) error {
	if err := a.auth.Login(ctx, username, password); err != nil {
		return err
	}
	all, err := a.sessions.Load(ctx, username)
	if err != nil {
		return err
	}

	a.mu.Lock()
	a.user = username
	a.all = all
	a.subject = ""
	a.mu.Unlock()
	return nil
}

// Resume picks up a previously signed-in user, if any. It reports whether
// a session was resumed.
func (a *App) Resume(ctx context.Context) (bool, error) {
	username, ok, err := a.auth.CurrentUser(ctx)
	if err != nil || !ok {
		return false, err
	}
	all, err := a.sessions.Load(ctx, username)
	if err != nil {
		return false, err
	}

	a.mu.Lock()
	a.user = username
	a.all = all
	a.subject = ""
	a.mu.Unlock()
	return true, nil
}

// SignOut stops narration, clears the current user and drops all loaded
// state. An in-flight turn still commits: it captured its user and subject
// when it started.
func (a *App) SignOut(ctx context.Context) error {
	a.playback.Stop()
	if err := a.auth.Logout(ctx); err != nil {
		return err
	}

	a.mu.Lock()
	a.user = ""
	a.all = nil
	a.subject = ""
	a.mu.Unlock()
	return nil
}

// User returns the signed-in username, or ok=false.
func (a *App) User() (string, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.user, a.user != ""
}

// Subjects lists the user's subjects in lexical order.
func (a *App) Subjects() ([]string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.user == "" {
		return nil, ErrNotSignedIn
	}

	subjects := make([]string, 0, len(a.all))
	for s := range a.all {
		subjects = append(subjects, s)
	}
	sort.Strings(subjects)
	return subjects, nil
}

// CreateSubject starts tutoring a new subject and selects it.
func (a *App) CreateSubject(ctx context.Context, profile tutor.Profile) (*tutor.Session, error) {
	a.mu.Lock()
	user, all := a.user, a.all
	a.mu.Unlock()
	if user == "" {
		return nil, ErrNotSignedIn
	}

	profile.Username = user
	sess, err := a.sessions.Create(ctx, user, all, profile)
	if err != nil {
		return nil, err
	}

	a.mu.Lock()
	a.subject = profile.Subject
	a.mu.Unlock()
	return sess, nil
}

// SelectSubject makes subject the active one and stops any narration left
// over from the previous subject.
func (a *App) SelectSubject(subject string) (*tutor.Session, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.user == "" {
		return nil, ErrNotSignedIn
	}
	sess, ok := a.all[subject]
	if !ok {
		return nil, &session.ErrNoSubject{Subject: subject}
	}

	a.playback.Stop()
	a.subject = subject
	return sess, nil
}

// ActiveSession returns the selected subject's session.
func (a *App) ActiveSession() (*tutor.Session, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.activeLocked()
}

// DeleteSubject removes the subject and its entire history. Deleting the
// active subject deselects it and stops narration.
func (a *App) DeleteSubject(ctx context.Context, subject string) error {
	a.mu.Lock()
	user, all := a.user, a.all
	active := a.subject == subject
	a.mu.Unlock()
	if user == "" {
		return ErrNotSignedIn
	}

	if err := a.sessions.Delete(ctx, user, all, subject); err != nil {
		return err
	}

	if active {
		a.playback.Stop()
		a.mu.Lock()
		if a.subject == subject {
			a.subject = ""
		}
		a.mu.Unlock()
	}
	return nil
}

// SetVoice changes the active subject's narration voice. Whatever is
// playing was synthesized with the old voice, so it stops.
func (a *App) SetVoice(ctx context.Context, voice string) error {
	a.mu.Lock()
	user, all, subject := a.user, a.all, a.subject
	a.mu.Unlock()
	if user == "" {
		return ErrNotSignedIn
	}
	if subject == "" {
		return ErrNoActiveSubject
	}

	if err := a.sessions.SetVoice(ctx, user, all, subject, voice); err != nil {
		return err
	}
	a.playback.Stop()
	return nil
}

// Send runs one turn against the active subject's current conversation and
// commits the result. The user and subject are captured up front: if the
// learner switches subjects or signs out mid-stream, the turn finishes and
// persists into the entry it started from. A reply to dictated input is
// narrated automatically on success.
func (a *App) Send(ctx context.Context, text string, image *tutor.InlineImage, fromVoice bool, observer turn.Observer) (*turn.Result, error) {
	a.mu.Lock()
	user, all, subject := a.user, a.all, a.subject
	a.mu.Unlock()
	if user == "" {
		return nil, ErrNotSignedIn
	}
	if subject == "" {
		return nil, ErrNoActiveSubject
	}
	sess, ok := all[subject]
	if !ok {
		return nil, &session.ErrNoSubject{Subject: subject}
	}

	a.playback.Stop()

	in := turn.Input{
		Conversation: sess.Current(),
		Text:         text,
		Image:        image,
		Profile:      sess.Profile,
		FromVoice:    fromVoice,
	}
	res, err := a.turns.StartTurn(ctx, turnKey(user, subject), in, observer)
	if err != nil {
		return nil, err
	}

	if err := a.sessions.CommitConversation(ctx, user, all, subject, res.Conversation); err != nil {
		return nil, err
	}

	if res.FromVoice && res.Streamed && !res.Failed {
		a.narrate(ctx, sess.Profile.Voice, res.Conversation)
	}
	return res, nil
}

// Dictate captures one utterance and, if anything was recognized, sends it
// as a voice-originated turn.
func (a *App) Dictate(ctx context.Context, observer turn.Observer) (*turn.Result, error) {
	transcript, err := a.dict.Listen(ctx)
	if err != nil {
		return nil, fmt.Errorf("dictation: %w", err)
	}
	if transcript == "" {
		return nil, nil
	}
	return a.Send(ctx, transcript, nil, true, observer)
}

// NewConversation starts a fresh conversation in the active subject.
func (a *App) NewConversation(ctx context.Context) (*tutor.Session, error) {
	a.mu.Lock()
	user, all, subject := a.user, a.all, a.subject
	a.mu.Unlock()
	if user == "" {
		return nil, ErrNotSignedIn
	}
	if subject == "" {
		return nil, ErrNoActiveSubject
	}

	a.playback.Stop()
	return a.sessions.NewConversation(ctx, user, all, subject)
}

// ToggleSpeech toggles narration of the message at index in the active
// conversation.
func (a *App) ToggleSpeech(ctx context.Context, index int) error {
	a.mu.Lock()
	sess, err := a.activeLocked()
	a.mu.Unlock()
	if err != nil {
		return err
	}

	conv := sess.Current()
	if index < 0 || index >= len(conv) {
		return fmt.Errorf("no message at index %d", index)
	}
	return a.playback.Toggle(ctx, conv[index].Content, index, sess.Profile.Voice)
}

// SetAudioEnabled flips the global narration switch.
func (a *App) SetAudioEnabled(enabled bool) {
	a.playback.SetEnabled(enabled)
}

// PlaybackStatus exposes the narration state machine for display.
func (a *App) PlaybackStatus() playback.Status {
	return a.playback.Status()
}

// Refine rewrites draft input before it is sent.
func (a *App) Refine(ctx context.Context, text string, action tutor.RefineAction) (string, error) {
	return a.gen.Refine(ctx, text, action)
}

// AssistantHistory loads the helper chat history for the signed-in user.
func (a *App) AssistantHistory(ctx context.Context) ([]tutor.Message, error) {
	a.mu.Lock()
	user := a.user
	a.mu.Unlock()
	if user == "" {
		return nil, ErrNotSignedIn
	}
	return a.helper.Load(ctx, user)
}

// AssistantSend runs one helper chat exchange and persists the history.
func (a *App) AssistantSend(ctx context.Context, history []tutor.Message, text string, observer func([]tutor.Message)) ([]tutor.Message, error) {
	a.mu.Lock()
	user := a.user
	a.mu.Unlock()
	if user == "" {
		return nil, ErrNotSignedIn
	}
	return a.helper.Send(ctx, user, history, text, observer)
}

// narrate plays the final model message of a completed voice turn. A
// playback failure never fails the turn.
func (a *App) narrate(ctx context.Context, voice string, conv tutor.Conversation) {
	last := len(conv) - 1
	if last < 0 || conv[last].Role != tutor.RoleModel || conv[last].Content == "" {
		return
	}
	_ = a.playback.Toggle(ctx, conv[last].Content, last, voice)
}

func (a *App) activeLocked() (*tutor.Session, error) {
	if a.user == "" {
		return nil, ErrNotSignedIn
	}
	if a.subject == "" {
		return nil, ErrNoActiveSubject
	}
	sess, ok := a.all[a.subject]
	if !ok {
		return nil, &session.ErrNoSubject{Subject: a.subject}
	}
	return sess, nil
}

func turnKey(user, subject string) string {
	return user + "/" + subject
}
