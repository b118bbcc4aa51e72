// Package session owns the per-user mapping from subject to tutoring
// session. Every mutation is a full commit: replace one subject entry,
// then persist the whole mapping as a single blob.
package session

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/abhisek/giasu/internal/store"
	"github.com/abhisek/giasu/internal/tutor"
)

// ErrSubjectExists is returned by Create for a subject already in the set.
type ErrSubjectExists struct {
	Subject string
}

func (e *ErrSubjectExists) Error() string {
	return fmt.Sprintf("subject %q already exists", e.Subject)
}

// ErrNoSubject is returned when an operation names an unknown subject.
type ErrNoSubject struct {
	Subject string
}

func (e *ErrNoSubject) Error() string {
	return fmt.Sprintf("no session for subject %q", e.Subject)
}

// Store loads, migrates, mutates and persists AllSessions blobs.
type Store struct {
	adapter store.Adapter
	gen     tutor.Generator
}

// NewStore creates a session store over the given adapter. gen produces
// the welcome turn for new sessions and conversations.
func NewStore(adapter store.Adapter, gen tutor.Generator) *Store {
	return &Store{adapter: adapter, gen: gen}
}

// Load reads the user's session mapping. An absent blob yields an empty
// mapping. A blob that does not parse at all is not recovered field by
// field: both the current and the legacy keys are removed and the user
// starts empty. A present blob is migrated (see migrate.go) before return.
func (s *Store) Load(ctx context.Context, user string) (tutor.AllSessions, error) {
	raw, ok, err := s.adapter.Get(ctx, store.SessionsKey(user))
	if err != nil {
		return nil, fmt.Errorf("load sessions: %w", err)
	}
	if !ok {
		return tutor.AllSessions{}, nil
	}

	var all tutor.AllSessions
	if err := json.Unmarshal([]byte(raw), &all); err != nil {
		slog.Warn("stored sessions unreadable, starting empty", "user", user, "error", err)
		// Fail safe to empty: discard both on-disk shapes.
		if rmErr := s.adapter.Remove(ctx, store.SessionsLegacyKey(user)); rmErr != nil {
			return nil, fmt.Errorf("remove legacy sessions: %w", rmErr)
		}
		if rmErr := s.adapter.Remove(ctx, store.SessionsKey(user)); rmErr != nil {
			return nil, fmt.Errorf("remove sessions: %w", rmErr)
		}
		return tutor.AllSessions{}, nil
	}

	for subject, sess := range all {
		migrate(subject, sess)
	}
	return all, nil
}

// Save persists the entire mapping as one write. Writing the same mapping
// twice stores the same blob.
func (s *Store) Save(ctx context.Context, user string, all tutor.AllSessions) error {
	blob, err := json.Marshal(all)
	if err != nil {
		return fmt.Errorf("encode sessions: %w", err)
	}
	if err := s.adapter.Set(ctx, store.SessionsKey(user), string(blob)); err != nil {
		return fmt.Errorf("save sessions: %w", err)
	}
	return nil
}

// Create adds a session for a new subject: the profile plus one
// conversation holding the generated welcome turn. A duplicate subject is
// rejected.
func (s *Store) Create(ctx context.Context, user string, all tutor.AllSessions, profile tutor.Profile) (*tutor.Session, error) {
	if _, exists := all[profile.Subject]; exists {
		return nil, &ErrSubjectExists{Subject: profile.Subject}
	}
	if profile.Voice == "" {
		profile.Voice = tutor.DefaultVoice()
	}

	welcome, err := s.gen.InitialMessage(ctx, profile)
	if err != nil {
		return nil, fmt.Errorf("welcome turn: %w", err)
	}

	sess := &tutor.Session{
		Profile: profile,
		Conversations: []tutor.Conversation{
			{{Role: tutor.RoleModel, Content: welcome}},
		},
		CurrentConversationIndex: 0,
	}

	all[profile.Subject] = sess
	if err := s.Save(ctx, user, all); err != nil {
		return nil, err
	}
	return sess, nil
}

// CommitConversation replaces the conversation at the session's current
// index with conv and persists the whole mapping. This is the single
// write path for completed turns.
func (s *Store) CommitConversation(ctx context.Context, user string, all tutor.AllSessions, subject string, conv tutor.Conversation) error {
	sess, ok := all[subject]
	if !ok {
		return &ErrNoSubject{Subject: subject}
	}
	sess.Conversations[sess.CurrentConversationIndex] = conv
	return s.Save(ctx, user, all)
}

// NewConversation appends a fresh conversation (seeded with a generated
// welcome turn) to the subject's session and makes it current.
func (s *Store) NewConversation(ctx context.Context, user string, all tutor.AllSessions, subject string) (*tutor.Session, error) {
	sess, ok := all[subject]
	if !ok {
		return nil, &ErrNoSubject{Subject: subject}
	}

	welcome, err := s.gen.InitialMessage(ctx, sess.Profile)
	if err != nil {
		return nil, fmt.Errorf("welcome turn: %w", err)
	}

	sess.Conversations = append(sess.Conversations, tutor.Conversation{
		{Role: tutor.RoleModel, Content: welcome},
	})
	sess.CurrentConversationIndex = len(sess.Conversations) - 1

	if err := s.Save(ctx, user, all); err != nil {
		return nil, err
	}
	return sess, nil
}

// SetVoice changes the narration voice on the subject's profile.
func (s *Store) SetVoice(ctx context.Context, user string, all tutor.AllSessions, subject, voice string) error {
	sess, ok := all[subject]
	if !ok {
		return &ErrNoSubject{Subject: subject}
	}
	if !tutor.ValidVoice(voice) {
		return fmt.Errorf("unknown voice %q", voice)
	}
	sess.Profile.Voice = voice
	return s.Save(ctx, user, all)
}

// Delete removes the subject's session entirely and persists.
func (s *Store) Delete(ctx context.Context, user string, all tutor.AllSessions, subject string) error {
	if _, ok := all[subject]; !ok {
		return &ErrNoSubject{Subject: subject}
	}
	delete(all, subject)
	return s.Save(ctx, user, all)
}
