package store

import "fmt"

// Key layout: one sessions blob and one assistant-history blob per user,
// plus the shared user registry. SessionsLegacyKey is the pre-multi-subject
// key; it is only ever read (and removed) by the corruption fail-safe.
const (
	usersKey             = "tutorUsers"
	sessionsKeyFmt       = "tutorSessions_%s"
	sessionsLegacyKeyFmt = "tutorSessionHistory_%s"
	assistantHistoryFmt  = "chatbotHistory_%s"
)

// UsersKey returns the key for the shared user registry blob.
func UsersKey() string { return usersKey }

// SessionsKey returns the per-user key holding the AllSessions blob.
func SessionsKey(user string) string { return fmt.Sprintf(sessionsKeyFmt, user) }

// SessionsLegacyKey returns the obsolete single-conversation history key.
func SessionsLegacyKey(user string) string { return fmt.Sprintf(sessionsLegacyKeyFmt, user) }

// AssistantHistoryKey returns the per-user key for the helper chat history.
func AssistantHistoryKey(user string) string { return fmt.Sprintf(assistantHistoryFmt, user) }
