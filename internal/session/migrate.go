package session

import (
	"fmt"

	"github.com/abhisek/giasu/internal/tutor"
)

// migrate upgrades one session entry from older on-disk shapes, in order:
//
//  1. legacy flat message list → sole conversation, index 0
//  2. missing/empty conversations → synthesized welcome-back turn
//  3. out-of-range conversation index → clamped into range
//  4. unset voice → catalog default
//
// Running it on already-current data changes nothing.
func migrate(subject string, sess *tutor.Session) {
	if sess.Messages != nil {
		sess.Conversations = []tutor.Conversation{sess.Messages}
		sess.CurrentConversationIndex = 0
		sess.Messages = nil
	}

	if len(sess.Conversations) == 0 {
		sess.Conversations = []tutor.Conversation{
			{{Role: tutor.RoleModel, Content: welcomeBackMessage(subject)}},
		}
		sess.CurrentConversationIndex = 0
	}

	// A blob can parse cleanly yet carry an index past its conversations,
	// for instance after a partial write. Current() must always be safe
	// once a session has loaded.
	if sess.CurrentConversationIndex < 0 || sess.CurrentConversationIndex >= len(sess.Conversations) {
		sess.CurrentConversationIndex = len(sess.Conversations) - 1
	}

	if sess.Profile.Voice == "" {
		sess.Profile.Voice = tutor.DefaultVoice()
	}
}

// welcomeBackMessage is the synthesized greeting for a session whose
// conversation history was lost to an older format.
func welcomeBackMessage(subject string) string {
	return fmt.Sprintf("Chào mừng bạn quay trở lại với môn %s! Chúng ta tiếp tục từ đâu đây?", subject)
}
