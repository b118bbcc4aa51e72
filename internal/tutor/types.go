package tutor

// Role is the message sender role.
type Role string

const (
	RoleUser  Role = "user"
	RoleModel Role = "model"
)

// InlineImage is a base64-encoded image attached to a user message.
type InlineImage struct {
	Base64   string `json:"base64"`
	MIMEType string `json:"mimeType"`
}

// Message is a single entry in a conversation. A model message with empty
// content and no image is the in-flight placeholder during streaming.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`

	// UserImage is attached by the learner, e.g. a photo of an exercise.
	UserImage *InlineImage `json:"userImage,omitempty"`

	// ModelImageURL is a data URL for an image the tutor generated.
	ModelImageURL string `json:"modelImageUrl,omitempty"`

	// SuggestedFollowups are questions the learner may ask next, extracted
	// from the end of a streamed answer.
	SuggestedFollowups []string `json:"suggestedQuestions,omitempty"`
}

// IsPlaceholder reports whether m is the empty streaming placeholder.
func (m Message) IsPlaceholder() bool {
	return m.Role == RoleModel && m.Content == "" && m.ModelImageURL == ""
}

// Conversation is an ordered message sequence. Append-only, except that the
// last message's content is mutated in place while a turn is streaming.
type Conversation []Message

// Clone returns a deep-enough copy: the slice and message values are copied
// so in-place mutation of the copy never aliases the original.
func (c Conversation) Clone() Conversation {
	out := make(Conversation, len(c))
	copy(out, c)
	return out
}

// Profile describes one subject the learner is studying. Subject is the
// natural key within a user's session set. Only Voice changes after creation.
type Profile struct {
	Username string `json:"username"`
	Subject  string `json:"subject"`
	Goal     string `json:"goal"`
	Level    string `json:"level"`
	Voice    string `json:"voice"`
}

// Session is the persisted state for one subject.
type Session struct {
	Profile                  Profile        `json:"profile"`
	Conversations            []Conversation `json:"conversations"`
	CurrentConversationIndex int            `json:"currentConversationIndex"`

	// Messages is the pre-multi-conversation on-disk shape. Populated only
	// when decoding legacy blobs; the migration pass folds it into
	// Conversations and clears it.
	Messages Conversation `json:"messages,omitempty"`
}

// Current returns the active conversation.
func (s *Session) Current() Conversation {
	return s.Conversations[s.CurrentConversationIndex]
}

// AllSessions maps subject name to session, one value per signed-in user.
type AllSessions map[string]*Session

// QuizQuestion is one multiple-choice question with four options.
type QuizQuestion struct {
	Question    string   `json:"question"`
	Options     []string `json:"options"`
	Answer      string   `json:"answer"`
	Explanation string   `json:"explanation"`
}

// Quiz is the fixed-schema object returned by the /quiz command.
type Quiz struct {
	Questions []QuizQuestion `json:"questions"`
}

// RefineAction selects how Refine rewrites the learner's draft input.
type RefineAction string

const (
	RefineFixGrammar      RefineAction = "fix_grammar"
	RefineImproveWriting  RefineAction = "improve_writing"
	RefineTranslate       RefineAction = "translate_en"
	RefineSuggestQuestion RefineAction = "suggest_question"
)
