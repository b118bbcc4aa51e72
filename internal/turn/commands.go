package turn

import "strings"

// Kind is the route a user input takes through the coordinator.
type Kind int

const (
	// KindChat is the default streaming conversational turn.
	KindChat Kind = iota
	// KindQuiz generates a multiple-choice quiz from the history.
	KindQuiz
	// KindImage generates an illustration from the command remainder.
	KindImage
	// KindImageNoPrompt is /image with an empty remainder: no generator
	// call, just a prompt-request message.
	KindImageNoPrompt
)

// Route classifies trimmed, case-folded user input. Only the exact "/quiz"
// token routes to quiz generation; "/image" matches as a prefix, with the
// remainder as the illustration prompt.
func Route(input string) (Kind, string) {
	trimmed := strings.TrimSpace(input)
	lower := strings.ToLower(trimmed)

	switch {
	case lower == "/quiz":
		return KindQuiz, ""
	case strings.HasPrefix(lower, "/image"):
		prompt := strings.TrimSpace(trimmed[len("/image"):])
		if prompt == "" {
			return KindImageNoPrompt, ""
		}
		return KindImage, prompt
	}
	return KindChat, trimmed
}
