package turn

import (
	"strings"

	"github.com/abhisek/giasu/internal/tutor"
)

// splitFollowups scans accumulated stream text for the follow-up marker.
// Text before the marker becomes the visible answer; each non-blank line
// after it, with a leading "- " stripped, becomes one suggestion. Without
// the marker the text passes through untouched.
func splitFollowups(text string) (content string, followups []string) {
	idx := strings.Index(text, tutor.FollowupSeparator)
	if idx < 0 {
		return text, nil
	}

	content = strings.TrimSpace(text[:idx])
	block := strings.TrimSpace(text[idx+len(tutor.FollowupSeparator):])

	for _, line := range strings.Split(block, "\n") {
		line = strings.TrimSpace(line)
		line = strings.TrimPrefix(line, "- ")
		if line == "" {
			continue
		}
		followups = append(followups, line)
	}
	return content, followups
}
