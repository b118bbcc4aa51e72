package tutor

// Voice is one prebuilt TTS voice offered to the learner.
type Voice struct {
	ID   string
	Name string
}

// SupportedVoices is the narration voice catalog. Order matters: the first
// entry is the default assigned to profiles saved before voice selection
// existed.
var SupportedVoices = []Voice{
	{ID: "Kore", Name: "Giọng Nữ - Thân thiện"},
	{ID: "Zephyr", Name: "Giọng Nữ - Trầm ấm"},
	{ID: "Puck", Name: "Giọng Nam - Rõ ràng"},
	{ID: "Charon", Name: "Giọng Nam - Trầm"},
	{ID: "Fenrir", Name: "Giọng Nam - Ấm áp"},
}

// DefaultVoice returns the catalog's first entry.
func DefaultVoice() string {
	return SupportedVoices[0].ID
}

// ValidVoice reports whether id is in the catalog.
func ValidVoice(id string) bool {
	for _, v := range SupportedVoices {
		if v.ID == id {
			return true
		}
	}
	return false
}
