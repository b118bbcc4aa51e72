package tutor

import "github.com/abhisek/giasu/internal/llm"

// quizSchema is the structured-output contract for /quiz generation.
// Providers enforce it natively where they can; responses are validated
// against it again before being accepted.
func quizSchema() *llm.Schema {
	return &llm.Schema{
		Name:        "tutor-quiz",
		Description: "Bài kiểm tra trắc nghiệm ngắn dựa trên cuộc trò chuyện.",
		Definition: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"questions": map[string]any{
					"type":        "array",
					"description": "Một danh sách các câu hỏi trắc nghiệm.",
					"items": map[string]any{
						"type": "object",
						"properties": map[string]any{
							"question": map[string]any{
								"type":        "string",
								"description": "Nội dung câu hỏi.",
							},
							"options": map[string]any{
								"type":        "array",
								"description": "Danh sách 4 lựa chọn.",
								"items":       map[string]any{"type": "string"},
								"minItems":    4,
								"maxItems":    4,
							},
							"answer": map[string]any{
								"type":        "string",
								"description": "Đáp án đúng cho câu hỏi.",
							},
							"explanation": map[string]any{
								"type":        "string",
								"description": "Giải thích ngắn gọn tại sao đáp án lại đúng.",
							},
						},
						"required": []any{"question", "options", "answer", "explanation"},
					},
				},
			},
			"required": []any{"questions"},
		},
	}
}
