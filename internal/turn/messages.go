package turn

// Fixed model-message texts the coordinator appends on non-streaming paths.
const (
	// apologyMessage replaces the placeholder when generation fails.
	apologyMessage = "Rất tiếc, tôi đang gặp sự cố. Vui lòng thử lại sau."

	// quizLeadIn is appended before the quiz is handed to the caller.
	quizLeadIn = "Tuyệt vời! Dưới đây là một bài kiểm tra nhanh dành cho bạn:"

	// imagePromptRequest answers a bare /image command.
	imagePromptRequest = "Vui lòng cung cấp mô tả cho hình ảnh bạn muốn tạo. Ví dụ: `/image một tế bào thực vật`"
)
