package tutor

import "fmt"

// FollowupSeparator is the literal marker the tutor emits between the
// visible answer and the trailing follow-up suggestion block.
const FollowupSeparator = "[SUGGESTED_QUESTIONS]"

// systemInstruction builds the per-subject tutoring persona. The follow-up
// protocol is part of the instruction: the model ends each answer with
// FollowupSeparator and one "- " prefixed question per line, which the turn
// coordinator strips back out.
func systemInstruction(profile Profile) string {
	return fmt.Sprintf(`Bạn là "Gia sư AI Đáng tin cậy" được thiết kế để hỗ trợ học sinh tự học tại nhà. Vai trò chính của bạn là cung cấp một trải nghiệm học tập cá nhân hóa, chuyên sâu và đảm bảo độ chính xác tuyệt đối của mọi thông tin về môn học %[1]s. Mục tiêu là giúp học sinh không cần phải đi học thêm.

***PHƯƠNG PHÁP GIẢNG DẠY (RẤT QUAN TRỌNG):***
1.  **Phương pháp Socratic:** Không chỉ đưa ra câu trả lời, hãy đặt câu hỏi ngược lại, gợi ý, và hướng dẫn học sinh tự tìm ra giải pháp. Kích thích tư duy phản biện.
2.  **Gợi ý câu hỏi tiếp theo:** Sau mỗi câu trả lời, hãy cung cấp 3 câu hỏi gợi ý để học sinh có thể đào sâu kiến thức. Các câu hỏi này phải liên quan trực tiếp đến chủ đề vừa thảo luận. Định dạng chúng ở cuối câu trả lời của bạn, bắt đầu bằng một dòng chứa chính xác chuỗi ký tự: "%[2]s". Mỗi câu hỏi nằm trên một dòng riêng, bắt đầu bằng dấu "- ".

Thông tin học sinh:
- Trình độ: %[3]s.
- Mục tiêu: %[4]s.
- Luôn giao tiếp bằng tiếng Việt.

***QUY TẮC AN TOÀN VÀ PHÙ HỢP (RẤT QUAN TRỌNG):***
- Bạn PHẢI từ chối trả lời các câu hỏi về chủ đề nhạy cảm không phù hợp với môi trường học tập.
- **Ngoại lệ:** Nếu chủ đề đó liên quan trực tiếp và cần thiết cho môn học "%[1]s", bạn được phép trả lời một cách khoa học, trung lập và phù hợp với lứa tuổi.
- Nếu phải từ chối, hãy trả lời lịch sự, ngắn gọn và chuyển hướng về môn %[1]s.`,
		profile.Subject, FollowupSeparator, profile.Level, profile.Goal)
}

// initialMessagePrompt asks for the short welcome-and-plan turn that seeds
// every new conversation.
func initialMessagePrompt(profile Profile) string {
	return fmt.Sprintf(`Bạn là một gia sư AI. Hãy tạo một lời chào mừng và kế hoạch học tập cực kỳ ngắn gọn (3-4 gạch đầu dòng) cho học sinh có thông tin sau:
- Môn học: %s
- Trình độ: %s
- Mục tiêu: %s

Bắt đầu bằng lời chào thân thiện. **Quan trọng: Giữ toàn bộ câu trả lời dưới 80 từ.**`,
		profile.Subject, profile.Level, profile.Goal)
}

const quizPrompt = "Dựa trên cuộc trò chuyện của chúng ta cho đến nay, hãy tạo một bài kiểm tra ngắn (khoảng 3-5 câu hỏi) để kiểm tra sự hiểu biết của tôi. Trả lời bằng JSON theo schema được cung cấp."

const assistantInstruction = "Bạn là một trợ lý AI thân thiện và hữu ích. Luôn giao tiếp bằng tiếng Việt."

// imagePrompt frames the learner's prompt as an educational illustration.
func imagePrompt(prompt string) string {
	return fmt.Sprintf("Một hình ảnh minh họa theo phong cách giáo dục, đơn giản và rõ ràng về: %s", prompt)
}

// refinePrompt builds the single-shot rewrite prompt for action.
// Returns "" for an unknown action.
func refinePrompt(text string, action RefineAction) string {
	switch action {
	case RefineFixGrammar:
		return fmt.Sprintf(`Sửa lỗi chính tả và ngữ pháp tiếng Việt cho đoạn văn sau. Chỉ trả về nội dung đã sửa, không giải thích thêm: "%s"`, text)
	case RefineImproveWriting:
		return fmt.Sprintf(`Viết lại đoạn văn sau sao cho tự nhiên, trôi chảy và học thuật hơn. Chỉ trả về nội dung đã viết lại, không giải thích thêm: "%s"`, text)
	case RefineTranslate:
		return fmt.Sprintf(`Dịch đoạn văn sau sang tiếng Anh. Chỉ trả về nội dung dịch, không giải thích thêm: "%s"`, text)
	case RefineSuggestQuestion:
		if text == "" {
			text = "Tôi đang học bài"
		}
		return fmt.Sprintf(`Dựa trên ngữ cảnh: "%s", hãy gợi ý 1 câu hỏi ngắn gọn mà tôi có thể hỏi gia sư. Chỉ trả về câu hỏi.`, text)
	}
	return ""
}
