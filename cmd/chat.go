package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/giasu/internal/app"
	"github.com/abhisek/giasu/internal/assistant"
	"github.com/abhisek/giasu/internal/auth"
	"github.com/abhisek/giasu/internal/llm"
	"github.com/abhisek/giasu/internal/playback"
	"github.com/abhisek/giasu/internal/session"
	"github.com/abhisek/giasu/internal/store"
	"github.com/abhisek/giasu/internal/turn"
	"github.com/abhisek/giasu/internal/tutor"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start a tutoring session",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runChat(cmd)
	},
}

// runChat opens the store, builds the dependency graph, and drives the
// line-oriented session loop.
func runChat(cmd *cobra.Command) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	dbPath, err := resolveDBPath(cmd)
	if err != nil {
		return fmt.Errorf("resolve DB path: %w", err)
	}
	st, err := store.Open(dbPath)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.Close()

	cfg := llm.ConfigFromEnv()
	if cfg.Validate() != nil {
		discovered, ok := llm.DiscoverConfig()
		if !ok {
			return errors.New("no LLM provider configured: set GIASU_GEMINI_API_KEY (or GEMINI_API_KEY, OPENAI_API_KEY, ANTHROPIC_API_KEY)")
		}
		cfg = discovered
	}

	primary, err := llm.NewProvider(ctx, cfg)
	if err != nil {
		return fmt.Errorf("build provider: %w", err)
	}
	fast, err := llm.NewProvider(ctx, cfg.Fast())
	if err != nil {
		return fmt.Errorf("build fast provider: %w", err)
	}
	media, hasMedia := llm.Media(primary)
	if !hasMedia {
		fmt.Fprintln(os.Stderr, "Provider has no image/speech support; /image and narration are unavailable.")
	}

	// stdin has one reader; dictation shares the session loop's scanner.
	in := bufio.NewScanner(os.Stdin)

	gen := tutor.NewService(primary, fast, media)
	a := app.New(app.Deps{
		Auth:      auth.NewService(st),
		Sessions:  session.NewStore(st, gen),
		Turns:     turn.NewCoordinator(gen),
		Playback:  playback.NewController(gen, &playback.ExecDevice{}),
		Assistant: assistant.NewService(st, gen),
		Dictation: &scannerRecognizer{in: in},
		Generator: gen,
	})
	if !hasMedia {
		a.SetAudioEnabled(false)
	}

	return sessionLoop(ctx, a, in)
}

// scannerRecognizer reads one typed line as a finished utterance, so the
// reply still narrates like dictated input.
type scannerRecognizer struct {
	in *bufio.Scanner
}

func (s *scannerRecognizer) Listen(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if !s.in.Scan() {
		return "", s.in.Err()
	}
	return strings.TrimSpace(s.in.Text()), nil
}

// sessionLoop signs the learner in, selects a subject, then relays input to
// the core until EOF or :quit.
func sessionLoop(ctx context.Context, a *app.App, in *bufio.Scanner) error {
	if err := signIn(ctx, a, in); err != nil {
		return err
	}
	if err := pickSubject(ctx, a, in); err != nil {
		return err
	}
	printConversation(a)

	for {
		fmt.Print("> ")
		if !in.Scan() {
			return in.Err()
		}
		line := strings.TrimSpace(in.Text())
		if line == "" {
			continue
		}

		switch {
		case line == ":quit":
			return nil
		case line == ":new":
			if _, err := a.NewConversation(ctx); err != nil {
				fmt.Println("Lỗi:", err)
				continue
			}
			printConversation(a)
		case line == ":subjects":
			if err := pickSubject(ctx, a, in); err != nil {
				return err
			}
			printConversation(a)
		case strings.HasPrefix(line, ":voice"):
			changeVoice(ctx, a, strings.TrimSpace(strings.TrimPrefix(line, ":voice")))
		case line == ":mic":
			fmt.Print("(nói) ")
			res, err := a.Dictate(ctx, nil)
			if err != nil {
				fmt.Println("Lỗi:", err)
				continue
			}
			if res != nil {
				printResult(res)
			}
		case line == ":logout":
			if err := a.SignOut(ctx); err != nil {
				return err
			}
			if err := signIn(ctx, a, in); err != nil {
				return err
			}
			if err := pickSubject(ctx, a, in); err != nil {
				return err
			}
			printConversation(a)
		default:
			send(ctx, a, line)
		}
	}
}

func signIn(ctx context.Context, a *app.App, in *bufio.Scanner) error {
	if ok, err := a.Resume(ctx); err != nil {
		return err
	} else if ok {
		user, _ := a.User()
		fmt.Printf("Chào mừng trở lại, %s!\n", user)
		return nil
	}

	for {
		username := ask(in, "Tên đăng nhập: ")
		password := ask(in, "Mật khẩu: ")
		if username == "" && password == "" {
			return errors.New("đã hủy đăng nhập")
		}

		err := a.SignIn(ctx, username, password)
		if err == nil {
			return nil
		}

		var notFound *auth.ErrUserNotFound
		if errors.As(err, &notFound) {
			if ask(in, "Tài khoản chưa tồn tại. Đăng ký? (y/n) ") == "y" {
				if err := a.Register(ctx, username, password); err != nil {
					fmt.Println("Lỗi:", err)
					continue
				}
				return a.SignIn(ctx, username, password)
			}
			continue
		}
		fmt.Println("Lỗi:", err)
	}
}

func pickSubject(ctx context.Context, a *app.App, in *bufio.Scanner) error {
	subjects, err := a.Subjects()
	if err != nil {
		return err
	}

	if len(subjects) > 0 {
		fmt.Println("Môn học của bạn:")
		for i, s := range subjects {
			fmt.Printf("  %d. %s\n", i+1, s)
		}
	}
	choice := ask(in, "Chọn môn (số), hoặc tên môn mới: ")
	if choice == "" {
		return errors.New("chưa chọn môn học")
	}

	var idx int
	if _, err := fmt.Sscanf(choice, "%d", &idx); err == nil && idx >= 1 && idx <= len(subjects) {
		_, err := a.SelectSubject(subjects[idx-1])
		return err
	}

	profile := tutor.Profile{
		Subject: choice,
		Goal:    ask(in, "Mục tiêu học tập: "),
		Level:   ask(in, "Trình độ hiện tại: "),
	}
	sess, err := a.CreateSubject(ctx, profile)
	if err != nil {
		var exists *session.ErrSubjectExists
		if errors.As(err, &exists) {
			_, selErr := a.SelectSubject(choice)
			return selErr
		}
		return err
	}
	fmt.Printf("Đã tạo môn %s.\n", sess.Profile.Subject)
	return nil
}

func changeVoice(ctx context.Context, a *app.App, voiceID string) {
	if voiceID == "" {
		for _, v := range tutor.SupportedVoices {
			fmt.Printf("  %-8s %s\n", v.ID, v.Name)
		}
		return
	}
	if err := a.SetVoice(ctx, voiceID); err != nil {
		fmt.Println("Lỗi:", err)
		return
	}
	fmt.Println("Đã đổi giọng đọc.")
}

// send runs one turn, printing streamed chunks as they arrive.
func send(ctx context.Context, a *app.App, text string) {
	var printed int
	observer := func(conv tutor.Conversation) {
		if len(conv) == 0 {
			return
		}
		last := conv[len(conv)-1]
		if last.Role != tutor.RoleModel {
			return
		}
		if len(last.Content) > printed {
			fmt.Print(last.Content[printed:])
			printed = len(last.Content)
		}
	}

	res, err := a.Send(ctx, text, nil, false, observer)
	fmt.Println()
	if err != nil {
		fmt.Println("Lỗi:", err)
		return
	}
	printResult(res)
}

// printResult shows the non-streamed parts of a finished turn: quizzes,
// image markers and follow-up suggestions.
func printResult(res *turn.Result) {
	if res.Quiz != nil {
		for i, q := range res.Quiz.Questions {
			fmt.Printf("\n%d. %s\n", i+1, q.Question)
			for j, opt := range q.Options {
				fmt.Printf("   %c) %s\n", 'A'+j, opt)
			}
		}
		return
	}

	last := res.Conversation[len(res.Conversation)-1]
	if !res.Streamed && last.Content != "" {
		fmt.Println(last.Content)
	}
	if last.ModelImageURL != "" {
		fmt.Println("(đã tạo hình ảnh)")
	}
	for _, f := range last.SuggestedFollowups {
		fmt.Println("  ?", f)
	}
}

func printConversation(a *app.App) {
	sess, err := a.ActiveSession()
	if err != nil {
		return
	}
	for _, m := range sess.Current() {
		prefix := "Bạn:"
		if m.Role == tutor.RoleModel {
			prefix = "Gia sư:"
		}
		fmt.Println(prefix, m.Content)
	}
}

func ask(in *bufio.Scanner, prompt string) string {
	fmt.Print(prompt)
	if !in.Scan() {
		return ""
	}
	return strings.TrimSpace(in.Text())
}
