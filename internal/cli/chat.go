package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/Rrens/studymate/internal/domain"
	"github.com/Rrens/studymate/internal/service"
)

func init() {
	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Start a study chat relayed through the server",
		Run:   runChat,
	}

	cmd.Flags().String("college", "", "College name")
	cmd.Flags().String("branch", "", "Branch name")
	cmd.Flags().String("subject", "", "Subject to study")

	RootCmd.AddCommand(cmd)
}

func runChat(cmd *cobra.Command, args []string) {
	college, _ := cmd.Flags().GetString("college")
	branch, _ := cmd.Flags().GetString("branch")
	subject, _ := cmd.Flags().GetString("subject")

	cfg := loadConfig()
	ctx := cmd.Context()

	studies, closeStore, err := openStudies(ctx, cfg)
	if err != nil {
		exitErr("open store", err)
	}
	defer closeStore()

	gateway := newClient(cfg)
	if err := gateway.Health(ctx); err != nil {
		exitErr("server "+getServerURL(cfg)+" is not reachable", err)
	}
	session := service.NewChatSession(
		domain.StudyProfile{College: college, Branch: branch, Subject: subject},
		gateway,
		service.SessionOptions{
			UploadAckDelay: cfg.Session.UploadAckDelay,
			MaxUploadBytes: cfg.Session.MaxUploadBytes,
		},
	)
	defer session.Shutdown()

	newREPL(session, studies, os.Stdout).run(ctx, os.Stdin)
}

// repl prints a ChatSession and turns input lines into session operations
type repl struct {
	session *service.ChatSession
	studies *service.StudyService
	out     io.Writer
	printed map[string]bool

	user      *color.Color
	assistant *color.Color
	info      *color.Color
	failure   *color.Color
}

func newREPL(session *service.ChatSession, studies *service.StudyService, out io.Writer) *repl {
	return &repl{
		session:   session,
		studies:   studies,
		out:       out,
		printed:   make(map[string]bool),
		user:      color.New(color.FgBlue),
		assistant: color.New(color.FgGreen),
		info:      color.New(color.FgYellow),
		failure:   color.New(color.FgRed),
	}
}

func (r *repl) run(ctx context.Context, in io.Reader) {
	r.info.Fprintln(r.out, "Commands: /mode <mode>, /close, /upload <path>, /note, /bookmark, /point, /quit")
	r.flush()

	scanner := bufio.NewScanner(in)
	for {
		r.prompt()
		if !scanner.Scan() {
			return
		}
		if !r.handle(ctx, scanner.Text()) {
			return
		}
		r.flush()
	}
}

// handle executes one input line and reports whether to keep going
func (r *repl) handle(ctx context.Context, line string) bool {
	line = strings.TrimSpace(line)
	if line == "" {
		return true
	}

	if !strings.HasPrefix(line, "/") {
		if _, err := r.session.Send(ctx, line); err != nil && !errors.Is(err, service.ErrReplyDiscarded) {
			r.failure.Fprintln(r.out, err)
		}
		return true
	}

	command, arg, _ := strings.Cut(line, " ")
	arg = strings.TrimSpace(arg)

	switch command {
	case "/quit", "/exit":
		return false
	case "/mode":
		mode, err := domain.ParseMode(arg)
		if err != nil {
			r.failure.Fprintf(r.out, "%v (chat, study, upload-book, upload-slides, exam-analysis)\n", err)
			return true
		}
		r.session.SwitchMode(mode)
	case "/close":
		r.session.Close()
	case "/upload":
		r.upload(arg)
	case "/note":
		r.save(ctx, domain.KindNote)
	case "/bookmark":
		r.save(ctx, domain.KindBookmark)
	case "/point":
		r.save(ctx, domain.KindSavedPoint)
	default:
		r.failure.Fprintf(r.out, "unknown command %s\n", command)
	}
	return true
}

func (r *repl) upload(path string) {
	if path == "" {
		r.failure.Fprintln(r.out, "usage: /upload <path>")
		return
	}
	info, err := os.Stat(path)
	if err != nil {
		r.failure.Fprintln(r.out, err)
		return
	}

	file, err := r.session.Upload(filepath.Base(path), info.Size())
	if err != nil {
		r.failure.Fprintln(r.out, err)
		return
	}
	r.flush()
	r.info.Fprintf(r.out, "%s (%s)\n", file.Name, file.HumanSize())

	r.session.Wait()
}

// save stores the latest assistant reply
func (r *repl) save(ctx context.Context, kind domain.StudyItemKind) {
	messages := r.session.Messages()
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role != domain.RoleAssistant {
			continue
		}
		item, err := r.session.SaveMessage(ctx, messages[i].ID, kind, r.studies)
		if err != nil {
			r.failure.Fprintln(r.out, err)
			return
		}
		r.info.Fprintf(r.out, "Saved %q\n", item.Title)
		return
	}
	r.failure.Fprintln(r.out, "nothing to save yet")
}

// flush prints messages not shown yet. A mode switch replaces the conversation.
func (r *repl) flush() {
	messages := r.session.Messages()
	if len(messages) > 0 && !r.printed[messages[0].ID] {
		if label := r.session.Mode().Label(); label != "" {
			r.info.Fprintf(r.out, "\n== %s ==\n", label)
		}
	}

	for _, m := range messages {
		if r.printed[m.ID] {
			continue
		}
		r.printed[m.ID] = true
		if m.Role == domain.RoleUser {
			r.user.Fprintf(r.out, "you: %s\n", m.Content)
		} else {
			r.assistant.Fprintf(r.out, "studymate: %s\n", m.Content)
		}
	}
}

func (r *repl) prompt() {
	fmt.Fprintf(r.out, "%s > ", r.session.Mode().InputPlaceholder())
}
