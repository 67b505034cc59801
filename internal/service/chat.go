package service

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/Rrens/studymate/internal/domain"
)

const (
	EmptyReply = "Sorry, I couldn't generate a response."
	ErrorReply = "Sorry, I encountered an error. Please try again."

	DefaultUploadAckDelay = 1500 * time.Millisecond
)

// SessionOptions tunes a ChatSession
type SessionOptions struct {
	UploadAckDelay time.Duration
	MaxUploadBytes int64
	Now            func() time.Time
}

// ChatSession holds one study conversation: its messages, mode and upload.
//
// Sends run one at a time in the order they were made; the user message is
// appended immediately while the reply waits its turn. Every mode switch starts
// a new epoch and replies belonging to an older epoch are dropped.
type ChatSession struct {
	ID      uuid.UUID
	Profile domain.StudyProfile

	gateway  Gateway
	ackDelay time.Duration
	maxBytes int64
	now      func() time.Time

	mu       sync.Mutex
	messages []domain.Message
	mode     domain.Mode
	epoch    uint64
	inFlight int
	upload   *domain.UploadedFile
	tail     chan struct{}
	lastUsed time.Time

	pending sync.WaitGroup
	done    chan struct{}
	once    sync.Once
}

// NewChatSession starts a session in chat mode with the subject greeting
func NewChatSession(profile domain.StudyProfile, gateway Gateway, opts SessionOptions) *ChatSession {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.UploadAckDelay < 0 {
		opts.UploadAckDelay = 0
	}

	now := opts.Now()
	tail := make(chan struct{})
	close(tail)

	return &ChatSession{
		ID:       uuid.New(),
		Profile:  profile,
		gateway:  gateway,
		ackDelay: opts.UploadAckDelay,
		maxBytes: opts.MaxUploadBytes,
		now:      opts.Now,
		messages: []domain.Message{
			domain.NewMessage(domain.RoleAssistant, domain.SessionGreeting(profile.Subject), now),
		},
		mode:     domain.ModeChat,
		tail:     tail,
		lastUsed: now,
		done:     make(chan struct{}),
	}
}

// Send appends text as a user message, relays it and appends the assistant reply.
// Gateway failures become the fallback apology; only blank input and replies
// dropped by a mode switch are reported as errors.
func (s *ChatSession) Send(ctx context.Context, text string) (domain.Message, error) {
	if strings.TrimSpace(text) == "" {
		return domain.Message{}, ErrEmptyInput
	}

	s.mu.Lock()
	if s.stopped() {
		s.mu.Unlock()
		return domain.Message{}, ErrSessionNotFound
	}
	s.messages = append(s.messages, domain.NewMessage(domain.RoleUser, text, s.now()))
	s.lastUsed = s.now()
	epoch := s.epoch
	s.inFlight++
	prev := s.tail
	turn := make(chan struct{})
	s.tail = turn
	s.mu.Unlock()

	waited := true
	defer func() {
		if waited {
			close(turn)
		} else {
			// later sends still queue behind the earlier ones
			go func() {
				<-prev
				close(turn)
			}()
		}
		s.mu.Lock()
		s.inFlight--
		s.mu.Unlock()
	}()

	select {
	case <-prev:
	case <-ctx.Done():
		waited = false
	}

	reply := s.relay(ctx, text)
	return s.appendReply(epoch, reply)
}

func (s *ChatSession) relay(ctx context.Context, text string) string {
	if err := ctx.Err(); err != nil {
		log.Warn().Err(err).Str("session_id", s.ID.String()).Msg("Send abandoned before relay")
		return ErrorReply
	}

	reply, err := s.gateway.Relay(ctx, text)
	if err != nil {
		log.Error().Err(err).Str("session_id", s.ID.String()).Msg("Error sending message")
		return ErrorReply
	}
	if reply == "" {
		return EmptyReply
	}
	return reply
}

func (s *ChatSession) appendReply(epoch uint64, content string) (domain.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if epoch != s.epoch {
		log.Debug().Str("session_id", s.ID.String()).Msg("Dropping reply from before mode switch")
		return domain.Message{}, ErrReplyDiscarded
	}

	msg := domain.NewMessage(domain.RoleAssistant, content, s.now())
	s.messages = append(s.messages, msg)
	return msg, nil
}

// SwitchMode resets the conversation to the welcome message of mode
func (s *ChatSession) SwitchMode(mode domain.Mode) error {
	if _, err := domain.ParseMode(string(mode)); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.mode = mode
	s.epoch++
	s.upload = nil
	s.lastUsed = s.now()
	s.messages = []domain.Message{
		domain.NewMessage(domain.RoleAssistant, mode.WelcomeMessage(s.Profile.Subject), s.now()),
	}
	return nil
}

// Close leaves the current mode and returns to chat
func (s *ChatSession) Close() error {
	return s.SwitchMode(domain.ModeChat)
}

// Upload records file metadata and acknowledges it after the configured delay.
// File content is never read.
func (s *ChatSession) Upload(name string, size int64) (*domain.UploadedFile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped() {
		return nil, ErrSessionNotFound
	}
	if !s.mode.AcceptsUploads() {
		return nil, ErrUploadNotAllowed
	}
	if s.upload != nil {
		return nil, ErrFileAlreadyUploaded
	}

	file, err := domain.NewUploadedFile(name, size, s.maxBytes, s.now())
	if err != nil {
		return nil, err
	}

	s.upload = file
	s.lastUsed = s.now()
	s.messages = append(s.messages, domain.NewMessage(domain.RoleUser, "Uploaded: "+file.Name, s.now()))
	s.inFlight++

	s.pending.Add(1)
	go s.acknowledge(s.epoch, file.Name)

	copied := *file
	return &copied, nil
}

func (s *ChatSession) acknowledge(epoch uint64, name string) {
	defer s.pending.Done()

	timer := time.NewTimer(s.ackDelay)
	defer timer.Stop()

	select {
	case <-timer.C:
	case <-s.done:
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.inFlight--

	select {
	case <-s.done:
		return
	default:
	}
	if epoch != s.epoch {
		return
	}
	s.messages = append(s.messages, domain.NewMessage(domain.RoleAssistant,
		`Great! I've received your file "`+name+`". I'm analyzing it now. This will take a moment...`, s.now()))
}

// SaveMessage stores the content of an assistant message in repo,
// titled after the session subject.
func (s *ChatSession) SaveMessage(ctx context.Context, messageID string, kind domain.StudyItemKind, repo *StudyService) (domain.StudyItem, error) {
	msg, err := s.Message(messageID)
	if err != nil {
		return domain.StudyItem{}, err
	}
	if msg.Role != domain.RoleAssistant {
		return domain.StudyItem{}, ErrNotAssistantMessage
	}
	return repo.Add(ctx, kind, msg.Content, kind.TitleFor(s.Profile.Subject))
}

// Message looks up a message of the current conversation
func (s *ChatSession) Message(id string) (domain.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, m := range s.messages {
		if m.ID == id {
			return m, nil
		}
	}
	return domain.Message{}, ErrMessageNotFound
}

// Messages returns a copy of the conversation in order
func (s *ChatSession) Messages() []domain.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Message, len(s.messages))
	copy(out, s.messages)
	return out
}

// Loading reports whether a reply or upload acknowledgement is outstanding
func (s *ChatSession) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inFlight > 0
}

func (s *ChatSession) Mode() domain.Mode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mode
}

// UploadedFile returns the file uploaded since the last mode switch, if any
func (s *ChatSession) UploadedFile() *domain.UploadedFile {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.upload == nil {
		return nil
	}
	copied := *s.upload
	return &copied
}

// QuickActionsVisible is true in chat mode while nothing but the welcome message exists
func (s *ChatSession) QuickActionsVisible() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mode == domain.ModeChat && len(s.messages) == 1
}

// LastUsed is the time of the last send, upload or mode switch
func (s *ChatSession) LastUsed() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastUsed
}

// Wait blocks until pending upload acknowledgements have fired
func (s *ChatSession) Wait() {
	s.pending.Wait()
}

// Stop ends the session without waiting. Later sends and uploads
// fail with ErrSessionNotFound and pending acknowledgements are cancelled.
func (s *ChatSession) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.once.Do(func() { close(s.done) })
}

// Stopped reports whether Stop or Shutdown has been called
func (s *ChatSession) Stopped() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stopped()
}

// stopped must be called with mu held
func (s *ChatSession) stopped() bool {
	select {
	case <-s.done:
		return true
	default:
		return false
	}
}

// Shutdown stops the session and waits for pending acknowledgements to return
func (s *ChatSession) Shutdown() {
	s.Stop()
	s.pending.Wait()
}

// SessionView is the serializable state of a session
type SessionView struct {
	ID               uuid.UUID            `json:"id"`
	Profile          domain.StudyProfile  `json:"profile"`
	Mode             domain.Mode          `json:"mode"`
	Label            string               `json:"label,omitempty"`
	InputPlaceholder string               `json:"inputPlaceholder"`
	Loading          bool                 `json:"loading"`
	QuickActions     bool                 `json:"quickActions"`
	UploadedFile     *domain.UploadedFile `json:"uploadedFile,omitempty"`
	Messages         []domain.Message     `json:"messages"`
}

// View captures the session state in one consistent read
func (s *ChatSession) View() SessionView {
	s.mu.Lock()
	defer s.mu.Unlock()

	messages := make([]domain.Message, len(s.messages))
	copy(messages, s.messages)

	var upload *domain.UploadedFile
	if s.upload != nil {
		copied := *s.upload
		upload = &copied
	}

	return SessionView{
		ID:               s.ID,
		Profile:          s.Profile,
		Mode:             s.mode,
		Label:            s.mode.Label(),
		InputPlaceholder: s.mode.InputPlaceholder(),
		Loading:          s.inFlight > 0,
		QuickActions:     s.mode == domain.ModeChat && len(s.messages) == 1,
		UploadedFile:     upload,
		Messages:         messages,
	}
}
