package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/Rrens/studymate/internal/domain"
	"github.com/Rrens/studymate/internal/repository/memory"
)

type gatewayFunc func(ctx context.Context, message string) (string, error)

func (f gatewayFunc) Relay(ctx context.Context, message string) (string, error) {
	return f(ctx, message)
}

var physics = domain.StudyProfile{College: "MIT", Branch: "Physics", Subject: "Quantum Mechanics"}

func TestNewChatSession(t *testing.T) {
	s := NewChatSession(physics, new(MockGateway), SessionOptions{})

	msgs := s.Messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, domain.RoleAssistant, msgs[0].Role)
	assert.Equal(t, "Welcome to your Quantum Mechanics study session! I'm your AI tutor. Choose an option below to get started.", msgs[0].Content)
	assert.Equal(t, domain.ModeChat, s.Mode())
	assert.False(t, s.Loading())
	assert.True(t, s.QuickActionsVisible())
}

func TestChatSession_SendAppendsTwoMessages(t *testing.T) {
	gw := new(MockGateway)
	gw.On("Relay", mock.Anything, "Explain recursion").Return("Recursion is...", nil)

	s := NewChatSession(physics, gw, SessionOptions{})
	before := len(s.Messages())

	reply, err := s.Send(context.Background(), "Explain recursion")
	require.NoError(t, err)
	assert.Equal(t, "Recursion is...", reply.Content)

	msgs := s.Messages()
	require.Len(t, msgs, before+2)
	assert.Equal(t, domain.RoleUser, msgs[before].Role)
	assert.Equal(t, "Explain recursion", msgs[before].Content)
	assert.Equal(t, domain.RoleAssistant, msgs[before+1].Role)
	assert.Equal(t, reply.ID, msgs[before+1].ID)
	assert.False(t, s.Loading())
	assert.False(t, s.QuickActionsVisible())
	gw.AssertExpectations(t)
}

func TestChatSession_SendBlankIsNoop(t *testing.T) {
	gw := new(MockGateway)
	s := NewChatSession(physics, gw, SessionOptions{})

	for _, text := range []string{"", " ", "\t\n  "} {
		_, err := s.Send(context.Background(), text)
		assert.ErrorIs(t, err, ErrEmptyInput)
		assert.Len(t, s.Messages(), 1)
		assert.False(t, s.Loading())
	}
	gw.AssertNotCalled(t, "Relay", mock.Anything, mock.Anything)
}

func TestChatSession_SendFallbacks(t *testing.T) {
	tests := []struct {
		name  string
		reply string
		err   error
		want  string
	}{
		{"gateway error", "", errors.New("502"), ErrorReply},
		{"empty reply", "", nil, EmptyReply},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gw := new(MockGateway)
			gw.On("Relay", mock.Anything, "hello").Return(tt.reply, tt.err)

			s := NewChatSession(physics, gw, SessionOptions{})
			reply, err := s.Send(context.Background(), "hello")
			require.NoError(t, err)
			assert.Equal(t, tt.want, reply.Content)
			assert.Len(t, s.Messages(), 3)
			assert.False(t, s.Loading())
		})
	}
}

func TestChatSession_UserMessageVisibleWhileLoading(t *testing.T) {
	release := make(chan struct{})
	entered := make(chan struct{})
	s := NewChatSession(physics, gatewayFunc(func(ctx context.Context, message string) (string, error) {
		close(entered)
		<-release
		return "done", nil
	}), SessionOptions{})

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, _ = s.Send(context.Background(), "slow question")
	}()

	<-entered
	msgs := s.Messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, "slow question", msgs[1].Content)
	assert.True(t, s.Loading())
	assert.True(t, s.View().Loading)

	close(release)
	wg.Wait()
	assert.False(t, s.Loading())
	assert.Len(t, s.Messages(), 3)
}

func TestChatSession_RepliesFollowSendOrder(t *testing.T) {
	firstEntered := make(chan struct{})
	releaseFirst := make(chan struct{})
	s := NewChatSession(physics, gatewayFunc(func(ctx context.Context, message string) (string, error) {
		if message == "first" {
			close(firstEntered)
			<-releaseFirst
		}
		return "re: " + message, nil
	}), SessionOptions{})

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, _ = s.Send(context.Background(), "first")
	}()
	<-firstEntered

	wg.Add(1)
	go func() {
		defer wg.Done()
		_, _ = s.Send(context.Background(), "second")
	}()

	// the second user message lands before either reply
	require.Eventually(t, func() bool { return len(s.Messages()) == 3 }, time.Second, time.Millisecond)

	close(releaseFirst)
	wg.Wait()

	var contents []string
	for _, m := range s.Messages()[1:] {
		contents = append(contents, m.Content)
	}
	assert.Equal(t, []string{"first", "second", "re: first", "re: second"}, contents)
	assert.False(t, s.Loading())
}

func TestChatSession_CanceledSendDoesNotWaitForQueue(t *testing.T) {
	firstEntered := make(chan struct{})
	releaseFirst := make(chan struct{})
	s := NewChatSession(physics, gatewayFunc(func(ctx context.Context, message string) (string, error) {
		if message == "first" {
			close(firstEntered)
			<-releaseFirst
		}
		return "re: " + message, nil
	}), SessionOptions{})

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, _ = s.Send(context.Background(), "first")
	}()
	<-firstEntered

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	done := make(chan domain.Message, 1)
	go func() {
		reply, _ := s.Send(ctx, "gave up")
		done <- reply
	}()

	select {
	case reply := <-done:
		assert.Equal(t, ErrorReply, reply.Content)
	case <-time.After(time.Second):
		t.Fatal("canceled send stayed queued behind a blocked relay")
	}
	assert.True(t, s.Loading(), "first send is still in flight")

	// sends queued after the canceled one still wait for the first reply
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, _ = s.Send(context.Background(), "third")
	}()
	require.Eventually(t, func() bool { return len(s.Messages()) == 5 }, time.Second, time.Millisecond)

	close(releaseFirst)
	wg.Wait()

	var contents []string
	for _, m := range s.Messages()[1:] {
		contents = append(contents, m.Content)
	}
	assert.Equal(t, []string{"first", "gave up", ErrorReply, "third", "re: first", "re: third"}, contents)
	assert.False(t, s.Loading())
}

func TestChatSession_SwitchModeResetsMessages(t *testing.T) {
	gw := new(MockGateway)
	gw.On("Relay", mock.Anything, mock.Anything).Return("ok", nil)

	s := NewChatSession(physics, gw, SessionOptions{})
	_, err := s.Send(context.Background(), "hi")
	require.NoError(t, err)

	require.NoError(t, s.SwitchMode(domain.ModeUploadBook))
	msgs := s.Messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, domain.RoleAssistant, msgs[0].Role)
	assert.Equal(t, domain.ModeUploadBook.WelcomeMessage(physics.Subject), msgs[0].Content)
	assert.Equal(t, domain.ModeUploadBook, s.Mode())
	assert.False(t, s.QuickActionsVisible())

	require.NoError(t, s.Close())
	assert.Equal(t, domain.ModeChat, s.Mode())
	assert.Equal(t, "Welcome! How can I help you study today?", s.Messages()[0].Content)
	assert.True(t, s.QuickActionsVisible())

	assert.ErrorIs(t, s.SwitchMode("quiz"), domain.ErrInvalidMode)
}

func TestChatSession_LateReplyDroppedAfterModeSwitch(t *testing.T) {
	entered := make(chan struct{})
	release := make(chan struct{})
	s := NewChatSession(physics, gatewayFunc(func(ctx context.Context, message string) (string, error) {
		close(entered)
		<-release
		return "stale", nil
	}), SessionOptions{})

	errCh := make(chan error, 1)
	go func() {
		_, err := s.Send(context.Background(), "question")
		errCh <- err
	}()
	<-entered

	require.NoError(t, s.SwitchMode(domain.ModeStudy))
	close(release)

	assert.ErrorIs(t, <-errCh, ErrReplyDiscarded)
	msgs := s.Messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, domain.ModeStudy.WelcomeMessage(physics.Subject), msgs[0].Content)
	assert.False(t, s.Loading())
}

func TestChatSession_Upload(t *testing.T) {
	s := NewChatSession(physics, new(MockGateway), SessionOptions{UploadAckDelay: 10 * time.Millisecond})

	_, err := s.Upload("book.pdf", 1024)
	assert.ErrorIs(t, err, ErrUploadNotAllowed)

	require.NoError(t, s.SwitchMode(domain.ModeUploadSlides))

	_, err = s.Upload("slides.key", 1024)
	assert.ErrorIs(t, err, domain.ErrUnsupportedFileType)

	file, err := s.Upload("Lecture 1.pptx", 4096)
	require.NoError(t, err)
	assert.Equal(t, domain.FilePPTX, file.Kind)
	assert.True(t, s.Loading())

	msgs := s.Messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, "Uploaded: Lecture 1.pptx", msgs[1].Content)

	_, err = s.Upload("Lecture 2.pptx", 4096)
	assert.ErrorIs(t, err, ErrFileAlreadyUploaded)

	s.Wait()
	assert.False(t, s.Loading())
	msgs = s.Messages()
	require.Len(t, msgs, 3)
	assert.Equal(t, `Great! I've received your file "Lecture 1.pptx". I'm analyzing it now. This will take a moment...`, msgs[2].Content)
	require.NotNil(t, s.UploadedFile())

	// a new mode entry accepts a new file
	require.NoError(t, s.SwitchMode(domain.ModeExamAnalysis))
	assert.Nil(t, s.UploadedFile())
	_, err = s.Upload("paper.txt", 10)
	assert.NoError(t, err)
	s.Wait()
}

func TestChatSession_UploadTooLarge(t *testing.T) {
	s := NewChatSession(physics, new(MockGateway), SessionOptions{MaxUploadBytes: 100})
	require.NoError(t, s.SwitchMode(domain.ModeUploadBook))

	_, err := s.Upload("book.pdf", 101)
	assert.ErrorIs(t, err, domain.ErrFileTooLarge)
	assert.Nil(t, s.UploadedFile())
	assert.Len(t, s.Messages(), 1)
}

func TestChatSession_UploadAckDroppedAfterModeSwitch(t *testing.T) {
	s := NewChatSession(physics, new(MockGateway), SessionOptions{UploadAckDelay: 20 * time.Millisecond})
	require.NoError(t, s.SwitchMode(domain.ModeUploadBook))
	_, err := s.Upload("book.pdf", 10)
	require.NoError(t, err)

	require.NoError(t, s.Close())
	s.Wait()

	assert.Len(t, s.Messages(), 1)
	assert.False(t, s.Loading())
}

func TestChatSession_ShutdownCancelsAck(t *testing.T) {
	s := NewChatSession(physics, new(MockGateway), SessionOptions{UploadAckDelay: time.Hour})
	require.NoError(t, s.SwitchMode(domain.ModeUploadBook))
	_, err := s.Upload("book.pdf", 10)
	require.NoError(t, err)

	s.Shutdown()
	assert.Len(t, s.Messages(), 2)
	assert.False(t, s.Loading())
}

func TestChatSession_StoppedSessionRejectsWork(t *testing.T) {
	gw := new(MockGateway)
	s := NewChatSession(physics, gw, SessionOptions{UploadAckDelay: time.Hour})
	require.NoError(t, s.SwitchMode(domain.ModeUploadBook))

	s.Shutdown()
	assert.True(t, s.Stopped())

	_, err := s.Upload("book.pdf", 10)
	assert.ErrorIs(t, err, ErrSessionNotFound)
	_, err = s.Send(context.Background(), "still there?")
	assert.ErrorIs(t, err, ErrSessionNotFound)

	assert.Len(t, s.Messages(), 1)
	assert.False(t, s.Loading())
	gw.AssertNotCalled(t, "Relay", mock.Anything, mock.Anything)
}

func TestChatSession_SaveMessage(t *testing.T) {
	ctx := context.Background()
	gw := new(MockGateway)
	gw.On("Relay", mock.Anything, "What is a qubit?").Return("A two-level quantum system.", nil)

	s := NewChatSession(physics, gw, SessionOptions{})
	reply, err := s.Send(ctx, "What is a qubit?")
	require.NoError(t, err)

	repo := NewStudyService(NewStudyStore(memory.NewStore(), ""))

	item, err := s.SaveMessage(ctx, reply.ID, domain.KindSavedPoint, repo)
	require.NoError(t, err)
	assert.Equal(t, "Key Point from Quantum Mechanics", item.Title)
	assert.Equal(t, "A two-level quantum system.", item.Content)
	assert.Len(t, repo.SavedPoints(), 1)

	item, err = s.SaveMessage(ctx, reply.ID, domain.KindNote, repo)
	require.NoError(t, err)
	assert.Equal(t, "Note from Quantum Mechanics", item.Title)

	user := s.Messages()[1]
	_, err = s.SaveMessage(ctx, user.ID, domain.KindNote, repo)
	assert.ErrorIs(t, err, ErrNotAssistantMessage)

	_, err = s.SaveMessage(ctx, "nope", domain.KindNote, repo)
	assert.ErrorIs(t, err, ErrMessageNotFound)
}

func TestChatSession_CanceledContextUsesFallback(t *testing.T) {
	gw := new(MockGateway)
	s := NewChatSession(physics, gw, SessionOptions{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	reply, err := s.Send(ctx, "hello")
	require.NoError(t, err)
	assert.Equal(t, ErrorReply, reply.Content)
	gw.AssertNotCalled(t, "Relay", mock.Anything, mock.Anything)
}

func TestChatSession_View(t *testing.T) {
	s := NewChatSession(physics, new(MockGateway), SessionOptions{})
	require.NoError(t, s.SwitchMode(domain.ModeExamAnalysis))

	v := s.View()
	assert.Equal(t, s.ID, v.ID)
	assert.Equal(t, domain.ModeExamAnalysis, v.Mode)
	assert.Equal(t, "Exam Analysis", v.Label)
	assert.Equal(t, "Ask questions about the uploaded file...", v.InputPlaceholder)
	assert.False(t, v.QuickActions)
	assert.Len(t, v.Messages, 1)
}
