package service

import (
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
	"github.com/rs/zerolog/log"

	"github.com/Rrens/studymate/internal/config"
	"github.com/Rrens/studymate/internal/domain"
)

// SessionService keeps live chat sessions in memory and expires idle ones
type SessionService struct {
	gateway  Gateway
	opts     SessionOptions
	ttl      time.Duration
	sessions *cache.Cache
}

// NewSessionService creates a session registry relaying through gateway
func NewSessionService(gateway Gateway, cfg config.SessionConfig) *SessionService {
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = cache.NoExpiration
	}

	cleanup := time.Minute
	if ttl > 0 && ttl < cleanup {
		cleanup = ttl
	}
	sessions := cache.New(ttl, cleanup)
	sessions.OnEvicted(func(id string, v interface{}) {
		session := v.(*ChatSession)
		session.Stop()
		// Shutdown blocks until pending acknowledgements return
		go session.Shutdown()
		log.Debug().Str("session_id", id).Msg("Chat session evicted")
	})

	return &SessionService{
		gateway: gateway,
		opts: SessionOptions{
			UploadAckDelay: cfg.UploadAckDelay,
			MaxUploadBytes: cfg.MaxUploadBytes,
		},
		ttl:      ttl,
		sessions: sessions,
	}
}

// Create starts a new session for profile
func (s *SessionService) Create(profile domain.StudyProfile) *ChatSession {
	session := NewChatSession(profile, s.gateway, s.opts)
	s.sessions.Set(session.ID.String(), session, s.ttl)

	log.Info().
		Str("session_id", session.ID.String()).
		Str("subject", profile.Subject).
		Msg("Chat session created")

	return session
}

// Get returns a live session and extends its idle deadline
func (s *SessionService) Get(id uuid.UUID) (*ChatSession, error) {
	v, ok := s.sessions.Get(id.String())
	if !ok {
		return nil, ErrSessionNotFound
	}
	session := v.(*ChatSession)
	// Replace fails if the janitor evicted the session since Get
	if err := s.sessions.Replace(id.String(), session, s.ttl); err != nil || session.Stopped() {
		return nil, ErrSessionNotFound
	}
	return session, nil
}

// Delete ends a session
func (s *SessionService) Delete(id uuid.UUID) error {
	if _, ok := s.sessions.Get(id.String()); !ok {
		return ErrSessionNotFound
	}
	s.sessions.Delete(id.String())
	return nil
}

// Count returns the number of live sessions
func (s *SessionService) Count() int {
	return s.sessions.ItemCount()
}
