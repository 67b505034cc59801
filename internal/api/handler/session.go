package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/Rrens/studymate/internal/api/middleware"
	"github.com/Rrens/studymate/internal/api/response"
	"github.com/Rrens/studymate/internal/domain"
	"github.com/Rrens/studymate/internal/onboarding"
	"github.com/Rrens/studymate/internal/service"
)

// multipart overhead allowed on top of the file size limit
const uploadEnvelopeBytes = 1 << 20

type SessionHandler struct {
	sessions       *service.SessionService
	studies        *service.StudyRegistry
	maxUploadBytes int64
}

func NewSessionHandler(sessions *service.SessionService, studies *service.StudyRegistry, maxUploadBytes int64) *SessionHandler {
	if maxUploadBytes <= 0 {
		maxUploadBytes = domain.MaxUploadBytes
	}
	return &SessionHandler{
		sessions:       sessions,
		studies:        studies,
		maxUploadBytes: maxUploadBytes,
	}
}

// Create starts a session for the profile given in the query string.
// Absent parameters default to empty strings.
func (h *SessionHandler) Create(w http.ResponseWriter, r *http.Request) {
	profile := onboarding.ProfileFromQuery(r.URL.Query())
	if err := validate.Struct(profile); err != nil {
		response.BadRequest(w, validationMessage(err))
		return
	}

	session := h.sessions.Create(profile)
	response.Created(w, session.View())
}

// Get returns the session view
func (h *SessionHandler) Get(w http.ResponseWriter, r *http.Request) {
	session, ok := h.session(w, r)
	if !ok {
		return
	}
	response.OK(w, session.View())
}

// Delete ends a session
func (h *SessionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	sessionID, err := uuid.Parse(chi.URLParam(r, "sessionID"))
	if err != nil {
		response.BadRequest(w, "Invalid session ID")
		return
	}

	if err := h.sessions.Delete(sessionID); err != nil {
		response.NotFound(w, "Session not found")
		return
	}

	response.JSON(w, http.StatusOK, map[string]string{"message": "Session deleted"})
}

type sendMessageRequest struct {
	Text string `json:"text"`
}

// SendMessage sends {text} and returns the reply with the updated session
func (h *SessionHandler) SendMessage(w http.ResponseWriter, r *http.Request) {
	session, ok := h.session(w, r)
	if !ok {
		return
	}

	var req sendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}

	reply, err := session.Send(r.Context(), req.Text)
	switch {
	case errors.Is(err, service.ErrEmptyInput):
		response.BadRequest(w, "message must not be blank")
		return
	case errors.Is(err, service.ErrSessionNotFound):
		response.NotFound(w, "Session not found")
		return
	case errors.Is(err, service.ErrReplyDiscarded):
		response.Conflict(w, "session was reset before the reply arrived")
		return
	case err != nil:
		response.InternalError(w, "failed to send message")
		return
	}

	response.OK(w, map[string]any{
		"reply":   reply,
		"session": session.View(),
	})
}

type switchModeRequest struct {
	Mode string `json:"mode" validate:"required,oneof=chat study upload-book upload-slides exam-analysis"`
}

// SwitchMode resets the session into {mode}
func (h *SessionHandler) SwitchMode(w http.ResponseWriter, r *http.Request) {
	session, ok := h.session(w, r)
	if !ok {
		return
	}

	var req switchModeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		response.BadRequest(w, validationMessage(err))
		return
	}

	if err := session.SwitchMode(domain.Mode(req.Mode)); err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	response.OK(w, session.View())
}

// Close returns the session to chat mode
func (h *SessionHandler) Close(w http.ResponseWriter, r *http.Request) {
	session, ok := h.session(w, r)
	if !ok {
		return
	}

	if err := session.Close(); err != nil {
		response.InternalError(w, "failed to close mode")
		return
	}

	response.OK(w, session.View())
}

// Upload accepts a multipart "file" field. Only its name and size are kept.
func (h *SessionHandler) Upload(w http.ResponseWriter, r *http.Request) {
	session, ok := h.session(w, r)
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes+uploadEnvelopeBytes)
	if err := r.ParseMultipartForm(1 << 20); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			response.Error(w, http.StatusRequestEntityTooLarge, domain.ErrFileTooLarge.Error())
			return
		}
		response.BadRequest(w, "invalid multipart body")
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		response.BadRequest(w, "missing file field")
		return
	}
	file.Close()

	uploaded, err := session.Upload(header.Filename, header.Size)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrSessionNotFound):
			response.NotFound(w, "Session not found")
		case errors.Is(err, service.ErrUploadNotAllowed), errors.Is(err, service.ErrFileAlreadyUploaded):
			response.Conflict(w, err.Error())
		case errors.Is(err, domain.ErrUnsupportedFileType):
			response.Error(w, http.StatusUnsupportedMediaType, err.Error())
		case errors.Is(err, domain.ErrFileTooLarge):
			response.Error(w, http.StatusRequestEntityTooLarge, err.Error())
		default:
			response.InternalError(w, "failed to upload file")
		}
		return
	}

	log.Info().
		Str("session_id", session.ID.String()).
		Str("file", uploaded.Name).
		Str("size", uploaded.HumanSize()).
		Msg("File uploaded")

	response.Created(w, map[string]any{
		"file":    uploaded,
		"session": session.View(),
	})
}

type saveMessageRequest struct {
	Kind string `json:"kind" validate:"required"`
}

// SaveMessage stores an assistant message as a note, bookmark or saved point
func (h *SessionHandler) SaveMessage(w http.ResponseWriter, r *http.Request) {
	session, ok := h.session(w, r)
	if !ok {
		return
	}

	var req saveMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		response.BadRequest(w, validationMessage(err))
		return
	}

	kind, err := domain.ParseStudyItemKind(req.Kind)
	if err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	repo := h.studies.For(r.Context(), middleware.GetClientID(r.Context()))
	item, err := session.SaveMessage(r.Context(), chi.URLParam(r, "messageID"), kind, repo)
	switch {
	case errors.Is(err, service.ErrMessageNotFound):
		response.NotFound(w, "Message not found")
		return
	case errors.Is(err, service.ErrNotAssistantMessage):
		response.BadRequest(w, err.Error())
		return
	case err != nil:
		response.InternalError(w, "failed to save message")
		return
	}

	response.Created(w, item)
}

func (h *SessionHandler) session(w http.ResponseWriter, r *http.Request) (*service.ChatSession, bool) {
	sessionID, err := uuid.Parse(chi.URLParam(r, "sessionID"))
	if err != nil {
		response.BadRequest(w, "Invalid session ID")
		return nil, false
	}

	session, err := h.sessions.Get(sessionID)
	if err != nil {
		response.NotFound(w, "Session not found")
		return nil, false
	}
	return session, true
}
