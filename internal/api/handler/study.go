package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Rrens/studymate/internal/api/middleware"
	"github.com/Rrens/studymate/internal/api/response"
	"github.com/Rrens/studymate/internal/domain"
	"github.com/Rrens/studymate/internal/service"
)

// StudyHandler serves the notes, bookmarks and saved points of the calling client
type StudyHandler struct {
	studies *service.StudyRegistry
}

func NewStudyHandler(studies *service.StudyRegistry) *StudyHandler {
	return &StudyHandler{studies: studies}
}

type addStudyItemRequest struct {
	Content string `json:"content" validate:"required,max=20000"`
	Title   string `json:"title" validate:"max=200"`
}

// List returns the whole study document
func (h *StudyHandler) List(w http.ResponseWriter, r *http.Request) {
	repo := h.studies.For(r.Context(), middleware.GetClientID(r.Context()))
	response.OK(w, repo.Snapshot())
}

// Add creates an item in the collection named by {kind}
func (h *StudyHandler) Add(w http.ResponseWriter, r *http.Request) {
	kind, err := domain.ParseStudyItemKind(chi.URLParam(r, "kind"))
	if err != nil {
		response.NotFound(w, "unknown study item kind")
		return
	}

	var req addStudyItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		response.BadRequest(w, validationMessage(err))
		return
	}

	repo := h.studies.For(r.Context(), middleware.GetClientID(r.Context()))
	item, err := repo.Add(r.Context(), kind, req.Content, req.Title)
	if err != nil {
		response.InternalError(w, "failed to add study item")
		return
	}

	response.Created(w, item)
}

// Delete removes an item; deleting an unknown id succeeds
func (h *StudyHandler) Delete(w http.ResponseWriter, r *http.Request) {
	kind, err := domain.ParseStudyItemKind(chi.URLParam(r, "kind"))
	if err != nil {
		response.NotFound(w, "unknown study item kind")
		return
	}

	repo := h.studies.For(r.Context(), middleware.GetClientID(r.Context()))
	if err := repo.Delete(r.Context(), kind, chi.URLParam(r, "itemID")); err != nil {
		response.InternalError(w, "failed to delete study item")
		return
	}

	response.NoContent(w)
}
