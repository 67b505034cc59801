package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/Rrens/studymate/internal/api/response"
	"github.com/Rrens/studymate/internal/llm"
	"github.com/Rrens/studymate/internal/service"
)

// ChatHandler serves the AI gateway endpoint. Its bodies are bare
// {"reply"} / {"error"} objects rather than the v1 envelope.
type ChatHandler struct {
	gateway service.Gateway
}

func NewChatHandler(gateway service.Gateway) *ChatHandler {
	return &ChatHandler{gateway: gateway}
}

type chatRequest struct {
	Message any `json:"message"`
}

// Handle relays {"message": string} and answers {"reply": string}
func (h *ChatHandler) Handle(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.RawError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	message, ok := req.Message.(string)
	if !ok || message == "" {
		response.RawError(w, http.StatusBadRequest, "Invalid message")
		return
	}

	reply, err := h.gateway.Relay(r.Context(), message)
	if err != nil {
		var statusErr *llm.StatusError
		switch {
		case errors.Is(err, service.ErrInvalidMessage):
			response.RawError(w, http.StatusBadRequest, "Invalid message")
		case errors.As(err, &statusErr):
			response.RawError(w, http.StatusBadGateway, "Failed to get response from Gemini API")
		case errors.Is(err, llm.ErrTimeout):
			response.RawError(w, http.StatusGatewayTimeout, "Gemini API request timed out")
		default:
			log.Error().Err(err).Msg("Chat API error")
			response.RawError(w, http.StatusInternalServerError, "Error processing your request")
		}
		return
	}

	response.Raw(w, http.StatusOK, map[string]string{"reply": reply})
}
