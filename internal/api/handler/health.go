package handler

import (
	"net/http"

	"github.com/Rrens/studymate/internal/api/response"
	"github.com/Rrens/studymate/internal/domain"
	"github.com/Rrens/studymate/internal/llm"
	"github.com/Rrens/studymate/internal/service"
)

// HealthCheck returns a simple health check response
func HealthCheck(w http.ResponseWriter, r *http.Request) {
	response.OK(w, map[string]string{
		"status": "ok",
	})
}

// ReadyCheck returns readiness status including storage connectivity
// and the number of live chat sessions
func ReadyCheck(kv domain.KeyValueStore, sessions *service.SessionService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := kv.Ping(r.Context()); err != nil {
			response.Error(w, http.StatusServiceUnavailable, "storage not ready")
			return
		}

		response.OK(w, map[string]any{
			"status":   "ready",
			"sessions": sessions.Count(),
		})
	}
}

// ListLLMProviders returns registered LLM providers
func ListLLMProviders(router *llm.Router) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		response.OK(w, map[string]any{
			"providers":        router.GetProvidersInfo(),
			"default_provider": router.DefaultProvider(),
		})
	}
}
