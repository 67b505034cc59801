package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog/log"

	"github.com/Rrens/studymate/internal/api/handler"
	customMiddleware "github.com/Rrens/studymate/internal/api/middleware"
	"github.com/Rrens/studymate/internal/config"
	"github.com/Rrens/studymate/internal/domain"
	"github.com/Rrens/studymate/internal/llm"
	"github.com/Rrens/studymate/internal/llm/gemini"
	"github.com/Rrens/studymate/internal/llm/geminisdk"
	"github.com/Rrens/studymate/internal/llm/ollama"
	"github.com/Rrens/studymate/internal/repository/redis"
	"github.com/Rrens/studymate/internal/service"
)

// NewRouter creates and configures the HTTP router.
// redisClient may be nil when rate limiting is disabled.
func NewRouter(cfg *config.Config, kv domain.KeyValueStore, redisClient *redis.Client) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(customMiddleware.Logger)
	r.Use(middleware.Recoverer)
	if cfg.Server.MiddlewareTimeout > 0 {
		r.Use(middleware.Timeout(cfg.Server.MiddlewareTimeout))
	}

	// CORS
	allowedOrigins := cfg.Server.AllowedOrigins
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"*"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", customMiddleware.ClientIDHeader},
		ExposedHeaders: []string{"X-Request-ID", "X-RateLimit-Remaining", "X-RateLimit-Reset"},
		MaxAge:         300,
	}))

	llmRouter := NewLLMRouter(cfg.LLM)

	// Initialize services
	gatewayService := service.NewGatewayService(llmRouter, "", cfg.LLM.RequestTimeout)
	sessionService := service.NewSessionService(gatewayService, cfg.Session)
	studyRegistry := service.NewStudyRegistry(kv, cfg.Storage.Key, cfg.Storage.Cache.ClientTTL)

	// Initialize handlers
	chatHandler := handler.NewChatHandler(gatewayService)
	sessionHandler := handler.NewSessionHandler(sessionService, studyRegistry, cfg.Session.MaxUploadBytes)
	studyHandler := handler.NewStudyHandler(studyRegistry)

	// AI gateway
	r.Group(func(r chi.Router) {
		if cfg.Security.RateLimit.Enabled {
			if redisClient == nil {
				log.Warn().Msg("Rate limiting enabled but Redis is not connected, skipping")
			} else {
				rateLimiter := redis.NewRateLimiter(
					redisClient,
					cfg.Security.RateLimit.RequestsPerMinute,
					cfg.Security.RateLimit.Burst,
				)
				r.Use(customMiddleware.NewRateLimitMiddleware(rateLimiter).Limit)
			}
		}

		r.Post("/api/chat", chatHandler.Handle)
	})

	r.Route("/api/v1", func(r chi.Router) {
		// Health check
		r.Get("/health", handler.HealthCheck)
		r.Get("/ready", handler.ReadyCheck(kv, sessionService))
		r.Get("/llm-providers", handler.ListLLMProviders(llmRouter))

		// Onboarding
		r.Get("/onboarding/options", handler.OnboardingOptions)
		r.Post("/onboarding", handler.CompleteOnboarding)

		r.Group(func(r chi.Router) {
			r.Use(customMiddleware.ClientContext)

			// Session routes
			r.Route("/sessions", func(r chi.Router) {
				r.Post("/", sessionHandler.Create)

				r.Route("/{sessionID}", func(r chi.Router) {
					r.Get("/", sessionHandler.Get)
					r.Delete("/", sessionHandler.Delete)
					r.Post("/messages", sessionHandler.SendMessage)
					r.Post("/messages/{messageID}/save", sessionHandler.SaveMessage)
					r.Put("/mode", sessionHandler.SwitchMode)
					r.Post("/close", sessionHandler.Close)
					r.Post("/uploads", sessionHandler.Upload)
				})
			})

			// Study item routes
			r.Route("/study-items", func(r chi.Router) {
				r.Get("/", studyHandler.List)
				r.Post("/{kind}", studyHandler.Add)
				r.Delete("/{kind}/{itemID}", studyHandler.Delete)
			})
		})
	})

	return r
}

// NewLLMRouter registers every provider that has configuration
func NewLLMRouter(cfg config.LLMConfig) *llm.Router {
	llmRouter := llm.NewRouter(cfg.DefaultProvider)

	log.Info().Msgf("Initializing LLM providers. Default: %s", cfg.DefaultProvider)

	if cfg.Ollama.Host != "" {
		log.Info().Str("host", cfg.Ollama.Host).Msg("Registering Ollama provider")
		llmRouter.RegisterProvider(ollama.NewProvider(cfg.Ollama.Host, cfg.Ollama.DefaultModel))
	}

	if cfg.Gemini.APIKey == "" {
		log.Warn().Msg("Gemini API Key is empty, /api/chat will fail until GEMINI_API_KEY is set")
	}
	if cfg.Gemini.UseSDK {
		log.Info().Str("model", cfg.Gemini.Model).Msg("Registering Gemini provider (SDK transport)")
		llmRouter.RegisterProvider(geminisdk.NewProvider(cfg.Gemini))
	} else {
		log.Info().Str("model", cfg.Gemini.Model).Msg("Registering Gemini provider (REST transport)")
		llmRouter.RegisterProvider(gemini.NewProvider(cfg.Gemini))
	}

	return llmRouter
}
