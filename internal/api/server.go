package api

import (
	"net/http"
	"time"

	adminapi "github.com/futig/knowledge-backend/internal/api/admin"
	"github.com/futig/knowledge-backend/internal/api/docs"
	knowledgeapi "github.com/futig/knowledge-backend/internal/api/knowledge"
	"github.com/futig/knowledge-backend/internal/api/middleware"
	"github.com/futig/knowledge-backend/internal/pkg/response"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

const healthMessage = "Vector search + RAG API is running"

// RouterConfig holds router-level settings
type RouterConfig struct {
	RequestTimeout time.Duration
	AdminJWTSecret string
}

// SetupRouter creates and configures the HTTP router
func SetupRouter(
	cfg RouterConfig,
	knowledgeHandler *knowledgeapi.Handler,
	adminHandler *adminapi.Handler,
	logger *zap.Logger,
) http.Handler {
	r := chi.NewRouter()

	// Middleware stack
	r.Use(chimiddleware.RequestID)   // Add request ID
	r.Use(middleware.Logger(logger)) // Log requests
	r.Use(middleware.Recoverer)      // Recover from panics with a JSON body
	r.Use(middleware.CORS)           // Handle CORS
	if cfg.RequestTimeout > 0 {
		r.Use(chimiddleware.Timeout(cfg.RequestTimeout))
	}

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		response.Text(w, http.StatusOK, healthMessage)
	})

	// Swagger documentation endpoints
	docs.RegisterRoutes(r)

	// Register routes
	knowledgeapi.RegisterRoutes(r, knowledgeHandler)
	adminapi.RegisterRoutes(r, adminHandler, middleware.AdminOnly(cfg.AdminJWTSecret))

	return r
}
