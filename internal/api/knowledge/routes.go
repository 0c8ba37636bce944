package knowledge

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers search, RAG and upload routes
func RegisterRoutes(r chi.Router, h *Handler) {
	r.Post("/search", h.Search)
	r.Post("/rag-chat", h.RagChat)
	r.Post("/upload-knowledge", h.UploadKnowledge)
}
