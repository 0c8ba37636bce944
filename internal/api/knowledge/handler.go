package knowledge

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/futig/knowledge-backend/internal/config"
	"github.com/futig/knowledge-backend/internal/entity"
	"github.com/futig/knowledge-backend/internal/pkg/logger"
	"github.com/futig/knowledge-backend/internal/pkg/response"
	"github.com/futig/knowledge-backend/internal/pkg/validator"
	"github.com/futig/knowledge-backend/internal/usecase/retrieval"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

const (
	msgInvalidQuery     = "Body must contain 'query' string"
	msgInternal         = "Internal server error"
	msgRagFailed        = "RAG chat failed"
	msgRagNotConfigured = "RAG chat not configured"
	msgNoFiles          = "No files uploaded."
	msgUploadTooLarge   = "Upload too large."
	msgIngestFailed     = "Failed to ingest uploaded files."

	ragNotConfiguredDetails = "Missing GENERATION_SERVICE_URL, GENERATION_MODEL, or GENERATION_API_KEY in environment."

	// multipartOverhead covers part headers and boundaries on top of the file bytes
	multipartOverhead = 1 << 20
)

type Handler struct {
	retrieval RetrievalUsecase
	answer    AnswerUsecase
	ingestion IngestionUsecase
	cfg       config.FileUploadConfig
	validator *validator.Validator
}

func NewHandler(
	retrieval RetrievalUsecase,
	answer AnswerUsecase,
	ingestion IngestionUsecase,
	cfg config.FileUploadConfig,
	validator *validator.Validator,
) *Handler {
	return &Handler{
		retrieval: retrieval,
		answer:    answer,
		ingestion: ingestion,
		cfg:       cfg,
		validator: validator,
	}
}

// Search handles POST /search
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	ctx := logger.WithAction(r.Context(), "Search")

	query, topK, ok := h.decodeQuery(ctx, w, r)
	if !ok {
		return
	}

	hits, err := h.retrieval.Search(ctx, query, topK)
	if err != nil {
		h.handleUsecaseError(ctx, w, msgInternal, err)
		return
	}

	ctxzap.Info(ctx, "search completed", zap.Int("count", len(hits)))
	response.Success(w, toSearchResponse(query, hits))
}

// RagChat handles POST /rag-chat
func (h *Handler) RagChat(w http.ResponseWriter, r *http.Request) {
	ctx := logger.WithAction(r.Context(), "RagChat")

	query, topK, ok := h.decodeQuery(ctx, w, r)
	if !ok {
		return
	}

	answer, err := h.answer.Ask(ctx, query, topK)
	if err != nil {
		h.handleUsecaseError(ctx, w, msgRagFailed, err)
		return
	}

	ctxzap.Info(ctx, "rag answer returned", zap.Int("documents", len(answer.Citations)))
	response.Success(w, answer)
}

// UploadKnowledge handles POST /upload-knowledge
func (h *Handler) UploadKnowledge(w http.ResponseWriter, r *http.Request) {
	ctx := logger.WithAction(r.Context(), "UploadKnowledge")

	limit := h.maxBodySize()
	r.Body = http.MaxBytesReader(w, r.Body, limit)

	if err := r.ParseMultipartForm(h.cfg.MaxUploadSize); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			ctxzap.Warn(ctx, "upload body over limit", zap.Int64("limit_bytes", limit))
			response.Error(w, http.StatusBadRequest, msgUploadTooLarge,
				fmt.Sprintf("%v: request body exceeds %d bytes", entity.ErrUploadTooLarge, limit))
			return
		}
		ctxzap.Warn(ctx, "failed to parse multipart form", zap.Error(err))
		response.Error(w, http.StatusBadRequest, msgNoFiles, err.Error())
		return
	}
	defer r.MultipartForm.RemoveAll()

	headers := r.MultipartForm.File["files"]
	if err := h.validator.ValidateUpload(headers); err != nil {
		h.handleUsecaseError(ctx, w, msgIngestFailed, err)
		return
	}

	files := make([]entity.UploadedFile, 0, len(headers))
	for _, fh := range headers {
		f, err := toUploadedFile(fh, h.cfg.MaxFileSize)
		if err != nil {
			ctxzap.Error(ctx, "failed to read uploaded file", zap.Error(err))
			response.Error(w, http.StatusInternalServerError, msgIngestFailed, err.Error())
			return
		}
		files = append(files, f)
	}

	ctxzap.Info(ctx, "ingesting uploaded files", zap.Int("file_count", len(files)))

	results := h.ingestion.Ingest(ctx, files)
	response.Success(w, &entity.UploadKnowledgeResponse{
		Success: true,
		Results: results,
	})
}

// maxBodySize bounds the whole multipart body: every allowed file at full size plus framing
func (h *Handler) maxBodySize() int64 {
	return int64(max(h.cfg.MaxFileCount, 1))*h.cfg.MaxFileSize + multipartOverhead
}

func (h *Handler) decodeQuery(ctx context.Context, w http.ResponseWriter, r *http.Request) (string, *int, bool) {
	var req entity.QueryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		ctxzap.Warn(ctx, "failed to decode request body", zap.Error(err))
		response.Error(w, http.StatusBadRequest, msgInvalidQuery, nil)
		return "", nil, false
	}

	query, ok := parseQuery(req.Query)
	if !ok {
		response.Error(w, http.StatusBadRequest, msgInvalidQuery, nil)
		return "", nil, false
	}

	return query, retrieval.ParseTopK(req.TopK), true
}

func (h *Handler) handleUsecaseError(ctx context.Context, w http.ResponseWriter, fallback string, err error) {
	var pe *entity.ProviderError

	switch {
	case errors.Is(err, entity.ErrInvalidQuery):
		response.Error(w, http.StatusBadRequest, msgInvalidQuery, nil)
	case errors.Is(err, entity.ErrNoFiles):
		response.Error(w, http.StatusBadRequest, msgNoFiles, nil)
	case entity.IsValidationError(err):
		response.Error(w, http.StatusBadRequest, "Invalid request", err.Error())
	case errors.Is(err, entity.ErrGenerationNotConfigured):
		response.Error(w, http.StatusInternalServerError, msgRagNotConfigured, ragNotConfiguredDetails)
	case errors.As(err, &pe) && pe.Details != nil:
		ctxzap.Error(ctx, fallback, zap.Error(err))
		response.Error(w, http.StatusInternalServerError, fallback, pe.Details)
	default:
		ctxzap.Error(ctx, fallback, zap.Error(err))
		response.Error(w, http.StatusInternalServerError, fallback, err.Error())
	}
}
