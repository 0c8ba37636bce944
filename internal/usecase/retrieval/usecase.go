package retrieval

import (
	"context"
	"fmt"
	"strings"

	"github.com/futig/knowledge-backend/internal/entity"
	"github.com/futig/knowledge-backend/internal/pkg/logger"
	pkgRetry "github.com/futig/knowledge-backend/internal/pkg/retry"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

var searchFields = []string{"id", "content", "source"}

// RetrievalUsecase finds the records most similar to a query
type RetrievalUsecase struct {
	embedder    Embedder
	searcher    VectorSearcher
	registry    Registry
	embedRetry  pkgRetry.RetryConfig
	searchRetry pkgRetry.RetryConfig
}

func NewUsecase(
	embedder Embedder,
	searcher VectorSearcher,
	registry Registry,
	embedRetry pkgRetry.RetryConfig,
	searchRetry pkgRetry.RetryConfig,
) *RetrievalUsecase {
	return &RetrievalUsecase{
		embedder:    embedder,
		searcher:    searcher,
		registry:    registry,
		embedRetry:  embedRetry,
		searchRetry: searchRetry,
	}
}

// Search embeds query and returns up to the effective top-K hits by descending score.
// Every call is counted and failures also bump the error counter.
func (uc *RetrievalUsecase) Search(ctx context.Context, query string, requestedTopK *int) ([]entity.SearchHit, error) {
	return uc.SearchWithSettings(ctx, query, requestedTopK, uc.registry.Settings())
}

// SearchWithSettings is Search under a settings snapshot the caller already holds
func (uc *RetrievalUsecase) SearchWithSettings(ctx context.Context, query string, requestedTopK *int, settings entity.AdminSettings) ([]entity.SearchHit, error) {
	ctx = logger.WithAction(ctx, "search")
	uc.registry.RecordSearch()

	hits, err := uc.search(ctx, query, requestedTopK, settings)
	if err != nil {
		uc.registry.RecordError()
		ctxzap.Error(ctx, "search failed", zap.Error(err))
		return nil, err
	}

	return hits, nil
}

func (uc *RetrievalUsecase) search(ctx context.Context, query string, requestedTopK *int, settings entity.AdminSettings) ([]entity.SearchHit, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, entity.ErrInvalidQuery
	}

	k := EffectiveTopK(requestedTopK, settings)
	ctxzap.Info(ctx, "search request", logger.Query(query, settings.EnableLogging), zap.Int("top_k", k))

	vec, err := pkgRetry.Do(ctx, uc.embedRetry, func() (entity.EmbeddingVector, error) {
		return uc.embedder.Embed(ctx, query)
	})
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	hits, err := pkgRetry.Do(ctx, uc.searchRetry, func() ([]entity.SearchHit, error) {
		return uc.searcher.Search(ctx, vec, k, searchFields)
	})
	if err != nil {
		return nil, fmt.Errorf("vector search: %w", err)
	}

	if len(hits) > k {
		hits = hits[:k]
	}

	ctxzap.Debug(ctx, "search completed", zap.Int("hit_count", len(hits)))
	return hits, nil
}
