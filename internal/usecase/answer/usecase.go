package answer

import (
	"context"
	"strings"

	"github.com/futig/knowledge-backend/internal/entity"
	"github.com/futig/knowledge-backend/internal/pkg/logger"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

// AnswerUsecase implements the retrieve-then-generate flow
type AnswerUsecase struct {
	retriever Retriever
	composer  *Composer
	registry  Registry
}

func NewUsecase(
	retriever Retriever,
	composer *Composer,
	registry Registry,
) *AnswerUsecase {
	return &AnswerUsecase{
		retriever: retriever,
		composer:  composer,
		registry:  registry,
	}
}

// Ask retrieves context for query and asks the generator to answer from it.
// One settings snapshot serves both retrieval and composition.
// Retrieval failures are counted by the retriever; generation failures here.
func (uc *AnswerUsecase) Ask(ctx context.Context, query string, requestedTopK *int) (*entity.RagAnswer, error) {
	ctx = logger.WithAction(ctx, "rag_chat")

	if strings.TrimSpace(query) == "" {
		return nil, entity.ErrInvalidQuery
	}
	if !uc.composer.Configured() {
		return nil, entity.ErrGenerationNotConfigured
	}

	settings := uc.registry.Settings()
	uc.registry.RecordRag()
	ctxzap.Info(ctx, "rag request", logger.Query(query, settings.EnableLogging))

	hits, err := uc.retriever.SearchWithSettings(ctx, query, requestedTopK, settings)
	if err != nil {
		return nil, err
	}

	answer, err := uc.composer.Compose(ctx, query, hits, settings)
	if err != nil {
		uc.registry.RecordError()
		ctxzap.Error(ctx, "rag answer failed", zap.Error(err))
		return nil, err
	}

	return answer, nil
}
