package knowledge

import (
	"context"

	"github.com/futig/knowledge-backend/internal/entity"
)

type RetrievalUsecase interface {
	Search(ctx context.Context, query string, requestedTopK *int) ([]entity.SearchHit, error)
}

type AnswerUsecase interface {
	Ask(ctx context.Context, query string, requestedTopK *int) (*entity.RagAnswer, error)
}

type IngestionUsecase interface {
	Ingest(ctx context.Context, files []entity.UploadedFile) []entity.IngestionOutcome
}
