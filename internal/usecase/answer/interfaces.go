package answer

import (
	"context"

	"github.com/futig/knowledge-backend/internal/entity"
)

type Generator interface {
	Generate(ctx context.Context, messages []entity.ChatMessage) (string, error)
}

type Retriever interface {
	SearchWithSettings(ctx context.Context, query string, requestedTopK *int, settings entity.AdminSettings) ([]entity.SearchHit, error)
}

type Registry interface {
	Settings() entity.AdminSettings
	RecordRag()
	RecordError()
}
