package retrieval

import (
	"context"

	"github.com/futig/knowledge-backend/internal/entity"
)

type Embedder interface {
	Embed(ctx context.Context, text string) (entity.EmbeddingVector, error)
}

type VectorSearcher interface {
	Search(ctx context.Context, vector entity.EmbeddingVector, k int, selectFields []string) ([]entity.SearchHit, error)
}

type Registry interface {
	Settings() entity.AdminSettings
	RecordSearch()
	RecordError()
}
