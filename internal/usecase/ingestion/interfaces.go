package ingestion

import (
	"context"

	"github.com/futig/knowledge-backend/internal/entity"
)

type TextExtractor interface {
	Supports(ext string) bool
	Extract(ctx context.Context, content []byte, ext string) (string, error)
}

type Embedder interface {
	Embed(ctx context.Context, text string) (entity.EmbeddingVector, error)
}

type VectorIndexer interface {
	Upsert(ctx context.Context, records []entity.IndexedRecord) ([]entity.UpsertResult, error)
}

type MetricsRecorder interface {
	RecordIngested()
}
