package ingestion

import (
	"context"
	"fmt"

	"github.com/futig/knowledge-backend/internal/entity"
	"github.com/futig/knowledge-backend/internal/pkg/chunker"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

func stage(ctx context.Context, s entity.IngestionStage, fields ...zap.Field) {
	ctxzap.Debug(ctx, "ingestion stage", append(fields, zap.String("stage", string(s)))...)
}

func skipped(ctx context.Context, file, reason string) entity.IngestionOutcome {
	ctxzap.Info(ctx, "file skipped",
		zap.String("stage", string(entity.StageSkipped)),
		zap.String("reason", reason),
	)
	return entity.IngestionOutcome{File: file, Status: entity.IngestionStatusSkipped, Reason: reason}
}

func failed(ctx context.Context, file, reason string) entity.IngestionOutcome {
	ctxzap.Warn(ctx, "file ingestion failed",
		zap.String("stage", string(entity.StageFailed)),
		zap.String("reason", reason),
	)
	return entity.IngestionOutcome{File: file, Status: entity.IngestionStatusFailed, Reason: reason}
}

func splitChunks(name, text string, size int) ([]entity.Chunk, error) {
	chunks, err := chunker.Split(name, text, size)
	if err != nil {
		return nil, fmt.Errorf("chunking failed: %w", err)
	}
	return chunks, nil
}

func truncate(text string, limit int) string {
	if limit <= 0 {
		return text
	}
	return chunker.Truncate(text, limit)
}

// firstRejected returns a message for the first record the store did not accept
func firstRejected(records []entity.IndexedRecord, results []entity.UpsertResult) string {
	byID := make(map[string]entity.UpsertResult, len(results))
	for _, r := range results {
		byID[r.ID] = r
	}

	for _, rec := range records {
		r, ok := byID[rec.ID]
		if !ok {
			return fmt.Sprintf("%s: no result from store", rec.ID)
		}
		if !r.Succeeded {
			return fmt.Sprintf("%s: %s", rec.ID, r.Message)
		}
	}
	return ""
}

func countStatus(outcomes []entity.IngestionOutcome, status entity.IngestionStatus) int {
	n := 0
	for _, o := range outcomes {
		if o.Status == status {
			n++
		}
	}
	return n
}
