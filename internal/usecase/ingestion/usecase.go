package ingestion

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/futig/knowledge-backend/internal/config"
	"github.com/futig/knowledge-backend/internal/entity"
	"github.com/futig/knowledge-backend/internal/pkg/logger"
	pkgRetry "github.com/futig/knowledge-backend/internal/pkg/retry"
	"github.com/futig/knowledge-backend/internal/pkg/validator"
	"github.com/google/uuid"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// IngestionUsecase turns uploaded files into indexed records
type IngestionUsecase struct {
	cfg        config.IngestConfig
	validator  *validator.Validator
	extractor  TextExtractor
	embedder   Embedder
	indexer    VectorIndexer
	metrics    MetricsRecorder
	embedRetry pkgRetry.RetryConfig
	indexRetry pkgRetry.RetryConfig
	newID      func() string
}

// NewUsecase creates a new ingestion use case
func NewUsecase(
	cfg config.IngestConfig,
	validator *validator.Validator,
	extractor TextExtractor,
	embedder Embedder,
	indexer VectorIndexer,
	metrics MetricsRecorder,
	embedRetry pkgRetry.RetryConfig,
	indexRetry pkgRetry.RetryConfig,
) *IngestionUsecase {
	return &IngestionUsecase{
		cfg:        cfg,
		validator:  validator,
		extractor:  extractor,
		embedder:   embedder,
		indexer:    indexer,
		metrics:    metrics,
		embedRetry: embedRetry,
		indexRetry: indexRetry,
		newID:      func() string { return uuid.New().String() },
	}
}

// Ingest processes every file independently and returns one outcome per file
// in submission order. A failing file never aborts the batch.
func (uc *IngestionUsecase) Ingest(ctx context.Context, files []entity.UploadedFile) []entity.IngestionOutcome {
	ctx = logger.WithAction(ctx, "ingest")
	outcomes := make([]entity.IngestionOutcome, len(files))

	var g errgroup.Group
	g.SetLimit(max(uc.cfg.Workers, 1))

	for i, f := range files {
		g.Go(func() error {
			outcomes[i] = uc.ingestFile(ctx, f)
			return nil
		})
	}
	_ = g.Wait()

	ctxzap.Info(ctx, "ingestion batch finished",
		zap.Int("file_count", len(files)),
		zap.Int("ingested", countStatus(outcomes, entity.IngestionStatusIngested)),
	)

	return outcomes
}

func (uc *IngestionUsecase) ingestFile(ctx context.Context, f entity.UploadedFile) entity.IngestionOutcome {
	ctx = logger.AddFields(ctx, zap.String("file", f.Name))
	stage(ctx, entity.StageReceived)

	if uc.validator.FileTooLarge(f.Size) || uc.validator.FileTooLarge(int64(len(f.Content))) {
		return failed(ctx, f.Name, entity.ReasonFileTooLarge)
	}

	ext := validator.Extension(f.Name)
	if !uc.extractor.Supports(ext) {
		return skipped(ctx, f.Name, entity.ReasonUnsupportedExtension)
	}

	text, err := uc.extractor.Extract(ctx, f.Content, ext)
	if err != nil {
		return failed(ctx, f.Name, "extraction failed: "+extractionCause(err))
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return skipped(ctx, f.Name, entity.ReasonEmptyContent)
	}
	stage(ctx, entity.StageExtracted)

	records, err := uc.buildRecords(f.Name, text)
	if err != nil {
		return failed(ctx, f.Name, err.Error())
	}
	if len(records) == 0 {
		return skipped(ctx, f.Name, entity.ReasonEmptyContent)
	}
	stage(ctx, entity.StageChunked, zap.Int("record_count", len(records)))

	for i := range records {
		content := records[i].Content
		vec, err := pkgRetry.Do(ctx, uc.embedRetry, func() (entity.EmbeddingVector, error) {
			return uc.embedder.Embed(ctx, content)
		})
		if err != nil {
			return failed(ctx, f.Name, fmt.Sprintf("embedding failed: %v", err))
		}
		records[i].Vector = vec
	}
	stage(ctx, entity.StageEmbedded)

	results, err := uc.upsert(ctx, records)
	if err != nil {
		return failed(ctx, f.Name, fmt.Sprintf("indexing failed: %v", err))
	}
	if msg := firstRejected(records, results); msg != "" {
		return failed(ctx, f.Name, "indexing failed: "+msg)
	}
	stage(ctx, entity.StageIndexed)

	uc.metrics.RecordIngested()

	return entity.IngestionOutcome{
		File:    f.Name,
		Status:  entity.IngestionStatusIngested,
		Records: len(records),
	}
}

// upsert sends records in batches of at most UpsertBatchSize, each under the
// index retry policy, and merges the per-record results
func (uc *IngestionUsecase) upsert(ctx context.Context, records []entity.IndexedRecord) ([]entity.UpsertResult, error) {
	size := uc.cfg.UpsertBatchSize
	if size <= 0 || size > config.MaxUpsertBatchSize {
		size = config.MaxUpsertBatchSize
	}

	results := make([]entity.UpsertResult, 0, len(records))
	for batch := range slices.Chunk(records, size) {
		res, err := pkgRetry.Do(ctx, uc.indexRetry, func() ([]entity.UpsertResult, error) {
			return uc.indexer.Upsert(ctx, batch)
		})
		if err != nil {
			return nil, err
		}
		results = append(results, res...)
	}
	return results, nil
}

// buildRecords cuts text into records according to the configured granularity.
// Blank chunks are dropped and every record content is trimmed.
func (uc *IngestionUsecase) buildRecords(name, text string) ([]entity.IndexedRecord, error) {
	prefix := validator.SafeBase(name) + "-" + uc.newID()

	if uc.cfg.Granularity == config.GranularityDocument {
		return []entity.IndexedRecord{{
			ID:      prefix,
			Content: strings.TrimSpace(truncate(text, uc.cfg.MaxEmbedChars)),
			Source:  name,
		}}, nil
	}

	chunks, err := splitChunks(name, text, uc.cfg.ChunkSize)
	if err != nil {
		return nil, err
	}

	records := make([]entity.IndexedRecord, 0, len(chunks))
	for _, c := range chunks {
		content := strings.TrimSpace(truncate(c.Text, uc.cfg.MaxEmbedChars))
		if content == "" {
			continue
		}
		records = append(records, entity.IndexedRecord{
			ID:      fmt.Sprintf("%s-%d", prefix, c.SequenceIndex),
			Content: content,
			Source:  name,
		})
	}
	return records, nil
}

// extractionCause drops the sentinel prefix so reasons read "extraction failed: PDF parsing error: ..."
func extractionCause(err error) string {
	if errors.Is(err, entity.ErrExtraction) {
		return strings.TrimPrefix(err.Error(), entity.ErrExtraction.Error()+": ")
	}
	return err.Error()
}
