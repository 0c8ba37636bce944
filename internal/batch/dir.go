// Package batch ingests a directory of documents outside the HTTP surface.
package batch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"github.com/futig/knowledge-backend/internal/entity"
	"github.com/futig/knowledge-backend/internal/pkg/logger"
	"github.com/futig/knowledge-backend/internal/pkg/validator"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

type Ingestor interface {
	Ingest(ctx context.Context, files []entity.UploadedFile) []entity.IngestionOutcome
}

type Extractor interface {
	Supports(ext string) bool
}

// DirJob feeds the supported files of one directory to the ingestion pipeline,
// batchSize files at a time so that only one batch is held in memory
type DirJob struct {
	ingestor    Ingestor
	extractor   Extractor
	batchSize   int
	maxFileSize int64
}

func NewDirJob(ingestor Ingestor, extractor Extractor, batchSize int, maxFileSize int64) *DirJob {
	return &DirJob{
		ingestor:    ingestor,
		extractor:   extractor,
		batchSize:   max(batchSize, 1),
		maxFileSize: maxFileSize,
	}
}

// Report holds one outcome per ingested file, in file name order
type Report struct {
	Outcomes []entity.IngestionOutcome
}

func (r Report) Count(status entity.IngestionStatus) int {
	n := 0
	for _, o := range r.Outcomes {
		if o.Status == status {
			n++
		}
	}
	return n
}

// Run ingests the regular files directly inside dir whose extension is supported.
// Subdirectories and other files are ignored.
func (j *DirJob) Run(ctx context.Context, dir string) (Report, error) {
	ctx = logger.WithAction(ctx, "ingest_dir")

	paths, err := j.listFiles(dir)
	if err != nil {
		return Report{}, err
	}
	if len(paths) == 0 {
		return Report{}, fmt.Errorf("%w: no supported files in %s", entity.ErrNoFiles, dir)
	}

	ctxzap.Info(ctx, "files found", zap.String("dir", dir), zap.Int("file_count", len(paths)))

	var report Report
	for batch := range slices.Chunk(paths, j.batchSize) {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		files := make([]entity.UploadedFile, 0, len(batch))
		for _, p := range batch {
			f, err := j.readFile(p)
			if err != nil {
				return report, err
			}
			files = append(files, f)
		}

		report.Outcomes = append(report.Outcomes, j.ingestor.Ingest(ctx, files)...)
	}

	return report, nil
}

func (j *DirJob) listFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read directory %s: %w", dir, err)
	}

	// ReadDir returns entries sorted by name
	var paths []string
	for _, e := range entries {
		if !e.Type().IsRegular() {
			continue
		}
		if !j.extractor.Supports(validator.Extension(e.Name())) {
			continue
		}
		paths = append(paths, filepath.Join(dir, e.Name()))
	}
	return paths, nil
}

// readFile loads path unless it is over the size limit; ingestion then reports it as too large
func (j *DirJob) readFile(path string) (entity.UploadedFile, error) {
	info, err := os.Stat(path)
	if err != nil {
		return entity.UploadedFile{}, fmt.Errorf("stat %s: %w", path, err)
	}

	f := entity.UploadedFile{Name: filepath.Base(path), Size: info.Size()}
	if j.maxFileSize > 0 && info.Size() > j.maxFileSize {
		return f, nil
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return f, fmt.Errorf("read %s: %w", path, err)
	}
	f.Content = content
	return f, nil
}
