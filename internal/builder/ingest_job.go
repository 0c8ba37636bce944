package builder

import (
	"context"

	"github.com/futig/knowledge-backend/internal/batch"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// IngestJob ingests a directory once and exits
type IngestJob struct {
	job    *batch.DirJob
	db     *pgxpool.Pool // nil unless the pgvector backend is used
	logger *zap.Logger
}

func (j *IngestJob) Logger() *zap.Logger {
	return j.logger
}

// Run ingests dir and logs every file outcome
func (j *IngestJob) Run(ctx context.Context, dir string) (batch.Report, error) {
	ctx = ctxzap.ToContext(ctx, j.logger)

	report, err := j.job.Run(ctx, dir)
	for _, o := range report.Outcomes {
		j.logger.Info("file processed",
			zap.String("file", o.File),
			zap.String("status", string(o.Status)),
			zap.String("reason", o.Reason),
			zap.Int("records", o.Records),
		)
	}
	return report, err
}

func (j *IngestJob) Close() {
	if j.db != nil {
		j.db.Close()
	}
	_ = j.logger.Sync()
}
