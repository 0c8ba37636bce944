package repository

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/futig/knowledge-backend/internal/entity"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	insertRecordQuery = `
		INSERT INTO knowledge_records (id, content, source, embedding)
		VALUES ($1, $2, $3, $4::vector)
		ON CONFLICT (id) DO NOTHING`

	searchRecordsQuery = `
		SELECT id, content, source, 1 - (embedding <=> $1::vector) AS score
		FROM knowledge_records
		ORDER BY embedding <=> $1::vector
		LIMIT $2`
)

// RecordRepository defines the interface for indexed record persistence
type RecordRepository interface {
	Upsert(ctx context.Context, records []entity.IndexedRecord) ([]entity.UpsertResult, error)
	Search(ctx context.Context, vector entity.EmbeddingVector, k int, selectFields []string) ([]entity.SearchHit, error)
}

var _ RecordRepository = &RecordPostgres{}

// RecordPostgres implements RecordRepository on PostgreSQL with the pgvector extension
type RecordPostgres struct {
	db *pgxpool.Pool
}

func NewRecordPostgres(db *pgxpool.Pool) *RecordPostgres {
	return &RecordPostgres{db: db}
}

// Upsert inserts records in one batch. Existing IDs are left untouched and reported as failed.
func (r *RecordPostgres) Upsert(ctx context.Context, records []entity.IndexedRecord) ([]entity.UpsertResult, error) {
	if len(records) == 0 {
		return nil, nil
	}

	batch := &pgx.Batch{}
	for _, rec := range records {
		batch.Queue(insertRecordQuery, rec.ID, rec.Content, rec.Source, vectorLiteral(rec.Vector))
	}

	br := r.db.SendBatch(ctx, batch)
	defer br.Close()

	results := make([]entity.UpsertResult, 0, len(records))
	for _, rec := range records {
		tag, err := br.Exec()
		switch {
		case err != nil:
			results = append(results, entity.UpsertResult{ID: rec.ID, Message: err.Error()})
		case tag.RowsAffected() == 0:
			results = append(results, entity.UpsertResult{ID: rec.ID, Message: fmt.Sprintf("duplicate id %q", rec.ID)})
		default:
			results = append(results, entity.UpsertResult{ID: rec.ID, Succeeded: true})
		}
	}

	if err := br.Close(); err != nil {
		return nil, fmt.Errorf("insert records: %w", err)
	}

	return results, nil
}

// Search returns the k records nearest to vector by cosine distance.
// selectFields is ignored; the row shape is fixed.
func (r *RecordPostgres) Search(ctx context.Context, vector entity.EmbeddingVector, k int, selectFields []string) ([]entity.SearchHit, error) {
	rows, err := r.db.Query(ctx, searchRecordsQuery, vectorLiteral(vector), k)
	if err != nil {
		return nil, fmt.Errorf("search records: %w", err)
	}
	defer rows.Close()

	hits := make([]entity.SearchHit, 0, k)
	for rows.Next() {
		var hit entity.SearchHit
		if err := rows.Scan(&hit.ID, &hit.Content, &hit.Source, &hit.Score); err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		hits = append(hits, hit)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate records: %w", err)
	}

	return hits, nil
}

// vectorLiteral renders v in pgvector's text input format, e.g. [0.1,0.2]
func vectorLiteral(v entity.EmbeddingVector) string {
	var sb strings.Builder
	sb.Grow(len(v)*8 + 2)
	sb.WriteByte('[')
	for i, f := range v {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(strconv.FormatFloat(float64(f), 'f', -1, 32))
	}
	sb.WriteByte(']')
	return sb.String()
}
