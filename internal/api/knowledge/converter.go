package knowledge

import (
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"strings"

	"github.com/futig/knowledge-backend/internal/entity"
)

// parseQuery accepts only a JSON string with non-blank content
func parseQuery(raw json.RawMessage) (string, bool) {
	var q string
	if err := json.Unmarshal(raw, &q); err != nil {
		return "", false
	}
	if strings.TrimSpace(q) == "" {
		return "", false
	}
	return q, true
}

// toUploadedFile reads fh into memory unless it is over limit,
// in which case only the name and size are kept
func toUploadedFile(fh *multipart.FileHeader, limit int64) (entity.UploadedFile, error) {
	f := entity.UploadedFile{Name: fh.Filename, Size: fh.Size}
	if limit > 0 && fh.Size > limit {
		return f, nil
	}

	src, err := fh.Open()
	if err != nil {
		return f, fmt.Errorf("open file %s: %w", fh.Filename, err)
	}
	defer src.Close()

	content, err := io.ReadAll(src)
	if err != nil {
		return f, fmt.Errorf("read file %s: %w", fh.Filename, err)
	}

	f.Content = content
	return f, nil
}

func toSearchResponse(query string, hits []entity.SearchHit) *entity.SearchResponse {
	if hits == nil {
		hits = []entity.SearchHit{}
	}
	return &entity.SearchResponse{
		Query:   query,
		Count:   len(hits),
		Results: hits,
	}
}
