package vectorstore

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/futig/knowledge-backend/internal/entity"
)

// MemoryStore is an in-process vector store using brute-force cosine similarity.
// Records are append-only; re-using an ID is rejected per record.
type MemoryStore struct {
	mu      sync.RWMutex
	records []entity.IndexedRecord
	ids     map[string]struct{}
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{ids: make(map[string]struct{})}
}

func (s *MemoryStore) Upsert(ctx context.Context, records []entity.IndexedRecord) ([]entity.UpsertResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	results := make([]entity.UpsertResult, 0, len(records))
	for _, r := range records {
		if _, exists := s.ids[r.ID]; exists {
			results = append(results, entity.UpsertResult{ID: r.ID, Message: fmt.Sprintf("duplicate id %q", r.ID)})
			continue
		}
		if len(r.Vector) == 0 {
			results = append(results, entity.UpsertResult{ID: r.ID, Message: "empty vector"})
			continue
		}

		s.ids[r.ID] = struct{}{}
		s.records = append(s.records, r)
		results = append(results, entity.UpsertResult{ID: r.ID, Succeeded: true})
	}

	return results, nil
}

// Search ignores selectFields; every hit carries id, content and source.
func (s *MemoryStore) Search(ctx context.Context, vector entity.EmbeddingVector, k int, selectFields []string) ([]entity.SearchHit, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	hits := make([]entity.SearchHit, 0, len(s.records))
	for _, r := range s.records {
		hits = append(hits, entity.SearchHit{
			ID:      r.ID,
			Content: r.Content,
			Source:  r.Source,
			Score:   cosine(vector, r.Vector),
		})
	}

	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].Score > hits[j].Score
	})

	if k < len(hits) {
		hits = hits[:k]
	}
	return hits, nil
}

// Len returns the number of stored records
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

func cosine(a, b entity.EmbeddingVector) float64 {
	n := min(len(a), len(b))

	var dot, na, nb float64
	for i := 0; i < n; i++ {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
