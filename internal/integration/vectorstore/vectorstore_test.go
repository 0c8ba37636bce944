package vectorstore

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/futig/knowledge-backend/internal/config"
	"github.com/futig/knowledge-backend/internal/entity"
	"go.uber.org/zap/zaptest"
)

func newTestAzure(t *testing.T, url string) *AzureSearchConnector {
	t.Helper()
	return NewAzureSearchConnector(config.VectorStoreConfig{
		HTTPClientConfig: config.HTTPClientConfig{
			Url:            url,
			APIKey:         "search-key",
			RequestTimeout: 5 * time.Second,
		},
		Index:      "knowledge",
		APIVersion: "2023-11-01",
	}, zaptest.NewLogger(t))
}

func TestAzureSearch_Upsert(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/indexes/knowledge/docs/index" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.Header.Get("api-key") != "search-key" {
			t.Errorf("missing api-key header")
		}

		var req entity.SearchIndexRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if len(req.Value) != 2 || req.Value[0].Action != "upload" {
			t.Errorf("unexpected actions %+v", req.Value)
		}

		w.Write([]byte(`{"value":[
			{"key":"a","status":true,"errorMessage":null,"statusCode":201},
			{"key":"b","status":false,"errorMessage":"bad vector","statusCode":400}
		]}`))
	}))
	defer srv.Close()

	results, err := newTestAzure(t, srv.URL).Upsert(context.Background(), []entity.IndexedRecord{
		{ID: "a", Content: "alpha", Source: "a.txt", Vector: entity.EmbeddingVector{1, 0}},
		{ID: "b", Content: "beta", Source: "b.txt", Vector: entity.EmbeddingVector{0, 1}},
	})
	if err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("got %d results", len(results))
	}
	if !results[0].Succeeded {
		t.Errorf("record a should succeed")
	}
	if results[1].Succeeded || results[1].Message != "bad vector" {
		t.Errorf("record b = %+v", results[1])
	}
}

func TestAzureSearch_Search(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/indexes/knowledge/docs/search" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}

		var req entity.SearchQueryRequest
		json.NewDecoder(r.Body).Decode(&req)
		if req.Top != 3 || len(req.VectorQueries) != 1 || req.VectorQueries[0].K != 3 {
			t.Errorf("unexpected k in %+v", req)
		}
		if req.VectorQueries[0].Fields != "contentVector" {
			t.Errorf("fields = %q", req.VectorQueries[0].Fields)
		}
		if req.Select != "id,content,source" {
			t.Errorf("select = %q", req.Select)
		}

		w.Write([]byte(`{"value":[{"@search.score":0.9,"id":"a","content":"alpha","source":"a.txt"}]}`))
	}))
	defer srv.Close()

	hits, err := newTestAzure(t, srv.URL).Search(context.Background(), entity.EmbeddingVector{1, 0}, 3, []string{"id", "content", "source"})
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(hits) != 1 || hits[0].ID != "a" || hits[0].Score != 0.9 {
		t.Errorf("Search() = %+v", hits)
	}
}

func TestAzureSearch_ServiceUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	_, err := newTestAzure(t, srv.URL).Search(context.Background(), entity.EmbeddingVector{1}, 1, nil)

	var pe *entity.ProviderError
	if !errors.As(err, &pe) {
		t.Fatalf("expected ProviderError, got %v", err)
	}
	if pe.Kind != entity.ProviderErrorAuth {
		t.Errorf("Kind = %s, want auth", pe.Kind)
	}
}

func TestMemoryStore_SearchOrdersByScore(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	_, err := store.Upsert(ctx, []entity.IndexedRecord{
		{ID: "x", Content: "x", Vector: entity.EmbeddingVector{1, 0}},
		{ID: "y", Content: "y", Vector: entity.EmbeddingVector{0.7, 0.7}},
		{ID: "z", Content: "z", Vector: entity.EmbeddingVector{0, 1}},
	})
	if err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}

	hits, err := store.Search(ctx, entity.EmbeddingVector{1, 0}, 2, nil)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(hits) != 2 {
		t.Fatalf("got %d hits, want 2", len(hits))
	}
	if hits[0].ID != "x" || hits[1].ID != "y" {
		t.Errorf("order = %s, %s", hits[0].ID, hits[1].ID)
	}
	if hits[0].Score < hits[1].Score {
		t.Errorf("scores not descending: %v", hits)
	}
}

func TestMemoryStore_DuplicateID(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	store.Upsert(ctx, []entity.IndexedRecord{{ID: "a", Vector: entity.EmbeddingVector{1}}})
	results, err := store.Upsert(ctx, []entity.IndexedRecord{
		{ID: "a", Vector: entity.EmbeddingVector{1}},
		{ID: "b", Vector: entity.EmbeddingVector{1}},
	})
	if err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}
	if results[0].Succeeded {
		t.Errorf("duplicate id accepted")
	}
	if !results[1].Succeeded {
		t.Errorf("fresh id rejected: %s", results[1].Message)
	}
	if store.Len() != 2 {
		t.Errorf("Len() = %d, want 2", store.Len())
	}
}

func TestMemoryStore_EmptyStore(t *testing.T) {
	hits, err := NewMemoryStore().Search(context.Background(), entity.EmbeddingVector{1}, 5, nil)
	if err != nil || len(hits) != 0 {
		t.Errorf("Search() = %v, %v", hits, err)
	}
}
