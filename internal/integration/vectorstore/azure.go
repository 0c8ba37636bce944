package vectorstore

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/futig/knowledge-backend/internal/config"
	"github.com/futig/knowledge-backend/internal/entity"
	"github.com/futig/knowledge-backend/internal/integration/common"
	pkgHTTP "github.com/futig/knowledge-backend/pkg/http"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

const (
	providerName = "vector search"

	vectorField  = "contentVector"
	uploadAction = "upload"
)

// AzureSearchConnector indexes and queries records in an Azure AI Search index
type AzureSearchConnector struct {
	config    config.VectorStoreConfig
	connector *pkgHTTP.Connector
	logger    *zap.Logger
}

func NewAzureSearchConnector(
	cfg config.VectorStoreConfig,
	logger *zap.Logger,
) *AzureSearchConnector {
	return &AzureSearchConnector{
		connector: common.NewBaseConnector(cfg.HTTPClientConfig, logger),
		config:    cfg,
		logger:    logger,
	}
}

// Upsert uploads records
// POST /indexes/{index}/docs/index?api-version={version}
func (c *AzureSearchConnector) Upsert(ctx context.Context, records []entity.IndexedRecord) ([]entity.UpsertResult, error) {
	if len(records) == 0 {
		return nil, nil
	}

	req := &entity.SearchIndexRequest{
		Value: make([]entity.SearchDocumentAction, 0, len(records)),
	}
	for _, r := range records {
		req.Value = append(req.Value, entity.SearchDocumentAction{
			Action:        uploadAction,
			ID:            r.ID,
			Content:       r.Content,
			Source:        r.Source,
			ContentVector: r.Vector,
		})
	}

	ctxzap.Info(ctx, "uploading records to search index", zap.Int("record_count", len(records)))

	var resp entity.SearchIndexResponse
	if err := c.connector.DoRequest(ctx, http.MethodPost, c.endpoint("docs/index"), req, &resp); err != nil {
		ctxzap.Error(ctx, "failed to upload records", zap.Error(err))
		return nil, common.ProviderError(providerName, err)
	}

	byKey := make(map[string]entity.SearchIndexResult, len(resp.Value))
	for _, v := range resp.Value {
		byKey[v.Key] = v
	}

	results := make([]entity.UpsertResult, 0, len(records))
	for _, r := range records {
		v, ok := byKey[r.ID]
		switch {
		case !ok:
			results = append(results, entity.UpsertResult{ID: r.ID, Message: "missing from index response"})
		case !v.Status:
			msg := fmt.Sprintf("status %d", v.StatusCode)
			if v.ErrorMessage != nil {
				msg = *v.ErrorMessage
			}
			results = append(results, entity.UpsertResult{ID: r.ID, Message: msg})
		default:
			results = append(results, entity.UpsertResult{ID: r.ID, Succeeded: true})
		}
	}

	return results, nil
}

// Search runs a pure vector query against the content vector field
// POST /indexes/{index}/docs/search?api-version={version}
func (c *AzureSearchConnector) Search(ctx context.Context, vector entity.EmbeddingVector, k int, selectFields []string) ([]entity.SearchHit, error) {
	req := &entity.SearchQueryRequest{
		VectorQueries: []entity.SearchVectorQuery{
			{
				Kind:   "vector",
				Vector: vector,
				K:      k,
				Fields: vectorField,
			},
		},
		Select: strings.Join(selectFields, ","),
		Top:    k,
	}

	var resp entity.SearchQueryResponse
	if err := c.connector.DoRequest(ctx, http.MethodPost, c.endpoint("docs/search"), req, &resp); err != nil {
		ctxzap.Error(ctx, "vector search failed", zap.Error(err))
		return nil, common.ProviderError(providerName, err)
	}

	hits := make([]entity.SearchHit, 0, len(resp.Value))
	for _, v := range resp.Value {
		hits = append(hits, entity.SearchHit{
			ID:      v.ID,
			Content: v.Content,
			Source:  v.Source,
			Score:   v.Score,
		})
	}

	ctxzap.Debug(ctx, "vector search completed", zap.Int("hit_count", len(hits)))
	return hits, nil
}

func (c *AzureSearchConnector) endpoint(op string) string {
	return fmt.Sprintf("/indexes/%s/%s?api-version=%s",
		url.PathEscape(c.config.Index),
		op,
		url.QueryEscape(c.config.APIVersion),
	)
}
