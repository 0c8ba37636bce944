package embedding

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/futig/knowledge-backend/internal/config"
	"github.com/futig/knowledge-backend/internal/entity"
	"github.com/futig/knowledge-backend/internal/integration/common"
	pkghttp "github.com/futig/knowledge-backend/pkg/http"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

const providerName = "embedding"

// Connector calls an Azure OpenAI embeddings deployment
type Connector struct {
	config    config.EmbeddingConfig
	connector *pkghttp.Connector
	logger    *zap.Logger
}

func NewConnector(
	cfg config.EmbeddingConfig,
	logger *zap.Logger,
) *Connector {
	return &Connector{
		connector: common.NewBaseConnector(cfg.HTTPClientConfig, logger),
		config:    cfg,
		logger:    logger,
	}
}

// Embed returns the embedding of text
// POST /openai/deployments/{deployment}/embeddings?api-version={version}
func (c *Connector) Embed(ctx context.Context, text string) (entity.EmbeddingVector, error) {
	endpoint := fmt.Sprintf("/openai/deployments/%s/embeddings?api-version=%s",
		url.PathEscape(c.config.Deployment),
		url.QueryEscape(c.config.APIVersion),
	)

	req := &entity.EmbeddingRequest{
		Input: []string{text},
		Model: c.config.Deployment,
	}

	var resp entity.EmbeddingResponse
	if err := c.connector.DoRequest(ctx, http.MethodPost, endpoint, req, &resp); err != nil {
		ctxzap.Error(ctx, "failed to get embedding", zap.Error(err))
		return nil, common.ProviderError(providerName, err)
	}

	if len(resp.Data) == 0 || len(resp.Data[0].Embedding) == 0 {
		return nil, &entity.ProviderError{
			Provider: providerName,
			Kind:     entity.ProviderErrorOther,
			Details:  "empty embedding response",
			Err:      fmt.Errorf("no embedding returned"),
		}
	}

	ctxzap.Debug(ctx, "embedding received",
		zap.Int("input_length", len(text)),
		zap.Int("dimension", len(resp.Data[0].Embedding)),
	)

	return resp.Data[0].Embedding, nil
}
