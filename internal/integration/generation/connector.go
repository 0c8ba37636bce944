package generation

import (
	"context"
	"net/http"

	"github.com/futig/knowledge-backend/internal/config"
	"github.com/futig/knowledge-backend/internal/entity"
	"github.com/futig/knowledge-backend/internal/integration/common"
	pkghttp "github.com/futig/knowledge-backend/pkg/http"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

const (
	providerName = "generation"

	chatCompletionsEndpoint = "/chat/completions"
)

// Connector calls an OpenAI-compatible chat completions endpoint.
// It performs a single attempt; retries are up to the caller.
type Connector struct {
	config    config.GenerationConfig
	connector *pkghttp.Connector
	logger    *zap.Logger
}

func NewConnector(
	cfg config.GenerationConfig,
	logger *zap.Logger,
) *Connector {
	return &Connector{
		connector: common.NewBaseConnector(cfg.HTTPClientConfig, logger),
		config:    cfg,
		logger:    logger,
	}
}

// Generate returns the first choice of a chat completion over messages,
// or an empty string when the model returned none
func (c *Connector) Generate(ctx context.Context, messages []entity.ChatMessage) (string, error) {
	ctxzap.Info(ctx, "generating answer via chat model",
		zap.String("model", c.config.Model),
		zap.Int("message_count", len(messages)),
	)

	req := &entity.ChatCompletionRequest{
		Model:    c.config.Model,
		Messages: messages,
	}

	var resp entity.ChatCompletionResponse
	if err := c.connector.DoRequest(ctx, http.MethodPost, chatCompletionsEndpoint, req, &resp); err != nil {
		ctxzap.Error(ctx, "chat completion failed", zap.Error(err))
		return "", common.ProviderError(providerName, err)
	}

	// an empty completion is not an error; the caller decides on a fallback
	if len(resp.Choices) == 0 {
		ctxzap.Warn(ctx, "chat completion returned no choices")
		return "", nil
	}

	answer := resp.Choices[0].Message.Content
	ctxzap.Info(ctx, "answer generated", zap.Int("answer_length", len(answer)))

	return answer, nil
}
