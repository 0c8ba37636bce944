package answer

import (
	"context"
	"fmt"
	"strings"

	"github.com/futig/knowledge-backend/internal/entity"
	pkgRetry "github.com/futig/knowledge-backend/internal/pkg/retry"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

// Composer turns ranked hits into a grounded answer
type Composer struct {
	generator Generator
	retry     pkgRetry.RetryConfig
}

// NewComposer creates a composer. A nil generator leaves generation unconfigured.
func NewComposer(generator Generator, retry pkgRetry.RetryConfig) *Composer {
	return &Composer{
		generator: generator,
		retry:     retry,
	}
}

func (c *Composer) Configured() bool {
	return c.generator != nil
}

// Compose answers query from hits. Hits are used in the order given.
// Without hits the generator is not called at all.
func (c *Composer) Compose(ctx context.Context, query string, hits []entity.SearchHit, settings entity.AdminSettings) (*entity.RagAnswer, error) {
	if len(hits) == 0 {
		ctxzap.Info(ctx, "no hits, returning not-found answer")
		return &entity.RagAnswer{
			Query:     query,
			Answer:    NotFoundAnswer,
			Citations: []entity.SearchHit{},
		}, nil
	}

	if c.generator == nil {
		return nil, entity.ErrGenerationNotConfigured
	}

	messages := []entity.ChatMessage{
		{Role: entity.ChatRoleSystem, Content: systemPrompt(settings.RagSystemPrompt)},
		{Role: entity.ChatRoleUser, Content: userPrompt(buildContext(hits), query)},
	}

	text, err := pkgRetry.Do(ctx, c.retry, func() (string, error) {
		return c.generator.Generate(ctx, messages)
	})
	if err != nil {
		return nil, fmt.Errorf("generate answer: %w", err)
	}

	if strings.TrimSpace(text) == "" {
		text = NoAnswer
	}

	ctxzap.Debug(ctx, "answer composed", zap.Int("context_blocks", len(hits)))

	return &entity.RagAnswer{
		Query:     query,
		Answer:    text,
		Citations: hits,
	}, nil
}
