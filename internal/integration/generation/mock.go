package generation

import (
	"context"
	"fmt"
	"strings"

	"github.com/futig/knowledge-backend/internal/entity"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

// MockConnector answers with the first context block it was given
type MockConnector struct {
	logger *zap.Logger
}

func NewMockConnector(logger *zap.Logger) *MockConnector {
	return &MockConnector{
		logger: logger,
	}
}

func (m *MockConnector) Generate(ctx context.Context, messages []entity.ChatMessage) (string, error) {
	ctxzap.Info(ctx, "[MOCK] generating answer", zap.Int("message_count", len(messages)))

	var user string
	for _, msg := range messages {
		if msg.Role == entity.ChatRoleUser {
			user = msg.Content
		}
	}

	excerpt := user
	if _, after, ok := strings.Cut(user, "\n"); ok {
		excerpt = after
	}
	if i := strings.Index(excerpt, "\n\n"); i >= 0 {
		excerpt = excerpt[:i]
	}

	return fmt.Sprintf("Based on the provided documents: %s\n\nSources:\n- [Doc #1] mock answer built from the first context block.",
		strings.TrimSpace(excerpt)), nil
}
