package generation

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/futig/knowledge-backend/internal/config"
	"github.com/futig/knowledge-backend/internal/entity"
	"go.uber.org/zap/zaptest"
)

func newTestConnector(t *testing.T, url string) *Connector {
	t.Helper()
	return NewConnector(config.GenerationConfig{
		HTTPClientConfig: config.HTTPClientConfig{
			Url:            url,
			APIKey:         "chat-key",
			RequestTimeout: 5 * time.Second,
		},
		Model: "gpt-test",
	}, zaptest.NewLogger(t))
}

func TestConnector_Generate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.Header.Get("api-key") != "chat-key" {
			t.Errorf("missing api-key header")
		}

		var req entity.ChatCompletionRequest
		json.NewDecoder(r.Body).Decode(&req)
		if req.Model != "gpt-test" || len(req.Messages) != 2 {
			t.Errorf("unexpected request %+v", req)
		}

		w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"grounded answer"}}]}`))
	}))
	defer srv.Close()

	answer, err := newTestConnector(t, srv.URL).Generate(context.Background(), []entity.ChatMessage{
		{Role: entity.ChatRoleSystem, Content: "sys"},
		{Role: entity.ChatRoleUser, Content: "usr"},
	})
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if answer != "grounded answer" {
		t.Errorf("Generate() = %q", answer)
	}
}

func TestConnector_GenerateAuthFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":"invalid key"}`))
	}))
	defer srv.Close()

	_, err := newTestConnector(t, srv.URL).Generate(context.Background(), nil)

	var pe *entity.ProviderError
	if !errors.As(err, &pe) {
		t.Fatalf("expected ProviderError, got %v", err)
	}
	if pe.Kind != entity.ProviderErrorAuth || pe.Retryable() {
		t.Errorf("Kind = %s, retryable = %v", pe.Kind, pe.Retryable())
	}
}

func TestMockConnector_CitesFirstBlock(t *testing.T) {
	m := NewMockConnector(zaptest.NewLogger(t))

	answer, err := m.Generate(context.Background(), []entity.ChatMessage{
		{Role: entity.ChatRoleSystem, Content: "rules"},
		{Role: entity.ChatRoleUser, Content: "CONTEXT:\n[Doc #1] source=a.txt id=1 score=0.9\nthe sky is blue\n\nQUESTION:\nwhat color"},
	})
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if !strings.Contains(answer, "Sources:") || !strings.Contains(answer, "[Doc #1]") {
		t.Errorf("mock answer lacks citation section: %q", answer)
	}
}
