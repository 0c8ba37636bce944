package logger

import (
	"context"
	"testing"

	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestWithAction(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	ctx := ctxzap.ToContext(context.Background(), zap.New(core))

	ctx = WithAction(ctx, "search")
	ctxzap.Info(ctx, "hello")

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("got %d entries", len(entries))
	}
	if entries[0].ContextMap()["action"] != "search" {
		t.Errorf("fields = %v", entries[0].ContextMap())
	}
}

func TestQuery(t *testing.T) {
	if f := Query("secret question", false); f.Key != "query_length" || f.Integer != 15 {
		t.Errorf("disabled field = %+v", f)
	}
	if f := Query("open question", true); f.Key != "query" || f.String != "open question" {
		t.Errorf("enabled field = %+v", f)
	}
}
