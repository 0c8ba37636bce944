package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/futig/knowledge-backend/internal/pkg/response"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

// Recoverer turns a handler panic into a 500 {error, details} response
func Recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if rec == http.ErrAbortHandler {
				panic(rec)
			}

			ctxzap.Error(r.Context(), "panic while handling request",
				zap.Any("panic", rec),
				zap.ByteString("stack", debug.Stack()),
			)
			response.Error(w, http.StatusInternalServerError, "Internal server error", fmt.Sprint(rec))
		}()

		next.ServeHTTP(w, r)
	})
}
