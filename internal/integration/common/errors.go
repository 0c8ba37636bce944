package common

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"

	"github.com/futig/knowledge-backend/internal/entity"
	pkgHTTP "github.com/futig/knowledge-backend/pkg/http"
)

// ProviderError classifies a failed provider call into an *entity.ProviderError.
// Errors that already are provider errors are returned unchanged.
func ProviderError(provider string, err error) error {
	if err == nil {
		return nil
	}

	var pe *entity.ProviderError
	if errors.As(err, &pe) {
		return err
	}

	result := &entity.ProviderError{
		Provider: provider,
		Kind:     entity.ProviderErrorOther,
		Details:  err.Error(),
		Err:      err,
	}

	var httpErr *pkgHTTP.HTTPError
	var netErr net.Error
	switch {
	case errors.As(err, &httpErr):
		result.Kind = kindForStatus(httpErr.StatusCode)
		result.Details = decodeDetails(httpErr.Message)
	case errors.Is(err, context.DeadlineExceeded):
		result.Kind = entity.ProviderErrorTimeout
	case errors.As(err, &netErr) && netErr.Timeout():
		result.Kind = entity.ProviderErrorTimeout
	}

	return result
}

func kindForStatus(status int) entity.ProviderErrorKind {
	switch status {
	case http.StatusUnauthorized, http.StatusForbidden:
		return entity.ProviderErrorAuth
	case http.StatusTooManyRequests:
		return entity.ProviderErrorRateLimit
	case http.StatusRequestTimeout, http.StatusGatewayTimeout:
		return entity.ProviderErrorTimeout
	default:
		return entity.ProviderErrorOther
	}
}

// decodeDetails keeps JSON bodies structured so they pass through to the caller
func decodeDetails(body string) any {
	var v any
	if err := json.Unmarshal([]byte(body), &v); err == nil {
		return v
	}
	return body
}
