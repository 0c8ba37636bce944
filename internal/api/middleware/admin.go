package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/futig/knowledge-backend/internal/pkg/response"
	"github.com/golang-jwt/jwt"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

const adminRole = "admin"

// AdminOnly lets through requests bearing an HS256 token signed with secret whose
// claims carry is_admin=true or "admin" in roles. With an empty secret nobody is admin.
func AdminOnly(secret string) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if secret == "" {
				ctxzap.Warn(r.Context(), "admin request rejected, no identity provider configured")
				response.Error(w, http.StatusForbidden, "Forbidden", "admin access is not configured")
				return
			}

			raw, ok := bearerToken(r)
			if !ok {
				response.Error(w, http.StatusUnauthorized, "Unauthorized", "missing bearer token")
				return
			}

			claims, err := parseClaims(raw, secret)
			if err != nil {
				ctxzap.Info(r.Context(), "invalid admin token", zap.Error(err))
				response.Error(w, http.StatusUnauthorized, "Unauthorized", "invalid token")
				return
			}

			if !isAdmin(claims) {
				response.Error(w, http.StatusForbidden, "Forbidden", "admin role required")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func bearerToken(r *http.Request) (string, bool) {
	parts := strings.Fields(r.Header.Get("Authorization"))
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	return parts[1], true
}

func parseClaims(raw, secret string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(raw, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token claims")
	}
	return claims, nil
}

func isAdmin(claims jwt.MapClaims) bool {
	if v, ok := claims["is_admin"].(bool); ok && v {
		return true
	}

	switch roles := claims["roles"].(type) {
	case []interface{}:
		for _, role := range roles {
			if s, ok := role.(string); ok && s == adminRole {
				return true
			}
		}
	case string:
		for _, role := range strings.Split(roles, ",") {
			if strings.TrimSpace(role) == adminRole {
				return true
			}
		}
	}
	return false
}
