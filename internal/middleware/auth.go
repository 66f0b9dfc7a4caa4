package middleware

import (
	"context"
	"crypto/subtle"
	"errors"
	"net/http"
	"strings"

	"inventory-catalog-api/internal/model"
	"inventory-catalog-api/pkg/apierror"
	"inventory-catalog-api/pkg/response"

	"go.uber.org/zap"
)

// InventoryIDKey is the context key holding the inventory an API token resolved to.
const InventoryIDKey contextKey = "inventory_id"

// Header and query names used for authentication.
const (
	LoginKeyHeader  = "X-Login-Key"
	APITokenHeader  = "X-API-Token"
	TokenQueryParam = "token"
)

// TokenResolver maps an API token to its inventory.
type TokenResolver interface {
	ResolveToken(ctx context.Context, token string) (int64, error)
}

// NewAPITokenMiddleware authenticates aggregation consumers by inventory API
// token, read from the token query parameter or the X-API-Token header.
func NewAPITokenMiddleware(resolver TokenResolver, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := strings.TrimSpace(r.URL.Query().Get(TokenQueryParam))
			if token == "" {
				token = strings.TrimSpace(r.Header.Get(APITokenHeader))
			}
			if token == "" {
				response.Error(w, apierror.Unauthorized("API token required. Use the token query parameter or X-API-Token header."))
				return
			}

			inventoryID, err := resolver.ResolveToken(r.Context(), token)
			if err != nil {
				if errors.Is(err, model.ErrInvalidToken) {
					response.Error(w, apierror.Unauthorized("Invalid API token"))
					return
				}
				logger.Error("failed to resolve api token",
					zap.Error(err), zap.String("request_id", GetRequestID(r.Context())))
				response.Error(w, apierror.InternalError(""))
				return
			}

			ctx := context.WithValue(r.Context(), InventoryIDKey, inventoryID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// NewAdminKeyMiddleware guards the management API with the X-Login-Key header.
// An empty loginKey disables the management API.
func NewAdminKeyMiddleware(loginKey string) func(http.Handler) http.Handler {
	expected := []byte(loginKey)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if len(expected) == 0 {
				response.Error(w, apierror.ServiceUnavailable("Management API is disabled"))
				return
			}
			provided := r.Header.Get(LoginKeyHeader)
			if provided == "" {
				response.Error(w, apierror.Unauthorized("X-Login-Key header required"))
				return
			}
			if subtle.ConstantTimeCompare([]byte(provided), expected) != 1 {
				response.Error(w, apierror.Unauthorized("Invalid login key"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// InventoryIDFromContext returns the inventory set by NewAPITokenMiddleware.
func InventoryIDFromContext(ctx context.Context) (int64, bool) {
	id, ok := ctx.Value(InventoryIDKey).(int64)
	return id, ok
}
