package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"inventory-catalog-api/internal/cache"
	"inventory-catalog-api/internal/metrics"
	"inventory-catalog-api/internal/model"
	"inventory-catalog-api/internal/repository"

	"go.uber.org/zap"
)

const (
	// TokenPrefix is the prefix for all inventory API tokens
	TokenPrefix = "inv_"

	// DefaultTokenCacheTTL bounds how long a resolved token is trusted
	DefaultTokenCacheTTL = 5 * time.Minute

	tokenCacheKeyPrefix = "token:"
)

// TokenService issues and resolves the API tokens aggregation consumers use.
type TokenService struct {
	repo   repository.InventoryRepository
	cache  cache.Cache
	ttl    time.Duration
	logger *zap.Logger
}

// NewTokenService creates a new token service.
func NewTokenService(repo repository.InventoryRepository, c cache.Cache, ttl time.Duration, logger *zap.Logger) *TokenService {
	if ttl <= 0 {
		ttl = DefaultTokenCacheTTL
	}
	return &TokenService{repo: repo, cache: c, ttl: ttl, logger: logger}
}

func cacheKey(token string) string {
	return tokenCacheKeyPrefix + token
}

// GenerateToken issues a new token for the inventory, replacing any previous one.
func (s *TokenService) GenerateToken(ctx context.Context, inventoryID int64) (string, error) {
	inv, err := s.repo.GetInventory(ctx, inventoryID)
	if err != nil {
		return "", err
	}

	tokenBytes := make([]byte, 32)
	if _, err := rand.Read(tokenBytes); err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	token := TokenPrefix + hex.EncodeToString(tokenBytes)

	if err := s.repo.SetAPIToken(ctx, inventoryID, token); err != nil {
		return "", err
	}
	s.forget(ctx, inv.APIToken)
	if err := s.cache.Set(ctx, cacheKey(token), []byte(strconv.FormatInt(inventoryID, 10)), s.ttl); err != nil {
		s.logger.Warn("failed to prime token cache", zap.Error(err))
	}

	s.logger.Info("api token generated", zap.Int64("inventory_id", inventoryID))
	return token, nil
}

// RevokeToken removes the inventory's token.
func (s *TokenService) RevokeToken(ctx context.Context, inventoryID int64) error {
	inv, err := s.repo.GetInventory(ctx, inventoryID)
	if err != nil {
		return err
	}
	if err := s.repo.SetAPIToken(ctx, inventoryID, ""); err != nil {
		return err
	}
	s.forget(ctx, inv.APIToken)
	s.logger.Info("api token revoked", zap.Int64("inventory_id", inventoryID))
	return nil
}

func (s *TokenService) forget(ctx context.Context, token string) {
	if token == "" {
		return
	}
	if err := s.cache.Delete(ctx, cacheKey(token)); err != nil {
		s.logger.Warn("failed to evict token from cache", zap.Error(err))
	}
}

// ResolveToken returns the inventory a token grants access to.
func (s *TokenService) ResolveToken(ctx context.Context, token string) (int64, error) {
	if !strings.HasPrefix(token, TokenPrefix) || len(token) == len(TokenPrefix) {
		return 0, model.ErrInvalidToken
	}

	loaded := false
	raw, err := s.cache.GetOrSet(ctx, cacheKey(token), s.ttl, func() ([]byte, error) {
		loaded = true
		id, err := s.repo.GetInventoryIDByToken(ctx, token)
		if err != nil {
			return nil, err
		}
		return []byte(strconv.FormatInt(id, 10)), nil
	})
	if loaded {
		metrics.TokenCacheLookups.WithLabelValues(metrics.CacheMiss).Inc()
	} else {
		metrics.TokenCacheLookups.WithLabelValues(metrics.CacheHit).Inc()
	}
	if err != nil {
		if errors.Is(err, model.ErrInvalidToken) {
			return 0, err
		}
		return 0, fmt.Errorf("failed to resolve token: %w", err)
	}

	id, err := strconv.ParseInt(string(raw), 10, 64)
	if err != nil {
		_ = s.cache.Delete(ctx, cacheKey(token))
		return 0, fmt.Errorf("failed to resolve token: corrupt cache entry: %w", err)
	}
	return id, nil
}
