package handler

import (
	"net/http"

	"inventory-catalog-api/internal/service"
	"inventory-catalog-api/pkg/response"

	"go.uber.org/zap"
)

// TokenHandler issues and revokes inventory API tokens.
type TokenHandler struct {
	tokens *service.TokenService
	logger *zap.Logger
}

// NewTokenHandler creates a token handler.
func NewTokenHandler(tokens *service.TokenService, logger *zap.Logger) *TokenHandler {
	return &TokenHandler{tokens: tokens, logger: logger}
}

// TokenResponse carries a newly issued token. It is only shown once.
type TokenResponse struct {
	InventoryID int64  `json:"inventoryId"`
	Token       string `json:"token"`
}

// GenerateToken handles POST /api/v1/inventories/{id}/token
func (h *TokenHandler) GenerateToken(w http.ResponseWriter, r *http.Request) {
	id, ok := inventoryIDParam(w, r)
	if !ok {
		return
	}
	token, err := h.tokens.GenerateToken(r.Context(), id)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	response.Created(w, TokenResponse{InventoryID: id, Token: token})
}

// RevokeToken handles DELETE /api/v1/inventories/{id}/token
func (h *TokenHandler) RevokeToken(w http.ResponseWriter, r *http.Request) {
	id, ok := inventoryIDParam(w, r)
	if !ok {
		return
	}
	if err := h.tokens.RevokeToken(r.Context(), id); err != nil {
		writeError(w, h.logger, err)
		return
	}
	response.NoContent(w)
}
