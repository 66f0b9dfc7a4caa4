package handler

import (
	"net/http"

	"inventory-catalog-api/internal/model"
	"inventory-catalog-api/internal/service"
	"inventory-catalog-api/pkg/response"

	"go.uber.org/zap"
)

// InventoryHandler handles inventory-related HTTP requests.
type InventoryHandler struct {
	inventories *service.InventoryService
	validator   *Validator
	logger      *zap.Logger
}

// NewInventoryHandler creates a new inventory handler.
func NewInventoryHandler(inventories *service.InventoryService, validator *Validator, logger *zap.Logger) *InventoryHandler {
	return &InventoryHandler{inventories: inventories, validator: validator, logger: logger}
}

// CreateInventoryRequest is the body of POST /api/v1/inventories.
type CreateInventoryRequest struct {
	Title          string `json:"title" validate:"required,max=200"`
	Description    string `json:"description" validate:"max=2000"`
	CategoryName   string `json:"categoryName" validate:"max=100"`
	IsPublic       bool   `json:"isPublic"`
	CustomIDFormat string `json:"customIdFormat" validate:"max=100"`
}

// InventoryResponse adds derived attributes to an inventory.
type InventoryResponse struct {
	*model.Inventory
	ConfiguredFields int  `json:"configuredFields"`
	HasAPIToken      bool `json:"hasApiToken"`
}

func newInventoryResponse(inv *model.Inventory) InventoryResponse {
	return InventoryResponse{
		Inventory:        inv,
		ConfiguredFields: len(inv.Schema.ConfiguredFields()),
		HasAPIToken:      inv.APIToken != "",
	}
}

// CreateInventory handles POST /api/v1/inventories
func (h *InventoryHandler) CreateInventory(w http.ResponseWriter, r *http.Request) {
	var req CreateInventoryRequest
	if !bind(w, r, h.validator, &req) {
		return
	}

	inv, err := h.inventories.CreateInventory(r.Context(), service.CreateInventoryInput{
		Title:          req.Title,
		Description:    req.Description,
		CategoryName:   req.CategoryName,
		IsPublic:       req.IsPublic,
		CustomIDFormat: req.CustomIDFormat,
	})
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	response.Created(w, newInventoryResponse(inv))
}

// ListInventories handles GET /api/v1/inventories
func (h *InventoryHandler) ListInventories(w http.ResponseWriter, r *http.Request) {
	inventories, err := h.inventories.ListInventories(r.Context())
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	out := make([]InventoryResponse, 0, len(inventories))
	for _, inv := range inventories {
		out = append(out, newInventoryResponse(inv))
	}
	response.List(w, out, int64(len(out)))
}

// GetInventory handles GET /api/v1/inventories/{id}
func (h *InventoryHandler) GetInventory(w http.ResponseWriter, r *http.Request) {
	id, ok := inventoryIDParam(w, r)
	if !ok {
		return
	}
	inv, err := h.inventories.GetInventory(r.Context(), id)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	response.OK(w, newInventoryResponse(inv))
}
