package handler

import (
	"net/http"
	"time"

	"inventory-catalog-api/internal/model"
	"inventory-catalog-api/internal/service"
	"inventory-catalog-api/pkg/apierror"
	"inventory-catalog-api/pkg/response"

	"go.uber.org/zap"
)

// ItemHandler creates and lists inventory items.
type ItemHandler struct {
	items     *service.ItemService
	validator *Validator
	logger    *zap.Logger
}

// NewItemHandler creates an item handler.
func NewItemHandler(items *service.ItemService, validator *Validator, logger *zap.Logger) *ItemHandler {
	return &ItemHandler{items: items, validator: validator, logger: logger}
}

// CreateItemRequest is the body of POST /api/v1/inventories/{id}/items.
// Values are keyed by slot id, e.g. "numeric-field-1". An empty customId is generated.
type CreateItemRequest struct {
	CustomID string         `json:"customId" validate:"max=100"`
	Values   map[string]any `json:"values"`
}

// ItemResponse is an item with its configured values keyed by slot id.
type ItemResponse struct {
	ID        int64          `json:"id"`
	CustomID  string         `json:"customId"`
	Values    map[string]any `json:"values"`
	CreatedAt time.Time      `json:"createdAt"`
}

// newItemResponse includes the non-empty values among keys.
func newItemResponse(item *model.Item, keys []model.SlotKey) ItemResponse {
	values := make(map[string]any, len(keys))
	for _, key := range keys {
		if v := item.Values.Value(key); v != nil {
			values[key.String()] = v
		}
	}
	return ItemResponse{ID: item.ID, CustomID: item.CustomID, Values: values, CreatedAt: item.CreatedAt}
}

// ListItems handles GET /api/v1/inventories/{id}/items
func (h *ItemHandler) ListItems(w http.ResponseWriter, r *http.Request) {
	id, ok := inventoryIDParam(w, r)
	if !ok {
		return
	}
	inv, items, err := h.items.ListItems(r.Context(), id)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	var keys []model.SlotKey
	for _, f := range inv.Schema.ConfiguredFields() {
		keys = append(keys, f.Key)
	}
	out := make([]ItemResponse, 0, len(items))
	for _, item := range items {
		out = append(out, newItemResponse(item, keys))
	}
	response.List(w, out, int64(len(out)))
}

// CreateItem handles POST /api/v1/inventories/{id}/items
func (h *ItemHandler) CreateItem(w http.ResponseWriter, r *http.Request) {
	id, ok := inventoryIDParam(w, r)
	if !ok {
		return
	}
	var req CreateItemRequest
	if !bind(w, r, h.validator, &req) {
		return
	}

	values := make(map[model.SlotKey]any, len(req.Values))
	var details []apierror.FieldError
	for raw, v := range req.Values {
		key, err := model.ParseSlotKey(raw)
		if err != nil {
			details = append(details, apierror.FieldError{Field: "values." + raw, Message: "Unknown field slot"})
			continue
		}
		values[key] = v
	}
	if len(details) > 0 {
		response.Error(w, apierror.ValidationError("", details...))
		return
	}

	item, err := h.items.CreateItem(r.Context(), id, req.CustomID, values)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	// only configured slots are accepted, so every stored value is reported
	response.Created(w, newItemResponse(item, model.AllSlotKeys()))
}
