package handler

import (
	"net/http"

	"inventory-catalog-api/internal/export"
	"inventory-catalog-api/internal/middleware"
	"inventory-catalog-api/internal/model"
	"inventory-catalog-api/internal/service"
	"inventory-catalog-api/pkg/apierror"
	"inventory-catalog-api/pkg/response"

	"go.uber.org/zap"
)

// APIHandler serves token authenticated consumers of a single inventory.
type APIHandler struct {
	inventories *service.InventoryService
	fields      *service.CustomFieldService
	aggregation *service.AggregationService
	items       *service.ItemService
	logger      *zap.Logger
}

// NewAPIHandler creates the consumer API handler.
func NewAPIHandler(
	inventories *service.InventoryService,
	fields *service.CustomFieldService,
	aggregation *service.AggregationService,
	items *service.ItemService,
	logger *zap.Logger,
) *APIHandler {
	return &APIHandler{
		inventories: inventories,
		fields:      fields,
		aggregation: aggregation,
		items:       items,
		logger:      logger,
	}
}

// InfoResponse describes the inventory behind a token.
type InfoResponse struct {
	InventoryID  int64                         `json:"inventoryId"`
	Title        string                        `json:"title"`
	Description  string                        `json:"description"`
	CategoryName string                        `json:"categoryName"`
	IsPublic     bool                          `json:"isPublic"`
	ItemCount    int                           `json:"itemCount"`
	CustomFields []model.CustomFieldDefinition `json:"customFields"`
}

func tokenInventory(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, ok := middleware.InventoryIDFromContext(r.Context())
	if !ok {
		response.Error(w, apierror.Unauthorized("API token required"))
		return 0, false
	}
	return id, true
}

// Info handles GET /api/v1/inventory/info
func (h *APIHandler) Info(w http.ResponseWriter, r *http.Request) {
	id, ok := tokenInventory(w, r)
	if !ok {
		return
	}
	ctx := r.Context()

	inv, err := h.inventories.GetInventory(ctx, id)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	count, err := h.inventories.CountItems(ctx, id)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	defs, err := h.fields.ExportDefinitions(ctx, id)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	response.OK(w, InfoResponse{
		InventoryID:  inv.ID,
		Title:        inv.Title,
		Description:  inv.Description,
		CategoryName: inv.CategoryName,
		IsPublic:     inv.IsPublic,
		ItemCount:    count,
		CustomFields: defs,
	})
}

// Aggregated handles GET /api/v1/inventory/aggregated
func (h *APIHandler) Aggregated(w http.ResponseWriter, r *http.Request) {
	id, ok := tokenInventory(w, r)
	if !ok {
		return
	}
	results, err := h.aggregation.GetAggregatedResults(r.Context(), id)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	response.OK(w, results)
}

// Export handles GET /api/v1/inventory/export?format=json|csv|xlsx
func (h *APIHandler) Export(w http.ResponseWriter, r *http.Request) {
	id, ok := tokenInventory(w, r)
	if !ok {
		return
	}
	format, err := export.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		response.Error(w, apierror.ValidationError("",
			apierror.FieldError{Field: "format", Message: "Must be one of json, csv, xlsx"}))
		return
	}

	inv, items, err := h.items.ListItems(r.Context(), id)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	data, err := export.Render(format, export.Build(inv, items))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	h.logger.Info("inventory exported",
		zap.Int64("inventory_id", id), zap.String("format", string(format)), zap.Int("items", len(items)))
	response.Attachment(w, format.ContentType(), format.Filename(id), data)
}
