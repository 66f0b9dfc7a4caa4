package handler

import (
	"net/http"

	"inventory-catalog-api/internal/model"
	"inventory-catalog-api/internal/service"
	"inventory-catalog-api/pkg/response"

	"go.uber.org/zap"
)

// CustomIDHandler serves the custom ID configuration of inventories.
type CustomIDHandler struct {
	customIDs   *service.CustomIDService
	inventories *service.InventoryService
	validator   *Validator
	logger      *zap.Logger
}

// NewCustomIDHandler creates a custom ID handler.
func NewCustomIDHandler(customIDs *service.CustomIDService, inventories *service.InventoryService, validator *Validator, logger *zap.Logger) *CustomIDHandler {
	return &CustomIDHandler{customIDs: customIDs, inventories: inventories, validator: validator, logger: logger}
}

// ElementRequest is one custom ID element. A missing id is assigned on save.
type ElementRequest struct {
	ID          string `json:"id" validate:"max=64"`
	Type        string `json:"type" validate:"required,elementtype"`
	Value       string `json:"value" validate:"max=100"`
	Description string `json:"description" validate:"max=200"`
	Order       int    `json:"order" validate:"min=0"`
}

// UpdateCustomIDRequest is the body of PUT /api/v1/inventories/{id}/custom-id.
type UpdateCustomIDRequest struct {
	ExpectedVersion int64            `json:"expectedVersion" validate:"min=1"`
	Elements        []ElementRequest `json:"elements" validate:"max=20,dive"`
}

// PreviewRequest previews an unsaved element list; without elements the
// stored configuration is previewed.
type PreviewRequest struct {
	Elements []ElementRequest `json:"elements" validate:"max=20,dive"`
}

// PreviewResponse is a sample id and its placeholder form.
type PreviewResponse struct {
	Preview string `json:"preview"`
	Format  string `json:"format"`
}

// ValidateRequest is the body of POST /api/v1/inventories/{id}/custom-id/validate.
type ValidateRequest struct {
	CustomID string `json:"customId"`
}

func toElements(in []ElementRequest) []model.CustomIDElement {
	if in == nil {
		return nil
	}
	out := make([]model.CustomIDElement, 0, len(in))
	for _, e := range in {
		out = append(out, model.CustomIDElement{
			ID:          e.ID,
			Type:        model.ElementType(e.Type),
			Value:       e.Value,
			Description: e.Description,
			Order:       e.Order,
		})
	}
	return out
}

// GetConfiguration handles GET /api/v1/inventories/{id}/custom-id
func (h *CustomIDHandler) GetConfiguration(w http.ResponseWriter, r *http.Request) {
	id, ok := inventoryIDParam(w, r)
	if !ok {
		return
	}
	cfg, err := h.customIDs.GetConfiguration(r.Context(), id)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	response.OK(w, cfg)
}

// UpdateConfiguration handles PUT /api/v1/inventories/{id}/custom-id
func (h *CustomIDHandler) UpdateConfiguration(w http.ResponseWriter, r *http.Request) {
	id, ok := inventoryIDParam(w, r)
	if !ok {
		return
	}
	var req UpdateCustomIDRequest
	if !bind(w, r, h.validator, &req) {
		return
	}

	elements := toElements(req.Elements)
	if elements == nil {
		elements = []model.CustomIDElement{}
	}
	cfg, err := h.customIDs.UpdateConfiguration(r.Context(), id, req.ExpectedVersion, elements)
	if err != nil {
		response.Error(w, versionedError(r, h.logger, h.inventories, id, err))
		return
	}
	response.OK(w, cfg)
}

// Preview handles POST /api/v1/inventories/{id}/custom-id/preview
func (h *CustomIDHandler) Preview(w http.ResponseWriter, r *http.Request) {
	id, ok := inventoryIDParam(w, r)
	if !ok {
		return
	}
	var req PreviewRequest
	if !bind(w, r, h.validator, &req) {
		return
	}

	elements := toElements(req.Elements)
	preview, err := h.customIDs.Preview(r.Context(), id, elements)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	format := service.FormatExample(elements)
	if elements == nil {
		cfg, err := h.customIDs.GetConfiguration(r.Context(), id)
		if err != nil {
			writeError(w, h.logger, err)
			return
		}
		format = cfg.Example
	}
	response.OK(w, PreviewResponse{Preview: preview, Format: format})
}

// Validate handles POST /api/v1/inventories/{id}/custom-id/validate
func (h *CustomIDHandler) Validate(w http.ResponseWriter, r *http.Request) {
	id, ok := inventoryIDParam(w, r)
	if !ok {
		return
	}
	var req ValidateRequest
	if !bind(w, r, h.validator, &req) {
		return
	}
	result, err := h.customIDs.Validate(r.Context(), id, req.CustomID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	response.OK(w, result)
}
