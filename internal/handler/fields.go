package handler

import (
	"net/http"

	"inventory-catalog-api/internal/model"
	"inventory-catalog-api/internal/service"
	"inventory-catalog-api/pkg/response"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// FieldHandler serves the custom field schema of an inventory.
type FieldHandler struct {
	fields      *service.CustomFieldService
	inventories *service.InventoryService
	validator   *Validator
	logger      *zap.Logger
}

// NewFieldHandler creates a field handler.
func NewFieldHandler(fields *service.CustomFieldService, inventories *service.InventoryService, validator *Validator, logger *zap.Logger) *FieldHandler {
	return &FieldHandler{fields: fields, inventories: inventories, validator: validator, logger: logger}
}

// NumericConfigRequest is the numeric metadata of a field.
type NumericConfigRequest struct {
	IsInteger     bool             `json:"isInteger"`
	MinValue      *decimal.Decimal `json:"minValue"`
	MaxValue      *decimal.Decimal `json:"maxValue"`
	StepValue     *decimal.Decimal `json:"stepValue"`
	DisplayFormat string           `json:"displayFormat" validate:"max=50"`
}

// FieldRequest configures one slot.
type FieldRequest struct {
	ID            string                `json:"id" validate:"required,slotkey"`
	Name          string                `json:"name" validate:"max=100"`
	Description   string                `json:"description" validate:"max=500"`
	ShowInTable   bool                  `json:"showInTable"`
	NumericConfig *NumericConfigRequest `json:"numericConfig"`
}

// ReplaceFieldsRequest is the body of PUT /api/v1/inventories/{id}/fields.
// Slots not listed become unconfigured.
type ReplaceFieldsRequest struct {
	ExpectedVersion int64          `json:"expectedVersion" validate:"min=1"`
	Fields          []FieldRequest `json:"fields" validate:"max=15,dive"`
}

func (f FieldRequest) descriptor() model.FieldDescriptor {
	// ID is validated by the slotkey tag
	key, _ := model.ParseSlotKey(f.ID)
	d := model.FieldDescriptor{
		Key:         key,
		Name:        f.Name,
		Description: f.Description,
		ShowInTable: f.ShowInTable,
	}
	if n := f.NumericConfig; n != nil {
		cfg := model.DefaultNumericConfig()
		cfg.IsInteger = n.IsInteger
		cfg.MinValue = n.MinValue
		cfg.MaxValue = n.MaxValue
		cfg.DisplayFormat = n.DisplayFormat
		if n.StepValue != nil {
			cfg.StepValue = *n.StepValue
		}
		d.NumericConfig = &cfg
	}
	return d
}

// FieldsResponse is the configured schema of an inventory.
type FieldsResponse struct {
	InventoryID int64                         `json:"inventoryId"`
	Version     int64                         `json:"version"`
	Fields      []model.FieldDescriptor       `json:"fields"`
	Definitions []model.CustomFieldDefinition `json:"definitions"`
}

func newFieldsResponse(inv *model.Inventory) FieldsResponse {
	fields := inv.Schema.ConfiguredFields()
	defs := make([]model.CustomFieldDefinition, 0, len(fields))
	for _, f := range fields {
		defs = append(defs, model.NewCustomFieldDefinition(f))
	}
	return FieldsResponse{InventoryID: inv.ID, Version: inv.Version, Fields: fields, Definitions: defs}
}

// ListFields handles GET /api/v1/inventories/{id}/fields
func (h *FieldHandler) ListFields(w http.ResponseWriter, r *http.Request) {
	id, ok := inventoryIDParam(w, r)
	if !ok {
		return
	}
	inv, _, err := h.fields.ListConfiguredFields(r.Context(), id)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	response.OK(w, newFieldsResponse(inv))
}

// ReplaceFields handles PUT /api/v1/inventories/{id}/fields
func (h *FieldHandler) ReplaceFields(w http.ResponseWriter, r *http.Request) {
	id, ok := inventoryIDParam(w, r)
	if !ok {
		return
	}
	var req ReplaceFieldsRequest
	if !bind(w, r, h.validator, &req) {
		return
	}

	fields := make([]model.FieldDescriptor, 0, len(req.Fields))
	for _, f := range req.Fields {
		fields = append(fields, f.descriptor())
	}

	inv, err := h.fields.ReplaceFieldConfiguration(r.Context(), id, req.ExpectedVersion, fields)
	if err != nil {
		response.Error(w, versionedError(r, h.logger, h.inventories, id, err))
		return
	}
	response.OK(w, newFieldsResponse(inv))
}

// ClearFields handles DELETE /api/v1/inventories/{id}/fields?expectedVersion=N
func (h *FieldHandler) ClearFields(w http.ResponseWriter, r *http.Request) {
	id, ok := inventoryIDParam(w, r)
	if !ok {
		return
	}
	version, ok := versionQuery(w, r)
	if !ok {
		return
	}

	inv, err := h.fields.ClearAllFields(r.Context(), id, version)
	if err != nil {
		response.Error(w, versionedError(r, h.logger, h.inventories, id, err))
		return
	}
	response.OK(w, newFieldsResponse(inv))
}
