package handler

import (
	"errors"
	"net/http"

	"inventory-catalog-api/internal/model"
	"inventory-catalog-api/internal/service"
	"inventory-catalog-api/pkg/apierror"
	"inventory-catalog-api/pkg/response"

	"go.uber.org/zap"
)

// Client facing messages.
const (
	ErrMsgInvalidRequest     = "Invalid request body"
	ErrMsgInvalidInventoryID = "Invalid inventory id"
	ErrMsgInventoryNotFound  = "Inventory not found"
	ErrMsgInvalidVersion     = "expectedVersion must be a positive integer"
	ErrMsgConflict           = "Inventory was modified by another request. Reload and retry."
)

// toAPIError classifies service errors. Unknown errors become a 500 and are logged.
func toAPIError(logger *zap.Logger, err error) *apierror.Error {
	var apiErr *apierror.Error
	switch {
	case errors.As(err, &apiErr):
		return apiErr
	case errors.Is(err, model.ErrInventoryNotFound):
		return apierror.NotFound(ErrMsgInventoryNotFound)
	case errors.Is(err, model.ErrConcurrencyConflict):
		return apierror.Conflict(ErrMsgConflict)
	case errors.Is(err, model.ErrDuplicateCustomID):
		return apierror.Conflict(err.Error())
	case errors.Is(err, model.ErrInvalidFieldConfiguration),
		errors.Is(err, model.ErrInvalidItemValue),
		errors.Is(err, model.ErrInvalidCustomID):
		return apierror.ValidationError(err.Error())
	case errors.Is(err, model.ErrInvalidToken):
		return apierror.Unauthorized("Invalid API token")
	}
	logger.Error("request failed", zap.Error(err))
	return apierror.InternalError("")
}

func writeError(w http.ResponseWriter, logger *zap.Logger, err error) {
	response.Error(w, toAPIError(logger, err))
}

// versionedError adds the stored version to a conflict so the caller can
// reload and retry. Other errors map as usual.
func versionedError(r *http.Request, logger *zap.Logger, inventories *service.InventoryService, inventoryID int64, err error) *apierror.Error {
	apiErr := toAPIError(logger, err)
	if !errors.Is(err, model.ErrConcurrencyConflict) {
		return apiErr
	}
	inv, getErr := inventories.GetInventory(r.Context(), inventoryID)
	if getErr != nil {
		logger.Warn("failed to load current version after conflict",
			zap.Int64("inventory_id", inventoryID), zap.Error(getErr))
		return apiErr
	}
	return apiErr.WithMeta("currentVersion", inv.Version)
}
