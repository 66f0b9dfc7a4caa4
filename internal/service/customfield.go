package service

import (
	"context"
	"errors"

	"inventory-catalog-api/internal/metrics"
	"inventory-catalog-api/internal/model"
	"inventory-catalog-api/internal/repository"

	"go.uber.org/zap"
)

// CustomFieldService manages the custom field schema of inventories.
type CustomFieldService struct {
	repo   repository.InventoryRepository
	logger *zap.Logger
}

// NewCustomFieldService creates a custom field service.
func NewCustomFieldService(repo repository.InventoryRepository, logger *zap.Logger) *CustomFieldService {
	return &CustomFieldService{repo: repo, logger: logger}
}

// ListConfiguredFields returns the configured slots of an inventory in canonical order.
func (s *CustomFieldService) ListConfiguredFields(ctx context.Context, inventoryID int64) (*model.Inventory, []model.FieldDescriptor, error) {
	inv, err := s.repo.GetInventory(ctx, inventoryID)
	if err != nil {
		return nil, nil, err
	}
	return inv, inv.Schema.ConfiguredFields(), nil
}

// ExportDefinitions returns the export form of the configured fields.
func (s *CustomFieldService) ExportDefinitions(ctx context.Context, inventoryID int64) ([]model.CustomFieldDefinition, error) {
	_, fields, err := s.ListConfiguredFields(ctx, inventoryID)
	if err != nil {
		return nil, err
	}
	defs := make([]model.CustomFieldDefinition, 0, len(fields))
	for _, f := range fields {
		defs = append(defs, model.NewCustomFieldDefinition(f))
	}
	return defs, nil
}

// ReplaceFieldConfiguration rebuilds the schema from fields and persists it
// if the inventory is still at expectedVersion. Invalid input leaves the
// stored configuration untouched.
func (s *CustomFieldService) ReplaceFieldConfiguration(ctx context.Context, inventoryID, expectedVersion int64, fields []model.FieldDescriptor) (*model.Inventory, error) {
	inv, err := s.repo.GetInventory(ctx, inventoryID)
	if err != nil {
		return nil, err
	}
	if err := inv.Schema.Replace(fields); err != nil {
		return nil, err
	}
	if err := s.save(ctx, inv, expectedVersion); err != nil {
		return nil, err
	}
	s.logger.Info("field configuration replaced",
		zap.Int64("inventory_id", inventoryID),
		zap.Int("configured", len(inv.Schema.ConfiguredFields())),
		zap.Int64("version", inv.Version))
	return inv, nil
}

// ClearAllFields resets every slot of the inventory to unconfigured.
func (s *CustomFieldService) ClearAllFields(ctx context.Context, inventoryID, expectedVersion int64) (*model.Inventory, error) {
	inv, err := s.repo.GetInventory(ctx, inventoryID)
	if err != nil {
		return nil, err
	}
	inv.Schema.Clear()
	if err := s.save(ctx, inv, expectedVersion); err != nil {
		return nil, err
	}
	s.logger.Info("field configuration cleared", zap.Int64("inventory_id", inventoryID), zap.Int64("version", inv.Version))
	return inv, nil
}

func (s *CustomFieldService) save(ctx context.Context, inv *model.Inventory, expectedVersion int64) error {
	err := s.repo.UpdateFieldConfiguration(ctx, inv, expectedVersion)
	if errors.Is(err, model.ErrConcurrencyConflict) {
		metrics.ConcurrencyConflicts.WithLabelValues(metrics.OperationFieldConfiguration).Inc()
	}
	return err
}
