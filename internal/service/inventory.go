package service

import (
	"context"
	"strings"

	"inventory-catalog-api/internal/model"
	"inventory-catalog-api/internal/repository"

	"go.uber.org/zap"
)

// CreateInventoryInput holds the attributes of a new inventory.
type CreateInventoryInput struct {
	Title          string
	Description    string
	CategoryName   string
	IsPublic       bool
	CustomIDFormat string
}

// InventoryService handles inventory business logic.
type InventoryService struct {
	repo   repository.InventoryRepository
	logger *zap.Logger
}

// NewInventoryService creates a new inventory service.
// Returns nil if repo is nil (required dependency).
func NewInventoryService(repo repository.InventoryRepository, logger *zap.Logger) *InventoryService {
	if repo == nil {
		return nil
	}
	return &InventoryService{repo: repo, logger: logger}
}

// CreateInventory stores a new inventory with an unconfigured schema.
func (s *InventoryService) CreateInventory(ctx context.Context, in CreateInventoryInput) (*model.Inventory, error) {
	inv := model.NewInventory(strings.TrimSpace(in.Title), in.Description, in.CategoryName, in.IsPublic)
	inv.CustomIDFormat = in.CustomIDFormat
	if err := s.repo.CreateInventory(ctx, inv); err != nil {
		return nil, err
	}
	s.logger.Info("inventory created", zap.Int64("inventory_id", inv.ID), zap.String("title", inv.Title))
	return inv, nil
}

// GetInventory loads one inventory.
func (s *InventoryService) GetInventory(ctx context.Context, id int64) (*model.Inventory, error) {
	return s.repo.GetInventory(ctx, id)
}

// ListInventories returns every inventory.
func (s *InventoryService) ListInventories(ctx context.Context) ([]*model.Inventory, error) {
	return s.repo.ListInventories(ctx)
}

// GetStats returns storage statistics.
func (s *InventoryService) GetStats(ctx context.Context) (*model.InventoryStats, error) {
	return s.repo.GetStats(ctx)
}

// CountItems returns how many items an inventory holds.
func (s *InventoryService) CountItems(ctx context.Context, inventoryID int64) (int, error) {
	return s.repo.CountItems(ctx, inventoryID)
}
