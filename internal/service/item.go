package service

import (
	"context"
	"fmt"
	"strings"

	"inventory-catalog-api/internal/model"
	"inventory-catalog-api/internal/repository"

	"go.uber.org/zap"
)

// ItemService creates and lists inventory items.
type ItemService struct {
	repo      repository.InventoryRepository
	customIDs *CustomIDService
	logger    *zap.Logger
}

// NewItemService creates an item service.
func NewItemService(repo repository.InventoryRepository, customIDs *CustomIDService, logger *zap.Logger) *ItemService {
	return &ItemService{repo: repo, customIDs: customIDs, logger: logger}
}

// CreateItem validates values against the inventory's configured slots and
// stores the item. An empty customID is generated; a supplied one must match
// the configured format.
func (s *ItemService) CreateItem(ctx context.Context, inventoryID int64, customID string, values map[model.SlotKey]any) (*model.Item, error) {
	inv, err := s.repo.GetInventory(ctx, inventoryID)
	if err != nil {
		return nil, err
	}

	item := &model.Item{InventoryID: inventoryID}
	for key, raw := range values {
		slot, ok := inv.Schema.Slot(key)
		if !ok || !slot.Configured() {
			return nil, fmt.Errorf("%w: slot %s is not configured", model.ErrInvalidItemValue, key)
		}
		if err := item.Values.Set(key, raw); err != nil {
			return nil, err
		}
		if d := item.Values.Decimal(key); d != nil && slot.NumericConfig != nil {
			if err := slot.NumericConfig.Check(*d); err != nil {
				return nil, fmt.Errorf("%s: %w", slot.Name, err)
			}
		}
	}

	customID = strings.TrimSpace(customID)
	if customID == "" {
		customID, err = s.customIDs.generateUnique(ctx, inv)
		if err != nil {
			return nil, err
		}
	} else if elements := s.customIDs.Elements(inv); !ValidateCustomIDFormat(customID, elements) {
		return nil, fmt.Errorf("%w: %s", model.ErrInvalidCustomID, ValidationMessage(customID, elements))
	}
	item.CustomID = customID

	if err := s.repo.CreateItem(ctx, item); err != nil {
		return nil, err
	}
	s.logger.Info("item created",
		zap.Int64("inventory_id", inventoryID), zap.Int64("item_id", item.ID), zap.String("custom_id", item.CustomID))
	return item, nil
}

// ListItems returns the inventory with all of its items.
func (s *ItemService) ListItems(ctx context.Context, inventoryID int64) (*model.Inventory, []*model.Item, error) {
	inv, err := s.repo.GetInventory(ctx, inventoryID)
	if err != nil {
		return nil, nil, err
	}
	items, err := s.repo.ListItems(ctx, inventoryID)
	if err != nil {
		return nil, nil, err
	}
	return inv, items, nil
}
