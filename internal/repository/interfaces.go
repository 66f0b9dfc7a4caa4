package repository

import (
	"context"

	"inventory-catalog-api/internal/model"
)

// InventoryRepository defines inventory and item data access methods.
type InventoryRepository interface {
	// CreateInventory inserts a new inventory and assigns its id and version.
	CreateInventory(ctx context.Context, inv *model.Inventory) error

	// GetInventory loads an inventory with its schema. Returns model.ErrInventoryNotFound.
	GetInventory(ctx context.Context, id int64) (*model.Inventory, error)

	// ListInventories returns all inventories ordered by id.
	ListInventories(ctx context.Context) ([]*model.Inventory, error)

	// UpdateFieldConfiguration writes inv.Schema if the stored version equals
	// expectedVersion, then sets inv.Version to the new version.
	// Returns model.ErrConcurrencyConflict or model.ErrInventoryNotFound.
	UpdateFieldConfiguration(ctx context.Context, inv *model.Inventory, expectedVersion int64) error

	// UpdateCustomIDElements replaces the persisted element list under the same
	// version check and returns the new version.
	UpdateCustomIDElements(ctx context.Context, inventoryID int64, raw string, expectedVersion int64) (int64, error)

	// CreateItem inserts an item. Returns model.ErrDuplicateCustomID.
	CreateItem(ctx context.Context, item *model.Item) error

	// ListItems returns all items of an inventory in insertion order.
	ListItems(ctx context.Context, inventoryID int64) ([]*model.Item, error)

	// CountItems returns the number of items in an inventory.
	CountItems(ctx context.Context, inventoryID int64) (int, error)

	// IsCustomIDUnique reports whether customID is unused within the inventory.
	IsCustomIDUnique(ctx context.Context, inventoryID int64, customID string) (bool, error)

	// SetAPIToken replaces the inventory's API token; "" revokes it.
	SetAPIToken(ctx context.Context, inventoryID int64, token string) error

	// GetInventoryIDByToken resolves a token. Returns model.ErrInvalidToken.
	GetInventoryIDByToken(ctx context.Context, token string) (int64, error)

	// GetStats returns statistics about the inventory database.
	GetStats(ctx context.Context) (*model.InventoryStats, error)

	// Ping checks connectivity for readiness probes.
	Ping(ctx context.Context) error

	// Close closes the repository connection.
	Close() error
}
