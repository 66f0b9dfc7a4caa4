package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"inventory-catalog-api/internal/model"

	"go.uber.org/zap"
)

// SQLInventoryRepository implements InventoryRepository on database/sql.
// The SQLite, PostgreSQL and MySQL constructors differ only in dialect.
type SQLInventoryRepository struct {
	db      *sql.DB
	dialect dialect
	logger  *zap.Logger
	now     func() time.Time

	inventorySelect string
	itemSelect      string
}

var _ InventoryRepository = (*SQLInventoryRepository)(nil)

func newSQLInventoryRepository(db *sql.DB, d dialect, logger *zap.Logger) *SQLInventoryRepository {
	invCols := append(append([]string{}, inventoryBaseColumns...), schemaColumns()...)
	itemCols := append(append([]string{}, itemBaseColumns...), itemValueColumns()...)
	return &SQLInventoryRepository{
		db:              db,
		dialect:         d,
		logger:          logger.With(zap.String("backend", d.name)),
		now:             func() time.Time { return time.Now().UTC() },
		inventorySelect: fmt.Sprintf("SELECT %s FROM %s", strings.Join(invCols, ", "), inventoriesTable),
		itemSelect:      fmt.Sprintf("SELECT %s FROM %s", strings.Join(itemCols, ", "), itemsTable),
	}
}

// migrate creates the tables if they do not exist.
func (r *SQLInventoryRepository) migrate(ctx context.Context) error {
	for _, stmt := range r.dialect.schemaStatements() {
		if _, err := r.db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

func assignments(cols []string) string {
	parts := make([]string, len(cols))
	for i, c := range cols {
		parts[i] = c + " = ?"
	}
	return strings.Join(parts, ", ")
}

// insert runs an INSERT and returns the new row id.
func (r *SQLInventoryRepository) insert(ctx context.Context, query string, args ...any) (int64, error) {
	if r.dialect.returningID {
		var id int64
		err := r.db.QueryRowContext(ctx, r.dialect.rebind(query+" RETURNING id"), args...).Scan(&id)
		return id, err
	}
	res, err := r.db.ExecContext(ctx, r.dialect.rebind(query), args...)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// CreateInventory inserts inv and fills in its id, version and timestamps.
func (r *SQLInventoryRepository) CreateInventory(ctx context.Context, inv *model.Inventory) error {
	now := r.now()
	cols := append([]string{
		"title", "description", "category_name", "is_public",
		"custom_id_format", "custom_id_elements", "api_token",
		"version", "created_at", "updated_at",
	}, schemaColumns()...)
	args := append([]any{
		inv.Title, nullableString(inv.Description), nullableString(inv.CategoryName), inv.IsPublic,
		nullableString(inv.CustomIDFormat), nullableString(inv.CustomIDElements), nullableString(inv.APIToken),
		int64(1), now, now,
	}, flattenSchema(&inv.Schema)...)

	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		inventoriesTable, strings.Join(cols, ", "), placeholders(len(cols)))
	id, err := r.insert(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to create inventory: %w", err)
	}

	inv.ID = id
	inv.Version = 1
	inv.CreatedAt = now
	inv.UpdatedAt = now
	r.logger.Debug("inventory created", zap.Int64("inventory_id", id))
	return nil
}

func (r *SQLInventoryRepository) scanInventory(row interface{ Scan(...any) error }) (*model.Inventory, error) {
	var (
		inv                           model.Inventory
		description, category, format sql.NullString
		elements, token               sql.NullString
		schema                        schemaScanner
	)
	dest := append([]any{
		&inv.ID, &inv.Title, &description, &category, &inv.IsPublic,
		&format, &elements, &token,
		&inv.Version, &inv.CreatedAt, &inv.UpdatedAt,
	}, schema.targets()...)
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}

	s, err := unflattenSchema(schema.records())
	if err != nil {
		return nil, fmt.Errorf("failed to rebuild schema for inventory %d: %w", inv.ID, err)
	}
	inv.Schema = s
	inv.Description = description.String
	inv.CategoryName = category.String
	inv.CustomIDFormat = format.String
	inv.CustomIDElements = elements.String
	inv.APIToken = token.String
	return &inv, nil
}

// GetInventory loads one inventory with its schema.
func (r *SQLInventoryRepository) GetInventory(ctx context.Context, id int64) (*model.Inventory, error) {
	row := r.db.QueryRowContext(ctx, r.dialect.rebind(r.inventorySelect+" WHERE id = ?"), id)
	inv, err := r.scanInventory(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrInventoryNotFound
		}
		return nil, fmt.Errorf("failed to get inventory: %w", err)
	}
	return inv, nil
}

// ListInventories returns all inventories ordered by id.
func (r *SQLInventoryRepository) ListInventories(ctx context.Context) ([]*model.Inventory, error) {
	rows, err := r.db.QueryContext(ctx, r.inventorySelect+" ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("failed to list inventories: %w", err)
	}
	defer rows.Close()

	inventories := []*model.Inventory{}
	for rows.Next() {
		inv, err := r.scanInventory(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan inventory: %w", err)
		}
		inventories = append(inventories, inv)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list inventories: %w", err)
	}
	return inventories, nil
}

// versionedUpdate runs an UPDATE guarded by the concurrency token and
// distinguishes a stale version from a missing row.
func (r *SQLInventoryRepository) versionedUpdate(ctx context.Context, id, expectedVersion int64, set string, args ...any) error {
	query := fmt.Sprintf("UPDATE %s SET %s, version = version + 1, updated_at = ? WHERE id = ? AND version = ?",
		inventoriesTable, set)
	args = append(args, r.now(), id, expectedVersion)

	res, err := r.db.ExecContext(ctx, r.dialect.rebind(query), args...)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected > 0 {
		return nil
	}

	var current int64
	err = r.db.QueryRowContext(ctx,
		r.dialect.rebind(fmt.Sprintf("SELECT version FROM %s WHERE id = ?", inventoriesTable)), id).Scan(&current)
	if errors.Is(err, sql.ErrNoRows) {
		return model.ErrInventoryNotFound
	}
	if err != nil {
		return err
	}
	r.logger.Info("stale inventory version",
		zap.Int64("inventory_id", id),
		zap.Int64("expected_version", expectedVersion),
		zap.Int64("current_version", current))
	return model.ErrConcurrencyConflict
}

// UpdateFieldConfiguration persists inv.Schema if inv is still at expectedVersion.
func (r *SQLInventoryRepository) UpdateFieldConfiguration(ctx context.Context, inv *model.Inventory, expectedVersion int64) error {
	err := r.versionedUpdate(ctx, inv.ID, expectedVersion, assignments(schemaColumns()), flattenSchema(&inv.Schema)...)
	if err != nil {
		if errors.Is(err, model.ErrInventoryNotFound) || errors.Is(err, model.ErrConcurrencyConflict) {
			return err
		}
		return fmt.Errorf("failed to update field configuration: %w", err)
	}
	inv.Version = expectedVersion + 1
	return nil
}

// UpdateCustomIDElements stores the serialized element list and returns the new version.
func (r *SQLInventoryRepository) UpdateCustomIDElements(ctx context.Context, inventoryID int64, raw string, expectedVersion int64) (int64, error) {
	err := r.versionedUpdate(ctx, inventoryID, expectedVersion, "custom_id_elements = ?", nullableString(raw))
	if err != nil {
		if errors.Is(err, model.ErrInventoryNotFound) || errors.Is(err, model.ErrConcurrencyConflict) {
			return 0, err
		}
		return 0, fmt.Errorf("failed to update custom id elements: %w", err)
	}
	return expectedVersion + 1, nil
}

// CreateItem inserts item. A custom id already used in the inventory yields ErrDuplicateCustomID.
func (r *SQLInventoryRepository) CreateItem(ctx context.Context, item *model.Item) error {
	now := r.now()
	cols := append([]string{"inventory_id", "custom_id", "created_at", "updated_at"}, itemValueColumns()...)
	args := append([]any{item.InventoryID, item.CustomID, now, now}, flattenItemValues(&item.Values)...)

	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		itemsTable, strings.Join(cols, ", "), placeholders(len(cols)))
	id, err := r.insert(ctx, query, args...)
	if err != nil {
		if r.dialect.isUniqueViolation(err) {
			return model.ErrDuplicateCustomID
		}
		return fmt.Errorf("failed to create item: %w", err)
	}

	item.ID = id
	item.CreatedAt = now
	item.UpdatedAt = now
	return nil
}

// ListItems returns every item of an inventory in insertion order.
func (r *SQLInventoryRepository) ListItems(ctx context.Context, inventoryID int64) ([]*model.Item, error) {
	rows, err := r.db.QueryContext(ctx, r.dialect.rebind(r.itemSelect+" WHERE inventory_id = ? ORDER BY id"), inventoryID)
	if err != nil {
		return nil, fmt.Errorf("failed to list items: %w", err)
	}
	defer rows.Close()

	items := []*model.Item{}
	for rows.Next() {
		var (
			item   model.Item
			values itemScanner
		)
		dest := append([]any{&item.ID, &item.InventoryID, &item.CustomID, &item.CreatedAt, &item.UpdatedAt}, values.targets()...)
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("failed to scan item: %w", err)
		}
		item.Values = values.values()
		items = append(items, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list items: %w", err)
	}
	return items, nil
}

func (r *SQLInventoryRepository) count(ctx context.Context, query string, args ...any) (int64, error) {
	var n int64
	err := r.db.QueryRowContext(ctx, r.dialect.rebind(query), args...).Scan(&n)
	return n, err
}

// CountItems returns the number of items in an inventory.
func (r *SQLInventoryRepository) CountItems(ctx context.Context, inventoryID int64) (int, error) {
	n, err := r.count(ctx, fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE inventory_id = ?", itemsTable), inventoryID)
	if err != nil {
		return 0, fmt.Errorf("failed to count items: %w", err)
	}
	return int(n), nil
}

// IsCustomIDUnique reports whether no item of the inventory uses customID.
func (r *SQLInventoryRepository) IsCustomIDUnique(ctx context.Context, inventoryID int64, customID string) (bool, error) {
	n, err := r.count(ctx,
		fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE inventory_id = ? AND custom_id = ?", itemsTable),
		inventoryID, customID)
	if err != nil {
		return false, fmt.Errorf("failed to check custom id: %w", err)
	}
	return n == 0, nil
}

// SetAPIToken replaces the inventory's API token. An empty token revokes it.
func (r *SQLInventoryRepository) SetAPIToken(ctx context.Context, inventoryID int64, token string) error {
	query := fmt.Sprintf("UPDATE %s SET api_token = ?, updated_at = ? WHERE id = ?", inventoriesTable)
	res, err := r.db.ExecContext(ctx, r.dialect.rebind(query), nullableString(token), r.now(), inventoryID)
	if err != nil {
		return fmt.Errorf("failed to set api token: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to set api token: %w", err)
	}
	if affected == 0 {
		return model.ErrInventoryNotFound
	}
	return nil
}

// GetInventoryIDByToken resolves an API token to its inventory.
func (r *SQLInventoryRepository) GetInventoryIDByToken(ctx context.Context, token string) (int64, error) {
	var id int64
	query := fmt.Sprintf("SELECT id FROM %s WHERE api_token = ?", inventoriesTable)
	err := r.db.QueryRowContext(ctx, r.dialect.rebind(query), token).Scan(&id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, model.ErrInvalidToken
		}
		return 0, fmt.Errorf("failed to resolve api token: %w", err)
	}
	return id, nil
}

// GetStats returns row counts for the admin dashboard.
func (r *SQLInventoryRepository) GetStats(ctx context.Context) (*model.InventoryStats, error) {
	stats := &model.InventoryStats{Backend: r.dialect.name}
	var err error

	if stats.InventoryCount, err = r.count(ctx, "SELECT COUNT(*) FROM "+inventoriesTable); err != nil {
		return nil, fmt.Errorf("failed to count inventories: %w", err)
	}
	if stats.ItemCount, err = r.count(ctx, "SELECT COUNT(*) FROM "+itemsTable); err != nil {
		return nil, fmt.Errorf("failed to count items: %w", err)
	}
	if stats.TokenCount, err = r.count(ctx, "SELECT COUNT(*) FROM "+inventoriesTable+" WHERE api_token IS NOT NULL"); err != nil {
		return nil, fmt.Errorf("failed to count tokens: %w", err)
	}
	return stats, nil
}

// Ping checks the database connection.
func (r *SQLInventoryRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// Close closes the database connection.
func (r *SQLInventoryRepository) Close() error {
	return r.db.Close()
}
