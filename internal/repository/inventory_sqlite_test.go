package repository

import (
	"context"
	"testing"

	"inventory-catalog-api/internal/model"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestSQLite(t *testing.T) *SQLInventoryRepository {
	t.Helper()
	repo, err := NewSQLiteInventoryRepository(":memory:", zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })
	return repo
}

func strPtr(s string) *string { return &s }

func boolPtr(b bool) *bool { return &b }

func decPtr(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func sampleInventory(t *testing.T) *model.Inventory {
	t.Helper()
	inv := model.NewInventory("Tools", "Workshop tools", "Equipment", true)
	inv.CustomIDFormat = "TOOL-{SEQUENCE}"
	err := inv.Schema.Replace([]model.FieldDescriptor{
		{Key: model.SlotKey{Category: model.CategoryText, Index: 1}, Name: "Brand", ShowInTable: true},
		{
			Key:  model.SlotKey{Category: model.CategoryNumeric, Index: 2},
			Name: "Weight", Description: "kg",
			NumericConfig: &model.NumericConfig{
				MinValue:      decPtr("0.5"),
				MaxValue:      decPtr("100"),
				StepValue:     decimal.RequireFromString("0.5"),
				DisplayFormat: "0.0",
			},
		},
		{Key: model.SlotKey{Category: model.CategoryBoolean, Index: 3}, Name: "Broken"},
	})
	require.NoError(t, err)
	return inv
}

func TestSQLite_CreateAndGetInventory(t *testing.T) {
	repo := newTestSQLite(t)
	ctx := context.Background()

	inv := sampleInventory(t)
	require.NoError(t, repo.CreateInventory(ctx, inv))
	assert.NotZero(t, inv.ID)
	assert.Equal(t, int64(1), inv.Version)

	got, err := repo.GetInventory(ctx, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, "Tools", got.Title)
	assert.Equal(t, "Equipment", got.CategoryName)
	assert.True(t, got.IsPublic)
	assert.Equal(t, "TOOL-{SEQUENCE}", got.CustomIDFormat)

	fields := got.Schema.ConfiguredFields()
	require.Len(t, fields, 3)
	assert.Equal(t, "Brand", fields[0].Name)
	assert.True(t, fields[0].ShowInTable)
	assert.Nil(t, fields[0].NumericConfig)

	weight := fields[1]
	assert.Equal(t, "numeric-field-2", weight.Key.String())
	assert.Equal(t, "kg", weight.Description)
	require.NotNil(t, weight.NumericConfig)
	assert.Equal(t, "0.5", weight.NumericConfig.MinValue.String())
	assert.Equal(t, "100", weight.NumericConfig.MaxValue.String())
	assert.Equal(t, "0.5", weight.NumericConfig.StepValue.String())
	assert.Equal(t, "0.0", weight.NumericConfig.DisplayFormat)

	assert.Equal(t, "boolean-field-3", fields[2].Key.String())

	unused, ok := got.Schema.Slot(model.SlotKey{Category: model.CategoryNumeric, Index: 1})
	require.True(t, ok)
	assert.Equal(t, "0.01", unused.NumericConfig.StepValue.String())
}

func TestSQLite_GetInventory_NotFound(t *testing.T) {
	repo := newTestSQLite(t)
	_, err := repo.GetInventory(context.Background(), 42)
	assert.ErrorIs(t, err, model.ErrInventoryNotFound)
}

func TestSQLite_UpdateFieldConfiguration_Versioning(t *testing.T) {
	repo := newTestSQLite(t)
	ctx := context.Background()

	inv := sampleInventory(t)
	require.NoError(t, repo.CreateInventory(ctx, inv))

	inv.Schema.Clear()
	require.NoError(t, repo.UpdateFieldConfiguration(ctx, inv, 1))
	assert.Equal(t, int64(2), inv.Version)

	got, err := repo.GetInventory(ctx, inv.ID)
	require.NoError(t, err)
	assert.Empty(t, got.Schema.ConfiguredFields())
	assert.Equal(t, int64(2), got.Version)

	err = repo.UpdateFieldConfiguration(ctx, inv, 1)
	assert.ErrorIs(t, err, model.ErrConcurrencyConflict)

	missing := &model.Inventory{ID: 999, Schema: model.NewSchema()}
	err = repo.UpdateFieldConfiguration(ctx, missing, 1)
	assert.ErrorIs(t, err, model.ErrInventoryNotFound)
}

func TestSQLite_UpdateCustomIDElements(t *testing.T) {
	repo := newTestSQLite(t)
	ctx := context.Background()

	inv := sampleInventory(t)
	require.NoError(t, repo.CreateInventory(ctx, inv))

	raw := `[{"id":"a","type":"fixed","value":"INV-","description":"","order":0}]`
	version, err := repo.UpdateCustomIDElements(ctx, inv.ID, raw, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(2), version)

	got, err := repo.GetInventory(ctx, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, raw, got.CustomIDElements)

	_, err = repo.UpdateCustomIDElements(ctx, inv.ID, raw, 1)
	assert.ErrorIs(t, err, model.ErrConcurrencyConflict)
}

func TestSQLite_Items(t *testing.T) {
	repo := newTestSQLite(t)
	ctx := context.Background()

	inv := sampleInventory(t)
	require.NoError(t, repo.CreateInventory(ctx, inv))

	first := &model.Item{InventoryID: inv.ID, CustomID: "TOOL-0001"}
	first.Values.Text[0] = strPtr("Bosch")
	first.Values.Numeric[1] = decPtr("12.5")
	first.Values.Boolean[2] = boolPtr(false)
	require.NoError(t, repo.CreateItem(ctx, first))
	assert.NotZero(t, first.ID)

	second := &model.Item{InventoryID: inv.ID, CustomID: "TOOL-0002"}
	require.NoError(t, repo.CreateItem(ctx, second))

	dup := &model.Item{InventoryID: inv.ID, CustomID: "TOOL-0001"}
	assert.ErrorIs(t, repo.CreateItem(ctx, dup), model.ErrDuplicateCustomID)

	items, err := repo.ListItems(ctx, inv.ID)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "TOOL-0001", items[0].CustomID)
	require.NotNil(t, items[0].Values.Text[0])
	assert.Equal(t, "Bosch", *items[0].Values.Text[0])
	require.NotNil(t, items[0].Values.Numeric[1])
	assert.Equal(t, "12.5", items[0].Values.Numeric[1].String())
	require.NotNil(t, items[0].Values.Boolean[2])
	assert.False(t, *items[0].Values.Boolean[2])
	assert.Nil(t, items[1].Values.Text[0])
	assert.Nil(t, items[1].Values.Boolean[2])

	count, err := repo.CountItems(ctx, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	unique, err := repo.IsCustomIDUnique(ctx, inv.ID, "TOOL-0001")
	require.NoError(t, err)
	assert.False(t, unique)
	unique, err = repo.IsCustomIDUnique(ctx, inv.ID, "TOOL-0003")
	require.NoError(t, err)
	assert.True(t, unique)
}

func TestSQLite_APIToken(t *testing.T) {
	repo := newTestSQLite(t)
	ctx := context.Background()

	inv := sampleInventory(t)
	require.NoError(t, repo.CreateInventory(ctx, inv))

	require.NoError(t, repo.SetAPIToken(ctx, inv.ID, "inv_abc"))
	id, err := repo.GetInventoryIDByToken(ctx, "inv_abc")
	require.NoError(t, err)
	assert.Equal(t, inv.ID, id)

	stats, err := repo.GetStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, "sqlite", stats.Backend)
	assert.Equal(t, int64(1), stats.InventoryCount)
	assert.Equal(t, int64(1), stats.TokenCount)

	require.NoError(t, repo.SetAPIToken(ctx, inv.ID, ""))
	_, err = repo.GetInventoryIDByToken(ctx, "inv_abc")
	assert.ErrorIs(t, err, model.ErrInvalidToken)

	assert.ErrorIs(t, repo.SetAPIToken(ctx, 999, "inv_x"), model.ErrInventoryNotFound)
}

func TestSQLite_ListInventories(t *testing.T) {
	repo := newTestSQLite(t)
	ctx := context.Background()

	require.NoError(t, repo.CreateInventory(ctx, model.NewInventory("A", "", "", false)))
	require.NoError(t, repo.CreateInventory(ctx, model.NewInventory("B", "", "", false)))

	list, err := repo.ListInventories(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "A", list[0].Title)
	assert.Equal(t, "B", list[1].Title)
}
