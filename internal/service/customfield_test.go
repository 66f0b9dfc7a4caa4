package service

import (
	"context"
	"testing"

	"inventory-catalog-api/internal/model"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func storedInventory(t *testing.T) *model.Inventory {
	t.Helper()
	inv := model.NewInventory("Tools", "", "", false)
	inv.ID = 1
	inv.Version = 2
	require.NoError(t, inv.Schema.Replace([]model.FieldDescriptor{field(text1, "Brand"), field(bool3, "Broken")}))
	return inv
}

func TestCustomFieldService_Replace(t *testing.T) {
	ctx := context.Background()
	repo := new(mockRepo)
	repo.On("GetInventory", ctx, int64(1)).Return(storedInventory(t), nil)
	repo.On("UpdateFieldConfiguration", ctx, mock.Anything, int64(2)).
		Run(func(args mock.Arguments) { args.Get(1).(*model.Inventory).Version = 3 }).
		Return(nil)

	lo := decimal.NewFromInt(1)
	fields := []model.FieldDescriptor{
		{Key: numeric1, Name: "Weight", NumericConfig: &model.NumericConfig{MinValue: &lo, IsInteger: true}},
		{Key: text1, Name: "Maker", ShowInTable: true},
	}
	inv, err := NewCustomFieldService(repo, zap.NewNop()).ReplaceFieldConfiguration(ctx, 1, 2, fields)
	require.NoError(t, err)
	assert.Equal(t, int64(3), inv.Version)

	got := inv.Schema.ConfiguredFields()
	require.Len(t, got, 2)
	assert.Equal(t, "Maker", got[0].Name)
	assert.Equal(t, "Weight", got[1].Name)
	assert.Equal(t, "0.01", got[1].NumericConfig.StepValue.String())

	broken, _ := inv.Schema.Slot(bool3)
	assert.False(t, broken.Configured())
}

func TestCustomFieldService_Replace_InvalidLeavesStoreUntouched(t *testing.T) {
	ctx := context.Background()
	repo := new(mockRepo)
	repo.On("GetInventory", ctx, int64(1)).Return(storedInventory(t), nil)

	fields := []model.FieldDescriptor{field(text1, "A"), field(text1, "B")}
	_, err := NewCustomFieldService(repo, zap.NewNop()).ReplaceFieldConfiguration(ctx, 1, 2, fields)
	assert.ErrorIs(t, err, model.ErrInvalidFieldConfiguration)
	repo.AssertNotCalled(t, "UpdateFieldConfiguration", mock.Anything, mock.Anything, mock.Anything)
}

func TestCustomFieldService_Replace_Conflict(t *testing.T) {
	ctx := context.Background()
	repo := new(mockRepo)
	repo.On("GetInventory", ctx, int64(1)).Return(storedInventory(t), nil)
	repo.On("UpdateFieldConfiguration", ctx, mock.Anything, int64(1)).Return(model.ErrConcurrencyConflict)

	_, err := NewCustomFieldService(repo, zap.NewNop()).ReplaceFieldConfiguration(ctx, 1, 1, nil)
	assert.ErrorIs(t, err, model.ErrConcurrencyConflict)
}

func TestCustomFieldService_Clear(t *testing.T) {
	ctx := context.Background()
	repo := new(mockRepo)
	repo.On("GetInventory", ctx, int64(1)).Return(storedInventory(t), nil)
	repo.On("UpdateFieldConfiguration", ctx, mock.Anything, int64(2)).Return(nil)

	inv, err := NewCustomFieldService(repo, zap.NewNop()).ClearAllFields(ctx, 1, 2)
	require.NoError(t, err)
	assert.Empty(t, inv.Schema.ConfiguredFields())
}

func TestCustomFieldService_ExportDefinitions(t *testing.T) {
	ctx := context.Background()
	repo := new(mockRepo)
	repo.On("GetInventory", ctx, int64(1)).Return(storedInventory(t), nil)

	defs, err := NewCustomFieldService(repo, zap.NewNop()).ExportDefinitions(ctx, 1)
	require.NoError(t, err)
	require.Len(t, defs, 2)
	assert.Equal(t, "text", defs[0].Type)
	assert.Equal(t, "boolean", defs[1].Type)
	assert.Nil(t, defs[0].NumericConfig)
}
