package service

import (
	"context"
	"testing"

	"inventory-catalog-api/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNewInventoryService_NilRepo(t *testing.T) {
	assert.Nil(t, NewInventoryService(nil, zap.NewNop()))
}

func TestInventoryService_CreateInventory(t *testing.T) {
	ctx := context.Background()
	repo := new(mockRepo)
	repo.On("CreateInventory", ctx, mock.AnythingOfType("*model.Inventory")).
		Run(func(args mock.Arguments) {
			inv := args.Get(1).(*model.Inventory)
			inv.ID = 12
			inv.Version = 1
		}).
		Return(nil)

	svc := NewInventoryService(repo, zap.NewNop())
	inv, err := svc.CreateInventory(ctx, CreateInventoryInput{
		Title:          "  Books ",
		CategoryName:   "Library",
		IsPublic:       true,
		CustomIDFormat: "BK-{SEQUENCE}",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(12), inv.ID)
	assert.Equal(t, "Books", inv.Title)
	assert.Equal(t, "BK-{SEQUENCE}", inv.CustomIDFormat)
	assert.Empty(t, inv.Schema.ConfiguredFields())
}

func TestInventoryService_CountItems(t *testing.T) {
	ctx := context.Background()
	repo := new(mockRepo)
	repo.On("CountItems", ctx, int64(4)).Return(9, nil)

	n, err := NewInventoryService(repo, zap.NewNop()).CountItems(ctx, 4)
	require.NoError(t, err)
	assert.Equal(t, 9, n)
	repo.AssertExpectations(t)
}
