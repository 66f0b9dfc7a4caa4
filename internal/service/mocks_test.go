package service

import (
	"context"
	"time"

	"inventory-catalog-api/internal/model"
	"inventory-catalog-api/internal/repository"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

type mockRepo struct {
	mock.Mock
}

var _ repository.InventoryRepository = (*mockRepo)(nil)

func (m *mockRepo) CreateInventory(ctx context.Context, inv *model.Inventory) error {
	return m.Called(ctx, inv).Error(0)
}

func (m *mockRepo) GetInventory(ctx context.Context, id int64) (*model.Inventory, error) {
	args := m.Called(ctx, id)
	if inv, ok := args.Get(0).(*model.Inventory); ok {
		return inv, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockRepo) ListInventories(ctx context.Context) ([]*model.Inventory, error) {
	args := m.Called(ctx)
	list, _ := args.Get(0).([]*model.Inventory)
	return list, args.Error(1)
}

func (m *mockRepo) UpdateFieldConfiguration(ctx context.Context, inv *model.Inventory, expectedVersion int64) error {
	return m.Called(ctx, inv, expectedVersion).Error(0)
}

func (m *mockRepo) UpdateCustomIDElements(ctx context.Context, inventoryID int64, raw string, expectedVersion int64) (int64, error) {
	args := m.Called(ctx, inventoryID, raw, expectedVersion)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockRepo) CreateItem(ctx context.Context, item *model.Item) error {
	return m.Called(ctx, item).Error(0)
}

func (m *mockRepo) ListItems(ctx context.Context, inventoryID int64) ([]*model.Item, error) {
	args := m.Called(ctx, inventoryID)
	items, _ := args.Get(0).([]*model.Item)
	return items, args.Error(1)
}

func (m *mockRepo) CountItems(ctx context.Context, inventoryID int64) (int, error) {
	args := m.Called(ctx, inventoryID)
	return args.Int(0), args.Error(1)
}

func (m *mockRepo) IsCustomIDUnique(ctx context.Context, inventoryID int64, customID string) (bool, error) {
	args := m.Called(ctx, inventoryID, customID)
	return args.Bool(0), args.Error(1)
}

func (m *mockRepo) SetAPIToken(ctx context.Context, inventoryID int64, token string) error {
	return m.Called(ctx, inventoryID, token).Error(0)
}

func (m *mockRepo) GetInventoryIDByToken(ctx context.Context, token string) (int64, error) {
	args := m.Called(ctx, token)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockRepo) GetStats(ctx context.Context) (*model.InventoryStats, error) {
	args := m.Called(ctx)
	stats, _ := args.Get(0).(*model.InventoryStats)
	return stats, args.Error(1)
}

func (m *mockRepo) Ping(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *mockRepo) Close() error {
	return m.Called().Error(0)
}

// fixedEntropy returns n from every draw (capped to the range), one GUID and one instant.
type fixedEntropy struct {
	n    int
	guid uuid.UUID
	now  time.Time
}

func (f fixedEntropy) IntN(n int) int {
	if f.n >= n {
		return n - 1
	}
	return f.n
}

func (f fixedEntropy) NewGUID() uuid.UUID { return f.guid }

func (f fixedEntropy) Now() time.Time { return f.now }

var testGUID = uuid.MustParse("12345678-9abc-def0-1234-56789abcdef0")

var testNow = time.Date(2024, 3, 5, 14, 7, 9, 0, time.UTC)

func newFixedEntropy(n int) fixedEntropy {
	return fixedEntropy{n: n, guid: testGUID, now: testNow}
}

func element(t model.ElementType, value string, order int) model.CustomIDElement {
	return model.CustomIDElement{Type: t, Value: value, Order: order}
}
