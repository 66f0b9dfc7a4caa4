package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"inventory-catalog-api/internal/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

const countersCollection = "counters"

// MongoDBInventoryRepository implements InventoryRepository using MongoDB.
// Documents use the same flattened slot keys as the SQL tables and integer
// ids drawn from a counters collection.
type MongoDBInventoryRepository struct {
	client      *mongo.Client
	db          *mongo.Database
	inventories *mongo.Collection
	items       *mongo.Collection
	counters    *mongo.Collection
	logger      *zap.Logger
}

var _ InventoryRepository = (*MongoDBInventoryRepository)(nil)

// NewMongoDBInventoryRepository creates a new MongoDB inventory repository.
func NewMongoDBInventoryRepository(uri, database string, logger *zap.Logger) (*MongoDBInventoryRepository, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	clientOpts := options.Client().
		ApplyURI(uri).
		SetMaxPoolSize(50).
		SetMinPoolSize(5).
		SetMaxConnIdleTime(5 * time.Minute).
		SetRetryWrites(true)

	client, err := mongo.Connect(ctx, clientOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	db := client.Database(database)
	repo := &MongoDBInventoryRepository{
		client:      client,
		db:          db,
		inventories: db.Collection(inventoriesTable),
		items:       db.Collection(itemsTable),
		counters:    db.Collection(countersCollection),
		logger:      logger.With(zap.String("backend", "mongodb")),
	}

	_, err = repo.items.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "inventory_id", Value: 1}, {Key: "custom_id", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		repo.logger.Warn("failed to create item index", zap.Error(err))
	}
	_, err = repo.inventories.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "api_token", Value: 1}},
		Options: options.Index().SetUnique(true).SetSparse(true),
	})
	if err != nil {
		repo.logger.Warn("failed to create token index", zap.Error(err))
	}

	repo.logger.Info("connected to MongoDB", zap.String("database", database))
	return repo, nil
}

// inventoryDocument holds the non-slot fields of an inventory document.
type inventoryDocument struct {
	ID               int64     `bson:"_id"`
	Title            string    `bson:"title"`
	Description      string    `bson:"description"`
	CategoryName     string    `bson:"category_name"`
	IsPublic         bool      `bson:"is_public"`
	CustomIDFormat   string    `bson:"custom_id_format"`
	CustomIDElements string    `bson:"custom_id_elements"`
	APIToken         string    `bson:"api_token,omitempty"`
	Version          int64     `bson:"version"`
	CreatedAt        time.Time `bson:"created_at"`
	UpdatedAt        time.Time `bson:"updated_at"`
}

// itemDocument holds the non-slot fields of an item document.
type itemDocument struct {
	ID          int64     `bson:"_id"`
	InventoryID int64     `bson:"inventory_id"`
	CustomID    string    `bson:"custom_id"`
	CreatedAt   time.Time `bson:"created_at"`
	UpdatedAt   time.Time `bson:"updated_at"`
}

func (r *MongoDBInventoryRepository) nextID(ctx context.Context, name string) (int64, error) {
	var counter struct {
		Seq int64 `bson:"seq"`
	}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)
	err := r.counters.FindOneAndUpdate(ctx,
		bson.M{"_id": name},
		bson.M{"$inc": bson.M{"seq": int64(1)}},
		opts,
	).Decode(&counter)
	if err != nil {
		return 0, fmt.Errorf("failed to allocate %s id: %w", name, err)
	}
	return counter.Seq, nil
}

func columnsDoc(cols []string, values []any) bson.D {
	d := make(bson.D, 0, len(cols))
	for i, col := range cols {
		d = append(d, bson.E{Key: col, Value: values[i]})
	}
	return d
}

func rawLookup(raw bson.Raw) columnLookup {
	return func(col string) any {
		v, err := raw.LookupErr(col)
		if err != nil {
			return nil
		}
		if s, ok := v.StringValueOK(); ok {
			return s
		}
		if b, ok := v.BooleanOK(); ok {
			return b
		}
		return nil
	}
}

func decodeInventory(raw bson.Raw) (*model.Inventory, error) {
	var doc inventoryDocument
	if err := bson.Unmarshal(raw, &doc); err != nil {
		return nil, err
	}
	records, err := slotRecordsFromLookup(rawLookup(raw))
	if err != nil {
		return nil, err
	}
	schema, err := unflattenSchema(records)
	if err != nil {
		return nil, err
	}
	return &model.Inventory{
		ID:               doc.ID,
		Title:            doc.Title,
		Description:      doc.Description,
		CategoryName:     doc.CategoryName,
		IsPublic:         doc.IsPublic,
		Schema:           schema,
		CustomIDFormat:   doc.CustomIDFormat,
		CustomIDElements: doc.CustomIDElements,
		APIToken:         doc.APIToken,
		Version:          doc.Version,
		CreatedAt:        doc.CreatedAt,
		UpdatedAt:        doc.UpdatedAt,
	}, nil
}

// CreateInventory inserts inv and fills in its id, version and timestamps.
func (r *MongoDBInventoryRepository) CreateInventory(ctx context.Context, inv *model.Inventory) error {
	id, err := r.nextID(ctx, inventoriesTable)
	if err != nil {
		return err
	}
	now := time.Now().UTC().Truncate(time.Millisecond)

	doc := bson.D{
		{Key: "_id", Value: id},
		{Key: "title", Value: inv.Title},
		{Key: "description", Value: inv.Description},
		{Key: "category_name", Value: inv.CategoryName},
		{Key: "is_public", Value: inv.IsPublic},
		{Key: "custom_id_format", Value: inv.CustomIDFormat},
		{Key: "custom_id_elements", Value: inv.CustomIDElements},
		{Key: "version", Value: int64(1)},
		{Key: "created_at", Value: now},
		{Key: "updated_at", Value: now},
	}
	if inv.APIToken != "" {
		doc = append(doc, bson.E{Key: "api_token", Value: inv.APIToken})
	}
	doc = append(doc, columnsDoc(schemaColumns(), flattenSchema(&inv.Schema))...)

	if _, err := r.inventories.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("failed to create inventory: %w", err)
	}
	inv.ID = id
	inv.Version = 1
	inv.CreatedAt = now
	inv.UpdatedAt = now
	return nil
}

// GetInventory loads one inventory with its schema.
func (r *MongoDBInventoryRepository) GetInventory(ctx context.Context, id int64) (*model.Inventory, error) {
	raw, err := r.inventories.FindOne(ctx, bson.M{"_id": id}).Raw()
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, model.ErrInventoryNotFound
		}
		return nil, fmt.Errorf("failed to get inventory: %w", err)
	}
	inv, err := decodeInventory(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to decode inventory %d: %w", id, err)
	}
	return inv, nil
}

// ListInventories returns all inventories ordered by id.
func (r *MongoDBInventoryRepository) ListInventories(ctx context.Context) ([]*model.Inventory, error) {
	cursor, err := r.inventories.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to list inventories: %w", err)
	}
	defer cursor.Close(ctx)

	inventories := []*model.Inventory{}
	for cursor.Next(ctx) {
		inv, err := decodeInventory(cursor.Current)
		if err != nil {
			return nil, fmt.Errorf("failed to decode inventory: %w", err)
		}
		inventories = append(inventories, inv)
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("failed to list inventories: %w", err)
	}
	return inventories, nil
}

func (r *MongoDBInventoryRepository) versionedUpdate(ctx context.Context, id, expectedVersion int64, set bson.D) error {
	set = append(set, bson.E{Key: "updated_at", Value: time.Now().UTC()})
	res, err := r.inventories.UpdateOne(ctx,
		bson.M{"_id": id, "version": expectedVersion},
		bson.D{{Key: "$set", Value: set}, {Key: "$inc", Value: bson.M{"version": int64(1)}}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount > 0 {
		return nil
	}

	n, err := r.inventories.CountDocuments(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if n == 0 {
		return model.ErrInventoryNotFound
	}
	r.logger.Info("stale inventory version",
		zap.Int64("inventory_id", id), zap.Int64("expected_version", expectedVersion))
	return model.ErrConcurrencyConflict
}

// UpdateFieldConfiguration persists inv.Schema if inv is still at expectedVersion.
func (r *MongoDBInventoryRepository) UpdateFieldConfiguration(ctx context.Context, inv *model.Inventory, expectedVersion int64) error {
	err := r.versionedUpdate(ctx, inv.ID, expectedVersion, columnsDoc(schemaColumns(), flattenSchema(&inv.Schema)))
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
func (r *MongoDBInventoryRepository) UpdateCustomIDElements(ctx context.Context, inventoryID int64, raw string, expectedVersion int64) (int64, error) {
	err := r.versionedUpdate(ctx, inventoryID, expectedVersion, bson.D{{Key: "custom_id_elements", Value: raw}})
	if err != nil {
		if errors.Is(err, model.ErrInventoryNotFound) || errors.Is(err, model.ErrConcurrencyConflict) {
			return 0, err
		}
		return 0, fmt.Errorf("failed to update custom id elements: %w", err)
	}
	return expectedVersion + 1, nil
}

// CreateItem inserts item. A custom id already used in the inventory yields ErrDuplicateCustomID.
func (r *MongoDBInventoryRepository) CreateItem(ctx context.Context, item *model.Item) error {
	id, err := r.nextID(ctx, itemsTable)
	if err != nil {
		return err
	}
	now := time.Now().UTC().Truncate(time.Millisecond)

	doc := bson.D{
		{Key: "_id", Value: id},
		{Key: "inventory_id", Value: item.InventoryID},
		{Key: "custom_id", Value: item.CustomID},
		{Key: "created_at", Value: now},
		{Key: "updated_at", Value: now},
	}
	doc = append(doc, columnsDoc(itemValueColumns(), flattenItemValues(&item.Values))...)

	if _, err := r.items.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
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
func (r *MongoDBInventoryRepository) ListItems(ctx context.Context, inventoryID int64) ([]*model.Item, error) {
	cursor, err := r.items.Find(ctx,
		bson.M{"inventory_id": inventoryID},
		options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to list items: %w", err)
	}
	defer cursor.Close(ctx)

	items := []*model.Item{}
	for cursor.Next(ctx) {
		var doc itemDocument
		if err := bson.Unmarshal(cursor.Current, &doc); err != nil {
			return nil, fmt.Errorf("failed to decode item: %w", err)
		}
		values, err := itemValuesFromLookup(rawLookup(cursor.Current))
		if err != nil {
			return nil, fmt.Errorf("failed to decode item %d: %w", doc.ID, err)
		}
		items = append(items, &model.Item{
			ID:          doc.ID,
			InventoryID: doc.InventoryID,
			CustomID:    doc.CustomID,
			Values:      values,
			CreatedAt:   doc.CreatedAt,
			UpdatedAt:   doc.UpdatedAt,
		})
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("failed to list items: %w", err)
	}
	return items, nil
}

// CountItems returns the number of items in an inventory.
func (r *MongoDBInventoryRepository) CountItems(ctx context.Context, inventoryID int64) (int, error) {
	n, err := r.items.CountDocuments(ctx, bson.M{"inventory_id": inventoryID})
	if err != nil {
		return 0, fmt.Errorf("failed to count items: %w", err)
	}
	return int(n), nil
}

// IsCustomIDUnique reports whether no item of the inventory uses customID.
func (r *MongoDBInventoryRepository) IsCustomIDUnique(ctx context.Context, inventoryID int64, customID string) (bool, error) {
	n, err := r.items.CountDocuments(ctx, bson.M{"inventory_id": inventoryID, "custom_id": customID})
	if err != nil {
		return false, fmt.Errorf("failed to check custom id: %w", err)
	}
	return n == 0, nil
}

// SetAPIToken replaces the inventory's API token. An empty token revokes it.
func (r *MongoDBInventoryRepository) SetAPIToken(ctx context.Context, inventoryID int64, token string) error {
	update := bson.M{"$set": bson.M{"api_token": token, "updated_at": time.Now().UTC()}}
	if token == "" {
		update = bson.M{
			"$unset": bson.M{"api_token": ""},
			"$set":   bson.M{"updated_at": time.Now().UTC()},
		}
	}
	res, err := r.inventories.UpdateOne(ctx, bson.M{"_id": inventoryID}, update)
	if err != nil {
		return fmt.Errorf("failed to set api token: %w", err)
	}
	if res.MatchedCount == 0 {
		return model.ErrInventoryNotFound
	}
	return nil
}

// GetInventoryIDByToken resolves an API token to its inventory.
func (r *MongoDBInventoryRepository) GetInventoryIDByToken(ctx context.Context, token string) (int64, error) {
	var doc struct {
		ID int64 `bson:"_id"`
	}
	err := r.inventories.FindOne(ctx,
		bson.M{"api_token": token},
		options.FindOne().SetProjection(bson.M{"_id": 1}),
	).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return 0, model.ErrInvalidToken
		}
		return 0, fmt.Errorf("failed to resolve api token: %w", err)
	}
	return doc.ID, nil
}

// GetStats returns document counts for the admin dashboard.
func (r *MongoDBInventoryRepository) GetStats(ctx context.Context) (*model.InventoryStats, error) {
	stats := &model.InventoryStats{Backend: "mongodb"}
	var err error

	if stats.InventoryCount, err = r.inventories.EstimatedDocumentCount(ctx); err != nil {
		return nil, fmt.Errorf("failed to count inventories: %w", err)
	}
	if stats.ItemCount, err = r.items.EstimatedDocumentCount(ctx); err != nil {
		return nil, fmt.Errorf("failed to count items: %w", err)
	}
	if stats.TokenCount, err = r.inventories.CountDocuments(ctx, bson.M{"api_token": bson.M{"$exists": true}}); err != nil {
		return nil, fmt.Errorf("failed to count tokens: %w", err)
	}
	return stats, nil
}

// Ping checks the MongoDB connection.
func (r *MongoDBInventoryRepository) Ping(ctx context.Context) error {
	return r.client.Ping(ctx, nil)
}

// Close closes the MongoDB connection.
func (r *MongoDBInventoryRepository) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return r.client.Disconnect(ctx)
}
