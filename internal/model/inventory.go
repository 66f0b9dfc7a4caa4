package model

import "time"

// Inventory is a user-defined collection with a configurable custom field schema.
type Inventory struct {
	ID           int64  `json:"id"`
	Title        string `json:"title"`
	Description  string `json:"description"`
	CategoryName string `json:"categoryName"`
	IsPublic     bool   `json:"isPublic"`

	Schema Schema `json:"-"`

	// CustomIDFormat is the legacy single-string template ("ITEM-{SEQUENCE}").
	CustomIDFormat string `json:"customIdFormat"`
	// CustomIDElements is the persisted JSON element list, kept opaque here.
	CustomIDElements string `json:"-"`

	APIToken string `json:"-"`

	// Version is the concurrency token, bumped on every configuration write.
	Version   int64     `json:"version"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// NewInventory returns an inventory with the default, fully unconfigured schema.
func NewInventory(title, description, categoryName string, isPublic bool) *Inventory {
	return &Inventory{
		Title:        title,
		Description:  description,
		CategoryName: categoryName,
		IsPublic:     isPublic,
		Schema:       NewSchema(),
	}
}

// InventoryStats is a storage summary served by the admin endpoint.
type InventoryStats struct {
	Backend        string `json:"backend"`
	InventoryCount int64  `json:"inventoryCount"`
	ItemCount      int64  `json:"itemCount"`
	TokenCount     int64  `json:"tokenCount"`
}
