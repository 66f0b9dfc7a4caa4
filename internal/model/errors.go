package model

import "errors"

var (
	// ErrInventoryNotFound is returned when an inventory does not exist.
	ErrInventoryNotFound = errors.New("inventory not found")

	// ErrConcurrencyConflict is returned when a write carries a stale version.
	ErrConcurrencyConflict = errors.New("inventory was modified concurrently")

	// ErrInvalidFieldConfiguration is returned for malformed field or slot input.
	ErrInvalidFieldConfiguration = errors.New("invalid field configuration")

	// ErrDuplicateCustomID is returned when a custom id is already used within an inventory.
	ErrDuplicateCustomID = errors.New("custom id already exists")

	// ErrInvalidCustomID is returned when a custom id does not match the configured format.
	ErrInvalidCustomID = errors.New("custom id does not match format")

	// ErrInvalidItemValue is returned when an item value violates its slot configuration.
	ErrInvalidItemValue = errors.New("invalid item value")

	// ErrInvalidToken is returned for unknown or malformed API tokens.
	ErrInvalidToken = errors.New("invalid api token")
)
