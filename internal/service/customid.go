package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"inventory-catalog-api/internal/metrics"
	"inventory-catalog-api/internal/model"
	"inventory-catalog-api/internal/repository"
	"inventory-catalog-api/pkg/uid"

	"go.uber.org/zap"
)

// DefaultCustomIDAttempts is used when no attempt limit is configured.
const DefaultCustomIDAttempts = 10

// CustomIDConfiguration is the custom ID setup of one inventory.
type CustomIDConfiguration struct {
	InventoryID int64                   `json:"inventoryId"`
	Format      string                  `json:"format"`
	Elements    []model.CustomIDElement `json:"elements"`
	Example     string                  `json:"example"`
	Version     int64                   `json:"version"`
}

// CustomIDValidation is the outcome of checking an id against a configuration.
type CustomIDValidation struct {
	CustomID string `json:"customId"`
	Valid    bool   `json:"valid"`
	Unique   bool   `json:"unique"`
	Message  string `json:"message,omitempty"`
	Example  string `json:"example"`
}

// CustomIDService manages custom ID configuration and generation.
type CustomIDService struct {
	repo        repository.InventoryRepository
	generator   *CustomIDGenerator
	maxAttempts int
	logger      *zap.Logger
	now         func() time.Time
}

// NewCustomIDService creates a custom ID service.
func NewCustomIDService(repo repository.InventoryRepository, generator *CustomIDGenerator, maxAttempts int, logger *zap.Logger) *CustomIDService {
	if maxAttempts < 1 {
		maxAttempts = DefaultCustomIDAttempts
	}
	return &CustomIDService{
		repo:        repo,
		generator:   generator,
		maxAttempts: maxAttempts,
		logger:      logger,
		now:         time.Now,
	}
}

// Elements returns the parsed element list of inv. A malformed stored list
// is logged and treated as empty.
func (s *CustomIDService) Elements(inv *model.Inventory) []model.CustomIDElement {
	res := model.ParseCustomIDElements(inv.CustomIDElements)
	if res.Defaulted {
		metrics.CustomIDElementsDefaulted.Inc()
		s.logger.Warn("custom id elements unreadable, using sequence fallback",
			zap.Int64("inventory_id", inv.ID), zap.Error(res.Err))
	}
	return res.Elements
}

// GetConfiguration returns the stored configuration of an inventory.
func (s *CustomIDService) GetConfiguration(ctx context.Context, inventoryID int64) (*CustomIDConfiguration, error) {
	inv, err := s.repo.GetInventory(ctx, inventoryID)
	if err != nil {
		return nil, err
	}
	return s.configuration(inv, s.Elements(inv)), nil
}

func (s *CustomIDService) configuration(inv *model.Inventory, elements []model.CustomIDElement) *CustomIDConfiguration {
	return &CustomIDConfiguration{
		InventoryID: inv.ID,
		Format:      inv.CustomIDFormat,
		Elements:    elements,
		Example:     FormatExample(elements),
		Version:     inv.Version,
	}
}

// NormalizeElements assigns missing ids and canonical type names, and sorts
// by order. Unknown types are rejected.
func NormalizeElements(elements []model.CustomIDElement) ([]model.CustomIDElement, error) {
	out := make([]model.CustomIDElement, 0, len(elements))
	for i, e := range elements {
		t, ok := model.ParseElementType(string(e.Type))
		if !ok {
			return nil, fmt.Errorf("%w: element %d has unknown type %q", model.ErrInvalidCustomID, i, e.Type)
		}
		e.Type = t
		if e.ID == "" {
			e.ID = uid.New()
		}
		out = append(out, e)
	}
	model.SortElements(out)
	return out, nil
}

// UpdateConfiguration replaces the element list as a whole.
func (s *CustomIDService) UpdateConfiguration(ctx context.Context, inventoryID, expectedVersion int64, elements []model.CustomIDElement) (*CustomIDConfiguration, error) {
	normalized, err := NormalizeElements(elements)
	if err != nil {
		return nil, err
	}

	inv, err := s.repo.GetInventory(ctx, inventoryID)
	if err != nil {
		return nil, err
	}

	raw, err := model.SerializeCustomIDElements(normalized)
	if err != nil {
		return nil, err
	}

	version, err := s.repo.UpdateCustomIDElements(ctx, inventoryID, raw, expectedVersion)
	if err != nil {
		if errors.Is(err, model.ErrConcurrencyConflict) {
			metrics.ConcurrencyConflicts.WithLabelValues(metrics.OperationCustomID).Inc()
		}
		return nil, err
	}

	inv.CustomIDElements = raw
	inv.Version = version
	s.logger.Info("custom id configuration updated",
		zap.Int64("inventory_id", inventoryID), zap.Int("elements", len(normalized)), zap.Int64("version", version))
	return s.configuration(inv, normalized), nil
}

// NextSequenceNumber is the 1-based position the next item will take.
func (s *CustomIDService) NextSequenceNumber(ctx context.Context, inventoryID int64) (int, error) {
	count, err := s.repo.CountItems(ctx, inventoryID)
	if err != nil {
		return 0, err
	}
	return count + 1, nil
}

// generate picks advanced, legacy or bare-sequence generation for inv.
func (s *CustomIDService) generate(inv *model.Inventory, elements []model.CustomIDElement, itemNumber int) (string, string) {
	switch {
	case len(elements) > 0:
		return s.generator.GenerateAdvanced(elements, itemNumber), metrics.ModeAdvanced
	case inv.CustomIDFormat != "":
		return s.generator.GenerateSimple(inv.CustomIDFormat, itemNumber), metrics.ModeSimple
	}
	return s.generator.GenerateAdvanced(nil, itemNumber), metrics.ModeFallback
}

// GenerateUniqueCustomID produces an id not yet used in the inventory.
func (s *CustomIDService) GenerateUniqueCustomID(ctx context.Context, inventoryID int64) (string, error) {
	inv, err := s.repo.GetInventory(ctx, inventoryID)
	if err != nil {
		return "", err
	}
	return s.generateUnique(ctx, inv)
}

// generateUnique tries sequence, sequence+1, ... and finally appends a
// nanosecond timestamp to the last candidate.
func (s *CustomIDService) generateUnique(ctx context.Context, inv *model.Inventory) (string, error) {
	next, err := s.NextSequenceNumber(ctx, inv.ID)
	if err != nil {
		return "", err
	}
	elements := s.Elements(inv)

	var candidate, mode string
	for attempt := 0; attempt < s.maxAttempts; attempt++ {
		candidate, mode = s.generate(inv, elements, next+attempt)
		unique, err := s.repo.IsCustomIDUnique(ctx, inv.ID, candidate)
		if err != nil {
			return "", fmt.Errorf("failed to check custom id uniqueness: %w", err)
		}
		if unique {
			metrics.CustomIDsGenerated.WithLabelValues(mode).Inc()
			return candidate, nil
		}
	}

	candidate = fmt.Sprintf("%s_%d", candidate, s.now().UnixNano())
	s.logger.Warn("custom id attempts exhausted, appending timestamp",
		zap.Int64("inventory_id", inv.ID), zap.Int("attempts", s.maxAttempts), zap.String("custom_id", candidate))
	metrics.CustomIDsGenerated.WithLabelValues(mode).Inc()
	return candidate, nil
}

// Preview renders an example id for elements without saving them. A nil
// list previews the stored configuration.
func (s *CustomIDService) Preview(ctx context.Context, inventoryID int64, elements []model.CustomIDElement) (string, error) {
	inv, err := s.repo.GetInventory(ctx, inventoryID)
	if err != nil {
		return "", err
	}
	next, err := s.NextSequenceNumber(ctx, inventoryID)
	if err != nil {
		return "", err
	}

	if elements != nil {
		normalized, err := NormalizeElements(elements)
		if err != nil {
			return "", err
		}
		return s.generator.GenerateAdvanced(normalized, next), nil
	}

	if stored := s.Elements(inv); len(stored) > 0 {
		return s.generator.GenerateAdvanced(stored, next), nil
	}
	if inv.CustomIDFormat != "" {
		return s.generator.GenerateSimple(inv.CustomIDFormat, next), nil
	}
	return fmt.Sprintf("ITEM-%d", next), nil
}

// Validate checks customID against the inventory's stored elements and
// against the ids already in use.
func (s *CustomIDService) Validate(ctx context.Context, inventoryID int64, customID string) (*CustomIDValidation, error) {
	inv, err := s.repo.GetInventory(ctx, inventoryID)
	if err != nil {
		return nil, err
	}
	elements := s.Elements(inv)

	result := &CustomIDValidation{
		CustomID: customID,
		Valid:    ValidateCustomIDFormat(customID, elements),
		Example:  FormatExample(elements),
	}
	if !result.Valid {
		result.Message = ValidationMessage(customID, elements)
		return result, nil
	}

	result.Unique, err = s.repo.IsCustomIDUnique(ctx, inventoryID, customID)
	if err != nil {
		return nil, fmt.Errorf("failed to check custom id uniqueness: %w", err)
	}
	if !result.Unique {
		result.Message = fmt.Sprintf("Custom ID '%s' is already used in this inventory.", customID)
	}
	return result, nil
}
