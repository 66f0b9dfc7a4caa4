package model

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Category is the value type of a custom field slot.
// The declaration order is the canonical slot order used for display,
// export and aggregation.
type Category int

const (
	CategoryText Category = iota
	CategoryMultilineText
	CategoryNumeric
	CategoryDocument
	CategoryBoolean
)

const (
	// SlotsPerCategory is the number of slots each category provides.
	SlotsPerCategory = 3

	categoryCount = 5

	// SlotCount is the total number of custom field slots per inventory.
	SlotCount = categoryCount * SlotsPerCategory
)

// DefaultStepValue is the numeric step applied when none is configured.
var DefaultStepValue = decimal.New(1, -2)

var categoryNames = [categoryCount]string{
	CategoryText:          "text",
	CategoryMultilineText: "multiline",
	CategoryNumeric:       "numeric",
	CategoryDocument:      "document",
	CategoryBoolean:       "boolean",
}

// slot key prefixes as used by the web forms ("text-field-1", ...)
var categoryKeyPrefixes = [categoryCount]string{
	CategoryText:          "text",
	CategoryMultilineText: "multitext",
	CategoryNumeric:       "numeric",
	CategoryDocument:      "document",
	CategoryBoolean:       "boolean",
}

// Valid reports whether c is one of the five known categories.
func (c Category) Valid() bool {
	return c >= CategoryText && c <= CategoryBoolean
}

// String returns the export name of the category ("text", "multiline", ...).
func (c Category) String() string {
	if !c.Valid() {
		return "unknown"
	}
	return categoryNames[c]
}

// ParseCategory resolves an export name back to a Category.
func ParseCategory(s string) (Category, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	for i, name := range categoryNames {
		if name == s {
			return Category(i), true
		}
	}
	if s == "multitext" {
		return CategoryMultilineText, true
	}
	return 0, false
}

// SlotKey identifies one of the 15 fixed slots.
type SlotKey struct {
	Category Category
	Index    int // 1..3
}

// Valid reports whether the key addresses an existing slot.
func (k SlotKey) Valid() bool {
	return k.Category.Valid() && k.Index >= 1 && k.Index <= SlotsPerCategory
}

// position is the slot's offset in canonical order.
func (k SlotKey) position() int {
	return int(k.Category)*SlotsPerCategory + k.Index - 1
}

// String renders the key in form-id style, e.g. "numeric-field-2".
func (k SlotKey) String() string {
	if !k.Valid() {
		return "invalid-field"
	}
	return fmt.Sprintf("%s-field-%d", categoryKeyPrefixes[k.Category], k.Index)
}

// MarshalText implements encoding.TextMarshaler.
func (k SlotKey) MarshalText() ([]byte, error) {
	if !k.Valid() {
		return nil, fmt.Errorf("%w: invalid slot key", ErrInvalidFieldConfiguration)
	}
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *SlotKey) UnmarshalText(b []byte) error {
	parsed, err := ParseSlotKey(string(b))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// ParseSlotKey parses "text-field-1" style identifiers.
func ParseSlotKey(s string) (SlotKey, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	prefix, num, ok := strings.Cut(s, "-field-")
	if !ok {
		return SlotKey{}, fmt.Errorf("%w: unknown slot %q", ErrInvalidFieldConfiguration, s)
	}
	idx, err := strconv.Atoi(num)
	if err != nil {
		return SlotKey{}, fmt.Errorf("%w: unknown slot %q", ErrInvalidFieldConfiguration, s)
	}
	for i, p := range categoryKeyPrefixes {
		if p == prefix {
			key := SlotKey{Category: Category(i), Index: idx}
			if !key.Valid() {
				break
			}
			return key, nil
		}
	}
	return SlotKey{}, fmt.Errorf("%w: unknown slot %q", ErrInvalidFieldConfiguration, s)
}

// AllSlotKeys returns every slot key in canonical order.
func AllSlotKeys() []SlotKey {
	keys := make([]SlotKey, 0, SlotCount)
	for c := CategoryText; c <= CategoryBoolean; c++ {
		for i := 1; i <= SlotsPerCategory; i++ {
			keys = append(keys, SlotKey{Category: c, Index: i})
		}
	}
	return keys
}

// NumericConfig holds the extra metadata numeric slots carry.
type NumericConfig struct {
	IsInteger     bool             `json:"isInteger"`
	MinValue      *decimal.Decimal `json:"minValue"`
	MaxValue      *decimal.Decimal `json:"maxValue"`
	StepValue     decimal.Decimal  `json:"stepValue"`
	DisplayFormat string           `json:"displayFormat"`
}

// DefaultNumericConfig returns the configuration of a freshly created numeric slot.
func DefaultNumericConfig() NumericConfig {
	return NumericConfig{StepValue: DefaultStepValue}
}

// DecimalPlaces derives the display precision from the integer flag and step.
func (n NumericConfig) DecimalPlaces() int {
	if n.IsInteger {
		return 0
	}
	if exp := n.StepValue.Exponent(); exp < 0 {
		return int(-exp)
	}
	return 0
}

// Check validates value against the integer flag and range bounds.
func (n NumericConfig) Check(value decimal.Decimal) error {
	if n.IsInteger && !value.IsInteger() {
		return fmt.Errorf("%w: %s is not an integer", ErrInvalidItemValue, value)
	}
	if n.MinValue != nil && value.LessThan(*n.MinValue) {
		return fmt.Errorf("%w: %s is below minimum %s", ErrInvalidItemValue, value, n.MinValue)
	}
	if n.MaxValue != nil && value.GreaterThan(*n.MaxValue) {
		return fmt.Errorf("%w: %s is above maximum %s", ErrInvalidItemValue, value, n.MaxValue)
	}
	return nil
}

func (n NumericConfig) clone() *NumericConfig {
	out := n
	if n.MinValue != nil {
		v := *n.MinValue
		out.MinValue = &v
	}
	if n.MaxValue != nil {
		v := *n.MaxValue
		out.MaxValue = &v
	}
	return &out
}

// FieldDescriptor describes one slot's configuration.
type FieldDescriptor struct {
	Key           SlotKey        `json:"id"`
	Name          string         `json:"name"`
	Description   string         `json:"description"`
	ShowInTable   bool           `json:"showInTable"`
	NumericConfig *NumericConfig `json:"numericConfig,omitempty"`
}

// Category is a shorthand for d.Key.Category.
func (d FieldDescriptor) Category() Category {
	return d.Key.Category
}

// Configured reports whether the slot has a non-blank name.
func (d FieldDescriptor) Configured() bool {
	return strings.TrimSpace(d.Name) != ""
}

func (d FieldDescriptor) clone() FieldDescriptor {
	out := d
	if d.NumericConfig != nil {
		out.NumericConfig = d.NumericConfig.clone()
	}
	return out
}

// Schema is the normalized in-memory form of an inventory's 15 custom field slots.
// The zero value has every slot unconfigured.
type Schema struct {
	slots [SlotCount]FieldDescriptor
}

// NewSchema returns a schema with every slot unconfigured.
func NewSchema() Schema {
	var s Schema
	s.reset()
	return s
}

func (s *Schema) reset() {
	for _, key := range AllSlotKeys() {
		s.slots[key.position()] = emptySlot(key)
	}
}

func emptySlot(key SlotKey) FieldDescriptor {
	d := FieldDescriptor{Key: key}
	if key.Category == CategoryNumeric {
		cfg := DefaultNumericConfig()
		d.NumericConfig = &cfg
	}
	return d
}

// Slot returns a copy of the slot at key. ok is false for invalid keys.
func (s *Schema) Slot(key SlotKey) (FieldDescriptor, bool) {
	if !key.Valid() {
		return FieldDescriptor{}, false
	}
	d := s.slots[key.position()]
	d.Key = key
	return d.clone(), true
}

// SetSlot stores d at d.Key without touching any other slot. It is meant for
// storage adapters rebuilding a schema from flattened columns.
func (s *Schema) SetSlot(d FieldDescriptor) error {
	if !d.Key.Valid() {
		return fmt.Errorf("%w: invalid slot key", ErrInvalidFieldConfiguration)
	}
	s.slots[d.Key.position()] = normalizeSlot(d)
	return nil
}

// Slots returns all 15 slots in canonical order, configured or not.
func (s *Schema) Slots() []FieldDescriptor {
	out := make([]FieldDescriptor, 0, SlotCount)
	for _, key := range AllSlotKeys() {
		d, _ := s.Slot(key)
		out = append(out, d)
	}
	return out
}

// ConfiguredFields lists the slots with a non-blank name, in canonical order.
func (s *Schema) ConfiguredFields() []FieldDescriptor {
	out := make([]FieldDescriptor, 0, SlotCount)
	for _, d := range s.Slots() {
		if d.Configured() {
			out = append(out, d)
		}
	}
	return out
}

// Replace rebuilds the whole configuration from fields. Slots absent from
// fields become unconfigured. On error the schema is left untouched.
func (s *Schema) Replace(fields []FieldDescriptor) error {
	next := NewSchema()
	seen := make(map[SlotKey]bool, len(fields))
	for _, f := range fields {
		if !f.Key.Valid() {
			return fmt.Errorf("%w: invalid slot key", ErrInvalidFieldConfiguration)
		}
		if seen[f.Key] {
			return fmt.Errorf("%w: slot %s listed twice", ErrInvalidFieldConfiguration, f.Key)
		}
		seen[f.Key] = true
		if cfg := f.NumericConfig; cfg != nil && f.Key.Category == CategoryNumeric {
			if cfg.MinValue != nil && cfg.MaxValue != nil && cfg.MinValue.GreaterThan(*cfg.MaxValue) {
				return fmt.Errorf("%w: slot %s has min above max", ErrInvalidFieldConfiguration, f.Key)
			}
			if cfg.StepValue.IsNegative() {
				return fmt.Errorf("%w: slot %s has a negative step", ErrInvalidFieldConfiguration, f.Key)
			}
		}
		next.slots[f.Key.position()] = normalizeSlot(f)
	}
	*s = next
	return nil
}

// Clear resets every slot to unconfigured.
func (s *Schema) Clear() {
	s.reset()
}

func normalizeSlot(d FieldDescriptor) FieldDescriptor {
	d = d.clone()
	if d.Key.Category != CategoryNumeric {
		d.NumericConfig = nil
		return d
	}
	if d.NumericConfig == nil {
		cfg := DefaultNumericConfig()
		d.NumericConfig = &cfg
	} else if d.NumericConfig.StepValue.IsZero() {
		d.NumericConfig.StepValue = DefaultStepValue
	}
	return d
}
