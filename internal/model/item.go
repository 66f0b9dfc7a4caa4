package model

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Item is one row in an inventory.
type Item struct {
	ID          int64      `json:"id"`
	InventoryID int64      `json:"inventoryId"`
	CustomID    string     `json:"customId"`
	Values      ItemValues `json:"-"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// ItemValues holds one item's 15 slot values. A nil pointer means no value.
// Values are bound to slots by position only.
type ItemValues struct {
	Text      [SlotsPerCategory]*string
	MultiText [SlotsPerCategory]*string
	Numeric   [SlotsPerCategory]*decimal.Decimal
	Document  [SlotsPerCategory]*string
	Boolean   [SlotsPerCategory]*bool
}

// String returns the string value of a text, multiline or document slot.
func (v *ItemValues) String(key SlotKey) *string {
	if !key.Valid() {
		return nil
	}
	switch key.Category {
	case CategoryText:
		return v.Text[key.Index-1]
	case CategoryMultilineText:
		return v.MultiText[key.Index-1]
	case CategoryDocument:
		return v.Document[key.Index-1]
	}
	return nil
}

// Decimal returns the value of a numeric slot.
func (v *ItemValues) Decimal(key SlotKey) *decimal.Decimal {
	if !key.Valid() || key.Category != CategoryNumeric {
		return nil
	}
	return v.Numeric[key.Index-1]
}

// Bool returns the value of a boolean slot.
func (v *ItemValues) Bool(key SlotKey) *bool {
	if !key.Valid() || key.Category != CategoryBoolean {
		return nil
	}
	return v.Boolean[key.Index-1]
}

// Value returns the slot value as string, decimal.Decimal or bool, or nil when absent.
func (v *ItemValues) Value(key SlotKey) any {
	switch key.Category {
	case CategoryNumeric:
		if d := v.Decimal(key); d != nil {
			return *d
		}
	case CategoryBoolean:
		if b := v.Bool(key); b != nil {
			return *b
		}
	default:
		if s := v.String(key); s != nil {
			return *s
		}
	}
	return nil
}

// Set assigns a raw value to a slot, coercing it to the slot's type.
// A nil value clears the slot. Strings are accepted for numeric and boolean
// slots so form and CSV input can be passed through unchanged.
func (v *ItemValues) Set(key SlotKey, raw any) error {
	if !key.Valid() {
		return fmt.Errorf("%w: invalid slot key", ErrInvalidFieldConfiguration)
	}
	i := key.Index - 1
	switch key.Category {
	case CategoryNumeric:
		d, err := toDecimal(raw)
		if err != nil {
			return fmt.Errorf("%w: %s: %v", ErrInvalidItemValue, key, err)
		}
		v.Numeric[i] = d
	case CategoryBoolean:
		b, err := toBool(raw)
		if err != nil {
			return fmt.Errorf("%w: %s: %v", ErrInvalidItemValue, key, err)
		}
		v.Boolean[i] = b
	default:
		s, err := toString(raw)
		if err != nil {
			return fmt.Errorf("%w: %s: %v", ErrInvalidItemValue, key, err)
		}
		switch key.Category {
		case CategoryText:
			v.Text[i] = s
		case CategoryMultilineText:
			v.MultiText[i] = s
		case CategoryDocument:
			v.Document[i] = s
		}
	}
	return nil
}

func toString(raw any) (*string, error) {
	switch x := raw.(type) {
	case nil:
		return nil, nil
	case string:
		return &x, nil
	case *string:
		return x, nil
	}
	return nil, fmt.Errorf("expected string, got %T", raw)
}

func toDecimal(raw any) (*decimal.Decimal, error) {
	var d decimal.Decimal
	switch x := raw.(type) {
	case nil:
		return nil, nil
	case decimal.Decimal:
		d = x
	case *decimal.Decimal:
		return x, nil
	case float64:
		d = decimal.NewFromFloat(x)
	case int:
		d = decimal.NewFromInt(int64(x))
	case int64:
		d = decimal.NewFromInt(x)
	case json.Number:
		parsed, err := decimal.NewFromString(x.String())
		if err != nil {
			return nil, err
		}
		d = parsed
	case string:
		if strings.TrimSpace(x) == "" {
			return nil, nil
		}
		parsed, err := decimal.NewFromString(strings.TrimSpace(x))
		if err != nil {
			return nil, err
		}
		d = parsed
	default:
		return nil, fmt.Errorf("expected number, got %T", raw)
	}
	return &d, nil
}

func toBool(raw any) (*bool, error) {
	var b bool
	switch x := raw.(type) {
	case nil:
		return nil, nil
	case bool:
		b = x
	case *bool:
		return x, nil
	case string:
		switch strings.ToLower(strings.TrimSpace(x)) {
		case "":
			return nil, nil
		case "true", "1", "yes", "on":
			b = true
		case "false", "0", "no", "off":
			b = false
		default:
			return nil, fmt.Errorf("expected boolean, got %q", x)
		}
	default:
		return nil, fmt.Errorf("expected boolean, got %T", raw)
	}
	return &b, nil
}
