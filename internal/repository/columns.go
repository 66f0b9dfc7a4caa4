package repository

import (
	"database/sql"
	"fmt"

	"inventory-catalog-api/internal/model"

	"github.com/shopspring/decimal"
)

// The 15 custom field slots are stored as flattened column groups, e.g.
// numeric_field2_name, numeric_field2_min_value, numeric_field2_value.
// This file is the only place that knows the layout.

const (
	inventoriesTable = "inventories"
	itemsTable       = "items"
)

var categoryColumnPrefixes = map[model.Category]string{
	model.CategoryText:          "text_field",
	model.CategoryMultilineText: "multi_text_field",
	model.CategoryNumeric:       "numeric_field",
	model.CategoryDocument:      "document_field",
	model.CategoryBoolean:       "boolean_field",
}

// inventory columns other than the slot groups, in select order
var inventoryBaseColumns = []string{
	"id", "title", "description", "category_name", "is_public",
	"custom_id_format", "custom_id_elements", "api_token",
	"version", "created_at", "updated_at",
}

var itemBaseColumns = []string{
	"id", "inventory_id", "custom_id", "created_at", "updated_at",
}

func slotColumnPrefix(key model.SlotKey) string {
	return fmt.Sprintf("%s%d", categoryColumnPrefixes[key.Category], key.Index)
}

// slotColumnNames lists the configuration columns of one slot.
func slotColumnNames(key model.SlotKey) []string {
	p := slotColumnPrefix(key)
	cols := []string{p + "_name", p + "_description", p + "_show_in_table"}
	if key.Category == model.CategoryNumeric {
		cols = append(cols,
			p+"_is_integer", p+"_min_value", p+"_max_value", p+"_step_value", p+"_display_format")
	}
	return cols
}

// schemaColumns lists every slot configuration column in canonical slot order.
func schemaColumns() []string {
	var cols []string
	for _, key := range model.AllSlotKeys() {
		cols = append(cols, slotColumnNames(key)...)
	}
	return cols
}

// itemValueColumns lists the 15 item value columns in canonical slot order.
func itemValueColumns() []string {
	cols := make([]string, 0, model.SlotCount)
	for _, key := range model.AllSlotKeys() {
		cols = append(cols, slotColumnPrefix(key)+"_value")
	}
	return cols
}

// slotRecord is the flattened form of one slot's configuration.
type slotRecord struct {
	Name          *string
	Description   *string
	ShowInTable   bool
	IsInteger     bool
	MinValue      *decimal.Decimal
	MaxValue      *decimal.Decimal
	StepValue     *decimal.Decimal
	DisplayFormat *string
}

// flattenSchema produces column values aligned with schemaColumns().
// Decimals are passed as strings so every backend stores them losslessly.
func flattenSchema(s *model.Schema) []any {
	var values []any
	for _, d := range s.Slots() {
		values = append(values, nullableString(d.Name), nullableString(d.Description), d.ShowInTable)
		if d.Key.Category != model.CategoryNumeric {
			continue
		}
		cfg := model.DefaultNumericConfig()
		if d.NumericConfig != nil {
			cfg = *d.NumericConfig
		}
		values = append(values,
			cfg.IsInteger,
			decimalArg(cfg.MinValue),
			decimalArg(cfg.MaxValue),
			cfg.StepValue.String(),
			nullableString(cfg.DisplayFormat),
		)
	}
	return values
}

// unflattenSchema rebuilds a schema from per-slot records in canonical order.
func unflattenSchema(records []slotRecord) (model.Schema, error) {
	schema := model.NewSchema()
	keys := model.AllSlotKeys()
	if len(records) != len(keys) {
		return schema, fmt.Errorf("expected %d slot records, got %d", len(keys), len(records))
	}
	for i, key := range keys {
		r := records[i]
		d := model.FieldDescriptor{
			Key:         key,
			Name:        deref(r.Name),
			Description: deref(r.Description),
			ShowInTable: r.ShowInTable,
		}
		if key.Category == model.CategoryNumeric {
			cfg := model.DefaultNumericConfig()
			cfg.IsInteger = r.IsInteger
			cfg.MinValue = r.MinValue
			cfg.MaxValue = r.MaxValue
			if r.StepValue != nil {
				cfg.StepValue = *r.StepValue
			}
			cfg.DisplayFormat = deref(r.DisplayFormat)
			d.NumericConfig = &cfg
		}
		if err := schema.SetSlot(d); err != nil {
			return schema, err
		}
	}
	return schema, nil
}

// schemaScanner holds typed scan targets for the slot columns of one row.
type schemaScanner struct {
	name, description [model.SlotCount]sql.NullString
	showInTable       [model.SlotCount]sql.NullBool

	isInteger     [model.SlotsPerCategory]sql.NullBool
	minValue      [model.SlotsPerCategory]decimal.NullDecimal
	maxValue      [model.SlotsPerCategory]decimal.NullDecimal
	stepValue     [model.SlotsPerCategory]decimal.NullDecimal
	displayFormat [model.SlotsPerCategory]sql.NullString
}

// targets returns scan destinations aligned with schemaColumns().
func (s *schemaScanner) targets() []any {
	var dest []any
	for i, key := range model.AllSlotKeys() {
		dest = append(dest, &s.name[i], &s.description[i], &s.showInTable[i])
		if key.Category == model.CategoryNumeric {
			n := key.Index - 1
			dest = append(dest, &s.isInteger[n], &s.minValue[n], &s.maxValue[n], &s.stepValue[n], &s.displayFormat[n])
		}
	}
	return dest
}

func (s *schemaScanner) records() []slotRecord {
	records := make([]slotRecord, 0, model.SlotCount)
	for i, key := range model.AllSlotKeys() {
		r := slotRecord{
			Name:        fromNullString(s.name[i]),
			Description: fromNullString(s.description[i]),
			ShowInTable: s.showInTable[i].Valid && s.showInTable[i].Bool,
		}
		if key.Category == model.CategoryNumeric {
			n := key.Index - 1
			r.IsInteger = s.isInteger[n].Valid && s.isInteger[n].Bool
			r.MinValue = fromNullDecimal(s.minValue[n])
			r.MaxValue = fromNullDecimal(s.maxValue[n])
			r.StepValue = fromNullDecimal(s.stepValue[n])
			r.DisplayFormat = fromNullString(s.displayFormat[n])
		}
		records = append(records, r)
	}
	return records
}

// flattenItemValues produces column values aligned with itemValueColumns().
func flattenItemValues(v *model.ItemValues) []any {
	values := make([]any, 0, model.SlotCount)
	for _, key := range model.AllSlotKeys() {
		switch raw := v.Value(key).(type) {
		case nil:
			values = append(values, nil)
		case decimal.Decimal:
			values = append(values, raw.String())
		default:
			values = append(values, raw)
		}
	}
	return values
}

// itemScanner holds typed scan targets for the 15 value columns of one item row.
type itemScanner struct {
	strings  [model.SlotCount]sql.NullString
	decimals [model.SlotsPerCategory]decimal.NullDecimal
	bools    [model.SlotsPerCategory]sql.NullBool
}

// targets returns scan destinations aligned with itemValueColumns().
func (s *itemScanner) targets() []any {
	dest := make([]any, 0, model.SlotCount)
	for i, key := range model.AllSlotKeys() {
		switch key.Category {
		case model.CategoryNumeric:
			dest = append(dest, &s.decimals[key.Index-1])
		case model.CategoryBoolean:
			dest = append(dest, &s.bools[key.Index-1])
		default:
			dest = append(dest, &s.strings[i])
		}
	}
	return dest
}

func (s *itemScanner) values() model.ItemValues {
	var v model.ItemValues
	for i, key := range model.AllSlotKeys() {
		n := key.Index - 1
		switch key.Category {
		case model.CategoryText:
			v.Text[n] = fromNullString(s.strings[i])
		case model.CategoryMultilineText:
			v.MultiText[n] = fromNullString(s.strings[i])
		case model.CategoryDocument:
			v.Document[n] = fromNullString(s.strings[i])
		case model.CategoryNumeric:
			v.Numeric[n] = fromNullDecimal(s.decimals[n])
		case model.CategoryBoolean:
			if s.bools[n].Valid {
				b := s.bools[n].Bool
				v.Boolean[n] = &b
			}
		}
	}
	return v
}

func nullableString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func decimalArg(d *decimal.Decimal) any {
	if d == nil {
		return nil
	}
	return d.String()
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func fromNullString(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}

func fromNullDecimal(nd decimal.NullDecimal) *decimal.Decimal {
	if !nd.Valid {
		return nil
	}
	d := nd.Decimal
	return &d
}

// columnLookup returns a stored column value as nil, string or bool.
// Document stores use it to rebuild rows without typed scan targets.
type columnLookup func(col string) any

// slotRecordsFromLookup is the document-store counterpart of schemaScanner.
func slotRecordsFromLookup(get columnLookup) ([]slotRecord, error) {
	records := make([]slotRecord, 0, model.SlotCount)
	for _, key := range model.AllSlotKeys() {
		cols := slotColumnNames(key)
		r := slotRecord{
			Name:        lookupString(get, cols[0]),
			Description: lookupString(get, cols[1]),
			ShowInTable: lookupBool(get, cols[2]),
		}
		if key.Category == model.CategoryNumeric {
			var err error
			r.IsInteger = lookupBool(get, cols[3])
			if r.MinValue, err = lookupDecimal(get, cols[4]); err != nil {
				return nil, err
			}
			if r.MaxValue, err = lookupDecimal(get, cols[5]); err != nil {
				return nil, err
			}
			if r.StepValue, err = lookupDecimal(get, cols[6]); err != nil {
				return nil, err
			}
			r.DisplayFormat = lookupString(get, cols[7])
		}
		records = append(records, r)
	}
	return records, nil
}

// itemValuesFromLookup is the document-store counterpart of itemScanner.
func itemValuesFromLookup(get columnLookup) (model.ItemValues, error) {
	var v model.ItemValues
	cols := itemValueColumns()
	for i, key := range model.AllSlotKeys() {
		if err := v.Set(key, get(cols[i])); err != nil {
			return v, err
		}
	}
	return v, nil
}

func lookupString(get columnLookup, col string) *string {
	if s, ok := get(col).(string); ok {
		return &s
	}
	return nil
}

func lookupBool(get columnLookup, col string) bool {
	b, _ := get(col).(bool)
	return b
}

func lookupDecimal(get columnLookup, col string) (*decimal.Decimal, error) {
	s, ok := get(col).(string)
	if !ok || s == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return nil, fmt.Errorf("column %s: %w", col, err)
	}
	return &d, nil
}
