package model

import "github.com/shopspring/decimal"

// FieldAggregationResult holds the statistics for one configured field.
// Exactly one of the embedded stat shapes is set, matching FieldType.
type FieldAggregationResult struct {
	FieldName string `json:"fieldName"`
	FieldType string `json:"fieldType"`

	*NumericStats
	*TextStats
	*BooleanStats
}

// NumericStats is the numeric stat shape. All values are nil when no item has a value.
type NumericStats struct {
	Min     *decimal.Decimal `json:"min"`
	Max     *decimal.Decimal `json:"max"`
	Average *decimal.Decimal `json:"average"`
	Median  *decimal.Decimal `json:"median"`
}

// TextStats is the text and multiline stat shape.
type TextStats struct {
	MostCommonValues []TextValueFrequency `json:"mostCommonValues"`
}

// TextValueFrequency is one row of a text frequency table.
type TextValueFrequency struct {
	Value      string  `json:"value"`
	Frequency  int     `json:"frequency"`
	Percentage float64 `json:"percentage"`
}

// BooleanStats is the boolean stat shape.
type BooleanStats struct {
	TrueCount      int     `json:"trueCount"`
	FalseCount     int     `json:"falseCount"`
	TruePercentage float64 `json:"truePercentage"`
}

// CustomFieldDefinition is the export form of a configured field.
type CustomFieldDefinition struct {
	Name          string                  `json:"name"`
	Type          string                  `json:"type"`
	Description   string                  `json:"description"`
	ShowInTable   bool                    `json:"showInTable"`
	NumericConfig *NumericFieldDefinition `json:"numericConfig,omitempty"`
}

// NumericFieldDefinition is the export form of NumericConfig.
type NumericFieldDefinition struct {
	MinValue      *decimal.Decimal `json:"minValue"`
	MaxValue      *decimal.Decimal `json:"maxValue"`
	DecimalPlaces int              `json:"decimalPlaces"`
	Step          decimal.Decimal  `json:"step"`
	IsInteger     bool             `json:"isInteger"`
	StepValue     decimal.Decimal  `json:"stepValue"`
	DisplayFormat string           `json:"displayFormat"`
}

// NewCustomFieldDefinition projects a descriptor into its export form.
func NewCustomFieldDefinition(d FieldDescriptor) CustomFieldDefinition {
	def := CustomFieldDefinition{
		Name:        d.Name,
		Type:        d.Category().String(),
		Description: d.Description,
		ShowInTable: d.ShowInTable,
	}
	if d.Category() == CategoryNumeric {
		cfg := DefaultNumericConfig()
		if d.NumericConfig != nil {
			cfg = *d.NumericConfig
		}
		def.NumericConfig = &NumericFieldDefinition{
			MinValue:      cfg.MinValue,
			MaxValue:      cfg.MaxValue,
			DecimalPlaces: cfg.DecimalPlaces(),
			Step:          cfg.StepValue,
			IsInteger:     cfg.IsInteger,
			StepValue:     cfg.StepValue,
			DisplayFormat: cfg.DisplayFormat,
		}
	}
	return def
}

// InventoryAggregatedResults is the payload served to aggregation consumers.
type InventoryAggregatedResults struct {
	InventoryID       int64                    `json:"inventoryId"`
	Title             string                   `json:"title"`
	Description       string                   `json:"description"`
	ItemCount         int                      `json:"itemCount"`
	CategoryName      string                   `json:"categoryName"`
	IsPublic          bool                     `json:"isPublic"`
	CustomFields      []CustomFieldDefinition  `json:"customFields"`
	AggregatedResults []FieldAggregationResult `json:"aggregatedResults"`
}
