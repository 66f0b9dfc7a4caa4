// Package export renders an inventory and its items as JSON, CSV or XLSX.
package export

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"inventory-catalog-api/internal/model"

	"github.com/shopspring/decimal"
)

// Format is an export file type.
type Format string

const (
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// CustomIDHeader is the first column of tabular exports.
const CustomIDHeader = "Custom ID"

// ParseFormat resolves a format name. An empty name means JSON.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return FormatJSON, nil
	case FormatJSON, FormatCSV, FormatXLSX:
		return f, nil
	}
	return "", fmt.Errorf("unsupported export format %q", s)
}

// ContentType is the MIME type served for f.
func (f Format) ContentType() string {
	switch f {
	case FormatCSV:
		return "text/csv; charset=utf-8"
	case FormatXLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	return "application/json"
}

// Filename builds a download name such as "inventory-7-items.csv".
func (f Format) Filename(inventoryID int64) string {
	return fmt.Sprintf("inventory-%d-items.%s", inventoryID, f)
}

// Document is the export view of one inventory.
type Document struct {
	Inventory    *model.Inventory              `json:"inventory"`
	CustomFields []model.CustomFieldDefinition `json:"customFields"`
	Items        []ItemRecord                  `json:"items"`

	fields []model.FieldDescriptor
}

// ItemRecord is one exported item. Fields is keyed by field name; when two
// fields share a name the first in slot order wins.
type ItemRecord struct {
	CustomID string         `json:"customId"`
	Fields   map[string]any `json:"fields"`

	values []any
}

// Build projects inv and items onto the configured fields of inv.
func Build(inv *model.Inventory, items []*model.Item) *Document {
	fields := inv.Schema.ConfiguredFields()
	doc := &Document{
		Inventory:    inv,
		CustomFields: make([]model.CustomFieldDefinition, 0, len(fields)),
		Items:        make([]ItemRecord, 0, len(items)),
		fields:       fields,
	}
	for _, f := range fields {
		doc.CustomFields = append(doc.CustomFields, model.NewCustomFieldDefinition(f))
	}

	for _, item := range items {
		rec := ItemRecord{
			CustomID: item.CustomID,
			Fields:   make(map[string]any, len(fields)),
			values:   make([]any, 0, len(fields)),
		}
		for _, f := range fields {
			v := item.Values.Value(f.Key)
			rec.values = append(rec.values, v)
			if _, dup := rec.Fields[f.Name]; !dup {
				rec.Fields[f.Name] = v
			}
		}
		doc.Items = append(doc.Items, rec)
	}
	return doc
}

// Header returns the tabular column names.
func (d *Document) Header() []string {
	header := make([]string, 0, len(d.fields)+1)
	header = append(header, CustomIDHeader)
	for _, f := range d.fields {
		header = append(header, f.Name)
	}
	return header
}

// Render encodes d in format f.
func Render(f Format, d *Document) ([]byte, error) {
	switch f {
	case FormatCSV:
		return CSV(d)
	case FormatXLSX:
		return XLSX(d)
	case FormatJSON:
		return JSON(d)
	}
	return nil, fmt.Errorf("unsupported export format %q", f)
}

// JSON encodes the document as indented JSON.
func JSON(d *Document) ([]byte, error) {
	data, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode json export: %w", err)
	}
	return data, nil
}

// cellText renders a slot value for text formats. Nil is empty.
func cellText(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case bool:
		return strconv.FormatBool(x)
	case decimal.Decimal:
		return x.String()
	}
	return fmt.Sprint(v)
}
