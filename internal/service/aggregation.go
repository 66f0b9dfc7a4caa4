package service

import (
	"context"
	"sort"

	"inventory-catalog-api/internal/metrics"
	"inventory-catalog-api/internal/model"
	"inventory-catalog-api/internal/repository"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// DefaultTopN is the number of text values kept per frequency table.
const DefaultTopN = 5

var (
	hundred = decimal.NewFromInt(100)
	two     = decimal.NewFromInt(2)
)

// Aggregator computes per-field statistics over an inventory's items.
// It holds no state between calls and is safe for concurrent use.
type Aggregator struct {
	topN   int
	logger *zap.Logger
}

// NewAggregator creates an aggregator keeping topN text values per field.
func NewAggregator(topN int, logger *zap.Logger) *Aggregator {
	if topN < 1 {
		topN = DefaultTopN
	}
	return &Aggregator{topN: topN, logger: logger}
}

// AggregateOrdered returns one result per aggregatable configured field, in
// the order of fields. Document fields and unknown categories are skipped.
func (a *Aggregator) AggregateOrdered(fields []model.FieldDescriptor, items []*model.Item) []model.FieldAggregationResult {
	results := make([]model.FieldAggregationResult, 0, len(fields))
	for _, f := range fields {
		if !f.Configured() {
			continue
		}
		result, ok := a.aggregateField(f, items)
		if !ok {
			continue
		}
		metrics.AggregationsComputed.WithLabelValues(result.FieldType).Inc()
		results = append(results, result)
	}
	return results
}

// Aggregate keys the results by field name. When two fields share a name the
// first one in slot order is kept.
func (a *Aggregator) Aggregate(fields []model.FieldDescriptor, items []*model.Item) map[string]model.FieldAggregationResult {
	out := make(map[string]model.FieldAggregationResult)
	for _, r := range a.AggregateOrdered(fields, items) {
		if _, dup := out[r.FieldName]; dup {
			continue
		}
		out[r.FieldName] = r
	}
	return out
}

func (a *Aggregator) aggregateField(f model.FieldDescriptor, items []*model.Item) (model.FieldAggregationResult, bool) {
	result := model.FieldAggregationResult{FieldName: f.Name, FieldType: f.Category().String()}
	switch f.Category() {
	case model.CategoryNumeric:
		result.NumericStats = numericStats(f.Key, items)
	case model.CategoryText, model.CategoryMultilineText:
		result.TextStats = a.textStats(f.Key, items)
	case model.CategoryBoolean:
		result.BooleanStats = booleanStats(f.Key, items)
	case model.CategoryDocument:
		return result, false
	default:
		a.logger.Debug("skipping field with unknown category", zap.String("field", f.Name))
		return result, false
	}
	return result, true
}

func numericStats(key model.SlotKey, items []*model.Item) *model.NumericStats {
	var values []decimal.Decimal
	for _, item := range items {
		if v := item.Values.Decimal(key); v != nil {
			values = append(values, *v)
		}
	}
	if len(values) == 0 {
		return &model.NumericStats{}
	}

	lo, hi, sum := values[0], values[0], decimal.Zero
	for _, v := range values {
		if v.LessThan(lo) {
			lo = v
		}
		if v.GreaterThan(hi) {
			hi = v
		}
		sum = sum.Add(v)
	}
	avg := sum.Div(decimal.NewFromInt(int64(len(values))))

	sorted := append([]decimal.Decimal(nil), values...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].LessThan(sorted[j]) })
	mid := len(sorted) / 2
	median := sorted[mid]
	if len(sorted)%2 == 0 {
		median = sorted[mid-1].Add(sorted[mid]).Div(two)
	}

	return &model.NumericStats{Min: &lo, Max: &hi, Average: &avg, Median: &median}
}

func (a *Aggregator) textStats(key model.SlotKey, items []*model.Item) *model.TextStats {
	counts := make(map[string]int)
	var order []string
	total := 0
	for _, item := range items {
		v := item.Values.String(key)
		if v == nil || *v == "" {
			continue
		}
		if _, seen := counts[*v]; !seen {
			order = append(order, *v)
		}
		counts[*v]++
		total++
	}

	// order holds first-seen positions, so a stable sort keeps them for ties
	sort.SliceStable(order, func(i, j int) bool { return counts[order[i]] > counts[order[j]] })
	if len(order) > a.topN {
		order = order[:a.topN]
	}

	top := make([]model.TextValueFrequency, 0, len(order))
	for _, v := range order {
		top = append(top, model.TextValueFrequency{
			Value:      v,
			Frequency:  counts[v],
			Percentage: percentage(counts[v], total),
		})
	}
	return &model.TextStats{MostCommonValues: top}
}

func booleanStats(key model.SlotKey, items []*model.Item) *model.BooleanStats {
	stats := &model.BooleanStats{}
	for _, item := range items {
		v := item.Values.Bool(key)
		switch {
		case v == nil:
		case *v:
			stats.TrueCount++
		default:
			stats.FalseCount++
		}
	}
	stats.TruePercentage = percentage(stats.TrueCount, stats.TrueCount+stats.FalseCount)
	return stats
}

// percentage is part/total*100 rounded half away from zero to 2 places; 0 when total is 0.
func percentage(part, total int) float64 {
	if total == 0 {
		return 0
	}
	p := decimal.NewFromInt(int64(part)).Mul(hundred).Div(decimal.NewFromInt(int64(total)))
	return p.Round(2).InexactFloat64()
}

// AggregationService builds the aggregated view served to API consumers.
type AggregationService struct {
	repo       repository.InventoryRepository
	aggregator *Aggregator
	logger     *zap.Logger
}

// NewAggregationService creates an aggregation service.
func NewAggregationService(repo repository.InventoryRepository, aggregator *Aggregator, logger *zap.Logger) *AggregationService {
	return &AggregationService{repo: repo, aggregator: aggregator, logger: logger}
}

// GetAggregatedResults loads the inventory and its items and computes the
// statistics of every configured field.
func (s *AggregationService) GetAggregatedResults(ctx context.Context, inventoryID int64) (*model.InventoryAggregatedResults, error) {
	inv, err := s.repo.GetInventory(ctx, inventoryID)
	if err != nil {
		return nil, err
	}
	items, err := s.repo.ListItems(ctx, inventoryID)
	if err != nil {
		return nil, err
	}

	fields := inv.Schema.ConfiguredFields()
	definitions := make([]model.CustomFieldDefinition, 0, len(fields))
	for _, f := range fields {
		definitions = append(definitions, model.NewCustomFieldDefinition(f))
	}

	results := s.aggregator.AggregateOrdered(fields, items)
	s.logger.Debug("aggregated inventory",
		zap.Int64("inventory_id", inventoryID), zap.Int("items", len(items)), zap.Int("fields", len(results)))

	return &model.InventoryAggregatedResults{
		InventoryID:       inv.ID,
		Title:             inv.Title,
		Description:       inv.Description,
		ItemCount:         len(items),
		CategoryName:      inv.CategoryName,
		IsPublic:          inv.IsPublic,
		CustomFields:      definitions,
		AggregatedResults: results,
	}, nil
}
