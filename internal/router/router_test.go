package router

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"inventory-catalog-api/internal/cache"
	"inventory-catalog-api/internal/handler"
	"inventory-catalog-api/internal/middleware"
	"inventory-catalog-api/internal/repository"
	"inventory-catalog-api/internal/service"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const loginKey = "test-login-key"

type testServer struct {
	t       *testing.T
	handler http.Handler
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	decimal.MarshalJSONWithoutQuotes = true
	t.Cleanup(func() { decimal.MarshalJSONWithoutQuotes = false })

	log := zap.NewNop()
	repo, err := repository.NewSQLiteInventoryRepository(":memory:", log)
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })

	tokenCache := cache.NewMemoryCache(time.Minute)
	t.Cleanup(func() { tokenCache.Close() })

	inventories := service.NewInventoryService(repo, log)
	fields := service.NewCustomFieldService(repo, log)
	customIDs := service.NewCustomIDService(repo, service.NewCustomIDGenerator(nil, log), 10, log)
	items := service.NewItemService(repo, customIDs, log)
	aggregation := service.NewAggregationService(repo, service.NewAggregator(5, log), log)
	tokens := service.NewTokenService(repo, tokenCache, time.Minute, log)

	v := handler.NewValidator()
	r := New(Config{
		Handler:          handler.New("inventory-catalog-api", "test", map[string]handler.Pinger{"database": repo}),
		AdminHandler:     handler.NewAdminHandler(inventories, tokenCache, "memory", log),
		InventoryHandler: handler.NewInventoryHandler(inventories, v, log),
		FieldHandler:     handler.NewFieldHandler(fields, inventories, v, log),
		CustomIDHandler:  handler.NewCustomIDHandler(customIDs, inventories, v, log),
		ItemHandler:      handler.NewItemHandler(items, v, log),
		TokenHandler:     handler.NewTokenHandler(tokens, log),
		APIHandler:       handler.NewAPIHandler(inventories, fields, aggregation, items, log),
		AdminAuth:        middleware.NewAdminKeyMiddleware(loginKey),
		APIAuth:          middleware.NewAPITokenMiddleware(tokens, log),
		Logger:           log,
	})
	return &testServer{t: t, handler: r}
}

func (s *testServer) do(method, path string, body any, headers map[string]string) *httptest.ResponseRecorder {
	s.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(s.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func (s *testServer) admin(method, path string, body any) *httptest.ResponseRecorder {
	s.t.Helper()
	return s.do(method, path, body, map[string]string{middleware.LoginKeyHeader: loginKey})
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Meta    *struct {
		Total int64 `json:"total"`
	} `json:"meta"`
	Error *struct {
		Code    string         `json:"code"`
		Message string         `json:"message"`
		Meta    map[string]any `json:"meta"`
	} `json:"error"`
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, data any) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	if data != nil && len(env.Data) > 0 {
		require.NoError(t, json.Unmarshal(env.Data, data))
	}
	return env
}

// createConfiguredInventory sets up two fields and an INV-000 style custom id.
func createConfiguredInventory(t *testing.T, s *testServer) int64 {
	t.Helper()
	rec := s.admin(http.MethodPost, "/api/v1/inventories", map[string]any{
		"title": "Workshop", "categoryName": "Tools", "isPublic": true,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var inv struct {
		ID      int64 `json:"id"`
		Version int64 `json:"version"`
	}
	decode(t, rec, &inv)
	require.Equal(t, int64(1), inv.Version)

	rec = s.admin(http.MethodPut, fmt.Sprintf("/api/v1/inventories/%d/fields", inv.ID), map[string]any{
		"expectedVersion": 1,
		"fields": []map[string]any{
			{"id": "text-field-1", "name": "Brand", "showInTable": true},
			{"id": "numeric-field-1", "name": "Price", "numericConfig": map[string]any{"minValue": 0, "stepValue": "0.01"}},
			{"id": "boolean-field-1", "name": "In stock"},
		},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = s.admin(http.MethodPut, fmt.Sprintf("/api/v1/inventories/%d/custom-id", inv.ID), map[string]any{
		"expectedVersion": 2,
		"elements": []map[string]any{
			{"type": "sequence", "value": "000", "order": 1},
			{"type": "fixed", "value": "INV-", "order": 0},
		},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	return inv.ID
}

func TestPublicRoutes(t *testing.T) {
	s := newTestServer(t)

	for _, path := range []string{"/api/status", "/api/v1/health", "/api/v1/ready", "/metrics"} {
		rec := s.do(http.MethodGet, path, nil, nil)
		assert.Equal(t, http.StatusOK, rec.Code, path)
	}
	assert.NotEmpty(t, s.do(http.MethodGet, "/api/v1/health", nil, nil).Header().Get(middleware.RequestIDHeader))
}

func TestManagementRequiresLoginKey(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(http.MethodGet, "/api/v1/inventories", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = s.do(http.MethodGet, "/api/v1/admin/stats", nil, map[string]string{middleware.LoginKeyHeader: "wrong"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = s.admin(http.MethodGet, "/api/v1/admin/stats", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"backend":"sqlite"`)
}

func TestInventoryLifecycle(t *testing.T) {
	s := newTestServer(t)
	id := createConfiguredInventory(t, s)

	rec := s.admin(http.MethodGet, "/api/v1/inventories", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	env := decode(t, rec, nil)
	require.NotNil(t, env.Meta)
	assert.Equal(t, int64(1), env.Meta.Total)

	rec = s.admin(http.MethodGet, fmt.Sprintf("/api/v1/inventories/%d", id), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var inv struct {
		Title            string `json:"title"`
		Version          int64  `json:"version"`
		ConfiguredFields int    `json:"configuredFields"`
		HasAPIToken      bool   `json:"hasApiToken"`
	}
	decode(t, rec, &inv)
	assert.Equal(t, "Workshop", inv.Title)
	assert.Equal(t, int64(3), inv.Version)
	assert.Equal(t, 3, inv.ConfiguredFields)
	assert.False(t, inv.HasAPIToken)

	rec = s.admin(http.MethodGet, "/api/v1/inventories/999", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = s.admin(http.MethodGet, "/api/v1/inventories/abc", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestFields_StaleVersionConflict(t *testing.T) {
	s := newTestServer(t)
	id := createConfiguredInventory(t, s)

	rec := s.admin(http.MethodPut, fmt.Sprintf("/api/v1/inventories/%d/fields", id), map[string]any{
		"expectedVersion": 1,
		"fields":          []map[string]any{{"id": "text-field-2", "name": "Model"}},
	})
	require.Equal(t, http.StatusConflict, rec.Code)
	env := decode(t, rec, nil)
	assert.Equal(t, "CONFLICT", env.Error.Code)
	assert.Equal(t, float64(3), env.Error.Meta["currentVersion"])

	rec = s.admin(http.MethodGet, fmt.Sprintf("/api/v1/inventories/%d/fields", id), nil)
	var fields struct {
		Version int64 `json:"version"`
		Fields  []struct {
			ID   string `json:"id"`
			Name string `json:"name"`
		} `json:"fields"`
		Definitions []struct {
			Type string `json:"type"`
		} `json:"definitions"`
	}
	decode(t, rec, &fields)
	assert.Equal(t, int64(3), fields.Version)
	require.Len(t, fields.Fields, 3)
	assert.Equal(t, "text-field-1", fields.Fields[0].ID)
	assert.Equal(t, "numeric", fields.Definitions[1].Type)
}

func TestFields_InvalidAndClear(t *testing.T) {
	s := newTestServer(t)
	id := createConfiguredInventory(t, s)
	path := fmt.Sprintf("/api/v1/inventories/%d/fields", id)

	rec := s.admin(http.MethodPut, path, map[string]any{
		"expectedVersion": 3,
		"fields": []map[string]any{
			{"id": "text-field-1", "name": "A"},
			{"id": "text-field-1", "name": "B"},
		},
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.admin(http.MethodDelete, path, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.admin(http.MethodDelete, path+"?expectedVersion=3", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var cleared struct {
		Version int64             `json:"version"`
		Fields  []json.RawMessage `json:"fields"`
	}
	decode(t, rec, &cleared)
	assert.Equal(t, int64(4), cleared.Version)
	assert.Empty(t, cleared.Fields)
}

func TestCustomID_PreviewAndValidate(t *testing.T) {
	s := newTestServer(t)
	id := createConfiguredInventory(t, s)
	base := fmt.Sprintf("/api/v1/inventories/%d/custom-id", id)

	rec := s.admin(http.MethodGet, base, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var cfg struct {
		Example  string `json:"example"`
		Elements []struct {
			ID   string `json:"id"`
			Type string `json:"type"`
		} `json:"elements"`
	}
	decode(t, rec, &cfg)
	assert.Equal(t, "INV-[SEQUENCE]", cfg.Example)
	require.Len(t, cfg.Elements, 2)
	assert.Equal(t, "fixed", cfg.Elements[0].Type)
	assert.Len(t, cfg.Elements[0].ID, 36)

	var preview handler.PreviewResponse
	rec = s.admin(http.MethodPost, base+"/preview", map[string]any{})
	require.Equal(t, http.StatusOK, rec.Code)
	decode(t, rec, &preview)
	assert.Equal(t, "INV-001", preview.Preview)
	assert.Equal(t, "INV-[SEQUENCE]", preview.Format)

	rec = s.admin(http.MethodPost, base+"/preview", map[string]any{
		"elements": []map[string]any{{"type": "fixed", "value": "X"}, {"type": "sequence", "value": "D5", "order": 1}},
	})
	decode(t, rec, &preview)
	assert.Equal(t, "X00001", preview.Preview)

	var result service.CustomIDValidation
	rec = s.admin(http.MethodPost, base+"/validate", map[string]any{"customId": "INV-042"})
	decode(t, rec, &result)
	assert.True(t, result.Valid)
	assert.True(t, result.Unique)

	rec = s.admin(http.MethodPost, base+"/validate", map[string]any{"customId": "ABC"})
	decode(t, rec, &result)
	assert.False(t, result.Valid)
	assert.Contains(t, result.Message, "Example: INV-[SEQUENCE]")

	rec = s.admin(http.MethodPut, base, map[string]any{
		"expectedVersion": 3,
		"elements":        []map[string]any{{"type": "barcode"}},
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestItems(t *testing.T) {
	s := newTestServer(t)
	id := createConfiguredInventory(t, s)
	path := fmt.Sprintf("/api/v1/inventories/%d/items", id)

	rec := s.admin(http.MethodPost, path, map[string]any{
		"values": map[string]any{"text-field-1": "Bosch", "numeric-field-1": 12.5, "boolean-field-1": true},
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var item handler.ItemResponse
	decode(t, rec, &item)
	assert.Equal(t, "INV-001", item.CustomID)
	assert.Equal(t, "Bosch", item.Values["text-field-1"])
	assert.Equal(t, 12.5, item.Values["numeric-field-1"])

	rec = s.admin(http.MethodPost, path, map[string]any{"customId": "INV-001"})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = s.admin(http.MethodPost, path, map[string]any{"customId": "nope"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.admin(http.MethodPost, path, map[string]any{"values": map[string]any{"numeric-field-1": -1}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.admin(http.MethodPost, path, map[string]any{"values": map[string]any{"document-field-1": "x"}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.admin(http.MethodPost, path, map[string]any{"values": map[string]any{"photo-field-1": "x"}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.admin(http.MethodPost, path, map[string]any{"values": map[string]any{"text-field-1": "Makita"}})
	require.Equal(t, http.StatusCreated, rec.Code)
	decode(t, rec, &item)
	assert.Equal(t, "INV-002", item.CustomID)

	rec = s.admin(http.MethodGet, path, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var list []handler.ItemResponse
	env := decode(t, rec, &list)
	assert.Equal(t, int64(2), env.Meta.Total)
	require.Len(t, list, 2)
	assert.NotContains(t, list[1].Values, "numeric-field-1")
}

func TestConsumerAPI(t *testing.T) {
	s := newTestServer(t)
	id := createConfiguredInventory(t, s)
	items := fmt.Sprintf("/api/v1/inventories/%d/items", id)
	for _, v := range []map[string]any{
		{"text-field-1": "Bosch", "numeric-field-1": 10, "boolean-field-1": true},
		{"text-field-1": "Bosch", "numeric-field-1": 20, "boolean-field-1": false},
		{"text-field-1": "Makita", "numeric-field-1": 33, "boolean-field-1": true},
	} {
		require.Equal(t, http.StatusCreated, s.admin(http.MethodPost, items, map[string]any{"values": v}).Code)
	}

	rec := s.do(http.MethodGet, "/api/v1/inventory/aggregated", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = s.admin(http.MethodPost, fmt.Sprintf("/api/v1/inventories/%d/token", id), nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	var tok handler.TokenResponse
	decode(t, rec, &tok)
	require.Len(t, tok.Token, len(service.TokenPrefix)+64)

	rec = s.do(http.MethodGet, "/api/v1/inventory/info?token="+tok.Token, nil, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var info handler.InfoResponse
	decode(t, rec, &info)
	assert.Equal(t, id, info.InventoryID)
	assert.Equal(t, 3, info.ItemCount)
	assert.Len(t, info.CustomFields, 3)

	rec = s.do(http.MethodGet, "/api/v1/inventory/aggregated", nil, map[string]string{middleware.APITokenHeader: tok.Token})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var agg struct {
		ItemCount         int `json:"itemCount"`
		AggregatedResults []struct {
			FieldName        string   `json:"fieldName"`
			FieldType        string   `json:"fieldType"`
			Min              *float64 `json:"min"`
			Median           *float64 `json:"median"`
			MostCommonValues []struct {
				Value      string  `json:"value"`
				Frequency  int     `json:"frequency"`
				Percentage float64 `json:"percentage"`
			} `json:"mostCommonValues"`
			TrueCount      int     `json:"trueCount"`
			TruePercentage float64 `json:"truePercentage"`
		} `json:"aggregatedResults"`
	}
	decode(t, rec, &agg)
	assert.Equal(t, 3, agg.ItemCount)
	require.Len(t, agg.AggregatedResults, 3)

	text, numeric, boolean := agg.AggregatedResults[0], agg.AggregatedResults[1], agg.AggregatedResults[2]
	assert.Equal(t, "text", text.FieldType)
	require.Len(t, text.MostCommonValues, 2)
	assert.Equal(t, "Bosch", text.MostCommonValues[0].Value)
	assert.Equal(t, 66.67, text.MostCommonValues[0].Percentage)
	assert.Equal(t, "numeric", numeric.FieldType)
	assert.Equal(t, 10.0, *numeric.Min)
	assert.Equal(t, 20.0, *numeric.Median)
	assert.Equal(t, "boolean", boolean.FieldType)
	assert.Equal(t, 2, boolean.TrueCount)
	assert.Equal(t, 66.67, boolean.TruePercentage)

	rec = s.do(http.MethodGet, "/api/v1/inventory/export?format=csv&token="+tok.Token, nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Disposition"), fmt.Sprintf("inventory-%d-items.csv", id))
	rows, err := csv.NewReader(rec.Body).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, []string{"Custom ID", "Brand", "Price", "In stock"}, rows[0])
	assert.Equal(t, []string{"INV-002", "Bosch", "20", "false"}, rows[2])

	rec = s.do(http.MethodGet, "/api/v1/inventory/export?format=pdf&token="+tok.Token, nil, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// revoking evicts the cached token
	rec = s.admin(http.MethodDelete, fmt.Sprintf("/api/v1/inventories/%d/token", id), nil)
	require.Equal(t, http.StatusNoContent, rec.Code)
	rec = s.do(http.MethodGet, "/api/v1/inventory/info?token="+tok.Token, nil, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
