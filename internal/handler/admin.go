package handler

import (
	"net/http"
	"runtime"
	"time"

	"inventory-catalog-api/internal/service"
	"inventory-catalog-api/pkg/response"

	"go.uber.org/zap"
)

// Sizer is implemented by caches that can report their entry count.
type Sizer interface {
	Len() int
}

// AdminHandler handles admin-related HTTP requests.
type AdminHandler struct {
	inventories *service.InventoryService
	cache       any
	cacheType   string
	startTime   time.Time
	logger      *zap.Logger
}

// NewAdminHandler creates a new admin handler. tokenCache is inspected for
// an entry count when it implements Sizer.
func NewAdminHandler(inventories *service.InventoryService, tokenCache any, cacheType string, logger *zap.Logger) *AdminHandler {
	return &AdminHandler{
		inventories: inventories,
		cache:       tokenCache,
		cacheType:   cacheType,
		startTime:   time.Now(),
		logger:      logger,
	}
}

// GetStats handles GET /api/v1/admin/stats
func (h *AdminHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	stats := make(map[string]any)

	stats["uptime_seconds"] = int64(time.Since(h.startTime).Seconds())
	stats["uptime_human"] = time.Since(h.startTime).Round(time.Second).String()
	stats["server_time"] = time.Now().Format(time.RFC3339)

	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)
	stats["memory"] = map[string]any{
		"alloc_mb":      float64(memStats.Alloc) / 1024 / 1024,
		"sys_mb":        float64(memStats.Sys) / 1024 / 1024,
		"heap_inuse_mb": float64(memStats.HeapInuse) / 1024 / 1024,
		"num_gc":        memStats.NumGC,
		"goroutines":    runtime.NumGoroutine(),
	}

	tokenCache := map[string]any{"type": h.cacheType}
	if s, ok := h.cache.(Sizer); ok {
		tokenCache["entries"] = s.Len()
	}
	stats["token_cache"] = tokenCache

	dbStats, err := h.inventories.GetStats(r.Context())
	if err != nil {
		h.logger.Warn("failed to read storage stats", zap.Error(err))
		stats["storage"] = map[string]any{"status": "error", "error": err.Error()}
	} else {
		stats["storage"] = map[string]any{
			"status":          "connected",
			"backend":         dbStats.Backend,
			"inventory_count": dbStats.InventoryCount,
			"item_count":      dbStats.ItemCount,
			"token_count":     dbStats.TokenCount,
		}
	}

	stats["runtime"] = map[string]any{
		"go_version": runtime.Version(),
		"os":         runtime.GOOS,
		"arch":       runtime.GOARCH,
		"cpus":       runtime.NumCPU(),
	}

	response.OK(w, stats)
}
