package handlers

import (
	"context"
	"net/http"
	"runtime"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/pocketbase/pocketbase/core"
)

var startedAt = time.Now()

type healthReport struct {
	Status      string        `json:"status"`
	API         string        `json:"api"`
	APIError    string        `json:"api_error,omitempty"`
	Cache       string        `json:"cache"`
	PoolServers int           `json:"pool_servers"`
	SiteEnabled bool          `json:"site_enabled"`
	CheckedAt   string        `json:"checked_at"`
	Runtime     runtimeReport `json:"runtime"`
}

type runtimeReport struct {
	Uptime     string `json:"uptime"`
	Goroutines int    `json:"goroutines"`
	HeapAlloc  string `json:"heap_alloc"`
	Sys        string `json:"sys"`
	NumGC      uint32 `json:"num_gc"`
}

func readRuntime() runtimeReport {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	return runtimeReport{
		Uptime:     time.Since(startedAt).Round(time.Second).String(),
		Goroutines: runtime.NumGoroutine(),
		HeapAlloc:  humanize.IBytes(m.HeapAlloc),
		Sys:        humanize.IBytes(m.Sys),
		NumGC:      m.NumGC,
	}
}

// health reports whether the stats backend answers. The portal itself stays
// up without it, so a down backend is "degraded" rather than an error.
func (h *Handlers) health(re *core.RequestEvent) error {
	ctx, cancel := context.WithTimeout(re.Request.Context(), 2*time.Second)
	defer cancel()

	report := healthReport{
		Status:      "ok",
		API:         "ok",
		Cache:       h.cacheName,
		SiteEnabled: h.cfg.Site.Enabled,
		CheckedAt:   time.Now().UTC().Format(time.RFC3339),
		Runtime:     readRuntime(),
	}
	if h.pool != nil {
		report.PoolServers = h.pool.Len()
	}

	if err := h.api.Ping(ctx); err != nil {
		report.Status = "degraded"
		report.API = "unreachable"
		report.APIError = err.Error()
	}

	return re.JSON(http.StatusOK, report)
}
