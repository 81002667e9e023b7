package handlers

import (
	"context"
	"os"
	"runtime"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/product-service/internal/api/dto"
	"github.com/spec-kit/product-service/internal/config"
	"github.com/spec-kit/product-service/internal/observability"
)

const probeTimeout = 2 * time.Second

// Pinger is a dependency that can report its reachability.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler responds to liveness, readiness and detailed health requests.
type HealthHandler struct {
	app          config.AppConfig
	store        Pinger
	storeBackend string
	cache        Pinger
	metrics      *observability.Metrics
}

// HealthDependencies bundles what the health handler probes. Cache may be nil
// when caching is disabled.
type HealthDependencies struct {
	App          config.AppConfig
	Store        Pinger
	StoreBackend string
	Cache        Pinger
	Metrics      *observability.Metrics
}

// NewHealthHandler returns a new handler instance.
func NewHealthHandler(deps HealthDependencies) *HealthHandler {
	return &HealthHandler{
		app:          deps.App,
		store:        deps.Store,
		storeBackend: deps.StoreBackend,
		cache:        deps.Cache,
		metrics:      deps.Metrics,
	}
}

// Live reports service liveness.
func (h *HealthHandler) Live(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "alive",
		"service": h.app.Name,
		"version": h.app.Version,
	})
}

// Ready reports service readiness by checking dependencies. A disabled cache
// does not make the service unready.
func (h *HealthHandler) Ready(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), probeTimeout)
	defer cancel()

	depStatus := fiber.Map{}
	ready := true

	if err := h.store.Ping(ctx); err != nil {
		depStatus["database"] = err.Error()
		ready = false
	} else {
		depStatus["database"] = "ok"
	}

	if h.cache != nil {
		if err := h.cache.Ping(ctx); err != nil {
			depStatus["cache"] = err.Error()
			ready = false
		} else {
			depStatus["cache"] = "ok"
		}
	}

	if ready {
		return c.JSON(fiber.Map{
			"status":       "ready",
			"dependencies": depStatus,
		})
	}

	return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
		"error": fiber.Map{
			"code":    "DEPENDENCY_UNAVAILABLE",
			"message": "one or more dependencies unavailable",
			"details": depStatus,
		},
	})
}

// Report handles GET /api/health. It always answers 200; a failing
// dependency turns the status to "degraded".
func (h *HealthHandler) Report(c *fiber.Ctx) error {
	start := time.Now()
	ctx, cancel := context.WithTimeout(c.UserContext(), probeTimeout)
	defer cancel()

	status := "healthy"

	database := dto.DependencyHealth{Status: "connected", Backend: h.storeBackend}
	if err := h.store.Ping(ctx); err != nil {
		database.Status = "disconnected"
		database.Error = err.Error()
		status = "degraded"
	}

	cache := dto.DependencyHealth{Status: "disabled"}
	if h.cache != nil {
		cache = dto.DependencyHealth{Status: "connected", Backend: "redis"}
		if err := h.cache.Ping(ctx); err != nil {
			cache.Status = "disconnected"
			cache.Error = err.Error()
			status = "degraded"
		}
	}

	snap := h.metrics.Snapshot()
	report := dto.HealthResponse{
		Status:    status,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Application: dto.ApplicationHealth{
			Name:          h.app.Name,
			Version:       h.app.Version,
			Environment:   h.app.Env,
			UptimeSeconds: snap.Uptime.Seconds(),
		},
		Database: database,
		Cache:    cache,
		System:   systemHealth(),
		Requests: dto.RequestStats{
			Total:                 snap.TotalRequests,
			Errors:                snap.ErrorTotal(),
			AverageResponseTimeMs: float64(snap.AverageResponseTime.Microseconds()) / 1000,
			ByRoute:               snap.Requests,
		},
	}
	report.ResponseTime = time.Since(start).String()
	return c.JSON(report)
}

func systemHealth() dto.SystemHealth {
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)
	hostname, _ := os.Hostname()
	return dto.SystemHealth{
		OS:         runtime.GOOS,
		Arch:       runtime.GOARCH,
		GoVersion:  runtime.Version(),
		Hostname:   hostname,
		CPUCount:   runtime.NumCPU(),
		Goroutines: runtime.NumGoroutine(),
		HeapMiB:    float64(mem.HeapAlloc) / (1 << 20),
	}
}
