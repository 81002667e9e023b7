package observability

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestMetricsSnapshot(t *testing.T) {
	m := NewMetrics()
	m.RecordRequest("/api/products", "GET", 200, 10*time.Millisecond)
	m.RecordRequest("/api/products", "GET", 200, 30*time.Millisecond)
	m.RecordRequest("/api/products/:id", "GET", 404, 20*time.Millisecond)
	m.RecordError("/api/products/:id", "GET", "NOT_FOUND")

	snap := m.Snapshot()
	assert.Equal(t, int64(3), snap.TotalRequests)
	assert.Equal(t, 20*time.Millisecond, snap.AverageResponseTime)
	assert.Equal(t, int64(2), snap.Requests["/api/products|GET|200"])
	assert.Equal(t, int64(1), snap.Requests["/api/products/:id|GET|404"])
	assert.Equal(t, int64(1), snap.ErrorTotal())
	assert.False(t, snap.StartedAt.IsZero())

	// the snapshot is a copy
	snap.Requests["/api/products|GET|200"] = 99
	assert.Equal(t, int64(2), m.Snapshot().Requests["/api/products|GET|200"])
}

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.RecordRequest("/", "GET", 200, time.Millisecond)
		m.RecordError("/", "GET", "X")
		assert.Zero(t, m.Snapshot().TotalRequests)
	})
}

func TestRequestLogger(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	metrics := NewMetrics()

	app := fiber.New()
	app.Use(RequestLogger(zap.New(core), metrics))
	app.Get("/items/:id", func(c *fiber.Ctx) error {
		c.Locals(AccountIDLocal, "a1")
		return c.SendStatus(http.StatusTeapot)
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/items/42", nil))
	require.NoError(t, err)
	defer resp.Body.Close()

	entries := logs.All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "GET", fields["method"])
	assert.Equal(t, "/items/42", fields["path"])
	assert.EqualValues(t, http.StatusTeapot, fields["status"])
	assert.Equal(t, "a1", fields["account_id"])

	assert.Equal(t, int64(1), metrics.Snapshot().Requests["/items/:id|GET|418"])
}
