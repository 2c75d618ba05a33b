// handlers_health.go - Liveness and editor load report
package api

import (
	"net/http"

	"github.com/circuit-designer/backend/internal/catalog"
	"github.com/labstack/echo/v4"
)

// HealthReport is the body of GET /api/health.
type HealthReport struct {
	Status         string         `json:"status"`
	Version        string         `json:"version"`
	Sessions       int            `json:"sessions"`
	Simulating     int            `json:"simulating"`
	Components     int            `json:"components"`
	SessionsByMode map[string]int `json:"sessionsByMode"`
	CatalogTypes   int            `json:"catalogTypes"`
}

type healthHandler struct {
	version  string
	sessions SessionManager
	catalog  *catalog.Catalog
}

// NewHealthHandler reports live sessions, running simulations and placed
// components across the server.
func NewHealthHandler(version string, sessions SessionManager, cat *catalog.Catalog) HealthHandler {
	if cat == nil {
		cat = catalog.Default()
	}
	return &healthHandler{version: version, sessions: sessions, catalog: cat}
}

func (h *healthHandler) HandleHealth(c echo.Context) error {
	report := HealthReport{
		Status:         "ok",
		Version:        h.version,
		SessionsByMode: map[string]int{},
		CatalogTypes:   len(h.catalog.All()),
	}
	for _, s := range h.sessions.ListSessions() {
		report.Sessions++
		report.Components += s.ComponentCount
		report.SessionsByMode[string(s.Mode)]++
		if s.Simulating {
			report.Simulating++
		}
	}
	return c.JSON(http.StatusOK, report)
}
