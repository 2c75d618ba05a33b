// routes.go - Route registration helpers
// This file provides a clean way to register all API routes
package api

import (
	"github.com/charmbracelet/log"
	"github.com/circuit-designer/backend/internal/catalog"
	"github.com/labstack/echo/v4"
)

// Dependencies holds all handler dependencies
type Dependencies struct {
	SessionMgr SessionManager
	Catalog    *catalog.Catalog
	Logger     *log.Logger
	Version    string
}

// Handlers holds all handler instances
type Handlers struct {
	Health     HealthHandler
	Catalog    CatalogHandler
	Session    SessionHandler
	Circuit    CircuitHandler
	Simulation SimulationHandler
	WebSocket  *WebSocketHandler
}

// NewHandlers creates all handler instances
func NewHandlers(deps *Dependencies) *Handlers {
	h := NewHandler(deps.SessionMgr, deps.Catalog, deps.Logger)
	return &Handlers{
		Health:     NewHealthHandler(deps.Version, deps.SessionMgr, deps.Catalog),
		Catalog:    h,
		Session:    h,
		Circuit:    h,
		Simulation: h,
		WebSocket:  NewWebSocketHandler(deps.SessionMgr, deps.Logger),
	}
}

// RegisterRoutes registers all API routes with the Echo instance
func RegisterRoutes(e *echo.Echo, handlers *Handlers) {
	apiGroup := e.Group("/api")

	apiGroup.GET("/health", handlers.Health.HandleHealth)

	// Catalog
	apiGroup.GET("/catalog", handlers.Catalog.HandleListComponents)
	apiGroup.GET("/catalog/categories", handlers.Catalog.HandleListCategories)
	apiGroup.GET("/catalog/:type", handlers.Catalog.HandleGetComponent)

	// Sessions
	apiGroup.POST("/sessions", handlers.Session.HandleCreateSession)
	apiGroup.GET("/sessions", handlers.Session.HandleListSessions)
	sessionGroup := apiGroup.Group("/sessions/:sessionId")
	sessionGroup.GET("", handlers.Session.HandleGetSession)
	sessionGroup.DELETE("", handlers.Session.HandleDeleteSession)
	sessionGroup.POST("/keepalive", handlers.Session.HandleSessionKeepAlive)
	sessionGroup.GET("/history", handlers.Session.HandleGetHistory)

	// Circuit editing
	sessionGroup.GET("/circuit", handlers.Circuit.HandleGetCircuit)
	sessionGroup.GET("/circuit/msgpack", handlers.Circuit.HandleGetCircuitMsgpack)
	sessionGroup.GET("/code", handlers.Circuit.HandleGetCode)
	sessionGroup.GET("/palette", handlers.Circuit.HandleGetPalette)
	sessionGroup.POST("/reset", handlers.Circuit.HandleReset)
	sessionGroup.POST("/components", handlers.Circuit.HandleAddComponent)
	sessionGroup.DELETE("/components/:componentId", handlers.Circuit.HandleRemoveComponent)
	sessionGroup.PUT("/components/:componentId/position", handlers.Circuit.HandleMoveComponent)
	sessionGroup.PUT("/components/:componentId/scale", handlers.Circuit.HandleResizeComponent)
	sessionGroup.PUT("/components/:componentId/pins/:pin", handlers.Circuit.HandleChangePin)
	sessionGroup.GET("/components/:componentId/pins/available", handlers.Circuit.HandleAvailablePins)

	// Simulation
	sessionGroup.GET("/simulation", handlers.Simulation.HandleGetSimulation)
	sessionGroup.POST("/simulation/start", handlers.Simulation.HandleStartSimulation)
	sessionGroup.POST("/simulation/stop", handlers.Simulation.HandleStopSimulation)
	sessionGroup.POST("/simulation/interact", handlers.Simulation.HandleInteract)

	// Live updates
	sessionGroup.GET("/ws", handlers.WebSocket.HandleWebSocket)
}

// SetupMiddleware installs the structured error handler.
func SetupMiddleware(e *echo.Echo) {
	e.HTTPErrorHandler = ErrorHandler
}
