// interfaces.go - Handler interface definitions for clean separation of concerns
package api

import (
	"context"

	"github.com/circuit-designer/backend/internal/editor"
	"github.com/circuit-designer/backend/internal/models"
	"github.com/circuit-designer/backend/internal/simulation"
	"github.com/labstack/echo/v4"
)

// HealthHandler handles health check operations
type HealthHandler interface {
	HandleHealth(c echo.Context) error
}

// CatalogHandler serves the component catalog
type CatalogHandler interface {
	HandleListComponents(c echo.Context) error
	HandleListCategories(c echo.Context) error
	HandleGetComponent(c echo.Context) error
}

// SessionHandler handles editing session lifecycle
type SessionHandler interface {
	HandleCreateSession(c echo.Context) error
	HandleListSessions(c echo.Context) error
	HandleGetSession(c echo.Context) error
	HandleDeleteSession(c echo.Context) error
	HandleSessionKeepAlive(c echo.Context) error
	HandleGetHistory(c echo.Context) error
}

// CircuitHandler handles circuit editing operations
type CircuitHandler interface {
	HandleGetCircuit(c echo.Context) error
	HandleGetCircuitMsgpack(c echo.Context) error
	HandleGetCode(c echo.Context) error
	HandleGetPalette(c echo.Context) error
	HandleAddComponent(c echo.Context) error
	HandleRemoveComponent(c echo.Context) error
	HandleMoveComponent(c echo.Context) error
	HandleResizeComponent(c echo.Context) error
	HandleChangePin(c echo.Context) error
	HandleAvailablePins(c echo.Context) error
	HandleReset(c echo.Context) error
}

// SimulationHandler handles the logic-level simulation toggle
type SimulationHandler interface {
	HandleStartSimulation(c echo.Context) error
	HandleStopSimulation(c echo.Context) error
	HandleInteract(c echo.Context) error
	HandleGetSimulation(c echo.Context) error
}

// SessionManager defines the interface for session management
// This allows mocking in tests
type SessionManager interface {
	CreateSession(mode models.EditorMode, policy models.PinPolicy) (*models.EditorSession, error)
	GetSession(id string) (*models.EditorSession, bool)
	ListSessions() []*models.EditorSession
	DeleteSession(ctx context.Context, id string) bool
	TouchSession(id string) bool

	Snapshot(id string) (editor.Snapshot, error)
	Palette(id string) ([]models.ComponentType, error)
	AddComponent(ctx context.Context, id string, t models.ComponentType, x, y float64) (editor.Snapshot, models.PlacedComponent, error)
	ChangePin(ctx context.Context, id, componentID, pinName string, value models.PinValue) (editor.Snapshot, error)
	MoveComponent(ctx context.Context, id, componentID string, x, y float64) (editor.Snapshot, error)
	ResizeComponent(ctx context.Context, id, componentID string, scale float64) (editor.Snapshot, error)
	RemoveComponent(ctx context.Context, id, componentID string) (editor.Snapshot, error)
	Reset(ctx context.Context, id string) (editor.Snapshot, error)
	AvailablePins(id, componentID string) (editor.PinChoices, error)
	History(ctx context.Context, id string, page, pageSize int) ([]models.Transition, int, error)
	Subscribe(id string) (<-chan editor.Snapshot, func(), error)

	StartSimulation(ctx context.Context, id string) (simulation.State, error)
	StopSimulation(ctx context.Context, id string) (simulation.State, error)
	Interact(ctx context.Context, id, componentID string, action simulation.Action) (simulation.State, error)
	SimulationState(id string) (simulation.State, error)
}
