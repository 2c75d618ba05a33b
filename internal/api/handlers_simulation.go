// handlers_simulation.go - Simulation toggle handlers
package api

import (
	"net/http"

	"github.com/circuit-designer/backend/internal/simulation"
	"github.com/labstack/echo/v4"
)

// InteractRequest is a button event from the canvas.
type InteractRequest struct {
	ComponentID string            `json:"componentId"`
	Action      simulation.Action `json:"action"`
}

// HandleStartSimulation starts the simulation.
func (h *Handler) HandleStartSimulation(c echo.Context) error {
	st, err := h.sessions.StartSimulation(c.Request().Context(), c.Param("sessionId"))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, st)
}

// HandleStopSimulation stops the simulation and turns the LED off.
func (h *Handler) HandleStopSimulation(c echo.Context) error {
	st, err := h.sessions.StopSimulation(c.Request().Context(), c.Param("sessionId"))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, st)
}

// HandleInteract applies a press or release.
func (h *Handler) HandleInteract(c echo.Context) error {
	var req InteractRequest
	if err := c.Bind(&req); err != nil {
		return NewBadRequestError("invalid request body", err)
	}
	if req.ComponentID == "" {
		return NewValidationError("componentId")
	}
	st, err := h.sessions.Interact(c.Request().Context(), c.Param("sessionId"), req.ComponentID, req.Action)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, st)
}

// HandleGetSimulation returns the running flag and visual projection.
func (h *Handler) HandleGetSimulation(c echo.Context) error {
	st, err := h.sessions.SimulationState(c.Param("sessionId"))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, st)
}
