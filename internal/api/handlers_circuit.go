// handlers_circuit.go - Circuit editing handlers
package api

import (
	"net/http"

	"github.com/circuit-designer/backend/internal/editor"
	"github.com/circuit-designer/backend/internal/models"
	"github.com/labstack/echo/v4"
	"github.com/vmihailenco/msgpack/v5"
)

// AddComponentResponse is the answer to an accepted add.
type AddComponentResponse struct {
	Component models.PlacedComponent `json:"component"`
	Snapshot  editor.Snapshot        `json:"snapshot"`
}

// HandleGetCircuit returns the current snapshot.
func (h *Handler) HandleGetCircuit(c echo.Context) error {
	snap, err := h.sessions.Snapshot(c.Param("sessionId"))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, snap)
}

// HandleGetCircuitMsgpack returns the current snapshot as MessagePack.
func (h *Handler) HandleGetCircuitMsgpack(c echo.Context) error {
	snap, err := h.sessions.Snapshot(c.Param("sessionId"))
	if err != nil {
		return h.fail(c, err)
	}
	data, err := msgpack.Marshal(snap)
	if err != nil {
		return NewInternalError("failed to encode snapshot", err)
	}
	return c.Blob(http.StatusOK, "application/msgpack", data)
}

// HandleGetCode returns the generated firmware as plain text.
func (h *Handler) HandleGetCode(c echo.Context) error {
	snap, err := h.sessions.Snapshot(c.Param("sessionId"))
	if err != nil {
		return h.fail(c, err)
	}
	return c.String(http.StatusOK, snap.Code)
}

// HandleGetPalette lists the component types the session accepts.
func (h *Handler) HandleGetPalette(c echo.Context) error {
	types, err := h.sessions.Palette(c.Param("sessionId"))
	if err != nil {
		return h.fail(c, err)
	}
	out := make([]models.ComponentMetadata, 0, len(types))
	for _, t := range types {
		if meta, ok := h.catalog.Lookup(t); ok {
			out = append(out, meta)
		}
	}
	return c.JSON(http.StatusOK, out)
}

// HandleAddComponent places a component at the drop coordinate.
func (h *Handler) HandleAddComponent(c echo.Context) error {
	var req struct {
		Type models.ComponentType `json:"type"`
		X    float64              `json:"x"`
		Y    float64              `json:"y"`
	}
	if err := c.Bind(&req); err != nil {
		return NewBadRequestError("invalid request body", err)
	}
	if req.Type == "" {
		return NewValidationError("type")
	}

	snap, comp, err := h.sessions.AddComponent(c.Request().Context(), c.Param("sessionId"), req.Type, req.X, req.Y)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusCreated, AddComponentResponse{Component: comp, Snapshot: snap})
}

// HandleRemoveComponent deletes a component.
func (h *Handler) HandleRemoveComponent(c echo.Context) error {
	snap, err := h.sessions.RemoveComponent(c.Request().Context(), c.Param("sessionId"), c.Param("componentId"))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, snap)
}

// HandleMoveComponent updates a component position.
func (h *Handler) HandleMoveComponent(c echo.Context) error {
	var req models.Position
	if err := c.Bind(&req); err != nil {
		return NewBadRequestError("invalid request body", err)
	}
	snap, err := h.sessions.MoveComponent(c.Request().Context(), c.Param("sessionId"), c.Param("componentId"), req.X, req.Y)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, snap)
}

// HandleResizeComponent sets a component's display scale.
func (h *Handler) HandleResizeComponent(c echo.Context) error {
	var req struct {
		Scale *float64 `json:"scale"`
	}
	if err := c.Bind(&req); err != nil {
		return NewBadRequestError("invalid request body", err)
	}
	if req.Scale == nil {
		return NewValidationError("scale")
	}
	snap, err := h.sessions.ResizeComponent(c.Request().Context(), c.Param("sessionId"), c.Param("componentId"), *req.Scale)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, snap)
}

// HandleChangePin assigns a pin. The value is a digital pin number, an
// analog token such as "A0", or 0 to disconnect.
func (h *Handler) HandleChangePin(c echo.Context) error {
	var req struct {
		Value *models.PinValue `json:"value"`
	}
	if err := c.Bind(&req); err != nil {
		return NewBadRequestError("invalid request body", err)
	}
	if req.Value == nil {
		return NewValidationError("value")
	}
	snap, err := h.sessions.ChangePin(c.Request().Context(), c.Param("sessionId"), c.Param("componentId"), c.Param("pin"), *req.Value)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, snap)
}

// HandleAvailablePins lists the free digital, PWM and analog pins of a
// component.
func (h *Handler) HandleAvailablePins(c echo.Context) error {
	avail, err := h.sessions.AvailablePins(c.Param("sessionId"), c.Param("componentId"))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, avail)
}

// HandleReset clears the circuit.
func (h *Handler) HandleReset(c echo.Context) error {
	snap, err := h.sessions.Reset(c.Request().Context(), c.Param("sessionId"))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, snap)
}
