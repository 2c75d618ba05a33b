package api

import (
	"net/http"
	"os"
	"strconv"

	"github.com/charmbracelet/log"
	"github.com/circuit-designer/backend/internal/catalog"
	"github.com/circuit-designer/backend/internal/models"
	"github.com/labstack/echo/v4"
)

// Handler handles API requests.
type Handler struct {
	sessions SessionManager
	catalog  *catalog.Catalog
	logger   *log.Logger
}

var (
	_ CatalogHandler    = (*Handler)(nil)
	_ SessionHandler    = (*Handler)(nil)
	_ CircuitHandler    = (*Handler)(nil)
	_ SimulationHandler = (*Handler)(nil)
)

// NewHandler creates a new API handler.
func NewHandler(sessions SessionManager, cat *catalog.Catalog, logger *log.Logger) *Handler {
	if cat == nil {
		cat = catalog.Default()
	}
	if logger == nil {
		logger = log.NewWithOptions(os.Stderr, log.Options{Prefix: "API"})
	}
	return &Handler{
		sessions: sessions,
		catalog:  cat,
		logger:   logger,
	}
}

// fail converts err for the error handler. Advisory rejections are logged at
// debug level since the session manager already records them; anything
// else is unexpected.
func (h *Handler) fail(c echo.Context, err error) error {
	apiErr := toAPIError(err)
	if apiErr.Status >= http.StatusInternalServerError {
		h.logger.Error("request failed", "method", c.Request().Method, "path", c.Path(), "err", err)
	} else {
		h.logger.Debug("request rejected", "path", c.Path(), "code", apiErr.Code)
	}
	return apiErr
}

// HandleListComponents returns every catalog entry, optionally filtered by
// ?category=.
func (h *Handler) HandleListComponents(c echo.Context) error {
	if cat := c.QueryParam("category"); cat != "" {
		return c.JSON(http.StatusOK, h.catalog.ByCategory(models.Category(cat)))
	}
	return c.JSON(http.StatusOK, h.catalog.All())
}

// HandleListCategories returns the ordered category list.
func (h *Handler) HandleListCategories(c echo.Context) error {
	return c.JSON(http.StatusOK, h.catalog.Categories())
}

// HandleGetComponent returns one catalog entry.
func (h *Handler) HandleGetComponent(c echo.Context) error {
	t := c.Param("type")
	meta, ok := h.catalog.Lookup(models.ComponentType(t))
	if !ok {
		return NewNotFoundError("component type", t)
	}
	return c.JSON(http.StatusOK, meta)
}

// HandleCreateSession starts an editing session.
func (h *Handler) HandleCreateSession(c echo.Context) error {
	var req struct {
		Mode      models.EditorMode `json:"mode"`
		PinPolicy models.PinPolicy  `json:"pinPolicy"`
	}
	if c.Request().ContentLength != 0 {
		if err := c.Bind(&req); err != nil {
			return NewBadRequestError("invalid request body", err)
		}
	}

	sess, err := h.sessions.CreateSession(req.Mode, req.PinPolicy)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusCreated, sess)
}

// HandleListSessions returns all live sessions.
func (h *Handler) HandleListSessions(c echo.Context) error {
	return c.JSON(http.StatusOK, h.sessions.ListSessions())
}

// HandleGetSession returns session metadata.
func (h *Handler) HandleGetSession(c echo.Context) error {
	id := c.Param("sessionId")
	sess, ok := h.sessions.GetSession(id)
	if !ok {
		return NewNotFoundError("session", id)
	}
	return c.JSON(http.StatusOK, sess)
}

// HandleDeleteSession ends a session.
func (h *Handler) HandleDeleteSession(c echo.Context) error {
	id := c.Param("sessionId")
	if !h.sessions.DeleteSession(c.Request().Context(), id) {
		return NewNotFoundError("session", id)
	}
	return c.NoContent(http.StatusNoContent)
}

// HandleSessionKeepAlive refreshes the session's last access time so idle
// cleanup skips it.
func (h *Handler) HandleSessionKeepAlive(c echo.Context) error {
	id := c.Param("sessionId")
	if !h.sessions.TouchSession(id) {
		return NewNotFoundError("session", id)
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// HandleGetHistory returns paged journal entries of a session.
func (h *Handler) HandleGetHistory(c echo.Context) error {
	id := c.Param("sessionId")
	page, _ := strconv.Atoi(c.QueryParam("page"))
	pageSize, _ := strconv.Atoi(c.QueryParam("pageSize"))
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 500 {
		pageSize = 50
	}

	entries, total, err := h.sessions.History(c.Request().Context(), id, page, pageSize)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"entries":  entries,
		"total":    total,
		"page":     page,
		"pageSize": pageSize,
	})
}
