package api

import (
	"encoding/json"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/circuit-designer/backend/internal/editor"
	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
)

// WebSocket message types
const (
	// Client -> Server messages
	MsgTypeInteract = "interact"
	MsgTypePing     = "ping"

	// Server -> Client messages
	MsgTypeConnected = "connected"
	MsgTypeCircuit   = "circuit"
	MsgTypeVisual    = "visual"
	MsgTypeError     = "error"
	MsgTypePong      = "pong"
)

// WSMessage is the envelope of every WebSocket frame.
type WSMessage struct {
	Type      string          `json:"type"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	Timestamp int64           `json:"timestamp"`
}

// WSErrorPayload reports a rejected client message.
type WSErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// WebSocketHandler streams session snapshots and simulation state.
type WebSocketHandler struct {
	sessions SessionManager
	logger   *log.Logger
	upgrader websocket.Upgrader
}

// NewWebSocketHandler creates a new WebSocket handler
func NewWebSocketHandler(sessions SessionManager, logger *log.Logger) *WebSocketHandler {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &WebSocketHandler{
		sessions: sessions,
		logger:   logger,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
			ReadBufferSize:  4 * 1024,
			WriteBufferSize: 16 * 1024,
		},
	}
}

// wsConn serializes writes; gorilla connections allow one concurrent writer.
type wsConn struct {
	ws *websocket.Conn
	mu sync.Mutex
}

func (c *wsConn) send(msgType string, payload interface{}) error {
	msg := WSMessage{Type: msgType, Timestamp: time.Now().UnixMilli()}
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		msg.Payload = data
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ws.WriteJSON(msg)
}

func (c *wsConn) sendError(err *APIError) error {
	return c.send(MsgTypeError, WSErrorPayload{Code: err.Code, Message: err.Message})
}

// HandleWebSocket upgrades the connection, pushes the current snapshot and
// every later one, and accepts interact and ping messages.
func (wsh *WebSocketHandler) HandleWebSocket(c echo.Context) error {
	id := c.Param("sessionId")
	updates, cancel, err := wsh.sessions.Subscribe(id)
	if err != nil {
		return toAPIError(err)
	}
	defer cancel()

	ws, err := wsh.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return err
	}
	defer ws.Close()
	conn := &wsConn{ws: ws}

	wsh.logger.Debug("websocket connected", "session", id)
	conn.send(MsgTypeConnected, map[string]string{"sessionId": id})
	if snap, err := wsh.sessions.Snapshot(id); err == nil {
		wsh.pushSnapshot(conn, id, snap)
	}

	done := make(chan struct{})
	defer close(done)
	go func() {
		for {
			select {
			case snap, ok := <-updates:
				if !ok {
					return
				}
				wsh.pushSnapshot(conn, id, snap)
			case <-done:
				return
			}
		}
	}()

	for {
		var msg WSMessage
		if err := ws.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				wsh.logger.Warn("websocket closed unexpectedly", "session", id, "err", err)
			}
			break
		}
		wsh.sessions.TouchSession(id)

		switch msg.Type {
		case MsgTypePing:
			conn.send(MsgTypePong, nil)
		case MsgTypeInteract:
			var req InteractRequest
			if err := json.Unmarshal(msg.Payload, &req); err != nil {
				conn.sendError(NewBadRequestError("invalid interact payload", err))
				continue
			}
			st, err := wsh.sessions.Interact(c.Request().Context(), id, req.ComponentID, req.Action)
			if err != nil {
				conn.sendError(toAPIError(err))
				continue
			}
			conn.send(MsgTypeVisual, st)
		default:
			conn.sendError(&APIError{Code: "INVALID_TYPE", Message: "unknown message type: " + msg.Type})
		}
	}

	wsh.logger.Debug("websocket disconnected", "session", id)
	return nil
}

func (wsh *WebSocketHandler) pushSnapshot(conn *wsConn, id string, snap editor.Snapshot) {
	conn.send(MsgTypeCircuit, snap)
	if st, err := wsh.sessions.SimulationState(id); err == nil {
		conn.send(MsgTypeVisual, st)
	}
}
