package api

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/circuit-designer/backend/internal/catalog"
	"github.com/circuit-designer/backend/internal/editor"
	"github.com/circuit-designer/backend/internal/models"
	"github.com/circuit-designer/backend/internal/testutil"
	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readMessage(t *testing.T, ws *websocket.Conn) WSMessage {
	t.Helper()
	require.NoError(t, ws.SetReadDeadline(time.Now().Add(2*time.Second)))
	var msg WSMessage
	require.NoError(t, ws.ReadJSON(&msg))
	return msg
}

func TestWebSocketStreamsSnapshots(t *testing.T) {
	m := testutil.NewSessionManager(t)
	e := echo.New()
	SetupMiddleware(e)
	RegisterRoutes(e, NewHandlers(&Dependencies{
		SessionMgr: m,
		Catalog:    catalog.Default(),
		Logger:     testutil.DiscardLogger(),
		Version:    "test",
	}))
	srv := httptest.NewServer(e)
	defer srv.Close()

	sess, err := m.CreateSession(models.ModeConstrained, "")
	require.NoError(t, err)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/sessions/" + sess.ID + "/ws"
	ws, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer ws.Close()

	assert.Equal(t, MsgTypeConnected, readMessage(t, ws).Type)
	msg := readMessage(t, ws)
	require.Equal(t, MsgTypeCircuit, msg.Type)
	var snap editor.Snapshot
	require.NoError(t, json.Unmarshal(msg.Payload, &snap))
	assert.Equal(t, models.ModeConstrained, snap.Mode)
	assert.Equal(t, MsgTypeVisual, readMessage(t, ws).Type)

	_, _, err = m.AddComponent(context.Background(), sess.ID, models.TypeArduinoUno, 50, 50)
	require.NoError(t, err)

	msg = readMessage(t, ws)
	require.Equal(t, MsgTypeCircuit, msg.Type)
	require.NoError(t, json.Unmarshal(msg.Payload, &snap))
	assert.Equal(t, 1, snap.Revision)
	assert.Len(t, snap.Circuit.Components, 1)
	assert.Equal(t, MsgTypeVisual, readMessage(t, ws).Type)

	require.NoError(t, ws.WriteJSON(WSMessage{Type: MsgTypePing}))
	assert.Equal(t, MsgTypePong, readMessage(t, ws).Type)

	require.NoError(t, ws.WriteJSON(WSMessage{Type: "dance"}))
	msg = readMessage(t, ws)
	assert.Equal(t, MsgTypeError, msg.Type)
	assert.Contains(t, string(msg.Payload), "INVALID_TYPE")
}

func TestWebSocketUnknownSession(t *testing.T) {
	e := echo.New()
	SetupMiddleware(e)
	RegisterRoutes(e, NewHandlers(&Dependencies{
		SessionMgr: testutil.NewSessionManager(t),
		Logger:     testutil.DiscardLogger(),
	}))
	srv := httptest.NewServer(e)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/sessions/missing/ws"
	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, 404, resp.StatusCode)
}
