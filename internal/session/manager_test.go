package session

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/circuit-designer/backend/internal/editor"
	"github.com/circuit-designer/backend/internal/journal"
	"github.com/circuit-designer/backend/internal/models"
	"github.com/circuit-designer/backend/internal/simulation"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestManager(t *testing.T, maxSessions int) *Manager {
	t.Helper()
	logger := log.New(io.Discard)
	j, err := journal.Open(journal.DefaultOptions, logger)
	require.NoError(t, err)
	m := NewManager(Config{MaxSessions: maxSessions, Journal: j, Logger: logger})
	t.Cleanup(func() { m.Close() })
	return m
}

func TestCreateSessionDefaults(t *testing.T) {
	m := newTestManager(t, 0)

	general, err := m.CreateSession("", "")
	require.NoError(t, err)
	assert.Equal(t, models.ModeGeneral, general.Mode)
	assert.Equal(t, models.PinPolicyPermissive, general.PinPolicy)

	constrained, err := m.CreateSession(models.ModeConstrained, "")
	require.NoError(t, err)
	assert.Equal(t, models.PinPolicyStrict, constrained.PinPolicy)

	_, err = m.CreateSession("freeform", "")
	assert.True(t, errors.Is(err, ErrInvalidMode))
	_, err = m.CreateSession(models.ModeGeneral, "loose")
	assert.True(t, errors.Is(err, ErrInvalidPinPolicy))

	assert.Len(t, m.ListSessions(), 2)
}

func TestSessionFlowIsJournaled(t *testing.T) {
	m := newTestManager(t, 0)
	ctx := context.Background()
	s, err := m.CreateSession(models.ModeConstrained, "")
	require.NoError(t, err)

	_, _, err = m.AddComponent(ctx, s.ID, models.TypeArduinoUno, 50, 50)
	require.NoError(t, err)
	_, led, err := m.AddComponent(ctx, s.ID, models.TypeLEDRed, 300, 200)
	require.NoError(t, err)
	_, _, err = m.AddComponent(ctx, s.ID, models.TypePushbutton, 300, 400)
	require.NoError(t, err)

	_, err = m.ChangePin(ctx, s.ID, led.ID, "anode", models.Digital(2))
	assert.True(t, errors.Is(err, editor.ErrPinInUse))

	snap, err := m.Snapshot(s.ID)
	require.NoError(t, err)
	assert.Contains(t, snap.Code, "const int LED_PIN = 10;")

	history, total, err := m.History(ctx, s.ID, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, 4, total)
	require.Len(t, history, 4)
	assert.Equal(t, OpAdd, history[0].Op)
	assert.True(t, history[0].Accepted)
	assert.Equal(t, OpPin, history[3].Op)
	assert.False(t, history[3].Accepted)
	assert.Contains(t, history[3].Advisory, "in use")
	assert.Equal(t, "anode=2", history[3].Detail)

	info, ok := m.GetSession(s.ID)
	require.True(t, ok)
	assert.Equal(t, 3, info.Revision)
	assert.Equal(t, 3, info.ComponentCount)
}

func TestSimulationThroughManager(t *testing.T) {
	m := newTestManager(t, 0)
	ctx := context.Background()
	s, err := m.CreateSession(models.ModeGeneral, "")
	require.NoError(t, err)

	_, err = m.StartSimulation(ctx, s.ID)
	assert.True(t, errors.Is(err, simulation.ErrCircuitIncomplete))

	m.AddComponent(ctx, s.ID, models.TypeArduinoUno, 0, 0)
	_, led, _ := m.AddComponent(ctx, s.ID, models.TypeLEDRed, 0, 0)
	_, btn, _ := m.AddComponent(ctx, s.ID, models.TypePushbutton, 0, 0)

	st, err := m.StartSimulation(ctx, s.ID)
	require.NoError(t, err)
	assert.True(t, st.Running)

	st, err = m.Interact(ctx, s.ID, btn.ID, simulation.ActionPress)
	require.NoError(t, err)
	assert.True(t, st.Visual[led.ID].Lit)

	_, err = m.Interact(ctx, s.ID, btn.ID, "wiggle")
	assert.True(t, errors.Is(err, ErrInvalidAction))

	st, err = m.StopSimulation(ctx, s.ID)
	require.NoError(t, err)
	assert.False(t, st.Visual[led.ID].Lit)

	info, _ := m.GetSession(s.ID)
	assert.False(t, info.Simulating)
}

func TestUnknownSession(t *testing.T) {
	m := newTestManager(t, 0)
	_, err := m.Snapshot("missing")
	assert.True(t, errors.Is(err, ErrSessionNotFound))
	_, _, err = m.AddComponent(context.Background(), "missing", models.TypeLEDRed, 0, 0)
	assert.True(t, errors.Is(err, ErrSessionNotFound))
	assert.False(t, m.TouchSession("missing"))
	assert.False(t, m.DeleteSession(context.Background(), "missing"))
}

func TestEvictsLeastRecentlyUsedAtCapacity(t *testing.T) {
	m := newTestManager(t, 2)
	first, _ := m.CreateSession("", "")
	second, _ := m.CreateSession("", "")

	m.mu.Lock()
	m.sessions[first.ID].LastAccessed = time.Now().Add(-time.Hour)
	m.mu.Unlock()

	third, err := m.CreateSession("", "")
	require.NoError(t, err)

	_, ok := m.GetSession(first.ID)
	assert.False(t, ok)
	_, ok = m.GetSession(second.ID)
	assert.True(t, ok)
	_, ok = m.GetSession(third.ID)
	assert.True(t, ok)
}

func TestCleanupOldSessions(t *testing.T) {
	m := newTestManager(t, 0)
	idle, _ := m.CreateSession("", "")
	active, _ := m.CreateSession("", "")

	m.mu.Lock()
	m.sessions[idle.ID].LastAccessed = time.Now().Add(-2 * SessionMaxAge)
	m.mu.Unlock()

	// Listing sessions must not refresh them.
	assert.Len(t, m.ListSessions(), 2)
	assert.Equal(t, 1, m.CleanupOldSessions(SessionMaxAge))
	_, ok := m.GetSession(idle.ID)
	assert.False(t, ok)
	assert.True(t, m.TouchSession(active.ID))
}

func TestDeleteSessionDropsHistory(t *testing.T) {
	m := newTestManager(t, 0)
	ctx := context.Background()
	s, _ := m.CreateSession("", "")
	m.AddComponent(ctx, s.ID, models.TypeBuzzer, 0, 0)

	assert.True(t, m.DeleteSession(ctx, s.ID))
	_, _, err := m.History(ctx, s.ID, 1, 10)
	assert.True(t, errors.Is(err, ErrSessionNotFound))
}
