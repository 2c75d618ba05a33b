package session

import (
	"context"
	"os"
	"sort"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/circuit-designer/backend/internal/catalog"
	"github.com/circuit-designer/backend/internal/editor"
	"github.com/circuit-designer/backend/internal/journal"
	"github.com/circuit-designer/backend/internal/models"
	"github.com/circuit-designer/backend/internal/simulation"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// MaxSessions limits concurrent editing sessions.
const MaxSessions = 64

// SessionMaxAge is how long an idle session is kept before cleanup.
const SessionMaxAge = 30 * time.Minute

// SessionKeepAliveWindow protects recently used sessions from cleanup.
const SessionKeepAliveWindow = 5 * time.Minute

var (
	ErrSessionNotFound  = errors.New("session not found")
	ErrInvalidMode      = errors.New("invalid editor mode")
	ErrInvalidPinPolicy = errors.New("invalid pin policy")
	ErrInvalidAction    = errors.New("invalid simulation action")
)

// Operation names recorded in the journal.
const (
	OpAdd       = "add"
	OpPin       = "pin"
	OpMove      = "move"
	OpResize    = "resize"
	OpRemove    = "remove"
	OpReset     = "reset"
	OpSimStart  = "simulation-start"
	OpSimStop   = "simulation-stop"
	OpSimAction = "simulation-interact"
)

// Config configures a Manager. Zero values fall back to package defaults.
type Config struct {
	MaxSessions      int
	DefaultMode      models.EditorMode
	DefaultPinPolicy models.PinPolicy
	Catalog          *catalog.Catalog
	Journal          journal.Recorder
	Logger           *log.Logger
}

// Manager handles active editing sessions.
type Manager struct {
	sessions map[string]*SessionState
	mu       sync.RWMutex

	maxSessions int
	mode        models.EditorMode
	policy      models.PinPolicy
	catalog     *catalog.Catalog
	journal     journal.Recorder
	logger      *log.Logger
}

// SessionState holds the session metadata with its editor and simulator.
type SessionState struct {
	Session      *models.EditorSession
	Editor       *editor.Editor
	Simulator    *simulation.Simulator
	LastAccessed time.Time
}

// NewManager creates a session manager.
func NewManager(cfg Config) *Manager {
	if cfg.MaxSessions <= 0 {
		cfg.MaxSessions = MaxSessions
	}
	if !cfg.DefaultMode.Valid() {
		cfg.DefaultMode = models.ModeGeneral
	}
	if cfg.Catalog == nil {
		cfg.Catalog = catalog.Default()
	}
	if cfg.Journal == nil {
		cfg.Journal = journal.Nop{}
	}
	if cfg.Logger == nil {
		cfg.Logger = log.NewWithOptions(os.Stderr, log.Options{Prefix: "Sessions"})
	}
	return &Manager{
		sessions:    make(map[string]*SessionState),
		maxSessions: cfg.MaxSessions,
		mode:        cfg.DefaultMode,
		policy:      cfg.DefaultPinPolicy,
		catalog:     cfg.Catalog,
		journal:     cfg.Journal,
		logger:      cfg.Logger,
	}
}

// shortID truncates an id for logging.
func shortID(id string) string {
	if len(id) <= 8 {
		return id
	}
	return id[:8]
}

// CreateSession starts a new editing session. Empty mode or policy select
// the configured defaults.
func (m *Manager) CreateSession(mode models.EditorMode, policy models.PinPolicy) (*models.EditorSession, error) {
	if mode == "" {
		mode = m.mode
	}
	if !mode.Valid() {
		return nil, errors.Wrapf(ErrInvalidMode, "%q", mode)
	}
	if policy == "" {
		policy = m.policy
		if mode != m.mode || !policy.Valid() {
			policy = mode.DefaultPinPolicy()
		}
	}
	if !policy.Valid() {
		return nil, errors.Wrapf(ErrInvalidPinPolicy, "%q", policy)
	}

	m.cleanupOldSessionsIfNeeded()

	now := time.Now()
	ed := editor.New(editor.Options{Mode: mode, PinPolicy: policy, Catalog: m.catalog})
	state := &SessionState{
		Session: &models.EditorSession{
			ID:           uuid.New().String(),
			Mode:         mode,
			PinPolicy:    policy,
			CreatedAt:    now,
			LastAccessed: now,
		},
		Editor:       ed,
		Simulator:    simulation.New(),
		LastAccessed: now,
	}

	m.mu.Lock()
	m.sessions[state.Session.ID] = state
	m.mu.Unlock()

	m.logger.Info("session created", "session", shortID(state.Session.ID), "mode", mode, "pinPolicy", policy)
	out := *state.Session
	return &out, nil
}

// cleanupOldSessionsIfNeeded evicts the least recently used sessions when
// at capacity.
func (m *Manager) cleanupOldSessionsIfNeeded() {
	m.mu.Lock()
	if len(m.sessions) < m.maxSessions {
		m.mu.Unlock()
		return
	}

	ids := make([]string, 0, len(m.sessions))
	for id := range m.sessions {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		return m.sessions[ids[i]].LastAccessed.Before(m.sessions[ids[j]].LastAccessed)
	})

	toFree := len(m.sessions) - m.maxSessions + 1
	evicted := ids[:toFree]
	for _, id := range evicted {
		delete(m.sessions, id)
		m.logger.Info("evicted session to stay under capacity", "session", shortID(id))
	}
	m.mu.Unlock()

	m.forget(evicted)
}

// CleanupOldSessions removes sessions idle for longer than maxAge, but keeps
// sessions accessed within SessionKeepAliveWindow.
func (m *Manager) CleanupOldSessions(maxAge time.Duration) int {
	m.mu.Lock()
	cutoff := time.Now().Add(-maxAge)
	keepAliveCutoff := time.Now().Add(-SessionKeepAliveWindow)

	var removed []string
	for id, state := range m.sessions {
		if state.LastAccessed.After(keepAliveCutoff) {
			continue
		}
		if state.LastAccessed.Before(cutoff) {
			delete(m.sessions, id)
			removed = append(removed, id)
			m.logger.Info("cleaned up idle session", "session", shortID(id),
				"idle", time.Since(state.LastAccessed).Round(time.Second))
		}
	}
	m.mu.Unlock()

	m.forget(removed)
	return len(removed)
}

// forget drops the journal rows of removed sessions.
func (m *Manager) forget(ids []string) {
	for _, id := range ids {
		if err := m.journal.DeleteSession(context.Background(), id); err != nil {
			m.logger.Warn("failed to drop session history", "session", shortID(id), "err", err)
		}
	}
}

// GetSession returns a copy of a session's metadata.
func (m *Manager) GetSession(id string) (*models.EditorSession, bool) {
	state, ok := m.lookup(id)
	if !ok {
		return nil, false
	}
	return m.describe(state), true
}

// describe copies the metadata of state with its live circuit counters.
func (m *Manager) describe(state *SessionState) *models.EditorSession {
	snap := state.Editor.Snapshot()

	m.mu.RLock()
	defer m.mu.RUnlock()
	out := *state.Session
	out.LastAccessed = state.LastAccessed
	out.Revision = snap.Revision
	out.ComponentCount = len(snap.Circuit.Components)
	out.Simulating = state.Simulator.Running()
	return &out
}

// ListSessions returns every session ordered by creation time. Listing does
// not count as access, so idle sessions still expire.
func (m *Manager) ListSessions() []*models.EditorSession {
	m.mu.RLock()
	states := make([]*SessionState, 0, len(m.sessions))
	for _, state := range m.sessions {
		states = append(states, state)
	}
	m.mu.RUnlock()

	out := make([]*models.EditorSession, 0, len(states))
	for _, state := range states {
		out = append(out, m.describe(state))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}

// DeleteSession ends a session.
func (m *Manager) DeleteSession(ctx context.Context, id string) bool {
	m.mu.Lock()
	_, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()
	if !ok {
		return false
	}
	if err := m.journal.DeleteSession(ctx, id); err != nil {
		m.logger.Warn("failed to drop session history", "session", shortID(id), "err", err)
	}
	m.logger.Info("session deleted", "session", shortID(id))
	return true
}

// TouchSession updates the LastAccessed timestamp of a session so it is not
// cleaned up.
func (m *Manager) TouchSession(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	state, ok := m.sessions[id]
	if !ok {
		return false
	}
	state.LastAccessed = time.Now()
	return true
}

// lookup returns a session and marks it as used.
func (m *Manager) lookup(id string) (*SessionState, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	state, ok := m.sessions[id]
	if ok {
		state.LastAccessed = time.Now()
	}
	return state, ok
}

func (m *Manager) state(id string) (*SessionState, error) {
	state, ok := m.lookup(id)
	if !ok {
		return nil, errors.Wrapf(ErrSessionNotFound, "%s", id)
	}
	return state, nil
}

// Snapshot returns the current editor snapshot of a session.
func (m *Manager) Snapshot(id string) (editor.Snapshot, error) {
	state, err := m.state(id)
	if err != nil {
		return editor.Snapshot{}, err
	}
	return state.Editor.Snapshot(), nil
}

// Palette lists the component types a session accepts.
func (m *Manager) Palette(id string) ([]models.ComponentType, error) {
	state, err := m.state(id)
	if err != nil {
		return nil, err
	}
	return state.Editor.Palette(), nil
}

// record journals an editor transition and logs rejections.
func (m *Manager) record(ctx context.Context, id, op, componentID, detail string, snap editor.Snapshot, opErr error) {
	t := models.Transition{
		SessionID:   id,
		Op:          op,
		ComponentID: componentID,
		Detail:      detail,
		Accepted:    opErr == nil,
		Revision:    snap.Revision,
	}
	if opErr != nil {
		t.Advisory = opErr.Error()
		m.logger.Warn("transition rejected", "session", shortID(id), "op", op, "component", componentID, "reason", opErr)
	} else {
		m.logger.Debug("transition applied", "session", shortID(id), "op", op, "component", componentID, "revision", snap.Revision)
	}
	if _, err := m.journal.Record(ctx, t); err != nil {
		m.logger.Error("failed to journal transition", "session", shortID(id), "op", op, "err", err)
	}
}

// AddComponent places a component dropped at (x, y).
func (m *Manager) AddComponent(ctx context.Context, id string, t models.ComponentType, x, y float64) (editor.Snapshot, models.PlacedComponent, error) {
	state, err := m.state(id)
	if err != nil {
		return editor.Snapshot{}, models.PlacedComponent{}, err
	}
	snap, comp, err := state.Editor.Add(t, x, y)
	m.record(ctx, id, OpAdd, comp.ID, string(t), snap, err)
	return snap, comp, err
}

// ChangePin assigns a pin of a component.
func (m *Manager) ChangePin(ctx context.Context, id, componentID, pinName string, value models.PinValue) (editor.Snapshot, error) {
	state, err := m.state(id)
	if err != nil {
		return editor.Snapshot{}, err
	}
	snap, err := state.Editor.ChangePin(componentID, pinName, value)
	m.record(ctx, id, OpPin, componentID, pinName+"="+value.String(), snap, err)
	return snap, err
}

// MoveComponent updates a component position.
func (m *Manager) MoveComponent(ctx context.Context, id, componentID string, x, y float64) (editor.Snapshot, error) {
	state, err := m.state(id)
	if err != nil {
		return editor.Snapshot{}, err
	}
	snap, err := state.Editor.Move(componentID, x, y)
	m.record(ctx, id, OpMove, componentID, "", snap, err)
	return snap, err
}

// ResizeComponent sets the display scale of a component.
func (m *Manager) ResizeComponent(ctx context.Context, id, componentID string, scale float64) (editor.Snapshot, error) {
	state, err := m.state(id)
	if err != nil {
		return editor.Snapshot{}, err
	}
	snap, err := state.Editor.Resize(componentID, scale)
	m.record(ctx, id, OpResize, componentID, "", snap, err)
	return snap, err
}

// RemoveComponent deletes a component.
func (m *Manager) RemoveComponent(ctx context.Context, id, componentID string) (editor.Snapshot, error) {
	state, err := m.state(id)
	if err != nil {
		return editor.Snapshot{}, err
	}
	snap, err := state.Editor.Remove(componentID)
	m.record(ctx, id, OpRemove, componentID, "", snap, err)
	return snap, err
}

// Reset clears the circuit of a session and stops any simulation.
func (m *Manager) Reset(ctx context.Context, id string) (editor.Snapshot, error) {
	state, err := m.state(id)
	if err != nil {
		return editor.Snapshot{}, err
	}
	state.Simulator.Stop()
	snap := state.Editor.Reset()
	m.record(ctx, id, OpReset, "", "", snap, nil)
	return snap, nil
}

// AvailablePins lists the digital, PWM and analog pins a component may take.
func (m *Manager) AvailablePins(id, componentID string) (editor.PinChoices, error) {
	state, err := m.state(id)
	if err != nil {
		return editor.PinChoices{}, err
	}
	return state.Editor.AvailablePins(componentID)
}

// History returns one page of a session's journaled transitions.
func (m *Manager) History(ctx context.Context, id string, page, pageSize int) ([]models.Transition, int, error) {
	if _, err := m.state(id); err != nil {
		return nil, 0, err
	}
	return m.journal.List(ctx, id, page, pageSize)
}

// Subscribe streams the snapshots of a session.
func (m *Manager) Subscribe(id string) (<-chan editor.Snapshot, func(), error) {
	state, err := m.state(id)
	if err != nil {
		return nil, nil, err
	}
	ch, cancel := state.Editor.Subscribe()
	return ch, cancel, nil
}

// StartSimulation begins simulating the current circuit.
func (m *Manager) StartSimulation(ctx context.Context, id string) (simulation.State, error) {
	state, err := m.state(id)
	if err != nil {
		return simulation.State{}, err
	}
	snap := state.Editor.Snapshot()
	err = state.Simulator.Start(snap.Circuit)
	m.record(ctx, id, OpSimStart, "", "", snap, err)
	return state.Simulator.State(snap.Circuit), err
}

// StopSimulation stops the simulation and turns the LED off.
func (m *Manager) StopSimulation(ctx context.Context, id string) (simulation.State, error) {
	state, err := m.state(id)
	if err != nil {
		return simulation.State{}, err
	}
	snap := state.Editor.Snapshot()
	state.Simulator.Stop()
	m.record(ctx, id, OpSimStop, "", "", snap, nil)
	return state.Simulator.State(snap.Circuit), nil
}

// Interact applies a button press or release to the simulation.
func (m *Manager) Interact(ctx context.Context, id, componentID string, action simulation.Action) (simulation.State, error) {
	state, err := m.state(id)
	if err != nil {
		return simulation.State{}, err
	}
	if !action.Valid() {
		return simulation.State{}, errors.Wrapf(ErrInvalidAction, "%q", action)
	}
	snap := state.Editor.Snapshot()
	if state.Simulator.Interact(snap.Circuit, componentID, action) {
		m.record(ctx, id, OpSimAction, componentID, string(action), snap, nil)
	}
	return state.Simulator.State(snap.Circuit), nil
}

// SimulationState returns the simulation flag and visual projection.
func (m *Manager) SimulationState(id string) (simulation.State, error) {
	state, err := m.state(id)
	if err != nil {
		return simulation.State{}, err
	}
	return state.Simulator.State(state.Editor.Snapshot().Circuit), nil
}

// Close ends every session and closes the journal.
func (m *Manager) Close() error {
	m.mu.Lock()
	m.sessions = make(map[string]*SessionState)
	m.mu.Unlock()
	return m.journal.Close()
}
