package models

import "time"

// EditorMode selects the editing and generation policy of a session.
type EditorMode string

const (
	// ModeConstrained is the three-part Arduino + LED + button circuit.
	ModeConstrained EditorMode = "constrained"
	// ModeGeneral allows any catalog component.
	ModeGeneral EditorMode = "general"
)

func (m EditorMode) Valid() bool {
	return m == ModeConstrained || m == ModeGeneral
}

// PinPolicy decides whether pin changes are checked for collisions.
type PinPolicy string

const (
	PinPolicyStrict     PinPolicy = "strict"
	PinPolicyPermissive PinPolicy = "permissive"
)

func (p PinPolicy) Valid() bool {
	return p == PinPolicyStrict || p == PinPolicyPermissive
}

// DefaultPinPolicy returns the policy a mode uses when none is configured.
func (m EditorMode) DefaultPinPolicy() PinPolicy {
	if m == ModeConstrained {
		return PinPolicyStrict
	}
	return PinPolicyPermissive
}

// EditorSession describes one editing session.
type EditorSession struct {
	ID             string     `json:"id"`
	Mode           EditorMode `json:"mode"`
	PinPolicy      PinPolicy  `json:"pinPolicy"`
	CreatedAt      time.Time  `json:"createdAt"`
	LastAccessed   time.Time  `json:"lastAccessed"`
	Revision       int        `json:"revision"`
	ComponentCount int        `json:"componentCount"`
	Simulating     bool       `json:"simulating"`
}

// Transition is one journaled editor operation.
type Transition struct {
	SessionID   string    `json:"sessionId"`
	Seq         int64     `json:"seq"`
	At          time.Time `json:"at"`
	Op          string    `json:"op"`
	ComponentID string    `json:"componentId,omitempty"`
	Detail      string    `json:"detail,omitempty"`
	Accepted    bool      `json:"accepted"`
	Advisory    string    `json:"advisory,omitempty"`
	Revision    int       `json:"revision"`
}
