// Package simulation maps button interactions onto LED state while a
// session is simulating. There is no electrical or timing model: a pressed
// button lights the driven LED and a released one turns it off.
package simulation

import (
	"sync"

	"github.com/circuit-designer/backend/internal/models"
	"github.com/pkg/errors"
)

// ErrCircuitIncomplete is returned by Start when the circuit lacks a
// microcontroller, an LED or a push button.
var ErrCircuitIncomplete = errors.New("add a microcontroller, an LED and a push button before simulating")

// Action is an interaction event from the canvas.
type Action string

const (
	ActionPress   Action = "button-press"
	ActionRelease Action = "button-release"
)

func (a Action) Valid() bool {
	return a == ActionPress || a == ActionRelease
}

// VisualState is how one component should be drawn.
type VisualState struct {
	Lit     bool `json:"lit"`
	Pressed bool `json:"pressed"`
}

// State is the externally visible simulator state.
type State struct {
	Running bool                   `json:"running"`
	LEDOn   bool                   `json:"ledOn"`
	Visual  map[string]VisualState `json:"visual"`
}

// Simulator is the per-session simulation state.
type Simulator struct {
	mu      sync.Mutex
	running bool
	ledOn   bool
	pressed map[string]bool
}

func New() *Simulator {
	return &Simulator{pressed: make(map[string]bool)}
}

// Start begins simulating circuit.
func (s *Simulator) Start(circuit models.Circuit) error {
	if _, ok := circuit.Microcontroller(); !ok {
		return errors.Wrap(ErrCircuitIncomplete, "no microcontroller")
	}
	if _, ok := drivenLED(circuit); !ok {
		return errors.Wrap(ErrCircuitIncomplete, "no LED")
	}
	if _, ok := circuit.FindType(models.TypePushbutton); !ok {
		return errors.Wrap(ErrCircuitIncomplete, "no push button")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.running = true
	return nil
}

// Stop ends the simulation and turns the LED off.
func (s *Simulator) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.running = false
	s.ledOn = false
	s.pressed = make(map[string]bool)
}

func (s *Simulator) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// Interact applies a button event. Events for anything but a push button
// in circuit, or arriving while stopped, are ignored. It reports whether the
// state changed.
func (s *Simulator) Interact(circuit models.Circuit, componentID string, action Action) bool {
	comp, _, ok := circuit.Find(componentID)
	if !ok || comp.Type != models.TypePushbutton || !action.Valid() {
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return false
	}
	down := action == ActionPress
	if s.pressed[componentID] == down && s.ledOn == down {
		return false
	}
	if down {
		s.pressed[componentID] = true
	} else {
		delete(s.pressed, componentID)
	}
	s.ledOn = down
	return true
}

// Project maps component ids to their visual state. Only components in
// circuit appear; the driven LED is the first LED in circuit order.
func (s *Simulator) Project(circuit models.Circuit) map[string]VisualState {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make(map[string]VisualState, len(circuit.Components))
	led, hasLED := drivenLED(circuit)
	for _, comp := range circuit.Components {
		var vs VisualState
		switch {
		case hasLED && comp.ID == led.ID:
			vs.Lit = s.ledOn
		case comp.Type == models.TypePushbutton:
			vs.Pressed = s.pressed[comp.ID]
		}
		out[comp.ID] = vs
	}
	return out
}

// State returns the running flag together with the projection of circuit.
func (s *Simulator) State(circuit models.Circuit) State {
	visual := s.Project(circuit)
	s.mu.Lock()
	defer s.mu.Unlock()
	return State{Running: s.running, LEDOn: s.ledOn, Visual: visual}
}

func drivenLED(circuit models.Circuit) (models.PlacedComponent, bool) {
	for _, comp := range circuit.Components {
		if comp.Type.IsLED() {
			return comp, true
		}
	}
	return models.PlacedComponent{}, false
}
