package pins

import "sync"

// Role is one side of the two-part LED/button circuit.
type Role string

const (
	RoleLED    Role = "led"
	RoleButton Role = "button"
)

func (r Role) Valid() bool {
	return r == RoleLED || r == RoleButton
}

// Assignment holds the digital pin of each role. NoPin marks a role whose
// part is not placed; it reserves nothing.
type Assignment struct {
	LED    int `json:"led"`
	Button int `json:"button"`
}

// NoPin is the pin of an unplaced role.
const NoPin = 0

// DefaultAssignment wires the LED to pin 10 and the button to pin 2.
var DefaultAssignment = Assignment{LED: 10, Button: 2}

// CanAssignPin reports whether pin may be given to role: it must be a valid
// digital pin not held by the other role.
func CanAssignPin(pin int, role Role, current Assignment) bool {
	if !IsValidPin(pin) {
		return false
	}
	switch role {
	case RoleLED:
		return pin != current.Button
	case RoleButton:
		return pin != current.LED
	}
	return false
}

// AvailablePins lists, in order, every pin role could take.
func AvailablePins(role Role, current Assignment) []int {
	out := make([]int, 0, len(DigitalPins))
	for _, p := range DigitalPins {
		if CanAssignPin(p, role, current) {
			out = append(out, p)
		}
	}
	return out
}

// Wiring is the stateful LED/button pin configuration.
type Wiring struct {
	mu     sync.RWMutex
	config Assignment
}

func NewWiring() *Wiring {
	return &Wiring{config: DefaultAssignment}
}

func (w *Wiring) Config() Assignment {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.config
}

func (w *Wiring) SetConfig(a Assignment) {
	w.mu.Lock()
	w.config = a
	w.mu.Unlock()
}

// UpdatePin assigns pin to role. It returns false, leaving the
// configuration unchanged, when the assignment is not allowed.
func (w *Wiring) UpdatePin(role Role, pin int) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !CanAssignPin(pin, role, w.config) {
		return false
	}
	if role == RoleLED {
		w.config.LED = pin
	} else {
		w.config.Button = pin
	}
	return true
}

func (w *Wiring) AvailablePinsFor(role Role) []int {
	return AvailablePins(role, w.Config())
}
