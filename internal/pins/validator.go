// Package pins validates pin assignments against the controller pin set and
// against the pins already held by other components.
package pins

import (
	"github.com/circuit-designer/backend/internal/models"
	"github.com/pkg/errors"
)

var (
	// DigitalPins are the assignable digital pins. 0 and 1 carry serial I/O.
	DigitalPins = []int{2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13}
	// AnalogPins are the analog input tokens.
	AnalogPins = []string{"A0", "A1", "A2", "A3", "A4", "A5"}
	// PWMPins support analogWrite.
	PWMPins = []int{3, 5, 6, 9, 10, 11}
)

var (
	ErrInvalidPin = errors.New("pin is not available on this board")
	ErrPinInUse   = errors.New("pin is already in use")
)

// IsValidPin reports whether pin is an assignable digital pin.
func IsValidPin(pin int) bool {
	for _, p := range DigitalPins {
		if p == pin {
			return true
		}
	}
	return false
}

// IsValidAnalogPin reports whether token is one of A0..A5.
func IsValidAnalogPin(token string) bool {
	for _, p := range AnalogPins {
		if p == token {
			return true
		}
	}
	return false
}

func IsPWMPin(pin int) bool {
	for _, p := range PWMPins {
		if p == pin {
			return true
		}
	}
	return false
}

// IsValidValue reports whether v can be assigned at all. Ground is always valid.
func IsValidValue(v models.PinValue) bool {
	switch {
	case v.IsGround():
		return true
	case v.IsAnalog():
		return IsValidAnalogPin(v.String())
	default:
		return IsValidPin(v.Number())
	}
}

// Owner returns the component, other than exclude, that holds v.
// Ground never has an owner.
func Owner(circuit models.Circuit, v models.PinValue, exclude string) (models.PlacedComponent, string, bool) {
	if v.IsGround() {
		return models.PlacedComponent{}, "", false
	}
	for _, comp := range circuit.Components {
		if comp.ID == exclude {
			continue
		}
		for _, pin := range comp.Pins {
			if pin.Value == v {
				return comp, pin.Name, true
			}
		}
	}
	return models.PlacedComponent{}, "", false
}

// CheckAssign validates giving v to componentID. Collisions are rejected;
// the caller keeps the previous assignment.
func CheckAssign(circuit models.Circuit, componentID string, v models.PinValue) error {
	if !IsValidValue(v) {
		return errors.Wrapf(ErrInvalidPin, "pin %s", v)
	}
	if owner, pinName, taken := Owner(circuit, v, componentID); taken {
		return errors.Wrapf(ErrPinInUse, "pin %s is held by %s (%s)", v, owner.ID, pinName)
	}
	return nil
}

// AvailableFor lists the digital pins not held by any component other than
// componentID, in ascending order.
func AvailableFor(circuit models.Circuit, componentID string) []int {
	out := make([]int, 0, len(DigitalPins))
	for _, p := range DigitalPins {
		if _, _, taken := Owner(circuit, models.Digital(p), componentID); !taken {
			out = append(out, p)
		}
	}
	return out
}

// PWMOf keeps the PWM-capable pins of digital, preserving order.
func PWMOf(digital []int) []int {
	out := make([]int, 0, len(PWMPins))
	for _, p := range digital {
		if IsPWMPin(p) {
			out = append(out, p)
		}
	}
	return out
}

// AvailableAnalogFor is AvailableFor over the analog tokens.
func AvailableAnalogFor(circuit models.Circuit, componentID string) []string {
	out := make([]string, 0, len(AnalogPins))
	for _, p := range AnalogPins {
		if _, _, taken := Owner(circuit, models.Analog(p), componentID); !taken {
			out = append(out, p)
		}
	}
	return out
}
