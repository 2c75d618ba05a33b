package editor

import (
	"github.com/circuit-designer/backend/internal/pins"
	"github.com/pkg/errors"
)

// Advisory errors. A transition that returns one of these leaves the circuit
// and the revision unchanged.
var (
	ErrMicrocontrollerExists = errors.New("a microcontroller is already placed")
	ErrDuplicateComponent    = errors.New("component type is already placed")
	ErrNotInPalette          = errors.New("component type is not available in this editor")
	ErrUnknownComponentType  = errors.New("unknown component type")
	ErrComponentNotFound     = errors.New("component not found")
	ErrUnknownPin            = errors.New("component has no such pin")
	ErrInvalidScale          = errors.New("scale must be greater than zero")

	ErrPinInUse   = pins.ErrPinInUse
	ErrInvalidPin = pins.ErrInvalidPin
)

var advisories = []error{
	ErrMicrocontrollerExists,
	ErrDuplicateComponent,
	ErrNotInPalette,
	ErrUnknownComponentType,
	ErrComponentNotFound,
	ErrUnknownPin,
	ErrInvalidScale,
	ErrPinInUse,
	ErrInvalidPin,
}

// IsAdvisory reports whether err is a user-facing rejection rather than a
// failure.
func IsAdvisory(err error) bool {
	for _, a := range advisories {
		if errors.Is(err, a) {
			return true
		}
	}
	return false
}
