// Package codegen derives Arduino firmware source text from a circuit.
//
// Generation is a pure function of the circuit: the same components with the
// same pins always produce byte-identical text. Missing prerequisites are not
// errors; the generators return a one-line placeholder comment instead.
package codegen

import (
	"github.com/circuit-designer/backend/internal/catalog"
	"github.com/circuit-designer/backend/internal/models"
)

// Generator turns a circuit snapshot into firmware text.
type Generator interface {
	Generate(circuit models.Circuit) string
}

// ForMode returns the generator an editor mode uses.
func ForMode(mode models.EditorMode, cat *catalog.Catalog) Generator {
	if mode == models.ModeConstrained {
		return NewBasicGenerator()
	}
	return NewAdvancedGenerator(cat)
}
