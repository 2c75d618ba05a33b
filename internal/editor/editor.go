// Package editor holds the circuit of one editing session and applies the
// add, pin change, move, resize and remove transitions to it.
//
// Every accepted transition builds a new Circuit value, regenerates the
// firmware text and bumps the revision. Rejected transitions return an
// advisory error and change nothing.
package editor

import (
	"math"
	"strings"
	"sync"

	"github.com/circuit-designer/backend/internal/catalog"
	"github.com/circuit-designer/backend/internal/codegen"
	"github.com/circuit-designer/backend/internal/models"
	"github.com/circuit-designer/backend/internal/pins"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// MinCoordinate keeps dropped components on the canvas.
const MinCoordinate = 20

// Drop offsets centre a component under the cursor.
const (
	dropOffsetX = 100
	dropOffsetY = 50
)

// ConstrainedPalette is the component set offered by the constrained editor.
var ConstrainedPalette = []models.ComponentType{
	models.TypeArduinoUno,
	models.TypeLEDRed,
	models.TypePushbutton,
}

// constrainedDefaults replaces catalog defaults in the constrained editor.
var constrainedDefaults = map[models.ComponentType]models.Pins{
	models.TypeLEDRed: {
		{Name: "anode", Value: models.Digital(pins.DefaultAssignment.LED)},
		{Name: "cathode", Value: models.Ground},
	},
	models.TypePushbutton: {
		{Name: "pin", Value: models.Digital(pins.DefaultAssignment.Button)},
		{Name: "gnd", Value: models.Ground},
	},
}

// Snapshot is an immutable view of the editor after a transition.
type Snapshot struct {
	Revision  int               `json:"revision" msgpack:"revision"`
	Mode      models.EditorMode `json:"mode" msgpack:"mode"`
	PinPolicy models.PinPolicy  `json:"pinPolicy" msgpack:"pinPolicy"`
	Circuit   models.Circuit    `json:"circuit" msgpack:"circuit"`
	Code      string            `json:"code" msgpack:"code"`
}

// Options configures a new Editor. Zero values select the general mode, the
// mode's default pin policy and the default catalog.
type Options struct {
	Mode      models.EditorMode
	PinPolicy models.PinPolicy
	Catalog   *catalog.Catalog
}

// Editor owns one Circuit. It is safe for concurrent use.
type Editor struct {
	mu        sync.Mutex
	mode      models.EditorMode
	policy    models.PinPolicy
	catalog   *catalog.Catalog
	generator codegen.Generator
	// wiring mirrors the LED anode and button pin in the constrained editor.
	wiring *pins.Wiring

	circuit  models.Circuit
	revision int
	code     string

	subs    map[int]chan Snapshot
	nextSub int
}

// New returns an editor over an empty circuit.
func New(opts Options) *Editor {
	if !opts.Mode.Valid() {
		opts.Mode = models.ModeGeneral
	}
	if !opts.PinPolicy.Valid() {
		opts.PinPolicy = opts.Mode.DefaultPinPolicy()
	}
	if opts.Catalog == nil {
		opts.Catalog = catalog.Default()
	}
	e := &Editor{
		mode:      opts.Mode,
		policy:    opts.PinPolicy,
		catalog:   opts.Catalog,
		generator: codegen.ForMode(opts.Mode, opts.Catalog),
		subs:      make(map[int]chan Snapshot),
	}
	if e.mode == models.ModeConstrained {
		e.wiring = pins.NewWiring()
		e.syncWiringLocked(e.circuit)
	}
	e.code = e.generator.Generate(e.circuit)
	return e
}

func (e *Editor) Mode() models.EditorMode     { return e.mode }
func (e *Editor) PinPolicy() models.PinPolicy { return e.policy }

// Snapshot returns the current state.
func (e *Editor) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snapshotLocked()
}

func (e *Editor) snapshotLocked() Snapshot {
	return Snapshot{
		Revision:  e.revision,
		Mode:      e.mode,
		PinPolicy: e.policy,
		Circuit:   e.circuit.Clone(),
		Code:      e.code,
	}
}

// Palette lists the component types this editor accepts.
func (e *Editor) Palette() []models.ComponentType {
	if e.mode == models.ModeConstrained {
		return append([]models.ComponentType(nil), ConstrainedPalette...)
	}
	all := e.catalog.All()
	out := make([]models.ComponentType, len(all))
	for i, m := range all {
		out[i] = m.Type
	}
	return out
}

func (e *Editor) inPalette(t models.ComponentType) bool {
	if e.mode != models.ModeConstrained {
		return true
	}
	for _, p := range ConstrainedPalette {
		if p == t {
			return true
		}
	}
	return false
}

// DropPosition converts a drop coordinate into the component's top-left
// corner, clamped to MinCoordinate.
func DropPosition(x, y float64) models.Position {
	return models.Position{
		X: math.Max(MinCoordinate, x-dropOffsetX),
		Y: math.Max(MinCoordinate, y-dropOffsetY),
	}
}

// Add places a component of type t dropped at (x, y).
func (e *Editor) Add(t models.ComponentType, x, y float64) (Snapshot, models.PlacedComponent, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	meta, ok := e.catalog.Lookup(t)
	if !ok {
		return e.snapshotLocked(), models.PlacedComponent{}, errors.Wrapf(ErrUnknownComponentType, "%q", t)
	}
	if !e.inPalette(t) {
		return e.snapshotLocked(), models.PlacedComponent{}, errors.Wrapf(ErrNotInPalette, "%s", meta.Name)
	}
	isMCU := meta.Category == models.CategoryMicrocontroller
	if isMCU {
		if mcu, exists := e.circuit.Microcontroller(); exists {
			return e.snapshotLocked(), models.PlacedComponent{}, errors.Wrapf(ErrMicrocontrollerExists, "remove %s first", mcu.ID)
		}
	}
	if e.mode == models.ModeConstrained {
		if existing, exists := e.circuit.FindType(t); exists {
			return e.snapshotLocked(), models.PlacedComponent{}, errors.Wrapf(ErrDuplicateComponent, "%s is already placed as %s", meta.Name, existing.ID)
		}
	}

	defaults := meta.DefaultPins
	if e.mode == models.ModeConstrained {
		if fixed, ok := constrainedDefaults[t]; ok {
			defaults = e.claimRolePinLocked(t, fixed.Clone())
		}
	}

	comp := models.PlacedComponent{
		ID:       newComponentID(t),
		Type:     t,
		Position: DropPosition(x, y),
		Pins:     e.releaseHeldPins(defaults),
	}

	next := e.circuit.Clone()
	next.Components = append(next.Components, comp)
	if isMCU {
		next.MicrocontrollerID = comp.ID
	}
	return e.commitLocked(next), comp.Clone(), nil
}

// claimRolePinLocked moves the LED anode or button pin of a constrained
// default off a pin the other part holds, onto the first free one.
func (e *Editor) claimRolePinLocked(t models.ComponentType, defaults models.Pins) models.Pins {
	role, pinName, ok := rolePin(t)
	if !ok || e.wiring == nil || e.policy != models.PinPolicyStrict {
		return defaults
	}
	v, _ := defaults.Get(pinName)
	if pins.CanAssignPin(v.Number(), role, e.wiring.Config()) {
		return defaults
	}
	if free := e.wiring.AvailablePinsFor(role); len(free) > 0 {
		return defaults.With(pinName, models.Digital(free[0]))
	}
	return defaults
}

// releaseHeldPins disconnects default pins another component already holds
// when the strict policy is in force, so defaults never create a collision.
func (e *Editor) releaseHeldPins(defaults models.Pins) models.Pins {
	if e.policy != models.PinPolicyStrict {
		return defaults
	}
	out := defaults.Clone()
	for i, pin := range out {
		if _, _, taken := pins.Owner(e.circuit, pin.Value, ""); taken {
			out[i].Value = models.Ground
		}
	}
	return out
}

// ChangePin assigns value to one pin of a component. Range is always
// checked; collisions only under the strict policy.
func (e *Editor) ChangePin(componentID, pinName string, value models.PinValue) (Snapshot, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	comp, idx, ok := e.circuit.Find(componentID)
	if !ok {
		return e.snapshotLocked(), errors.Wrapf(ErrComponentNotFound, "%s", componentID)
	}
	if _, ok := comp.Pins.Get(pinName); !ok {
		return e.snapshotLocked(), errors.Wrapf(ErrUnknownPin, "%s has no pin %q", comp.ID, pinName)
	}
	if !pins.IsValidValue(value) {
		return e.snapshotLocked(), errors.Wrapf(ErrInvalidPin, "pin %s", value)
	}

	if e.policy == models.PinPolicyStrict {
		if role, ok := e.wiringRole(comp, pinName); ok {
			if value.IsAnalog() || value.IsGround() {
				return e.snapshotLocked(), errors.Wrapf(ErrInvalidPin, "the %s needs a digital pin, got %s", role, value)
			}
			if !e.wiring.UpdatePin(role, value.Number()) {
				return e.snapshotLocked(), errors.Wrapf(ErrPinInUse, "pin %s is reserved for the %s", value, otherRole(role))
			}
		}
		if err := pins.CheckAssign(e.circuit, componentID, value); err != nil {
			e.syncWiringLocked(e.circuit)
			return e.snapshotLocked(), err
		}
	}

	next := e.circuit.Clone()
	next.Components[idx].Pins = comp.Pins.With(pinName, value)
	return e.commitLocked(next), nil
}

// Move updates a component position. No validation beyond existence.
func (e *Editor) Move(componentID string, x, y float64) (Snapshot, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	_, idx, ok := e.circuit.Find(componentID)
	if !ok {
		return e.snapshotLocked(), errors.Wrapf(ErrComponentNotFound, "%s", componentID)
	}
	next := e.circuit.Clone()
	next.Components[idx].Position = models.Position{X: x, Y: y}
	return e.commitLocked(next), nil
}

// Resize sets the display scale of a component.
func (e *Editor) Resize(componentID string, scale float64) (Snapshot, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	_, idx, ok := e.circuit.Find(componentID)
	if !ok {
		return e.snapshotLocked(), errors.Wrapf(ErrComponentNotFound, "%s", componentID)
	}
	if !(scale > 0) || math.IsInf(scale, 0) {
		return e.snapshotLocked(), errors.Wrapf(ErrInvalidScale, "got %v", scale)
	}
	next := e.circuit.Clone()
	if next.Components[idx].Properties == nil {
		next.Components[idx].Properties = models.Properties{}
	}
	next.Components[idx].Properties[models.PropertyScale] = scale
	return e.commitLocked(next), nil
}

// Remove deletes a component, clearing the microcontroller reference when
// it named the removed component.
func (e *Editor) Remove(componentID string) (Snapshot, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	_, idx, ok := e.circuit.Find(componentID)
	if !ok {
		return e.snapshotLocked(), errors.Wrapf(ErrComponentNotFound, "%s", componentID)
	}
	next := e.circuit.Clone()
	next.Components = append(next.Components[:idx], next.Components[idx+1:]...)
	if next.MicrocontrollerID == componentID {
		next.MicrocontrollerID = ""
	}
	return e.commitLocked(next), nil
}

// Reset clears the circuit.
func (e *Editor) Reset() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.commitLocked(models.Circuit{})
}

// PinChoices are the pins a component may take without a collision.
// Analog is only filled for parts with an analog input such as the
// potentiometer signal.
type PinChoices struct {
	Digital []int    `json:"pins"`
	PWM     []int    `json:"pwm"`
	Analog  []string `json:"analog"`
}

// AvailablePins lists the pins componentID may take. In the constrained
// editor the LED and button are limited by each other's role.
func (e *Editor) AvailablePins(componentID string) (PinChoices, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	comp, _, ok := e.circuit.Find(componentID)
	if !ok {
		return PinChoices{}, errors.Wrapf(ErrComponentNotFound, "%s", componentID)
	}
	choices := PinChoices{Analog: []string{}}
	if role, _, ok := rolePin(comp.Type); ok && e.wiring != nil {
		choices.Digital = e.wiring.AvailablePinsFor(role)
	} else {
		choices.Digital = pins.AvailableFor(e.circuit, componentID)
	}
	choices.PWM = pins.PWMOf(choices.Digital)
	if e.takesAnalogLocked(comp) {
		choices.Analog = pins.AvailableAnalogFor(e.circuit, componentID)
	}
	return choices, nil
}

func (e *Editor) takesAnalogLocked(comp models.PlacedComponent) bool {
	for _, p := range comp.Pins {
		if p.Value.IsAnalog() {
			return true
		}
	}
	meta, ok := e.catalog.Lookup(comp.Type)
	if !ok {
		return false
	}
	for _, p := range meta.DefaultPins {
		if p.Value.IsAnalog() {
			return true
		}
	}
	return false
}

// Subscribe returns a channel receiving the latest snapshot after every
// accepted transition. Slow readers only see the newest snapshot. The
// returned func unsubscribes and closes the channel.
func (e *Editor) Subscribe() (<-chan Snapshot, func()) {
	e.mu.Lock()
	defer e.mu.Unlock()

	id := e.nextSub
	e.nextSub++
	ch := make(chan Snapshot, 1)
	e.subs[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			e.mu.Lock()
			defer e.mu.Unlock()
			delete(e.subs, id)
			close(ch)
		})
	}
}

func (e *Editor) commitLocked(next models.Circuit) Snapshot {
	e.circuit = next
	e.revision++
	e.code = e.generator.Generate(next)
	e.syncWiringLocked(next)

	snap := e.snapshotLocked()
	for _, ch := range e.subs {
		select {
		case <-ch:
		default:
		}
		ch <- snap
	}
	return snap
}

// syncWiringLocked copies the LED anode and button pin of the circuit into
// the constrained wiring. A part that is not placed holds no pin.
func (e *Editor) syncWiringLocked(c models.Circuit) {
	if e.wiring == nil {
		return
	}
	cfg := pins.Assignment{LED: pins.NoPin, Button: pins.NoPin}
	if led, ok := c.FindType(models.TypeLEDRed); ok {
		if v, ok := led.Pins.Get("anode"); ok && !v.IsGround() && !v.IsAnalog() {
			cfg.LED = v.Number()
		}
	}
	if btn, ok := c.FindType(models.TypePushbutton); ok {
		if v, ok := btn.Pins.Get("pin"); ok && !v.IsGround() && !v.IsAnalog() {
			cfg.Button = v.Number()
		}
	}
	e.wiring.SetConfig(cfg)
}

func (e *Editor) wiringRole(comp models.PlacedComponent, pinName string) (pins.Role, bool) {
	if e.wiring == nil {
		return "", false
	}
	role, rp, ok := rolePin(comp.Type)
	return role, ok && rp == pinName
}

// rolePin names the role and the pin a constrained part drives.
func rolePin(t models.ComponentType) (pins.Role, string, bool) {
	switch t {
	case models.TypeLEDRed:
		return pins.RoleLED, "anode", true
	case models.TypePushbutton:
		return pins.RoleButton, "pin", true
	}
	return "", "", false
}

func otherRole(r pins.Role) pins.Role {
	if r == pins.RoleLED {
		return pins.RoleButton
	}
	return pins.RoleLED
}

// newComponentID returns ids such as "led-red-1b4e28ba".
func newComponentID(t models.ComponentType) string {
	return string(t) + "-" + strings.SplitN(uuid.New().String(), "-", 2)[0]
}
