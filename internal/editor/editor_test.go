package editor

import (
	"strings"
	"testing"

	"github.com/circuit-designer/backend/internal/codegen"
	"github.com/circuit-designer/backend/internal/models"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func addOK(t *testing.T, e *Editor, ct models.ComponentType) models.PlacedComponent {
	t.Helper()
	_, comp, err := e.Add(ct, 200, 200)
	require.NoError(t, err)
	return comp
}

func TestAddMicrocontrollerOnly(t *testing.T) {
	e := New(Options{Mode: models.ModeGeneral})

	snap, comp, err := e.Add(models.TypeArduinoUno, 50, 50)
	require.NoError(t, err)

	assert.Len(t, snap.Circuit.Components, 1)
	assert.Equal(t, comp.ID, snap.Circuit.MicrocontrollerID)
	assert.True(t, strings.HasPrefix(comp.ID, "arduino-uno-"))
	assert.Equal(t, models.Position{X: 20, Y: 20}, comp.Position)
	assert.Equal(t, codegen.NoComponentsPlaceholder, snap.Code)
	assert.Equal(t, 1, snap.Revision)
}

func TestAddRejectsSecondMicrocontroller(t *testing.T) {
	e := New(Options{Mode: models.ModeGeneral})
	uno := addOK(t, e, models.TypeArduinoUno)

	before := e.Snapshot()
	snap, _, err := e.Add(models.TypeESP32, 300, 300)
	assert.True(t, errors.Is(err, ErrMicrocontrollerExists))
	assert.True(t, IsAdvisory(err))
	assert.Equal(t, before, snap)
	assert.Equal(t, uno.ID, snap.Circuit.MicrocontrollerID)
	assert.Len(t, snap.Circuit.Components, 1)
}

func TestAddAssignsCatalogDefaults(t *testing.T) {
	e := New(Options{Mode: models.ModeGeneral})
	addOK(t, e, models.TypeArduinoUno)
	led := addOK(t, e, models.TypeLEDRed)
	btn := addOK(t, e, models.TypePushbutton)

	assert.Equal(t, models.Pins{
		{Name: "anode", Value: models.Digital(10)},
		{Name: "cathode", Value: models.Ground},
	}, led.Pins)
	assert.Equal(t, models.Pins{
		{Name: "pin", Value: models.Digital(2)},
		{Name: "gnd", Value: models.Ground},
	}, btn.Pins)
	assert.Equal(t, models.Position{X: 100, Y: 150}, led.Position)
}

func TestAddUnknownType(t *testing.T) {
	e := New(Options{})
	_, _, err := e.Add("flux-capacitor", 0, 0)
	assert.True(t, errors.Is(err, ErrUnknownComponentType))
	assert.Equal(t, 0, e.Snapshot().Revision)
}

func TestGeneralAllowsDuplicateTypes(t *testing.T) {
	e := New(Options{Mode: models.ModeGeneral})
	addOK(t, e, models.TypeLEDRed)
	addOK(t, e, models.TypeLEDRed)
	assert.Len(t, e.Snapshot().Circuit.Components, 2)
}

func TestConstrainedEditorScenario(t *testing.T) {
	e := New(Options{Mode: models.ModeConstrained})
	assert.Equal(t, models.PinPolicyStrict, e.PinPolicy())
	assert.Equal(t, codegen.BasicPlaceholder, e.Snapshot().Code)

	addOK(t, e, models.TypeArduinoUno)
	led := addOK(t, e, models.TypeLEDRed)
	addOK(t, e, models.TypePushbutton)

	snap := e.Snapshot()
	assert.Contains(t, snap.Code, "const int LED_PIN = 10;")
	assert.Contains(t, snap.Code, "const int BUTTON_PIN = 2;")

	rejected, err := e.ChangePin(led.ID, "anode", models.Digital(2))
	assert.True(t, errors.Is(err, ErrPinInUse))
	assert.Equal(t, snap, rejected)
	v, _ := rejected.Circuit.Components[1].Pins.Get("anode")
	assert.Equal(t, models.Digital(10), v)

	changed, err := e.ChangePin(led.ID, "anode", models.Digital(7))
	require.NoError(t, err)
	assert.Contains(t, changed.Code, "const int LED_PIN = 7;")
}

func TestConstrainedEditorRejectsOffPaletteAndDuplicates(t *testing.T) {
	e := New(Options{Mode: models.ModeConstrained})

	_, _, err := e.Add(models.TypeBuzzer, 0, 0)
	assert.True(t, errors.Is(err, ErrNotInPalette))

	addOK(t, e, models.TypeLEDRed)
	_, _, err = e.Add(models.TypeLEDRed, 0, 0)
	assert.True(t, errors.Is(err, ErrDuplicateComponent))
	assert.Len(t, e.Snapshot().Circuit.Components, 1)
	assert.Equal(t, ConstrainedPalette, e.Palette())
}

func TestConstrainedButtonCannotTakeLEDPin(t *testing.T) {
	e := New(Options{Mode: models.ModeConstrained})
	addOK(t, e, models.TypeLEDRed)
	btn := addOK(t, e, models.TypePushbutton)

	_, err := e.ChangePin(btn.ID, "pin", models.Digital(10))
	assert.True(t, errors.Is(err, ErrPinInUse))

	avail, err := e.AvailablePins(btn.ID)
	require.NoError(t, err)
	assert.NotContains(t, avail.Digital, 10)
	assert.Contains(t, avail.Digital, 2)
	assert.Empty(t, avail.Analog)
}

func TestConstrainedRemovedPartReleasesItsPin(t *testing.T) {
	e := New(Options{Mode: models.ModeConstrained})
	addOK(t, e, models.TypeArduinoUno)
	led := addOK(t, e, models.TypeLEDRed)
	btn := addOK(t, e, models.TypePushbutton)

	_, err := e.ChangePin(led.ID, "anode", models.Digital(5))
	require.NoError(t, err)
	_, err = e.Remove(led.ID)
	require.NoError(t, err)

	// Without an LED every in-range pin is free for the button.
	avail, err := e.AvailablePins(btn.ID)
	require.NoError(t, err)
	assert.Equal(t, []int{2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13}, avail.Digital)
	_, err = e.ChangePin(btn.ID, "pin", models.Digital(5))
	require.NoError(t, err)
	_, err = e.ChangePin(btn.ID, "pin", models.Digital(10))
	require.NoError(t, err)

	// The re-added LED cannot keep its default 10 and takes the first free pin.
	snap, again, err := e.Add(models.TypeLEDRed, 200, 200)
	require.NoError(t, err)
	v, _ := again.Pins.Get("anode")
	assert.Equal(t, models.Digital(2), v)
	assert.Contains(t, snap.Code, "const int LED_PIN = 2;")
	assert.Contains(t, snap.Code, "const int BUTTON_PIN = 10;")

	_, err = e.ChangePin(btn.ID, "pin", models.Digital(2))
	assert.True(t, errors.Is(err, ErrPinInUse))
}

func TestConstrainedRolePinsStayDigital(t *testing.T) {
	e := New(Options{Mode: models.ModeConstrained})
	addOK(t, e, models.TypeArduinoUno)
	led := addOK(t, e, models.TypeLEDRed)
	btn := addOK(t, e, models.TypePushbutton)

	_, err := e.ChangePin(led.ID, "anode", models.Ground)
	assert.True(t, errors.Is(err, ErrInvalidPin))
	_, err = e.ChangePin(btn.ID, "pin", models.Analog("A0"))
	assert.True(t, errors.Is(err, ErrInvalidPin))

	// The cathode is not a role pin.
	_, err = e.ChangePin(led.ID, "cathode", models.Ground)
	assert.NoError(t, err)
}

func TestConstrainedResetFreesBothRoles(t *testing.T) {
	e := New(Options{Mode: models.ModeConstrained})
	addOK(t, e, models.TypeLEDRed)
	btn := addOK(t, e, models.TypePushbutton)
	_, err := e.ChangePin(btn.ID, "pin", models.Digital(4))
	require.NoError(t, err)

	e.Reset()
	led := addOK(t, e, models.TypeLEDRed)
	btn = addOK(t, e, models.TypePushbutton)
	v, _ := led.Pins.Get("anode")
	assert.Equal(t, models.Digital(10), v)
	v, _ = btn.Pins.Get("pin")
	assert.Equal(t, models.Digital(2), v)
}

func TestAvailablePinsForAnalogInput(t *testing.T) {
	e := New(Options{Mode: models.ModeGeneral})
	first := addOK(t, e, models.TypePotentiometer)
	second := addOK(t, e, models.TypePotentiometer)
	led := addOK(t, e, models.TypeLEDRed)

	// first holds A0 by default, so second may not take it.
	avail, err := e.AvailablePins(second.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"A1", "A2", "A3", "A4", "A5"}, avail.Analog)

	avail, err = e.AvailablePins(first.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"A0", "A1", "A2", "A3", "A4", "A5"}, avail.Analog)

	avail, err = e.AvailablePins(led.ID)
	require.NoError(t, err)
	assert.Empty(t, avail.Analog)
	assert.Contains(t, avail.Digital, 10, "a component's own pin stays available to it")
	assert.Equal(t, []int{3, 5, 6, 9, 10, 11}, avail.PWM)

	_, err = e.AvailablePins("missing")
	assert.True(t, errors.Is(err, ErrComponentNotFound))
}

func TestStrictPolicyInGeneralMode(t *testing.T) {
	e := New(Options{Mode: models.ModeGeneral, PinPolicy: models.PinPolicyStrict})
	led := addOK(t, e, models.TypeLEDRed)
	addOK(t, e, models.TypePushbutton)

	_, err := e.ChangePin(led.ID, "anode", models.Digital(2))
	assert.True(t, errors.Is(err, ErrPinInUse))

	// A second LED does not steal pin 10; its anode starts unconnected.
	second := addOK(t, e, models.TypeLEDGreen)
	v, _ := second.Pins.Get("anode")
	assert.True(t, v.IsGround())
}

func TestPermissivePolicyAppliesCollisions(t *testing.T) {
	e := New(Options{Mode: models.ModeGeneral})
	assert.Equal(t, models.PinPolicyPermissive, e.PinPolicy())
	led := addOK(t, e, models.TypeLEDRed)
	addOK(t, e, models.TypePushbutton)

	snap, err := e.ChangePin(led.ID, "anode", models.Digital(2))
	require.NoError(t, err)
	v, _ := snap.Circuit.Components[0].Pins.Get("anode")
	assert.Equal(t, models.Digital(2), v)
}

func TestChangePinValidation(t *testing.T) {
	e := New(Options{Mode: models.ModeGeneral})
	led := addOK(t, e, models.TypeLEDRed)

	_, err := e.ChangePin("nope", "anode", models.Digital(3))
	assert.True(t, errors.Is(err, ErrComponentNotFound))

	_, err = e.ChangePin(led.ID, "gate", models.Digital(3))
	assert.True(t, errors.Is(err, ErrUnknownPin))

	_, err = e.ChangePin(led.ID, "anode", models.Digital(1))
	assert.True(t, errors.Is(err, ErrInvalidPin))

	_, err = e.ChangePin(led.ID, "anode", models.Analog("A9"))
	assert.True(t, errors.Is(err, ErrInvalidPin))

	snap, err := e.ChangePin(led.ID, "anode", models.Ground)
	require.NoError(t, err)
	assert.False(t, snap.Circuit.Components[0].Pins.Has("anode"))
}

func TestMoveResizeRemove(t *testing.T) {
	e := New(Options{Mode: models.ModeGeneral})
	uno := addOK(t, e, models.TypeArduinoUno)
	led := addOK(t, e, models.TypeLEDRed)

	snap, err := e.Move(led.ID, -5, 400)
	require.NoError(t, err)
	assert.Equal(t, models.Position{X: -5, Y: 400}, snap.Circuit.Components[1].Position)

	snap, err = e.Resize(led.ID, 1.5)
	require.NoError(t, err)
	assert.Equal(t, 1.5, snap.Circuit.Components[1].Scale())

	_, err = e.Resize(led.ID, 0)
	assert.True(t, errors.Is(err, ErrInvalidScale))

	snap, err = e.Remove(uno.ID)
	require.NoError(t, err)
	assert.Empty(t, snap.Circuit.MicrocontrollerID)
	assert.Len(t, snap.Circuit.Components, 1)
	assert.Equal(t, codegen.NoMicrocontrollerPlaceholder, snap.Code)

	_, err = e.Remove(uno.ID)
	assert.True(t, errors.Is(err, ErrComponentNotFound))
}

func TestSnapshotsAreIsolated(t *testing.T) {
	e := New(Options{Mode: models.ModeGeneral})
	led := addOK(t, e, models.TypeLEDRed)

	snap := e.Snapshot()
	snap.Circuit.Components[0].Pins[0].Value = models.Digital(3)

	v, _ := e.Snapshot().Circuit.Components[0].Pins.Get("anode")
	assert.Equal(t, models.Digital(10), v, "mutating a snapshot must not reach %s", led.ID)
}

func TestResetAndSubscribe(t *testing.T) {
	e := New(Options{Mode: models.ModeGeneral})
	ch, cancel := e.Subscribe()

	addOK(t, e, models.TypeArduinoUno)
	addOK(t, e, models.TypeLEDRed)

	latest := <-ch
	assert.Equal(t, 2, latest.Revision, "only the newest snapshot is kept")

	snap := e.Reset()
	assert.Empty(t, snap.Circuit.Components)
	assert.Equal(t, 3, (<-ch).Revision)

	cancel()
	cancel()
	_, open := <-ch
	assert.False(t, open)
}

func TestDropPositionClamps(t *testing.T) {
	assert.Equal(t, models.Position{X: 20, Y: 20}, DropPosition(0, 0))
	assert.Equal(t, models.Position{X: 400, Y: 250}, DropPosition(500, 300))
}
