package simulation

import (
	"testing"

	"github.com/circuit-designer/backend/internal/models"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fullCircuit() models.Circuit {
	return models.Circuit{
		Components: []models.PlacedComponent{
			{ID: "uno", Type: models.TypeArduinoUno},
			{ID: "led", Type: models.TypeLEDRed},
			{ID: "btn", Type: models.TypePushbutton},
			{ID: "led2", Type: models.TypeLEDGreen},
		},
		MicrocontrollerID: "uno",
	}
}

func TestStartRequiresParts(t *testing.T) {
	s := New()
	c := fullCircuit()

	noMCU := c.Clone()
	noMCU.MicrocontrollerID = ""
	assert.True(t, errors.Is(s.Start(noMCU), ErrCircuitIncomplete))

	noButton := c.Clone()
	noButton.Components = noButton.Components[:2]
	assert.True(t, errors.Is(s.Start(noButton), ErrCircuitIncomplete))
	assert.False(t, s.Running())

	require.NoError(t, s.Start(c))
	assert.True(t, s.Running())
}

func TestPressMirrorsLED(t *testing.T) {
	s := New()
	c := fullCircuit()
	require.NoError(t, s.Start(c))

	assert.True(t, s.Interact(c, "btn", ActionPress))
	v := s.Project(c)
	assert.True(t, v["led"].Lit)
	assert.True(t, v["btn"].Pressed)
	assert.False(t, v["led2"].Lit, "only the first LED is driven")

	assert.False(t, s.Interact(c, "btn", ActionPress), "repeat press changes nothing")

	assert.True(t, s.Interact(c, "btn", ActionRelease))
	v = s.Project(c)
	assert.False(t, v["led"].Lit)
	assert.False(t, v["btn"].Pressed)
}

func TestInteractIgnoredWhenStoppedOrNotAButton(t *testing.T) {
	s := New()
	c := fullCircuit()

	assert.False(t, s.Interact(c, "btn", ActionPress))
	assert.False(t, s.Project(c)["led"].Lit)

	require.NoError(t, s.Start(c))
	assert.False(t, s.Interact(c, "led", ActionPress))
	assert.False(t, s.Interact(c, "missing", ActionPress))
	assert.False(t, s.Interact(c, "btn", Action("double-click")))
}

func TestStopForcesLEDOff(t *testing.T) {
	s := New()
	c := fullCircuit()
	require.NoError(t, s.Start(c))
	s.Interact(c, "btn", ActionPress)

	s.Stop()
	st := s.State(c)
	assert.False(t, st.Running)
	assert.False(t, st.LEDOn)
	assert.False(t, st.Visual["led"].Lit)
	assert.False(t, st.Visual["btn"].Pressed)
}

func TestProjectOnlyListsPresentComponents(t *testing.T) {
	s := New()
	c := fullCircuit()
	require.NoError(t, s.Start(c))
	s.Interact(c, "btn", ActionPress)

	c.Components = c.Components[:2]
	v := s.Project(c)
	assert.Len(t, v, 2)
	assert.NotContains(t, v, "btn")
}
