package catalog

import (
	"strings"
	"testing"

	"github.com/circuit-designer/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultCatalogCoversEveryType(t *testing.T) {
	c := Default()
	for _, ct := range models.AllComponentTypes {
		meta, ok := c.Lookup(ct)
		if assert.True(t, ok, "missing %s", ct) {
			assert.Equal(t, ct, meta.Type)
			assert.NotEmpty(t, meta.Name)
			assert.NotEmpty(t, meta.Label)
			assert.Positive(t, meta.PinCount)
		}
	}
	assert.Len(t, c.All(), len(models.AllComponentTypes))
}

func TestDefaultPinsKeepDeclarationOrder(t *testing.T) {
	meta := Default().MustLookup(models.TypeHCSR04)
	names := make([]string, 0, len(meta.DefaultPins))
	for _, p := range meta.DefaultPins {
		names = append(names, p.Name)
	}
	assert.Equal(t, []string{"trig", "echo", "vcc", "gnd"}, names)

	led := Default().MustLookup(models.TypeLEDRed)
	assert.Equal(t, models.Pins{
		{Name: "anode", Value: models.Digital(10)},
		{Name: "cathode", Value: models.Ground},
	}, led.DefaultPins)

	pot := Default().MustLookup(models.TypePotentiometer)
	signal, ok := pot.DefaultPins.Get("signal")
	require.True(t, ok)
	assert.True(t, signal.IsAnalog())
	assert.Equal(t, "A0", signal.String())
}

func TestLookupReturnsCopy(t *testing.T) {
	meta := Default().MustLookup(models.TypePushbutton)
	meta.DefaultPins[0].Value = models.Digital(13)

	again := Default().MustLookup(models.TypePushbutton)
	v, _ := again.DefaultPins.Get("pin")
	assert.Equal(t, models.Digital(2), v)
}

func TestCategories(t *testing.T) {
	c := Default()
	cats := c.Categories()
	require.Len(t, cats, 7)
	assert.Equal(t, models.CategoryMicrocontroller, cats[0].ID)

	mcus := c.ByCategory(models.CategoryMicrocontroller)
	assert.Len(t, mcus, 5)
	assert.True(t, c.IsMicrocontroller(models.TypeESP32))
	assert.False(t, c.IsMicrocontroller(models.TypeLEDRed))
}

func TestLoadRejectsIncompleteTable(t *testing.T) {
	doc := `
categories:
  - id: output
    name: Output Devices
components:
  - type: led-red
    name: LED (Red)
    label: Red LED
    category: output
    pin_count: 2
`
	_, err := Load(strings.NewReader(doc))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing entry")
}

func TestLoadRejectsDuplicates(t *testing.T) {
	doc := `
categories:
  - id: output
    name: Output Devices
components:
  - type: buzzer
    name: Buzzer
    category: output
    pin_count: 2
  - type: buzzer
    name: Buzzer
    category: output
    pin_count: 2
`
	_, err := Load(strings.NewReader(doc))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate entry for buzzer")
}

func TestLoadRejectsUnknownType(t *testing.T) {
	doc := `
categories: []
components:
  - type: flux-capacitor
    name: Flux
    category: passive
    pin_count: 3
`
	_, err := Load(strings.NewReader(doc))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown component type")
}
