package models

// Position is a canvas coordinate in pixels.
type Position struct {
	X float64 `json:"x" msgpack:"x"`
	Y float64 `json:"y" msgpack:"y"`
}

// Properties is the free-form property bag of a placed component.
type Properties map[string]interface{}

// PropertyScale holds the display scale factor.
const PropertyScale = "scale"

// PlacedComponent is one component instance on the canvas.
type PlacedComponent struct {
	ID         string        `json:"id" msgpack:"id"`
	Type       ComponentType `json:"type" msgpack:"type"`
	Position   Position      `json:"position" msgpack:"position"`
	Pins       Pins          `json:"pins,omitempty" msgpack:"pins,omitempty"`
	Properties Properties    `json:"properties,omitempty" msgpack:"properties,omitempty"`
}

// Scale returns the display scale factor, 1 when unset.
func (c PlacedComponent) Scale() float64 {
	if v, ok := c.Properties[PropertyScale].(float64); ok && v > 0 {
		return v
	}
	return 1
}

// Clone returns a deep copy sharing no mutable state with c.
func (c PlacedComponent) Clone() PlacedComponent {
	out := c
	out.Pins = c.Pins.Clone()
	if c.Properties != nil {
		out.Properties = make(Properties, len(c.Properties))
		for k, v := range c.Properties {
			out.Properties[k] = v
		}
	}
	return out
}

// Circuit is the set of placed components plus the designated
// microcontroller. The microcontroller is referenced by id so it always
// resolves to an element of Components or to nothing.
type Circuit struct {
	Components        []PlacedComponent `json:"components" msgpack:"components"`
	MicrocontrollerID string            `json:"microcontrollerId,omitempty" msgpack:"microcontrollerId,omitempty"`
}

// Clone returns a deep copy of the circuit.
func (c Circuit) Clone() Circuit {
	out := Circuit{
		Components:        make([]PlacedComponent, len(c.Components)),
		MicrocontrollerID: c.MicrocontrollerID,
	}
	for i, comp := range c.Components {
		out.Components[i] = comp.Clone()
	}
	return out
}

// Find returns the component with the given id.
func (c Circuit) Find(id string) (PlacedComponent, int, bool) {
	for i, comp := range c.Components {
		if comp.ID == id {
			return comp, i, true
		}
	}
	return PlacedComponent{}, -1, false
}

// FindType returns the first component of type t in circuit order.
func (c Circuit) FindType(t ComponentType) (PlacedComponent, bool) {
	for _, comp := range c.Components {
		if comp.Type == t {
			return comp, true
		}
	}
	return PlacedComponent{}, false
}

// Microcontroller returns the designated microcontroller, if any.
func (c Circuit) Microcontroller() (PlacedComponent, bool) {
	if c.MicrocontrollerID == "" {
		return PlacedComponent{}, false
	}
	comp, _, ok := c.Find(c.MicrocontrollerID)
	return comp, ok
}

// Peripherals returns every component except the microcontroller, in order.
func (c Circuit) Peripherals() []PlacedComponent {
	out := make([]PlacedComponent, 0, len(c.Components))
	for _, comp := range c.Components {
		if comp.ID != c.MicrocontrollerID {
			out = append(out, comp)
		}
	}
	return out
}
