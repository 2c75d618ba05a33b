package codegen

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/circuit-designer/backend/internal/catalog"
	"github.com/circuit-designer/backend/internal/models"
)

const (
	// NoMicrocontrollerPlaceholder is returned while the circuit has no board.
	NoMicrocontrollerPlaceholder = "// Add a microcontroller and components to generate code"
	// NoComponentsPlaceholder is returned while only the board is placed.
	NoComponentsPlaceholder = "// Add components to the canvas to generate Arduino code"

	emptyLoopBody = "  // Add components to generate control logic\n"
)

// peripheral is a non-microcontroller component with its position among the
// peripherals. The index is part of every generated identifier, so header,
// declarations, setup and loop all agree on names.
type peripheral struct {
	models.PlacedComponent
	Index int
	Label string
}

// pinVar synthesizes the constant name for one pin, e.g. LED_RED_ANODE_0.
func (p peripheral) pinVar(pin string) string {
	name := strings.ToUpper(strings.ReplaceAll(string(p.Type), "-", "_")) +
		"_" + strings.ToUpper(pin) + "_" + strconv.Itoa(p.Index)
	if name[0] >= '0' && name[0] <= '9' {
		name = "_" + name
	}
	return name
}

func (p peripheral) rule() typeRule {
	return rules[p.Type]
}

// AdvancedGenerator handles any mix of catalog components with a fixed,
// narrow control heuristic: a button drives an LED, otherwise LEDs blink,
// and an ultrasonic sensor adds a distance printout.
type AdvancedGenerator struct {
	catalog *catalog.Catalog
}

func NewAdvancedGenerator(cat *catalog.Catalog) *AdvancedGenerator {
	return &AdvancedGenerator{catalog: cat}
}

func (g *AdvancedGenerator) Generate(circuit models.Circuit) string {
	mcu, ok := circuit.Microcontroller()
	if !ok {
		return NoMicrocontrollerPlaceholder
	}
	periph := g.peripherals(circuit)
	if len(periph) == 0 {
		return NoComponentsPlaceholder
	}

	var b strings.Builder
	writeHeader(&b, mcu, periph)
	b.WriteString("\n")
	writePinDefinitions(&b, periph)
	b.WriteString("\n")

	b.WriteString("void setup() {\n")
	b.WriteString("  Serial.begin(9600);\n")
	writeSetup(&b, periph)
	b.WriteString("}\n\n")

	b.WriteString("void loop() {\n")
	writeLoop(&b, periph)
	b.WriteString("  delay(10);\n")
	b.WriteString("}\n")
	return b.String()
}

func (g *AdvancedGenerator) peripherals(circuit models.Circuit) []peripheral {
	comps := circuit.Peripherals()
	out := make([]peripheral, len(comps))
	for i, c := range comps {
		out[i] = peripheral{
			PlacedComponent: c,
			Index:           i,
			Label:           g.catalog.MustLookup(c.Type).Label,
		}
	}
	return out
}

func writeHeader(b *strings.Builder, mcu models.PlacedComponent, periph []peripheral) {
	b.WriteString("// Auto-Generated Arduino Code\n")
	fmt.Fprintf(b, "// Microcontroller: %s\n", strings.ToUpper(strings.ReplaceAll(string(mcu.Type), "-", " ")))
	fmt.Fprintf(b, "// Components: %d\n", len(periph))
	b.WriteString("//\n")
	b.WriteString("// Component Configuration:\n")
	for _, p := range periph {
		connected := p.Pins.Connected()
		if len(connected) == 0 {
			fmt.Fprintf(b, "// %d. %s\n", p.Index+1, p.Label)
			continue
		}
		parts := make([]string, len(connected))
		for i, pin := range connected {
			parts[i] = pin.Name + "=" + pin.Value.String()
		}
		fmt.Fprintf(b, "// %d. %s (%s)\n", p.Index+1, p.Label, strings.Join(parts, ", "))
	}
}

// writePinDefinitions emits one constant per synthesized name, first
// occurrence wins.
func writePinDefinitions(b *strings.Builder, periph []peripheral) {
	seen := make(map[string]bool)
	for _, p := range periph {
		for _, pin := range p.Pins.Connected() {
			name := p.pinVar(pin.Name)
			if seen[name] {
				continue
			}
			seen[name] = true
			fmt.Fprintf(b, "const int %s = %s;\n", name, pin.Value)
		}
	}
	if len(seen) == 0 {
		b.WriteString("// No pins connected\n")
	}
}

func writeSetup(b *strings.Builder, periph []peripheral) {
	for _, p := range periph {
		if setup := p.rule().setup; setup != nil {
			setup(b, p)
		}
	}
}

func writeLoop(b *strings.Builder, periph []peripheral) {
	start := b.Len()

	var inputs, outputs []peripheral
	for _, p := range periph {
		switch p.rule().role {
		case roleInput:
			inputs = append(inputs, p)
		case roleOutput:
			outputs = append(outputs, p)
		}
	}

	if len(inputs) > 0 {
		b.WriteString("  // Read Inputs\n")
		for _, p := range inputs {
			p.rule().read(b, p)
		}
		b.WriteString("\n")
	}

	button, hasButton := firstConnected(inputs, models.TypePushbutton)
	leds := drivenLEDs(outputs)

	switch {
	case hasButton && len(leds) > 0:
		led := leds[0]
		b.WriteString("  // Control Outputs\n")
		fmt.Fprintf(b, "  if (button%dState == HIGH) {\n", button.Index)
		for _, pin := range connectedDrives(led) {
			fmt.Fprintf(b, "    digitalWrite(%s, HIGH);  // Turn LED ON\n", led.pinVar(pin))
		}
		b.WriteString("  } else {\n")
		for _, pin := range connectedDrives(led) {
			fmt.Fprintf(b, "    digitalWrite(%s, LOW);   // Turn LED OFF\n", led.pinVar(pin))
		}
		b.WriteString("  }\n")
	case len(leds) > 0:
		b.WriteString("  // Blink Pattern\n")
		for _, led := range leds {
			for _, pin := range connectedDrives(led) {
				fmt.Fprintf(b, "  digitalWrite(%s, HIGH);\n", led.pinVar(pin))
			}
		}
		b.WriteString("  delay(500);\n")
		for _, led := range leds {
			for _, pin := range connectedDrives(led) {
				fmt.Fprintf(b, "  digitalWrite(%s, LOW);\n", led.pinVar(pin))
			}
		}
		b.WriteString("  delay(500);\n")
	}

	for _, p := range periph {
		if p.Type == models.TypeHCSR04 && p.Pins.Has("trig") && p.Pins.Has("echo") {
			writeDistance(b, p)
			break
		}
	}

	if b.Len() == start {
		b.WriteString(emptyLoopBody)
	}
}

// SpeedOfSound is in centimetres per microsecond.
const SpeedOfSound = 0.034

func writeDistance(b *strings.Builder, p peripheral) {
	trig, echo := p.pinVar("trig"), p.pinVar("echo")
	b.WriteString("\n  // Ultrasonic Distance Measurement\n")
	fmt.Fprintf(b, "  digitalWrite(%s, LOW);\n", trig)
	b.WriteString("  delayMicroseconds(2);\n")
	fmt.Fprintf(b, "  digitalWrite(%s, HIGH);\n", trig)
	b.WriteString("  delayMicroseconds(10);\n")
	fmt.Fprintf(b, "  digitalWrite(%s, LOW);\n", trig)
	fmt.Fprintf(b, "  long duration = pulseIn(%s, HIGH);\n", echo)
	fmt.Fprintf(b, "  float distance = duration * %s / 2; // cm\n", strconv.FormatFloat(SpeedOfSound, 'f', -1, 64))
	b.WriteString("  Serial.print(\"Distance: \");\n")
	b.WriteString("  Serial.print(distance);\n")
	b.WriteString("  Serial.println(\" cm\");\n")
}

func firstConnected(ps []peripheral, t models.ComponentType) (peripheral, bool) {
	for _, p := range ps {
		if p.Type == t && p.Pins.Has("pin") {
			return p, true
		}
	}
	return peripheral{}, false
}

// drivenLEDs returns the LED outputs with at least one drive pin wired.
func drivenLEDs(outputs []peripheral) []peripheral {
	var out []peripheral
	for _, p := range outputs {
		if p.Type.IsLED() && len(connectedDrives(p)) > 0 {
			out = append(out, p)
		}
	}
	return out
}

func connectedDrives(p peripheral) []string {
	var out []string
	for _, pin := range p.rule().drives {
		if p.Pins.Has(pin) {
			out = append(out, pin)
		}
	}
	return out
}
