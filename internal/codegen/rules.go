package codegen

import (
	"fmt"
	"strings"

	"github.com/circuit-designer/backend/internal/models"
)

type ioRole int

const (
	roleNone ioRole = iota
	roleInput
	roleOutput
)

// typeRule is what one component type contributes to setup and loop.
type typeRule struct {
	role ioRole
	// setup writes pinMode directives or library notes.
	setup func(b *strings.Builder, p peripheral)
	// read writes the loop read statement of an input.
	read func(b *strings.Builder, p peripheral)
	// drives lists the pins the control logic switches on an LED output.
	drives []string
}

// rules must hold an entry for every component type; init enforces it.
var rules = map[models.ComponentType]typeRule{
	models.TypeArduinoUno:  {},
	models.TypeArduinoMega: {},
	models.TypeArduinoNano: {},
	models.TypeESP32:       {},
	models.TypePiPico:      {},

	models.TypeLEDRed:    ledRule,
	models.TypeLEDGreen:  ledRule,
	models.TypeLEDBlue:   ledRule,
	models.TypeLEDYellow: ledRule,
	models.TypeLEDWhite:  ledRule,
	models.TypeRGBLED: {
		role: roleOutput,
		setup: func(b *strings.Builder, p peripheral) {
			for _, ch := range []string{"r", "g", "b"} {
				pinMode(b, p, ch, "OUTPUT", fmt.Sprintf("%s (%s)", p.Label, strings.ToUpper(ch)))
			}
		},
		drives: []string{"r", "g", "b"},
	},

	models.TypePushbutton: {
		role:  roleInput,
		setup: inputSetup("pin"),
		read:  digitalRead("pin", "int button%dState"),
	},
	models.TypeSlideSwitch: {
		role:  roleInput,
		setup: inputSetup("pin"),
		read:  digitalRead("pin", "int switch%dState"),
	},
	models.TypeDIPSwitch8: {
		role:  roleInput,
		setup: inputSetup("pin"),
		read:  digitalRead("pin", "int switch%dState"),
	},
	models.TypePotentiometer: {
		role: roleInput,
		setup: func(b *strings.Builder, p peripheral) {
			b.WriteString("  // Potentiometer on analog pin (no pinMode needed)\n")
		},
		read: func(b *strings.Builder, p peripheral) {
			if !p.Pins.Has("signal") {
				fmt.Fprintf(b, "  // %s: signal not connected\n", p.Label)
				return
			}
			fmt.Fprintf(b, "  int pot%dValue = analogRead(%s);\n", p.Index, p.pinVar("signal"))
		},
	},

	models.TypeLCD1602:  {setup: note("LCD Display - Use LiquidCrystal library", "lcd.begin(16, 2); // Initialize LCD")},
	models.TypeSevenSeg: {setup: note("7-Segment Display - Configure digit pins")},
	models.TypeSSD1306:  {setup: note("OLED Display - Use Adafruit_SSD1306 library")},

	models.TypeDHT22: {
		role:  roleInput,
		setup: note("DHT22 sensor - Use DHT library"),
		read: func(b *strings.Builder, p peripheral) {
			fmt.Fprintf(b, "  // Read DHT22 sensor on pin %s\n", p.pinVar("data"))
			fmt.Fprintf(b, "  // float temp%d = dht.readTemperature();\n", p.Index)
			fmt.Fprintf(b, "  // float humidity%d = dht.readHumidity();\n", p.Index)
		},
	},
	models.TypeHCSR04: {
		setup: func(b *strings.Builder, p peripheral) {
			pinMode(b, p, "trig", "OUTPUT", "Ultrasonic TRIG")
			pinMode(b, p, "echo", "INPUT", "Ultrasonic ECHO")
		},
	},
	models.TypePIRSensor: {
		role:  roleInput,
		setup: inputSetup("out"),
		read:  digitalRead("out", "int motion%d"),
	},
	models.TypeMembraneKeypad: {setup: note("4x4 Keypad - Use Keypad library")},

	models.TypeServo: {
		setup: func(b *strings.Builder, p peripheral) {
			pinMode(b, p, "signal", "OUTPUT", p.Label)
			b.WriteString("  // Use Servo library for precise control\n")
		},
	},
	models.TypeBuzzer: {
		role:  roleOutput,
		setup: outputSetup("pin"),
	},
	models.TypeRelayModule: {
		role: roleOutput,
		setup: func(b *strings.Builder, p peripheral) {
			pinMode(b, p, "in", "OUTPUT", p.Label)
			if p.Pins.Has("in") {
				fmt.Fprintf(b, "  digitalWrite(%s, LOW); // Start with relay OFF\n", p.pinVar("in"))
			}
		},
	},

	models.TypeResistor:  {},
	models.TypeNeopixels: {setup: note("NeoPixel Strip - Use Adafruit_NeoPixel library")},
}

var ledRule = typeRule{
	role:   roleOutput,
	setup:  outputSetup("anode"),
	drives: []string{"anode"},
}

func init() {
	for _, t := range models.AllComponentTypes {
		if _, ok := rules[t]; !ok {
			panic(fmt.Sprintf("codegen: no generation rule for component type %q", t))
		}
	}
}

func pinMode(b *strings.Builder, p peripheral, pin, mode, comment string) {
	if !p.Pins.Has(pin) {
		fmt.Fprintf(b, "  // %s: %s not connected\n", comment, pin)
		return
	}
	pad := "  "
	if mode == "INPUT" {
		pad = "   "
	}
	fmt.Fprintf(b, "  pinMode(%s, %s);%s// %s\n", p.pinVar(pin), mode, pad, comment)
}

func outputSetup(pin string) func(*strings.Builder, peripheral) {
	return func(b *strings.Builder, p peripheral) {
		pinMode(b, p, pin, "OUTPUT", p.Label)
	}
}

func inputSetup(pin string) func(*strings.Builder, peripheral) {
	return func(b *strings.Builder, p peripheral) {
		pinMode(b, p, pin, "INPUT", p.Label)
	}
}

func digitalRead(pin, decl string) func(*strings.Builder, peripheral) {
	return func(b *strings.Builder, p peripheral) {
		if !p.Pins.Has(pin) {
			fmt.Fprintf(b, "  // %s: %s not connected\n", p.Label, pin)
			return
		}
		fmt.Fprintf(b, "  %s = digitalRead(%s);\n", fmt.Sprintf(decl, p.Index), p.pinVar(pin))
	}
}

func note(lines ...string) func(*strings.Builder, peripheral) {
	return func(b *strings.Builder, _ peripheral) {
		for _, l := range lines {
			fmt.Fprintf(b, "  // %s\n", l)
		}
	}
}
