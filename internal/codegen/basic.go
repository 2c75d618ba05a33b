package codegen

import (
	"fmt"

	"github.com/circuit-designer/backend/internal/models"
)

const (
	// BasicPlaceholder is returned until the three required parts are placed.
	BasicPlaceholder = "// Add Arduino Uno, LED, and Push Button to generate code"

	defaultLEDPin    = 10
	defaultButtonPin = 2
)

const basicTemplate = `// Auto-generated Arduino Code
// LED connected to Digital Pin %[1]s
// Button connected to Digital Pin %[2]s

const int LED_PIN = %[1]s;
const int BUTTON_PIN = %[2]s;

void setup() {
  // Initialize LED pin as output
  pinMode(LED_PIN, OUTPUT);

  // Initialize button pin as input
  pinMode(BUTTON_PIN, INPUT);

  // Start with LED off
  digitalWrite(LED_PIN, LOW);
}

void loop() {
  // Read the button state
  int buttonState = digitalRead(BUTTON_PIN);

  // If button is pressed (HIGH), turn LED on
  if (buttonState == HIGH) {
    digitalWrite(LED_PIN, HIGH);  // LED ON
  } else {
    digitalWrite(LED_PIN, LOW);   // LED OFF
  }

  // Small delay for stability
  delay(10);
}
`

// BasicGenerator emits the fixed LED-follows-button sketch for a circuit of
// one microcontroller, one red LED and one push button.
type BasicGenerator struct{}

func NewBasicGenerator() *BasicGenerator {
	return &BasicGenerator{}
}

func (g *BasicGenerator) Generate(circuit models.Circuit) string {
	_, hasMCU := circuit.Microcontroller()
	led, hasLED := circuit.FindType(models.TypeLEDRed)
	button, hasButton := circuit.FindType(models.TypePushbutton)
	if !hasMCU || !hasLED || !hasButton {
		return BasicPlaceholder
	}

	ledPin := pinOrDefault(led.Pins, "anode", defaultLEDPin)
	buttonPin := pinOrDefault(button.Pins, "pin", defaultButtonPin)
	return fmt.Sprintf(basicTemplate, ledPin, buttonPin)
}

func pinOrDefault(p models.Pins, name string, def int) string {
	if v, ok := p.Get(name); ok && !v.IsGround() {
		return v.String()
	}
	return models.Digital(def).String()
}
