package models

import "strings"

// ComponentType identifies a catalog entry.
type ComponentType string

const (
	// Microcontrollers
	TypeArduinoUno  ComponentType = "arduino-uno"
	TypeArduinoMega ComponentType = "arduino-mega"
	TypeArduinoNano ComponentType = "arduino-nano"
	TypeESP32       ComponentType = "esp32"
	TypePiPico      ComponentType = "pi-pico"

	// LEDs
	TypeLEDRed    ComponentType = "led-red"
	TypeLEDGreen  ComponentType = "led-green"
	TypeLEDBlue   ComponentType = "led-blue"
	TypeLEDYellow ComponentType = "led-yellow"
	TypeLEDWhite  ComponentType = "led-white"
	TypeRGBLED    ComponentType = "rgb-led"

	// Inputs
	TypePushbutton    ComponentType = "pushbutton"
	TypeSlideSwitch   ComponentType = "slide-switch"
	TypeDIPSwitch8    ComponentType = "dip-switch-8"
	TypePotentiometer ComponentType = "potentiometer"

	// Displays
	TypeLCD1602  ComponentType = "lcd1602"
	TypeSevenSeg ComponentType = "7segment"
	TypeSSD1306  ComponentType = "ssd1306"

	// Sensors
	TypeDHT22          ComponentType = "dht22"
	TypeHCSR04         ComponentType = "hc-sr04"
	TypePIRSensor      ComponentType = "pir-sensor"
	TypeMembraneKeypad ComponentType = "membrane-keypad"

	// Actuators
	TypeServo       ComponentType = "servo"
	TypeBuzzer      ComponentType = "buzzer"
	TypeRelayModule ComponentType = "relay-module"

	// Passive
	TypeResistor  ComponentType = "resistor"
	TypeNeopixels ComponentType = "neopixels"
)

// AllComponentTypes lists the closed set of component types in palette order.
var AllComponentTypes = []ComponentType{
	TypeArduinoUno, TypeArduinoMega, TypeArduinoNano, TypeESP32, TypePiPico,
	TypeLEDRed, TypeLEDGreen, TypeLEDBlue, TypeLEDYellow, TypeLEDWhite, TypeRGBLED,
	TypePushbutton, TypeSlideSwitch, TypeDIPSwitch8, TypePotentiometer,
	TypeLCD1602, TypeSevenSeg, TypeSSD1306,
	TypeDHT22, TypeHCSR04, TypePIRSensor, TypeMembraneKeypad,
	TypeServo, TypeBuzzer, TypeRelayModule,
	TypeResistor, TypeNeopixels,
}

// Valid reports whether t is a member of the closed type set.
func (t ComponentType) Valid() bool {
	for _, known := range AllComponentTypes {
		if t == known {
			return true
		}
	}
	return false
}

// IsLED reports whether t is any single-colour or RGB LED.
func (t ComponentType) IsLED() bool {
	return strings.HasPrefix(string(t), "led-") || t == TypeRGBLED
}

// Category is the functional group of a component.
type Category string

const (
	CategoryMicrocontroller Category = "microcontroller"
	CategoryInput           Category = "input"
	CategoryOutput          Category = "output"
	CategorySensor          Category = "sensor"
	CategoryDisplay         Category = "display"
	CategoryActuator        Category = "actuator"
	CategoryPassive         Category = "passive"
)

// ComponentMetadata is immutable reference data for one component type.
type ComponentMetadata struct {
	Type        ComponentType `json:"type" yaml:"type"`
	Name        string        `json:"name" yaml:"name"`
	Label       string        `json:"label" yaml:"label"` // used in generated code comments
	Icon        string        `json:"icon" yaml:"icon"`
	Category    Category      `json:"category" yaml:"category"`
	PinCount    int           `json:"pinCount" yaml:"pin_count"`
	DefaultPins Pins          `json:"defaultPins,omitempty" yaml:"default_pins,omitempty"`
	Description string        `json:"description" yaml:"description"`
}

// CategoryInfo describes a palette section.
type CategoryInfo struct {
	ID   Category `json:"id" yaml:"id"`
	Name string   `json:"name" yaml:"name"`
	Icon string   `json:"icon" yaml:"icon"`
}
