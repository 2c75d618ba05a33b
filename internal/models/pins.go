package models

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/vmihailenco/msgpack/v5"
	"gopkg.in/yaml.v3"
)

// PinValue is what a component pin is wired to: a digital pin number, an
// analog token such as "A0", or Ground (the zero value) meaning unconnected.
// Ground is never part of conflict checks or generated code.
type PinValue struct {
	number int
	analog string
}

// Ground is the unconnected/ground sentinel, encoded as 0.
var Ground = PinValue{}

// Digital returns the value for digital pin n.
func Digital(n int) PinValue {
	return PinValue{number: n}
}

// Analog returns the value for an analog token like "A3".
func Analog(token string) PinValue {
	return PinValue{analog: strings.ToUpper(token)}
}

// ParsePinValue accepts "A0".."A5"-style tokens or non-negative integers.
func ParsePinValue(s string) (PinValue, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Ground, errors.New("empty pin value")
	}
	if s[0] == 'A' || s[0] == 'a' {
		if _, err := strconv.Atoi(s[1:]); err != nil {
			return Ground, errors.Errorf("invalid analog pin %q", s)
		}
		return Analog(s), nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return Ground, errors.Errorf("invalid pin value %q", s)
	}
	return Digital(n), nil
}

func (v PinValue) IsGround() bool { return v.analog == "" && v.number == 0 }
func (v PinValue) IsAnalog() bool { return v.analog != "" }

// Number returns the digital pin number, 0 for analog or ground values.
func (v PinValue) Number() int { return v.number }

func (v PinValue) String() string {
	if v.analog != "" {
		return v.analog
	}
	return strconv.Itoa(v.number)
}

func (v PinValue) MarshalJSON() ([]byte, error) {
	if v.analog != "" {
		return json.Marshal(v.analog)
	}
	return []byte(strconv.Itoa(v.number)), nil
}

func (v *PinValue) UnmarshalJSON(data []byte) error {
	var raw interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	switch t := raw.(type) {
	case float64:
		if t < 0 || t != float64(int(t)) {
			return errors.Errorf("invalid pin number %v", t)
		}
		*v = Digital(int(t))
	case string:
		parsed, err := ParsePinValue(t)
		if err != nil {
			return err
		}
		*v = parsed
	case nil:
		*v = Ground
	default:
		return errors.Errorf("unsupported pin value %s", string(data))
	}
	return nil
}

func (v *PinValue) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return errors.Errorf("line %d: pin value must be a scalar", node.Line)
	}
	parsed, err := ParsePinValue(node.Value)
	if err != nil {
		return errors.Wrapf(err, "line %d", node.Line)
	}
	*v = parsed
	return nil
}

var (
	_ msgpack.CustomEncoder = PinValue{}
	_ msgpack.CustomDecoder = (*PinValue)(nil)
)

func (v PinValue) EncodeMsgpack(enc *msgpack.Encoder) error {
	if v.analog != "" {
		return enc.EncodeString(v.analog)
	}
	return enc.EncodeInt(int64(v.number))
}

func (v *PinValue) DecodeMsgpack(dec *msgpack.Decoder) error {
	raw, err := dec.DecodeInterfaceLoose()
	if err != nil {
		return err
	}
	switch t := raw.(type) {
	case int64:
		*v = Digital(int(t))
	case uint64:
		*v = Digital(int(t))
	case string:
		parsed, err := ParsePinValue(t)
		if err != nil {
			return err
		}
		*v = parsed
	case nil:
		*v = Ground
	default:
		return errors.Errorf("unsupported msgpack pin value %T", raw)
	}
	return nil
}

// Pin is one named attachment point and its wiring.
type Pin struct {
	Name  string
	Value PinValue
}

// Pins is an insertion-ordered pin map. The order is significant: it drives
// header listing and declaration order in generated code, so every codec on
// this type preserves it.
type Pins []Pin

func (p Pins) Get(name string) (PinValue, bool) {
	for _, pin := range p {
		if pin.Name == name {
			return pin.Value, true
		}
	}
	return Ground, false
}

// Has reports whether the pin exists and is wired to something other than ground.
func (p Pins) Has(name string) bool {
	v, ok := p.Get(name)
	return ok && !v.IsGround()
}

// With returns a copy of p with name set to v, appending if name is new.
func (p Pins) With(name string, v PinValue) Pins {
	out := p.Clone()
	for i := range out {
		if out[i].Name == name {
			out[i].Value = v
			return out
		}
	}
	return append(out, Pin{Name: name, Value: v})
}

func (p Pins) Clone() Pins {
	if p == nil {
		return nil
	}
	out := make(Pins, len(p))
	copy(out, p)
	return out
}

// Connected returns the pins that are not wired to ground, in order.
func (p Pins) Connected() Pins {
	var out Pins
	for _, pin := range p {
		if !pin.Value.IsGround() {
			out = append(out, pin)
		}
	}
	return out
}

func (p Pins) MarshalJSON() ([]byte, error) {
	if p == nil {
		return []byte("null"), nil
	}
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, pin := range p {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(pin.Name)
		if err != nil {
			return nil, err
		}
		val, err := pin.Value.MarshalJSON()
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func (p *Pins) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if tok == nil {
		*p = nil
		return nil
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return errors.New("pins must be a JSON object")
	}
	out := Pins{}
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		name, ok := keyTok.(string)
		if !ok {
			return errors.Errorf("unexpected pin key %v", keyTok)
		}
		var v PinValue
		if err := dec.Decode(&v); err != nil {
			return errors.Wrapf(err, "pin %s", name)
		}
		out = append(out, Pin{Name: name, Value: v})
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	*p = out
	return nil
}

func (p *Pins) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return errors.Errorf("line %d: pins must be a mapping", node.Line)
	}
	out := make(Pins, 0, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		var v PinValue
		if err := node.Content[i+1].Decode(&v); err != nil {
			return errors.Wrapf(err, "pin %s", node.Content[i].Value)
		}
		out = append(out, Pin{Name: node.Content[i].Value, Value: v})
	}
	*p = out
	return nil
}

var (
	_ msgpack.CustomEncoder = Pins(nil)
	_ msgpack.CustomDecoder = (*Pins)(nil)
)

func (p Pins) EncodeMsgpack(enc *msgpack.Encoder) error {
	if p == nil {
		return enc.EncodeNil()
	}
	if err := enc.EncodeMapLen(len(p)); err != nil {
		return err
	}
	for _, pin := range p {
		if err := enc.EncodeString(pin.Name); err != nil {
			return err
		}
		if err := pin.Value.EncodeMsgpack(enc); err != nil {
			return err
		}
	}
	return nil
}

func (p *Pins) DecodeMsgpack(dec *msgpack.Decoder) error {
	n, err := dec.DecodeMapLen()
	if err != nil {
		return err
	}
	if n == -1 {
		*p = nil
		return nil
	}
	out := make(Pins, 0, n)
	for i := 0; i < n; i++ {
		name, err := dec.DecodeString()
		if err != nil {
			return err
		}
		var v PinValue
		if err := v.DecodeMsgpack(dec); err != nil {
			return errors.Wrapf(err, "pin %s", name)
		}
		out = append(out, Pin{Name: name, Value: v})
	}
	*p = out
	return nil
}
