package types

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"
)

// Component is one construction category selected by a version code.
type Component int

// Components in version-code position order.
const (
	ComponentFrame Component = iota
	ComponentGarage
	ComponentSiding
)

// Components lists every component in position order.
var Components = []Component{ComponentFrame, ComponentGarage, ComponentSiding}

// VersionCodeLength is the number of positions a version code selects.
const VersionCodeLength = 3

var componentNames = map[Component]string{
	ComponentFrame:  "frame",
	ComponentGarage: "garage",
	ComponentSiding: "siding",
}

// componentAlphabets holds the recognized option letters per component:
// A-frame/Hip, Garage/No garage, Stucco/Hardi/Brick.
var componentAlphabets = map[Component]string{
	ComponentFrame:  "AH",
	ComponentGarage: "GN",
	ComponentSiding: "SHB",
}

func (c Component) String() string {
	if name, ok := componentNames[c]; ok {
		return name
	}
	return fmt.Sprintf("component(%d)", int(c))
}

// Alphabet returns the option letters recognized for c.
func (c Component) Alphabet() string {
	return componentAlphabets[c]
}

// Accepts reports whether ch is a recognized option letter for c.
func (c Component) Accepts(ch ComponentChar) bool {
	return strings.IndexByte(c.Alphabet(), byte(ch)) >= 0
}

// ComponentChar is the single-character key of an override palette. The same
// character may be meaningful in more than one component ('H' is both hip
// frame and hardi siding); lookups are positional, not semantic.
type ComponentChar byte

// String returns the character itself, or its 0xHH form for bytes outside
// ASCII.
func (ch ComponentChar) String() string {
	if ch >= utf8.RuneSelf {
		return fmt.Sprintf("0x%02X", byte(ch))
	}
	return string([]byte{byte(ch)})
}

// MarshalText lets ComponentChar serve as a JSON object key. Bytes outside
// ASCII use the 0xHH form so the key stays valid UTF-8.
func (ch ComponentChar) MarshalText() ([]byte, error) {
	return []byte(ch.String()), nil
}

// UnmarshalText accepts exactly one byte or the 0xHH form.
func (ch *ComponentChar) UnmarshalText(text []byte) error {
	switch {
	case len(text) == 1:
		*ch = ComponentChar(text[0])
		return nil
	case len(text) == 4 && text[0] == '0' && (text[1] == 'x' || text[1] == 'X'):
		v, err := strconv.ParseUint(string(text[2:]), 16, 8)
		if err != nil {
			return fmt.Errorf("%w: %q", ErrInvalidComponent, text)
		}
		*ch = ComponentChar(v)
		return nil
	}
	return fmt.Errorf("%w: %q", ErrInvalidComponent, text)
}

// ParseComponentChar converts a one-character string to a ComponentChar.
func ParseComponentChar(s string) (ComponentChar, error) {
	var ch ComponentChar
	if err := ch.UnmarshalText([]byte(s)); err != nil {
		return 0, err
	}
	return ch, nil
}

// IsKnownComponentChar reports whether ch belongs to any component alphabet.
func IsKnownComponentChar(ch ComponentChar) bool {
	for _, c := range Components {
		if c.Accepts(ch) {
			return true
		}
	}
	return false
}

// VersionCode is a validated selection of one option per component.
type VersionCode struct {
	Frame  ComponentChar
	Garage ComponentChar
	Siding ComponentChar
}

// ParseVersionCode validates code strictly: exactly three characters, each in
// its position's alphabet.
func ParseVersionCode(code string) (VersionCode, error) {
	if len(code) != VersionCodeLength {
		return VersionCode{}, fmt.Errorf("%w: %q must be %d characters", ErrInvalidVersionCode, code, VersionCodeLength)
	}
	chars, _ := PositionalChars(code)
	for i, c := range Components {
		if !c.Accepts(chars[i]) {
			return VersionCode{}, fmt.Errorf("%w: %q at %s position (want one of %s)",
				ErrInvalidVersionCode, chars[i], c, c.Alphabet())
		}
	}
	return VersionCode{Frame: chars[0], Garage: chars[1], Siding: chars[2]}, nil
}

// PositionalChars returns the first three characters of code in component
// order. ok is false when code is shorter than three characters; characters
// past the third are ignored.
func PositionalChars(code string) (chars [VersionCodeLength]ComponentChar, ok bool) {
	if len(code) < VersionCodeLength {
		return chars, false
	}
	for i := range chars {
		chars[i] = ComponentChar(code[i])
	}
	return chars, true
}

// Char returns the option selected for c.
func (v VersionCode) Char(c Component) ComponentChar {
	switch c {
	case ComponentFrame:
		return v.Frame
	case ComponentGarage:
		return v.Garage
	case ComponentSiding:
		return v.Siding
	}
	return 0
}

func (v VersionCode) String() string {
	return string([]byte{byte(v.Frame), byte(v.Garage), byte(v.Siding)})
}
