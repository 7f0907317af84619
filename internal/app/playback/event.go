package playback

import (
	"github.com/cockroachdb/errors"
)

// Button represents a physical input.
type Button int

const (
	ButtonMode      Button = iota // Toggles shuffle
	ButtonPrevious                // Previous clip, or previous bank while shifting
	ButtonPlayPause               // Toggles pause
	ButtonNext                    // Next clip, or next bank while shifting
	ButtonHold                    // Toggles hold
	ButtonShift                   // Held to select a bank
)

// Buttons lists every button in wiring order.
var Buttons = []Button{ButtonMode, ButtonPrevious, ButtonPlayPause, ButtonNext, ButtonHold, ButtonShift}

// String returns the string representation of the button.
func (b Button) String() string {
	switch b {
	case ButtonMode:
		return "mode"
	case ButtonPrevious:
		return "previous"
	case ButtonPlayPause:
		return "play_pause"
	case ButtonNext:
		return "next"
	case ButtonHold:
		return "hold"
	case ButtonShift:
		return "shift"
	default:
		return "unknown"
	}
}

// ParseButton parses a button name as returned by String.
func ParseButton(s string) (Button, error) {
	for _, b := range Buttons {
		if b.String() == s {
			return b, nil
		}
	}
	return 0, errors.Newf("unknown button %q", s)
}

// Event represents a debounced button edge.
type Event struct {
	Button  Button
	Pressed bool // false on release; only shift reports releases
}
