// Package playback provides the kiosk playback control state machine and polling loop.
package playback

// Mode represents the selection mode.
type Mode int

const (
	ModeNormal   Mode = iota // Buttons control playback
	ModeShifting             // Shift held, previous/next select the pending bank
)

// String returns the string representation of the mode.
func (m Mode) String() string {
	switch m {
	case ModeNormal:
		return "normal"
	case ModeShifting:
		return "shifting"
	default:
		return "unknown"
	}
}

// Snapshot is a consistent copy of the controller state.
type Snapshot struct {
	Mode        Mode
	CurrentBank int
	PendingBank int
	ClipIndex   int // -1 when unknown
	ClipCount   int
	Hold        bool
	Shuffle     bool
}

// DisplayBank returns the bank the display shows: the pending bank while shift is held.
func (s Snapshot) DisplayBank() int {
	if s.Mode == ModeShifting {
		return s.PendingBank
	}
	return s.CurrentBank
}
