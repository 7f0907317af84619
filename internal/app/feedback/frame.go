package feedback

import (
	"fmt"

	"github.com/osa030/clipkiosk/internal/infra/hardware"
)

// Channel is the strip colour for a mode.
type Channel int

const (
	ChannelWhite Channel = iota // sequential
	ChannelRed                  // shuffle
	ChannelBlue                 // hold
)

func (c Channel) String() string {
	switch c {
	case ChannelRed:
		return "red"
	case ChannelBlue:
		return "blue"
	default:
		return "white"
	}
}

// ModeOf returns the channel for the mode flags. Hold wins over shuffle.
func ModeOf(hold, shuffle bool) Channel {
	switch {
	case hold:
		return ChannelBlue
	case shuffle:
		return ChannelRed
	default:
		return ChannelWhite
	}
}

// Pixel returns a pixel lit at v on the channel.
func (c Channel) Pixel(v uint8) hardware.Pixel {
	switch c {
	case ChannelRed:
		return hardware.Pixel{R: v}
	case ChannelBlue:
		return hardware.Pixel{B: v}
	default:
		return hardware.Pixel{W: v}
	}
}

// Frame maps a playback position to n pixels.
//
// LEDs below the playhead are lit at peak, the playhead LED shows the
// remainder scaled to peak but never less than floor, the rest are off.
// At 0% every LED is off.
func Frame(percent, n int, peak, floor uint8, c Channel) []hardware.Pixel {
	percent = max(0, min(100, percent))
	if percent == 0 {
		floor = 0
	}

	px := make([]hardware.Pixel, n)
	if n == 0 {
		return px
	}

	full := percent * n / 100
	partial := (percent*n - full*100) * int(peak) / 100

	for i := 0; i < full && i < n; i++ {
		px[i] = c.Pixel(peak)
	}
	if full < n {
		px[full] = c.Pixel(max(uint8(partial), floor))
	}
	return px
}

// TwoDigits formats v zero-padded to two digits, keeping the low two digits.
// Negative values render as dashes.
func TwoDigits(v int) string {
	if v < 0 {
		return "--"
	}
	return fmt.Sprintf("%02d", v%100)
}
