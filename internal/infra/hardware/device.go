// Package hardware drives the kiosk's display, LED strip, power LED and buttons.
package hardware

// Pixel is one RGBW LED value.
type Pixel struct {
	R, G, B, W uint8
}

// Display is a 4-digit 7-segment display with a center colon.
type Display interface {
	// WriteDigits writes s starting at digit pos (0-3). Characters past the last digit are dropped.
	WriteDigits(pos int, s string) error
	SetColon(on bool) error
	Clear() error
}

// Strip is an addressable LED strip.
type Strip interface {
	Len() int
	// Render shows px; missing trailing pixels are turned off.
	Render(px []Pixel) error
}

// Indicator is a single on/off LED.
type Indicator interface {
	Set(on bool) error
}
