// Package feedback renders playback state on the display, LED strip and power indicator.
package feedback

import (
	"sync"

	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/clipkiosk/internal/infra/hardware"
)

// Display digit positions.
const (
	bankPos = 0
	clipPos = 2
)

// Config holds renderer configuration.
type Config struct {
	MaxBrightness uint8 // Value of a fully lit LED
	PlayheadFloor uint8 // Minimum value of the playhead LED
}

// Renderer drives the output devices. Device write errors are logged and skipped.
type Renderer struct {
	mu      sync.Mutex
	config  Config
	display hardware.Display
	strip   hardware.Strip
	power   hardware.Indicator
}

// NewRenderer creates a renderer over the given devices.
func NewRenderer(config Config, display hardware.Display, strip hardware.Strip, power hardware.Indicator) *Renderer {
	return &Renderer{
		config:  config,
		display: display,
		strip:   strip,
		power:   power,
	}
}

// ShowBank writes the bank field.
func (r *Renderer) ShowBank(bank int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.check("display", r.display.WriteDigits(bankPos, TwoDigits(bank)))
}

// ShowClip writes the clip field.
func (r *Renderer) ShowClip(clip int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.check("display", r.display.WriteDigits(clipPos, TwoDigits(clip)))
}

// ForceColon turns the colon on.
func (r *Renderer) ForceColon() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.check("display", r.display.SetColon(true))
}

// ShowProgress renders the position on the strip in the mode colour.
func (r *Renderer) ShowProgress(percent int, hold, shuffle bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.renderLocked(percent, ModeOf(hold, shuffle))
}

// renderLocked must be called with lock held.
func (r *Renderer) renderLocked(percent int, c Channel) {
	px := Frame(percent, r.strip.Len(), r.config.MaxBrightness, r.config.PlayheadFloor, c)
	r.check("strip", r.strip.Render(px))
}

// PowerOn lights the power indicator.
func (r *Renderer) PowerOn() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.check("power", r.power.Set(true))
}

// Blank shows "----" with the colon off and turns every LED off.
func (r *Renderer) Blank() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.check("display", r.display.Clear())
	r.check("display", r.display.WriteDigits(0, "----"))
	r.check("display", r.display.SetColon(false))
	r.check("strip", r.strip.Render(make([]hardware.Pixel, r.strip.Len())))
	r.check("power", r.power.Set(false))
}

func (r *Renderer) check(device string, err error) {
	if err != nil {
		zlog.Warn().Err(err).Msgf("feedback: %s write failed", device)
	}
}
