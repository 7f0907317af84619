package hardware

import (
	"sync"

	zlog "github.com/rs/zerolog/log"
)

// LogDisplay keeps the display content in memory and logs it.
type LogDisplay struct {
	mu     sync.Mutex
	digits [4]rune
	colon  bool
}

func NewLogDisplay() *LogDisplay {
	return &LogDisplay{digits: [4]rune{' ', ' ', ' ', ' '}}
}

func (d *LogDisplay) WriteDigits(pos int, s string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	for _, r := range s {
		if pos < 0 || pos > 3 {
			break
		}
		d.digits[pos] = r
		pos++
	}
	zlog.Debug().Msgf("display: %s", d.stringLocked())
	return nil
}

func (d *LogDisplay) SetColon(on bool) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.colon = on
	return nil
}

func (d *LogDisplay) Clear() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.digits = [4]rune{' ', ' ', ' ', ' '}
	d.colon = false
	return nil
}

// String returns the content as "12:34", or "12 34" with the colon off.
func (d *LogDisplay) String() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.stringLocked()
}

func (d *LogDisplay) stringLocked() string {
	sep := " "
	if d.colon {
		sep = ":"
	}
	return string(d.digits[:2]) + sep + string(d.digits[2:])
}

// LogStrip keeps the last frame in memory.
type LogStrip struct {
	mu    sync.Mutex
	frame []Pixel
}

func NewLogStrip(n int) *LogStrip {
	return &LogStrip{frame: make([]Pixel, n)}
}

func (s *LogStrip) Len() int {
	return len(s.frame)
}

func (s *LogStrip) Render(px []Pixel) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	clear(s.frame)
	copy(s.frame, px)
	return nil
}

// Frame returns a copy of the last rendered frame.
func (s *LogStrip) Frame() []Pixel {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Pixel(nil), s.frame...)
}

// LogIndicator logs state changes.
type LogIndicator struct {
	name string
	mu   sync.Mutex
	on   bool
}

func NewLogIndicator(name string) *LogIndicator {
	return &LogIndicator{name: name}
}

func (i *LogIndicator) Set(on bool) error {
	i.mu.Lock()
	defer i.mu.Unlock()
	if i.on != on {
		zlog.Debug().Msgf("indicator: %s on=%t", i.name, on)
	}
	i.on = on
	return nil
}

func (i *LogIndicator) On() bool {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.on
}
