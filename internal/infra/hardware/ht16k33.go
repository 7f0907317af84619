package hardware

import (
	"sync"

	"github.com/cockroachdb/errors"
	"periph.io/x/conn/v3/i2c"
)

// HT16K33 commands.
const (
	htOscillatorOn = 0x21
	htDisplayOn    = 0x81 // Display on, blink off
	htBrightness   = 0xE0 // OR'ed with 0-15
	htRAMStart     = 0x00
)

// DefaultHT16K33Address is the backpack address with no jumpers set.
const DefaultHT16K33Address = 0x70

// 4-digit backpack RAM layout: the colon sits between digits 1 and 2.
var htDigitAddr = [4]int{0, 2, 6, 8}

const (
	htColonAddr = 4
	htColonBit  = 0x02
)

var segmentFont = map[rune]byte{
	'0': 0x3F, '1': 0x06, '2': 0x5B, '3': 0x4F, '4': 0x66,
	'5': 0x6D, '6': 0x7D, '7': 0x07, '8': 0x7F, '9': 0x6F,
	'A': 0x77, 'b': 0x7C, 'C': 0x39, 'd': 0x5E, 'E': 0x79, 'F': 0x71,
	'-': 0x40, ' ': 0x00, '_': 0x08,
}

// HT16K33 is a 4-digit 7-segment backpack on I²C.
// Every change rewrites the whole display RAM.
type HT16K33 struct {
	mu  sync.Mutex
	dev *i2c.Dev
	ram [16]byte
}

// NewHT16K33 initializes the controller and clears the display.
func NewHT16K33(bus i2c.Bus, addr uint16, brightness uint8) (*HT16K33, error) {
	if brightness > 15 {
		brightness = 15
	}
	d := &HT16K33{
		dev: &i2c.Dev{Bus: bus, Addr: addr},
	}
	for _, cmd := range []byte{htOscillatorOn, htDisplayOn, htBrightness | brightness} {
		if err := d.dev.Tx([]byte{cmd}, nil); err != nil {
			return nil, errors.Wrapf(err, "failed to init ht16k33 at 0x%02x", addr)
		}
	}
	if err := d.Clear(); err != nil {
		return nil, err
	}
	return d, nil
}

// Segments returns the segment pattern of r, blank for unsupported characters.
func Segments(r rune) byte {
	return segmentFont[r]
}

func (d *HT16K33) WriteDigits(pos int, s string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if pos < 0 || pos > 3 {
		return errors.Newf("digit position %d out of range", pos)
	}
	for _, r := range s {
		if pos > 3 {
			break
		}
		d.ram[htDigitAddr[pos]] = Segments(r)
		pos++
	}
	return d.flushLocked()
}

func (d *HT16K33) SetColon(on bool) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if on {
		d.ram[htColonAddr] = htColonBit
	} else {
		d.ram[htColonAddr] = 0
	}
	return d.flushLocked()
}

func (d *HT16K33) Clear() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.ram = [16]byte{}
	return d.flushLocked()
}

// flushLocked must be called with lock held.
func (d *HT16K33) flushLocked() error {
	w := make([]byte, 0, len(d.ram)+1)
	w = append(w, htRAMStart)
	w = append(w, d.ram[:]...)
	if err := d.dev.Tx(w, nil); err != nil {
		return errors.Wrap(err, "failed to write ht16k33 ram")
	}
	return nil
}
