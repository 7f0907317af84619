package hardware

import (
	"sync"

	"github.com/cockroachdb/errors"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
)

// DefaultNRZSpeed clocks three SPI bits per LED data bit at ~1.25µs.
const DefaultNRZSpeed = 2400 * physic.KiloHertz

// nrzLatchBytes of low output hold the line long enough for the strip to latch (>80µs).
const nrzLatchBytes = 30

// SK6812 drives an RGBW strip from the SPI MOSI line.
type SK6812 struct {
	mu   sync.Mutex
	conn spi.Conn
	n    int
}

// NewSK6812 connects to port for a strip of n pixels.
func NewSK6812(port spi.Port, n int, speed physic.Frequency) (*SK6812, error) {
	c, err := port.Connect(speed, spi.Mode0, 8)
	if err != nil {
		return nil, errors.Wrap(err, "failed to connect spi port")
	}
	return &SK6812{conn: c, n: n}, nil
}

func (s *SK6812) Len() int {
	return s.n
}

func (s *SK6812) Render(px []Pixel) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	frame := make([]Pixel, s.n)
	copy(frame, px)
	if err := s.conn.Tx(EncodeNRZ(frame), nil); err != nil {
		return errors.Wrap(err, "failed to write led strip")
	}
	return nil
}

// EncodeNRZ builds the SPI stream for px.
//
// Each pixel is sent in GRBW order. Every data bit becomes three SPI bits:
// 1 -> 110, 0 -> 100. The stream ends with a latch of zero bytes.
func EncodeNRZ(px []Pixel) []byte {
	out := make([]byte, 0, len(px)*4*3+nrzLatchBytes)
	for _, p := range px {
		for _, b := range [4]byte{p.G, p.R, p.B, p.W} {
			out = appendNRZByte(out, b)
		}
	}
	return append(out, make([]byte, nrzLatchBytes)...)
}

func appendNRZByte(out []byte, b byte) []byte {
	var v uint32
	for i := 7; i >= 0; i-- {
		v <<= 3
		if b&(1<<i) != 0 {
			v |= 0b110
		} else {
			v |= 0b100
		}
	}
	return append(out, byte(v>>16), byte(v>>8), byte(v))
}
