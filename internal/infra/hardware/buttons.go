package hardware

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/jonboulle/clockwork"
	zlog "github.com/rs/zerolog/log"
	"periph.io/x/conn/v3/gpio"
)

// edgePoll bounds each wait for an edge so cancellation is noticed.
const edgePoll = 200 * time.Millisecond

// debouncer accepts an edge only after a quiet window since the last accepted one.
type debouncer struct {
	window   time.Duration
	clock    clockwork.Clock
	accepted time.Time
	primed   bool
}

func (d *debouncer) accept() bool {
	now := d.clock.Now()
	if d.primed && now.Sub(d.accepted) < d.window {
		return false
	}
	d.accepted = now
	d.primed = true
	return true
}

// Input is a pulled-down, active-high button.
//
// A press-only input reports rising edges, debounced. A both-edges input
// reports every level change and is not debounced.
type Input struct {
	name      string
	pin       gpio.PinIn
	bothEdges bool
	debounce  debouncer
}

// NewInput configures pin for edge detection.
func NewInput(name string, pin gpio.PinIn, debounce time.Duration, bothEdges bool) (*Input, error) {
	return newInput(name, pin, debounce, bothEdges, clockwork.NewRealClock())
}

func newInput(name string, pin gpio.PinIn, debounce time.Duration, bothEdges bool, clock clockwork.Clock) (*Input, error) {
	edge := gpio.RisingEdge
	if bothEdges {
		edge = gpio.BothEdges
	}
	if err := pin.In(gpio.PullDown, edge); err != nil {
		return nil, errors.Wrapf(err, "failed to configure %s button on %s", name, pin)
	}
	return &Input{
		name:      name,
		pin:       pin,
		bothEdges: bothEdges,
		debounce:  debouncer{window: debounce, clock: clock},
	}, nil
}

// Name returns the button name.
func (in *Input) Name() string {
	return in.name
}

// Watch calls fn for every accepted edge until ctx is cancelled.
func (in *Input) Watch(ctx context.Context, fn func(pressed bool)) {
	last := in.pin.Read()
	zlog.Debug().Msgf("hardware: watching %s on %s", in.name, in.pin)

	for ctx.Err() == nil {
		if !in.pin.WaitForEdge(edgePoll) {
			continue
		}
		level := in.pin.Read()

		if in.bothEdges {
			if level == last {
				continue
			}
			last = level
			fn(level == gpio.High)
			continue
		}

		if !in.debounce.accept() {
			continue
		}
		fn(true)
	}
}
