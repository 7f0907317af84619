package hardware

import (
	"context"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpiotest"
)

func TestDebouncer(t *testing.T) {
	clock := clockwork.NewFakeClock()
	d := debouncer{window: 80 * time.Millisecond, clock: clock}

	assert.True(t, d.accept(), "first edge")
	assert.False(t, d.accept(), "bounce")

	clock.Advance(79 * time.Millisecond)
	assert.False(t, d.accept(), "still inside window")

	clock.Advance(time.Millisecond)
	assert.True(t, d.accept(), "window elapsed")
}

func TestDebouncer_ZeroWindow(t *testing.T) {
	d := debouncer{clock: clockwork.NewFakeClock()}

	assert.True(t, d.accept())
	assert.True(t, d.accept())
}

func TestNewInput_RequiresEdgeSupport(t *testing.T) {
	_, err := NewInput("mode", &gpiotest.Pin{N: "GPIO22"}, 0, false)
	require.Error(t, err)
}

func watch(t *testing.T, in *Input) (<-chan bool, context.CancelFunc) {
	t.Helper()
	events := make(chan bool, 16)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		in.Watch(ctx, func(pressed bool) { events <- pressed })
		close(done)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
	return events, cancel
}

func expectEvents(t *testing.T, events <-chan bool, want []bool) {
	t.Helper()
	var got []bool
	deadline := time.After(time.Second)
	for len(got) < len(want) {
		select {
		case e := <-events:
			got = append(got, e)
		case <-deadline:
			t.Fatalf("got %v, want %v", got, want)
		}
	}
	select {
	case e := <-events:
		t.Fatalf("unexpected extra event %t", e)
	case <-time.After(50 * time.Millisecond):
	}
	assert.Equal(t, want, got)
}

func TestInput_PressDebounced(t *testing.T) {
	pin := &gpiotest.Pin{N: "GPIO13", EdgesChan: make(chan gpio.Level)}
	clock := clockwork.NewFakeClock()
	in, err := newInput("next", pin, 80*time.Millisecond, false, clock)
	require.NoError(t, err)
	assert.Equal(t, gpio.PullDown, pin.Pull())

	events, _ := watch(t, in)

	pin.EdgesChan <- gpio.High
	pin.EdgesChan <- gpio.High
	expectEvents(t, events, []bool{true})

	clock.Advance(100 * time.Millisecond)
	pin.EdgesChan <- gpio.High
	expectEvents(t, events, []bool{true})
}

func TestInput_ShiftBothEdges(t *testing.T) {
	pin := &gpiotest.Pin{N: "GPIO26", EdgesChan: make(chan gpio.Level)}
	in, err := NewInput("shift", pin, 80*time.Millisecond, true)
	require.NoError(t, err)
	assert.Equal(t, "shift", in.Name())

	events, _ := watch(t, in)

	pin.EdgesChan <- gpio.High
	pin.EdgesChan <- gpio.Low
	pin.EdgesChan <- gpio.Low // no level change
	pin.EdgesChan <- gpio.High

	expectEvents(t, events, []bool{true, false, true})
}

func TestGPIOIndicator(t *testing.T) {
	pin := &gpiotest.Pin{N: "GPIO17", L: gpio.High}

	led, err := NewGPIOIndicator(pin)
	require.NoError(t, err)
	assert.Equal(t, gpio.Low, pin.Read(), "starts off")

	require.NoError(t, led.Set(true))
	assert.Equal(t, gpio.High, pin.Read())

	require.NoError(t, led.Set(false))
	assert.Equal(t, gpio.Low, pin.Read())
}
