package playback

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osa030/clipkiosk/internal/domain/settings"
)

type fakePlayer struct {
	mu          sync.Mutex
	sent        []string
	filename    string
	filenameErr error
	percent     int
	percentErr  error
	done        chan struct{}
}

func newFakePlayer(filename string, percent int) *fakePlayer {
	return &fakePlayer{
		filename: filename,
		percent:  percent,
		done:     make(chan struct{}),
	}
}

func (p *fakePlayer) Send(cmd string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.sent = append(p.sent, cmd)
	return nil
}

func (p *fakePlayer) Filename(ctx context.Context) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.filename, p.filenameErr
}

func (p *fakePlayer) PercentPosition(ctx context.Context) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.percent, p.percentErr
}

func (p *fakePlayer) Done() <-chan struct{} {
	return p.done
}

func (p *fakePlayer) setPercent(n int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.percent = n
}

func (p *fakePlayer) Sent() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.sent...)
}

type progress struct {
	percent int
	hold    bool
	shuffle bool
}

type fakeFeedback struct {
	banks    []int
	clips    []int
	colons   int
	progress []progress
}

func (f *fakeFeedback) ShowBank(bank int) { f.banks = append(f.banks, bank) }
func (f *fakeFeedback) ShowClip(clip int) { f.clips = append(f.clips, clip) }
func (f *fakeFeedback) ForceColon()       { f.colons++ }
func (f *fakeFeedback) ShowProgress(percent int, hold, shuffle bool) {
	f.progress = append(f.progress, progress{percent: percent, hold: hold, shuffle: shuffle})
}

func newLoopFixture(t *testing.T, s settings.Settings, player *fakePlayer) (*Loop, *fixture, *fakeFeedback) {
	t.Helper()
	f := newFixture(t, s)
	fb := &fakeFeedback{}
	l := NewLoop(LoopConfig{
		Interval:     time.Millisecond,
		CommandDelay: 0,
		EndThreshold: 99,
	}, f.controller, f.queue, player, fb)
	return l, f, fb
}

func TestLoop_SequentialEndOfClip(t *testing.T) {
	player := newFakePlayer("a.mp4", 99)
	l, f, _ := newLoopFixture(t, settings.Settings{Bank: 1}, player)

	require.NoError(t, l.cycle(context.Background()))

	assert.Equal(t, []string{"pt_step 1"}, f.queue.DrainAll(), "exactly one step queued, no seek")
}

func TestLoop_HoldEndOfClip(t *testing.T) {
	player := newFakePlayer("a.mp4", 99)
	l, f, _ := newLoopFixture(t, settings.Settings{Bank: 1, ShouldHoldClip: true}, player)

	require.NoError(t, l.cycle(context.Background()))

	assert.Equal(t, []string{"seek 0 2"}, f.queue.DrainAll(), "exactly one seek queued, no step")
}

func TestLoop_ShuffleUnknownClipDoesNothing(t *testing.T) {
	player := newFakePlayer("not-in-bank.mp4", 100)
	l, f, _ := newLoopFixture(t, settings.Settings{Bank: 1, ShouldShuffle: true}, player)

	require.NoError(t, l.cycle(context.Background()))

	assert.Equal(t, 0, f.queue.Len())
}

func TestLoop_EndOfClipLatched(t *testing.T) {
	player := newFakePlayer("a.mp4", 99)
	l, f, _ := newLoopFixture(t, settings.Settings{Bank: 1}, player)
	ctx := context.Background()

	require.NoError(t, l.cycle(ctx))
	require.NoError(t, l.cycle(ctx))
	player.setPercent(100)
	require.NoError(t, l.cycle(ctx))

	assert.Equal(t, []string{"pt_step 1"}, player.Sent(), "one action per clip end")
	assert.Equal(t, 0, f.queue.Len())

	// Next clip starts, then ends
	player.setPercent(3)
	require.NoError(t, l.cycle(ctx))
	player.setPercent(99)
	require.NoError(t, l.cycle(ctx))

	assert.Equal(t, []string{"pt_step 1"}, f.queue.DrainAll())
}

func TestLoop_DrainsQueueInOrder(t *testing.T) {
	player := newFakePlayer("a.mp4", 10)
	l, f, _ := newLoopFixture(t, settings.Settings{Bank: 1}, player)

	press(f.controller, ButtonPlayPause)
	press(f.controller, ButtonPrevious)
	press(f.controller, ButtonNext)

	require.NoError(t, l.cycle(context.Background()))

	assert.Equal(t, []string{"pause", "pt_step -1", "pt_step 1"}, player.Sent())
	assert.Equal(t, 0, f.queue.Len())
}

func TestLoop_Feedback(t *testing.T) {
	tests := []struct {
		name         string
		initial      settings.Settings
		filename     string
		percent      int
		shifting     bool
		wantClips    []int
		wantBank     int
		wantProgress progress
	}{
		{
			name:         "known clip updates clip field",
			initial:      settings.Settings{Bank: 1, ShouldShuffle: true},
			filename:     "b.mp4",
			percent:      42,
			wantClips:    []int{2},
			wantBank:     1,
			wantProgress: progress{percent: 42, shuffle: true},
		},
		{
			name:         "unknown clip leaves clip field",
			initial:      settings.Settings{Bank: 2, ShouldHoldClip: true},
			filename:     "a.mp4",
			percent:      7,
			wantClips:    nil,
			wantBank:     2,
			wantProgress: progress{percent: 7, hold: true},
		},
		{
			name:         "shifting shows pending bank",
			initial:      settings.Settings{Bank: 3},
			filename:     "one.mp4",
			percent:      0,
			shifting:     true,
			wantClips:    []int{1},
			wantBank:     1,
			wantProgress: progress{percent: 0},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			player := newFakePlayer(tt.filename, tt.percent)
			l, f, fb := newLoopFixture(t, tt.initial, player)
			if tt.shifting {
				press(f.controller, ButtonShift)
			}

			require.NoError(t, l.cycle(context.Background()))

			assert.Equal(t, tt.wantClips, fb.clips)
			assert.Equal(t, []int{tt.wantBank}, fb.banks)
			assert.Equal(t, 1, fb.colons)
			assert.Equal(t, []progress{tt.wantProgress}, fb.progress)
		})
	}
}

func TestLoop_QueryFailureSkipsCycle(t *testing.T) {
	tests := []struct {
		name        string
		filenameErr error
		percentErr  error
		wantBanks   int
	}{
		{name: "filename timeout", filenameErr: errors.New("timeout"), wantBanks: 0},
		{name: "percent timeout", percentErr: errors.New("timeout"), wantBanks: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			player := newFakePlayer("a.mp4", 99)
			player.filenameErr = tt.filenameErr
			player.percentErr = tt.percentErr
			l, f, fb := newLoopFixture(t, settings.Settings{Bank: 1}, player)

			require.NoError(t, l.cycle(context.Background()))

			assert.Len(t, fb.banks, tt.wantBanks)
			assert.Empty(t, fb.progress, "no LED update")
			assert.Equal(t, 0, f.queue.Len(), "no end-of-clip action")
		})
	}
}

func TestLoop_RunStopsOnCancel(t *testing.T) {
	player := newFakePlayer("a.mp4", 10)
	l, _, fb := newLoopFixture(t, settings.Settings{Bank: 1}, player)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	require.NoError(t, l.Run(ctx))
	assert.NotEmpty(t, fb.progress)
}

func TestLoop_RunReportsPlayerExit(t *testing.T) {
	player := newFakePlayer("a.mp4", 10)
	player.filenameErr = errors.New("eof")
	close(player.done)
	l, _, _ := newLoopFixture(t, settings.Settings{Bank: 1}, player)

	err := l.Run(context.Background())
	assert.True(t, errors.Is(err, ErrPlayerExited))
}
