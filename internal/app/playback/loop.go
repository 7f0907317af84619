package playback

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/clipkiosk/internal/app/command"
)

// ErrPlayerExited is returned by Loop.Run when the player process ends.
var ErrPlayerExited = errors.New("player exited")

// Player is the external player as seen by the loop.
type Player interface {
	Send(cmd string) error
	Filename(ctx context.Context) (string, error)
	PercentPosition(ctx context.Context) (int, error)
	Done() <-chan struct{}
}

// Feedback receives what the loop observed.
type Feedback interface {
	ShowBank(bank int)
	ShowClip(clip int)
	ForceColon()
	ShowProgress(percent int, hold, shuffle bool)
}

// LoopConfig holds polling loop configuration.
type LoopConfig struct {
	Interval     time.Duration // Pause between cycles
	CommandDelay time.Duration // Pause after each command sent
	EndThreshold int           // Percent at which a clip counts as ended
}

// Loop drains queued commands into the player, polls its status and drives feedback.
type Loop struct {
	config     LoopConfig
	controller *Controller
	queue      *command.Queue
	player     Player
	feedback   Feedback

	// endLatched is set once the end-of-clip action ran and cleared when
	// the position drops below the threshold again.
	endLatched bool
}

// NewLoop creates a polling loop.
func NewLoop(config LoopConfig, controller *Controller, queue *command.Queue, player Player, feedback Feedback) *Loop {
	return &Loop{
		config:     config,
		controller: controller,
		queue:      queue,
		player:     player,
		feedback:   feedback,
	}
}

// Run polls until ctx is cancelled (returns nil) or the player exits (returns ErrPlayerExited).
func (l *Loop) Run(ctx context.Context) error {
	zlog.Info().Msgf("playback: loop started interval=%s", l.config.Interval)

	for {
		if err := l.cycle(ctx); err != nil {
			return err
		}

		select {
		case <-ctx.Done():
			zlog.Info().Msg("playback: loop stopped")
			return nil
		case <-l.player.Done():
			return ErrPlayerExited
		case <-time.After(l.config.Interval):
		}
	}
}

// cycle runs one poll. Transient player errors skip the rest of the cycle.
func (l *Loop) cycle(ctx context.Context) error {
	// 1. Drain commands
	for _, cmd := range l.queue.DrainAll() {
		if err := l.player.Send(cmd); err != nil {
			if l.playerExited() {
				return ErrPlayerExited
			}
			zlog.Warn().Err(err).Msgf("playback: command dropped cmd=%q", cmd)
			continue
		}
		if !sleepCtx(ctx, l.config.CommandDelay) {
			return nil
		}
	}

	// 2-3. Filename and clip field
	name, err := l.player.Filename(ctx)
	if err != nil {
		return l.skip(ctx, "filename", err)
	}
	if idx, ok := l.controller.ObserveFilename(name); ok {
		l.feedback.ShowClip(idx + 1)
	}

	// 4. Bank field and colon
	l.feedback.ShowBank(l.controller.Snapshot().DisplayBank())
	l.feedback.ForceColon()

	// 5-6. Position and end-of-clip
	percent, err := l.player.PercentPosition(ctx)
	if err != nil {
		return l.skip(ctx, "percent", err)
	}
	if percent >= l.config.EndThreshold {
		if !l.endLatched {
			l.endLatched = true
			if cmd := l.controller.EndOfClip(); cmd != "" {
				zlog.Debug().Msgf("playback: end of clip percent=%d cmd=%q", percent, cmd)
			}
		}
	} else {
		l.endLatched = false
	}

	// 7. LEDs
	snap := l.controller.Snapshot()
	l.feedback.ShowProgress(percent, snap.Hold, snap.Shuffle)
	return nil
}

// skip logs a failed query. It is fatal only when the player is gone.
func (l *Loop) skip(ctx context.Context, what string, err error) error {
	if l.playerExited() {
		return ErrPlayerExited
	}
	if ctx.Err() != nil {
		return nil
	}
	zlog.Warn().Err(err).Msgf("playback: %s query failed, skipping cycle", what)
	return nil
}

func (l *Loop) playerExited() bool {
	select {
	case <-l.player.Done():
		return true
	default:
		return false
	}
}

// sleepCtx waits for d and reports false when ctx ended first.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
