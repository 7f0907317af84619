package feedback

import (
	"context"
	"time"

	zlog "github.com/rs/zerolog/log"
)

// SelfTest cycles every display digit and sweeps the strip once per mode colour.
// It returns ctx.Err() when interrupted.
func (r *Renderer) SelfTest(ctx context.Context, delay time.Duration) error {
	zlog.Info().Msg("feedback: self test started")

	r.PowerOn()
	for d := 0; d <= 9; d++ {
		s := string(rune('0' + d))
		r.mu.Lock()
		r.check("display", r.display.WriteDigits(0, s+s+s+s))
		r.check("display", r.display.SetColon(d%2 == 0))
		r.mu.Unlock()
		if err := wait(ctx, delay); err != nil {
			return err
		}
	}

	for _, c := range []Channel{ChannelWhite, ChannelRed, ChannelBlue} {
		zlog.Info().Msgf("feedback: sweeping strip colour=%s", c)
		for percent := 0; percent <= 100; percent += 5 {
			r.mu.Lock()
			r.renderLocked(percent, c)
			r.mu.Unlock()
			if err := wait(ctx, delay); err != nil {
				return err
			}
		}
	}

	r.Blank()
	zlog.Info().Msg("feedback: self test done")
	return nil
}

func wait(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
