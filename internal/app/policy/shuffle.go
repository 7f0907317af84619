package policy

import "github.com/osa030/clipkiosk/internal/infra/mplayer"

// ShufflePolicy jumps a random distance while shuffle is on.
// Without a confirmed clip it decides to do nothing.
type ShufflePolicy struct{}

func (p *ShufflePolicy) Name() string {
	return "shuffle"
}

func (p *ShufflePolicy) Description() string {
	return "Steps a random number of clips while shuffle is on"
}

func (p *ShufflePolicy) Decide(in Input) Result {
	if !in.Shuffle {
		return Pass()
	}
	if in.ClipIndex < 0 {
		return Nothing()
	}
	return Do(mplayer.Step(RandomStep(in.Rand, in.ClipCount)))
}

func init() {
	Register("shuffle", func() Policy {
		return &ShufflePolicy{}
	})
}
