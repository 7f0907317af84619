package policy

import "github.com/osa030/clipkiosk/internal/infra/mplayer"

// AdvancePolicy steps to the next clip.
type AdvancePolicy struct{}

func (p *AdvancePolicy) Name() string {
	return "advance"
}

func (p *AdvancePolicy) Description() string {
	return "Steps to the next clip in the playlist"
}

func (p *AdvancePolicy) Decide(in Input) Result {
	return Do(mplayer.Step(1))
}

func init() {
	Register("advance", func() Policy {
		return &AdvancePolicy{}
	})
}
