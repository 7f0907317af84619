package policy

import "github.com/osa030/clipkiosk/internal/infra/mplayer"

// HoldPolicy restarts the current clip while hold is on.
type HoldPolicy struct{}

func (p *HoldPolicy) Name() string {
	return "hold"
}

func (p *HoldPolicy) Description() string {
	return "Seeks back to the start of the clip while hold is on"
}

func (p *HoldPolicy) Decide(in Input) Result {
	if !in.Hold {
		return Pass()
	}
	return Do(mplayer.Seek(0, mplayer.SeekAbsolute))
}

func init() {
	Register("hold", func() Policy {
		return &HoldPolicy{}
	})
}
