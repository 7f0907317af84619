// Package settings provides the persisted kiosk settings entity.
package settings

// Settings holds the flags and bank index that survive a restart.
type Settings struct {
	ShouldHoldClip bool `json:"should_hold_clip"` // Loop the current clip
	ShouldShuffle  bool `json:"should_shuffle"`   // Advance to a random clip
	Bank           int  `json:"bank"`             // Committed bank (1-based)
}

// Default returns the first-run settings.
func Default() Settings {
	return Settings{
		ShouldHoldClip: false,
		ShouldShuffle:  false,
		Bank:           1,
	}
}

// Clamp returns a copy with Bank forced into [1, bankCount].
// A bank count that shrank since the last save pulls the bank down to the last bank.
func (s Settings) Clamp(bankCount int) Settings {
	if s.Bank > bankCount {
		s.Bank = bankCount
	}
	if s.Bank < 1 {
		s.Bank = 1
	}
	return s
}
