package policy

import "math/rand/v2"

// RandomStep returns a random relative playlist step for a playlist of filesCount clips.
// The magnitude is uniform in [1, filesCount-2] with a random sign. Playlists with
// fewer than three clips have no such range and step by one in a random direction.
// The player wraps steps that run past either end.
func RandomStep(r *rand.Rand, filesCount int) int {
	sign := 1
	if r.IntN(2) == 0 {
		sign = -1
	}
	if filesCount < 3 {
		return sign
	}
	return sign * (1 + r.IntN(filesCount-2))
}
