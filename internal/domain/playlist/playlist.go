// Package playlist provides the Playlist domain entity.
package playlist

import "path/filepath"

// Playlist represents the ordered clips of one bank.
type Playlist struct {
	Bank  int      // Bank number (1-based)
	Dir   string   // Absolute bank directory
	Clips []string // Clip base names, sorted by name
}

// Len returns the number of clips in the playlist.
func (p *Playlist) Len() int {
	return len(p.Clips)
}

// IndexOf returns the position of the clip with the given base name, or -1.
func (p *Playlist) IndexOf(name string) int {
	for i, c := range p.Clips {
		if c == name {
			return i
		}
	}
	return -1
}

// Path returns the absolute path of a clip in this bank.
func (p *Playlist) Path(name string) string {
	return filepath.Join(p.Dir, name)
}

// Paths returns the absolute paths of all clips in order.
func (p *Playlist) Paths() []string {
	paths := make([]string, len(p.Clips))
	for i, c := range p.Clips {
		paths[i] = p.Path(c)
	}
	return paths
}
