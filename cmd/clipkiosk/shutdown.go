package main

import (
	"io"
	"sync"

	zlog "github.com/rs/zerolog/log"
)

// blanker turns every output off.
type blanker interface {
	Blank()
}

// shutdown blanks the outputs, stops the player and releases the devices.
// Run does its work once; later calls return immediately.
type shutdown struct {
	once    sync.Once
	outputs blanker
	player  io.Closer
	devices io.Closer
}

func newShutdown(outputs blanker, devices io.Closer) *shutdown {
	return &shutdown{outputs: outputs, devices: devices}
}

// setPlayer registers a started player. Must be called before Run.
func (s *shutdown) setPlayer(p io.Closer) {
	s.player = p
}

func (s *shutdown) Run() {
	s.once.Do(func() {
		zlog.Info().Msg("clipkiosk: cleaning up")
		s.outputs.Blank()
		if s.player != nil {
			if err := s.player.Close(); err != nil {
				zlog.Warn().Err(err).Msg("clipkiosk: failed to stop player")
			}
		}
		if err := s.devices.Close(); err != nil {
			zlog.Warn().Err(err).Msg("clipkiosk: failed to close devices")
		}
	})
}
