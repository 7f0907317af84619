package playback

import (
	"context"
	"math/rand/v2"
	"sync"

	"github.com/cockroachdb/errors"
	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/clipkiosk/internal/app/command"
	"github.com/osa030/clipkiosk/internal/app/policy"
	"github.com/osa030/clipkiosk/internal/domain/bank"
	"github.com/osa030/clipkiosk/internal/domain/playlist"
	"github.com/osa030/clipkiosk/internal/domain/settings"
	"github.com/osa030/clipkiosk/internal/infra/mplayer"
)

// SettingsStore persists the settings snapshot.
type SettingsStore interface {
	Save(s settings.Settings) error
}

// Catalog resolves banks to playlists.
type Catalog interface {
	BankCount() int
	Playlist(bank int) (*playlist.Playlist, error)
}

// Default policy chains.
var (
	DefaultEndPolicies  = []string{"hold", "shuffle", "advance"}
	DefaultNextPolicies = []string{"shuffle", "advance"}
)

// Config holds controller configuration.
type Config struct {
	EndPolicies  *policy.Chain // Decides the command at the end of a clip
	NextPolicies *policy.Chain // Decides the command for the next button
	Rand         *rand.Rand    // Random source for shuffle steps
}

// Controller owns the selection state and turns button events into
// player commands or settings changes.
type Controller struct {
	mu sync.RWMutex

	settings settings.Settings // Bank is the committed bank
	mode     Mode
	pending  int
	playlist *playlist.Playlist
	clip     int

	store   SettingsStore
	catalog Catalog
	queue   *command.Queue
	config  Config
}

// NewController creates a controller for the given loaded settings.
// The committed bank's playlist must be readable.
func NewController(config Config, s settings.Settings, store SettingsStore, catalog Catalog, queue *command.Queue) (*Controller, error) {
	p, err := catalog.Playlist(s.Bank)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to load initial bank %d", s.Bank)
	}
	if config.EndPolicies == nil {
		if config.EndPolicies, err = policy.Build(DefaultEndPolicies); err != nil {
			return nil, err
		}
	}
	if config.NextPolicies == nil {
		if config.NextPolicies, err = policy.Build(DefaultNextPolicies); err != nil {
			return nil, err
		}
	}
	if config.Rand == nil {
		config.Rand = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}

	zlog.Info().Msgf("playback: controller ready bank=%d clips=%d hold=%t shuffle=%t",
		s.Bank, p.Len(), s.ShouldHoldClip, s.ShouldShuffle)

	return &Controller{
		settings: s,
		mode:     ModeNormal,
		pending:  1,
		playlist: p,
		clip:     -1,
		store:    store,
		catalog:  catalog,
		queue:    queue,
		config:   config,
	}, nil
}

// Dispatch applies events in arrival order until ctx is cancelled or events is closed.
func (c *Controller) Dispatch(ctx context.Context, events <-chan Event) {
	for {
		select {
		case <-ctx.Done():
			return
		case e, ok := <-events:
			if !ok {
				return
			}
			c.HandleEvent(e)
		}
	}
}

// HandleEvent applies one button event.
func (c *Controller) HandleEvent(e Event) {
	c.mu.Lock()
	defer c.mu.Unlock()

	zlog.Debug().Msgf("playback: event button=%s pressed=%t mode=%s", e.Button, e.Pressed, c.mode)

	if e.Button == ButtonShift {
		if e.Pressed {
			c.mode = ModeShifting
			return
		}
		c.mode = ModeNormal
		c.commitLocked()
		return
	}

	if !e.Pressed {
		return
	}

	if c.mode == ModeShifting {
		c.selectLocked(e.Button)
		return
	}

	switch e.Button {
	case ButtonMode:
		c.settings.ShouldShuffle = !c.settings.ShouldShuffle
		zlog.Info().Msgf("playback: shuffle=%t", c.settings.ShouldShuffle)
		c.saveLocked()
	case ButtonHold:
		c.settings.ShouldHoldClip = !c.settings.ShouldHoldClip
		zlog.Info().Msgf("playback: hold=%t", c.settings.ShouldHoldClip)
		c.saveLocked()
	case ButtonPrevious:
		c.queue.Enqueue(mplayer.Step(-1))
	case ButtonPlayPause:
		c.queue.Enqueue(mplayer.PauseToggle())
	case ButtonNext:
		r := c.config.NextPolicies.Execute(c.policyInputLocked())
		if r.Command != "" {
			c.queue.Enqueue(r.Command)
		}
	}
}

// selectLocked moves the pending bank while shifting. Only previous and next act.
// Must be called with lock held.
func (c *Controller) selectLocked(b Button) {
	count := c.catalog.BankCount()
	switch b {
	case ButtonPrevious:
		c.pending = bank.Prev(c.pending, count)
	case ButtonNext:
		c.pending = bank.Next(c.pending, count)
	default:
		return
	}
	zlog.Debug().Msgf("playback: pending bank=%d", c.pending)
}

// commitLocked makes the pending bank current when it differs.
// A bank whose clips cannot be read still becomes current; playback keeps the previous clips.
// Must be called with lock held.
func (c *Controller) commitLocked() {
	if c.pending == c.settings.Bank {
		return
	}

	previous := c.settings.Bank
	c.settings.Bank = c.pending

	p, err := c.catalog.Playlist(c.pending)
	if err != nil {
		zlog.Error().Err(err).Msgf("playback: bank %d unreadable, keeping clips of bank %d", c.pending, c.playlist.Bank)
	} else {
		c.playlist = p
		c.queue.EnqueueMultiple(LoadCommands(p))
		zlog.Info().Msgf("playback: bank %d -> %d clips=%d", previous, c.pending, p.Len())
	}

	c.saveLocked()
}

// LoadCommands returns the commands that replace playback with p: the first clip
// replaces, the rest are appended in order.
func LoadCommands(p *playlist.Playlist) []string {
	cmds := make([]string, 0, p.Len())
	for i, path := range p.Paths() {
		cmds = append(cmds, mplayer.LoadFile(path, i > 0))
	}
	return cmds
}

// saveLocked persists the settings. Failures are logged; memory stays authoritative.
// Must be called with lock held.
func (c *Controller) saveLocked() {
	if err := c.store.Save(c.settings); err != nil {
		zlog.Warn().Err(err).Msg("playback: failed to save settings")
	}
}

// policyInputLocked must be called with lock held.
func (c *Controller) policyInputLocked() policy.Input {
	return policy.Input{
		Hold:      c.settings.ShouldHoldClip,
		Shuffle:   c.settings.ShouldShuffle,
		ClipIndex: c.clip,
		ClipCount: c.playlist.Len(),
		Rand:      c.config.Rand,
	}
}

// ObserveFilename records the clip the player reports.
// It returns the clip index when the name belongs to the current playlist.
func (c *Controller) ObserveFilename(name string) (int, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	idx := c.playlist.IndexOf(name)
	if idx < 0 {
		return 0, false
	}
	if idx != c.clip {
		zlog.Debug().Msgf("playback: clip %d/%d %s", idx+1, c.playlist.Len(), name)
	}
	c.clip = idx
	return idx, true
}

// EndOfClip queues the end-of-clip command, if any, and returns it.
func (c *Controller) EndOfClip() string {
	c.mu.Lock()
	defer c.mu.Unlock()

	r := c.config.EndPolicies.Execute(c.policyInputLocked())
	if r.Command != "" {
		c.queue.Enqueue(r.Command)
	}
	return r.Command
}

// Snapshot returns a copy of the current state.
func (c *Controller) Snapshot() Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return Snapshot{
		Mode:        c.mode,
		CurrentBank: c.settings.Bank,
		PendingBank: c.pending,
		ClipIndex:   c.clip,
		ClipCount:   c.playlist.Len(),
		Hold:        c.settings.ShouldHoldClip,
		Shuffle:     c.settings.ShouldShuffle,
	}
}

// Settings returns the current settings.
func (c *Controller) Settings() settings.Settings {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.settings
}

// Playlist returns the active playlist.
func (c *Controller) Playlist() *playlist.Playlist {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.playlist
}
