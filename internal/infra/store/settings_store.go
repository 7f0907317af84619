// Package store persists kiosk settings to a small JSON file.
package store

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/cockroachdb/errors"
	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/clipkiosk/internal/domain/settings"
)

// SettingsStore loads and saves the settings snapshot.
type SettingsStore struct {
	path      string
	bankCount int
	mu        sync.Mutex
}

// NewSettingsStore creates a store for the file at path.
func NewSettingsStore(path string, bankCount int) *SettingsStore {
	return &SettingsStore{
		path:      path,
		bankCount: bankCount,
	}
}

// Path returns the backing file path.
func (s *SettingsStore) Path() string {
	return s.path
}

// Load reads the settings file. It never fails: a missing or corrupt file yields defaults.
func (s *SettingsStore) Load() settings.Settings {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			zlog.Debug().Msgf("store: no settings file, using defaults path=%s", s.path)
		} else {
			zlog.Warn().Err(err).Msgf("store: failed to read settings, using defaults path=%s", s.path)
		}
		return settings.Default().Clamp(s.bankCount)
	}

	// Start from defaults so keys absent from older files keep their default.
	loaded := settings.Default()
	if err := json.Unmarshal(data, &loaded); err != nil {
		zlog.Warn().Err(err).Msgf("store: corrupt settings file, using defaults path=%s", s.path)
		return settings.Default().Clamp(s.bankCount)
	}

	clamped := loaded.Clamp(s.bankCount)
	if clamped.Bank != loaded.Bank {
		zlog.Info().Msgf("store: bank %d out of range, using %d", loaded.Bank, clamped.Bank)
	}
	return clamped
}

// Save overwrites the settings file with a whole snapshot.
// The write goes to a temp file in the same directory which is then renamed over the target.
func (s *SettingsStore) Save(st settings.Settings) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.Marshal(st)
	if err != nil {
		return errors.Wrap(err, "failed to marshal settings")
	}

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(s.path)+".*")
	if err != nil {
		return errors.Wrap(err, "failed to create temp settings file")
	}
	tmpName := tmp.Name()
	committed := false
	defer func() {
		if !committed {
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return errors.Wrap(err, "failed to write settings")
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return errors.Wrap(err, "failed to sync settings")
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrap(err, "failed to close settings")
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return errors.Wrap(err, "failed to chmod settings")
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return errors.Wrapf(err, "failed to replace settings file %s", s.path)
	}
	committed = true

	zlog.Debug().Msgf("store: saved hold=%t shuffle=%t bank=%d", st.ShouldHoldClip, st.ShouldShuffle, st.Bank)
	return nil
}
