package catalog

import (
	"context"
	"path/filepath"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/fsnotify/fsnotify"
	zlog "github.com/rs/zerolog/log"
)

// Watcher reports bank directories whose content changed on disk.
// Changes are batched per bank over a debounce window.
type Watcher struct {
	catalog  *Catalog
	debounce time.Duration
	onChange func(bank int)
	watcher  *fsnotify.Watcher
	done     chan struct{}
}

// NewWatcher creates a watcher over every bank of the catalog.
func NewWatcher(c *Catalog, debounce time.Duration, onChange func(bank int)) *Watcher {
	return &Watcher{
		catalog:  c,
		debounce: debounce,
		onChange: onChange,
		done:     make(chan struct{}),
	}
}

// Start begins watching until ctx is cancelled or Stop is called.
// Bank directories that cannot be watched are logged and skipped.
func (w *Watcher) Start(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Wrap(err, "failed to create fsnotify watcher")
	}
	w.watcher = watcher

	banks := make(map[string]int, w.catalog.BankCount())
	for b := 1; b <= w.catalog.BankCount(); b++ {
		dir := w.catalog.Dir(b)
		if err := watcher.Add(dir); err != nil {
			zlog.Warn().Err(err).Msgf("catalog: cannot watch bank=%d dir=%s", b, dir)
			continue
		}
		banks[dir] = b
	}

	zlog.Debug().Msgf("catalog: watcher started banks=%d debounce=%s", len(banks), w.debounce)
	go w.watch(ctx, banks)
	return nil
}

// Stop stops watching and waits for the watch goroutine to exit.
func (w *Watcher) Stop() error {
	if w.watcher == nil {
		return nil
	}
	err := w.watcher.Close()
	<-w.done
	return err
}

func (w *Watcher) watch(ctx context.Context, banks map[string]int) {
	defer close(w.done)

	pending := make(map[int]struct{})
	var timer *time.Timer
	var timerC <-chan time.Time
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Create|fsnotify.Remove|fsnotify.Rename|fsnotify.Write) == 0 {
				continue
			}
			b, known := banks[filepath.Dir(event.Name)]
			if !known {
				continue
			}
			pending[b] = struct{}{}

			// Reset debounce timer
			if timer != nil {
				timer.Stop()
			}
			timer = time.NewTimer(w.debounce)
			timerC = timer.C

		case <-timerC:
			timerC = nil
			for b := range pending {
				w.onChange(b)
			}
			clear(pending)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			zlog.Warn().Err(err).Msg("catalog: watcher error")
		}
	}
}
