// Package catalog maps bank numbers to the clip files on disk.
package catalog

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/cockroachdb/errors"
	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/clipkiosk/internal/domain/bank"
	"github.com/osa030/clipkiosk/internal/domain/playlist"
)

// ErrBankOutOfRange is returned for bank numbers outside [1, count].
var ErrBankOutOfRange = errors.New("bank out of range")

// Catalog resolves banks under a root directory laid out as <root>/NN/.
type Catalog struct {
	root  string
	count int
}

// New creates a catalog for count banks under root.
func New(root string, count int) *Catalog {
	if abs, err := filepath.Abs(root); err == nil {
		root = abs
	}
	return &Catalog{
		root:  root,
		count: count,
	}
}

// BankCount returns the number of banks.
func (c *Catalog) BankCount() int {
	return c.count
}

// Root returns the banks root directory.
func (c *Catalog) Root() string {
	return c.root
}

// Dir returns the directory of a bank.
func (c *Catalog) Dir(b int) string {
	return filepath.Join(c.root, bank.DirName(b))
}

// EnsureDirs creates every bank directory with mode 0777.
// The mode is applied explicitly so the process umask does not narrow it.
func (c *Catalog) EnsureDirs() error {
	for b := 1; b <= c.count; b++ {
		dir := c.Dir(b)
		if err := os.MkdirAll(dir, 0o777); err != nil {
			return errors.Wrapf(err, "failed to create bank directory %s", dir)
		}
		if err := os.Chmod(dir, 0o777); err != nil {
			return errors.Wrapf(err, "failed to chmod bank directory %s", dir)
		}
	}
	return nil
}

// ListClips returns the clip file names of a bank sorted ascending.
// The directory is read fresh on every call. Dot-files and subdirectories are skipped;
// symlinks count when they point to a regular file.
func (c *Catalog) ListClips(b int) ([]string, error) {
	if !bank.Valid(b, c.count) {
		return nil, errors.Wrapf(ErrBankOutOfRange, "bank %d (count %d)", b, c.count)
	}

	dir := c.Dir(b)
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read bank directory %s", dir)
	}

	clips := make([]string, 0, len(entries))
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), ".") || !isClipFile(dir, e) {
			continue
		}
		clips = append(clips, e.Name())
	}
	sort.Strings(clips)
	return clips, nil
}

// isClipFile reports whether e is a regular file or a symlink to one.
func isClipFile(dir string, e os.DirEntry) bool {
	if e.Type().IsRegular() {
		return true
	}
	if e.Type()&os.ModeSymlink == 0 {
		return false
	}
	info, err := os.Stat(filepath.Join(dir, e.Name()))
	if err != nil {
		zlog.Debug().Err(err).Msgf("catalog: skipping broken link %s", e.Name())
		return false
	}
	return info.Mode().IsRegular()
}

// ResolvePath returns the absolute path of a clip in a bank.
func (c *Catalog) ResolvePath(b int, name string) string {
	return filepath.Join(c.Dir(b), name)
}

// Playlist builds the playlist of a bank from its current directory content.
func (c *Catalog) Playlist(b int) (*playlist.Playlist, error) {
	clips, err := c.ListClips(b)
	if err != nil {
		return nil, err
	}
	return &playlist.Playlist{
		Bank:  b,
		Dir:   c.Dir(b),
		Clips: clips,
	}, nil
}
