package mplayer

import (
	"bufio"
	"context"
	"io"
	"os"
	"os/exec"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/creack/pty"
	zlog "github.com/rs/zerolog/log"
)

// Errors
var (
	ErrTimeout     = errors.New("player answer timed out")
	ErrExited      = errors.New("player exited")
	ErrUnavailable = errors.New("player property unavailable")
)

const killTimeout = 2 * time.Second

// Config holds player process configuration.
type Config struct {
	Path            string        // Player binary
	Args            []string      // Arguments placed before the playlist
	ResponseTimeout time.Duration // Bound on every query
	GracefulTimeout time.Duration // Wait after quit before killing
}

type answer struct {
	marker string
	value  string
}

// Client is a running player in slave mode.
type Client struct {
	cfg Config

	cmd *exec.Cmd
	pty *os.File
	w   io.Writer

	writeMu sync.Mutex
	queryMu sync.Mutex

	answers chan answer
	done    chan struct{}
	exitErr error

	closeOnce sync.Once
}

// Start spawns the player on a pseudo-terminal with paths as its initial playlist.
// The terminal keeps the player's output line-buffered like an interactive session.
func Start(cfg Config, paths []string) (*Client, error) {
	args := buildArgs(cfg.Args, paths)
	cmd := exec.Command(cfg.Path, args...)

	f, err := pty.Start(cmd)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to start player %s", cfg.Path)
	}

	zlog.Info().Msgf("mplayer: started pid=%d clips=%d", cmd.Process.Pid, len(paths))

	c := newClient(cfg, f, f)
	c.cmd = cmd
	c.pty = f

	go func() {
		c.exitErr = cmd.Wait()
		zlog.Info().Msgf("mplayer: exited err=%v", c.exitErr)
		close(c.done)
	}()

	return c, nil
}

// newClient wires the protocol over an arbitrary stream pair.
// Without a process, the client is done when r reaches EOF.
func newClient(cfg Config, r io.Reader, w io.Writer) *Client {
	c := &Client{
		cfg:     cfg,
		w:       w,
		answers: make(chan answer, 16),
		done:    make(chan struct{}),
	}
	go c.readLoop(r)
	return c
}

// buildArgs makes sure slave mode is on. An empty playlist keeps the player idle
// instead of exiting.
func buildArgs(base, paths []string) []string {
	args := slices.Clone(base)
	if !slices.Contains(args, "-slave") {
		args = append(args, "-slave")
	}
	if len(paths) == 0 && !slices.Contains(args, "-idle") {
		args = append(args, "-idle")
	}
	return append(args, paths...)
}

func (c *Client) readLoop(r io.Reader) {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")

		marker, value, ok := ParseAnswer(line)
		if !ok {
			if line != "" {
				zlog.Debug().Msgf("mplayer: %s", line)
			}
			continue
		}

		select {
		case c.answers <- answer{marker: marker, value: value}:
		default:
			zlog.Warn().Msgf("mplayer: dropping unread answer %s", marker)
		}
	}
	// A pty returns EIO once the child is gone.
	if err := scanner.Err(); err != nil {
		zlog.Debug().Err(err).Msg("mplayer: output closed")
	}

	if c.cmd == nil {
		close(c.done)
	}
}

// Send writes one newline-terminated command.
func (c *Client) Send(cmd string) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	zlog.Debug().Msgf("mplayer: > %s", cmd)
	if _, err := io.WriteString(c.w, cmd+"\n"); err != nil {
		return errors.Wrapf(err, "failed to send %q", cmd)
	}
	return nil
}

// Query sends q and waits for its answer line, bounded by the response timeout.
// Only one query is in flight at a time; answers left over from earlier queries are discarded.
func (c *Client) Query(ctx context.Context, q Query) (string, error) {
	c.queryMu.Lock()
	defer c.queryMu.Unlock()

	c.discardStale()

	if err := c.Send(q.Command); err != nil {
		return "", err
	}

	ctx, cancel := context.WithTimeout(ctx, c.cfg.ResponseTimeout)
	defer cancel()

	for {
		select {
		case a := <-c.answers:
			switch a.marker {
			case q.Marker:
				return a.value, nil
			case errorMarker:
				return "", errors.Wrapf(ErrUnavailable, "%s: %s", q.Marker, a.value)
			default:
				zlog.Debug().Msgf("mplayer: ignoring stale answer %s", a.marker)
			}
		case <-c.done:
			return "", ErrExited
		case <-ctx.Done():
			if errors.Is(ctx.Err(), context.DeadlineExceeded) {
				return "", errors.Wrapf(ErrTimeout, "%s after %s", q.Marker, c.cfg.ResponseTimeout)
			}
			return "", ctx.Err()
		}
	}
}

func (c *Client) discardStale() {
	for {
		select {
		case a := <-c.answers:
			zlog.Debug().Msgf("mplayer: discarding stale answer %s", a.marker)
		default:
			return
		}
	}
}

// Filename returns the base name of the clip being played.
func (c *Client) Filename(ctx context.Context) (string, error) {
	v, err := c.Query(ctx, FilenameQuery)
	if err != nil {
		return "", err
	}
	return ParseFilename(v), nil
}

// PercentPosition returns the playback position in percent.
func (c *Client) PercentPosition(ctx context.Context) (int, error) {
	v, err := c.Query(ctx, PercentQuery)
	if err != nil {
		return 0, err
	}
	return ParsePercent(v)
}

// Done is closed when the player has exited.
func (c *Client) Done() <-chan struct{} {
	return c.done
}

// Close asks the player to quit and kills it after the graceful timeout.
// Safe to call more than once.
func (c *Client) Close() error {
	c.closeOnce.Do(func() {
		select {
		case <-c.done:
		default:
			if err := c.Send(Quit()); err != nil {
				zlog.Debug().Err(err).Msg("mplayer: quit not delivered")
			}
			c.waitForExit()
		}
		if c.pty != nil {
			_ = c.pty.Close()
		}
	})
	return nil
}

// waitForExit waits for the player to exit, force-killing it after the graceful timeout.
func (c *Client) waitForExit() {
	select {
	case <-c.done:
		return
	case <-time.After(c.cfg.GracefulTimeout):
	}

	if c.cmd == nil || c.cmd.Process == nil {
		return
	}
	zlog.Warn().Msgf("mplayer: graceful shutdown timeout, killing pid=%d", c.cmd.Process.Pid)
	if err := c.cmd.Process.Kill(); err != nil && !errors.Is(err, os.ErrProcessDone) {
		zlog.Error().Err(err).Msg("mplayer: failed to kill player")
	}
	select {
	case <-c.done:
	case <-time.After(killTimeout):
		zlog.Error().Msg("mplayer: player did not exit after kill")
	}
}
