// Package main provides the kiosk controller entry point.
package main

import (
	"context"
	"fmt"
	"maps"
	"os"
	"os/signal"
	"slices"
	"sync"
	"syscall"
	"time"

	"github.com/alecthomas/kingpin/v2"
	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/clipkiosk/internal/app/command"
	"github.com/osa030/clipkiosk/internal/app/feedback"
	"github.com/osa030/clipkiosk/internal/app/playback"
	"github.com/osa030/clipkiosk/internal/app/policy"
	"github.com/osa030/clipkiosk/internal/infra/catalog"
	"github.com/osa030/clipkiosk/internal/infra/config"
	"github.com/osa030/clipkiosk/internal/infra/hardware"
	"github.com/osa030/clipkiosk/internal/infra/logger"
	"github.com/osa030/clipkiosk/internal/infra/mplayer"
	"github.com/osa030/clipkiosk/internal/infra/store"
)

// eventBuffer bounds button events waiting for dispatch.
const eventBuffer = 64

var (
	app        = kingpin.New("clipkiosk", "Button-driven video clip kiosk")
	configPath = app.Flag("config", "Path to config file").Default("config/kiosk.yaml").String()
	envFile    = app.Flag("env-file", "Path to .env file").Default(".env").String()
	verbose    = app.Flag("verbose", "Enable verbose (DEBUG) logging").Short('v').Bool()
	logfile    = app.Flag("logfile", "Path to log file (default: stderr)").String()

	// list-banks command
	listBanksCmd = app.Command("list-banks", "List banks with their clip counts and exit")

	// device-test command
	deviceTestCmd   = app.Command("device-test", "Cycle the display and sweep the LED strip")
	deviceTestDelay = deviceTestCmd.Flag("delay", "Pause between steps").Default("150ms").Duration()

	// list-policies command
	listPoliciesCmd = app.Command("list-policies", "List available playback policies and exit")
)

func init() {
	// run command (default) - no need to store the command
	app.Command("run", "Run the kiosk (default)").Default()
}

func main() {
	// Parse command
	command := kingpin.MustParse(app.Parse(os.Args[1:]))

	// Load .env file if it exists (errors are ignored)
	_ = godotenv.Load(*envFile)

	if command == listPoliciesCmd.FullCommand() {
		printPolicies()
		return
	}

	// Initialize logger
	loggerConfig := logger.Config{
		Level: "info",
		RunID: uuid.NewString(),
	}
	if *verbose {
		loggerConfig.Level = "debug"
	}
	if *logfile != "" {
		loggerConfig.File = *logfile
	}
	logCloser, err := logger.Init(loggerConfig)
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}

	// Load config
	zlog.Info().Msgf("clipkiosk: loading config path=%s", *configPath)
	cfg, err := config.Load(*configPath)
	if err != nil {
		zlog.Error().Err(err).Msg("clipkiosk: failed to load config")
		_ = logCloser.Close()
		os.Exit(1)
	}

	switch command {
	case listBanksCmd.FullCommand():
		err = listBanks(cfg)
	case deviceTestCmd.FullCommand():
		err = deviceTest(cfg, *deviceTestDelay)
	default:
		err = run(cfg)
	}

	if err != nil {
		zlog.Error().Err(err).Msg("clipkiosk: exiting with error")
		_ = logCloser.Close()
		os.Exit(1)
	}
	_ = logCloser.Close()
}

// run executes the kiosk. Using a separate function ensures the cleanup
// runs on every exit path.
func run(cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Bank directories and persisted settings
	cat := catalog.New(cfg.Banks.Path, cfg.Banks.Count)
	if err := cat.EnsureDirs(); err != nil {
		return err
	}
	settingsStore := store.NewSettingsStore(cfg.StatePath(), cfg.Banks.Count)
	initial := settingsStore.Load()

	// Devices
	board, err := hardware.Open(cfg)
	if err != nil {
		return err
	}
	renderer := feedback.NewRenderer(feedback.Config{
		MaxBrightness: uint8(cfg.Strip.MaxBrightness),
		PlayheadFloor: uint8(cfg.Strip.PlayheadFloor),
	}, board.Display, board.Strip, board.Power)
	renderer.Blank()
	renderer.ShowBank(initial.Bank)

	var wg sync.WaitGroup
	cleanup := newShutdown(renderer, board)
	runCtx, cancel := context.WithCancel(ctx)
	defer func() {
		cancel()
		wg.Wait()
		cleanup.Run()
	}()

	// Controller
	endPolicies, err := policy.Build(cfg.Loop.EndPolicies)
	if err != nil {
		return errors.Wrap(err, "invalid end policies")
	}
	queue := command.NewQueue()
	controller, err := playback.NewController(playback.Config{EndPolicies: endPolicies}, initial, settingsStore, cat, queue)
	if err != nil {
		return err
	}

	// Player with the current bank as its initial playlist
	player, err := mplayer.Start(mplayer.Config{
		Path:            cfg.Player.Path,
		Args:            cfg.Player.Args,
		ResponseTimeout: cfg.Player.ResponseTimeout(),
		GracefulTimeout: cfg.Player.GracefulTimeout(),
	}, controller.Playlist().Paths())
	if err != nil {
		return err
	}
	cleanup.setPlayer(player)
	renderer.PowerOn()

	// Buttons
	events := make(chan playback.Event, eventBuffer)
	for _, in := range board.Inputs {
		button, err := playback.ParseButton(in.Name())
		if err != nil {
			return err
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			in.Watch(runCtx, func(pressed bool) {
				select {
				case events <- playback.Event{Button: button, Pressed: pressed}:
				default:
					zlog.Warn().Msgf("clipkiosk: event dropped button=%s pressed=%t", button, pressed)
				}
			})
		}()
	}
	wg.Add(1)
	go func() {
		defer wg.Done()
		controller.Dispatch(runCtx, events)
	}()

	// Bank directory watcher
	watcher := catalog.NewWatcher(cat, cfg.Banks.WatchDebounce(), func(bank int) {
		if bank == controller.Settings().Bank {
			zlog.Info().Msgf("clipkiosk: clips of active bank %d changed on disk, select the bank again to reload", bank)
		}
	})
	if err := watcher.Start(runCtx); err != nil {
		zlog.Warn().Err(err).Msg("clipkiosk: bank watcher disabled")
	} else {
		defer func() {
			if err := watcher.Stop(); err != nil {
				zlog.Warn().Err(err).Msg("clipkiosk: failed to stop bank watcher")
			}
		}()
	}

	// Polling loop
	loop := playback.NewLoop(playback.LoopConfig{
		Interval:     cfg.Loop.Interval(),
		CommandDelay: cfg.Loop.CommandDelay(),
		EndThreshold: cfg.Loop.EndThreshold,
	}, controller, queue, player, renderer)

	zlog.Info().Msgf("clipkiosk: running bank=%d banks=%d", initial.Bank, cfg.Banks.Count)
	if err := loop.Run(runCtx); err != nil {
		return errors.Wrap(err, "playback stopped")
	}
	zlog.Info().Msg("clipkiosk: received shutdown signal")
	return nil
}

// listBanks prints every bank with its clip count.
func listBanks(cfg *config.Config) error {
	cat := catalog.New(cfg.Banks.Path, cfg.Banks.Count)
	current := store.NewSettingsStore(cfg.StatePath(), cfg.Banks.Count).Load().Bank

	fmt.Printf("Banks under %s:\n", cat.Root())
	for b := 1; b <= cat.BankCount(); b++ {
		marker := " "
		if b == current {
			marker = "*"
		}
		clips, err := cat.ListClips(b)
		if err != nil {
			fmt.Printf("%s %02d  unreadable: %v\n", marker, b, err)
			continue
		}
		fmt.Printf("%s %02d  %3d clips\n", marker, b, len(clips))
	}
	return nil
}

// deviceTest runs the output self test until done or interrupted.
func deviceTest(cfg *config.Config, delay time.Duration) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	board, err := hardware.Open(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := board.Close(); err != nil {
			zlog.Warn().Err(err).Msg("clipkiosk: failed to close devices")
		}
	}()

	renderer := feedback.NewRenderer(feedback.Config{
		MaxBrightness: uint8(cfg.Strip.MaxBrightness),
		PlayheadFloor: uint8(cfg.Strip.PlayheadFloor),
	}, board.Display, board.Strip, board.Power)

	if err := renderer.SelfTest(ctx, delay); err != nil {
		renderer.Blank()
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	}
	return nil
}

// printPolicies prints available playback policies.
func printPolicies() {
	registry := policy.GetRegistered()
	fmt.Println("Available Policies:")
	for _, name := range slices.Sorted(maps.Keys(registry)) {
		p := registry[name]()
		fmt.Printf("  %-10s - %s\n", p.Name(), p.Description())
	}
}
