package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"math/rand/v2"
	"os"
	"os/signal"
	"syscall"

	"github.com/hajimehoshi/ebiten/v2"
	"go.uber.org/zap"

	"github.com/iburimskiy/chronoscope/internal/audio"
	"github.com/iburimskiy/chronoscope/internal/chronicle"
	"github.com/iburimskiy/chronoscope/internal/config"
	"github.com/iburimskiy/chronoscope/internal/game"
	"github.com/iburimskiy/chronoscope/internal/logging"
)

func main() {
	os.Exit(run())
}

func run() int {
	configPath := flag.String("config", "", "config file path (optional, defaults to ~/.config/chronoscope/config.toml)")
	debug := flag.Bool("debug", false, "human-readable debug logging")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "chronoscope: %v\n", err)
		return 1
	}
	level := cfg.LogLevel
	if *debug {
		level = "debug"
	}
	logger, err := logging.New(level, *debug)
	if err != nil {
		fmt.Fprintf(os.Stderr, "chronoscope: %v\n", err)
		return 1
	}
	defer func() { _ = logger.Sync() }()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := runGame(ctx, cfg, logger); err != nil {
		logger.Error("viewer stopped", zap.Error(err))
		return 1
	}
	return 0
}

func runGame(ctx context.Context, cfg config.Config, logger *zap.Logger) error {
	client, err := chronicle.NewClient(cfg.NASAAPIKey, newRand(), chronicle.WithLogger(logger.Named("chronicle")))
	if err != nil {
		return err
	}

	player := audio.NewPlayer(audio.Speaker(), cfg.SampleRate, config.ScopeRingSize, newRand(), logger.Named("audio"))
	defer func() { _ = player.Close() }()

	g, err := game.New(ctx, game.Options{
		Config:   cfg,
		Logger:   logger,
		Player:   player,
		Explorer: client,
		RNG:      newRand(),
	})
	if err != nil {
		return err
	}

	ebiten.SetWindowSize(config.WindowWidth, config.WindowHeight)
	ebiten.SetWindowTitle(config.WindowTitle)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetTPS(cfg.TPS)

	logger.Info("starting viewer",
		zap.Int("sample_rate", cfg.SampleRate),
		zap.Int("tps", cfg.TPS),
	)
	if err := ebiten.RunGame(g); err != nil && !errors.Is(err, ebiten.Termination) {
		return fmt.Errorf("run game: %w", err)
	}
	return nil
}

// newRand returns an independently seeded generator; each goroutine-bound
// component gets its own.
func newRand() *rand.Rand {
	return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
}
