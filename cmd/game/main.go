package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"math/rand"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/urfave/cli/v3"
	"golang.org/x/term"

	"github.com/tomz197/invaders/internal/audio"
	"github.com/tomz197/invaders/internal/config"
	"github.com/tomz197/invaders/internal/loop"
)

func main() {
	if _, err := config.LoadDotEnv(); err != nil {
		fmt.Fprintf(os.Stderr, "env: %v\n", err)
	}

	cmd := &cli.Command{
		Name:  "invaders",
		Usage: "play Space Invaders in the terminal",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    "mute",
				Usage:   "disable sound effects",
				Sources: cli.EnvVars("INVADERS_MUTE"),
			},
			&cli.FloatFlag{
				Name:    "volume",
				Usage:   "sound volume between 0 and 1",
				Value:   0.3,
				Sources: cli.EnvVars("INVADERS_VOLUME"),
			},
			&cli.Int64Flag{
				Name:    "seed",
				Usage:   "random seed for formations and enemy fire (0 picks one)",
				Sources: cli.EnvVars("INVADERS_SEED"),
			},
			&cli.StringFlag{
				Name:    "log-file",
				Usage:   "write logs to this file",
				Sources: cli.EnvVars("INVADERS_LOG_FILE"),
			},
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "debug, info, warn or error",
				Value:   "info",
				Sources: cli.EnvVars("INVADERS_LOG_LEVEL"),
			},
		},
		Action: run,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cmd.Run(ctx, os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "game error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cmd *cli.Command) error {
	logger, closeLog, err := newLogger(cmd.String("log-file"), cmd.String("log-level"))
	if err != nil {
		return err
	}
	defer closeLog()

	seed := cmd.Int64("seed")
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	logger.Info("starting", "seed", seed, "mute", cmd.Bool("mute"))

	player, closeAudio := audio.New(logger, !cmd.Bool("mute"), cmd.Float("volume"))
	defer closeAudio()

	fd := int(os.Stdin.Fd())
	oldState, err := term.MakeRaw(fd)
	if err != nil {
		return fmt.Errorf("enable raw mode: %w", err)
	}
	defer func() {
		_ = term.Restore(fd, oldState)
	}()

	reader := bufio.NewReader(os.Stdin)
	return loop.Run(ctx, reader, os.Stdout, loop.Options{
		Audio:  player,
		Logger: logger,
		Rand:   rand.New(rand.NewSource(seed)),
	})
}

// newLogger writes to path, or discards everything when path is empty.
func newLogger(path, level string) (*log.Logger, func(), error) {
	lvl, err := log.ParseLevel(level)
	if err != nil {
		return nil, nil, fmt.Errorf("log level: %w", err)
	}

	var w io.Writer = io.Discard
	closeFn := func() {}
	if path != "" {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("open log file: %w", err)
		}
		w = f
		closeFn = func() { _ = f.Close() }
	}

	logger := log.NewWithOptions(w, log.Options{
		Level:           lvl,
		ReportTimestamp: true,
		Prefix:          "invaders",
	})
	return logger, closeFn, nil
}
