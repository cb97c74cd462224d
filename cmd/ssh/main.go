package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/charmbracelet/ssh"
	"github.com/charmbracelet/wish"
	"github.com/charmbracelet/wish/activeterm"
	"github.com/charmbracelet/wish/logging"
	"go.uber.org/multierr"

	"github.com/tomz197/invaders/internal/config"
	"github.com/tomz197/invaders/internal/draw"
	"github.com/tomz197/invaders/internal/loop/client"
	"github.com/tomz197/invaders/internal/loop/server"
	"github.com/tomz197/invaders/internal/scoreboard"
)

const (
	defaultHost           = "::"
	defaultPort           = "2222"
	defaultHostKeyPath    = "/app/keys/host_key"
	defaultScoreboardAddr = ":8081"
)

func main() {
	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		Prefix:          "ssh",
	})

	if loaded, err := config.LoadDotEnv(); err != nil {
		logger.Fatal("failed to load .env", "err", err)
	} else if loaded {
		logger.Info("loaded .env")
	}

	if debug, err := config.GetEnvBool("DEBUG", false); err != nil {
		logger.Warn("ignoring DEBUG", "err", err)
	} else if debug {
		logger.SetLevel(log.DebugLevel)
	}

	host := config.GetEnv("SSH_HOST", defaultHost)
	port := config.GetEnv("SSH_PORT", defaultPort)
	hostKeyPath := config.GetEnv("SSH_HOST_KEY", defaultHostKeyPath)
	scoreboardAddr := config.GetEnv("SCOREBOARD_ADDR", defaultScoreboardAddr)
	drainTimeout, err := config.GetEnvDuration("SHUTDOWN_TIMEOUT", 15*time.Second)
	if err != nil {
		logger.Warn("using default shutdown timeout", "err", err, "timeout", drainTimeout)
	}
	leaderboardSize, err := config.GetEnvInt("LEADERBOARD_SIZE", 0)
	if err != nil {
		logger.Warn("using default leaderboard size", "err", err)
	}
	logger.Info("config", "host", host, "port", port, "hostKeyPath", hostKeyPath, "scoreboard", scoreboardAddr)

	// Lobby shared by all SSH clients, and the leaderboard hub it feeds
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	lobby := server.NewServer(logger.WithPrefix("lobby"))
	lobby.SetLeaderboardSize(leaderboardSize)
	hub := scoreboard.NewHub(logger.WithPrefix("scoreboard"))
	lobby.OnSnapshot(func(snap *server.Snapshot) {
		hub.Publish(scoreboard.FromSnapshot(snap))
	})
	go lobby.Run(ctx)
	go hub.Run(ctx)

	httpServer := &http.Server{
		Addr:              scoreboardAddr,
		Handler:           hub.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	opts := []ssh.Option{
		wish.WithAddress(net.JoinHostPort(host, port)),
		wish.WithMiddleware(
			gameMiddleware(lobby, logger),
			activeterm.Middleware(),
			logging.MiddlewareWithLogger(logger),
		),
		// Set TCP_NODELAY to reduce latency for game input
		ssh.WrapConn(func(ctx ssh.Context, conn net.Conn) net.Conn {
			if tcpConn, ok := conn.(*net.TCPConn); ok {
				_ = tcpConn.SetNoDelay(true)
			}
			return conn
		}),
	}
	if hostKeyPath != "" {
		opts = append(opts, wish.WithHostKeyPath(hostKeyPath))
	}

	s, err := wish.NewServer(opts...)
	if err != nil {
		logger.Fatal("failed to create server", "err", err)
	}

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	logger.Info("starting SSH server", "addr", s.Addr)
	go func() {
		if err := s.ListenAndServe(); err != nil && !errors.Is(err, ssh.ErrServerClosed) {
			logger.Fatal("ssh server error", "err", err)
		}
	}()

	logger.Info("starting scoreboard", "addr", scoreboardAddr)
	go func() {
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("scoreboard server error", "err", err)
		}
	}()

	<-done
	logger.Info("shutting down")

	// Notify connected players and wait for them to disconnect
	lobby.Shutdown(drainTimeout)
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	err = multierr.Combine(
		s.Shutdown(shutdownCtx),
		httpServer.Shutdown(shutdownCtx),
	)
	if err != nil {
		logger.Fatal("shutdown error", "err", err)
	}
	logger.Info("stopped")
}

// gameMiddleware runs one game client per SSH session.
func gameMiddleware(lobby server.Lobby, logger *log.Logger) wish.Middleware {
	return func(next ssh.Handler) ssh.Handler {
		return func(sess ssh.Session) {
			pty, winCh, ok := sess.Pty()
			if !ok {
				fmt.Fprintln(sess, "Error: PTY required. Please connect with: ssh -t user@host")
				return
			}

			logger.Info("new game session", "user", sess.User(), "term", pty.Term,
				"width", pty.Window.Width, "height", pty.Window.Height)

			sizeTracker := newSizeTracker(pty.Window.Width, pty.Window.Height)
			go func() {
				for win := range winCh {
					sizeTracker.update(win.Width, win.Height)
				}
			}()

			c := client.NewClient(lobby, bufio.NewReader(sess), sess, client.ClientOptions{
				TermSizeFunc: sizeTracker.getSize,
				Username:     sess.User(),
				Logger:       logger,
			})
			if err := c.Run(sess.Context()); err != nil {
				logger.Error("game error", "user", sess.User(), "err", err)
			}

			logger.Info("session ended", "user", sess.User())
			next(sess)
		}
	}
}

// sizeTracker tracks terminal size from SSH window change events.
type sizeTracker struct {
	mu     sync.RWMutex
	width  int
	height int
}

func newSizeTracker(width, height int) *sizeTracker {
	return &sizeTracker{width: width, height: height}
}

func (s *sizeTracker) update(width, height int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.width = width
	s.height = height
}

func (s *sizeTracker) getSize() (int, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.width, s.height, nil
}

var _ draw.TermSizeFunc = (*sizeTracker)(nil).getSize
