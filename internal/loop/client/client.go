// Package client runs one game session for one remote terminal and keeps the
// lobby informed about it.
package client

import (
	"context"
	"io"
	"math/rand"
	"time"

	"github.com/charmbracelet/log"

	"github.com/tomz197/invaders/internal/draw"
	"github.com/tomz197/invaders/internal/input"
	"github.com/tomz197/invaders/internal/loop"
	"github.com/tomz197/invaders/internal/loop/config"
	"github.com/tomz197/invaders/internal/loop/server"
)

// Client handles rendering and input for a single connection.
type Client struct {
	lobby        server.Lobby
	handle       *server.ClientHandle
	state        *ClientState
	session      *loop.Session
	renderer     *loop.Renderer
	inputStream  *input.Stream
	lastReported server.Score
	reported     bool
	logger       *log.Logger
	now          func() time.Time
}

// ClientOptions configures the client.
type ClientOptions struct {
	TermSizeFunc draw.TermSizeFunc
	Username     string
	Logger       *log.Logger
	Rand         *rand.Rand
}

// NewClient creates a new client registered with the given lobby.
func NewClient(lobby server.Lobby, r io.ByteReader, w io.Writer, opts ClientOptions) *Client {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}

	handle := lobby.RegisterClient(opts.Username)
	logger = logger.With("client", handle.ID, "username", handle.Username)

	return &Client{
		lobby:  lobby,
		handle: handle,
		state:  NewClientState(time.Now()),
		session: loop.NewSession(loop.SessionOptions{
			Logger: logger,
			Rand:   opts.Rand,
		}),
		renderer:    loop.NewRenderer(w, opts.TermSizeFunc),
		inputStream: input.StartStream(r),
		logger:      logger,
		now:         time.Now,
	}
}

// Run starts the client loop. Blocks until the client disconnects, the
// server stops or ctx is cancelled.
func (c *Client) Run(ctx context.Context) error {
	defer c.lobby.UnregisterClient(c.handle.ID)
	defer c.inputStream.Stop()

	if err := c.renderer.Begin(); err != nil {
		return err
	}
	// The session may already be gone when the terminal is restored.
	defer func() { _ = c.renderer.End() }()

	d := loop.NewDriver(c.session)
	defer d.Stop()

	for c.state.Running {
		select {
		case <-ctx.Done():
			return nil
		case <-d.Fire():
			c.session.InvaderFire()
		case <-d.Frame():
			if err := c.frame(d); err != nil {
				return err
			}
		}
	}
	return nil
}

// frame runs one client frame: input, lobby events, session step, score
// report and drawing.
func (c *Client) frame(d *loop.Driver) error {
	in := input.ReadInput(c.inputStream)
	c.trackActivity(in)
	c.processServerEvents()

	switch {
	case !c.state.Running:
		return nil
	case c.state.ShuttingDown:
		c.updateShutdownState(in)
	default:
		if err := d.Step(in); err != nil {
			return err
		}
		if d.EnteredGameOver() {
			input.ResetKeyInput(c.inputStream)
		}
		if !c.session.Running {
			c.state.Running = false
			return nil
		}
		c.reportScore()
	}

	return c.renderer.Frame(c.session, c.overlay)
}

// trackActivity handles the inactivity warning and disconnect.
func (c *Client) trackActivity(in input.Input) {
	now := c.now()
	idle := now.Sub(c.state.lastInput).Seconds()
	switch {
	case len(in.Pressed) > 0:
		c.state.lastInput = now
		c.state.isInactive = false
	case idle > config.InactivityDisconnectUser:
		c.logger.Info("disconnecting inactive player")
		c.state.Running = false
	case idle > config.InactivityWarnUser:
		c.state.isInactive = true
	}
}

// processServerEvents handles events from the lobby.
func (c *Client) processServerEvents() {
	for {
		select {
		case event, ok := <-c.handle.EventsCh:
			if !ok {
				// Server closed the channel
				c.state.Running = false
				return
			}
			switch event.Type {
			case server.EventServerShutdown:
				c.state.ShuttingDown = true
				c.state.shutdownTimer = config.ShutdownDisplaySeconds
			}
		default:
			return
		}
	}
}

// updateShutdownState counts down the shutdown screen. The session is frozen.
func (c *Client) updateShutdownState(in input.Input) {
	c.state.shutdownTimer -= config.TargetFrameTime.Seconds()
	if in.Quit || c.state.shutdownTimer <= 0 {
		c.state.Running = false
	}
}

// reportScore sends the session stats to the lobby when they change.
func (c *Client) reportScore() {
	st := c.session.Stats()
	score := server.Score{Score: st.Score, Level: st.Level, High: st.High}
	if c.reported && score == c.lastReported {
		return
	}
	c.lobby.ReportScore(c.handle.ID, score)
	c.lastReported = score
	c.reported = true
}
