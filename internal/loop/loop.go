// Package loop provides the game session, its frame loop and terminal screens.
package loop

import (
	"context"
	"io"
	"math/rand"
	"time"

	"github.com/charmbracelet/log"
	"go.uber.org/multierr"

	"github.com/tomz197/invaders/internal/audio"
	"github.com/tomz197/invaders/internal/draw"
	"github.com/tomz197/invaders/internal/input"
	"github.com/tomz197/invaders/internal/loop/config"
)

// Options configures Run.
type Options struct {
	TermSizeFunc draw.TermSizeFunc
	Audio        audio.Player
	Logger       *log.Logger
	Rand         *rand.Rand
}

// Run plays a game on the terminal until the player quits, the input closes
// or ctx is cancelled. Frames and enemy fire are driven by two tickers on
// the same goroutine, so the session never sees concurrent access.
func Run(ctx context.Context, r io.ByteReader, w io.Writer, opts Options) (err error) {
	s := NewSession(SessionOptions{
		Audio:  opts.Audio,
		Logger: opts.Logger,
		Rand:   opts.Rand,
	})
	stream := input.StartStream(r)
	defer stream.Stop()
	renderer := NewRenderer(w, opts.TermSizeFunc)

	if err := renderer.Begin(); err != nil {
		return err
	}
	defer func() {
		err = multierr.Append(err, renderer.End())
	}()

	d := NewDriver(s)
	defer d.Stop()

	for s.Running {
		select {
		case <-ctx.Done():
			return nil
		case <-d.Fire():
			s.InvaderFire()
		case <-d.Frame():
			if err := d.Step(input.ReadInput(stream)); err != nil {
				return err
			}
			if d.EnteredGameOver() {
				input.ResetKeyInput(stream)
			}
			if err := renderer.Frame(s); err != nil {
				return err
			}
		}
	}
	return nil
}

// Driver owns the frame and enemy fire tickers around a session and tracks
// state transitions between frames. Callers select on Frame and Fire from the
// goroutine that owns the session.
type Driver struct {
	s         *Session
	frame     *time.Ticker
	fire      *time.Ticker
	prevState GameState
	restarts  int
}

// NewDriver starts the tickers for s.
func NewDriver(s *Session) *Driver {
	return &Driver{
		s:         s,
		frame:     time.NewTicker(config.TargetFrameTime),
		fire:      time.NewTicker(config.InvaderFireInterval),
		prevState: s.GameState,
		restarts:  s.Restarts(),
	}
}

// Frame ticks once per frame.
func (d *Driver) Frame() <-chan time.Time {
	return d.frame.C
}

// Fire ticks on every enemy fire interval.
func (d *Driver) Fire() <-chan time.Time {
	return d.fire.C
}

// Step runs one frame and restarts the enemy fire timer after a restart.
func (d *Driver) Step(in input.Input) error {
	d.prevState = d.s.GameState
	if err := d.s.Update(in); err != nil {
		return err
	}
	if d.s.Restarts() != d.restarts {
		d.restarts = d.s.Restarts()
		d.fire.Reset(config.InvaderFireInterval)
	}
	return nil
}

// EnteredGameOver reports whether the last step ended the game.
func (d *Driver) EnteredGameOver() bool {
	return d.prevState != GameStateGameOver && d.s.GameState == GameStateGameOver
}

// Stop releases the tickers.
func (d *Driver) Stop() {
	d.frame.Stop()
	d.fire.Stop()
}
