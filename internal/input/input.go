// Package input turns a raw terminal byte stream into per-frame key intents.
package input

import (
	"io"
	"sync"
	"time"
)

// keyHoldDuration is how long a movement key is considered "held" after its last press.
const keyHoldDuration = 30 * time.Millisecond

// shootHoldDuration bridges the gap between auto-repeat bytes of a held shoot key,
// so holding it does not read as a series of separate presses.
const shootHoldDuration = 120 * time.Millisecond

// Input represents the current frame's input state.
type Input struct {
	Quit          bool
	Left          bool
	Right         bool
	ShootPressed  bool // Shoot key is held
	ShootReleased bool // Shoot key was let go since the previous frame
	Enter         bool
	Pressed       []byte // Raw bytes received this frame
}

// keyState tracks the last time each key was pressed.
type keyState struct {
	quit  time.Time
	left  time.Time
	right time.Time
	shoot time.Time
	enter time.Time
}

// Stream delivers input bytes via a channel and tracks key state across frames.
// Terminals send no key-up events, so releases are inferred from hold windows.
type Stream struct {
	ch        chan byte
	done      chan struct{}
	stopOnce  sync.Once
	state     keyState
	shootHeld bool // Shoot state reported on the previous frame
	closed    bool
}

func newStream() *Stream {
	return &Stream{ch: make(chan byte, 128), done: make(chan struct{})}
}

// StartStream spawns a goroutine that reads from r and sends bytes to the stream.
// The stream reports Quit once r returns an error (e.g. the session closed).
// Call Stop when the stream is no longer read.
func StartStream(r io.ByteReader) *Stream {
	s := newStream()
	go func() {
		defer close(s.ch)
		for {
			b, err := r.ReadByte()
			if err != nil {
				return
			}
			select {
			case s.ch <- b:
			case <-s.done:
				return
			}
		}
	}()
	return s
}

// Stop releases the reader goroutine. It exits at its next byte, or as soon
// as a pending ReadByte returns.
func (s *Stream) Stop() {
	s.stopOnce.Do(func() { close(s.done) })
}

// ReadInput drains all available bytes from the stream (non-blocking).
// Handles escape sequences for arrow keys and accumulates all pressed keys.
func ReadInput(s *Stream) Input {
	return readInputAt(s, time.Now())
}

func readInputAt(s *Stream, now time.Time) Input {
	buf := s.drain()

	for i := 0; i < len(buf); i++ {
		b := buf[i]

		// CSI sequence: ESC [ <code>
		if b == '\x1b' && i+2 < len(buf) && buf[i+1] == '[' {
			switch buf[i+2] {
			case 'C': // Right arrow
				s.state.right = now
				i += 2
				continue
			case 'D': // Left arrow
				s.state.left = now
				i += 2
				continue
			case 'A', 'B': // Up/down arrows are unused
				i += 2
				continue
			}
		}

		applyByteToState(&s.state, b, now)
	}

	shoot := now.Sub(s.state.shoot) < shootHoldDuration
	in := Input{
		Quit:          s.closed || now.Sub(s.state.quit) < keyHoldDuration,
		Left:          now.Sub(s.state.left) < keyHoldDuration,
		Right:         now.Sub(s.state.right) < keyHoldDuration,
		ShootPressed:  shoot,
		ShootReleased: s.shootHeld && !shoot,
		Enter:         now.Sub(s.state.enter) < keyHoldDuration,
		Pressed:       buf,
	}
	s.shootHeld = shoot
	return in
}

// drain collects every byte currently queued without blocking.
func (s *Stream) drain() []byte {
	var buf []byte
	for {
		select {
		case b, ok := <-s.ch:
			if !ok {
				s.closed = true
				return buf
			}
			buf = append(buf, b)
		default:
			return buf
		}
	}
}

// ResetKeyInput forgets all held keys and discards pending bytes, so a key used
// to leave a screen does not leak into the next one.
func ResetKeyInput(s *Stream) {
	if s == nil {
		return
	}
	s.drain()
	s.state = keyState{}
	s.shootHeld = false
}

// applyByteToState updates the key state timestamps based on the pressed byte.
func applyByteToState(state *keyState, b byte, now time.Time) {
	switch b {
	case 'q', 'Q':
		state.quit = now
	case 'a', 'A', 'j', 'J':
		state.left = now
	case 'd', 'D', 'l', 'L':
		state.right = now
	case ' ':
		state.shoot = now
	case '\n', '\r':
		state.enter = now
	}
}
