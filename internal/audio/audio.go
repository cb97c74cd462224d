// Package audio plays short synthesized sound effects.
//
// Playback is fire-and-forget: callers never see an error once a Player
// has been built, and a machine without a sound device gets Nop.
package audio

import (
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gopxl/beep"
	"github.com/gopxl/beep/speaker"
)

const sampleRate = beep.SampleRate(44100)

// Sound identifies a sound effect.
type Sound int

const (
	SoundShoot Sound = iota
	SoundHit
	SoundExplosion
	SoundNextLevel
)

func (s Sound) String() string {
	switch s {
	case SoundShoot:
		return "shoot"
	case SoundHit:
		return "hit"
	case SoundExplosion:
		return "explosion"
	case SoundNextLevel:
		return "next-level"
	default:
		return fmt.Sprintf("sound(%d)", int(s))
	}
}

// Player plays sound effects.
type Player interface {
	Play(s Sound)
}

// Nop is a Player that stays silent.
type Nop struct{}

// Play does nothing.
func (Nop) Play(Sound) {}

// Speaker plays sounds on the local audio device through a shared mixer.
type Speaker struct {
	mu     sync.Mutex
	mixer  *beep.Mixer
	volume float64
	logger *log.Logger
	closed bool
}

// NewSpeaker opens the default audio device. volume is a linear gain in [0, 1].
func NewSpeaker(logger *log.Logger, volume float64) (*Speaker, error) {
	if err := speaker.Init(sampleRate, sampleRate.N(time.Second/10)); err != nil {
		return nil, fmt.Errorf("init speaker: %w", err)
	}
	s := &Speaker{
		mixer:  &beep.Mixer{},
		volume: volume,
		logger: logger,
	}
	speaker.Play(s.mixer)
	return s, nil
}

// Play queues a sound on the mixer. Unknown sounds and a closed speaker are ignored.
func (s *Speaker) Play(snd Sound) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}

	streamer := buildSound(snd, sampleRate, s.volume)
	if streamer == nil {
		s.logger.Debug("no streamer for sound", "sound", snd)
		return
	}

	speaker.Lock()
	s.mixer.Add(streamer)
	speaker.Unlock()
}

// Close stops playback and releases the audio device.
func (s *Speaker) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	speaker.Clear()
	speaker.Close()
}

// New returns a Speaker when enabled and the device opens, Nop otherwise.
// The returned close function is always safe to call.
func New(logger *log.Logger, enabled bool, volume float64) (Player, func()) {
	if !enabled {
		return Nop{}, func() {}
	}
	s, err := NewSpeaker(logger, volume)
	if err != nil {
		logger.Warn("audio disabled", "err", err)
		return Nop{}, func() {}
	}
	return s, s.Close
}
