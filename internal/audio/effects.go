package audio

import (
	"math"
	"math/rand"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
	"github.com/gopxl/beep/generators"
)

// waveType selects the oscillator shape.
type waveType int

const (
	waveSquare waveType = iota
	waveNoise
)

// sweep is an oscillator whose frequency glides linearly from start to end.
type sweep struct {
	start, end float64
	phase      float64
	pos        int
	total      int
	wave       waveType
	rate       beep.SampleRate
}

func newSweep(start, end float64, d time.Duration, wave waveType, rate beep.SampleRate) beep.Streamer {
	return &sweep{start: start, end: end, total: rate.N(d), wave: wave, rate: rate}
}

func (o *sweep) Stream(samples [][2]float64) (n int, ok bool) {
	for i := range samples {
		if o.pos >= o.total {
			return i, i > 0
		}
		var val float64
		switch o.wave {
		case waveSquare:
			if o.phase < 0.5 {
				val = 1
			} else {
				val = -1
			}
		case waveNoise:
			val = rand.Float64()*2 - 1
		}
		samples[i][0] = val
		samples[i][1] = val

		t := float64(o.pos) / float64(o.total)
		freq := o.start + (o.end-o.start)*t
		o.phase += freq / float64(o.rate)
		o.phase -= math.Floor(o.phase)
		o.pos++
	}
	return len(samples), true
}

func (o *sweep) Err() error { return nil }

// envelope applies a linear attack and release to a stream of fixed length.
type envelope struct {
	streamer beep.Streamer
	pos      int
	attack   int
	release  int
	total    int
}

func newEnvelope(s beep.Streamer, d, attack, release time.Duration, rate beep.SampleRate) beep.Streamer {
	return &envelope{
		streamer: beep.Take(rate.N(d), s),
		attack:   rate.N(attack),
		release:  rate.N(release),
		total:    rate.N(d),
	}
}

func (e *envelope) Stream(samples [][2]float64) (n int, ok bool) {
	n, ok = e.streamer.Stream(samples)
	releaseStart := e.total - e.release
	for i := 0; i < n; i++ {
		vol := 1.0
		if e.attack > 0 && e.pos < e.attack {
			vol = float64(e.pos) / float64(e.attack)
		}
		if e.release > 0 && e.pos >= releaseStart {
			vol = math.Max(0, float64(e.total-e.pos)/float64(e.release))
		}
		samples[i][0] *= vol
		samples[i][1] *= vol
		e.pos++
	}
	return n, ok
}

func (e *envelope) Err() error { return e.streamer.Err() }

// gain wraps s in a volume effect; vol is linear and 0 means silent.
func gain(s beep.Streamer, vol float64) beep.Streamer {
	if vol <= 0 {
		return &effects.Volume{Streamer: s, Base: 2, Silent: true}
	}
	return &effects.Volume{Streamer: s, Base: 2, Volume: math.Log2(vol)}
}

// tone is an enveloped sine note.
func tone(freq float64, d time.Duration, rate beep.SampleRate) beep.Streamer {
	sine, err := generators.SineTone(rate, freq)
	if err != nil {
		return beep.Silence(rate.N(d))
	}
	return newEnvelope(sine, d, 5*time.Millisecond, d/2, rate)
}

// buildSound synthesizes a fresh streamer for snd, or nil for unknown sounds.
func buildSound(snd Sound, rate beep.SampleRate, volume float64) beep.Streamer {
	var s beep.Streamer
	switch snd {
	case SoundShoot:
		d := 90 * time.Millisecond
		s = gain(newEnvelope(newSweep(1200, 300, d, waveSquare, rate), d, 2*time.Millisecond, 60*time.Millisecond, rate), 0.25)
	case SoundHit:
		d := 120 * time.Millisecond
		s = beep.Mix(
			gain(newEnvelope(newSweep(0, 0, d, waveNoise, rate), d, time.Millisecond, 100*time.Millisecond, rate), 0.4),
			gain(tone(220, d, rate), 0.4),
		)
	case SoundExplosion:
		d := 600 * time.Millisecond
		s = gain(newEnvelope(newSweep(0, 0, d, waveNoise, rate), d, 5*time.Millisecond, 500*time.Millisecond, rate), 0.6)
	case SoundNextLevel:
		note := 90 * time.Millisecond
		s = gain(beep.Seq(
			tone(523.25, note, rate), // C5
			tone(659.25, note, rate), // E5
			tone(783.99, note, rate), // G5
			tone(1046.5, 2*note, rate),
		), 0.35)
	default:
		return nil
	}
	return gain(s, volume)
}
