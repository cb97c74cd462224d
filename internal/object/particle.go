package object

import (
	"math/rand"
	"sync"

	"github.com/tomz197/invaders/internal/draw"
	"github.com/tomz197/invaders/internal/physics"
)

// Particle tuning.
const (
	ParticleRadius = 0.5
	ParticleFade   = 0.02 // Opacity lost per frame
	ParticleJitter = 0.6  // Velocity spread per axis
)

// particlePool is a sync.Pool for reusing Particle objects to reduce allocations.
var particlePool = sync.Pool{
	New: func() any {
		return &Particle{}
	},
}

// Particle is a short-lived fading dot.
type Particle struct {
	X, Y    float64 // Position
	VX, VY  float64 // Velocity per frame
	Radius  float64
	Color   draw.RGB
	Opacity float64 // 1 when spawned, pruned at 0
}

// NewParticle creates a single particle from the pool.
func NewParticle(x, y, vx, vy, radius float64, color draw.RGB) *Particle {
	p := particlePool.Get().(*Particle)
	p.X = x
	p.Y = y
	p.VX = vx
	p.VY = vy
	p.Radius = radius
	p.Color = color
	p.Opacity = 1
	return p
}

// Release returns the particle to the pool for reuse.
// Should be called when the particle is removed from the game.
func (p *Particle) Release() {
	particlePool.Put(p)
}

// SpawnExplosion creates count particles at (x, y) with small random velocities.
func SpawnExplosion(x, y float64, count int, color draw.RGB, rng *rand.Rand, spawner Spawner) {
	if spawner == nil || rng == nil {
		return
	}
	for i := 0; i < count; i++ {
		vx := (rng.Float64() - 0.5) * ParticleJitter
		vy := (rng.Float64() - 0.5) * ParticleJitter
		spawner.Spawn(NewParticle(x, y, vx, vy, ParticleRadius, color))
	}
}

// Update moves the particle and fades it out.
func (p *Particle) Update(_ UpdateContext) (bool, error) {
	p.X += p.VX
	p.Y += p.VY
	p.Opacity -= ParticleFade
	return p.Opacity <= 0, nil
}

// Draw renders the particle with its color darkened by the remaining opacity.
func (p *Particle) Draw(ctx DrawContext) error {
	col := p.Color.Fade(p.Opacity)
	if !col.IsSet() {
		return nil
	}
	if p.Radius < 1 {
		ctx.Canvas.SetFloat(p.X, p.Y, col)
		return nil
	}
	ctx.Canvas.FillRect(physics.RectAround(p.X, p.Y, p.Radius), col)
	return nil
}
