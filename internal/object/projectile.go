package object

import (
	"github.com/tomz197/invaders/internal/asset"
	"github.com/tomz197/invaders/internal/physics"
)

// Owner identifies who fired a projectile.
type Owner int

const (
	OwnerPlayer Owner = iota
	OwnerInvader
)

// ProjectileRadius is the half-size of a projectile's collision box.
const ProjectileRadius = 1.0

// Projectile speeds in logical units per frame. Negative travels up.
const (
	PlayerProjectileSpeed  = -2.5
	InvaderProjectileSpeed = 1.2
)

// Projectile is a shot travelling straight up or down.
type Projectile struct {
	X, Y      float64 // Center
	Velocity  float64 // Vertical speed per frame
	Radius    float64
	Owner     Owner
	destroyed bool // Marked for destruction
}

// NewProjectile creates a projectile centered at (x, y).
func NewProjectile(x, y, velocity float64, owner Owner) *Projectile {
	return &Projectile{
		X:        x,
		Y:        y,
		Velocity: velocity,
		Radius:   ProjectileRadius,
		Owner:    owner,
	}
}

// MarkDestroyed marks the projectile for removal.
func (p *Projectile) MarkDestroyed() {
	p.destroyed = true
}

// IsDestroyed returns true if the projectile is marked for destruction.
func (p *Projectile) IsDestroyed() bool {
	return p.destroyed
}

// Bounds returns the collision box.
func (p *Projectile) Bounds() physics.Rect {
	return physics.RectAround(p.X, p.Y, p.Radius)
}

// OutOfBounds reports whether the projectile has left the viewport in its direction
// of travel: the top edge for upward shots, the bottom edge for downward ones.
func (p *Projectile) OutOfBounds(height float64) bool {
	if p.Velocity < 0 {
		return p.Y <= 0
	}
	return p.Y >= height
}

// Update moves the projectile and reports whether it should be pruned.
func (p *Projectile) Update(ctx UpdateContext) (bool, error) {
	if p.destroyed {
		return true, nil
	}
	p.Y += p.Velocity
	return p.OutOfBounds(ctx.Screen.Height), nil
}

// Draw renders the projectile as a small filled box.
func (p *Projectile) Draw(ctx DrawContext) error {
	col := asset.PlayerShot
	if p.Owner == OwnerInvader {
		col = asset.InvaderShot
	}
	ctx.Canvas.FillRect(p.Bounds(), col)
	return nil
}
