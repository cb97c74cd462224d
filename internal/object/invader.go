package object

import (
	"github.com/tomz197/invaders/internal/draw"
	"github.com/tomz197/invaders/internal/physics"
)

// Invader dimensions.
const (
	InvaderWidth  = 8.0
	InvaderHeight = 6.0
)

// Invader is one enemy of the formation. It has no velocity of its own;
// the Grid moves all invaders together.
type Invader struct {
	X, Y          float64 // Top-left corner
	Width, Height float64
	sprite        *draw.Image
	destroyed     bool
}

// NewInvader creates an invader with its top-left corner at (x, y).
func NewInvader(x, y float64, sprite *draw.Image) *Invader {
	return &Invader{
		X:      x,
		Y:      y,
		Width:  InvaderWidth,
		Height: InvaderHeight,
		sprite: sprite,
	}
}

// MarkDestroyed marks the invader for removal.
func (inv *Invader) MarkDestroyed() {
	inv.destroyed = true
}

// IsDestroyed returns true if the invader is marked for destruction.
func (inv *Invader) IsDestroyed() bool {
	return inv.destroyed
}

// Bounds returns the collision box.
func (inv *Invader) Bounds() physics.Rect {
	return physics.Rect{X: inv.X, Y: inv.Y, W: inv.Width, H: inv.Height}
}

// Center returns the middle of the invader.
func (inv *Invader) Center() (float64, float64) {
	return inv.Bounds().Center()
}

// Hit reports whether the projectile touches the invader. It has no side effects.
func (inv *Invader) Hit(p *Projectile) bool {
	return inv.Bounds().Overlaps(p.Bounds())
}

// Shoot fires a projectile downward from the invader's bottom edge.
func (inv *Invader) Shoot(spawner Spawner) {
	if spawner == nil {
		return
	}
	spawner.Spawn(NewProjectile(inv.X+inv.Width/2, inv.Y+inv.Height, InvaderProjectileSpeed, OwnerInvader))
}

// Draw renders the invader sprite.
func (inv *Invader) Draw(ctx DrawContext) error {
	if inv.sprite == nil {
		ctx.Canvas.FillRect(inv.Bounds(), draw.White)
		return nil
	}
	ctx.Canvas.Blit(inv.sprite, nil, inv.Bounds())
	return nil
}
