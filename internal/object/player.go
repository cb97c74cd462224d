package object

import (
	"github.com/tomz197/invaders/internal/draw"
	"github.com/tomz197/invaders/internal/physics"
)

// Player ship dimensions and tuning.
const (
	PlayerWidth        = 11.0
	PlayerHeight       = 8.0
	PlayerSpeed        = 1.5 // Logical units per frame
	FlameFrameDelay    = 6   // Frames between engine flame animation steps
	playerBottomMargin = 5.0 // Room below the ship for the engine flame
)

// PlayerSprites are the images the ship is drawn from.
type PlayerSprites struct {
	Ship        *draw.Image
	Flame       *draw.Image // Sheet of FlameFrames frames laid out horizontally
	Glow        *draw.Image
	FlameFrames int
}

// Player is the ship controlled by the user. It only moves sideways.
// A destroyed ship is kept with Alive = false.
type Player struct {
	X, Y          float64 // Top-left corner
	Width, Height float64
	Speed         float64
	Alive         bool

	sprites      PlayerSprites
	flameFrame   int
	frameCounter int
}

// NewPlayer creates a ship centered at the bottom of the screen.
func NewPlayer(screen Screen, sprites PlayerSprites) *Player {
	if sprites.FlameFrames < 1 {
		sprites.FlameFrames = 1
	}
	p := &Player{
		Width:   PlayerWidth,
		Height:  PlayerHeight,
		Speed:   PlayerSpeed,
		sprites: sprites,
	}
	p.Reset(screen)
	return p
}

// Reset recenters the ship at the bottom of the screen and revives it.
func (p *Player) Reset(screen Screen) {
	p.X = screen.Width/2 - p.Width/2
	p.Y = screen.Height - p.Height - playerBottomMargin
	p.Alive = true
	p.flameFrame = 0
	p.frameCounter = FlameFrameDelay
}

// MoveLeft moves the ship one step left. Screen bounds are the caller's concern.
func (p *Player) MoveLeft() {
	p.X -= p.Speed
}

// MoveRight moves the ship one step right. Screen bounds are the caller's concern.
func (p *Player) MoveRight() {
	p.X += p.Speed
}

// Shoot fires a projectile from the nose of the ship.
func (p *Player) Shoot(spawner Spawner) {
	if spawner == nil {
		return
	}
	spawner.Spawn(NewProjectile(p.X+p.Width/2, p.Y+1, PlayerProjectileSpeed, OwnerPlayer))
}

// Bounds returns the collision box.
func (p *Player) Bounds() physics.Rect {
	return physics.Rect{X: p.X, Y: p.Y, W: p.Width, H: p.Height}
}

// Center returns the middle of the ship.
func (p *Player) Center() (float64, float64) {
	return p.Bounds().Center()
}

// Hit reports whether the projectile touches the ship. It has no side effects.
func (p *Player) Hit(pr *Projectile) bool {
	return p.Bounds().Overlaps(pr.Bounds())
}

// FlameFrame returns the current engine flame animation frame.
func (p *Player) FlameFrame() int {
	return p.flameFrame
}

// Update advances the engine flame animation.
func (p *Player) Update(_ UpdateContext) (bool, error) {
	p.frameCounter--
	if p.frameCounter <= 0 {
		p.flameFrame = (p.flameFrame + 1) % p.sprites.FlameFrames
		p.frameCounter = FlameFrameDelay
	}
	return false, nil
}

// Draw renders the ship, the current flame frame below it and the engine glow.
func (p *Player) Draw(ctx DrawContext) error {
	if !p.Alive {
		return nil
	}

	if flame := p.sprites.Flame; flame != nil {
		fw := float64(flame.Width / p.sprites.FlameFrames)
		fh := float64(flame.Height)
		src := physics.Rect{X: float64(p.flameFrame) * fw, W: fw, H: fh}
		dst := physics.Rect{X: p.X + (p.Width-fw)/2, Y: p.Y + p.Height, W: fw, H: fh}
		ctx.Canvas.Blit(flame, &src, dst)
	}

	ctx.Canvas.Blit(p.sprites.Ship, nil, p.Bounds())

	if glow := p.sprites.Glow; glow != nil {
		gw, gh := float64(glow.Width), float64(glow.Height)
		dst := physics.Rect{X: p.X + (p.Width-gw)/2, Y: p.Y + p.Height - gh, W: gw, H: gh}
		ctx.Canvas.Blit(glow, nil, dst)
	}
	return nil
}
