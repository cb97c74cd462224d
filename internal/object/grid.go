package object

import (
	"math"
	"math/rand"

	"github.com/tomz197/invaders/internal/draw"
	"github.com/tomz197/invaders/internal/physics"
)

// Formation defaults.
const (
	MaxGridDim       = 10   // Upper bound for rows and columns
	DefaultGridSpeed = 0.25 // Horizontal units per frame
	GridStep         = 4.0  // Downward step on each reversal
	gridPitchX       = InvaderWidth + 2
	gridPitchY       = InvaderHeight + 2
)

// DefaultGridOrigin is where the top-left invader of a new wave is placed.
var DefaultGridOrigin = draw.Point{X: 4, Y: 10}

// Grid is the invader formation. It moves as one rigid body: all invaders share
// the Grid's Velocity and Direction, and none carries its own.
type Grid struct {
	Rows, Cols int
	Origin     draw.Point // Exported so a resize handler can move new waves
	SpacingX   float64    // Horizontal pitch between invaders
	SpacingY   float64    // Vertical pitch between rows
	Velocity   float64
	Direction  float64 // +1 moving right, -1 moving left
	Step       float64
	Width      float64 // Right bound for reversal; the left bound is 0
	Invaders   []*Invader

	sprite *draw.Image
}

// NewGrid creates a formation of rows x cols invaders inside a screen of the given width.
func NewGrid(rows, cols int, width float64, sprite *draw.Image) *Grid {
	g := &Grid{
		Rows:      rows,
		Cols:      cols,
		Origin:    DefaultGridOrigin,
		SpacingX:  gridPitchX,
		SpacingY:  gridPitchY,
		Velocity:  DefaultGridSpeed,
		Direction: 1,
		Step:      GridStep,
		Width:     width,
		sprite:    sprite,
	}
	g.Restart()
	return g
}

func clampDim(n int) int {
	if n < 1 {
		return 1
	}
	if n > MaxGridDim {
		return MaxGridDim
	}
	return n
}

// Restart regenerates Rows x Cols invaders at the origin and resets the direction.
func (g *Grid) Restart() {
	g.Rows = clampDim(g.Rows)
	g.Cols = clampDim(g.Cols)
	g.Direction = 1

	clear(g.Invaders)
	g.Invaders = g.Invaders[:0]
	for row := 0; row < g.Rows; row++ {
		for col := 0; col < g.Cols; col++ {
			x := g.Origin.X + float64(col)*g.SpacingX
			y := g.Origin.Y + float64(row)*g.SpacingY
			g.Invaders = append(g.Invaders, NewInvader(x, y, g.sprite))
		}
	}
}

// Randomize picks new dimensions in [1, MaxGridDim] and restarts the formation.
func (g *Grid) Randomize(rng *rand.Rand) {
	g.Rows = int(math.Round(rng.Float64()*(MaxGridDim-1) + 1))
	g.Cols = int(math.Round(rng.Float64()*(MaxGridDim-1) + 1))
	g.Restart()
}

// Clear removes every invader without generating a new wave.
func (g *Grid) Clear() {
	clear(g.Invaders)
	g.Invaders = g.Invaders[:0]
}

// Len returns the number of invaders in the formation.
func (g *Grid) Len() int {
	return len(g.Invaders)
}

// Bounds returns the box enclosing every live invader. ok is false when none are left.
func (g *Grid) Bounds() (r physics.Rect, ok bool) {
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, inv := range g.Invaders {
		if inv.IsDestroyed() {
			continue
		}
		ok = true
		minX = math.Min(minX, inv.X)
		minY = math.Min(minY, inv.Y)
		maxX = math.Max(maxX, inv.X+inv.Width)
		maxY = math.Max(maxY, inv.Y+inv.Height)
	}
	if !ok {
		return physics.Rect{}, false
	}
	return physics.Rect{X: minX, Y: minY, W: maxX - minX, H: maxY - minY}, true
}

// Update moves the formation sideways. When its outermost live invader reaches
// the edge it is heading for, the direction flips and every invader steps down
// in the same update. A dead player freezes the formation.
func (g *Grid) Update(playerAlive bool) {
	if !playerAlive || len(g.Invaders) == 0 {
		return
	}

	dx := g.Velocity * g.Direction
	for _, inv := range g.Invaders {
		inv.X += dx
	}

	b, ok := g.Bounds()
	if !ok {
		return
	}
	if (g.Direction > 0 && b.Right() >= g.Width) || (g.Direction < 0 && b.X <= 0) {
		g.Direction = -g.Direction
		for _, inv := range g.Invaders {
			inv.Y += g.Step
		}
	}
}

// RandomInvader returns a uniformly chosen live invader; ok is false when none are left.
func (g *Grid) RandomInvader(rng *rand.Rand) (inv *Invader, ok bool) {
	live := 0
	for _, in := range g.Invaders {
		if !in.IsDestroyed() {
			live++
		}
	}
	if live == 0 {
		return nil, false
	}
	n := rng.Intn(live)
	for _, in := range g.Invaders {
		if in.IsDestroyed() {
			continue
		}
		if n == 0 {
			return in, true
		}
		n--
	}
	return nil, false
}

// RemoveDestroyed compacts the formation, dropping invaders marked destroyed.
func (g *Grid) RemoveDestroyed() {
	kept := g.Invaders[:0] // reuse backing array
	for _, inv := range g.Invaders {
		if !inv.IsDestroyed() {
			kept = append(kept, inv)
		}
	}
	clear(g.Invaders[len(kept):])
	g.Invaders = kept
}

// Draw renders every live invader.
func (g *Grid) Draw(ctx DrawContext) error {
	for _, inv := range g.Invaders {
		if inv.IsDestroyed() {
			continue
		}
		if err := inv.Draw(ctx); err != nil {
			return err
		}
	}
	return nil
}
