package object

import (
	"github.com/tomz197/invaders/internal/draw"
	"github.com/tomz197/invaders/internal/physics"
)

// Obstacle dimensions and toughness.
const (
	ObstacleWidth      = 20.0
	ObstacleHeight     = 4.0
	ObstacleCellSize   = 2.0
	ObstacleDurability = 2 // Hits a cell absorbs before it is gone
)

// Obstacle is a barrier made of small cells that wear down as they absorb shots.
type Obstacle struct {
	X, Y          float64 // Top-left corner
	Width, Height float64
	Color         draw.RGB

	cols, rows int
	cells      []int // Remaining durability, [row*cols + col]
}

// NewObstacle creates an intact obstacle with its top-left corner at (x, y).
func NewObstacle(x, y float64, color draw.RGB) *Obstacle {
	cols := int(ObstacleWidth / ObstacleCellSize)
	rows := int(ObstacleHeight / ObstacleCellSize)
	o := &Obstacle{
		X:      x,
		Y:      y,
		Width:  ObstacleWidth,
		Height: ObstacleHeight,
		Color:  color,
		cols:   cols,
		rows:   rows,
		cells:  make([]int, cols*rows),
	}
	for i := range o.cells {
		o.cells[i] = ObstacleDurability
	}
	return o
}

// NewObstacles lays out the two barriers placed above the player.
func NewObstacles(screen Screen, color draw.RGB) []*Obstacle {
	x := screen.Width/2 - ObstacleWidth/2
	y := screen.Height - 30
	offset := screen.Width * 0.15
	return []*Obstacle{
		NewObstacle(x-offset, y, color),
		NewObstacle(x+offset, y, color),
	}
}

// Bounds returns the box around all cells, intact or not.
func (o *Obstacle) Bounds() physics.Rect {
	return physics.Rect{X: o.X, Y: o.Y, W: o.Width, H: o.Height}
}

func (o *Obstacle) cellRect(col, row int) physics.Rect {
	return physics.Rect{
		X: o.X + float64(col)*ObstacleCellSize,
		Y: o.Y + float64(row)*ObstacleCellSize,
		W: ObstacleCellSize,
		H: ObstacleCellSize,
	}
}

// Durability returns the remaining hits of a cell, or 0 outside the obstacle.
func (o *Obstacle) Durability(col, row int) int {
	if col < 0 || col >= o.cols || row < 0 || row >= o.rows {
		return 0
	}
	return o.cells[row*o.cols+col]
}

// Destroyed reports whether every cell is gone.
func (o *Obstacle) Destroyed() bool {
	for _, d := range o.cells {
		if d > 0 {
			return false
		}
	}
	return true
}

// Absorb checks the projectile against the live cells, scanning rows from the side
// it travels in from. The first cell touched loses one durability and Absorb
// returns true; the caller removes the projectile. Worn-through cells let shots pass.
func (o *Obstacle) Absorb(p *Projectile) bool {
	pb := p.Bounds()
	if !o.Bounds().Overlaps(pb) {
		return false
	}
	for i := 0; i < o.rows; i++ {
		row := i
		if p.Velocity < 0 {
			row = o.rows - 1 - i // Upward shots meet the bottom row first
		}
		for col := 0; col < o.cols; col++ {
			idx := row*o.cols + col
			if o.cells[idx] <= 0 {
				continue
			}
			if o.cellRect(col, row).Overlaps(pb) {
				o.cells[idx]--
				return true
			}
		}
	}
	return false
}

// Draw renders the live cells; damaged cells are drawn darker.
func (o *Obstacle) Draw(ctx DrawContext) error {
	for row := 0; row < o.rows; row++ {
		for col := 0; col < o.cols; col++ {
			d := o.cells[row*o.cols+col]
			if d <= 0 {
				continue
			}
			ctx.Canvas.FillRect(o.cellRect(col, row), o.Color.Fade(float64(d)/ObstacleDurability))
		}
	}
	return nil
}
