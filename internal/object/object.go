// Package object implements the game entities: player ship, invaders and their
// formation, projectiles, obstacles and explosion particles.
package object

import (
	"math/rand"

	"github.com/tomz197/invaders/internal/draw"
	"github.com/tomz197/invaders/internal/input"
)

// Spawner allows objects to spawn new objects during update.
type Spawner interface {
	Spawn(obj Object)
}

// Input is an alias for the input package's Input type.
type Input = input.Input

// UpdateContext provides all the information an object needs during update.
type UpdateContext struct {
	Input   Input
	Screen  Screen
	Spawner Spawner
	Rand    *rand.Rand
}

// DrawContext provides drawing resources for objects.
type DrawContext struct {
	Canvas draw.Surface
}

// Screen is the logical viewport size. Positions never depend on the terminal size.
type Screen struct {
	Width  float64
	Height float64
}

// Center returns the middle of the viewport.
func (s Screen) Center() (x, y float64) {
	return s.Width / 2, s.Height / 2
}

// Object is a drawable and updatable game entity.
type Object interface {
	// Update updates the object state. Returns true if the object should be removed.
	Update(ctx UpdateContext) (remove bool, err error)

	// Draw draws the object onto ctx.Canvas.
	Draw(ctx DrawContext) error
}

// Destructible is implemented by objects that can be destroyed/marked for removal.
type Destructible interface {
	// MarkDestroyed marks the object for removal at the end of the current pass.
	MarkDestroyed()
	// IsDestroyed returns true if the object is marked for destruction.
	IsDestroyed() bool
}

// Releasable is implemented by pooled objects that can be returned to a pool.
type Releasable interface {
	// Release returns the object to its pool for reuse.
	Release()
}

// ReleaseObject releases an object back to its pool if it implements Releasable.
func ReleaseObject(obj Object) {
	if r, ok := obj.(Releasable); ok {
		r.Release()
	}
}
