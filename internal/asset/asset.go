// Package asset holds the compiled-in sprite images.
//
// Sprites are drawn as ASCII art and converted to draw.Image once by Load.
// Entities receive the images they need through their constructors.
package asset

import "github.com/tomz197/invaders/internal/draw"

// Sprite colors.
var (
	ShipColor      = draw.MustHex("#4D9BE6")
	CockpitColor   = draw.MustHex("#8FD3FF")
	FlameOuter     = draw.MustHex("#F9C22B")
	FlameInner     = draw.MustHex("#FB6B1D")
	GlowColor      = draw.MustHex("#E83B3B")
	InvaderColor   = draw.MustHex("#941CFF")
	InvaderEye     = draw.MustHex("#FFFFFF")
	PlayerShot     = draw.MustHex("#FFFFFF")
	InvaderShot    = draw.MustHex("#FFD700")
	ObstacleColor  = draw.MustHex("#800000")
	GroundColor    = draw.MustHex("#3CFF6E")
	HitParticle    = InvaderColor
	DeathParticleA = draw.White
	DeathParticleB = ShipColor
	DeathParticleC = draw.Crimson
)

// FlameFrames is the number of frames laid out side by side in the flame sheet.
const FlameFrames = 3

var shipArt = []string{
	".....#.....",
	"....#c#....",
	"....#c#....",
	"...#####...",
	".#.#####.#.",
	"###########",
	"##.#####.##",
	"#...#.#...#",
}

// Three 5x3 frames.
var flameArt = []string{
	"oiiiooiiio.oio.",
	".oio.oiiio..o..",
	"..o...oio......",
}

var glowArt = []string{
	".ggg.",
}

var invaderArt = []string{
	"..#..#..",
	"...##...",
	".######.",
	"##e##e##",
	"########",
	"#.#..#.#",
}

// Images is the set of sprites used by the game.
type Images struct {
	Ship    *draw.Image
	Flame   *draw.Image // Sprite sheet with FlameFrames frames
	Glow    *draw.Image
	Invader *draw.Image
}

// Load builds all sprite images.
func Load() *Images {
	return &Images{
		Ship: draw.ImageFromArt(shipArt, map[rune]draw.RGB{
			'#': ShipColor,
			'c': CockpitColor,
		}),
		Flame: draw.ImageFromArt(flameArt, map[rune]draw.RGB{
			'o': FlameOuter,
			'i': FlameInner,
		}),
		Glow: draw.ImageFromArt(glowArt, map[rune]draw.RGB{
			'g': GlowColor,
		}),
		Invader: draw.ImageFromArt(invaderArt, map[rune]draw.RGB{
			'#': InvaderColor,
			'e': InvaderEye,
		}),
	}
}

// FlameFrameWidth returns the width of one frame of the flame sheet.
func (img *Images) FlameFrameWidth() int {
	return img.Flame.Width / FlameFrames
}
