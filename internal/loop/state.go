package loop

import (
	"fmt"
	"io"
	"math/rand"
	"time"

	"github.com/charmbracelet/log"

	"github.com/tomz197/invaders/internal/asset"
	"github.com/tomz197/invaders/internal/audio"
	"github.com/tomz197/invaders/internal/loop/config"
	"github.com/tomz197/invaders/internal/object"
	"github.com/tomz197/invaders/internal/physics"
)

// GameState represents the current game phase.
type GameState int

const (
	GameStateStart    GameState = iota // Title screen
	GameStatePlaying                   // Active gameplay
	GameStateGameOver                  // Player was hit, waiting for restart
)

func (g GameState) String() string {
	switch g {
	case GameStateStart:
		return "start"
	case GameStatePlaying:
		return "playing"
	case GameStateGameOver:
		return "game-over"
	default:
		return "unknown"
	}
}

// Stats is the score display: current score, wave number and best score.
type Stats struct {
	Score int
	Level int
	High  int
}

// invaderGridCellSize must cover the widest invader/projectile reach
// (half an invader plus a projectile radius).
const invaderGridCellSize = 10.0

// Session owns all state of one game. Only the goroutine driving it may
// touch it: the frame callback and the enemy fire callback both run there.
type Session struct {
	GameState          GameState
	Screen             object.Screen
	Player             *object.Player
	Grid               *object.Grid
	PlayerProjectiles  []*object.Projectile
	InvaderProjectiles []*object.Projectile
	Particles          []*object.Particle
	Obstacles          []*object.Obstacle
	Input              object.Input
	Running            bool

	stats       Stats
	shootArmed  bool            // A shoot release was seen since the last shot
	toSpawn     []object.Object // Objects to add at the next flush point
	restarts    int
	rng         *rand.Rand
	audio       audio.Player
	logger      *log.Logger
	invaderGrid *physics.SpatialGrid
}

// SessionOptions configures a Session. Zero values pick silent, random defaults.
type SessionOptions struct {
	Audio  audio.Player
	Logger *log.Logger
	Rand   *rand.Rand
	Images *asset.Images
}

// NewSession creates a session on the start screen.
func NewSession(opts SessionOptions) *Session {
	if opts.Audio == nil {
		opts.Audio = audio.Nop{}
	}
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard)
	}
	if opts.Rand == nil {
		opts.Rand = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if opts.Images == nil {
		opts.Images = asset.Load()
	}

	screen := object.Screen{Width: config.ViewWidth, Height: config.ViewHeight}
	s := &Session{
		GameState: GameStateStart,
		Screen:    screen,
		Player: object.NewPlayer(screen, object.PlayerSprites{
			Ship:        opts.Images.Ship,
			Flame:       opts.Images.Flame,
			Glow:        opts.Images.Glow,
			FlameFrames: asset.FlameFrames,
		}),
		Grid:        object.NewGrid(config.InitialGridRows, config.InitialGridCols, screen.Width, opts.Images.Invader),
		Obstacles:   object.NewObstacles(screen, asset.ObstacleColor),
		Running:     true,
		stats:       Stats{Level: 1},
		shootArmed:  true,
		rng:         opts.Rand,
		audio:       opts.Audio,
		logger:      opts.Logger,
		invaderGrid: physics.NewSpatialGrid(screen.Width, screen.Height, invaderGridCellSize),
	}
	return s
}

// Stats returns a copy of the score display values.
func (s *Session) Stats() Stats {
	return s.stats
}

// Restarts returns how many times the game was restarted from game over.
// Drivers compare it between frames to reset their enemy fire timer.
func (s *Session) Restarts() int {
	return s.restarts
}

// Spawn queues an object to be added at the next flush point.
// Implements object.Spawner interface.
func (s *Session) Spawn(obj object.Object) {
	s.toSpawn = append(s.toSpawn, obj)
}

// FlushSpawned moves all queued objects into their collections and clears the queue.
func (s *Session) FlushSpawned() {
	for _, obj := range s.toSpawn {
		switch o := obj.(type) {
		case *object.Projectile:
			if o.Owner == object.OwnerPlayer {
				s.PlayerProjectiles = append(s.PlayerProjectiles, o)
			} else {
				s.InvaderProjectiles = append(s.InvaderProjectiles, o)
			}
		case *object.Particle:
			s.Particles = append(s.Particles, o)
		default:
			s.logger.Warn("dropping spawned object of unknown type", "type", fmt.Sprintf("%T", obj))
		}
	}
	clear(s.toSpawn)
	s.toSpawn = s.toSpawn[:0]
}

// updateContext creates an UpdateContext from the current state.
func (s *Session) updateContext() object.UpdateContext {
	return object.UpdateContext{
		Input:   s.Input,
		Screen:  s.Screen,
		Spawner: s,
		Rand:    s.rng,
	}
}

// addScore awards points and keeps the high score current.
func (s *Session) addScore(points int) {
	s.stats.Score += points
	if s.stats.Score > s.stats.High {
		s.stats.High = s.stats.Score
	}
}
