package loop

import (
	"math"

	"github.com/tomz197/invaders/internal/asset"
	"github.com/tomz197/invaders/internal/audio"
	"github.com/tomz197/invaders/internal/loop/config"
	"github.com/tomz197/invaders/internal/object"
	"github.com/tomz197/invaders/internal/physics"
)

// Update advances the session by one frame.
//
// Objects spawned between frames (enemy fire) and during a frame (shots,
// explosions) join their collections at the two flush points, so each one is
// updated and collision-checked once per frame starting with the next frame.
func (s *Session) Update(in object.Input) error {
	s.Input = in
	if in.Quit {
		s.Running = false
		return nil
	}

	s.FlushSpawned()

	switch s.GameState {
	case GameStateStart:
		s.updateStartState()
	case GameStatePlaying:
		if err := s.updatePlayingState(); err != nil {
			return err
		}
	case GameStateGameOver:
		if err := s.updateGameOverState(); err != nil {
			return err
		}
	}

	s.FlushSpawned()
	return nil
}

// updateStartState waits on the title screen for the player to begin.
func (s *Session) updateStartState() {
	if s.Input.ShootPressed || s.Input.Enter {
		s.startGame()
	}
}

// updatePlayingState runs one frame of active gameplay.
func (s *Session) updatePlayingState() error {
	if s.Grid.Len() == 0 {
		s.nextWave()
	}

	s.handlePlayerInput()

	if err := s.updateObjects(); err != nil {
		return err
	}
	s.Grid.Update(s.Player.Alive)

	s.checkCollisions()
	s.compact()
	return nil
}

// updateGameOverState keeps the scene alive behind the game over screen:
// shots finish their flight and wear obstacles, the formation stays frozen.
func (s *Session) updateGameOverState() error {
	if err := s.updateObjects(); err != nil {
		return err
	}
	s.Grid.Update(s.Player.Alive)
	s.checkCollisions()
	s.compact()

	if s.Input.Enter {
		s.Restart()
	}
	return nil
}

// handlePlayerInput moves the ship within the screen and fires on a fresh press.
func (s *Session) handlePlayerInput() {
	if s.Input.ShootReleased {
		s.shootArmed = true
	}
	if s.Input.ShootPressed && s.shootArmed && s.Player.Alive {
		s.Player.Shoot(s)
		s.shootArmed = false
		s.audio.Play(audio.SoundShoot)
	}

	if s.Input.Left && s.Player.X >= 0 {
		s.Player.MoveLeft()
	}
	if s.Input.Right && s.Player.X <= s.Screen.Width-s.Player.Width {
		s.Player.MoveRight()
	}
	s.Player.X = physics.Clamp(s.Player.X, 0, s.Screen.Width-s.Player.Width)
}

// updateObjects updates the ship, projectiles and particles.
// Projectiles leaving the screen are marked destroyed and dropped by compact;
// faded particles are released right away.
func (s *Session) updateObjects() error {
	ctx := s.updateContext()

	if _, err := s.Player.Update(ctx); err != nil {
		return err
	}

	for _, projectiles := range [][]*object.Projectile{s.PlayerProjectiles, s.InvaderProjectiles} {
		for _, p := range projectiles {
			remove, err := p.Update(ctx)
			if err != nil {
				return err
			}
			if remove {
				p.MarkDestroyed()
			}
		}
	}

	kept := s.Particles[:0] // reuse backing array
	for _, p := range s.Particles {
		remove, err := p.Update(ctx)
		if err != nil {
			return err
		}
		if remove {
			object.ReleaseObject(p)
			continue
		}
		kept = append(kept, p)
	}
	clear(s.Particles[len(kept):])
	s.Particles = kept

	return nil
}

// compact drops destroyed projectiles and invaders.
func (s *Session) compact() {
	s.PlayerProjectiles = keepLive(s.PlayerProjectiles)
	s.InvaderProjectiles = keepLive(s.InvaderProjectiles)
	s.Grid.RemoveDestroyed()
}

// keepLive removes destroyed projectiles in place, preserving order.
func keepLive(projectiles []*object.Projectile) []*object.Projectile {
	kept := projectiles[:0]
	for _, p := range projectiles {
		if !p.IsDestroyed() {
			kept = append(kept, p)
		}
	}
	clear(projectiles[len(kept):])
	return kept
}

// nextWave spawns a new formation with random dimensions, one level up and a
// little faster than the last.
func (s *Session) nextWave() {
	s.Grid.Randomize(s.rng)
	s.stats.Level++
	s.Grid.Velocity = waveSpeed(s.stats.Level)
	s.audio.Play(audio.SoundNextLevel)
	s.logger.Debug("wave spawned", "level", s.stats.Level, "rows", s.Grid.Rows, "cols", s.Grid.Cols)
}

// waveSpeed returns the formation speed for a level, starting at the default
// speed on level 1.
func waveSpeed(level int) float64 {
	speed := object.DefaultGridSpeed + config.GridSpeedIncrease*float64(level-1)
	return math.Min(speed, config.MaxGridSpeed)
}

// startGame leaves the title screen. A game started with the shoot key
// only fires once that key has been released.
func (s *Session) startGame() {
	s.GameState = GameStatePlaying
	s.shootArmed = !s.Input.ShootPressed
	s.logger.Info("game started")
}

// Restart begins a new game after game over. The high score survives; the
// first playing frame spawns wave 1 with a fresh random formation.
func (s *Session) Restart() {
	s.stats.Score = 0
	s.stats.Level = 0
	s.Grid.Clear()
	s.Grid.Velocity = object.DefaultGridSpeed

	clear(s.PlayerProjectiles)
	s.PlayerProjectiles = s.PlayerProjectiles[:0]
	clear(s.InvaderProjectiles)
	s.InvaderProjectiles = s.InvaderProjectiles[:0]
	for _, obj := range s.toSpawn {
		object.ReleaseObject(obj)
	}
	clear(s.toSpawn)
	s.toSpawn = s.toSpawn[:0]

	s.Obstacles = object.NewObstacles(s.Screen, asset.ObstacleColor)
	s.Player.Reset(s.Screen)
	s.GameState = GameStatePlaying
	s.shootArmed = !s.Input.ShootPressed
	s.restarts++
	s.logger.Info("game restarted", "high", s.stats.High)
}

// InvaderFire makes one random live invader shoot. Drivers call it from their
// enemy fire timer; it does nothing outside active gameplay.
func (s *Session) InvaderFire() {
	if s.GameState != GameStatePlaying {
		return
	}
	if inv, ok := s.Grid.RandomInvader(s.rng); ok {
		inv.Shoot(s)
	}
}
