package loop

import (
	"github.com/tomz197/invaders/internal/asset"
	"github.com/tomz197/invaders/internal/audio"
	"github.com/tomz197/invaders/internal/draw"
	"github.com/tomz197/invaders/internal/loop/config"
	"github.com/tomz197/invaders/internal/object"
)

// checkCollisions resolves all hits for the frame. Destroyed entities are only
// marked here; compact removes them afterwards. After game over only
// obstacles still take hits.
func (s *Session) checkCollisions() {
	playing := s.GameState == GameStatePlaying
	if playing {
		s.checkPlayerDamage()
		s.checkInvaderDamage()
	}
	s.checkObstacles()
}

// checkPlayerDamage ends the game when an invader shot reaches the ship.
// Only the first hit counts.
func (s *Session) checkPlayerDamage() {
	if s.GameState != GameStatePlaying || !s.Player.Alive {
		return
	}
	for _, p := range s.InvaderProjectiles {
		if p.IsDestroyed() {
			continue
		}
		if s.Player.Hit(p) {
			p.MarkDestroyed()
			s.killPlayer()
			return
		}
	}
}

// killPlayer blows up the ship and switches to the game over screen.
func (s *Session) killPlayer() {
	x, y := s.Player.Center()
	for _, c := range []draw.RGB{asset.DeathParticleA, asset.DeathParticleB, asset.DeathParticleC} {
		object.SpawnExplosion(x, y, config.ExplosionParticles, c, s.rng, s)
	}

	s.Player.Alive = false
	s.GameState = GameStateGameOver
	s.audio.Play(audio.SoundExplosion)
	s.logger.Info("player destroyed", "score", s.stats.Score, "level", s.stats.Level)
}

// checkInvaderDamage resolves player shots against the formation. Each shot
// destroys at most one invader. The spatial grid narrows the candidates to
// invaders whose centers lie near the shot.
func (s *Session) checkInvaderDamage() {
	invaders := s.Grid.Invaders
	if len(invaders) == 0 || len(s.PlayerProjectiles) == 0 {
		return
	}

	s.invaderGrid.Clear()
	for i, inv := range invaders {
		if inv.IsDestroyed() {
			continue
		}
		x, y := inv.Center()
		s.invaderGrid.Insert(x, y, i)
	}

	for _, p := range s.PlayerProjectiles {
		if p.IsDestroyed() {
			continue
		}
		s.invaderGrid.QueryAround(p.X, p.Y, func(idx int) bool {
			inv := invaders[idx]
			if inv.IsDestroyed() || !inv.Hit(p) {
				return false
			}
			s.destroyInvader(inv, p)
			return true
		})
	}
}

// destroyInvader scores a hit and leaves an explosion where the invader was.
func (s *Session) destroyInvader(inv *object.Invader, p *object.Projectile) {
	p.MarkDestroyed()
	inv.MarkDestroyed()
	s.addScore(config.ScoreInvader)

	x, y := inv.Center()
	object.SpawnExplosion(x, y, config.ExplosionParticles, asset.HitParticle, s.rng, s)
	s.audio.Play(audio.SoundHit)
}

// checkObstacles lets every obstacle absorb the live shots that touch it,
// whoever fired them.
func (s *Session) checkObstacles() {
	for _, o := range s.Obstacles {
		if o.Destroyed() {
			continue
		}
		for _, projectiles := range [][]*object.Projectile{s.PlayerProjectiles, s.InvaderProjectiles} {
			for _, p := range projectiles {
				if p.IsDestroyed() {
					continue
				}
				if o.Absorb(p) {
					p.MarkDestroyed()
				}
			}
		}
	}
}
