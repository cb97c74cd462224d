package loop

import (
	"bytes"
	"math/rand"
	"strings"
	"testing"

	"github.com/tomz197/invaders/internal/audio"
	"github.com/tomz197/invaders/internal/object"
)

// soundRecorder records every sound the session plays.
type soundRecorder struct {
	sounds []audio.Sound
}

func (r *soundRecorder) Play(s audio.Sound) {
	r.sounds = append(r.sounds, s)
}

func (r *soundRecorder) count(s audio.Sound) int {
	n := 0
	for _, got := range r.sounds {
		if got == s {
			n++
		}
	}
	return n
}

func newTestSession(t *testing.T) (*Session, *soundRecorder) {
	t.Helper()
	rec := &soundRecorder{}
	s := NewSession(SessionOptions{
		Audio: rec,
		Rand:  rand.New(rand.NewSource(1)),
	})
	return s, rec
}

// startPlaying moves a new session past the title screen.
func startPlaying(t *testing.T, s *Session) {
	t.Helper()
	if err := s.Update(object.Input{Enter: true}); err != nil {
		t.Fatal(err)
	}
	if s.GameState != GameStatePlaying {
		t.Fatalf("state = %v, want playing", s.GameState)
	}
}

func step(t *testing.T, s *Session, in object.Input) {
	t.Helper()
	if err := s.Update(in); err != nil {
		t.Fatal(err)
	}
}

func TestNewSessionStartsOnTitle(t *testing.T) {
	s, _ := newTestSession(t)
	if s.GameState != GameStateStart || !s.Running {
		t.Fatalf("state=%v running=%v", s.GameState, s.Running)
	}
	if st := s.Stats(); st.Level != 1 || st.Score != 0 || st.High != 0 {
		t.Errorf("initial stats = %+v", st)
	}
	if s.Grid.Rows != 3 || s.Grid.Cols != 6 {
		t.Errorf("initial grid %dx%d, want 3x6", s.Grid.Rows, s.Grid.Cols)
	}
	if len(s.Obstacles) != 2 {
		t.Errorf("got %d obstacles", len(s.Obstacles))
	}

	// Nothing moves on the title screen.
	x := s.Grid.Invaders[0].X
	step(t, s, object.Input{})
	if s.Grid.Invaders[0].X != x || s.GameState != GameStateStart {
		t.Error("title screen should not simulate")
	}
}

func TestQuitStopsSession(t *testing.T) {
	s, _ := newTestSession(t)
	step(t, s, object.Input{Quit: true})
	if s.Running {
		t.Error("quit should stop the session")
	}
}

func TestShootNeedsReleaseBetweenShots(t *testing.T) {
	s, rec := newTestSession(t)

	// Starting with the shoot key does not fire.
	step(t, s, object.Input{ShootPressed: true})
	if s.GameState != GameStatePlaying {
		t.Fatal("shoot should start the game")
	}
	step(t, s, object.Input{ShootPressed: true})
	if len(s.PlayerProjectiles) != 0 {
		t.Fatal("held start key fired a shot")
	}

	step(t, s, object.Input{ShootReleased: true})
	step(t, s, object.Input{ShootPressed: true})
	if len(s.PlayerProjectiles) != 1 {
		t.Fatalf("got %d shots after a fresh press, want 1", len(s.PlayerProjectiles))
	}

	// Holding does not auto-fire.
	for i := 0; i < 5; i++ {
		step(t, s, object.Input{ShootPressed: true})
	}
	if len(s.PlayerProjectiles) != 1 {
		t.Errorf("held key fired %d shots", len(s.PlayerProjectiles))
	}
	if rec.count(audio.SoundShoot) != 1 {
		t.Errorf("shoot sound played %d times", rec.count(audio.SoundShoot))
	}
}

func TestShotHitsInvaderAndNextWaveSpawns(t *testing.T) {
	s, rec := newTestSession(t)
	startPlaying(t, s)

	s.Grid.Rows, s.Grid.Cols = 1, 1
	s.Grid.Restart()
	inv := s.Grid.Invaders[0]
	cx, cy := inv.Center()
	s.PlayerProjectiles = append(s.PlayerProjectiles,
		object.NewProjectile(cx, cy, object.PlayerProjectileSpeed, object.OwnerPlayer))

	step(t, s, object.Input{})

	if s.Grid.Len() != 0 {
		t.Fatalf("grid has %d invaders after the hit", s.Grid.Len())
	}
	if len(s.PlayerProjectiles) != 0 {
		t.Error("the shot should be consumed")
	}
	if st := s.Stats(); st.Score != 10 || st.High != 10 || st.Level != 1 {
		t.Errorf("stats after hit = %+v", st)
	}
	if len(s.Particles) != 10 {
		t.Fatalf("got %d particles, want one burst of 10", len(s.Particles))
	}
	hx, hy := inv.Center()
	for _, p := range s.Particles {
		if p.X != hx || p.Y != hy {
			t.Fatalf("particle at (%v,%v), want invader center (%v,%v)", p.X, p.Y, hx, hy)
		}
	}
	if rec.count(audio.SoundHit) != 1 {
		t.Error("hit sound not played")
	}

	step(t, s, object.Input{})
	if st := s.Stats(); st.Level != 2 {
		t.Errorf("level = %d after clearing the wave, want 2", st.Level)
	}
	if s.Grid.Len() == 0 {
		t.Error("a new wave should have spawned")
	}
	if s.Grid.Velocity != waveSpeed(2) {
		t.Errorf("wave 2 speed = %v, want %v", s.Grid.Velocity, waveSpeed(2))
	}
	if rec.count(audio.SoundNextLevel) != 1 {
		t.Error("next level sound not played")
	}
}

func TestShotDestroysOnlyOneInvader(t *testing.T) {
	s, _ := newTestSession(t)
	startPlaying(t, s)

	s.Grid.Rows, s.Grid.Cols = 1, 2
	s.Grid.Restart()
	// Overlap both invaders so one shot touches both boxes.
	s.Grid.Invaders[1].X = s.Grid.Invaders[0].X + 2
	cx, cy := s.Grid.Invaders[0].Center()
	s.PlayerProjectiles = append(s.PlayerProjectiles,
		object.NewProjectile(cx+1, cy, object.PlayerProjectileSpeed, object.OwnerPlayer))

	step(t, s, object.Input{})
	if s.Grid.Len() != 1 {
		t.Errorf("%d invaders left, want 1", s.Grid.Len())
	}
	if s.Stats().Score != 10 {
		t.Errorf("score = %d", s.Stats().Score)
	}
}

func TestInvaderShotEndsGame(t *testing.T) {
	s, rec := newTestSession(t)
	startPlaying(t, s)

	px, py := s.Player.Center()
	s.InvaderProjectiles = append(s.InvaderProjectiles,
		object.NewProjectile(px, py, object.InvaderProjectileSpeed, object.OwnerInvader))
	step(t, s, object.Input{})

	if s.GameState != GameStateGameOver || s.Player.Alive {
		t.Fatalf("state=%v alive=%v", s.GameState, s.Player.Alive)
	}
	if len(s.InvaderProjectiles) != 0 {
		t.Error("the fatal shot should be consumed")
	}
	if len(s.Particles) != 30 {
		t.Errorf("got %d particles, want three bursts of 10", len(s.Particles))
	}
	if rec.count(audio.SoundExplosion) != 1 {
		t.Error("explosion sound not played")
	}

	// The formation freezes and enemy fire stops.
	x := s.Grid.Invaders[0].X
	s.InvaderFire()
	step(t, s, object.Input{})
	if s.Grid.Invaders[0].X != x {
		t.Error("formation moved after game over")
	}
	if len(s.InvaderProjectiles) != 0 {
		t.Error("invaders fired after game over")
	}

	// Input other than Enter is ignored.
	step(t, s, object.Input{ShootPressed: true, Left: true})
	if s.GameState != GameStateGameOver || len(s.PlayerProjectiles) != 0 {
		t.Error("game over screen reacted to play input")
	}
}

func TestShotScoresInFatalFrame(t *testing.T) {
	s, _ := newTestSession(t)
	startPlaying(t, s)

	s.Grid.Rows, s.Grid.Cols = 1, 2
	s.Grid.Restart()
	ix, iy := s.Grid.Invaders[0].Center()
	s.PlayerProjectiles = append(s.PlayerProjectiles,
		object.NewProjectile(ix, iy, object.PlayerProjectileSpeed, object.OwnerPlayer))
	px, py := s.Player.Center()
	s.InvaderProjectiles = append(s.InvaderProjectiles,
		object.NewProjectile(px, py, object.InvaderProjectileSpeed, object.OwnerInvader))

	step(t, s, object.Input{})
	if s.GameState != GameStateGameOver {
		t.Fatalf("state = %v, want game over", s.GameState)
	}
	if st := s.Stats(); st.Score != 10 || s.Grid.Len() != 1 {
		t.Errorf("score=%d invaders=%d, want the same-frame hit to count", st.Score, s.Grid.Len())
	}

	// From the next frame on, shots pass the frozen formation.
	jx, jy := s.Grid.Invaders[0].Center()
	s.PlayerProjectiles = append(s.PlayerProjectiles,
		object.NewProjectile(jx, jy, object.PlayerProjectileSpeed, object.OwnerPlayer))
	step(t, s, object.Input{})
	if s.Stats().Score != 10 || s.Grid.Len() != 1 {
		t.Errorf("score=%d invaders=%d after game over", s.Stats().Score, s.Grid.Len())
	}
}

func TestGameOverKeepsShotsFlying(t *testing.T) {
	s, _ := newTestSession(t)
	startPlaying(t, s)
	s.killPlayer()
	s.FlushSpawned()

	p := object.NewProjectile(20, 40, object.InvaderProjectileSpeed, object.OwnerInvader)
	s.InvaderProjectiles = append(s.InvaderProjectiles, p)
	step(t, s, object.Input{})
	if p.Y != 40+object.InvaderProjectileSpeed {
		t.Errorf("shot y = %v, want it to keep moving", p.Y)
	}

	before := len(s.Particles)
	for i := 0; i < 5; i++ {
		step(t, s, object.Input{})
	}
	if len(s.Particles) != before {
		t.Errorf("particles changed from %d to %d before fading out", before, len(s.Particles))
	}
	for _, pt := range s.Particles {
		if pt.Opacity >= 1 {
			t.Fatal("particles should keep fading after game over")
		}
	}
}

func TestRestartKeepsHighScore(t *testing.T) {
	s, _ := newTestSession(t)
	startPlaying(t, s)
	s.addScore(30)
	worn := s.Obstacles[0]
	s.killPlayer()
	step(t, s, object.Input{})

	step(t, s, object.Input{Enter: true})
	if s.GameState != GameStatePlaying || !s.Player.Alive {
		t.Fatalf("state=%v alive=%v after restart", s.GameState, s.Player.Alive)
	}
	if st := s.Stats(); st.Score != 0 || st.Level != 0 || st.High != 30 {
		t.Errorf("stats after restart = %+v", st)
	}
	if s.Restarts() != 1 {
		t.Errorf("Restarts = %d", s.Restarts())
	}
	if s.Obstacles[0] == worn || len(s.Obstacles) != 2 {
		t.Error("obstacles should be rebuilt")
	}

	step(t, s, object.Input{})
	if st := s.Stats(); st.Level != 1 {
		t.Errorf("level = %d on the first frame after restart, want 1", st.Level)
	}
	if s.Grid.Velocity != object.DefaultGridSpeed {
		t.Errorf("speed = %v, want the default", s.Grid.Velocity)
	}
}

func TestObstacleAbsorbsPlayerShot(t *testing.T) {
	s, _ := newTestSession(t)
	startPlaying(t, s)

	o := s.Obstacles[0]
	total := func() int {
		n := 0
		for row := 0; row < 2; row++ {
			for col := 0; col < 10; col++ {
				n += o.Durability(col, row)
			}
		}
		return n
	}
	before := total()

	s.PlayerProjectiles = append(s.PlayerProjectiles,
		object.NewProjectile(o.X+5, o.Y+o.Height+object.ProjectileRadius+2, object.PlayerProjectileSpeed, object.OwnerPlayer))
	step(t, s, object.Input{})

	if len(s.PlayerProjectiles) != 0 {
		t.Error("obstacle should stop the shot")
	}
	if total() != before-1 {
		t.Errorf("durability %d -> %d, want one hit", before, total())
	}
}

func TestPlayerStaysOnScreen(t *testing.T) {
	s, _ := newTestSession(t)
	startPlaying(t, s)

	for i := 0; i < 200; i++ {
		step(t, s, object.Input{Left: true})
	}
	if s.Player.X != 0 {
		t.Errorf("x = %v after holding left, want 0", s.Player.X)
	}
	for i := 0; i < 200; i++ {
		step(t, s, object.Input{Right: true})
	}
	if want := s.Screen.Width - s.Player.Width; s.Player.X != want {
		t.Errorf("x = %v after holding right, want %v", s.Player.X, want)
	}
}

func TestInvaderFireOnlyWhilePlaying(t *testing.T) {
	s, _ := newTestSession(t)
	s.InvaderFire()
	if len(s.toSpawn) != 0 {
		t.Fatal("invaders fired on the title screen")
	}

	startPlaying(t, s)
	s.InvaderFire()
	if len(s.toSpawn) != 1 {
		t.Fatalf("queued %d shots, want 1", len(s.toSpawn))
	}
	step(t, s, object.Input{})
	if len(s.InvaderProjectiles) != 1 {
		t.Fatalf("got %d invader shots after the frame", len(s.InvaderProjectiles))
	}
	if p := s.InvaderProjectiles[0]; p.Owner != object.OwnerInvader || p.Velocity <= 0 {
		t.Errorf("invader shot = %+v", p)
	}
}

func TestWaveSpeed(t *testing.T) {
	tests := []struct {
		level int
		want  float64
	}{
		{1, object.DefaultGridSpeed},
		{3, object.DefaultGridSpeed + 0.1},
		{1000, 1.5},
	}
	for _, tt := range tests {
		if got := waveSpeed(tt.level); got < tt.want-1e-9 || got > tt.want+1e-9 {
			t.Errorf("waveSpeed(%d) = %v, want %v", tt.level, got, tt.want)
		}
	}
}

func TestClampTermSize(t *testing.T) {
	tests := []struct {
		w, h                 int
		rw, rh, offCol, offR int
	}{
		{80, 24, 80, 24, 0, 0},
		{200, 80, 160, 60, 20, 10},
	}
	for _, tt := range tests {
		rw, rh, oc, or := clampTermSize(tt.w, tt.h)
		if rw != tt.rw || rh != tt.rh || oc != tt.offCol || or != tt.offR {
			t.Errorf("clampTermSize(%d,%d) = %d,%d,%d,%d", tt.w, tt.h, rw, rh, oc, or)
		}
	}
}

func fixedSize(w, h int) func() (int, int, error) {
	return func() (int, int, error) { return w, h, nil }
}

func TestRendererScreens(t *testing.T) {
	var buf bytes.Buffer
	r := NewRenderer(&buf, fixedSize(100, 40))
	s, _ := newTestSession(t)

	if err := r.Frame(s); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "S P A C E   I N V A D E R S") {
		t.Error("title screen missing")
	}

	buf.Reset()
	startPlaying(t, s)
	if err := r.Frame(s); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	if !strings.Contains(out, "Score: 0") || !strings.Contains(out, "High: 0") {
		t.Error("HUD missing")
	}
	if !strings.Contains(out, "▀") && !strings.Contains(out, "▄") && !strings.Contains(out, "█") {
		t.Error("scene not rendered")
	}

	buf.Reset()
	s.killPlayer()
	if err := r.Frame(s, func(r *Renderer) bool {
		r.WriteAt(1, 1, "NOTICE")
		return true
	}); err != nil {
		t.Fatal(err)
	}
	out = buf.String()
	if !strings.Contains(out, "NOTICE") || strings.Contains(out, "G A M E") {
		t.Error("replacing overlay should hide the game over box")
	}
}
