// Package config centralizes all tunable game parameters.
package config

import "time"

// View resolution - the visible viewport in logical units.
// Actual rendering scales to fit terminal size.
const (
	ViewWidth  = 160 // Logical viewport width
	ViewHeight = 120 // Logical viewport height (in sub-pixels, so 60 terminal rows at 1:1)
)

// Max terminal size used for rendering. Larger terminals get a centered area.
const (
	MaxTermWidth  = 160
	MaxTermHeight = 60
)

// Scoring
const (
	ScoreInvader = 10
)

// Explosions
const (
	ExplosionParticles = 10 // Particles per burst
)

// Waves
const (
	InitialGridRows   = 3
	InitialGridCols   = 6
	GridSpeedIncrease = 0.05 // Added to the formation speed on every new wave
	MaxGridSpeed      = 1.5
)

// Enemy fire
const (
	InvaderFireInterval = time.Second
)

// Shutdown
const (
	ShutdownDisplaySeconds = 10.0 // Seconds to show shutdown message before auto-disconnect
)

// Inactivity
const (
	InactivityWarnUser       = 90  // Seconds
	InactivityDisconnectUser = 120 // Seconds
)

// Frame rate
const (
	TargetFPS       = 60
	TargetFrameTime = time.Second / TargetFPS
)

// Lobby
const (
	MaxUsernameLength = 16 // Maximum display length for player usernames
	LeaderboardSize   = 10
)
