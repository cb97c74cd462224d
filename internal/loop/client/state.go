package client

import (
	"time"
)

// ClientState holds the connection-level state wrapped around a game session:
// lobby shutdown and inactivity handling.
type ClientState struct {
	Running       bool      // Client loop running
	ShuttingDown  bool      // The server announced a shutdown
	shutdownTimer float64   // Countdown before auto-disconnect on shutdown
	isInactive    bool      // Whether the client is in inactive warning state
	lastInput     time.Time // Last frame with any key press
}

// NewClientState creates a new initialized client state.
func NewClientState(now time.Time) *ClientState {
	return &ClientState{
		Running:   true,
		lastInput: now,
	}
}
