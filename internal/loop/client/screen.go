package client

import (
	"fmt"
	"strings"

	"github.com/tomz197/invaders/internal/loop"
	"github.com/tomz197/invaders/internal/loop/config"
)

// leaderboardRows is how many lobby entries fit in the corner panel.
const leaderboardRows = 3

// overlay draws the connection-level screens over the game. Shutdown and
// inactivity notices replace the game screens; otherwise the lobby summary
// sits on the bottom row.
func (c *Client) overlay(r *loop.Renderer) bool {
	if c.state.ShuttingDown {
		c.drawShutdownScreen(r)
		return true
	}
	if c.state.isInactive {
		c.drawInactivityScreen(r)
		return true
	}
	c.drawLobbyPanel(r)
	return false
}

// drawShutdownScreen draws the server shutdown notification screen.
func (c *Client) drawShutdownScreen(r *loop.Renderer) {
	remaining := int(c.state.shutdownTimer) + 1
	r.CenterBox("SERVER SHUTTING DOWN",
		"The server is restarting for maintenance.",
		"Please reconnect in a moment.",
		"",
		fmt.Sprintf("Disconnecting in %d seconds...", remaining),
		"Press Q to disconnect now",
	)
}

// drawInactivityScreen draws the inactivity warning screen.
func (c *Client) drawInactivityScreen(r *loop.Renderer) {
	left := int(config.InactivityDisconnectUser - c.now().Sub(c.state.lastInput).Seconds())
	r.CenterBox("INACTIVITY WARNING",
		"You have been inactive for too long.",
		fmt.Sprintf("You will be disconnected in %d seconds.", max(left, 0)),
		"",
		"Press any key to continue",
	)
}

// drawLobbyPanel draws the player count and the best scores of the lobby on
// the bottom row. Fixed-width fields keep shrinking values from leaving
// residue behind.
func (c *Client) drawLobbyPanel(r *loop.Renderer) {
	snapshot := c.lobby.GetSnapshot()
	if snapshot == nil {
		return
	}

	players := fmt.Sprintf("Players: %-4d", snapshot.Players)
	r.WriteAt(r.Width()-len(players), r.Height(), players)

	var b strings.Builder
	for i, e := range snapshot.TopScores {
		if i == leaderboardRows {
			break
		}
		if i > 0 {
			b.WriteString("  ")
		}
		fmt.Fprintf(&b, "%d. %s %d", i+1, e.Username, e.High)
	}
	if b.Len() > 0 {
		r.WriteAt(2, r.Height(), b.String())
	}
}
