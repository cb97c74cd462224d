package server

import (
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/tomz197/invaders/internal/loop/config"
)

// Score is what a client reports after each frame that changed its stats.
type Score struct {
	Score int
	Level int
	High  int
}

// TopScoreEntry represents a single entry on the leaderboard.
type TopScoreEntry struct {
	Username string
	Score
	clientID int // Used for deterministic tie-break when high scores are equal
}

// Snapshot is an immutable view of the lobby for rendering and the scoreboard.
type Snapshot struct {
	Version   uint64          // Increases with every published change
	Players   int             // Connected players
	TopScores []TopScoreEntry // Best high scores first, at most config.LeaderboardSize
}

// player is the lobby's record of one connected client.
type player struct {
	handle *ClientHandle
	score  Score
}

// rankPlayers orders players by high score, earlier joins first on ties,
// and returns at most limit entries.
func rankPlayers(players map[int]*player, limit int) []TopScoreEntry {
	entries := make([]TopScoreEntry, 0, len(players))
	for id, p := range players {
		entries = append(entries, TopScoreEntry{
			Username: p.handle.Username,
			Score:    p.score,
			clientID: id,
		})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].High != entries[j].High {
			return entries[i].High > entries[j].High
		}
		return entries[i].clientID < entries[j].clientID
	})
	if len(entries) > limit {
		entries = entries[:limit]
	}
	return entries
}

// NormalizeUsername trims whitespace and control characters and caps the
// length so names fit the leaderboard.
func NormalizeUsername(name string) string {
	name = strings.Map(func(r rune) rune {
		if r < 0x20 || r == 0x7f {
			return -1
		}
		return r
	}, strings.TrimSpace(name))
	if name == "" {
		return "anonymous"
	}
	if utf8.RuneCountInString(name) > config.MaxUsernameLength {
		name = string([]rune(name)[:config.MaxUsernameLength])
	}
	return name
}
