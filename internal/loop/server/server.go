// Package server implements the SSH lobby: every connected client plays its
// own session, and the lobby collects their scores into a shared leaderboard.
package server

import (
	"context"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"

	"github.com/tomz197/invaders/internal/loop/config"
)

// Lobby is the interface clients use to communicate with the lobby server.
// Decouples the Client from the concrete Server implementation.
type Lobby interface {
	RegisterClient(username string) *ClientHandle
	UnregisterClient(clientID int)
	ReportScore(clientID int, score Score)
	GetSnapshot() *Snapshot
}

// Compile-time check that Server implements Lobby.
var _ Lobby = (*Server)(nil)

// ClientHandle represents a client's connection to the lobby.
type ClientHandle struct {
	ID       int
	Username string           // Display name for this client
	EventsCh chan ClientEvent // Events sent to the client, closed on unregister
}

// ClientEvent represents an event sent from server to client.
type ClientEvent struct {
	Type ClientEventType
}

// ClientEventType identifies the type of client event.
type ClientEventType int

const (
	EventServerShutdown ClientEventType = iota
)

// scoreReport carries a score update from a client.
type scoreReport struct {
	clientID int
	score    Score
}

// Server tracks connected players and publishes leaderboard snapshots.
// All bookkeeping happens on the Run goroutine; other goroutines talk to it
// through channels and read the latest snapshot.
type Server struct {
	snapshot     atomic.Pointer[Snapshot]
	clients      map[int]*player
	nextClientID int
	registerCh   chan *ClientHandle
	unregisterCh chan int
	scoreCh      chan scoreReport
	mu           sync.RWMutex
	version      uint64
	topN         int
	listeners    []func(*Snapshot)
	logger       *log.Logger
}

// NewServer creates a new lobby server. A nil logger discards output.
func NewServer(logger *log.Logger) *Server {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	s := &Server{
		clients:      make(map[int]*player),
		nextClientID: 1,
		registerCh:   make(chan *ClientHandle, 16),
		unregisterCh: make(chan int, 16),
		scoreCh:      make(chan scoreReport, 256),
		topN:         config.LeaderboardSize,
		logger:       logger,
	}

	// Create initial empty snapshot
	s.snapshot.Store(&Snapshot{TopScores: []TopScoreEntry{}})
	return s
}

// SetLeaderboardSize sets how many players a snapshot ranks. Non-positive
// sizes are ignored. Must be called before Run.
func (s *Server) SetLeaderboardSize(n int) {
	if n > 0 {
		s.topN = n
	}
}

// OnSnapshot registers fn to be called on the Run goroutine with every new
// snapshot. Must be called before Run.
func (s *Server) OnSnapshot(fn func(*Snapshot)) {
	s.listeners = append(s.listeners, fn)
}

// Run processes registrations and score reports. Blocks until the context is cancelled.
func (s *Server) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case handle := <-s.registerCh:
			s.logger.Info("player joined", "id", handle.ID, "username", handle.Username)
		case clientID := <-s.unregisterCh:
			s.mu.Lock()
			if p, ok := s.clients[clientID]; ok {
				close(p.handle.EventsCh)
				delete(s.clients, clientID)
				s.logger.Info("player left", "id", clientID, "username", p.handle.Username, "high", p.score.High)
			}
			s.mu.Unlock()
		case r := <-s.scoreCh:
			s.mu.Lock()
			p, ok := s.clients[r.clientID]
			if ok {
				p.score = r.score
			}
			s.mu.Unlock()
			if !ok {
				continue
			}
		}
		s.publish()
	}
}

// publish stores a new snapshot and hands it to the listeners.
func (s *Server) publish() {
	s.mu.RLock()
	s.version++
	snapshot := &Snapshot{
		Version:   s.version,
		Players:   len(s.clients),
		TopScores: rankPlayers(s.clients, s.topN),
	}
	s.mu.RUnlock()

	s.snapshot.Store(snapshot)
	for _, fn := range s.listeners {
		fn(snapshot)
	}
}

// Shutdown gracefully shuts down the server by notifying all connected clients
// and waiting for them to disconnect (up to the given timeout).
// The caller should cancel the server context after Shutdown returns.
func (s *Server) Shutdown(timeout time.Duration) {
	// Notify all connected clients about the shutdown
	s.mu.RLock()
	for _, p := range s.clients {
		select {
		case p.handle.EventsCh <- ClientEvent{Type: EventServerShutdown}:
		default:
		}
	}
	s.mu.RUnlock()

	// Wait for all clients to disconnect, or timeout
	deadline := time.After(timeout)
	ticker := time.NewTicker(200 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-deadline:
			return
		case <-ticker.C:
			s.mu.RLock()
			remaining := len(s.clients)
			s.mu.RUnlock()
			if remaining == 0 {
				return
			}
		}
	}
}

// RegisterClient adds a client with the given username and returns its handle.
// The client is in the lobby when this returns; Run publishes the new snapshot.
func (s *Server) RegisterClient(username string) *ClientHandle {
	s.mu.Lock()
	handle := &ClientHandle{
		ID:       s.nextClientID,
		Username: NormalizeUsername(username),
		EventsCh: make(chan ClientEvent, 16),
	}
	s.nextClientID++
	// Added before the id escapes so a later unregister always finds it.
	s.clients[handle.ID] = &player{handle: handle}
	s.mu.Unlock()

	s.registerCh <- handle
	return handle
}

// UnregisterClient removes a client from the lobby.
func (s *Server) UnregisterClient(clientID int) {
	s.unregisterCh <- clientID
}

// ReportScore updates a client's leaderboard entry.
func (s *Server) ReportScore(clientID int, score Score) {
	select {
	case s.scoreCh <- scoreReport{clientID: clientID, score: score}:
	default:
		// Score channel full, drop the report; the next change resends it
	}
}

// GetSnapshot returns the current lobby snapshot.
func (s *Server) GetSnapshot() *Snapshot {
	return s.snapshot.Load()
}
