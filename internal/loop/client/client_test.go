package client

import (
	"bytes"
	"context"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/tomz197/invaders/internal/loop"
	"github.com/tomz197/invaders/internal/loop/config"
	"github.com/tomz197/invaders/internal/loop/server"
)

// fakeLobby records what a client tells the lobby.
type fakeLobby struct {
	mu           sync.Mutex
	registered   []string
	unregistered []int
	scores       []server.Score
	handle       *server.ClientHandle
	snapshot     *server.Snapshot
}

func newFakeLobby() *fakeLobby {
	return &fakeLobby{
		handle:   &server.ClientHandle{ID: 7, EventsCh: make(chan server.ClientEvent, 4)},
		snapshot: &server.Snapshot{Players: 1},
	}
}

func (l *fakeLobby) RegisterClient(username string) *server.ClientHandle {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.registered = append(l.registered, username)
	l.handle.Username = username
	return l.handle
}

func (l *fakeLobby) UnregisterClient(clientID int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.unregistered = append(l.unregistered, clientID)
}

func (l *fakeLobby) ReportScore(_ int, score server.Score) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.scores = append(l.scores, score)
}

func (l *fakeLobby) GetSnapshot() *server.Snapshot {
	return l.snapshot
}

// blockingReader never returns, like an idle SSH session.
type blockingReader struct{ ch chan struct{} }

func (r blockingReader) ReadByte() (byte, error) {
	<-r.ch
	return 0, io.EOF
}

func fixedSize() (int, int, error) { return 100, 40, nil }

func newTestClient(t *testing.T) (*Client, *fakeLobby, *loop.Driver, *bytes.Buffer) {
	t.Helper()
	lobby := newFakeLobby()
	var out bytes.Buffer
	r := blockingReader{ch: make(chan struct{})}
	t.Cleanup(func() { close(r.ch) })

	c := NewClient(lobby, r, &out, ClientOptions{TermSizeFunc: fixedSize, Username: "zoe"})
	d := loop.NewDriver(c.session)
	t.Cleanup(d.Stop)
	return c, lobby, d, &out
}

func TestNewClientRegisters(t *testing.T) {
	c, lobby, _, _ := newTestClient(t)
	if len(lobby.registered) != 1 || lobby.registered[0] != "zoe" {
		t.Errorf("registered = %v", lobby.registered)
	}
	if c.handle.ID != 7 || !c.state.Running {
		t.Errorf("handle=%+v running=%v", c.handle, c.state.Running)
	}
}

func TestScoreReportedOnChangeOnly(t *testing.T) {
	c, lobby, d, _ := newTestClient(t)
	for i := 0; i < 3; i++ {
		if err := c.frame(d); err != nil {
			t.Fatal(err)
		}
	}
	if len(lobby.scores) != 1 {
		t.Fatalf("reported %d times, want once", len(lobby.scores))
	}
	if lobby.scores[0] != (server.Score{Level: 1}) {
		t.Errorf("first report = %+v", lobby.scores[0])
	}
}

func TestShutdownCountdown(t *testing.T) {
	c, lobby, d, out := newTestClient(t)
	lobby.handle.EventsCh <- server.ClientEvent{Type: server.EventServerShutdown}

	if err := c.frame(d); err != nil {
		t.Fatal(err)
	}
	if !c.state.ShuttingDown {
		t.Fatal("shutdown event ignored")
	}
	if !strings.Contains(out.String(), "SERVER SHUTTING DOWN") {
		t.Error("shutdown screen not drawn")
	}

	frames := int(config.ShutdownDisplaySeconds*config.TargetFPS) + 1
	for i := 0; i < frames && c.state.Running; i++ {
		if err := c.frame(d); err != nil {
			t.Fatal(err)
		}
	}
	if c.state.Running {
		t.Error("client should disconnect after the shutdown countdown")
	}
}

func TestInactivity(t *testing.T) {
	c, _, d, out := newTestClient(t)
	start := time.Now()
	c.state.lastInput = start

	c.now = func() time.Time { return start.Add((config.InactivityWarnUser + 1) * time.Second) }
	if err := c.frame(d); err != nil {
		t.Fatal(err)
	}
	if !c.state.isInactive || !c.state.Running {
		t.Fatalf("inactive=%v running=%v", c.state.isInactive, c.state.Running)
	}
	if !strings.Contains(out.String(), "INACTIVITY WARNING") {
		t.Error("inactivity screen not drawn")
	}

	c.now = func() time.Time { return start.Add((config.InactivityDisconnectUser + 1) * time.Second) }
	if err := c.frame(d); err != nil {
		t.Fatal(err)
	}
	if c.state.Running {
		t.Error("inactive client should be disconnected")
	}
}

func TestClosedEventsDisconnect(t *testing.T) {
	c, lobby, d, _ := newTestClient(t)
	close(lobby.handle.EventsCh)
	if err := c.frame(d); err != nil {
		t.Fatal(err)
	}
	if c.state.Running {
		t.Error("client kept running after the lobby dropped it")
	}
}

func TestRunQuitUnregisters(t *testing.T) {
	lobby := newFakeLobby()
	var out bytes.Buffer
	c := NewClient(lobby, strings.NewReader("q"), &out, ClientOptions{TermSizeFunc: fixedSize})

	done := make(chan error, 1)
	go func() { done <- c.Run(context.Background()) }()

	select {
	case err := <-done:
		if err != nil {
			t.Fatal(err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after quit")
	}
	if len(lobby.unregistered) != 1 || lobby.unregistered[0] != 7 {
		t.Errorf("unregistered = %v", lobby.unregistered)
	}
}

func TestLobbyPanel(t *testing.T) {
	c, lobby, d, out := newTestClient(t)
	lobby.snapshot = &server.Snapshot{
		Players: 2,
		TopScores: []server.TopScoreEntry{
			{Username: "amy", Score: server.Score{High: 90}},
			{Username: "zoe", Score: server.Score{High: 40}},
		},
	}
	if err := c.frame(d); err != nil {
		t.Fatal(err)
	}
	s := out.String()
	if !strings.Contains(s, "Players: 2") || !strings.Contains(s, "1. amy 90  2. zoe 40") {
		t.Errorf("lobby panel missing from output")
	}
}
