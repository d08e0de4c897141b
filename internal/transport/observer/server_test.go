package observer

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"mirror-ca/internal/sims/mirror"
)

func newWorld(t *testing.T) *mirror.World {
	t.Helper()
	cfg := mirror.DefaultConfig()
	cfg.N = 9
	cfg.Params.SpawnRate = 300
	w, err := mirror.NewWithConfig(cfg)
	if err != nil {
		t.Fatal(err)
	}
	return w
}

func dial(t *testing.T, srv *httptest.Server, sub SubscribeMsg) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	if err := conn.WriteJSON(sub); err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	return conn
}

func waitForSessions(t *testing.T, hub *Hub, n int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for hub.Sessions() != n {
		if time.Now().After(deadline) {
			t.Fatalf("expected %d sessions, have %d", n, hub.Sessions())
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestBootstrap(t *testing.T) {
	w := newWorld(t)
	hub := NewHub()
	hub.SetBootstrap(BootstrapFor(w))
	srv := httptest.NewServer(NewServer(hub, nil).Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/bootstrap")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	var b BootstrapResponse
	if err := json.NewDecoder(resp.Body).Decode(&b); err != nil {
		t.Fatal(err)
	}
	if b.ProtocolVersion != Version || b.Sim != "mirror" || b.N != 9 || len(b.Palette) != 256*4 {
		t.Fatalf("unexpected bootstrap: %+v", b)
	}
	if p, ok := b.Parameters.Lookup("spawn_rate"); !ok || p.Value != "300" {
		t.Fatalf("bootstrap parameters missing spawn_rate: %+v", b.Parameters)
	}

	post, err := http.Post(srv.URL+"/bootstrap", "application/json", nil)
	if err != nil {
		t.Fatal(err)
	}
	post.Body.Close()
	if post.StatusCode != http.StatusMethodNotAllowed {
		t.Fatalf("POST should be rejected, got %d", post.StatusCode)
	}
}

func TestStreamDeliversCompletedTicks(t *testing.T) {
	w := newWorld(t)
	hub := NewHub()
	srv := httptest.NewServer(NewServer(hub, nil).Handler())
	defer srv.Close()

	conn := dial(t, srv, SubscribeMsg{Type: "SUBSCRIBE", ProtocolVersion: Version, Cells: true})
	waitForSessions(t, hub, 1)

	w.Step()
	f, err := FrameFor(w)
	if err != nil {
		t.Fatal(err)
	}
	hub.Publish(f)

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var msg TickMsg
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read: %v", err)
	}
	if msg.Type != "TICK" || msg.Stats != w.Stats() || msg.Status != w.Stats().String() {
		t.Fatalf("unexpected frame: %+v", msg)
	}
	if msg.View == nil || len(msg.View.Cells) != 81 || msg.View.Axis != "z" {
		t.Fatalf("expected a 9x9 z view, got %+v", msg.View)
	}
}

func TestStreamHonorsInterval(t *testing.T) {
	w := newWorld(t)
	hub := NewHub()
	srv := httptest.NewServer(NewServer(hub, nil).Handler())
	defer srv.Close()

	conn := dial(t, srv, SubscribeMsg{Type: "SUBSCRIBE", ProtocolVersion: Version, Every: 3})
	waitForSessions(t, hub, 1)

	for i := 0; i < 6; i++ {
		w.Step()
		f, err := FrameFor(w)
		if err != nil {
			t.Fatal(err)
		}
		hub.Publish(f)
	}
	for _, want := range []uint64{3, 6} {
		_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
		var msg TickMsg
		if err := conn.ReadJSON(&msg); err != nil {
			t.Fatalf("read: %v", err)
		}
		if msg.Stats.Ticks != want || msg.View != nil {
			t.Fatalf("expected stats-only frame for tick %d, got %+v", want, msg)
		}
	}
}

func TestRejectsBadSubscribe(t *testing.T) {
	hub := NewHub()
	srv := httptest.NewServer(NewServer(hub, nil).Handler())
	defer srv.Close()

	conn := dial(t, srv, SubscribeMsg{Type: "HELLO", ProtocolVersion: Version})
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, _, err := conn.ReadMessage()
	if !websocket.IsCloseError(err, websocket.ClosePolicyViolation) {
		t.Fatalf("expected policy violation close, got %v", err)
	}
	if hub.Sessions() != 0 {
		t.Fatal("a rejected client must not join")
	}
}

func TestIsLoopbackRemote(t *testing.T) {
	for addr, want := range map[string]bool{
		"127.0.0.1:5000": true,
		"[::1]:80":       true,
		"10.0.0.2:80":    false,
		"garbage":        false,
	} {
		if got := isLoopbackRemote(addr); got != want {
			t.Fatalf("isLoopbackRemote(%q) = %v", addr, got)
		}
	}
}
