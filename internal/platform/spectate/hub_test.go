package spectate

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/vovakirdan/tui-survivor/internal/games/survival/sim"
	"github.com/vovakirdan/tui-survivor/internal/logging"
)

func newTestServer(t *testing.T) (*Hub, *httptest.Server) {
	t.Helper()
	h := NewHub(logging.Discard())
	srv := httptest.NewServer(h.Handler())
	t.Cleanup(func() {
		h.Close()
		srv.Close()
	})
	return h, srv
}

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	ws, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("Dial() failed: %v", err)
	}
	t.Cleanup(func() { ws.Close() })
	return ws
}

func readFrame(t *testing.T, ws *websocket.Conn) Frame {
	t.Helper()
	_ = ws.SetReadDeadline(time.Now().Add(2 * time.Second))
	var f Frame
	if err := ws.ReadJSON(&f); err != nil {
		t.Fatalf("ReadJSON() failed: %v", err)
	}
	return f
}

func waitViewers(t *testing.T, h *Hub, n int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for h.Viewers() != n {
		if time.Now().After(deadline) {
			t.Fatalf("Viewers() = %d, expected %d", h.Viewers(), n)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestLateJoinerGetsLatestFrame(t *testing.T) {
	h, srv := newTestServer(t)

	h.Publish(Frame{Session: "a", Tick: 1, State: sim.UIState{Wave: 1}})
	h.Publish(Frame{Session: "a", Tick: 2, State: sim.UIState{Wave: 2, Score: 30}})

	ws := dial(t, srv)
	f := readFrame(t, ws)
	if f.Tick != 2 || f.State.Wave != 2 || f.State.Score != 30 {
		t.Errorf("first frame = %+v, expected tick 2 of wave 2", f)
	}
}

func TestPublishReachesViewers(t *testing.T) {
	h, srv := newTestServer(t)

	ws1 := dial(t, srv)
	ws2 := dial(t, srv)
	waitViewers(t, h, 2)

	h.Publish(Frame{Session: "run", Tick: 7, State: sim.UIState{Player: "Player1", Kills: 4}})

	for _, ws := range []*websocket.Conn{ws1, ws2} {
		f := readFrame(t, ws)
		if f.Session != "run" || f.Tick != 7 || f.State.Kills != 4 {
			t.Errorf("frame = %+v, expected tick 7 with 4 kills", f)
		}
	}
}

// newShortTimeoutServer starts a hub whose viewers time out after d without a pong.
func newShortTimeoutServer(t *testing.T, d time.Duration) (*Hub, *httptest.Server) {
	t.Helper()
	h := NewHub(logging.Discard())
	h.readTimeout = d
	srv := httptest.NewServer(h.Handler())
	t.Cleanup(func() {
		h.Close()
		srv.Close()
	})
	return h, srv
}

func TestReadOnlyViewerOutlivesReadTimeout(t *testing.T) {
	h, srv := newShortTimeoutServer(t, 200*time.Millisecond)

	ws := dial(t, srv)
	waitViewers(t, h, 1)

	// The viewer only reads; its reads answer the hub's pings.
	received := make(chan int, 1)
	go func() {
		n := 0
		_ = ws.SetReadDeadline(time.Now().Add(5 * time.Second))
		for {
			if _, _, err := ws.ReadMessage(); err != nil {
				received <- n
				return
			}
			n++
		}
	}()

	for i := 0; i < 20; i++ {
		h.Publish(Frame{Session: "run", Tick: uint64(i)})
		time.Sleep(50 * time.Millisecond)
	}

	if got := h.Viewers(); got != 1 {
		t.Errorf("Viewers() = %d after 1s of frames, expected 1", got)
	}
	ws.Close()
	if n := <-received; n < 10 {
		t.Errorf("viewer received %d frames, expected at least 10", n)
	}
}

func TestUnresponsiveViewerDropped(t *testing.T) {
	h, srv := newShortTimeoutServer(t, 200*time.Millisecond)

	// Never reading means pings are never answered.
	dial(t, srv)
	waitViewers(t, h, 1)
	waitViewers(t, h, 0)
}

func TestViewerDisconnect(t *testing.T) {
	h, srv := newTestServer(t)

	ws := dial(t, srv)
	waitViewers(t, h, 1)
	ws.Close()
	waitViewers(t, h, 0)

	h.Publish(Frame{Session: "run", Tick: 1})
}

func TestStateEndpoint(t *testing.T) {
	h, srv := newTestServer(t)

	h.Publish(Frame{Session: "b", Tick: 5})
	h.Publish(Frame{Session: "a", Tick: 3})

	tests := []struct {
		query    string
		status   int
		sessions []string
	}{
		{"", http.StatusOK, []string{"a", "b"}},
		{"?session=b", http.StatusOK, []string{"b"}},
		{"?session=zzz", http.StatusNotFound, nil},
	}

	for _, tt := range tests {
		resp, err := http.Get(srv.URL + "/state" + tt.query)
		if err != nil {
			t.Fatalf("GET /state%s failed: %v", tt.query, err)
		}
		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()

		if resp.StatusCode != tt.status {
			t.Errorf("GET /state%s status = %d, expected %d", tt.query, resp.StatusCode, tt.status)
			continue
		}
		if tt.status != http.StatusOK {
			continue
		}
		var frames []Frame
		if err := json.Unmarshal(body, &frames); err != nil {
			t.Fatalf("decode /state%s: %v", tt.query, err)
		}
		if len(frames) != len(tt.sessions) {
			t.Errorf("GET /state%s returned %d frames, expected %d", tt.query, len(frames), len(tt.sessions))
			continue
		}
		for i, s := range tt.sessions {
			if frames[i].Session != s {
				t.Errorf("frames[%d].Session = %q, expected %q", i, frames[i].Session, s)
			}
		}
	}

	h.End("a")
	if got := len(h.Frames()); got != 1 {
		t.Errorf("Frames() after End = %d, expected 1", got)
	}
}

func TestHealthz(t *testing.T) {
	_, srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/healthz")
	if err != nil {
		t.Fatalf("GET /healthz failed: %v", err)
	}
	defer resp.Body.Close()

	var body map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode /healthz: %v", err)
	}
	if body["ok"] != true {
		t.Errorf("/healthz = %v, expected ok", body)
	}
}

func TestListenAndServeStopsOnCancel(t *testing.T) {
	h := NewHub(logging.Discard())
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- h.ListenAndServe(ctx, "127.0.0.1:0") }()
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("ListenAndServe() = %v, expected nil after cancel", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("ListenAndServe() did not return after cancel")
	}
}
