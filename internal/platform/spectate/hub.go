// Package spectate broadcasts live run state to read-only websocket viewers.
package spectate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"slices"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"

	"github.com/vovakirdan/tui-survivor/internal/games/survival/sim"
)

const (
	sendQueue    = 64
	writeTimeout = 5 * time.Second
	readTimeout  = 60 * time.Second
)

// Frame is one published state of a run.
type Frame struct {
	Session string      `json:"session"`
	Tick    uint64      `json:"tick"`
	State   sim.UIState `json:"state"`
}

// Hub fans out frames to every connected viewer and keeps the latest frame
// per session for late joiners and the /state endpoint.
type Hub struct {
	mu      sync.Mutex
	clients map[*client]struct{}
	latest  map[string]Frame
	closed  bool
	logger  *log.Logger

	// readTimeout drops a viewer that stops answering pings. Pings go out
	// at 9/10 of it.
	readTimeout time.Duration
}

// NewHub creates an empty hub.
func NewHub(logger *log.Logger) *Hub {
	return &Hub{
		clients: make(map[*client]struct{}),
		latest:  make(map[string]Frame),
		logger:  logger,

		readTimeout: readTimeout,
	}
}

// Publish records the frame and queues it for every viewer. Slow viewers
// drop frames instead of blocking the caller's tick.
func (h *Hub) Publish(f Frame) {
	b, err := json.Marshal(f)
	if err != nil {
		h.logger.Error("encode frame", "err", err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.latest[f.Session] = f
	for c := range h.clients {
		c.enqueue(b)
	}
}

// End forgets a finished session.
func (h *Hub) End(session string) {
	h.mu.Lock()
	delete(h.latest, session)
	h.mu.Unlock()
}

// Frames returns the latest frame of every live session, ordered by session.
func (h *Hub) Frames() []Frame {
	h.mu.Lock()
	defer h.mu.Unlock()
	frames := make([]Frame, 0, len(h.latest))
	for _, f := range h.latest {
		frames = append(frames, f)
	}
	slices.SortFunc(frames, func(a, b Frame) int {
		switch {
		case a.Session < b.Session:
			return -1
		case a.Session > b.Session:
			return 1
		}
		return 0
	})
	return frames
}

// Viewers returns the number of connected viewers.
func (h *Hub) Viewers() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Close disconnects every viewer. Later publishes are dropped.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	for c := range h.clients {
		c.close()
		delete(h.clients, c)
	}
}

func (h *Hub) register(c *client) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return false
	}
	h.clients[c] = struct{}{}
	for _, f := range h.latest {
		if b, err := json.Marshal(f); err == nil {
			c.enqueue(b)
		}
	}
	return true
}

func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c]; ok {
		c.close()
		delete(h.clients, c)
	}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(*http.Request) bool { return true },
}

// Handler serves /ws (live frames), /state (latest frames as JSON) and
// /healthz.
func (h *Hub) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", h.handleWS)
	mux.HandleFunc("/state", h.handleState)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"ok": true, "viewers": h.Viewers()})
	})
	return mux
}

func (h *Hub) handleWS(w http.ResponseWriter, r *http.Request) {
	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", "err", err, "remote", r.RemoteAddr)
		return
	}

	c := newClient(ws, h.readTimeout)
	if !h.register(c) {
		_ = ws.Close()
		return
	}
	h.logger.Debug("viewer joined", "remote", r.RemoteAddr)

	go c.writePump()
	go func() {
		c.readPump()
		h.unregister(c)
		h.logger.Debug("viewer left", "remote", r.RemoteAddr)
	}()
}

func (h *Hub) handleState(w http.ResponseWriter, r *http.Request) {
	frames := h.Frames()
	if session := r.URL.Query().Get("session"); session != "" {
		frames = slices.DeleteFunc(frames, func(f Frame) bool { return f.Session != session })
		if len(frames) == 0 {
			http.Error(w, "unknown session", http.StatusNotFound)
			return
		}
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(frames)
}

// ListenAndServe serves the hub on addr until ctx is cancelled.
func (h *Hub) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           h.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		errc <- srv.ListenAndServe()
	}()
	h.logger.Info("spectator feed listening", "address", addr)

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("spectate: %w", err)
	case <-ctx.Done():
	}

	h.Close()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("spectate: shutdown: %w", err)
	}
	return nil
}
