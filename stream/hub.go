// Package stream broadcasts simulation frames to websocket clients.
package stream

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/pthm-cable/slosh/frame"
)

const (
	writeWait       = 5 * time.Second
	shutdownTimeout = 5 * time.Second
)

// Command types accepted from clients.
const (
	CmdPause  = "pause"
	CmdResume = "resume"
	CmdReset  = "reset"
	CmdPour   = "pour"
)

// Command is a control message sent by a client.
type Command struct {
	Type   string  `json:"type"`
	X      int     `json:"x,omitempty"`
	Z      int     `json:"z,omitempty"`
	Amount float32 `json:"amount,omitempty"`
}

// Hub tracks connected clients and fans frames out to them.
type Hub struct {
	upgrader websocket.Upgrader

	mu      sync.RWMutex
	clients map[*websocket.Conn]*sync.Mutex // per-connection write lock
	last    *frame.Frame

	commands chan Command
}

// NewHub creates a hub with no clients.
func NewHub() *Hub {
	return &Hub{
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		clients:  make(map[*websocket.Conn]*sync.Mutex),
		commands: make(chan Command, 16),
	}
}

// Commands returns control messages received from clients.
func (h *Hub) Commands() <-chan Command { return h.commands }

// Clients returns the number of connected clients.
func (h *Hub) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Handler returns the HTTP handler serving /ws.
func (h *Hub) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", h.serveWS)
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintln(w, "slosh frame stream: connect a websocket to /ws")
	})
	return mux
}

func (h *Hub) serveWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	lock := &sync.Mutex{}
	h.mu.Lock()
	h.clients[conn] = lock
	last := h.last
	h.mu.Unlock()
	defer h.remove(conn)

	slog.Info("stream client connected", "remote", r.RemoteAddr)

	// New clients see the latest frame immediately
	if last != nil {
		if err := send(conn, lock, last); err != nil {
			return
		}
	}

	for {
		var cmd Command
		if err := conn.ReadJSON(&cmd); err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				slog.Debug("stream client read failed", "error", err)
			}
			return
		}
		select {
		case h.commands <- cmd:
		default:
			slog.Warn("dropping stream command, queue full", "type", cmd.Type)
		}
	}
}

func (h *Hub) remove(conn *websocket.Conn) {
	h.mu.Lock()
	delete(h.clients, conn)
	h.mu.Unlock()
}

func send(conn *websocket.Conn, lock *sync.Mutex, f *frame.Frame) error {
	lock.Lock()
	defer lock.Unlock()
	conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteJSON(f)
}

// Broadcast sends f to every client. Clients that fail to receive are dropped.
func (h *Hub) Broadcast(f frame.Frame) {
	h.mu.Lock()
	h.last = &f
	h.mu.Unlock()

	h.mu.RLock()
	var failed []*websocket.Conn
	for conn, lock := range h.clients {
		if err := send(conn, lock, &f); err != nil {
			failed = append(failed, conn)
		}
	}
	h.mu.RUnlock()

	// Remove failed clients
	if len(failed) > 0 {
		h.mu.Lock()
		for _, conn := range failed {
			delete(h.clients, conn)
			conn.Close()
		}
		h.mu.Unlock()
		slog.Info("dropped stream clients", "count", len(failed))
	}
}

// ListenAndServe serves the hub on addr until ctx is cancelled.
func (h *Hub) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{Addr: addr, Handler: h.Handler()}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("stream listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("stream server: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("stream shutdown: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
