// Package bridge serves a Scene to browser renderers over websockets.
package bridge

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/gorilla/websocket"

	"github.com/pthm-cable/eyeball/config"
	"github.com/pthm-cable/eyeball/scene"
)

// ErrUnknownMessage is returned for an unrecognized message type.
var ErrUnknownMessage = errors.New("unknown message type")

// client is one websocket connection. mu serializes writes.
type client struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

// Server owns a Scene. Only the Run goroutine touches the scene; connection
// readers hand their messages over through inbox.
type Server struct {
	scene        *scene.Scene
	frame        time.Duration
	writeTimeout time.Duration
	upgrader     websocket.Upgrader

	inbox chan Message
	setup []byte // encoded once; the layout never changes

	clientsMu sync.RWMutex
	clients   map[*client]struct{}

	// Owned by Run
	contact *mgl64.Vec3
}

// NewServer creates a bridge for sc.
func NewServer(sc *scene.Scene, cfg *config.Config) (*Server, error) {
	setup, err := json.Marshal(newSetupMessage(sc.Particles()))
	if err != nil {
		return nil, fmt.Errorf("encoding setup: %w", err)
	}

	frame := time.Duration(cfg.Bridge.FrameMs) * time.Millisecond
	if frame <= 0 {
		frame = 16 * time.Millisecond
	}

	return &Server{
		scene:        sc,
		frame:        frame,
		writeTimeout: time.Duration(cfg.Bridge.WriteTimeoutMs) * time.Millisecond,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		inbox:   make(chan Message, 256),
		setup:   setup,
		clients: make(map[*client]struct{}),
	}, nil
}

// Handler returns the HTTP handler serving /ws.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.ServeWS)
	return mux
}

// ServeWS upgrades the request, sends the setup message and forwards client
// messages to the loop until the connection closes.
func (s *Server) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	c := &client{conn: conn}

	// Register while holding the write lock so no frame overtakes setup
	c.mu.Lock()
	s.clientsMu.Lock()
	s.clients[c] = struct{}{}
	s.clientsMu.Unlock()
	err = s.write(c, s.setup)
	c.mu.Unlock()

	defer s.remove(c)
	if err != nil {
		slog.Warn("sending setup failed", "error", err)
		return
	}

	slog.Info("client connected", "remote", r.RemoteAddr)
	for {
		var msg Message
		if err := conn.ReadJSON(&msg); err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				slog.Debug("websocket read ended", "error", err)
			}
			return
		}
		select {
		case s.inbox <- msg:
		case <-r.Context().Done():
			return
		}
	}
}

// Run ticks the scene every frame and broadcasts the result until ctx is
// cancelled.
func (s *Server) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.frame)
	defer ticker.Stop()

	last := time.Now()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg := <-s.inbox:
			if err := s.apply(msg); err != nil {
				slog.Warn("dropping message", "type", msg.Type, "error", err)
			}
		case now := <-ticker.C:
			dt := float64(now.Sub(last)) / float64(time.Millisecond)
			last = now

			s.scene.Tick(dt, s.contact)
			s.broadcast()
		}
	}
}

// ListenAndServe serves the handler on addr and runs the loop. It returns
// when ctx is cancelled or the listener fails.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{Addr: addr, Handler: s.Handler()}

	errc := make(chan error, 1)
	go func() {
		errc <- srv.ListenAndServe()
	}()

	slog.Info("bridge listening", "addr", addr, "frame_ms", s.frame.Milliseconds())

	runErr := s.Run(ctx)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down: %w", err)
	}
	if err := <-errc; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	if errors.Is(runErr, context.Canceled) {
		return nil
	}
	return runErr
}

// apply feeds one client message into the scene. Loop goroutine only.
func (s *Server) apply(msg Message) error {
	ab := s.scene.Arcball()
	switch msg.Type {
	case MsgPointerDown:
		ab.PointerDown(msg.X, msg.Y)
	case MsgPointerMove:
		ab.PointerMove(msg.X, msg.Y)
	case MsgPointerUp:
		ab.PointerUp()
	case MsgPointerLeave:
		ab.PointerLeave()
	case MsgContact:
		if msg.Point == nil {
			s.contact = nil
		} else {
			p := vec3(*msg.Point)
			s.contact = &p
		}
	case MsgResize:
		s.scene.Resize(msg.Width, msg.Height)
	case MsgSnap:
		i := -1
		if msg.Index != nil {
			i = *msg.Index
		}
		s.scene.SnapToParticle(i)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownMessage, msg.Type)
	}
	return nil
}

// broadcast sends the current frame to every client, dropping the ones
// that fail.
func (s *Server) broadcast() {
	s.clientsMu.RLock()
	n := len(s.clients)
	s.clientsMu.RUnlock()
	if n == 0 {
		return
	}

	data, err := json.Marshal(newFrameMessage(s.scene))
	if err != nil {
		slog.Error("encoding frame failed", "error", err)
		return
	}

	var failed []*client
	s.clientsMu.RLock()
	for c := range s.clients {
		c.mu.Lock()
		if err := s.write(c, data); err != nil {
			failed = append(failed, c)
		}
		c.mu.Unlock()
	}
	s.clientsMu.RUnlock()

	for _, c := range failed {
		s.remove(c)
		c.conn.Close()
	}
}

// write sends data to c. The caller holds c.mu.
func (s *Server) write(c *client, data []byte) error {
	if s.writeTimeout > 0 {
		c.conn.SetWriteDeadline(time.Now().Add(s.writeTimeout))
	}
	return c.conn.WriteMessage(websocket.TextMessage, data)
}

func (s *Server) remove(c *client) {
	s.clientsMu.Lock()
	delete(s.clients, c)
	s.clientsMu.Unlock()
}

// Clients returns the number of connected clients.
func (s *Server) Clients() int {
	s.clientsMu.RLock()
	defer s.clientsMu.RUnlock()
	return len(s.clients)
}
