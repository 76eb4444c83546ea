// Package reload implements the dev-mode reload channel: an HTTP server that
// serves the build output and pushes a reload frame over a websocket, and
// the in-page client that listens for it.
package reload

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	oerrors "github.com/opmodel/usbuild/internal/errors"
	"github.com/opmodel/usbuild/internal/output"
)

const (
	writeWait = 10 * time.Second

	// Host is the address the dev server binds and the client dials.
	Host = "localhost"
)

// Message is the frame pushed to the client.
type Message struct {
	Message string `json:"message"`
}

// reloadFrame is the encoded {"message":"reload"} payload.
var reloadFrame = mustJSON(Message{Message: "reload"})

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(_ *http.Request) bool {
		return true
	},
}

// Server serves the output directory over HTTP and holds the single reload
// client connection.
type Server struct {
	root  string
	conns Registry
	log   *log.Logger

	mu        sync.Mutex
	listener  net.Listener
	http      *http.Server
	serveOnce sync.Once
	serving   bool
}

// NewServer creates a server for the given output directory.
func NewServer(root string) *Server {
	return &Server{
		root: root,
		log:  output.ServerLogger(),
	}
}

// Reserve binds the listener. Port 0 picks a free port. Calling Reserve
// again after a successful bind is a no-op.
func (s *Server) Reserve(port int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.listener != nil {
		return nil
	}
	ln, err := net.Listen("tcp", net.JoinHostPort(Host, strconv.Itoa(port)))
	if err != nil {
		return fmt.Errorf("binding dev server to port %d: %w: %w", port, oerrors.ErrServer, err)
	}
	s.listener = ln
	return nil
}

// Port returns the bound port, or 0 before Reserve.
func (s *Server) Port() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return 0
	}
	return s.listener.Addr().(*net.TCPAddr).Port
}

// URL returns the HTTP base URL.
func (s *Server) URL() string {
	return "http://" + net.JoinHostPort(Host, strconv.Itoa(s.Port()))
}

// WebSocketURL returns the URL the reload client dials.
func (s *Server) WebSocketURL() string {
	return "ws://" + net.JoinHostPort(Host, strconv.Itoa(s.Port()))
}

// Handler returns the HTTP handler: websocket upgrades register the reload
// client, everything else is served from the output directory.
func (s *Server) Handler() http.Handler {
	files := http.FileServer(http.Dir(s.root))
	mux := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if websocket.IsWebSocketUpgrade(r) {
			s.handleSocket(w, r)
			return
		}
		w.Header().Set("Cache-Control", "no-store")
		files.ServeHTTP(w, r)
	})
	return h2c.NewHandler(mux, &http2.Server{})
}

// Serve starts serving on the reserved listener. Only the first call has an
// effect; it reports whether this call started the server.
func (s *Server) Serve() (bool, error) {
	s.mu.Lock()
	ln := s.listener
	s.mu.Unlock()
	if ln == nil {
		return false, fmt.Errorf("dev server has no listener: %w", oerrors.ErrServer)
	}

	started := false
	s.serveOnce.Do(func() {
		srv := &http.Server{
			Handler:           s.Handler(),
			ReadHeaderTimeout: 10 * time.Second,
		}
		s.mu.Lock()
		s.http = srv
		s.serving = true
		s.mu.Unlock()

		go func() {
			if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
				s.log.Error("dev server stopped", "error", err)
			}
		}()
		started = true
	})
	return started, nil
}

// Listening reports whether Serve has started the server.
func (s *Server) Listening() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.serving
}

// Connected reports whether a reload client is registered.
func (s *Server) Connected() bool {
	return s.conns.Current() != nil
}

// Notify sends the reload frame to the registered client. It reports whether
// a frame was delivered; failures are logged, never returned.
func (s *Server) Notify() bool {
	sent, err := s.conns.Send(websocket.TextMessage, reloadFrame, writeWait)
	if err != nil {
		s.log.Warn("reload client went away", "error", err)
		return false
	}
	if sent {
		s.log.Debug("reload sent")
	}
	return sent
}

// Close stops the server and releases the listener.
func (s *Server) Close(ctx context.Context) error {
	s.mu.Lock()
	srv, ln := s.http, s.listener
	s.http, s.listener, s.serving = nil, nil, false
	s.mu.Unlock()

	if c := s.conns.Current(); c != nil {
		s.conns.Clear(c)
		_ = c.Close()
	}
	if srv != nil {
		return srv.Shutdown(ctx)
	}
	if ln != nil {
		return ln.Close()
	}
	return nil
}

func (s *Server) handleSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Debug("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	if prev := s.conns.Replace(conn); prev != nil {
		s.log.Debug("reload client replaced", "remote", r.RemoteAddr)
	} else {
		s.log.Debug("reload client connected", "remote", r.RemoteAddr)
	}

	// The client never sends anything meaningful; reading keeps control
	// frames flowing and detects disconnects.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}

	if s.conns.Clear(conn) {
		s.log.Debug("reload client disconnected", "remote", r.RemoteAddr)
	}
}

func mustJSON(v any) []byte {
	b, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return b
}
