package operator

import (
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/hnakamur/ltsvlog"
)

// Config is the operator server configuration.
type Config struct {
	// Name is shown in log lines.
	Name string

	// Delay is an artificial delay applied before every response.
	Delay time.Duration

	// Length of the buffered channel of outbound messages per connection.
	SendChannelLength int

	// Time allowed to write a message to the peer.
	WriteWait time.Duration

	// Time allowed to read the next ping from the peer.
	PingWait time.Duration

	// Maximum message size allowed from peer.
	MaxMessageSize int64
}

// DefaultConfig returns the configuration used by cmd/operator.
func DefaultConfig() Config {
	return Config{
		Name:              "operator-1",
		SendChannelLength: 256,
		WriteWait:         10 * time.Second,
		PingWait:          60 * time.Second,
		MaxMessageSize:    512,
	}
}

// Server serves scalar arithmetic to coordinators over websocket connections.
type Server struct {
	config   Config
	logger   ltsvlog.LogWriter
	upgrader websocket.Upgrader

	mu    sync.Mutex
	conns map[*conn]struct{}
}

// NewServer creates an operator server. It is an http.Handler to be
// mounted at the websocket endpoint.
func NewServer(logger ltsvlog.LogWriter, config Config) *Server {
	return &Server{
		config: config,
		logger: logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		conns: make(map[*conn]struct{}),
	}
}

// ServeHTTP upgrades the request to a websocket connection and serves
// operation requests on it until the peer goes away.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ws, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Err(ltsvlog.WrapErr(err, func(err error) error {
			return fmt.Errorf("failed to upgrade to websocket: %v", err)
		}).String("operator", s.config.Name).Stack(""))
		return
	}
	c := newConn(s, ws, r.RemoteAddr)
	s.mu.Lock()
	s.conns[c] = struct{}{}
	s.mu.Unlock()
	s.logger.Info().String("msg", "coordinator connected").
		String("operator", s.config.Name).
		String("peer", c.peer).Log()
	c.run()
	s.mu.Lock()
	delete(s.conns, c)
	s.mu.Unlock()
	s.logger.Info().String("msg", "coordinator disconnected").
		String("operator", s.config.Name).
		String("peer", c.peer).Log()
}

// CloseConnections closes every active coordinator connection. The server
// keeps accepting new ones. http.Server.Shutdown does not close hijacked
// connections, so call this after it when stopping.
func (s *Server) CloseConnections() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for c := range s.conns {
		c.ws.Close()
	}
}
