package remotesum

import (
	"fmt"
	"math"
	"net"
	"net/url"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"github.com/hnakamur/ltsvlog"
	"github.com/hnakamur/remotesum/msg"
	"golang.org/x/net/context"
)

// Calculator is the part of an operator the coordinator depends on.
type Calculator interface {
	// Add returns x+y computed remotely. The call is bounded by the
	// deadline of ctx.
	Add(ctx context.Context, x, y int64) (int64, error)

	// Ping reports whether the operator answered a cheap call within timeout.
	Ping(timeout time.Duration) bool
}

// StubConfig is the configuration of the connection to an operator.
type StubConfig struct {
	// Length of the buffered channel of outbound messages.
	SendChannelLength int

	// Time allowed to write a message to the peer.
	WriteWait time.Duration

	// Time allowed to read the next pong message from the peer.
	PongWait time.Duration

	// Send pings to peer with this period. Must be less than PongWait.
	PingPeriod time.Duration

	// Maximum message size allowed from peer.
	MaxMessageSize int64

	// Path of the websocket endpoint of operators.
	Path string
}

// DefaultStubConfig returns the connection settings used by cmd/coordinator.
func DefaultStubConfig() StubConfig {
	pongWait := 60 * time.Second
	return StubConfig{
		SendChannelLength: 256,
		WriteWait:         10 * time.Second,
		PongWait:          pongWait,
		PingPeriod:        (pongWait * 9) / 10,
		MaxMessageSize:    512,
		Path:              "/ws",
	}
}

// Stub is a client side handle of a remote operator. The websocket
// connection is dialed on first use, reused by all calls and dialed again
// after it breaks. Stub is safe for concurrent use.
type Stub struct {
	name   string
	url    url.URL
	config StubConfig
	logger ltsvlog.LogWriter
	dialer websocket.Dialer

	requestID uint64

	mu   sync.Mutex
	conn *conn

	// Closed when the dial in progress finishes. nil when not dialing.
	dialing chan struct{}
}

var _ Calculator = (*Stub)(nil)

// NewStub returns a stub for the operator at host:port. It does not dial.
func NewStub(name, host string, port int, logger ltsvlog.LogWriter, config StubConfig) *Stub {
	return &Stub{
		name: name,
		url: url.URL{
			Scheme: "ws",
			Host:   net.JoinHostPort(host, strconv.Itoa(port)),
			Path:   config.Path,
		},
		config: config,
		logger: logger,
		dialer: websocket.Dialer{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
}

// MaxExactInt is the largest magnitude of an integer that survives the
// float64 operands and results of the wire unchanged.
const MaxExactInt = 1 << 53

// Add adds x and y on the operator. Operands and results outside
// ±MaxExactInt are rejected with ErrOutOfRange.
func (s *Stub) Add(ctx context.Context, x, y int64) (int64, error) {
	if !exactInt(x) || !exactInt(y) {
		return 0, &RemoteError{
			Worker: s.name,
			Op:     msg.OpAdd,
			Err:    fmt.Errorf("%w: operands %d, %d", ErrOutOfRange, x, y),
		}
	}
	v, err := s.Call(ctx, msg.OpAdd, float64(x), float64(y))
	if err != nil {
		return 0, err
	}
	if v != math.Trunc(v) || v > MaxExactInt || v < -MaxExactInt {
		return 0, &RemoteError{
			Worker: s.name,
			Op:     msg.OpAdd,
			Err:    fmt.Errorf("%w: result %v", ErrOutOfRange, v),
		}
	}
	return int64(v), nil
}

func exactInt(v int64) bool {
	return v <= MaxExactInt && v >= -MaxExactInt
}

// Ping calls Add(0, 0) and reports whether it succeeded within timeout.
func (s *Stub) Ping(timeout time.Duration) bool {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	_, err := s.Call(ctx, msg.OpAdd, 0, 0)
	return err == nil
}

// Call performs op on the operator. Errors are always *RemoteError.
func (s *Stub) Call(ctx context.Context, op msg.Op, a, b float64) (float64, error) {
	c, err := s.getConn(ctx)
	if err != nil {
		return 0, &RemoteError{Worker: s.name, Op: op, Err: err}
	}
	req := msg.OpRequest{
		ID: atomic.AddUint64(&s.requestID, 1),
		Op: op,
		A:  a,
		B:  b,
	}
	res, err := c.roundTrip(ctx, &req)
	if err != nil {
		return 0, &RemoteError{Worker: s.name, Op: op, Err: err}
	}
	if !res.OK {
		return 0, &RemoteError{
			Worker: s.name,
			Op:     op,
			Err:    fmt.Errorf("%w: %s", ErrOperationFailed, res.Error),
		}
	}
	return res.Result, nil
}

// Close closes the current connection if any. A later call dials again.
func (s *Stub) Close() {
	s.mu.Lock()
	c := s.conn
	s.conn = nil
	s.mu.Unlock()
	if c != nil {
		c.shutdown(errConnectionClosed)
	}
}

// getConn returns the live connection, dialing one if needed. Only one
// caller dials at a time; the others wait for it or for their own ctx.
func (s *Stub) getConn(ctx context.Context) (*conn, error) {
	for {
		s.mu.Lock()
		if s.conn != nil && !s.conn.closed() {
			c := s.conn
			s.mu.Unlock()
			return c, nil
		}
		if dialing := s.dialing; dialing != nil {
			s.mu.Unlock()
			select {
			case <-dialing:
				continue
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}
		dialing := make(chan struct{})
		s.dialing = dialing
		s.mu.Unlock()

		c, err := s.dial(ctx)
		s.mu.Lock()
		s.dialing = nil
		if err == nil {
			s.conn = c
		}
		s.mu.Unlock()
		close(dialing)
		return c, err
	}
}

func (s *Stub) dial(ctx context.Context) (*conn, error) {
	if s.logger.DebugEnabled() {
		s.logger.Debug().String("msg", "connecting to operator").
			String("worker", s.name).
			String("address", s.url.String()).Log()
	}
	ws, _, err := s.dialer.DialContext(ctx, s.url.String(), nil)
	if err != nil {
		return nil, err
	}
	s.logger.Info().String("msg", "connected to operator").
		String("worker", s.name).
		String("address", s.url.String()).Log()
	c := newConn(s.name, ws, s.logger, s.config)
	c.run()
	return c, nil
}
