package remotesum

import (
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/hnakamur/ltsvlog"
	"github.com/hnakamur/remotesum/msg"
	"golang.org/x/net/context"
)

// conn is a middleman between a stub and the websocket connection to its
// operator. Requests are matched to responses by ID.
type conn struct {
	worker string
	ws     *websocket.Conn
	config StubConfig
	logger ltsvlog.LogWriter

	// Buffered channel of outbound messages.
	sendC chan []byte

	// Closed by shutdown.
	doneC     chan struct{}
	closeOnce sync.Once

	mu      sync.Mutex
	pending map[uint64]chan *msg.OpResponse
	err     error
}

func newConn(worker string, ws *websocket.Conn, logger ltsvlog.LogWriter, config StubConfig) *conn {
	return &conn{
		worker:  worker,
		ws:      ws,
		config:  config,
		logger:  logger,
		sendC:   make(chan []byte, config.SendChannelLength),
		doneC:   make(chan struct{}),
		pending: make(map[uint64]chan *msg.OpResponse),
	}
}

func (c *conn) run() {
	go c.writePump()
	go c.readPump()
}

func (c *conn) closed() bool {
	select {
	case <-c.doneC:
		return true
	default:
		return false
	}
}

// shutdown closes the connection and wakes every waiting request.
func (c *conn) shutdown(err error) {
	c.closeOnce.Do(func() {
		c.mu.Lock()
		c.err = err
		c.mu.Unlock()
		close(c.doneC)
		c.ws.Close()
	})
}

func (c *conn) closeErr() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err == nil {
		return errConnectionClosed
	}
	return c.err
}

func (c *conn) roundTrip(ctx context.Context, req *msg.OpRequest) (*msg.OpResponse, error) {
	b, err := msg.Marshal(msg.OpRequestMsg, req)
	if err != nil {
		return nil, err
	}

	resC := make(chan *msg.OpResponse, 1)
	c.mu.Lock()
	c.pending[req.ID] = resC
	c.mu.Unlock()
	defer func() {
		c.mu.Lock()
		delete(c.pending, req.ID)
		c.mu.Unlock()
	}()

	select {
	case c.sendC <- b:
	case <-c.doneC:
		return nil, c.closeErr()
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	select {
	case res := <-resC:
		return res, nil
	case <-c.doneC:
		return nil, c.closeErr()
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// readPump routes responses from the websocket connection to the waiting
// requests.
func (c *conn) readPump() {
	c.ws.SetReadLimit(c.config.MaxMessageSize)
	c.ws.SetReadDeadline(time.Now().Add(c.config.PongWait))
	c.ws.SetPongHandler(func(string) error { c.ws.SetReadDeadline(time.Now().Add(c.config.PongWait)); return nil })
	for {
		wsMsgType, r, err := c.ws.NextReader()
		if err != nil {
			switch {
			case c.closed():
				// Closed by the stub.
			case websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway):
				c.logErr(err, "read error")
			default:
				c.logger.Info().String("msg", "operator closed connection").
					String("worker", c.worker).Log()
			}
			c.shutdown(err)
			return
		}
		if wsMsgType != websocket.BinaryMessage {
			c.logErr(fmt.Errorf("%w: wsMsgType=%d", errUnexpectedMsgType, wsMsgType), "read error")
			c.shutdown(errUnexpectedMsgType)
			return
		}
		c.ws.SetReadDeadline(time.Now().Add(c.config.PongWait))

		msgType, dec, err := msg.DecodeType(r)
		if err != nil {
			c.logErr(err, "decode error")
			c.shutdown(err)
			return
		}
		if msgType != msg.OpResponseMsg {
			c.logErr(fmt.Errorf("%w: messageType=%d", errUnexpectedMsgType, msgType), "read error")
			c.shutdown(errUnexpectedMsgType)
			return
		}
		var res msg.OpResponse
		if err := dec.Decode(&res); err != nil {
			c.logErr(err, "decode error")
			c.shutdown(err)
			return
		}

		c.mu.Lock()
		resC, ok := c.pending[res.ID]
		c.mu.Unlock()
		if !ok {
			// The caller gave up waiting.
			if c.logger.DebugEnabled() {
				c.logger.Debug().String("msg", "dropped response for unknown request").
					String("worker", c.worker).
					Int("requestID", int(res.ID)).Log()
			}
			continue
		}
		resC <- &res
	}
}

// write writes a message with the given message type and payload.
func (c *conn) write(mt int, payload []byte) error {
	c.ws.SetWriteDeadline(time.Now().Add(c.config.WriteWait))
	return c.ws.WriteMessage(mt, payload)
}

// writePump pumps requests to the websocket connection and keeps it alive
// with pings.
func (c *conn) writePump() {
	ticker := time.NewTicker(c.config.PingPeriod)
	defer ticker.Stop()
	for {
		select {
		case message := <-c.sendC:
			if err := c.write(websocket.BinaryMessage, message); err != nil {
				c.logErr(err, "write error")
				c.shutdown(err)
				return
			}
		case <-ticker.C:
			if err := c.write(websocket.PingMessage, []byte{}); err != nil {
				c.shutdown(err)
				return
			}
		case <-c.doneC:
			return
		}
	}
}

func (c *conn) logErr(err error, what string) {
	c.logger.Err(ltsvlog.WrapErr(err, func(err error) error {
		return fmt.Errorf("%s: %v", what, err)
	}).String("worker", c.worker).Stack(""))
}
