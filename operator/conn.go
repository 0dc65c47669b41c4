package operator

import (
	"fmt"
	"strconv"
	"time"

	"github.com/gorilla/websocket"
	"github.com/hnakamur/ltsvlog"
	"github.com/hnakamur/remotesum/msg"
)

// conn is a middleman between one coordinator websocket connection and
// the operator.
type conn struct {
	server *Server

	// The websocket connection.
	ws *websocket.Conn

	// Remote address of the coordinator.
	peer string

	// Buffered channel of outbound messages.
	sendC chan []byte

	// Closed when readPump returns.
	doneC chan struct{}
}

func newConn(server *Server, ws *websocket.Conn, peer string) *conn {
	return &conn{
		server: server,
		ws:     ws,
		peer:   peer,
		sendC:  make(chan []byte, server.config.SendChannelLength),
		doneC:  make(chan struct{}),
	}
}

func (c *conn) run() {
	go c.writePump()
	c.readPump()
}

// readPump reads requests from the websocket connection and serves each
// one on its own goroutine.
func (c *conn) readPump() {
	defer func() {
		close(c.doneC)
		c.ws.Close()
	}()
	config := c.server.config
	c.ws.SetReadLimit(config.MaxMessageSize)
	c.ws.SetReadDeadline(time.Now().Add(config.PingWait))
	c.ws.SetPingHandler(func(appData string) error {
		c.ws.SetReadDeadline(time.Now().Add(config.PingWait))
		err := c.ws.WriteControl(websocket.PongMessage, []byte(appData), time.Now().Add(config.WriteWait))
		if err == websocket.ErrCloseSent {
			return nil
		}
		return err
	})
	for {
		wsMsgType, r, err := c.ws.NextReader()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				c.logErr(err, "read error")
			}
			return
		}
		if wsMsgType != websocket.BinaryMessage {
			c.logErr(fmt.Errorf("unexpected wsMsgType %d", wsMsgType), "read error")
			return
		}
		c.ws.SetReadDeadline(time.Now().Add(config.PingWait))

		msgType, dec, err := msg.DecodeType(r)
		if err != nil {
			c.logErr(err, "decode error")
			return
		}
		switch msgType {
		case msg.OpRequestMsg:
			var req msg.OpRequest
			if err := dec.Decode(&req); err != nil {
				c.logErr(err, "decode error")
				return
			}
			go c.serve(req)
		default:
			c.logErr(fmt.Errorf("unexpected MessageType %d", msgType), "read error")
			return
		}
	}
}

func (c *conn) serve(req msg.OpRequest) {
	config := c.server.config
	logger := c.server.logger
	if config.Delay > 0 {
		select {
		case <-time.After(config.Delay):
		case <-c.doneC:
			return
		}
	}

	res := msg.OpResponse{ID: req.ID}
	v, err := Compute(req.Op, req.A, req.B)
	if err != nil {
		res.Error = err.Error()
	} else {
		res.Result = v
		res.OK = true
	}
	if req.Op == msg.OpAdd {
		logger.Info().String("msg", "add").
			String("operator", config.Name).
			String("a", formatFloat(req.A)).
			String("b", formatFloat(req.B)).
			String("peer", c.peer).
			String("result", formatFloat(res.Result)).Log()
	} else if logger.DebugEnabled() {
		logger.Debug().String("msg", "served request").
			String("operator", config.Name).
			String("op", req.Op.String()).
			Bool("ok", res.OK).Log()
	}

	b, err := msg.Marshal(msg.OpResponseMsg, &res)
	if err != nil {
		c.logErr(err, "encode error")
		return
	}
	select {
	case c.sendC <- b:
	case <-c.doneC:
	}
}

func (c *conn) logErr(err error, what string) {
	c.server.logger.Err(ltsvlog.WrapErr(err, func(err error) error {
		return fmt.Errorf("%s: %v", what, err)
	}).String("operator", c.server.config.Name).
		String("peer", c.peer).Stack(""))
}

// write writes a message with the given message type and payload.
func (c *conn) write(mt int, payload []byte) error {
	c.ws.SetWriteDeadline(time.Now().Add(c.server.config.WriteWait))
	return c.ws.WriteMessage(mt, payload)
}

// writePump pumps responses to the websocket connection.
func (c *conn) writePump() {
	defer c.ws.Close()
	for {
		select {
		case message := <-c.sendC:
			if err := c.write(websocket.BinaryMessage, message); err != nil {
				return
			}
		case <-c.doneC:
			c.write(websocket.CloseMessage, []byte{})
			return
		}
	}
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
