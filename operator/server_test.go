package operator

import (
	"bytes"
	"io"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/hnakamur/ltsvlog"
	"github.com/hnakamur/remotesum/msg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dialTestServer(t *testing.T, config Config) *websocket.Conn {
	t.Helper()
	ts := httptest.NewServer(NewServer(ltsvlog.NewLTSVLogger(io.Discard, false), config))
	t.Cleanup(ts.Close)
	return dial(t, ts)
}

func dial(t *testing.T, ts *httptest.Server) *websocket.Conn {
	t.Helper()
	u := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	ws, _, err := websocket.DefaultDialer.Dial(u, nil)
	require.NoError(t, err)
	t.Cleanup(func() { ws.Close() })
	return ws
}

// logBuffer is an io.Writer for loggers shared by server goroutines.
type logBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *logBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *logBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func sendRequest(t *testing.T, ws *websocket.Conn, req msg.OpRequest) {
	t.Helper()
	b, err := msg.Marshal(msg.OpRequestMsg, &req)
	require.NoError(t, err)
	require.NoError(t, ws.WriteMessage(websocket.BinaryMessage, b))
}

func readResponse(t *testing.T, ws *websocket.Conn) msg.OpResponse {
	t.Helper()
	ws.SetReadDeadline(time.Now().Add(5 * time.Second))
	wsMsgType, b, err := ws.ReadMessage()
	require.NoError(t, err)
	require.Equal(t, websocket.BinaryMessage, wsMsgType)
	msgType, dec, err := msg.DecodeType(bytes.NewReader(b))
	require.NoError(t, err)
	require.Equal(t, msg.OpResponseMsg, msgType)
	var res msg.OpResponse
	require.NoError(t, dec.Decode(&res))
	return res
}

func TestServerAdd(t *testing.T) {
	ws := dialTestServer(t, DefaultConfig())
	sendRequest(t, ws, msg.OpRequest{ID: 1, Op: msg.OpAdd, A: 2, B: 3})
	res := readResponse(t, ws)
	assert.Equal(t, msg.OpResponse{ID: 1, Result: 5, OK: true}, res)
}

func TestServerDivisionByZero(t *testing.T) {
	ws := dialTestServer(t, DefaultConfig())
	sendRequest(t, ws, msg.OpRequest{ID: 7, Op: msg.OpDiv, A: 2, B: 0})
	res := readResponse(t, ws)
	assert.Equal(t, uint64(7), res.ID)
	assert.False(t, res.OK)
	assert.Equal(t, "division by zero", res.Error)
}

func TestServerServesRequestsConcurrently(t *testing.T) {
	config := DefaultConfig()
	config.Delay = 200 * time.Millisecond
	ws := dialTestServer(t, config)

	start := time.Now()
	for i := uint64(1); i <= 5; i++ {
		sendRequest(t, ws, msg.OpRequest{ID: i, Op: msg.OpMul, A: float64(i), B: 2})
	}
	got := make(map[uint64]float64)
	for i := 0; i < 5; i++ {
		res := readResponse(t, ws)
		require.True(t, res.OK)
		got[res.ID] = res.Result
	}
	assert.True(t, time.Since(start) < time.Second, "elapsed=%s", time.Since(start))
	assert.Equal(t, map[uint64]float64{1: 2, 2: 4, 3: 6, 4: 8, 5: 10}, got)
}

func TestServerRejectsTextMessage(t *testing.T) {
	ws := dialTestServer(t, DefaultConfig())
	require.NoError(t, ws.WriteMessage(websocket.TextMessage, []byte("hello")))
	ws.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, _, err := ws.ReadMessage()
	assert.Error(t, err)
}

func TestServerLogsRejectedTextMessage(t *testing.T) {
	var logs logBuffer
	ts := httptest.NewServer(NewServer(ltsvlog.NewLTSVLogger(&logs, false), DefaultConfig()))
	t.Cleanup(ts.Close)
	ws := dial(t, ts)

	require.NoError(t, ws.WriteMessage(websocket.TextMessage, []byte("hello")))
	assert.Eventually(t, func() bool {
		return strings.Contains(logs.String(), "unexpected wsMsgType 1")
	}, 5*time.Second, 10*time.Millisecond)
}

func TestServerCloseConnections(t *testing.T) {
	srv := NewServer(ltsvlog.NewLTSVLogger(io.Discard, false), DefaultConfig())
	ts := httptest.NewServer(srv)
	t.Cleanup(ts.Close)

	ws := dial(t, ts)
	sendRequest(t, ws, msg.OpRequest{ID: 1, Op: msg.OpAdd, A: 1, B: 1})
	readResponse(t, ws)

	srv.CloseConnections()
	ws.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, _, err := ws.ReadMessage()
	require.Error(t, err)

	// New connections are still served.
	ws2 := dial(t, ts)
	sendRequest(t, ws2, msg.OpRequest{ID: 2, Op: msg.OpAdd, A: 2, B: 2})
	res := readResponse(t, ws2)
	assert.Equal(t, msg.OpResponse{ID: 2, Result: 4, OK: true}, res)
}
