package remotesum

import (
	"errors"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/hnakamur/ltsvlog"
	"golang.org/x/net/context"
)

var errFake = errors.New("fake failure")

// fakeCalc is an in-process Calculator recording the calls it receives.
type fakeCalc struct {
	alive bool

	// fail decides whether an Add call fails. nil means never.
	fail func(x, y int64) bool

	// sleep delays every Add call, ignoring the context.
	sleep time.Duration

	adds  int64
	pings int64

	mu    sync.Mutex
	pairs [][2]int64
}

func (f *fakeCalc) Add(ctx context.Context, x, y int64) (int64, error) {
	atomic.AddInt64(&f.adds, 1)
	f.mu.Lock()
	f.pairs = append(f.pairs, [2]int64{x, y})
	f.mu.Unlock()
	if f.sleep > 0 {
		time.Sleep(f.sleep)
	}
	if f.fail != nil && f.fail(x, y) {
		return 0, &RemoteError{Worker: "fake", Err: errFake}
	}
	return x + y, nil
}

func (f *fakeCalc) Ping(timeout time.Duration) bool {
	atomic.AddInt64(&f.pings, 1)
	return f.alive
}

func (f *fakeCalc) addCount() int64 { return atomic.LoadInt64(&f.adds) }

func (f *fakeCalc) pingCount() int64 { return atomic.LoadInt64(&f.pings) }

func (f *fakeCalc) receivedPairs() [][2]int64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([][2]int64(nil), f.pairs...)
}

func alwaysFail(x, y int64) bool { return true }

func newTestLogger() ltsvlog.LogWriter {
	return ltsvlog.NewLTSVLogger(io.Discard, false)
}

func newFakeRecords(calcs ...Calculator) []*WorkerRecord {
	records := make([]*WorkerRecord, len(calcs))
	for i, c := range calcs {
		records[i] = NewWorkerRecord("operator-"+string(rune('1'+i)), "127.0.0.1", 6001+i, c)
	}
	return records
}

func testConfig() Config {
	config := DefaultConfig()
	config.ProbeInterval = 50 * time.Millisecond
	config.ProbeTimeout = 200 * time.Millisecond
	config.HalfTimeout = time.Second
	config.MinCallTimeout = 10 * time.Millisecond
	return config
}
