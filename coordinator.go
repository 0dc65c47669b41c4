package remotesum

import (
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/hnakamur/ltsvlog"
	"github.com/hnakamur/remotesum/msg"
	"golang.org/x/net/context"
)

// Config is the coordinator configuration.
type Config struct {
	// Interval between background probes.
	ProbeInterval time.Duration

	// Timeout of a single ping, both in background probes and in the
	// snapshot taken for each task.
	ProbeTimeout time.Duration

	// Time budget of resolving one half on one worker.
	HalfTimeout time.Duration

	// Lower bound of the timeout of a single element call.
	MinCallTimeout time.Duration
}

// DefaultConfig returns the probe interval, timeouts and per-half budget
// used by cmd/coordinator.
func DefaultConfig() Config {
	return Config{
		ProbeInterval:  3 * time.Second,
		ProbeTimeout:   time.Second,
		HalfTimeout:    6 * time.Second,
		MinCallTimeout: 100 * time.Millisecond,
	}
}

// Coordinator splits SumArrays tasks into halves and resolves them on
// the configured workers.
type Coordinator struct {
	records  []*WorkerRecord
	config   Config
	logger   ltsvlog.LogWriter
	prober   *Prober
	resolver *resolver
}

// NewCoordinator creates a coordinator over records, which must not be
// empty. Call Run to start background probing.
func NewCoordinator(records []*WorkerRecord, logger ltsvlog.LogWriter, config Config) (*Coordinator, error) {
	if len(records) == 0 {
		return nil, ErrNoWorkers
	}
	return &Coordinator{
		records: records,
		config:  config,
		logger:  logger,
		prober:  NewProber(records, config.ProbeInterval, config.ProbeTimeout, logger),
		resolver: &resolver{
			records:        records,
			halfTimeout:    config.HalfTimeout,
			minCallTimeout: config.MinCallTimeout,
			logger:         logger,
		},
	}, nil
}

// Run runs the background prober until ctx is done.
func (c *Coordinator) Run(ctx context.Context) error {
	return c.prober.Run(ctx)
}

// Workers returns the liveness recorded by the background prober.
func (c *Coordinator) Workers() []msg.WorkerState {
	states := make([]msg.WorkerState, len(c.records))
	for i, r := range c.records {
		states[i] = r.State()
	}
	return states
}

// SumArrays returns the element-wise sum of a and b. Failures are reported
// in the reply, never as a partial result.
func (c *Coordinator) SumArrays(ctx context.Context, a, b []int64) *msg.SumArraysReply {
	start := time.Now()
	taskID := uuid.New().String()

	if len(a) != len(b) {
		err := fmt.Errorf("%w: len(a)=%d len(b)=%d", ErrLengthMismatch, len(a), len(b))
		c.logger.Info().String("msg", "rejected task").
			String("task", taskID).
			String("err", err.Error()).Log()
		return &msg.SumArraysReply{
			Result:    []int64{},
			Error:     err.Error(),
			Elapsed:   time.Since(start).Seconds(),
			Operators: []msg.OperatorInfo{},
		}
	}

	n := len(a)
	mid := n / 2
	halves := [2][2][]int64{
		{a[:mid], b[:mid]},
		{a[mid:], b[mid:]},
	}

	operators := c.snapshot()
	c.logger.Info().String("msg", "new task").
		String("task", taskID).
		Int("n", n).
		Int("mid", mid).Log()

	var (
		wg      sync.WaitGroup
		results [2][]int64
		errs    [2]error
	)
	for i := range halves {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			order := preferenceOrder(i, len(c.records))
			results[i], errs[i] = c.resolver.resolve(ctx, taskID, i, halves[i][0], halves[i][1], order)
		}(i)
	}
	wg.Wait()
	elapsed := time.Since(start).Seconds()

	for _, err := range errs {
		if err != nil {
			c.logger.Info().String("msg", "task failed").
				String("task", taskID).
				String("err", err.Error()).
				String("elapsed", strconv.FormatFloat(elapsed, 'f', 4, 64)).Log()
			return &msg.SumArraysReply{
				Result:    []int64{},
				Error:     err.Error(),
				Elapsed:   elapsed,
				Operators: operators,
			}
		}
	}

	result := make([]int64, 0, n)
	result = append(result, results[0]...)
	result = append(result, results[1]...)
	c.logger.Info().String("msg", "task resolved").
		String("task", taskID).
		String("result", fmt.Sprint(result)).
		String("elapsed", strconv.FormatFloat(elapsed, 'f', 4, 64)).Log()
	return &msg.SumArraysReply{
		OK:        true,
		Result:    result,
		Elapsed:   elapsed,
		Operators: operators,
	}
}

// snapshot pings every worker now. The results are not written back to
// the records.
func (c *Coordinator) snapshot() []msg.OperatorInfo {
	operators := make([]msg.OperatorInfo, len(c.records))
	var wg sync.WaitGroup
	for i, r := range c.records {
		wg.Add(1)
		go func(i int, r *WorkerRecord) {
			defer wg.Done()
			operators[i] = r.info(r.Calc.Ping(c.config.ProbeTimeout))
		}(i, r)
	}
	wg.Wait()
	return operators
}

// preferenceOrder returns the order in which workers are tried for a half.
// Half 1 prefers worker 1 when there is more than one worker, otherwise
// halves prefer worker 0. The other workers follow in configuration order.
func preferenceOrder(half, n int) []int {
	preferred := 0
	if half == 1 && n > 1 {
		preferred = 1
	}
	order := make([]int, 0, n)
	order = append(order, preferred)
	for i := 0; i < n; i++ {
		if i != preferred {
			order = append(order, i)
		}
	}
	return order
}
