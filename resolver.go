package remotesum

import (
	"fmt"
	"time"

	"github.com/hnakamur/ltsvlog"
	"github.com/hnakamur/remotesum/msg"
	"golang.org/x/net/context"
)

type resolver struct {
	records        []*WorkerRecord
	halfTimeout    time.Duration
	minCallTimeout time.Duration
	logger         ltsvlog.LogWriter
}

type attemptResult struct {
	values []int64
	err    error
}

// resolve computes a+b element-wise, trying workers in order. Each worker
// starts the half from its first element.
func (r *resolver) resolve(ctx context.Context, taskID string, half int, a, b []int64, order []int) ([]int64, error) {
	lastErr := ErrNoWorkers
	for _, i := range order {
		rec := r.records[i]
		r.logger.Info().String("msg", "sending half").
			String("task", taskID).
			Int("half", half).
			String("worker", rec.Name).
			String("address", rec.Addr()).
			String("a", fmt.Sprint(a)).
			String("b", fmt.Sprint(b)).Log()

		values, err := r.attempt(ctx, rec, a, b)
		if err == nil {
			return values, nil
		}
		lastErr = err
		r.logger.Info().String("msg", "worker failed half").
			String("task", taskID).
			Int("half", half).
			String("worker", rec.Name).
			String("err", err.Error()).Log()
		if ctx.Err() != nil {
			break
		}
	}
	return nil, &HalfUnresolvedError{Half: half, Err: lastErr}
}

// attempt runs sumElements on rec and gives up once halfTimeout has
// passed, even if a call is still outstanding.
func (r *resolver) attempt(ctx context.Context, rec *WorkerRecord, a, b []int64) ([]int64, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	resultC := make(chan attemptResult, 1)
	go func() {
		values, err := r.sumElements(ctx, rec, a, b)
		resultC <- attemptResult{values: values, err: err}
	}()

	timer := time.NewTimer(r.halfTimeout)
	defer timer.Stop()
	select {
	case res := <-resultC:
		if res.err == nil && len(res.values) != len(a) {
			return nil, &RemoteError{Worker: rec.Name, Op: msg.OpAdd, Err: errElementMismatch}
		}
		return res.values, res.err
	case <-timer.C:
		return nil, &RemoteError{Worker: rec.Name, Op: msg.OpAdd, Err: errAttemptTimeout}
	}
}

// sumElements issues one Add per element pair, in order. Each call gets
// what is left of halfTimeout, but never less than minCallTimeout.
func (r *resolver) sumElements(ctx context.Context, rec *WorkerRecord, a, b []int64) ([]int64, error) {
	deadline := time.Now().Add(r.halfTimeout)
	values := make([]int64, 0, len(a))
	for i := range a {
		remaining := time.Until(deadline)
		if remaining < r.minCallTimeout {
			remaining = r.minCallTimeout
		}
		callCtx, cancel := context.WithTimeout(ctx, remaining)
		v, err := rec.Calc.Add(callCtx, a[i], b[i])
		cancel()
		if err != nil {
			return nil, err
		}
		values = append(values, v)
	}
	return values, nil
}
