package remotesum

import (
	"fmt"
	"sync"
	"time"

	"github.com/hnakamur/ltsvlog"
	"golang.org/x/net/context"
)

// Prober pings every worker periodically and records its liveness.
type Prober struct {
	records  []*WorkerRecord
	interval time.Duration
	timeout  time.Duration
	logger   ltsvlog.LogWriter
}

// NewProber creates a prober which pings with timeout every interval.
func NewProber(records []*WorkerRecord, interval, timeout time.Duration, logger ltsvlog.LogWriter) *Prober {
	return &Prober{
		records:  records,
		interval: interval,
		timeout:  timeout,
		logger:   logger,
	}
}

// Run probes all workers immediately and then every interval until ctx is
// done.
func (p *Prober) Run(ctx context.Context) error {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()
	for {
		p.ProbeAll()
		select {
		case <-ticker.C:
		case <-ctx.Done():
			p.logger.Info().String("msg", "prober stopped").Log()
			return nil
		}
	}
}

// ProbeAll pings every worker once, concurrently, and waits for all pings.
func (p *Prober) ProbeAll() {
	var wg sync.WaitGroup
	for _, r := range p.records {
		wg.Add(1)
		go func(r *WorkerRecord) {
			defer wg.Done()
			p.probe(r)
		}(r)
	}
	wg.Wait()
}

func (p *Prober) probe(r *WorkerRecord) {
	defer func() {
		if e := recover(); e != nil {
			r.setLiveness(false, time.Time{})
			p.logger.Info().String("msg", "probe").
				String("worker", r.Name).
				String("status", "DOWN").
				String("err", fmt.Sprint(e)).Log()
		}
	}()

	ok := r.Calc.Ping(p.timeout)
	r.setLiveness(ok, time.Now())
	status := "OK"
	if !ok {
		status = "NO-RESPONSE"
	}
	p.logger.Info().String("msg", "probe").
		String("worker", r.Name).
		String("status", status).Log()
}
