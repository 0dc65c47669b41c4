package remotesum

import (
	"net"
	"strconv"
	"sync"
	"time"

	"github.com/hnakamur/remotesum/msg"
)

// WorkerRecord is a configured operator and its last known liveness.
// The liveness fields are written by the prober only.
type WorkerRecord struct {
	Name string
	Host string
	Port int
	Calc Calculator

	mu          sync.Mutex
	alive       bool
	lastSuccess time.Time
}

// NewWorkerRecord creates a record which is down until its first probe.
func NewWorkerRecord(name, host string, port int, calc Calculator) *WorkerRecord {
	return &WorkerRecord{
		Name: name,
		Host: host,
		Port: port,
		Calc: calc,
	}
}

// Addr returns host:port.
func (r *WorkerRecord) Addr() string {
	return net.JoinHostPort(r.Host, strconv.Itoa(r.Port))
}

func (r *WorkerRecord) setLiveness(alive bool, at time.Time) {
	r.mu.Lock()
	r.alive = alive
	if alive {
		r.lastSuccess = at
	}
	r.mu.Unlock()
}

// State returns the liveness recorded by the last probe.
func (r *WorkerRecord) State() msg.WorkerState {
	r.mu.Lock()
	defer r.mu.Unlock()
	return msg.WorkerState{
		OperatorInfo: r.info(r.alive),
		LastSuccess:  r.lastSuccess,
	}
}

func (r *WorkerRecord) info(alive bool) msg.OperatorInfo {
	return msg.OperatorInfo{
		Name:  r.Name,
		Host:  r.Host,
		Port:  r.Port,
		Alive: alive,
	}
}
