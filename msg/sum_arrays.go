package msg

import "time"

type SumArraysRequest struct {
	A []int64 `json:"a"`
	B []int64 `json:"b"`
}

// SumArraysReply is the coordinator's answer to a SumArraysRequest.
// Result is empty whenever OK is false.
type SumArraysReply struct {
	OK        bool           `json:"ok"`
	Result    []int64        `json:"result"`
	Error     string         `json:"error,omitempty"`
	Elapsed   float64        `json:"elapsed"`
	Operators []OperatorInfo `json:"operators"`
}

type OperatorInfo struct {
	Name  string `json:"name"`
	Host  string `json:"host"`
	Port  int    `json:"port"`
	Alive bool   `json:"alive"`
}

// WorkerState is the liveness last recorded by the background prober.
type WorkerState struct {
	OperatorInfo
	LastSuccess time.Time `json:"last_success"`
}
