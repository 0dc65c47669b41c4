package remotesum

import (
	"fmt"
	"net"
	"strconv"
	"strings"

	"github.com/hnakamur/ltsvlog"
)

// ParseEndpoint splits a "host:port" operator endpoint.
func ParseEndpoint(endpoint string) (host string, port int, err error) {
	host, portStr, err := net.SplitHostPort(strings.TrimSpace(endpoint))
	if err != nil {
		return "", 0, err
	}
	port, err = strconv.Atoi(portStr)
	if err != nil || port <= 0 || port > 65535 {
		return "", 0, fmt.Errorf("invalid port in endpoint %q", endpoint)
	}
	return host, port, nil
}

// NewWorkerRecords creates a record with a Stub for each endpoint. Workers
// are named operator-1, operator-2 and so on in endpoint order.
func NewWorkerRecords(endpoints []string, logger ltsvlog.LogWriter, config StubConfig) ([]*WorkerRecord, error) {
	records := make([]*WorkerRecord, 0, len(endpoints))
	for i, endpoint := range endpoints {
		host, port, err := ParseEndpoint(endpoint)
		if err != nil {
			return nil, err
		}
		name := "operator-" + strconv.Itoa(i+1)
		stub := NewStub(name, host, port, logger, config)
		records = append(records, NewWorkerRecord(name, host, port, stub))
	}
	return records, nil
}
