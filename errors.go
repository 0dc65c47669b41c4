package remotesum

import (
	"errors"
	"fmt"

	"github.com/hnakamur/remotesum/msg"
)

var (
	// ErrLengthMismatch is returned for a task whose arrays differ in length.
	ErrLengthMismatch = errors.New("length mismatch")

	// ErrOperationFailed is wrapped when an operator explicitly reports a failure.
	ErrOperationFailed = errors.New("operation failed")

	// ErrOutOfRange is wrapped when an integer cannot be carried exactly
	// by the wire.
	ErrOutOfRange = errors.New("integer out of range")

	ErrNoWorkers         = errors.New("no workers configured")
	errConnectionClosed  = errors.New("connection closed")
	errAttemptTimeout    = errors.New("half timeout exceeded")
	errElementMismatch   = errors.New("result length does not match chunk length")
	errUnexpectedMsgType = errors.New("unexpected message type")
)

// RemoteError is a failure of a single call to an operator.
type RemoteError struct {
	Worker string
	Op     msg.Op
	Err    error
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Worker, e.Op, e.Err)
}

func (e *RemoteError) Unwrap() error { return e.Err }

// HalfUnresolvedError is returned when every operator in the preference
// order of a half failed. Err is the last error observed.
type HalfUnresolvedError struct {
	Half int
	Err  error
}

func (e *HalfUnresolvedError) Error() string {
	return fmt.Sprintf("unable to resolve half %d: %v", e.Half, e.Err)
}

func (e *HalfUnresolvedError) Unwrap() error { return e.Err }
