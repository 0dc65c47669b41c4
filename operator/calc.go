package operator

import (
	"errors"
	"fmt"

	"github.com/hnakamur/remotesum/msg"
)

var ErrDivisionByZero = errors.New("division by zero")

// Compute applies op to a and b.
func Compute(op msg.Op, a, b float64) (float64, error) {
	switch op {
	case msg.OpAdd:
		return a + b, nil
	case msg.OpSub:
		return a - b, nil
	case msg.OpMul:
		return a * b, nil
	case msg.OpDiv:
		if b == 0 {
			return 0, ErrDivisionByZero
		}
		return a / b, nil
	default:
		return 0, fmt.Errorf("unsupported op %d", uint8(op))
	}
}
