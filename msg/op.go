package msg

// Op is a scalar binary operation served by an operator.
type Op uint8

const (
	OpUndefined Op = 0
	OpAdd       Op = 1
	OpSub       Op = 2
	OpMul       Op = 3
	OpDiv       Op = 4
)

func (o Op) String() string {
	switch o {
	case OpAdd:
		return "add"
	case OpSub:
		return "sub"
	case OpMul:
		return "mul"
	case OpDiv:
		return "div"
	default:
		return "undefined"
	}
}
