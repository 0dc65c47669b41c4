package msg

type MessageType uint32

const (
	UndefinedMsg  MessageType = 0
	OpRequestMsg  MessageType = 1
	OpResponseMsg MessageType = 2
)
