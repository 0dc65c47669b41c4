package msg

import (
	"io"

	"gopkg.in/vmihailenco/msgpack.v2"
)

// Marshal encodes a message type header followed by the message body.
func Marshal(msgType MessageType, v interface{}) ([]byte, error) {
	return msgpack.Marshal(msgType, v)
}

// DecodeType reads the message type header from r and returns a decoder
// positioned at the message body.
func DecodeType(r io.Reader) (MessageType, *msgpack.Decoder, error) {
	dec := msgpack.NewDecoder(r)
	var msgType MessageType
	if err := dec.Decode(&msgType); err != nil {
		return UndefinedMsg, nil, err
	}
	return msgType, dec, nil
}
