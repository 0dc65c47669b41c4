package msg

import "gopkg.in/vmihailenco/msgpack.v2"

// OpResponse carries the result of an OpRequest with the same ID.
// Error is set only when OK is false.
type OpResponse struct {
	ID     uint64
	Result float64
	OK     bool
	Error  string
}

var (
	_ msgpack.CustomEncoder = &OpResponse{}
	_ msgpack.CustomDecoder = &OpResponse{}
)

func (r *OpResponse) EncodeMsgpack(enc *msgpack.Encoder) error {
	return enc.Encode(r.ID, r.Result, r.OK, r.Error)
}

func (r *OpResponse) DecodeMsgpack(dec *msgpack.Decoder) error {
	return dec.Decode(&r.ID, &r.Result, &r.OK, &r.Error)
}
