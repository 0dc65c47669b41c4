package msg

import "gopkg.in/vmihailenco/msgpack.v2"

type OpRequest struct {
	ID uint64
	Op Op
	A  float64
	B  float64
}

var (
	_ msgpack.CustomEncoder = &OpRequest{}
	_ msgpack.CustomDecoder = &OpRequest{}
)

func (r *OpRequest) EncodeMsgpack(enc *msgpack.Encoder) error {
	return enc.Encode(r.ID, uint8(r.Op), r.A, r.B)
}

func (r *OpRequest) DecodeMsgpack(dec *msgpack.Decoder) error {
	var op uint8
	if err := dec.Decode(&r.ID, &op, &r.A, &r.B); err != nil {
		return err
	}
	r.Op = Op(op)
	return nil
}
