// Package rpcjson lets services expose gRPC methods whose messages are plain
// Go structs encoded as JSON. Servers describe methods with Unary and clients
// call them with Invoke; both sides negotiate the "json" content subtype.
package rpcjson

import (
	"encoding/json"

	"google.golang.org/grpc/encoding"
)

// Name is the gRPC content subtype served by this codec.
const Name = "json"

type codec struct{}

func (codec) Marshal(v any) ([]byte, error) {
	return json.Marshal(v)
}

func (codec) Unmarshal(data []byte, v any) error {
	return json.Unmarshal(data, v)
}

func (codec) Name() string {
	return Name
}

func init() {
	encoding.RegisterCodec(codec{})
}
