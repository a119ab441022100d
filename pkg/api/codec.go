package api

import (
	"encoding/json"
	"fmt"
)

// CodecName is the content-subtype the points service negotiates.
const CodecName = "json"

// JSONCodec carries the hand-assembled message structs of this package over
// gRPC. The default proto codec requires proto.Message implementations, which
// these plain structs are not, so both server and client must force this
// codec (grpc.ForceServerCodec on the server, grpc.ForceCodec on calls).
type JSONCodec struct{}

// Marshal serializes a message to JSON.
func (JSONCodec) Marshal(v any) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("json codec: marshal %T: %w", v, err)
	}
	return data, nil
}

// Unmarshal deserializes a message from JSON.
func (JSONCodec) Unmarshal(data []byte, v any) error {
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("json codec: unmarshal %T: %w", v, err)
	}
	return nil
}

// Name returns the codec name used as the gRPC content-subtype.
func (JSONCodec) Name() string {
	return CodecName
}
