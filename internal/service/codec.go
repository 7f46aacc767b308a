package service

import (
	"encoding/json"

	"connectrpc.com/connect"
)

// jsonCodec serializes plain Go structs as JSON. Connect's built-in JSON
// codec only accepts protobuf messages.
type jsonCodec struct{}

var _ connect.Codec = jsonCodec{}

func (jsonCodec) Name() string { return "json" }

func (jsonCodec) Marshal(msg any) ([]byte, error) {
	return json.Marshal(msg)
}

func (jsonCodec) Unmarshal(data []byte, msg any) error {
	if len(data) == 0 {
		return nil
	}
	return json.Unmarshal(data, msg)
}

// WithJSON is the handler and client option every tripsplit endpoint needs.
func WithJSON() connect.Option {
	return connect.WithCodec(jsonCodec{})
}
