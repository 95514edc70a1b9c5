// Package apiconnect wires the api messages to Connect handlers and clients.
// Both sides exchange plain JSON under the "json" codec name, so the
// services accept application/json and application/connect+json requests.
package apiconnect

import (
	"encoding/json"

	"connectrpc.com/connect"
)

// CodecName is the Connect codec name the services speak.
const CodecName = "json"

type jsonCodec struct{}

func (jsonCodec) Name() string { return CodecName }

func (jsonCodec) Marshal(msg any) ([]byte, error) {
	return json.Marshal(msg)
}

func (jsonCodec) Unmarshal(data []byte, msg any) error {
	if len(data) == 0 {
		return nil
	}
	return json.Unmarshal(data, msg)
}

// Codec returns the JSON codec option used by every handler and client in
// this package.
func Codec() connect.Option {
	return connect.WithCodec(jsonCodec{})
}
