package djv1connect

import (
	"encoding/json"

	"github.com/cockroachdb/errors"
)

// JSONCodec encodes djv1 messages with encoding/json.
// It replaces the protobuf-based "json" codec of connect.
type JSONCodec struct{}

func (JSONCodec) Name() string {
	return "json"
}

func (JSONCodec) Marshal(msg any) ([]byte, error) {
	return json.Marshal(msg)
}

func (JSONCodec) Unmarshal(data []byte, msg any) error {
	if len(data) == 0 {
		// empty request bodies decode to the zero message
		return nil
	}
	if err := json.Unmarshal(data, msg); err != nil {
		return errors.Wrap(err, "failed to decode message")
	}
	return nil
}
