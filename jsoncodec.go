package kvfile

import (
	"io"

	json "github.com/goccy/go-json"
)

// JSONCodec is the default Codec. It is backed by goccy/go-json, the
// teacher's own serializer, for encoding/json-compatible but considerably
// faster marshaling — including encoding/json's deterministic (sorted)
// object-key ordering, which the fingerprint computation in fingerprint.go
// relies on for cross-process determinism over map-shaped keys.
//
// JSON has no extensible reader/writer-handler concept the way e.g. Transit
// or Fressian do, so JSONCodec accepts the handler registries for interface
// conformance and otherwise ignores them.
type JSONCodec struct{}

func (JSONCodec) Encode(w io.Writer, value any, _ WriteHandlers) error {
	return json.NewEncoder(w).Encode(value)
}

func (JSONCodec) Decode(r io.Reader, target any, _ ReadHandlers) error {
	return json.NewDecoder(r).Decode(target)
}
