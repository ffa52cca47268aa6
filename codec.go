package kvfile

import "io"

// ReadHandlers and WriteHandlers are the pluggable, read-mostly handler
// registries a Codec may consult while decoding/encoding (spec §4.2, §6,
// §9 "Dynamic values through the codec"). The core never inspects their
// contents; it only threads them through to the configured Codec.
type ReadHandlers map[string]any
type WriteHandlers map[string]any

// Codec is the serialization boundary the core consumes but does not
// implement (spec §1: "serializer selection and implementation" is named
// an external collaborator). Encode must produce a self-delimiting byte
// sequence; Decode must decode exactly one such sequence from r. Decode may
// buffer, and so consume, bytes of r beyond that sequence (JSONCodec does);
// the core stores one record per file and never reads past it.
type Codec interface {
	Encode(w io.Writer, value any, handlers WriteHandlers) error
	Decode(r io.Reader, target any, handlers ReadHandlers) error
}

// record is the on-disk shape of a structured entry: the original key
// alongside the value. Storing the key lets enumeration recover real keys
// and lets readers detect fingerprint collisions (spec §3).
type record struct {
	Key   any `json:"key"`
	Value any `json:"value"`
}
