package kvfile

import (
	"bytes"
	"regexp"

	"github.com/google/uuid"
)

// fingerprintPattern matches the canonical dashed-hex shape a fingerprint
// always takes (spec §4.3, §6). Enumeration (enumerate.go) relies on this
// exact pattern to tell structured-record files apart from anything else
// that might live in the store's folder.
var fingerprintPattern = regexp.MustCompile(`^[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}$`)

// fingerprintNamespace is a fixed, arbitrary namespace UUID for the
// name-based fingerprint derivation. It must never change across versions
// of this module: doing so would silently re-fingerprint every existing
// key and orphan every file already on disk.
var fingerprintNamespace = uuid.MustParse("6fa2c215-0a63-4a22-9c4e-6a6d1f2b9a01")

// Fingerprint computes the stable 128-bit digest of key, rendered in the
// canonical 8-4-4-4-12 lowercase dashed hex form (spec §4.3). It hashes the
// key's canonical codec encoding rather than the key itself, so that two
// keys equal in the data-model sense (e.g. two maps built in different
// field orders) always fingerprint identically, and so that the same key
// fingerprints identically on every process and platform.
func (s *Store) Fingerprint(key any) (string, error) {
	var buf bytes.Buffer
	if err := s.codec.Encode(&buf, key, s.writeHandlers); err != nil {
		return "", err
	}
	return uuid.NewSHA1(fingerprintNamespace, buf.Bytes()).String(), nil
}

// keysMatch reports whether two key values encode to the same canonical
// bytes under the store's codec. It backs the collision check in
// readRecord: each key is passed once through an encode/decode round-trip
// before its bytes are compared, which sidesteps the type skew a codec
// round-trip can introduce (e.g. a Go int key decoding back as a JSON
// float64, even one too large to be held exactly) while still answering
// "are these the same logical key".
func (s *Store) keysMatch(a, b any) bool {
	canon := func(k any) ([]byte, bool) {
		var buf bytes.Buffer
		if err := s.codec.Encode(&buf, k, s.writeHandlers); err != nil {
			return nil, false
		}
		var decoded any
		if err := s.codec.Decode(&buf, &decoded, s.readHandlers); err != nil {
			return nil, false
		}
		buf.Reset()
		if err := s.codec.Encode(&buf, decoded, s.writeHandlers); err != nil {
			return nil, false
		}
		return buf.Bytes(), true
	}
	ab, okA := canon(a)
	bb, okB := canon(b)
	return okA && okB && bytes.Equal(ab, bb)
}
