// Package codec provides an optional serialization convenience layer for
// SRFC handler payloads.
//
// The wire frame's payload is always an opaque byte slice; package wire
// and message never interpret it. Codec exists purely for
// callers who want to marshal a typed argument/reply struct into that
// byte slice instead of handling raw bytes themselves.
package codec

// Codec serializes and deserializes arbitrary values to and from the
// byte slice carried as a message.Request or message.Response payload.
type Codec interface {
	Encode(v any) ([]byte, error)
	Decode(data []byte, v any) error
	Name() string
}

// JSON is the default Codec, backed by encoding/json: human-readable,
// easy to debug across language boundaries.
var JSON Codec = jsonCodec{}

// Binary is a compact Codec backed by encoding/gob, for payloads where
// wire size or encode/decode latency matters more than readability.
// Both ends must agree on the concrete Go type being encoded, as gob
// requires.
var Binary Codec = binaryCodec{}
