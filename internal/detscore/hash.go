// Package detscore implements the deterministic-randomness primitive used
// throughout the persona engines: hash_to_unit_interval(seed) via the first
// 8 bytes of a BLAKE2b digest, interpreted as a big-endian uint64 divided
// by 2**64. No time or locale sources are ever consulted.
package detscore

import (
	"encoding/binary"
	"math"

	"golang.org/x/crypto/blake2b"
)

// unit64Max is 2**64 as a float64, used to map the digest into [0,1).
var unit64Max = math.Ldexp(1, 64)

// HashToUnit hashes a colon-joined stable seed string with BLAKE2b (8-byte
// digest) and returns a value in [0,1).
func HashToUnit(seed string) float64 {
	// size=8, key=nil is always a valid blake2b configuration.
	h, _ := blake2b.New(8, nil)
	h.Write([]byte(seed))
	digest := h.Sum(nil)
	v := binary.BigEndian.Uint64(digest)
	return float64(v) / unit64Max
}

// HashSeed joins parts with ':' to form a stable seed string, e.g.
// "<message_id>:<persona_id>".
func HashSeed(parts ...string) string {
	out := parts[0]
	for _, p := range parts[1:] {
		out += ":" + p
	}
	return out
}
