// Package id provides sortable ID generation utilities.
package id

import (
	"crypto/rand"
	"encoding/binary"
	"time"
)

// Crockford's Base32 alphabet (excludes I, L, O, U to avoid confusion).
const crockfordBase32 = "0123456789ABCDEFGHJKMNPQRSTVWXYZ"

// NewULID generates a ULID (Universally Unique Lexicographically Sortable Identifier).
// Returns a 26-character string: 10 chars timestamp (48-bit ms) + 16 chars random (80-bit).
// ULIDs are lexicographically sortable by creation time, which makes them useful
// as request and session identifiers that cluster naturally in logs and indexes.
func NewULID() string {
	ms := uint64(time.Now().UnixMilli())

	var entropy [10]byte
	if _, err := rand.Read(entropy[:]); err != nil {
		// Fallback: time-based entropy (degraded but functional)
		binary.BigEndian.PutUint64(entropy[:8], uint64(time.Now().UnixNano()))
	}

	var out [26]byte

	// Encode timestamp: 48 bits become 10 base32 chars, most significant first.
	for i := 9; i >= 0; i-- {
		out[i] = crockfordBase32[ms&0x1F]
		ms >>= 5
	}

	// Encode entropy: 80 bits become 16 base32 chars of 5 bits each.
	var acc uint32
	bits := 0
	pos := 10
	for _, b := range entropy {
		acc = acc<<8 | uint32(b)
		bits += 8
		for bits >= 5 {
			bits -= 5
			out[pos] = crockfordBase32[(acc>>uint(bits))&0x1F]
			pos++
		}
	}

	return string(out[:])
}
