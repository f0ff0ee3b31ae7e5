// Package uuid provides UUID v7 generation.
// UUID v7 is sortable by timestamp (better for database indexes than v4).
package uuid

import (
	crand "crypto/rand"
	"fmt"
	"math/rand"
	"time"
)

// UUID represents a UUID v7 identifier.
type UUID [16]byte

// NewV7 generates a new UUID v7 (draft-ietf-uuidrev-rfc4122bis):
//   - 48 bits: UNIX timestamp in milliseconds
//   - 4 bits: version (0111)
//   - 74 bits: random
func NewV7() UUID {
	now := time.Now().UnixMilli()

	var u UUID

	// Timestamp (48 bits, ms precision) — bytes 0-5
	u[0] = byte(now >> 40)
	u[1] = byte(now >> 32)
	u[2] = byte(now >> 24)
	u[3] = byte(now >> 16)
	u[4] = byte(now >> 8)
	u[5] = byte(now)

	// Random tail — bytes 6-15. crypto/rand first, math/rand if the
	// system source is unavailable (ids are not secrets here).
	if _, err := crand.Read(u[6:]); err != nil {
		for i := 6; i < 16; i++ {
			u[i] = byte(rand.Intn(256))
		}
	}

	// Version 0111 in the high nibble of byte 6, variant 10 in byte 8.
	u[6] = 0x70 | (u[6] & 0x0f)
	u[8] = 0x80 | (u[8] & 0x3f)

	return u
}

// String returns the UUID in standard form: xxxxxxxx-xxxx-xxxx-xxxx-xxxxxxxxxxxx
func (u UUID) String() string {
	return fmt.Sprintf("%08x-%04x-%04x-%04x-%012x",
		u[0:4],
		u[4:6],
		u[6:8],
		u[8:10],
		u[10:16],
	)
}
