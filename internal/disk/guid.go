package disk

import (
	"encoding/hex"
	"strings"

	"github.com/google/uuid"
)

// GUID holds a GPT GUID in canonical display order.
//
// On disk the first three fields (4, 2 and 2 bytes) are stored little-endian
// while the remaining 8 bytes are stored as-is.
type GUID [16]byte

// GUIDFromDisk converts 16 bytes in on-disk order to a GUID.
func GUIDFromDisk(b []byte) GUID {
	var g GUID
	copy(g[:], b[:16])
	g.swap()
	return g
}

// Disk returns the GUID in on-disk byte order.
func (g GUID) Disk() [16]byte {
	g.swap()
	return g
}

// swap reverses the three mixed-endian fields in place.
// Applying it twice yields the original bytes.
func (g *GUID) swap() {
	g[0], g[1], g[2], g[3] = g[3], g[2], g[1], g[0]
	g[4], g[5] = g[5], g[4]
	g[6], g[7] = g[7], g[6]
}

// IsZero reports whether every byte is zero.
func (g GUID) IsZero() bool {
	return g == GUID{}
}

// String renders the GUID as 32 uppercase hex digits without separators.
func (g GUID) String() string {
	return strings.ToUpper(hex.EncodeToString(g[:]))
}

// Canonical renders the GUID in the hyphenated 8-4-4-4-12 form, uppercase.
func (g GUID) Canonical() string {
	return strings.ToUpper(uuid.UUID(g).String())
}

// ParseGUID parses a hyphenated or plain hex GUID string in display order.
func ParseGUID(s string) (GUID, error) {
	u, err := uuid.Parse(s)
	if err != nil {
		return GUID{}, err
	}
	return GUID(u), nil
}
