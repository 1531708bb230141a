package disk

import "math"

// SectorSize is the logical sector size assumed for every image.
const SectorSize = 512

// lbaOffset converts a logical block address to a byte offset.
// The boolean is false when the offset does not fit in an int64.
func lbaOffset(lba uint64) (int64, bool) {
	if lba > math.MaxInt64/SectorSize {
		return 0, false
	}
	return int64(lba) * SectorSize, true
}
