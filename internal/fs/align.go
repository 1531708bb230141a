package fs

// alignedSpan widens a read of n bytes at off to whole sectors. It returns
// the aligned start, the bytes to skip before the requested data and the
// aligned length.
func alignedSpan(off int64, n int, sectorSize int64) (start int64, skip, size int) {
	start = off / sectorSize * sectorSize
	skip = int(off - start)
	size = int((int64(n+skip) + sectorSize - 1) / sectorSize * sectorSize)
	return start, skip, size
}
