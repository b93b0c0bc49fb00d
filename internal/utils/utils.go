package utils

// ResizeBytes - Returns a new zero initialized slice of length bytes holding as much of a as fits.
// Shorter lengths truncate and longer lengths zero extend at the end.
func ResizeBytes(a []byte, length int) (b []byte) {
	b = make([]byte, length)
	_ = copy(b, a)

	return
}

// Clone - Returns a copy of a that shares no storage with it
func Clone(a []byte) (b []byte) {
	if a == nil {
		return nil
	}
	b = make([]byte, len(a))
	_ = copy(b, a)

	return
}
