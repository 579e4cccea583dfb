package mem

const (
	// DeadByte marks memory that has been freed or reset.
	DeadByte byte = 0xDD
	// CleanByte marks memory that has been handed out but not yet written.
	CleanByte byte = 0xCD
)

// Fill overwrites b with the pattern byte v.
func Fill(b []byte, v byte) {
	if len(b) == 0 {
		return
	}
	b[0] = v
	// Doubling copy keeps this close to memset speed without unsafe.
	for filled := 1; filled < len(b); filled *= 2 {
		copy(b[filled:], b[:filled])
	}
}

// Filled reports whether every byte of b equals v.
func Filled(b []byte, v byte) bool {
	for _, c := range b {
		if c != v {
			return false
		}
	}
	return true
}
