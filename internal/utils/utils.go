package utils

// CeilDiv returns ceil(n / d) for d > 0.
func CeilDiv(n, d uint64) uint64 {
	return (n + d - 1) / d
}

// PutCString copies at most len(dst)-1 bytes of str into dst and zeroes the
// rest, so the result is always NUL-terminated. It returns the number of name
// bytes written.
func PutCString(dst []byte, str string) int {
	n := len(str)
	if n > len(dst)-1 {
		n = len(dst) - 1
	}
	copy(dst, str[:n])
	for i := n; i < len(dst); i++ {
		dst[i] = 0
	}
	return n
}

// CString returns the bytes of data up to the first NUL.
func CString(data []byte) string {
	for i, b := range data {
		if b == 0 {
			return string(data[:i])
		}
	}
	return string(data)
}
