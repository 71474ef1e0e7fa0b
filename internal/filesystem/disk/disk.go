// Package disk abstracts where images are read from and written to, so the
// builder and inserter can run against files or plain memory.
package disk

// Backend is the write side of an image.
type Backend interface {
	WriteAt(p []byte, off int64) error
	// Size returns the current length of the image in bytes.
	Size() (int64, error)
	Sync() error
	Close() error
}

// Image is the read side of an image.
type Image interface {
	// BytesAt returns the bytes in [off, off+n). The slice must not be
	// modified and is only valid until Close.
	BytesAt(off, n uint64) ([]byte, error)
	// Len returns the length of the image in bytes.
	Len() uint64
	Close() error
}
