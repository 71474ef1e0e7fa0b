package disk

import (
	"fmt"

	"mvsfs/internal/errs"
)

// Memory implements both Backend and Image over a byte slice. Writes past
// the end grow it, as they would a file.
type Memory struct {
	data []byte
}

var _ Backend = (*Memory)(nil)
var _ Image = (*Memory)(nil)

// NewMemory wraps data without copying it.
func NewMemory(data []byte) *Memory {
	return &Memory{data: data}
}

func (m *Memory) WriteAt(p []byte, off int64) error {
	if off < 0 {
		return errs.IO("disk write", fmt.Errorf("negative offset %d", off))
	}
	if end := off + int64(len(p)); end > int64(len(m.data)) {
		m.data = append(m.data, make([]byte, end-int64(len(m.data)))...)
	}
	copy(m.data[off:], p)
	return nil
}

func (m *Memory) Size() (int64, error) {
	return int64(len(m.data)), nil
}

func (m *Memory) Len() uint64 {
	return uint64(len(m.data))
}

func (m *Memory) BytesAt(off, n uint64) ([]byte, error) {
	return bytesAt(m.data, off, n)
}

// Bytes returns the current contents.
func (m *Memory) Bytes() []byte {
	return m.data
}

func (m *Memory) Sync() error {
	return nil
}

func (m *Memory) Close() error {
	return nil
}
