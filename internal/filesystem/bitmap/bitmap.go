package bitmap

import (
	"fmt"

	"mvsfs/internal/errs"
	"mvsfs/internal/filesystem/geometry"
)

// Bitmap is one on-disk bitmap block. Only the first size bits track
// resources; bit i lives in byte i/8 at position i%8. Bits are never cleared.
type Bitmap struct {
	data []uint8
	size int
}

func NewBitmap(size int) *Bitmap {
	data := make([]uint8, geometry.BlockSize)
	return &Bitmap{data, size}
}

// LoadBitmap wraps a copy of an on-disk bitmap block.
func LoadBitmap(block []byte, size int) (*Bitmap, error) {
	if len(block) != geometry.BlockSize {
		return nil, fmt.Errorf("%w - bitmap block is %d bytes", errs.ErrShortRecord, len(block))
	}
	if size < 0 || size > len(block)*8 {
		return nil, fmt.Errorf("%w - bitmap capacity %d", errs.ErrIndexOutOfBounds, size)
	}
	data := make([]uint8, len(block))
	copy(data, block)
	return &Bitmap{data, size}, nil
}

func (b *Bitmap) Size() int {
	return b.size
}

func (b *Bitmap) Mark(index int) error {
	if index < 0 || index >= b.size {
		return fmt.Errorf("%w - bit %d of %d", errs.ErrIndexOutOfBounds, index, b.size)
	}
	b.data[index/8] |= 1 << uint(index%8)
	return nil
}

func (b *Bitmap) IsSet(index int) (bool, error) {
	if index < 0 || index >= b.size {
		return false, fmt.Errorf("%w - bit %d of %d", errs.ErrIndexOutOfBounds, index, b.size)
	}
	return b.data[index/8]&(1<<uint(index%8)) != 0, nil
}

// FindFree returns the lowest clear index, or exhausted if every bit in
// range is set.
func (b *Bitmap) FindFree(exhausted error) (int, error) {
	free, err := b.FindFreeN(1, exhausted)
	if err != nil {
		return 0, err
	}
	return free[0], nil
}

// FindFreeN returns the n lowest clear indices in ascending order without
// marking them. This is what n rounds of FindFree+Mark would return.
func (b *Bitmap) FindFreeN(n int, exhausted error) ([]int, error) {
	free := make([]int, 0, n)
	for i := 0; i < b.size && len(free) < n; i++ {
		if b.data[i/8]&(1<<uint(i%8)) == 0 {
			free = append(free, i)
		}
	}
	if len(free) < n {
		return nil, fmt.Errorf("%w - need %d, have %d", exhausted, n, len(free))
	}
	return free, nil
}

// Count returns the number of set bits in range.
func (b *Bitmap) Count() int {
	count := 0
	for i := 0; i < b.size; i++ {
		if b.data[i/8]&(1<<uint(i%8)) != 0 {
			count++
		}
	}
	return count
}

func (b *Bitmap) ToByteArray() []byte {
	return b.data
}
