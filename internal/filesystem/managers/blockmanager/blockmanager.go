package blockmanager

import (
	"fmt"
	"io"

	"mvsfs/internal/errs"
	"mvsfs/internal/filesystem/geometry"
)

// BlockManager owns an in-memory copy of the data region. Callers address
// blocks by absolute block number; the manager subtracts the region start.
type BlockManager struct {
	region       []byte
	blocksOffset uint64
	blockCount   uint64
}

// NewBlockManager returns a zeroed data region.
func NewBlockManager(blocksOffset, blockCount uint64) *BlockManager {
	return &BlockManager{make([]byte, blockCount*geometry.BlockSize), blocksOffset, blockCount}
}

// LoadBlockManager takes ownership of region.
func LoadBlockManager(region []byte, blocksOffset, blockCount uint64) (*BlockManager, error) {
	if uint64(len(region)) != blockCount*geometry.BlockSize {
		return nil, fmt.Errorf("%w - data region of %d bytes for %d blocks", errs.ErrShortRecord, len(region), blockCount)
	}
	return &BlockManager{region, blocksOffset, blockCount}, nil
}

// Absolute converts a data-region index to the block number stored in inodes.
func (bm BlockManager) Absolute(index int) uint32 {
	return uint32(bm.blocksOffset + uint64(index))
}

// Block returns the backing slice of an absolute block.
func (bm BlockManager) Block(blockNumber uint32) ([]byte, error) {
	if uint64(blockNumber) < bm.blocksOffset || uint64(blockNumber) >= bm.blocksOffset+bm.blockCount {
		return nil, fmt.Errorf("%w - block %d outside data region %d+%d", errs.ErrIndexOutOfBounds, blockNumber, bm.blocksOffset, bm.blockCount)
	}
	start := (uint64(blockNumber) - bm.blocksOffset) * geometry.BlockSize
	return bm.region[start : start+geometry.BlockSize], nil
}

// ReadContent reads exactly size bytes from src into a buffer laid out as
// len(blocks) blocks: full blocks first, the remainder in the last one, the
// tail zero.
func ReadContent(src io.Reader, size uint64, blockCount int) ([]byte, error) {
	buf := make([]byte, uint64(blockCount)*geometry.BlockSize)
	if size > uint64(len(buf)) {
		return nil, fmt.Errorf("%w - %d bytes do not fit in %d blocks", errs.ErrIllegalArgument, size, blockCount)
	}
	if _, err := io.ReadFull(src, buf[:size]); err != nil {
		return nil, errs.IO("read file content", err)
	}
	return buf, nil
}

// WriteBlocks copies content, as produced by ReadContent, into blocks.
func (bm BlockManager) WriteBlocks(blocks []uint32, content []byte) error {
	if len(content) != len(blocks)*geometry.BlockSize {
		return fmt.Errorf("%w - %d bytes for %d blocks", errs.ErrIllegalArgument, len(content), len(blocks))
	}
	for i, blockNumber := range blocks {
		block, err := bm.Block(blockNumber)
		if err != nil {
			return err
		}
		copy(block, content[i*geometry.BlockSize:(i+1)*geometry.BlockSize])
	}
	return nil
}

// ReadBlocks returns the first size bytes stored in blocks.
func (bm BlockManager) ReadBlocks(blocks []uint32, size uint64) ([]byte, error) {
	if size > uint64(len(blocks))*geometry.BlockSize {
		return nil, fmt.Errorf("%w - %d bytes in %d blocks", errs.ErrIllegalArgument, size, len(blocks))
	}
	data := make([]byte, 0, size)
	for _, blockNumber := range blocks {
		block, err := bm.Block(blockNumber)
		if err != nil {
			return nil, err
		}
		n := min(uint64(geometry.BlockSize), size-uint64(len(data)))
		data = append(data, block[:n]...)
	}
	return data, nil
}

// Bytes returns the whole region, ready to be written at the region start.
func (bm BlockManager) Bytes() []byte {
	return bm.region
}
