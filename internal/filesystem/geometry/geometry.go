// Package geometry holds the fixed constants of the image format and maps a
// requested image size and inode budget to the block offsets of every region.
package geometry

import (
	"fmt"

	"mvsfs/internal/errs"
	"mvsfs/internal/utils"
)

const (
	BlockSize    = 4096
	InodeSize    = 128
	DirEntrySize = 64
	DirectBlocks = 12

	// RootInode is the inode number of the root directory.
	RootInode = 1

	// DirEntriesPerBlock bounds the root directory, which owns a single block.
	DirEntriesPerBlock = BlockSize / DirEntrySize

	// MaxFileSize is the largest file addressable through direct blocks.
	MaxFileSize = DirectBlocks * BlockSize

	MinSizeKiB    = 180
	MaxSizeKiB    = 4096
	SizeStepKiB   = 4
	MinInodeCount = 128
	MaxInodeCount = 512

	InodeBitmapStart  = 1
	InodeBitmapBlocks = 1
	DataBitmapStart   = 2
	DataBitmapBlocks  = 1
	InodeTableStart   = 3
)

// Geometry describes where each region of an image lives, in blocks.
type Geometry struct {
	TotalBlocks      uint64
	InodeCount       uint64
	InodeTableBlocks uint64
	DataRegionStart  uint64
	DataRegionBlocks uint64
}

// Compute validates the requested parameters and derives the region layout.
func Compute(sizeKiB, inodeCount uint64) (Geometry, error) {
	if sizeKiB < MinSizeKiB || sizeKiB > MaxSizeKiB || sizeKiB%SizeStepKiB != 0 {
		return Geometry{}, fmt.Errorf("%w - got %d", errs.ErrInvalidSize, sizeKiB)
	}
	if inodeCount < MinInodeCount || inodeCount > MaxInodeCount {
		return Geometry{}, fmt.Errorf("%w - got %d", errs.ErrInvalidInodeCount, inodeCount)
	}

	totalBlocks := sizeKiB * 1024 / BlockSize
	inodeTableBlocks := utils.CeilDiv(inodeCount*InodeSize, BlockSize)
	dataRegionStart := InodeTableStart + inodeTableBlocks

	// Unsigned subtraction would wrap, so compare first.
	if totalBlocks <= dataRegionStart {
		return Geometry{}, fmt.Errorf("%w - %d blocks, data region starts at %d", errs.ErrLayout, totalBlocks, dataRegionStart)
	}

	return Geometry{
		TotalBlocks:      totalBlocks,
		InodeCount:       inodeCount,
		InodeTableBlocks: inodeTableBlocks,
		DataRegionStart:  dataRegionStart,
		DataRegionBlocks: totalBlocks - dataRegionStart,
	}, nil
}

// SizeBytes is the exact length of an image with this geometry.
func (g Geometry) SizeBytes() int64 {
	return int64(g.TotalBlocks) * BlockSize
}

// Offset returns the byte offset of an absolute block index.
func Offset(block uint64) int64 {
	return int64(block) * BlockSize
}
