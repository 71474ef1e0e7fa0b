package inodemanager

import (
	"fmt"

	"mvsfs/internal/errs"
	"mvsfs/internal/filesystem/geometry"
	"mvsfs/internal/filesystem/inode"
)

// InodeManager owns an in-memory copy of the inode table. Inode numbers are
// 1-based: number n lives in slot n-1.
type InodeManager struct {
	table      []byte
	inodeCount uint64
}

// NewInodeManager returns a zeroed table of tableBlocks blocks.
func NewInodeManager(inodeCount, tableBlocks uint64) *InodeManager {
	return &InodeManager{make([]byte, tableBlocks*geometry.BlockSize), inodeCount}
}

// LoadInodeManager takes ownership of table, which must hold inodeCount inodes.
func LoadInodeManager(table []byte, inodeCount uint64) (*InodeManager, error) {
	if uint64(len(table)) < inodeCount*geometry.InodeSize || len(table)%geometry.BlockSize != 0 {
		return nil, fmt.Errorf("%w - inode table of %d bytes for %d inodes", errs.ErrShortRecord, len(table), inodeCount)
	}
	return &InodeManager{table, inodeCount}, nil
}

func (im InodeManager) InodeCount() uint64 {
	return im.inodeCount
}

func (im InodeManager) ReadInode(inodeNumber uint32) (*inode.Inode, error) {
	offset, err := im.offset(inodeNumber)
	if err != nil {
		return nil, err
	}
	return inode.Decode(im.table[offset : offset+geometry.InodeSize])
}

func (im InodeManager) SaveInode(value *inode.Inode, inodeNumber uint32) error {
	offset, err := im.offset(inodeNumber)
	if err != nil {
		return err
	}
	value.Put(im.table[offset : offset+geometry.InodeSize])
	return nil
}

func (im InodeManager) offset(inodeNumber uint32) (uint64, error) {
	if inodeNumber < 1 || uint64(inodeNumber) > im.inodeCount {
		return 0, fmt.Errorf("%w - inode %d of %d", errs.ErrIndexOutOfBounds, inodeNumber, im.inodeCount)
	}
	return uint64(inodeNumber-1) * geometry.InodeSize, nil
}

// Bytes returns the whole table, ready to be written at the inode table start.
func (im InodeManager) Bytes() []byte {
	return im.table
}
