package directorymanager

import (
	"fmt"

	"mvsfs/internal/errs"
	"mvsfs/internal/filesystem/directory"
	"mvsfs/internal/filesystem/directory/record"
	"mvsfs/internal/filesystem/geometry"
	"mvsfs/internal/filesystem/inode"
	"mvsfs/internal/filesystem/managers/blockmanager"
	"mvsfs/internal/filesystem/managers/inodemanager"
)

// DirectoryManager edits the root directory: inode #1 and the single block
// its first direct pointer names.
type DirectoryManager struct {
	inodes *inodemanager.InodeManager
	blocks *blockmanager.BlockManager
}

func NewDirectoryManager(inodes *inodemanager.InodeManager, blocks *blockmanager.BlockManager) *DirectoryManager {
	return &DirectoryManager{inodes, blocks}
}

// CreateRoot seeds the root inode and its "." and ".." entries in the first
// data block.
func (dm *DirectoryManager) CreateRoot(now uint64) (*inode.Inode, error) {
	blockNumber := dm.blocks.Absolute(0)
	block, err := dm.blocks.Block(blockNumber)
	if err != nil {
		return nil, err
	}
	dir, err := directory.CreateNewDirectory(block, geometry.RootInode, geometry.RootInode)
	if err != nil {
		return nil, err
	}

	root := inode.NewDirectory(blockNumber, dir.SizeBytes(), now)
	if err := dm.inodes.SaveInode(root, geometry.RootInode); err != nil {
		return nil, err
	}
	return root, nil
}

// OpenRoot returns the root inode and a view over its directory block.
func (dm *DirectoryManager) OpenRoot() (*inode.Inode, *directory.Directory, error) {
	root, err := dm.inodes.ReadInode(geometry.RootInode)
	if err != nil {
		return nil, nil, err
	}
	if !root.IsDir() {
		return nil, nil, fmt.Errorf("%w - root inode mode %#x", errs.ErrRecordIsNotDirectory, root.Mode)
	}
	block, err := dm.blocks.Block(root.Direct[0])
	if err != nil {
		return nil, nil, fmt.Errorf("%w - root directory block: %w", errs.ErrCorruptDirectory, err)
	}
	dir, err := directory.ReadDirectory(block, root.SizeBytes)
	if err != nil {
		return nil, nil, err
	}
	return root, dir, nil
}

// ReserveSlot finds where the next entry goes without changing anything.
func (dm *DirectoryManager) ReserveSlot() (slot int, grow bool, err error) {
	_, dir, err := dm.OpenRoot()
	if err != nil {
		return 0, false, err
	}
	return dir.FindSlot()
}

// AddEntry links inodeNumber into the root directory under name: it reuses
// the first free slot or appends one, then bumps the root link count. The
// root inode is re-finalized and saved.
func (dm *DirectoryManager) AddEntry(inodeNumber uint32, recordType uint8, name string) (int, error) {
	root, dir, err := dm.OpenRoot()
	if err != nil {
		return 0, err
	}

	slot, grow, err := dir.FindSlot()
	if err != nil {
		return 0, err
	}
	if grow {
		dir.Grow()
		root.SizeBytes = dir.SizeBytes()
		root.Finalize()
	}

	dir.Put(slot, record.NewRecord(inodeNumber, recordType, name))

	root.Links++
	root.Finalize()

	if err := dm.inodes.SaveInode(root, geometry.RootInode); err != nil {
		return 0, err
	}
	return slot, nil
}
