package filesystem

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"mvsfs/internal/errs"
	"mvsfs/internal/filesystem/directory/record"
	"mvsfs/internal/filesystem/geometry"
	"mvsfs/internal/filesystem/inode"
	"mvsfs/internal/filesystem/managers/blockmanager"
	"mvsfs/internal/utils"
)

// InsertFile stores size bytes read from src as a new regular file named
// name in the root directory and returns its inode number.
//
// Every check runs before the first mutation, so on error fs is unchanged.
func (fs *FileSystem) InsertFile(name string, size uint64, src io.Reader) (uint32, error) {
	if name == "" || name == "." || name == ".." {
		return 0, fmt.Errorf("%w - %q", errs.ErrIncorrectFileName, name)
	}

	inodeIndex, err := fs.InodeBitmap.FindFree(errs.ErrNoFreeInode)
	if err != nil {
		return 0, err
	}
	inodeNumber := uint32(inodeIndex + 1)

	neededBlocks := utils.CeilDiv(size, geometry.BlockSize)
	if neededBlocks > geometry.DirectBlocks {
		return 0, fmt.Errorf("%w - %d bytes need %d blocks", errs.ErrFileTooLarge, size, neededBlocks)
	}

	free, err := fs.BlockBitmap.FindFreeN(int(neededBlocks), errs.ErrNoFreeDataBlock)
	if err != nil {
		return 0, err
	}

	if _, _, err := fs.directories.ReserveSlot(); err != nil {
		return 0, err
	}

	content, err := blockmanager.ReadContent(src, size, len(free))
	if err != nil {
		return 0, err
	}

	blocks := make([]uint32, len(free))
	for i, index := range free {
		if err := fs.BlockBitmap.Mark(index); err != nil {
			return 0, err
		}
		blocks[i] = fs.blocks.Absolute(index)
	}
	if err := fs.blocks.WriteBlocks(blocks, content); err != nil {
		return 0, err
	}

	fileInode, err := inode.NewFile(size, blocks, fs.opts.now())
	if err != nil {
		return 0, err
	}
	if err := fs.inodes.SaveInode(fileInode, inodeNumber); err != nil {
		return 0, err
	}
	if err := fs.InodeBitmap.Mark(inodeIndex); err != nil {
		return 0, err
	}

	slot, err := fs.directories.AddEntry(inodeNumber, record.TypeFile, name)
	if err != nil {
		return 0, err
	}

	fs.opts.log.WithFields(logrus.Fields{
		"name":   name,
		"inode":  inodeNumber,
		"size":   size,
		"blocks": blocks,
		"slot":   slot,
	}).Debug("inserted file")

	return inodeNumber, nil
}

// EntryName is the root directory name used for a source path.
func EntryName(path string) string {
	name := filepath.Base(path)
	if len(name) > record.MaxNameLength {
		name = name[:record.MaxNameLength]
	}
	return name
}
