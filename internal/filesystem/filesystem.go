package filesystem

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"mvsfs/internal/errs"
	"mvsfs/internal/filesystem/bitmap"
	"mvsfs/internal/filesystem/directory/record"
	"mvsfs/internal/filesystem/disk"
	"mvsfs/internal/filesystem/geometry"
	"mvsfs/internal/filesystem/inode"
	"mvsfs/internal/filesystem/managers/blockmanager"
	"mvsfs/internal/filesystem/managers/directorymanager"
	"mvsfs/internal/filesystem/managers/inodemanager"
	"mvsfs/internal/filesystem/superblock"
)

// FileSystem is a complete in-memory copy of an image. Every region is
// addressed through the geometry stored in Superblock.
type FileSystem struct {
	Superblock  *superblock.Superblock
	InodeBitmap *bitmap.Bitmap
	BlockBitmap *bitmap.Bitmap
	inodes      *inodemanager.InodeManager
	blocks      *blockmanager.BlockManager
	directories *directorymanager.DirectoryManager
	opts        options
}

// FormatFilesystem builds a fresh image: a finalized superblock, both
// bitmaps with only bit 0 set, and a root directory holding "." and "..".
func FormatFilesystem(g geometry.Geometry, opts ...Option) (*FileSystem, error) {
	fileSystem := FileSystem{opts: newOptions(opts)}
	now := fileSystem.opts.now()

	fileSystem.Superblock = superblock.NewSuperblock(g, now)
	fileSystem.Superblock.Finalize()

	fileSystem.InodeBitmap = bitmap.NewBitmap(int(g.InodeCount))
	fileSystem.BlockBitmap = bitmap.NewBitmap(int(g.DataRegionBlocks))
	fileSystem.inodes = inodemanager.NewInodeManager(g.InodeCount, g.InodeTableBlocks)
	fileSystem.blocks = blockmanager.NewBlockManager(g.DataRegionStart, g.DataRegionBlocks)
	fileSystem.directories = directorymanager.NewDirectoryManager(fileSystem.inodes, fileSystem.blocks)

	if err := fileSystem.createRootDirectory(now); err != nil {
		return nil, err
	}

	fileSystem.opts.log.WithFields(logrus.Fields{
		"blocks":      g.TotalBlocks,
		"inodes":      g.InodeCount,
		"inode_table": g.InodeTableBlocks,
		"data_start":  g.DataRegionStart,
		"data_blocks": g.DataRegionBlocks,
	}).Debug("formatted file system")

	return &fileSystem, nil
}

// createRootDirectory allocates inode 1 and data block 0 and seeds the root
// directory in that block.
func (fs *FileSystem) createRootDirectory(now uint64) error {
	if err := fs.InodeBitmap.Mark(geometry.RootInode - 1); err != nil {
		return err
	}
	if err := fs.BlockBitmap.Mark(0); err != nil {
		return err
	}
	_, err := fs.directories.CreateRoot(now)
	return err
}

// Open loads every region of image into memory. Offsets come from the
// image's own superblock, which must carry the right magic number and a
// consistent geometry.
func Open(image disk.Image, opts ...Option) (*FileSystem, error) {
	fileSystem := FileSystem{opts: newOptions(opts)}

	head, err := image.BytesAt(0, superblock.Size)
	if err != nil {
		return nil, fmt.Errorf("read superblock: %w", err)
	}
	fileSystem.Superblock, err = superblock.Decode(head)
	if err != nil {
		return nil, err
	}
	sb := fileSystem.Superblock
	if err := sb.Validate(); err != nil {
		return nil, err
	}
	if want := sb.Geometry().SizeBytes(); image.Len() < uint64(want) {
		return nil, fmt.Errorf("%w - %d bytes, geometry needs %d", errs.ErrShortImage, image.Len(), want)
	}

	inodeBitmap, err := readRegion(image, sb.InodeBitmapStart, sb.InodeBitmapBlocks)
	if err != nil {
		return nil, fmt.Errorf("read inode bitmap: %w", err)
	}
	if fileSystem.InodeBitmap, err = bitmap.LoadBitmap(inodeBitmap, int(sb.InodeCount)); err != nil {
		return nil, err
	}

	dataBitmap, err := readRegion(image, sb.DataBitmapStart, sb.DataBitmapBlocks)
	if err != nil {
		return nil, fmt.Errorf("read data bitmap: %w", err)
	}
	if fileSystem.BlockBitmap, err = bitmap.LoadBitmap(dataBitmap, int(sb.DataRegionBlocks)); err != nil {
		return nil, err
	}

	table, err := readRegion(image, sb.InodeTableStart, sb.InodeTableBlocks)
	if err != nil {
		return nil, fmt.Errorf("read inode table: %w", err)
	}
	if fileSystem.inodes, err = inodemanager.LoadInodeManager(table, sb.InodeCount); err != nil {
		return nil, err
	}

	region, err := readRegion(image, sb.DataRegionStart, sb.DataRegionBlocks)
	if err != nil {
		return nil, fmt.Errorf("read data region: %w", err)
	}
	if fileSystem.blocks, err = blockmanager.LoadBlockManager(region, sb.DataRegionStart, sb.DataRegionBlocks); err != nil {
		return nil, err
	}

	fileSystem.directories = directorymanager.NewDirectoryManager(fileSystem.inodes, fileSystem.blocks)

	return &fileSystem, nil
}

// readRegion copies blocks [start, start+count) out of image.
func readRegion(image disk.Image, start, count uint64) ([]byte, error) {
	data, err := image.BytesAt(uint64(geometry.Offset(start)), count*geometry.BlockSize)
	if err != nil {
		return nil, err
	}
	return append([]byte(nil), data...), nil
}

// WriteTo persists every region at its geometry offset and syncs. A failure
// part way leaves a partially written target.
func (fs *FileSystem) WriteTo(backend disk.Backend) error {
	sb := fs.Superblock

	regions := []struct {
		name  string
		start uint64
		data  []byte
	}{
		{"superblock", 0, sb.Encode()},
		{"inode bitmap", sb.InodeBitmapStart, fs.InodeBitmap.ToByteArray()},
		{"data bitmap", sb.DataBitmapStart, fs.BlockBitmap.ToByteArray()},
		{"inode table", sb.InodeTableStart, fs.inodes.Bytes()},
		{"data region", sb.DataRegionStart, fs.blocks.Bytes()},
	}

	for _, r := range regions {
		if err := backend.WriteAt(r.data, geometry.Offset(r.start)); err != nil {
			return fmt.Errorf("write %s: %w", r.name, err)
		}
	}

	return backend.Sync()
}

// ReadInode returns a copy of inode inodeNumber.
func (fs *FileSystem) ReadInode(inodeNumber uint32) (*inode.Inode, error) {
	return fs.inodes.ReadInode(inodeNumber)
}

// ListRoot returns the root directory entries that are in use.
func (fs *FileSystem) ListRoot() ([]record.Record, error) {
	_, dir, err := fs.directories.OpenRoot()
	if err != nil {
		return nil, err
	}
	var records []record.Record
	for _, r := range dir.GetRecords() {
		if !r.IsFree() {
			records = append(records, r)
		}
	}
	return records, nil
}

// ReadFile returns the content of the regular file name in the root directory.
func (fs *FileSystem) ReadFile(name string) ([]byte, error) {
	_, dir, err := fs.directories.OpenRoot()
	if err != nil {
		return nil, err
	}
	inodeNumber, err := dir.GetInode(name)
	if err != nil {
		return nil, err
	}
	fileInode, err := fs.inodes.ReadInode(inodeNumber)
	if err != nil {
		return nil, err
	}
	if !fileInode.IsFile() {
		return nil, fmt.Errorf("%w - %s", errs.ErrNotRegularFile, name)
	}
	return fs.blocks.ReadBlocks(fileInode.Blocks(), fileInode.SizeBytes)
}
