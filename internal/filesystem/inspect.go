package filesystem

import (
	"fmt"

	"mvsfs/internal/errs"
	"mvsfs/internal/filesystem/directory/record"
	"mvsfs/internal/filesystem/disk"
	"mvsfs/internal/filesystem/superblock"
)

// Entry is one in-use root directory entry as reported by Inspect.
type Entry struct {
	Slot  int
	Name  string
	Inode uint32
	Type  uint8
	Mode  string
	Size  uint64
}

// Report is the read-only summary produced by Inspect.
type Report struct {
	Superblock superblock.Superblock
	UsedInodes int
	UsedBlocks int
	Entries    []Entry
	// Problems lists every integrity failure found; empty means clean.
	Problems []error
}

// Inspect opens image and checks every checksummed record in use: the
// superblock, each inode whose bitmap bit is set and each root entry.
func Inspect(image disk.Image, opts ...Option) (*Report, error) {
	fs, err := Open(image, opts...)
	if err != nil {
		return nil, err
	}

	report := Report{
		Superblock: *fs.Superblock,
		UsedInodes: fs.InodeBitmap.Count(),
		UsedBlocks: fs.BlockBitmap.Count(),
	}

	if err := fs.Superblock.Verify(); err != nil {
		report.Problems = append(report.Problems, err)
	}

	for i := 0; i < int(fs.inodes.InodeCount()); i++ {
		if set, _ := fs.InodeBitmap.IsSet(i); !set {
			continue
		}
		ino, err := fs.inodes.ReadInode(uint32(i + 1))
		if err != nil {
			report.Problems = append(report.Problems, err)
			continue
		}
		if err := ino.Verify(); err != nil {
			report.Problems = append(report.Problems, fmt.Errorf("inode %d: %w", i+1, err))
		}
	}

	_, dir, err := fs.directories.OpenRoot()
	if err != nil {
		report.Problems = append(report.Problems, err)
		return &report, nil
	}
	for slot, r := range dir.GetRecords() {
		if r.IsFree() {
			continue
		}
		if err := r.Verify(); err != nil {
			report.Problems = append(report.Problems, fmt.Errorf("slot %d: %w", slot, err))
		}

		entry := Entry{Slot: slot, Name: r.GetName(), Inode: r.Inode, Type: r.Type, Mode: "?"}
		if set, err := fs.InodeBitmap.IsSet(int(r.Inode) - 1); err != nil || !set {
			report.Problems = append(report.Problems, fmt.Errorf("%w - slot %d names unallocated inode %d", errs.ErrCorruptDirectory, slot, r.Inode))
		} else if ino, err := fs.inodes.ReadInode(r.Inode); err == nil {
			entry.Size = ino.SizeBytes
			entry.Mode = ino.GetTypeString()
			if r.Type == record.TypeFile && !ino.IsFile() {
				report.Problems = append(report.Problems, fmt.Errorf("%w - slot %d is typed file but inode %d is not", errs.ErrCorruptDirectory, slot, r.Inode))
			}
		}
		report.Entries = append(report.Entries, entry)
	}

	return &report, nil
}

// Clean reports whether Inspect found no problems.
func (r *Report) Clean() bool {
	return len(r.Problems) == 0
}
