package directory

import (
	"fmt"

	"mvsfs/internal/errs"
	"mvsfs/internal/filesystem/directory/record"
	"mvsfs/internal/filesystem/geometry"
)

// Directory is a view over a single directory block. Entries are packed
// from the start of the block; count of them are in use.
type Directory struct {
	block []byte
	count int
}

// CreateNewDirectory writes "." and ".." into block and returns the view.
func CreateNewDirectory(block []byte, inode uint32, parentInode uint32) (*Directory, error) {
	d, err := ReadDirectory(block, 0)
	if err != nil {
		return nil, err
	}
	d.Put(0, record.NewRecord(inode, record.TypeDirectory, "."))
	d.Put(1, record.NewRecord(parentInode, record.TypeDirectory, ".."))
	d.count = 2
	return d, nil
}

// ReadDirectory wraps block, whose owning inode reports sizeBytes of
// entries. Writes through the view land in block.
func ReadDirectory(block []byte, sizeBytes uint64) (*Directory, error) {
	if len(block) != geometry.BlockSize {
		return nil, fmt.Errorf("%w - directory block is %d bytes", errs.ErrCorruptDirectory, len(block))
	}
	if sizeBytes%geometry.DirEntrySize != 0 || sizeBytes > geometry.BlockSize {
		return nil, fmt.Errorf("%w - size %d", errs.ErrCorruptDirectory, sizeBytes)
	}
	return &Directory{block: block, count: int(sizeBytes / geometry.DirEntrySize)}, nil
}

// Len returns the number of entries in use, free slots included.
func (d *Directory) Len() int {
	return d.count
}

// SizeBytes is the directory size to store in its inode.
func (d *Directory) SizeBytes() uint64 {
	return uint64(d.count) * geometry.DirEntrySize
}

func (d *Directory) Get(slot int) record.Record {
	offset := slot * geometry.DirEntrySize
	r, _ := record.Decode(d.block[offset : offset+geometry.DirEntrySize])
	return r
}

func (d *Directory) Put(slot int, r record.Record) {
	offset := slot * geometry.DirEntrySize
	r.Put(d.block[offset : offset+geometry.DirEntrySize])
}

// GetRecords returns the entries in use, free slots included.
func (d *Directory) GetRecords() []record.Record {
	records := make([]record.Record, 0, d.count)
	for i := 0; i < d.count; i++ {
		records = append(records, d.Get(i))
	}
	return records
}

// FindSlot returns the first in-use slot whose inode number is 0. Failing
// that it returns the next unused slot with grow set; the caller must then
// Grow the directory. It fails once all DirEntriesPerBlock slots are taken.
func (d *Directory) FindSlot() (slot int, grow bool, err error) {
	for i := 0; i < d.count; i++ {
		if d.Get(i).IsFree() {
			return i, false, nil
		}
	}
	if d.count >= geometry.DirEntriesPerBlock {
		return 0, false, fmt.Errorf("%w - %d entries", errs.ErrRootDirectoryFull, d.count)
	}
	return d.count, true, nil
}

// Grow extends the directory by one entry.
func (d *Directory) Grow() {
	d.count++
}

func (d *Directory) GetInode(recordName string) (uint32, error) {
	for _, r := range d.GetRecords() {
		if !r.IsFree() && r.GetName() == recordName {
			return r.Inode, nil
		}
	}
	return 0, fmt.Errorf("%w - %s", errs.ErrRecordNotFound, recordName)
}
