package record

import (
	"encoding/binary"
	"fmt"

	"mvsfs/internal/checksum"
	"mvsfs/internal/errs"
	"mvsfs/internal/filesystem/geometry"
	"mvsfs/internal/utils"
)

const (
	TypeFile      = 1
	TypeDirectory = 2
)

const (
	NameSize = 58

	// MaxNameLength leaves room for the NUL terminator.
	MaxNameLength = NameSize - 1

	nameOffset     = 5
	checksumOffset = geometry.DirEntrySize - 1
)

type Record struct {
	Inode    uint32
	Type     uint8
	Name     [NameSize]byte
	Checksum uint8
}

// NewRecord returns a finalized entry. Names longer than MaxNameLength are
// truncated.
func NewRecord(inode uint32, recordType uint8, name string) Record {
	recordInstance := Record{}

	recordInstance.Inode = inode
	recordInstance.Type = recordType
	utils.PutCString(recordInstance.Name[:], name)
	recordInstance.Finalize()

	return recordInstance
}

func (r Record) IsFree() bool {
	return r.Inode == 0
}

func (r Record) GetName() string {
	return utils.CString(r.Name[:])
}

// Finalize stores the XOR of the 63 bytes before the checksum.
func (r *Record) Finalize() {
	r.Checksum = r.computeChecksum()
}

func (r Record) Verify() error {
	if want := r.computeChecksum(); want != r.Checksum {
		return fmt.Errorf("%w - entry %q: stored %#02x, computed %#02x", errs.ErrChecksumMismatch, r.GetName(), r.Checksum, want)
	}
	return nil
}

func (r Record) computeChecksum() uint8 {
	data := r.Encode()
	return checksum.XOR8(data[:checksumOffset])
}

func (r Record) Encode() []byte {
	data := make([]byte, geometry.DirEntrySize)
	r.Put(data)
	return data
}

// Put writes the 64-byte on-disk form into data.
func (r Record) Put(data []byte) {
	binary.LittleEndian.PutUint32(data[0:4], r.Inode)
	data[4] = r.Type
	copy(data[nameOffset:nameOffset+NameSize], r.Name[:])
	data[checksumOffset] = r.Checksum
}

func Decode(data []byte) (Record, error) {
	if len(data) < geometry.DirEntrySize {
		return Record{}, fmt.Errorf("%w - directory entry needs %d bytes, got %d", errs.ErrShortRecord, geometry.DirEntrySize, len(data))
	}

	r := Record{}

	r.Inode = binary.LittleEndian.Uint32(data[0:4])
	r.Type = data[4]
	copy(r.Name[:], data[nameOffset:nameOffset+NameSize])
	r.Checksum = data[checksumOffset]

	return r, nil
}

func TypeString(recordType uint8) string {
	switch recordType {
	case TypeFile:
		return "file"
	case TypeDirectory:
		return "dir"
	}
	return fmt.Sprintf("type(%d)", recordType)
}
