package inode

import (
	"encoding/binary"
	"fmt"

	"mvsfs/internal/checksum"
	"mvsfs/internal/errs"
	"mvsfs/internal/filesystem/geometry"
	"mvsfs/internal/utils"
)

const (
	ModeFile      = 0x8000
	ModeDirectory = 0x4000
	modeTypeMask  = 0xF000

	// ProjectID is stamped on every inode the tools create.
	ProjectID = 1234

	// crcOffset is also the length of the span the CRC covers.
	crcOffset = 120
)

type Inode struct {
	Mode       uint16
	Links      uint16
	UserId     uint32
	GroupId    uint32
	SizeBytes  uint64
	Atime      uint64
	Mtime      uint64
	Ctime      uint64
	Direct     [geometry.DirectBlocks]uint32
	Reserved   [3]uint32
	ProjectId  uint32
	Uid16Gid16 uint32
	XattrPtr   uint64
	Crc        uint64
}

// NewDirectory returns a finalized directory inode whose entries live in
// block. size is the number of bytes of directory entries in use.
func NewDirectory(block uint32, size uint64, now uint64) *Inode {
	inode := Inode{
		Mode:      ModeDirectory,
		Links:     2,
		SizeBytes: size,
		Atime:     now,
		Mtime:     now,
		Ctime:     now,
		ProjectId: ProjectID,
	}
	inode.Direct[0] = block
	inode.Finalize()
	return &inode
}

// NewFile returns a finalized regular-file inode of size bytes stored in
// blocks, which are absolute block numbers.
func NewFile(size uint64, blocks []uint32, now uint64) (*Inode, error) {
	if len(blocks) > geometry.DirectBlocks {
		return nil, fmt.Errorf("%w - %d blocks", errs.ErrFileTooLarge, len(blocks))
	}
	if utils.CeilDiv(size, geometry.BlockSize) > uint64(len(blocks)) {
		return nil, fmt.Errorf("%w - %d bytes do not fit in %d blocks", errs.ErrIllegalArgument, size, len(blocks))
	}

	inode := Inode{
		Mode:      ModeFile,
		Links:     1,
		SizeBytes: size,
		Atime:     now,
		Mtime:     now,
		Ctime:     now,
		ProjectId: ProjectID,
	}
	copy(inode.Direct[:], blocks)
	inode.Finalize()
	return &inode, nil
}

func (inode Inode) IsFile() bool {
	return inode.Mode&modeTypeMask == ModeFile
}

func (inode Inode) IsDir() bool {
	return inode.Mode&modeTypeMask == ModeDirectory
}

// Blocks returns the non-zero direct pointers in order.
func (inode Inode) Blocks() []uint32 {
	var blocks []uint32
	for _, b := range inode.Direct {
		if b != 0 {
			blocks = append(blocks, b)
		}
	}
	return blocks
}

// Finalize recomputes the CRC. Call it after every change to the inode.
func (inode *Inode) Finalize() {
	inode.Crc = uint64(inode.computeCrc())
}

func (inode Inode) Verify() error {
	if want := uint64(inode.computeCrc()); want != inode.Crc {
		return fmt.Errorf("%w - inode: stored %#x, computed %#x", errs.ErrChecksumMismatch, inode.Crc, want)
	}
	return nil
}

func (inode Inode) computeCrc() uint32 {
	data := inode.Encode()
	return checksum.CRC32(data[:crcOffset])
}

// Encode returns the 128-byte on-disk form.
func (inode Inode) Encode() []byte {
	data := make([]byte, geometry.InodeSize)
	inode.Put(data)
	return data
}

// Put writes the on-disk form into the first InodeSize bytes of data.
func (inode Inode) Put(data []byte) {
	binary.LittleEndian.PutUint16(data[0:2], inode.Mode)
	binary.LittleEndian.PutUint16(data[2:4], inode.Links)
	binary.LittleEndian.PutUint32(data[4:8], inode.UserId)
	binary.LittleEndian.PutUint32(data[8:12], inode.GroupId)
	binary.LittleEndian.PutUint64(data[12:20], inode.SizeBytes)
	binary.LittleEndian.PutUint64(data[20:28], inode.Atime)
	binary.LittleEndian.PutUint64(data[28:36], inode.Mtime)
	binary.LittleEndian.PutUint64(data[36:44], inode.Ctime)

	for i := 0; i < geometry.DirectBlocks; i++ {
		offset := 44 + i*4
		binary.LittleEndian.PutUint32(data[offset:offset+4], inode.Direct[i])
	}

	binary.LittleEndian.PutUint32(data[92:96], inode.Reserved[0])
	binary.LittleEndian.PutUint32(data[96:100], inode.Reserved[1])
	binary.LittleEndian.PutUint32(data[100:104], inode.Reserved[2])
	binary.LittleEndian.PutUint32(data[104:108], inode.ProjectId)
	binary.LittleEndian.PutUint32(data[108:112], inode.Uid16Gid16)
	binary.LittleEndian.PutUint64(data[112:120], inode.XattrPtr)
	binary.LittleEndian.PutUint64(data[crcOffset:128], inode.Crc)
}

func Decode(data []byte) (*Inode, error) {
	if len(data) < geometry.InodeSize {
		return nil, fmt.Errorf("%w - inode needs %d bytes, got %d", errs.ErrShortRecord, geometry.InodeSize, len(data))
	}

	inode := Inode{}

	inode.Mode = binary.LittleEndian.Uint16(data[0:2])
	inode.Links = binary.LittleEndian.Uint16(data[2:4])
	inode.UserId = binary.LittleEndian.Uint32(data[4:8])
	inode.GroupId = binary.LittleEndian.Uint32(data[8:12])
	inode.SizeBytes = binary.LittleEndian.Uint64(data[12:20])
	inode.Atime = binary.LittleEndian.Uint64(data[20:28])
	inode.Mtime = binary.LittleEndian.Uint64(data[28:36])
	inode.Ctime = binary.LittleEndian.Uint64(data[36:44])

	for i := 0; i < geometry.DirectBlocks; i++ {
		offset := 44 + i*4
		inode.Direct[i] = binary.LittleEndian.Uint32(data[offset : offset+4])
	}

	inode.Reserved[0] = binary.LittleEndian.Uint32(data[92:96])
	inode.Reserved[1] = binary.LittleEndian.Uint32(data[96:100])
	inode.Reserved[2] = binary.LittleEndian.Uint32(data[100:104])
	inode.ProjectId = binary.LittleEndian.Uint32(data[104:108])
	inode.Uid16Gid16 = binary.LittleEndian.Uint32(data[108:112])
	inode.XattrPtr = binary.LittleEndian.Uint64(data[112:120])
	inode.Crc = binary.LittleEndian.Uint64(data[crcOffset:128])

	return &inode, nil
}

// GetTypeString returns "d" for directories, "-" for regular files and "?"
// for anything else.
func (inode Inode) GetTypeString() string {
	switch {
	case inode.IsDir():
		return "d"
	case inode.IsFile():
		return "-"
	}
	return "?"
}
