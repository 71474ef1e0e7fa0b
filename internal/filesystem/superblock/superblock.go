package superblock

import (
	"encoding/binary"
	"fmt"

	"mvsfs/internal/checksum"
	"mvsfs/internal/errs"
	"mvsfs/internal/filesystem/geometry"
	"mvsfs/internal/utils"
)

const (
	MagicNumber = 0x4D565346
	Version     = 1

	// Size is the length of the encoded record; the rest of block 0 is zero.
	Size = 116

	checksumOffset = 112

	// checksumSpan is the part of block 0 covered by the checksum.
	checksumSpan = geometry.BlockSize - 4
)

type Superblock struct {
	Magic             uint32
	Version           uint32
	BlockSize         uint32
	TotalBlocks       uint64
	InodeCount        uint64
	InodeBitmapStart  uint64
	InodeBitmapBlocks uint64
	DataBitmapStart   uint64
	DataBitmapBlocks  uint64
	InodeTableStart   uint64
	InodeTableBlocks  uint64
	DataRegionStart   uint64
	DataRegionBlocks  uint64
	RootInode         uint64
	MtimeEpoch        uint64
	Flags             uint32
	Checksum          uint32
}

func NewSuperblock(g geometry.Geometry, mtime uint64) *Superblock {
	s := Superblock{}

	s.Magic = MagicNumber
	s.Version = Version
	s.BlockSize = geometry.BlockSize
	s.TotalBlocks = g.TotalBlocks
	s.InodeCount = g.InodeCount
	s.InodeBitmapStart = geometry.InodeBitmapStart
	s.InodeBitmapBlocks = geometry.InodeBitmapBlocks
	s.DataBitmapStart = geometry.DataBitmapStart
	s.DataBitmapBlocks = geometry.DataBitmapBlocks
	s.InodeTableStart = geometry.InodeTableStart
	s.InodeTableBlocks = g.InodeTableBlocks
	s.DataRegionStart = g.DataRegionStart
	s.DataRegionBlocks = g.DataRegionBlocks
	s.RootInode = geometry.RootInode
	s.MtimeEpoch = mtime

	return &s
}

// Finalize stores the checksum of the zero-padded on-disk block.
func (s *Superblock) Finalize() {
	s.Checksum = s.computeChecksum()
}

// Verify reports whether the stored checksum matches the record.
func (s Superblock) Verify() error {
	if want := s.computeChecksum(); want != s.Checksum {
		return fmt.Errorf("%w - superblock: stored %#08x, computed %#08x", errs.ErrChecksumMismatch, s.Checksum, want)
	}
	return nil
}

func (s Superblock) computeChecksum() uint32 {
	s.Checksum = 0
	block := s.Encode()
	return checksum.CRC32(block[:checksumSpan])
}

// Validate checks the magic number and that the stored geometry is the one
// the format defines. It does not check the checksum.
func (s Superblock) Validate() error {
	if s.Magic != MagicNumber {
		return fmt.Errorf("%w - got %#08x", errs.ErrBadMagic, s.Magic)
	}

	switch {
	case s.BlockSize != geometry.BlockSize:
		return fmt.Errorf("%w - block size %d", errs.ErrCorruptSuperblock, s.BlockSize)
	case s.InodeBitmapStart != geometry.InodeBitmapStart || s.InodeBitmapBlocks != geometry.InodeBitmapBlocks:
		return fmt.Errorf("%w - inode bitmap at %d+%d", errs.ErrCorruptSuperblock, s.InodeBitmapStart, s.InodeBitmapBlocks)
	case s.DataBitmapStart != geometry.DataBitmapStart || s.DataBitmapBlocks != geometry.DataBitmapBlocks:
		return fmt.Errorf("%w - data bitmap at %d+%d", errs.ErrCorruptSuperblock, s.DataBitmapStart, s.DataBitmapBlocks)
	case s.InodeTableStart != geometry.InodeTableStart:
		return fmt.Errorf("%w - inode table at %d", errs.ErrCorruptSuperblock, s.InodeTableStart)
	case s.InodeCount > geometry.BlockSize*8:
		return fmt.Errorf("%w - %d inodes exceed the inode bitmap", errs.ErrCorruptSuperblock, s.InodeCount)
	case s.InodeCount == 0 || s.InodeTableBlocks != utils.CeilDiv(s.InodeCount*geometry.InodeSize, geometry.BlockSize):
		return fmt.Errorf("%w - %d inodes in %d blocks", errs.ErrCorruptSuperblock, s.InodeCount, s.InodeTableBlocks)
	case s.DataRegionStart != geometry.InodeTableStart+s.InodeTableBlocks:
		return fmt.Errorf("%w - data region at %d", errs.ErrCorruptSuperblock, s.DataRegionStart)
	case s.DataRegionBlocks > geometry.BlockSize*8:
		return fmt.Errorf("%w - %d data blocks exceed the data bitmap", errs.ErrCorruptSuperblock, s.DataRegionBlocks)
	case s.DataRegionBlocks < 1 || s.DataRegionStart+s.DataRegionBlocks != s.TotalBlocks:
		return fmt.Errorf("%w - data region %d+%d of %d blocks", errs.ErrCorruptSuperblock, s.DataRegionStart, s.DataRegionBlocks, s.TotalBlocks)
	case s.RootInode != geometry.RootInode:
		return fmt.Errorf("%w - root inode %d", errs.ErrCorruptSuperblock, s.RootInode)
	}

	return nil
}

// Geometry returns the region layout stored in the superblock.
func (s Superblock) Geometry() geometry.Geometry {
	return geometry.Geometry{
		TotalBlocks:      s.TotalBlocks,
		InodeCount:       s.InodeCount,
		InodeTableBlocks: s.InodeTableBlocks,
		DataRegionStart:  s.DataRegionStart,
		DataRegionBlocks: s.DataRegionBlocks,
	}
}

// Encode returns block 0 of an image: the record followed by zero padding.
func (s Superblock) Encode() []byte {
	data := make([]byte, geometry.BlockSize)

	binary.LittleEndian.PutUint32(data[0:4], s.Magic)
	binary.LittleEndian.PutUint32(data[4:8], s.Version)
	binary.LittleEndian.PutUint32(data[8:12], s.BlockSize)
	binary.LittleEndian.PutUint64(data[12:20], s.TotalBlocks)
	binary.LittleEndian.PutUint64(data[20:28], s.InodeCount)
	binary.LittleEndian.PutUint64(data[28:36], s.InodeBitmapStart)
	binary.LittleEndian.PutUint64(data[36:44], s.InodeBitmapBlocks)
	binary.LittleEndian.PutUint64(data[44:52], s.DataBitmapStart)
	binary.LittleEndian.PutUint64(data[52:60], s.DataBitmapBlocks)
	binary.LittleEndian.PutUint64(data[60:68], s.InodeTableStart)
	binary.LittleEndian.PutUint64(data[68:76], s.InodeTableBlocks)
	binary.LittleEndian.PutUint64(data[76:84], s.DataRegionStart)
	binary.LittleEndian.PutUint64(data[84:92], s.DataRegionBlocks)
	binary.LittleEndian.PutUint64(data[92:100], s.RootInode)
	binary.LittleEndian.PutUint64(data[100:108], s.MtimeEpoch)
	binary.LittleEndian.PutUint32(data[108:112], s.Flags)
	binary.LittleEndian.PutUint32(data[checksumOffset:Size], s.Checksum)

	return data
}

// Decode reads a superblock from the first Size bytes of data.
func Decode(data []byte) (*Superblock, error) {
	if len(data) < Size {
		return nil, fmt.Errorf("%w - superblock needs %d bytes, got %d", errs.ErrShortRecord, Size, len(data))
	}

	s := Superblock{}

	s.Magic = binary.LittleEndian.Uint32(data[0:4])
	s.Version = binary.LittleEndian.Uint32(data[4:8])
	s.BlockSize = binary.LittleEndian.Uint32(data[8:12])
	s.TotalBlocks = binary.LittleEndian.Uint64(data[12:20])
	s.InodeCount = binary.LittleEndian.Uint64(data[20:28])
	s.InodeBitmapStart = binary.LittleEndian.Uint64(data[28:36])
	s.InodeBitmapBlocks = binary.LittleEndian.Uint64(data[36:44])
	s.DataBitmapStart = binary.LittleEndian.Uint64(data[44:52])
	s.DataBitmapBlocks = binary.LittleEndian.Uint64(data[52:60])
	s.InodeTableStart = binary.LittleEndian.Uint64(data[60:68])
	s.InodeTableBlocks = binary.LittleEndian.Uint64(data[68:76])
	s.DataRegionStart = binary.LittleEndian.Uint64(data[76:84])
	s.DataRegionBlocks = binary.LittleEndian.Uint64(data[84:92])
	s.RootInode = binary.LittleEndian.Uint64(data[92:100])
	s.MtimeEpoch = binary.LittleEndian.Uint64(data[100:108])
	s.Flags = binary.LittleEndian.Uint32(data[108:112])
	s.Checksum = binary.LittleEndian.Uint32(data[checksumOffset:Size])

	return &s, nil
}
