package filesystem

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"mvsfs/internal/errs"
	"mvsfs/internal/filesystem/directory/record"
	"mvsfs/internal/filesystem/disk"
	"mvsfs/internal/filesystem/geometry"
	"mvsfs/internal/filesystem/inode"
	"mvsfs/internal/filesystem/superblock"
)

const epoch = 1700000000

func fixedClock() time.Time {
	return time.Unix(epoch, 0)
}

func setupFilesystem(t *testing.T, sizeKiB, inodeCount uint64) *FileSystem {
	t.Helper()
	g, err := geometry.Compute(sizeKiB, inodeCount)
	if err != nil {
		t.Fatalf("geometry.Compute error: %v", err)
	}
	fs, err := FormatFilesystem(g, WithClock(fixedClock))
	if err != nil {
		t.Fatalf("FormatFilesystem error: %v", err)
	}
	return fs
}

// snapshot returns the image fs would write.
func snapshot(t *testing.T, fs *FileSystem) []byte {
	t.Helper()
	m := disk.NewMemory(nil)
	if err := fs.WriteTo(m); err != nil {
		t.Fatalf("WriteTo error: %v", err)
	}
	return m.Bytes()
}

func reopen(t *testing.T, fs *FileSystem) *FileSystem {
	t.Helper()
	reopened, err := Open(disk.NewMemory(snapshot(t, fs)), WithClock(fixedClock))
	if err != nil {
		t.Fatalf("Open error: %v", err)
	}
	return reopened
}

func content(size int) []byte {
	data := make([]byte, size)
	for i := range data {
		data[i] = byte(i%251 + 1)
	}
	return data
}

func insert(t *testing.T, fs *FileSystem, name string, data []byte) uint32 {
	t.Helper()
	ino, err := fs.InsertFile(name, uint64(len(data)), bytes.NewReader(data))
	if err != nil {
		t.Fatalf("InsertFile(%q, %d bytes) error: %v", name, len(data), err)
	}
	return ino
}

func TestFormatFilesystem(t *testing.T) {
	fs := setupFilesystem(t, 180, 128)
	image := snapshot(t, fs)

	if len(image) != 180*1024 {
		t.Fatalf("image is %d bytes; want %d", len(image), 180*1024)
	}

	fs = reopen(t, fs)

	if got := fs.InodeBitmap.Count(); got != 1 {
		t.Errorf("inode bitmap has %d bits set; want 1", got)
	}
	if got := fs.BlockBitmap.Count(); got != 1 {
		t.Errorf("data bitmap has %d bits set; want 1", got)
	}
	if image[geometry.Offset(1)] != 0x01 || image[geometry.Offset(2)] != 0x01 {
		t.Errorf("bitmap first bytes = %#x, %#x; want 0x01, 0x01", image[geometry.Offset(1)], image[geometry.Offset(2)])
	}

	root, err := fs.ReadInode(geometry.RootInode)
	if err != nil {
		t.Fatalf("ReadInode error: %v", err)
	}
	wantRoot := &inode.Inode{
		Mode:      inode.ModeDirectory,
		Links:     2,
		SizeBytes: 128,
		Atime:     epoch,
		Mtime:     epoch,
		Ctime:     epoch,
		Direct:    [12]uint32{7},
		ProjectId: inode.ProjectID,
		Crc:       root.Crc,
	}
	if diff := cmp.Diff(wantRoot, root); diff != "" {
		t.Errorf("root inode mismatch (-want +got):\n%s", diff)
	}
	if err := root.Verify(); err != nil {
		t.Errorf("root inode: %v", err)
	}

	entries, err := fs.ListRoot()
	if err != nil {
		t.Fatalf("ListRoot error: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("root has %d entries; want 2", len(entries))
	}
	for i, name := range []string{".", ".."} {
		e := entries[i]
		if e.GetName() != name || e.Inode != 1 || e.Type != record.TypeDirectory {
			t.Errorf("entry %d = %q inode %d type %d; want %q inode 1 type dir", i, e.GetName(), e.Inode, e.Type, name)
		}
		if err := e.Verify(); err != nil {
			t.Errorf("entry %q: %v", name, err)
		}
	}

	if err := fs.Superblock.Verify(); err != nil {
		t.Errorf("superblock: %v", err)
	}
	if fs.Superblock.MtimeEpoch != epoch {
		t.Errorf("MtimeEpoch = %d; want %d", fs.Superblock.MtimeEpoch, epoch)
	}
}

func TestRoundTrip(t *testing.T) {
	fs := setupFilesystem(t, 1024, 200)
	insert(t, fs, "a.txt", content(5000))

	reopened := reopen(t, fs)

	if diff := cmp.Diff(fs.Superblock, reopened.Superblock); diff != "" {
		t.Errorf("superblock mismatch (-want +got):\n%s", diff)
	}
	if !bytes.Equal(fs.inodes.Bytes(), reopened.inodes.Bytes()) {
		t.Errorf("inode table differs after round trip")
	}
	if !bytes.Equal(fs.blocks.Bytes(), reopened.blocks.Bytes()) {
		t.Errorf("data region differs after round trip")
	}
	if !bytes.Equal(snapshot(t, fs), snapshot(t, reopened)) {
		t.Errorf("image differs after round trip")
	}
}

func TestInsertFile(t *testing.T) {
	long := strings.Repeat("n", 70)

	tests := []struct {
		name       string
		size       int
		wantName   string
		wantBlocks int
	}{
		{"empty", 0, "empty", 0},
		{"one-byte", 1, "one-byte", 1},
		{"almost-block", 4095, "almost-block", 1},
		{"block", 4096, "block", 1},
		{"block-and-byte", 4097, "block-and-byte", 2},
		{"max", geometry.MaxFileSize, "max", 12},
		{long, 10, long[:57], 1},
	}

	for _, tc := range tests {
		t.Run(fmt.Sprintf("%s/%d", tc.wantName, tc.size), func(t *testing.T) {
			fs := setupFilesystem(t, 1024, 128)
			data := content(tc.size)

			ino := insert(t, fs, tc.name, data)
			if ino != 2 {
				t.Errorf("inode number = %d; want 2", ino)
			}

			fs = reopen(t, fs)

			if got := fs.InodeBitmap.Count(); got != 2 {
				t.Errorf("inode bitmap count = %d; want 2", got)
			}
			if set, _ := fs.InodeBitmap.IsSet(1); !set {
				t.Errorf("inode bit 1 not set")
			}
			if got := fs.BlockBitmap.Count(); got != 1+tc.wantBlocks {
				t.Errorf("data bitmap count = %d; want %d", got, 1+tc.wantBlocks)
			}

			file, err := fs.ReadInode(ino)
			if err != nil {
				t.Fatalf("ReadInode error: %v", err)
			}
			if !file.IsFile() || file.Links != 1 || file.SizeBytes != uint64(tc.size) {
				t.Errorf("file inode = %+v", file)
			}
			if err := file.Verify(); err != nil {
				t.Errorf("file inode: %v", err)
			}
			var wantDirect [12]uint32
			for i := 0; i < tc.wantBlocks; i++ {
				wantDirect[i] = uint32(fs.Superblock.DataRegionStart) + uint32(i) + 1
			}
			if diff := cmp.Diff(wantDirect, file.Direct); diff != "" {
				t.Errorf("direct pointers mismatch (-want +got):\n%s", diff)
			}

			root, _ := fs.ReadInode(geometry.RootInode)
			if root.Links != 3 || root.SizeBytes != 3*64 {
				t.Errorf("root links = %d, size = %d; want 3, 192", root.Links, root.SizeBytes)
			}
			if err := root.Verify(); err != nil {
				t.Errorf("root inode: %v", err)
			}

			entries, _ := fs.ListRoot()
			if len(entries) != 3 {
				t.Fatalf("root has %d entries; want 3", len(entries))
			}
			e := entries[2]
			if e.GetName() != tc.wantName || e.Inode != ino || e.Type != record.TypeFile {
				t.Errorf("new entry = %q inode %d type %d", e.GetName(), e.Inode, e.Type)
			}
			if err := e.Verify(); err != nil {
				t.Errorf("new entry: %v", err)
			}

			got, err := fs.ReadFile(tc.wantName)
			if err != nil {
				t.Fatalf("ReadFile error: %v", err)
			}
			if !bytes.Equal(got, data) {
				t.Errorf("ReadFile content mismatch: %d bytes, want %d", len(got), len(data))
			}

			if tc.wantBlocks > 0 {
				last, _ := fs.blocks.Block(file.Direct[tc.wantBlocks-1])
				tail := tc.size - (tc.wantBlocks-1)*geometry.BlockSize
				for i := tail; i < len(last); i++ {
					if last[i] != 0 {
						t.Fatalf("last block byte %d = %#x; want 0", i, last[i])
					}
				}
			}
		})
	}
}

func TestInsertFileFailuresLeaveImageUnchanged(t *testing.T) {
	tests := []struct {
		name    string
		prepare func(t *testing.T, fs *FileSystem)
		file    string
		size    int
		want    error
	}{
		{
			name: "too large",
			file: "big",
			size: geometry.MaxFileSize + 1,
			want: errs.ErrFileTooLarge,
		},
		{
			name: "no free inode",
			prepare: func(t *testing.T, fs *FileSystem) {
				for i := 1; i < fs.InodeBitmap.Size(); i++ {
					fs.InodeBitmap.Mark(i)
				}
			},
			file: "x",
			size: 1,
			want: errs.ErrNoFreeInode,
		},
		{
			name: "no free data block",
			prepare: func(t *testing.T, fs *FileSystem) {
				// 25 free blocks: two full files leave one.
				insert(t, fs, "a", content(geometry.MaxFileSize))
				insert(t, fs, "b", content(geometry.MaxFileSize))
			},
			file: "c",
			size: 4097,
			want: errs.ErrNoFreeDataBlock,
		},
		{
			name: "bad name",
			file: "..",
			size: 1,
			want: errs.ErrIncorrectFileName,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			fs := setupFilesystem(t, 180, 512)
			if tc.prepare != nil {
				tc.prepare(t, fs)
			}
			before := snapshot(t, fs)

			_, err := fs.InsertFile(tc.file, uint64(tc.size), bytes.NewReader(content(tc.size)))
			if !errors.Is(err, tc.want) {
				t.Fatalf("InsertFile error = %v; want %v", err, tc.want)
			}

			if !bytes.Equal(before, snapshot(t, fs)) {
				t.Errorf("failed InsertFile modified the image")
			}
		})
	}
}

func TestInsertFileShortSource(t *testing.T) {
	fs := setupFilesystem(t, 180, 128)
	before := snapshot(t, fs)

	_, err := fs.InsertFile("short", 100, bytes.NewReader(content(10)))
	if !errors.Is(err, errs.ErrIO) {
		t.Fatalf("InsertFile error = %v; want %v", err, errs.ErrIO)
	}
	if !bytes.Equal(before, snapshot(t, fs)) {
		t.Errorf("failed InsertFile modified the image")
	}
}

func TestRootDirectoryFull(t *testing.T) {
	fs := setupFilesystem(t, 1024, 128)

	// "." and ".." take two of the 64 slots.
	for i := 1; i <= 62; i++ {
		insert(t, fs, fmt.Sprintf("file%02d", i), content(1))
	}

	root, _ := fs.ReadInode(geometry.RootInode)
	if root.SizeBytes != geometry.BlockSize || root.Links != 64 {
		t.Errorf("root size = %d, links = %d; want 4096, 64", root.SizeBytes, root.Links)
	}

	before := snapshot(t, fs)
	_, err := fs.InsertFile("one-too-many", 1, bytes.NewReader(content(1)))
	if !errors.Is(err, errs.ErrRootDirectoryFull) {
		t.Fatalf("InsertFile error = %v; want %v", err, errs.ErrRootDirectoryFull)
	}
	if !bytes.Equal(before, snapshot(t, fs)) {
		t.Errorf("failed InsertFile modified the image")
	}
}

func TestInsertFileReusesFreeSlot(t *testing.T) {
	fs := setupFilesystem(t, 1024, 128)
	insert(t, fs, "first", content(1))
	insert(t, fs, "second", content(1))

	// Clear the inode number of the "first" entry, as a freed slot would be.
	_, dir, err := fs.directories.OpenRoot()
	if err != nil {
		t.Fatalf("OpenRoot error: %v", err)
	}
	dir.Put(2, record.Record{})

	ino := insert(t, fs, "third", content(1))

	root, _ := fs.ReadInode(geometry.RootInode)
	if root.SizeBytes != 4*64 {
		t.Errorf("root size = %d; want %d", root.SizeBytes, 4*64)
	}
	_, dir, _ = fs.directories.OpenRoot()
	if r := dir.Get(2); r.GetName() != "third" || r.Inode != ino {
		t.Errorf("slot 2 = %q inode %d; want %q inode %d", r.GetName(), r.Inode, "third", ino)
	}
}

func TestAllocationIsFirstFit(t *testing.T) {
	fs := setupFilesystem(t, 1024, 128)

	a := insert(t, fs, "a", content(2*geometry.BlockSize))
	b := insert(t, fs, "b", content(1))
	if a != 2 || b != 3 {
		t.Errorf("inode numbers = %d, %d; want 2, 3", a, b)
	}

	start := uint32(fs.Superblock.DataRegionStart)
	fileA, _ := fs.ReadInode(a)
	fileB, _ := fs.ReadInode(b)
	if diff := cmp.Diff([]uint32{start + 1, start + 2}, fileA.Blocks()); diff != "" {
		t.Errorf("a blocks mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]uint32{start + 3}, fileB.Blocks()); diff != "" {
		t.Errorf("b blocks mismatch (-want +got):\n%s", diff)
	}
}

func TestOpenRejectsInvalidImages(t *testing.T) {
	valid := snapshot(t, setupFilesystem(t, 180, 128))

	tests := []struct {
		name   string
		mutate func([]byte) []byte
		want   error
	}{
		{"bad magic", func(b []byte) []byte { b[0] ^= 0xFF; return b }, errs.ErrBadMagic},
		{"truncated", func(b []byte) []byte { return b[:len(b)-1] }, errs.ErrShortImage},
		{"too short for superblock", func(b []byte) []byte { return b[:superblock.Size-1] }, errs.ErrShortImage},
		{"bad block size", func(b []byte) []byte { b[9] = 0x20; return b }, errs.ErrCorruptSuperblock},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			image := tc.mutate(append([]byte(nil), valid...))
			_, err := Open(disk.NewMemory(image))
			if !errors.Is(err, tc.want) {
				t.Errorf("Open error = %v; want %v", err, tc.want)
			}
			if !errors.Is(err, errs.ErrValidation) {
				t.Errorf("Open error %v is not a validation error", err)
			}
		})
	}
}

func TestOpenDoesNotRequireSuperblockChecksum(t *testing.T) {
	image := snapshot(t, setupFilesystem(t, 180, 128))
	// Garbage checksum, as written by tools that checksum past the record.
	copy(image[112:116], []byte{0xDE, 0xAD, 0xBE, 0xEF})

	fs, err := Open(disk.NewMemory(image))
	if err != nil {
		t.Fatalf("Open error: %v", err)
	}
	if err := fs.Superblock.Verify(); !errors.Is(err, errs.ErrChecksumMismatch) {
		t.Errorf("Verify error = %v; want %v", err, errs.ErrChecksumMismatch)
	}
	insert(t, fs, "ok", content(3))
}
