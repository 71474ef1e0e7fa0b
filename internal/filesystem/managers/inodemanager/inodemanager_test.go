package inodemanager

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"mvsfs/internal/errs"
	"mvsfs/internal/filesystem/geometry"
	"mvsfs/internal/filesystem/inode"
)

func TestSaveAndReadInode(t *testing.T) {
	im := NewInodeManager(128, 4)

	file, err := inode.NewFile(10, []uint32{9}, 1700000000)
	if err != nil {
		t.Fatalf("NewFile error: %v", err)
	}
	for _, n := range []uint32{1, 64, 128} {
		if err := im.SaveInode(file, n); err != nil {
			t.Fatalf("SaveInode(%d) error: %v", n, err)
		}
		got, err := im.ReadInode(n)
		if err != nil {
			t.Fatalf("ReadInode(%d) error: %v", n, err)
		}
		if diff := cmp.Diff(file, got); diff != "" {
			t.Errorf("inode %d mismatch (-want +got):\n%s", n, diff)
		}
	}

	table := im.Bytes()
	if len(table) != 4*geometry.BlockSize {
		t.Errorf("table is %d bytes; want %d", len(table), 4*geometry.BlockSize)
	}
	slot, err := inode.Decode(table[127*geometry.InodeSize:])
	if err != nil {
		t.Fatalf("Decode error: %v", err)
	}
	if diff := cmp.Diff(file, slot); diff != "" {
		t.Errorf("inode 128 not stored in slot 127 (-want +got):\n%s", diff)
	}
}

func TestInodeNumberBounds(t *testing.T) {
	im := NewInodeManager(128, 4)

	for _, n := range []uint32{0, 129} {
		if _, err := im.ReadInode(n); !errors.Is(err, errs.ErrIndexOutOfBounds) {
			t.Errorf("ReadInode(%d) error = %v; want %v", n, err, errs.ErrIndexOutOfBounds)
		}
		if err := im.SaveInode(&inode.Inode{}, n); !errors.Is(err, errs.ErrIndexOutOfBounds) {
			t.Errorf("SaveInode(%d) error = %v; want %v", n, err, errs.ErrIndexOutOfBounds)
		}
	}
}

func TestLoadInodeManager(t *testing.T) {
	if _, err := LoadInodeManager(make([]byte, geometry.BlockSize), 128); !errors.Is(err, errs.ErrShortRecord) {
		t.Errorf("LoadInodeManager short table error = %v; want %v", err, errs.ErrShortRecord)
	}

	im, err := LoadInodeManager(make([]byte, 4*geometry.BlockSize), 128)
	if err != nil {
		t.Fatalf("LoadInodeManager error: %v", err)
	}
	if im.InodeCount() != 128 {
		t.Errorf("InodeCount = %d; want 128", im.InodeCount())
	}
}
