package filesystem

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"mvsfs/internal/errs"
	"mvsfs/internal/filesystem/disk"
	"mvsfs/internal/filesystem/geometry"
)

// Create builds a new image at path and checks that the written file has
// exactly the size its geometry defines.
func Create(path string, sizeKiB, inodeCount uint64, opts ...Option) (geometry.Geometry, error) {
	g, err := geometry.Compute(sizeKiB, inodeCount)
	if err != nil {
		return geometry.Geometry{}, err
	}

	fs, err := FormatFilesystem(g, opts...)
	if err != nil {
		return geometry.Geometry{}, err
	}

	backend, err := disk.CreateFile(path)
	if err != nil {
		return geometry.Geometry{}, err
	}
	if err := persist(fs, backend); err != nil {
		backend.Close()
		return geometry.Geometry{}, err
	}
	if err := backend.Close(); err != nil {
		return geometry.Geometry{}, err
	}

	fs.opts.log.WithFields(logrus.Fields{"image": path, "size_kib": sizeKiB, "inodes": inodeCount}).Debug("created image")
	return g, nil
}

// persist writes fs to backend and verifies the resulting length.
func persist(fs *FileSystem, backend disk.Backend) error {
	if err := fs.WriteTo(backend); err != nil {
		return err
	}

	size, err := backend.Size()
	if err != nil {
		return err
	}
	if want := fs.Superblock.Geometry().SizeBytes(); size != want {
		return fmt.Errorf("%w - %d bytes (expected: %d bytes)", errs.ErrSizeMismatch, size, want)
	}
	return nil
}

// InsertResult describes a file added by Insert.
type InsertResult struct {
	Name  string
	Inode uint32
	Size  uint64
}

// Insert adds the file at filePath to the image at input and writes the
// result to output. Nothing is created at output unless the insertion
// succeeds in memory.
func Insert(input, output, filePath string, opts ...Option) (InsertResult, error) {
	if err := checkDistinct(input, output); err != nil {
		return InsertResult{}, err
	}

	image, err := disk.MapImage(input)
	if err != nil {
		return InsertResult{}, err
	}
	defer image.Close()

	fs, err := Open(image, opts...)
	if err != nil {
		return InsertResult{}, err
	}

	src, err := os.Open(filePath)
	if err != nil {
		return InsertResult{}, errs.IO(fmt.Sprintf("open file %s", filePath), err)
	}
	defer src.Close()

	stat, err := src.Stat()
	if err != nil {
		return InsertResult{}, errs.IO(fmt.Sprintf("stat file %s", filePath), err)
	}
	if !stat.Mode().IsRegular() {
		return InsertResult{}, fmt.Errorf("%w - %s", errs.ErrNotRegularFile, filePath)
	}

	name := EntryName(filePath)
	size := uint64(stat.Size())
	inodeNumber, err := fs.InsertFile(name, size, src)
	if err != nil {
		return InsertResult{}, err
	}

	backend, err := disk.CreateFile(output)
	if err != nil {
		return InsertResult{}, err
	}
	if err := persist(fs, backend); err != nil {
		backend.Close()
		return InsertResult{}, err
	}
	if err := backend.Close(); err != nil {
		return InsertResult{}, err
	}

	return InsertResult{Name: name, Inode: inodeNumber, Size: size}, nil
}

// checkDistinct rejects an output that is the input file itself: the input
// stays mapped while the output is truncated and rewritten.
func checkDistinct(input, output string) error {
	in, err := os.Stat(input)
	if err != nil {
		return errs.IO(fmt.Sprintf("stat image %s", input), err)
	}
	out, err := os.Stat(output)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return errs.IO(fmt.Sprintf("stat output %s", output), err)
	}
	if os.SameFile(in, out) {
		return fmt.Errorf("%w - %s", errs.ErrSameFile, output)
	}
	return nil
}
