package disk

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"
	"mvsfs/internal/errs"
)

// fileBackend implements Backend using a regular file.
type fileBackend struct {
	f *os.File
}

var _ Backend = (*fileBackend)(nil)

// CreateFile creates or truncates path and returns it as a Backend.
func CreateFile(path string) (Backend, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR|os.O_TRUNC, 0644)
	if err != nil {
		return nil, errs.IO(fmt.Sprintf("create image %s", path), err)
	}
	return &fileBackend{f: f}, nil
}

func (fb *fileBackend) WriteAt(p []byte, off int64) error {
	if _, err := fb.f.WriteAt(p, off); err != nil {
		return errs.IO("disk write", err)
	}
	return nil
}

func (fb *fileBackend) Size() (int64, error) {
	stat, err := fb.f.Stat()
	if err != nil {
		return 0, errs.IO("disk stat", err)
	}
	return stat.Size(), nil
}

func (fb *fileBackend) Sync() error {
	if err := fb.f.Sync(); err != nil {
		return errs.IO("disk sync", err)
	}
	return nil
}

func (fb *fileBackend) Close() error {
	if err := fb.f.Close(); err != nil {
		return errs.IO("disk close", err)
	}
	return nil
}

// mappedImage implements Image over a read-only shared mapping of a file.
type mappedImage struct {
	src   *os.File
	bytes []byte
}

var _ Image = (*mappedImage)(nil)

// MapImage maps the file at path read-only.
func MapImage(path string) (Image, error) {
	src, err := os.Open(path)
	if err != nil {
		return nil, errs.IO(fmt.Sprintf("open image %s", path), err)
	}

	stat, err := src.Stat()
	if err != nil {
		src.Close()
		return nil, errs.IO(fmt.Sprintf("stat image %s", path), err)
	}
	if !stat.Mode().IsRegular() {
		src.Close()
		return nil, fmt.Errorf("%w - %s", errs.ErrNotRegularFile, path)
	}
	if stat.Size() == 0 {
		src.Close()
		return nil, fmt.Errorf("%w - %s is empty", errs.ErrShortImage, path)
	}

	bytes, err := unix.Mmap(int(src.Fd()), 0, int(stat.Size()), unix.PROT_READ, unix.MAP_SHARED)
	if err != nil {
		src.Close()
		return nil, errs.IO(fmt.Sprintf("map image %s", path), err)
	}
	return &mappedImage{src: src, bytes: bytes}, nil
}

func (i *mappedImage) BytesAt(off, n uint64) ([]byte, error) {
	return bytesAt(i.bytes, off, n)
}

func (i *mappedImage) Len() uint64 {
	return uint64(len(i.bytes))
}

func (i *mappedImage) Close() error {
	err := unix.Munmap(i.bytes)
	if cerr := i.src.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return errs.IO("close image", err)
	}
	return nil
}

// bytesAt checks that [off, off+n) lies inside data.
func bytesAt(data []byte, off, n uint64) ([]byte, error) {
	size := uint64(len(data))
	end := off + n
	if off > size || end < off || end > size {
		return nil, fmt.Errorf("%w - range [%d, %d) of %d bytes", errs.ErrShortImage, off, end, size)
	}
	return data[off:end], nil
}
