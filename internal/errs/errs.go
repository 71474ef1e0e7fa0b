package errs

import "fmt"

// Error classes. Every error returned by this module wraps exactly one of them.
var ErrValidation = fmt.Errorf("validation error")
var ErrResourceExhausted = fmt.Errorf("resource exhausted")
var ErrIO = fmt.Errorf("i/o error")

var ErrMissingArguments = fmt.Errorf("%w: missing arguments", ErrValidation)
var ErrUnknownArguments = fmt.Errorf("%w: unknown arguments", ErrValidation)
var ErrInvalidSize = fmt.Errorf("%w: size must be 180-4096 KiB and a multiple of 4", ErrValidation)
var ErrInvalidInodeCount = fmt.Errorf("%w: inode count must be 128-512", ErrValidation)
var ErrLayout = fmt.Errorf("%w: file system too small for layout", ErrValidation)
var ErrBadMagic = fmt.Errorf("%w: invalid file system magic number", ErrValidation)
var ErrCorruptSuperblock = fmt.Errorf("%w: inconsistent superblock geometry", ErrValidation)
var ErrShortImage = fmt.Errorf("%w: image shorter than its geometry", ErrValidation)
var ErrSizeMismatch = fmt.Errorf("%w: file size incorrect", ErrValidation)
var ErrChecksumMismatch = fmt.Errorf("%w: checksum mismatch", ErrValidation)
var ErrShortRecord = fmt.Errorf("%w: record too short", ErrValidation)
var ErrIndexOutOfBounds = fmt.Errorf("%w: index out of bounds", ErrValidation)
var ErrNotRegularFile = fmt.Errorf("%w: not a regular file", ErrValidation)
var ErrSameFile = fmt.Errorf("%w: input and output are the same file", ErrValidation)
var ErrIllegalArgument = fmt.Errorf("%w: illegal argument", ErrValidation)
var ErrIncorrectFileName = fmt.Errorf("%w: incorrect file name", ErrValidation)
var ErrRecordIsNotDirectory = fmt.Errorf("%w: record is not a directory", ErrValidation)
var ErrCorruptDirectory = fmt.Errorf("%w: corrupt directory", ErrValidation)
var ErrRecordNotFound = fmt.Errorf("%w: record not found", ErrValidation)

var ErrNoFreeInode = fmt.Errorf("%w: no free inodes available", ErrResourceExhausted)
var ErrNoFreeDataBlock = fmt.Errorf("%w: not enough free data blocks", ErrResourceExhausted)
var ErrRootDirectoryFull = fmt.Errorf("%w: root directory is full", ErrResourceExhausted)
var ErrFileTooLarge = fmt.Errorf("%w: file too large, exceeds 12 direct blocks", ErrResourceExhausted)

// IO wraps err as an I/O failure of op.
func IO(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrIO, op, err)
}
