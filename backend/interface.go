// Package backend provides the storage interfaces the filesystem decoder
// reads from. The image is opened once, read-only, for the whole run; there
// is no writable counterpart.
package backend

import (
	"errors"
	"io"
	"io/fs"
)

var ErrNotSuitable = errors.New("backing file is not suitable")

// File is a read-only handle on a disk image. Block-addressed readers are
// built on ReadAt.
type File interface {
	fs.File
	io.ReaderAt
	io.Seeker
	io.Closer
}
