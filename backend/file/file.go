package file

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/pierrec/lz4"
	"github.com/ulikunitz/xz"

	"github.com/v7fs/go-v7fs/backend"
)

// magic bytes of the compressed containers an image may arrive in
var (
	xzMagic  = []byte{0xfd, '7', 'z', 'X', 'Z', 0x00}
	lz4Magic = []byte{0x04, 0x22, 0x4d, 0x18}
)

type rawBackend struct {
	storage fs.File
}

// New creates a backend.File from a provided fs.File
func New(f fs.File) backend.File {
	return &rawBackend{storage: f}
}

// Open opens the disk image at pathName read-only. Images compressed with
// xz or lz4 (detected by magic bytes, not extension) are decoded fully into
// memory so that blocks can still be addressed randomly; anything else is
// served straight from the file.
func Open(pathName string) (backend.File, error) {
	if pathName == "" {
		return nil, errors.New("must pass an image file name")
	}

	f, err := os.Open(pathName)
	if err != nil {
		return nil, fmt.Errorf("could not open image %s: %w", pathName, err)
	}

	magic := make([]byte, len(xzMagic))
	n, err := f.ReadAt(magic, 0)
	if err != nil && err != io.EOF {
		f.Close()
		return nil, fmt.Errorf("could not read magic bytes of %s: %w", pathName, err)
	}
	magic = magic[:n]

	var decoder io.Reader
	switch {
	case bytes.HasPrefix(magic, xzMagic):
		if _, err := f.Seek(0, io.SeekStart); err != nil {
			f.Close()
			return nil, err
		}
		decoder, err = xz.NewReader(f)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("could not initialize xz decoder for %s: %w", pathName, err)
		}
	case bytes.HasPrefix(magic, lz4Magic):
		if _, err := f.Seek(0, io.SeekStart); err != nil {
			f.Close()
			return nil, err
		}
		decoder = lz4.NewReader(f)
	default:
		return &rawBackend{storage: f}, nil
	}

	// compressed image: decode the whole thing and serve it from memory
	defer f.Close()
	b, err := io.ReadAll(decoder)
	if err != nil {
		return nil, fmt.Errorf("could not decompress image %s: %w", pathName, err)
	}
	return &memBackend{name: pathName, contents: bytes.NewReader(b)}, nil
}

// backend.File interface guard
var _ backend.File = (*rawBackend)(nil)

func (f *rawBackend) Stat() (fs.FileInfo, error) {
	return f.storage.Stat()
}

func (f *rawBackend) Read(b []byte) (int, error) {
	return f.storage.Read(b)
}

func (f *rawBackend) Close() error {
	return f.storage.Close()
}

func (f *rawBackend) ReadAt(p []byte, off int64) (n int, err error) {
	if readerAt, ok := f.storage.(io.ReaderAt); ok {
		return readerAt.ReadAt(p, off)
	}
	return -1, backend.ErrNotSuitable
}

func (f *rawBackend) Seek(offset int64, whence int) (int64, error) {
	if seeker, ok := f.storage.(io.Seeker); ok {
		return seeker.Seek(offset, whence)
	}
	return -1, backend.ErrNotSuitable
}

// memBackend serves a decompressed image from memory.
type memBackend struct {
	name     string
	contents *bytes.Reader
}

var _ backend.File = (*memBackend)(nil)

func (m *memBackend) Stat() (fs.FileInfo, error) {
	return nil, backend.ErrNotSuitable
}

func (m *memBackend) Read(b []byte) (int, error) {
	return m.contents.Read(b)
}

func (m *memBackend) ReadAt(p []byte, off int64) (int, error) {
	return m.contents.ReadAt(p, off)
}

func (m *memBackend) Seek(offset int64, whence int) (int64, error) {
	return m.contents.Seek(offset, whence)
}

func (m *memBackend) Close() error {
	return nil
}
