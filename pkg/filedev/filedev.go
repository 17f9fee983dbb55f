package filedev

import (
	"io"
	"os"

	"github.com/pkg/errors"
)

var _ io.ReadWriteSeeker = &FileDev{}

// DefaultRetries is the number of attempts made for each read and write
// before the error is surfaced.
const DefaultRetries = 4

// FileDev uses file handle as a device. Flaky media is tolerated by retrying
// failed reads and writes a bounded number of times.
type FileDev struct {
	file    *os.File
	size    int64
	retries uint
}

// New returns new filedev making up to DefaultRetries attempts for each read
// and write.
func New(file *os.File) *FileDev {
	return NewWithRetries(file, DefaultRetries)
}

// NewWithRetries returns new filedev making up to retries attempts for each
// read and write. Zero is treated as a single attempt.
func NewWithRetries(file *os.File, retries uint) *FileDev {
	size, err := file.Seek(0, io.SeekEnd)
	if err != nil {
		panic(errors.WithStack(err))
	}
	if retries == 0 {
		retries = 1
	}
	return &FileDev{
		file:    file,
		size:    size,
		retries: retries,
	}
}

// Seek seeks the position.
func (fd *FileDev) Seek(offset int64, whence int) (int64, error) {
	n, err := fd.file.Seek(offset, whence)
	if err != nil {
		return n, errors.WithStack(err)
	}
	return n, nil
}

// Read reads data from the file.
func (fd *FileDev) Read(p []byte) (int, error) {
	pos, err := fd.file.Seek(0, io.SeekCurrent)
	if err != nil {
		return 0, errors.WithStack(err)
	}

	for i := uint(0); ; i++ {
		n, err := fd.file.Read(p)
		if err == nil {
			return n, nil
		}
		if i+1 == fd.retries {
			return n, errors.WithStack(err)
		}
		if _, err := fd.file.Seek(pos, io.SeekStart); err != nil {
			return 0, errors.WithStack(err)
		}
	}
}

// Write writes data to the file.
func (fd *FileDev) Write(p []byte) (int, error) {
	pos, err := fd.file.Seek(0, io.SeekCurrent)
	if err != nil {
		return 0, errors.WithStack(err)
	}

	for i := uint(0); ; i++ {
		n, err := fd.file.Write(p)
		if err == nil {
			return n, nil
		}
		if i+1 == fd.retries {
			return n, errors.WithStack(err)
		}
		if _, err := fd.file.Seek(pos, io.SeekStart); err != nil {
			return 0, errors.WithStack(err)
		}
	}
}

// Sync syncs data to the file.
func (fd *FileDev) Sync() error {
	if err := fd.file.Sync(); err != nil {
		return errors.WithStack(err)
	}
	return nil
}

// Size returns the byte size of the file.
func (fd *FileDev) Size() int64 {
	return fd.size
}
