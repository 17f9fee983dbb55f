package persistence

import (
	"io"

	"github.com/pkg/errors"

	"github.com/outofforest/appendfs/blocks"
	recordV0 "github.com/outofforest/appendfs/blocks/record/v0"
)

// Dev is the interface required from the device.
type Dev interface {
	io.ReadWriteSeeker
	Sync() error
	Size() int64
}

// Store reads and writes fixed-size blocks of a device. Block addresses are
// physical indices in the device's own address space.
type Store struct {
	dev       Dev
	blockSize int64
	nBlocks   int64
}

// OpenStore opens the persistent store over dev using the given block size.
func OpenStore(dev Dev, blockSize int64) (*Store, error) {
	if err := recordV0.ValidateBlockSize(blockSize); err != nil {
		return nil, err
	}

	nBlocks := dev.Size() / blockSize
	if nBlocks < 2 {
		return nil, errors.Errorf("device is too small, minimum size is: %d bytes, provided: %d",
			2*blockSize, dev.Size())
	}

	return &Store{
		dev:       dev,
		blockSize: blockSize,
		nBlocks:   nBlocks,
	}, nil
}

// BlockSize returns the block size used by the store.
func (s *Store) BlockSize() int64 {
	return s.blockSize
}

// NBlocks returns the number of addressable blocks on the device.
func (s *Store) NBlocks() int64 {
	return s.nBlocks
}

// ReadBlock reads raw block bytes from the addressed block.
func (s *Store) ReadBlock(address blocks.BlockAddress, p []byte) error {
	if err := s.validate(address, p); err != nil {
		return err
	}

	if _, err := s.dev.Seek(int64(address)*s.blockSize, io.SeekStart); err != nil {
		return errors.WithStack(err)
	}
	if _, err := io.ReadFull(s.dev, p); err != nil {
		return errors.WithStack(err)
	}
	return nil
}

// WriteBlock writes raw block bytes to the addressed block and syncs the
// device, so a successful write is durable on its own.
func (s *Store) WriteBlock(address blocks.BlockAddress, p []byte) error {
	if err := s.validate(address, p); err != nil {
		return err
	}

	if _, err := s.dev.Seek(int64(address)*s.blockSize, io.SeekStart); err != nil {
		return errors.WithStack(err)
	}
	if _, err := s.dev.Write(p); err != nil {
		return errors.WithStack(err)
	}
	return errors.WithStack(s.dev.Sync())
}

func (s *Store) validate(address blocks.BlockAddress, p []byte) error {
	if int64(len(p)) != s.blockSize {
		return errors.Errorf("invalid size of block buffer: %d, expected: %d", len(p), s.blockSize)
	}
	if int64(address) >= s.nBlocks {
		return errors.Errorf("block address %d is out of device range [0, %d)", address, s.nBlocks)
	}
	return nil
}
