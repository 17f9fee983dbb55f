package appendfs

import (
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/outofforest/appendfs/blocks"
	recordV0 "github.com/outofforest/appendfs/blocks/record/v0"
)

// DefaultBlockSize is the block size used when no other one is configured.
const DefaultBlockSize int64 = 512

// Store is the interface required from the block storage.
type Store interface {
	// BlockSize returns the size of a single block on the device.
	BlockSize() int64

	// ReadBlock fills p with the content of the addressed block. p is exactly
	// one block long. The implementation must not retain p.
	ReadBlock(address blocks.BlockAddress, p []byte) error

	// WriteBlock stores p as the content of the addressed block. A nil error
	// means the block is durable. The implementation must not retain p.
	WriteBlock(address blocks.BlockAddress, p []byte) error
}

// Config configures a filesystem instance.
type Config struct {
	// Store is the block storage the region lives on. The mounted filesystem
	// owns the store exclusively.
	Store Store

	// BeginBlock and EndBlock bound the half-open region [BeginBlock, EndBlock)
	// of physical block addresses forming the ring.
	BeginBlock blocks.BlockAddress
	EndBlock   blocks.BlockAddress

	// Logger receives warnings about blocks skipped during iteration.
	// If nil, logging is disabled.
	Logger *zap.Logger
}

// Filesystem is an append-only, log-structured ring of fixed-size record
// blocks. The newest block overwrites the oldest one once the region is full.
// A mounted filesystem owns its store and a single block-sized scratch buffer;
// no other allocation happens after mount. It is not thread safe.
type Filesystem struct {
	store  Store
	ring   ring
	logger *zap.Logger

	buf     []byte
	nextID  blocks.BlockID
	nextPos blocks.BlockAddress
}

// Mount recovers the position of the write head and returns a mounted
// filesystem. Recovery issues O(log N) block reads for a region of N blocks.
// Mounting an empty region succeeds and positions the head at the beginning.
func Mount(cfg Config) (*Filesystem, error) {
	fs, err := newFilesystem(cfg)
	if err != nil {
		return nil, err
	}
	if err := fs.recover(); err != nil {
		return nil, err
	}
	return fs, nil
}

// Format prepares the region for a fresh filesystem. It erases every block of
// the region and writes a sentinel block at the beginning, so a subsequent
// mount positions the head right after the sentinel.
func Format(cfg Config) error {
	fs, err := newFilesystem(cfg)
	if err != nil {
		return err
	}

	// The scratch buffer is all zeros here. An erased block carries id 0 and
	// a checksum field which does not match recomputation.
	for pos := fs.ring.begin; pos < fs.ring.end; pos++ {
		if err := fs.store.WriteBlock(pos, fs.buf); err != nil {
			return err
		}
	}

	recordV0.Stamp(fs.buf, blocks.SentinelID)
	return fs.store.WriteBlock(fs.ring.begin, fs.buf)
}

func newFilesystem(cfg Config) (*Filesystem, error) {
	if cfg.EndBlock < cfg.BeginBlock+2 {
		return nil, errors.WithStack(ErrTooSmallRegion)
	}

	blockSize := cfg.Store.BlockSize()
	if err := recordV0.ValidateBlockSize(blockSize); err != nil {
		return nil, err
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Filesystem{
		store:  cfg.Store,
		ring:   ring{begin: cfg.BeginBlock, end: cfg.EndBlock},
		logger: logger,
		buf:    make([]byte, blockSize),
	}, nil
}

// BlockSize returns the size of a single block.
func (fs *Filesystem) BlockSize() int64 {
	return int64(len(fs.buf))
}

// PayloadSize returns the number of payload bytes carried by each block.
func (fs *Filesystem) PayloadSize() int {
	return len(fs.buf) - recordV0.FooterSize
}

// NextID returns the id that will be stamped on the next committed block.
func (fs *Filesystem) NextID() blocks.BlockID {
	return fs.nextID
}

// NextPosition returns the physical address of the next block to write.
func (fs *Filesystem) NextPosition() blocks.BlockAddress {
	return fs.nextPos
}
