package appendfs

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"

	"github.com/outofforest/appendfs/blocks"
	"github.com/outofforest/appendfs/persistence"
	"github.com/outofforest/appendfs/pkg/memdev"
)

const testBlockSize int64 = 64

func newTestStore(t *testing.T, nBlocks int64) *persistence.Store {
	store, err := persistence.OpenStore(memdev.New(nBlocks*testBlockSize), testBlockSize)
	require.NoError(t, err)
	return store
}

func newTestConfig(store Store, begin, end blocks.BlockAddress) Config {
	return Config{
		Store:      store,
		BeginBlock: begin,
		EndBlock:   end,
	}
}

// commitPayload fills the staged payload with the given byte and commits it.
func commitPayload(t *testing.T, fs *Filesystem, fill byte) {
	payload := fs.BorrowPayload()
	for i := range payload {
		payload[i] = fill
	}
	require.NoError(t, fs.Commit())
}

// corruptBlock flips a payload byte of the addressed block, so the checksum
// no longer matches while the footer id stays intact.
func corruptBlock(t *testing.T, store *persistence.Store, address blocks.BlockAddress) {
	buf := make([]byte, testBlockSize)
	require.NoError(t, store.ReadBlock(address, buf))
	buf[0]++
	require.NoError(t, store.WriteBlock(address, buf))
}

// eraseBlock zeroes the addressed block.
func eraseBlock(t *testing.T, store *persistence.Store, address blocks.BlockAddress) {
	require.NoError(t, store.WriteBlock(address, make([]byte, testBlockSize)))
}

// countingStore counts the block reads issued through it.
type countingStore struct {
	Store
	reads int
}

func (cs *countingStore) ReadBlock(address blocks.BlockAddress, p []byte) error {
	cs.reads++
	return cs.Store.ReadBlock(address, p)
}

var errDeviceGone = errors.New("device gone")

// failingStore fails the configured number of writes before letting them through.
type failingStore struct {
	Store
	failures int
}

func (s *failingStore) WriteBlock(address blocks.BlockAddress, p []byte) error {
	if s.failures > 0 {
		s.failures--
		return errors.WithStack(errDeviceGone)
	}
	return s.Store.WriteBlock(address, p)
}
