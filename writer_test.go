package appendfs

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/outofforest/appendfs/blocks"
	recordV0 "github.com/outofforest/appendfs/blocks/record/v0"
)

func TestCommitAdvancesHead(t *testing.T) {
	requireT := require.New(t)

	store := newTestStore(t, 8)

	fs, err := Mount(newTestConfig(store, 0, 8))
	requireT.NoError(err)

	commitPayload(t, fs, 0xab)
	requireT.Equal(blocks.BlockAddress(1), fs.NextPosition())
	requireT.Equal(blocks.BlockID(2), fs.NextID())

	buf := make([]byte, testBlockSize)
	requireT.NoError(store.ReadBlock(0, buf))
	id, ok := recordV0.Verify(buf)
	requireT.True(ok)
	requireT.Equal(blocks.BlockID(1), id)
	for _, b := range recordV0.Payload(buf) {
		requireT.Equal(byte(0xab), b)
	}
}

func TestCommitWrapsAtRegionEnd(t *testing.T) {
	requireT := require.New(t)

	store := newTestStore(t, 8)

	fs, err := Mount(newTestConfig(store, 0, 8))
	requireT.NoError(err)

	for i := 0; i < 8; i++ {
		commitPayload(t, fs, byte(i))
	}
	requireT.Equal(blocks.BlockAddress(0), fs.NextPosition())

	// The next commit overwrites the oldest block.
	commitPayload(t, fs, 0xff)
	requireT.Equal(blocks.BlockAddress(1), fs.NextPosition())

	buf := make([]byte, testBlockSize)
	requireT.NoError(store.ReadBlock(0, buf))
	id, ok := recordV0.Verify(buf)
	requireT.True(ok)
	requireT.Equal(blocks.BlockID(9), id)
}

func TestCommitFailureKeepsState(t *testing.T) {
	requireT := require.New(t)

	store := newTestStore(t, 8)
	failing := &failingStore{Store: store, failures: 1}

	fs, err := Mount(newTestConfig(failing, 0, 8))
	requireT.NoError(err)

	payload := fs.BorrowPayload()
	for i := range payload {
		payload[i] = 0xab
	}

	requireT.ErrorIs(fs.Commit(), errDeviceGone)
	requireT.Equal(blocks.BlockAddress(0), fs.NextPosition())
	requireT.Equal(blocks.BlockID(1), fs.NextID())

	// The staged payload survived, so the retry writes the same record.
	for _, b := range fs.BorrowPayload() {
		requireT.Equal(byte(0xab), b)
	}
	requireT.NoError(fs.Commit())
	requireT.Equal(blocks.BlockAddress(1), fs.NextPosition())
	requireT.Equal(blocks.BlockID(2), fs.NextID())

	buf := make([]byte, testBlockSize)
	requireT.NoError(store.ReadBlock(0, buf))
	id, ok := recordV0.Verify(buf)
	requireT.True(ok)
	requireT.Equal(blocks.BlockID(1), id)
	for _, b := range recordV0.Payload(buf) {
		requireT.Equal(byte(0xab), b)
	}
}

func TestIDsGrowAcrossRemounts(t *testing.T) {
	requireT := require.New(t)

	store := newTestStore(t, 8)
	cfg := newTestConfig(store, 0, 8)

	fs, err := Mount(cfg)
	requireT.NoError(err)
	commitPayload(t, fs, 1)
	commitPayload(t, fs, 2)

	fs, err = Mount(cfg)
	requireT.NoError(err)
	commitPayload(t, fs, 3)

	buf := make([]byte, testBlockSize)
	previousID := blocks.BlockID(0)
	for pos := blocks.BlockAddress(0); pos < 3; pos++ {
		requireT.NoError(store.ReadBlock(pos, buf))
		id, ok := recordV0.Verify(buf)
		requireT.True(ok)
		requireT.Greater(id, previousID)
		previousID = id
	}
	requireT.Equal(blocks.BlockID(3), previousID)
}
