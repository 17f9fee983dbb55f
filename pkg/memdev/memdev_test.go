package memdev

import (
	"io"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSeek(t *testing.T) {
	requireT := require.New(t)

	dev := New(128)

	offset, err := dev.Seek(16, io.SeekStart)
	requireT.NoError(err)
	requireT.Equal(int64(16), offset)

	offset, err = dev.Seek(8, io.SeekCurrent)
	requireT.NoError(err)
	requireT.Equal(int64(24), offset)

	offset, err = dev.Seek(-8, io.SeekEnd)
	requireT.NoError(err)
	requireT.Equal(int64(120), offset)

	_, err = dev.Seek(-1, io.SeekStart)
	requireT.Error(err)

	_, err = dev.Seek(1, io.SeekEnd)
	requireT.Error(err)

	// A failed seek keeps the previous position.
	offset, err = dev.Seek(0, io.SeekCurrent)
	requireT.NoError(err)
	requireT.Equal(int64(120), offset)
}

func TestReadWrite(t *testing.T) {
	requireT := require.New(t)

	dev := New(128)

	_, err := dev.Seek(32, io.SeekStart)
	requireT.NoError(err)

	data := []byte("ring buffer block")
	n, err := dev.Write(data)
	requireT.NoError(err)
	requireT.Equal(len(data), n)

	_, err = dev.Seek(32, io.SeekStart)
	requireT.NoError(err)

	read := make([]byte, len(data))
	n, err = dev.Read(read)
	requireT.NoError(err)
	requireT.Equal(len(data), n)
	requireT.Equal(data, read)
}

func TestSyncAndSize(t *testing.T) {
	requireT := require.New(t)

	dev := New(128)
	requireT.NoError(dev.Sync())
	requireT.Equal(int64(128), dev.Size())
}
