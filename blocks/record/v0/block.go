package v0

import (
	"github.com/outofforest/photon"
	"github.com/pkg/errors"

	"github.com/outofforest/appendfs/blocks"
)

const (
	// FooterSize is the number of trailing bytes occupied by the footer.
	FooterSize = 16

	// checksumSize is the number of trailing bytes occupied by the checksum field.
	checksumSize = 4
)

// Footer is the trailing metadata of a record block. Field order matches the
// on-media layout: id, version, reserved padding, checksum. The checksum is
// computed over all block bytes preceding the checksum field.
type Footer struct {
	ID       blocks.BlockID
	Version  blocks.SchemaVersion
	Reserved uint16
	Checksum blocks.Hash
}

// ValidateBlockSize checks that blocks of the given size may hold a footer and
// a payload. Size must be a multiple of 8 so the footer fields stay aligned.
func ValidateBlockSize(blockSize int64) error {
	if blockSize <= FooterSize {
		return errors.Errorf("block size %d does not leave room for payload, minimum is %d", blockSize, FooterSize+8)
	}
	if blockSize%8 != 0 {
		return errors.Errorf("block size %d is not a multiple of 8", blockSize)
	}
	return nil
}

// PayloadCapacity returns the number of payload bytes fitting into a block of the given size.
func PayloadCapacity(blockSize int64) int64 {
	return blockSize - FooterSize
}

// Payload returns the payload region of the block buffer.
func Payload(buf []byte) []byte {
	return buf[:len(buf)-FooterSize]
}

// Stamp writes the footer into the trailing bytes of buf, computing the
// checksum over everything preceding the checksum field.
func Stamp(buf []byte, id blocks.BlockID) {
	f := footerView(buf)
	f.V.ID = id
	f.V.Version = blocks.RecordV0
	f.V.Reserved = 0
	f.V.Checksum = blocks.Checksum(buf[:len(buf)-checksumSize])
}

// Verify decodes the footer of buf and returns the block ID if the stored
// checksum matches recomputation, the schema version is recognized and the ID
// is not the erased sentinel.
func Verify(buf []byte) (blocks.BlockID, bool) {
	f := footerView(buf)
	if f.V.Checksum != blocks.Checksum(buf[:len(buf)-checksumSize]) {
		return 0, false
	}
	if f.V.Version != blocks.RecordV0 {
		return 0, false
	}
	if f.V.ID == 0 {
		return 0, false
	}
	return f.V.ID, true
}

// DecodeFooter returns the footer stored in buf without validating it.
func DecodeFooter(buf []byte) Footer {
	return *footerView(buf).V
}

func footerView(buf []byte) photon.Union[*Footer] {
	return photon.NewFromBytes[Footer](buf[len(buf)-FooterSize:])
}
