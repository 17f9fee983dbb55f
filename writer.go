package appendfs

import (
	recordV0 "github.com/outofforest/appendfs/blocks/record/v0"
)

// BorrowPayload returns the payload region of the scratch buffer for the
// caller to fill before Commit. No copy is made. The staged bytes survive a
// failed Commit, so a retry writes the same payload.
func (fs *Filesystem) BorrowPayload() []byte {
	return recordV0.Payload(fs.buf)
}

// Commit stamps the staged payload with the next id and writes it to the next
// position of the ring, overwriting the oldest block once the region is full.
// On success the head advances. On error neither the head nor the staged
// payload is touched, so the caller may retry with the same staged payload.
func (fs *Filesystem) Commit() error {
	recordV0.Stamp(fs.buf, fs.nextID)
	if err := fs.store.WriteBlock(fs.nextPos, fs.buf); err != nil {
		return err
	}

	fs.nextID++
	fs.nextPos = fs.ring.advance(fs.nextPos, 1)
	return nil
}
