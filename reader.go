package appendfs

import (
	"go.uber.org/zap"

	"github.com/outofforest/appendfs/blocks"
	recordV0 "github.com/outofforest/appendfs/blocks/record/v0"
)

// Reader iterates over the records of the region from the oldest one to the
// newest one. It snapshots the head at creation time, so records committed
// later are not yielded.
type Reader struct {
	fs         *Filesystem
	pos        blocks.BlockAddress
	snapshotID blocks.BlockID
	remaining  uint64
}

// NewReader returns a reader positioned at the oldest record of the region.
func (fs *Filesystem) NewReader() *Reader {
	return &Reader{
		fs:         fs,
		pos:        fs.nextPos,
		snapshotID: fs.nextID,
		remaining:  fs.ring.size(),
	}
}

// Next reads the next record in age order into p, which must be exactly one
// block long, and returns its id together with the payload region of p. Once
// every record up to the snapshot head has been yielded, the returned payload
// is nil. Erased blocks are skipped silently, corrupted ones with a warning.
func (r *Reader) Next(p []byte) (blocks.BlockID, []byte, error) {
	for r.remaining > 0 {
		pos := r.pos
		r.pos = r.fs.ring.advance(r.pos, 1)
		r.remaining--

		if err := r.fs.store.ReadBlock(pos, p); err != nil {
			return 0, nil, err
		}

		id, ok := recordV0.Verify(p)
		if !ok {
			if recordV0.DecodeFooter(p).ID != 0 {
				r.fs.logger.Warn("skipping corrupted block",
					zap.Uint64("address", uint64(pos)))
			}
			continue
		}
		if id >= r.snapshotID {
			// Committed after the snapshot was taken.
			continue
		}

		return id, recordV0.Payload(p), nil
	}

	return 0, nil, nil
}
