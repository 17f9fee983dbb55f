package appendfs

import (
	"github.com/pkg/errors"

	"github.com/outofforest/appendfs/blocks"
	recordV0 "github.com/outofforest/appendfs/blocks/record/v0"
)

// blockInfo is the footer information recovery needs from a probed block.
type blockInfo struct {
	ID    blocks.BlockID
	Valid bool
}

// recover locates the newest valid block of the region and positions the
// write head right after it. The region is probed at both ends first, then a
// binary search narrows down the head, so the total number of block reads is
// bounded by log2(N) plus a small constant.
//
// Reading the ring forward from the beginning, ids form at most two growing
// runs separated by a single drop (the seam). The head is the last block of
// the run which starts at the beginning of the region.
func (fs *Filesystem) recover() error {
	begin, end := fs.ring.begin, fs.ring.end

	first, err := fs.probe(begin)
	if err != nil {
		return err
	}
	last, err := fs.probe(end - 1)
	if err != nil {
		return err
	}

	switch {
	case !first.Valid && !last.Valid:
		// The region is empty.
		fs.nextPos = begin
		fs.nextID = 1
		return nil

	case !first.Valid:
		// The ring wrapped and the newest write, landing at the first
		// position, was torn. The newest intact block is the last one and the
		// torn block gets overwritten by the next commit.
		fs.nextPos = begin
		fs.nextID = last.ID + 1
		return nil

	case !last.Valid:
		// Unwrapped region: a growing run of valid blocks followed by an
		// empty tail. The head is the largest valid position.
		head, headID, err := fs.searchNewest(first.ID, func(info blockInfo) bool {
			return info.Valid
		})
		if err != nil {
			return err
		}
		fs.nextPos = head + 1
		fs.nextID = headID + 1
		return nil
	}

	switch {
	case last.ID > first.ID:
		// Ids grow across the whole region, so the seam sits on the region
		// boundary and the last block is the newest one.
		fs.nextPos = begin
		fs.nextID = last.ID + 1
		return nil

	case last.ID == first.ID:
		// Duplicate ids cannot appear under the append discipline.
		return errors.WithStack(ErrCorrupted)
	}

	// The id drops somewhere inside the region. The head is the largest
	// position still carrying an id from the run started at the beginning.
	// An invalid block met here is the torn head itself and bounds the search
	// from the right, together with the blocks of the older run.
	head, headID, err := fs.searchNewest(first.ID, func(info blockInfo) bool {
		return info.Valid && info.ID >= first.ID
	})
	if err != nil {
		return err
	}
	fs.nextPos = head + 1
	fs.nextID = headID + 1
	return nil
}

// searchNewest binary-searches the largest position in [begin, end-1) whose
// block satisfies keep and returns it together with the id of its block.
// keep must hold at begin and must not hold at end-1.
func (fs *Filesystem) searchNewest(beginID blocks.BlockID, keep func(blockInfo) bool) (blocks.BlockAddress, blocks.BlockID, error) {
	lo, hi := fs.ring.begin, fs.ring.end-1
	lastID := beginID

	for hi-lo > 1 {
		mid := lo + (hi-lo)/2

		info, err := fs.probe(mid)
		if err != nil {
			return 0, 0, err
		}

		if keep(info) {
			lo, lastID = mid, info.ID
		} else {
			hi = mid
		}
	}

	return lo, lastID, nil
}

func (fs *Filesystem) probe(pos blocks.BlockAddress) (blockInfo, error) {
	if err := fs.store.ReadBlock(pos, fs.buf); err != nil {
		return blockInfo{}, err
	}
	id, ok := recordV0.Verify(fs.buf)
	return blockInfo{ID: id, Valid: ok}, nil
}
