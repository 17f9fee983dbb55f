package appendfs

import "github.com/outofforest/appendfs/blocks"

// ring maps logical advances of the write head onto physical block addresses
// of the region [begin, end).
type ring struct {
	begin blocks.BlockAddress
	end   blocks.BlockAddress
}

// size returns the number of blocks forming the ring.
func (r ring) size() uint64 {
	return uint64(r.end - r.begin)
}

// advance returns the physical address k positions after pos, wrapping at the
// end of the region. pos must belong to the region.
func (r ring) advance(pos blocks.BlockAddress, k uint64) blocks.BlockAddress {
	return r.begin + blocks.BlockAddress((uint64(pos-r.begin)+k)%r.size())
}
