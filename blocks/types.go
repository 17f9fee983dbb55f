package blocks

// BlockID is the position of a block in the logical write sequence. IDs grow
// monotonically across the whole lifetime of the region, including rotations.
// ID 0 is reserved for erased or unformatted blocks.
type BlockID uint64

// SentinelID is stamped on the first block written after formatting.
const SentinelID BlockID = 1

// BlockAddress is the address (index) of the block on the device.
type BlockAddress uint64

// SchemaVersion defines version of the on-media block format.
type SchemaVersion uint16

// Schema versions
const (
	RecordV0 SchemaVersion = iota
)

// Hash represents the CRC32 checksum of a block.
type Hash uint32
