package blocks

import (
	"hash/crc32"

	"github.com/pkg/errors"
)

// Checksum computes the CRC32 checksum of bytes using the 0xEDB88320 polynomial.
func Checksum(b []byte) Hash {
	return Hash(crc32.ChecksumIEEE(b))
}

// VerifyChecksum verifies that checksum of provided data matches the expected one.
func VerifyChecksum(address BlockAddress, p []byte, expectedChecksum Hash) error {
	checksum := Checksum(p)
	if checksum == expectedChecksum {
		return nil
	}
	return errors.Errorf("checksum mismatch for block %d, computed: %08x, expected: %08x",
		address, uint32(checksum), uint32(expectedChecksum))
}
