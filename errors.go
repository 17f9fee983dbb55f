package appendfs

import "github.com/pkg/errors"

// ErrTooSmallRegion is returned by mount and format if the region cannot hold a ring.
var ErrTooSmallRegion = errors.New("region must contain at least two blocks")

// ErrCorrupted is returned when recovery finds a block sequence impossible
// under the append discipline.
var ErrCorrupted = errors.New("inconsistent block sequence in region")
