package abltop

import "errors"

// Configuration and distribution failures are fatal to the simulation run:
// the mesh topology is static, so there is no retry path.
var (
	ErrConfiguration        = errors.New("abl top bc: configuration error")
	ErrDistributionMismatch = errors.New("abl top bc: distribution mismatch")
)
