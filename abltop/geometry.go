package abltop

import "fmt"

// BCType selects the horizontal boundary treatment per direction.
type BCType int

const (
	Periodic BCType = iota
	Inflow
)

func (t BCType) String() string {
	switch t {
	case Periodic:
		return "periodic"
	case Inflow:
		return "inflow"
	}
	return fmt.Sprintf("BCType(%d)", int(t))
}

func (t BCType) valid() bool {
	return t == Periodic || t == Inflow
}

// ParseBCType maps an input-file spelling to a BCType.
func ParseBCType(s string) (t BCType, err error) {
	switch s {
	case "periodic":
		t = Periodic
	case "inflow":
		t = Inflow
	default:
		err = fmt.Errorf("%w: unknown horizontal boundary type %q, must be periodic or inflow",
			ErrConfiguration, s)
	}
	return
}

// GridGeometry is derived once from the discovered node coordinates during
// Initialize and never recomputed. Horizontal spacing is uniform; the
// extents follow the transform convention per direction: L = n*dx for a
// periodic direction, L = (n-1)*dx for an inflow direction.
type GridGeometry struct {
	Imax, Jmax, Kmax int
	Dx, Dy           float64
	XL, YL           float64
	ZSample          float64 // actual sampling plane elevation
	DeltaZ           float64 // vertical gap between sampling plane and upper boundary
}
