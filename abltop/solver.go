package abltop

import (
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/jhux2/nalu-wind/utils"
)

// Solver maps the assembled sampling-plane vertical velocity to the upper
// boundary velocity through the potential flow relation. For a source-free
// layer each harmonic mode of the velocity potential decays upward as
// e^(-|k| z), so the boundary coefficients follow from the sampling
// coefficients as
//
//	uHat = -i (kx/|k|) wHat e^(-|k| deltaZ)
//	vHat = -i (ky/|k|) wHat e^(-|k| deltaZ)
//	wHat =             wHat e^(-|k| deltaZ)
//
// with the i factor absorbed into the sine-to-cosine pairing along inflow
// directions. The zero-wavenumber mode carries no information through the
// harmonic decomposition and is set directly from the supplied mean.
type Solver struct {
	cat   *Catalog
	plans *PlanCache
}

func NewSolver(cat *Catalog, plans *PlanCache) (s *Solver) {
	return &Solver{cat: cat, plans: plans}
}

// Solve dispatches on the configured boundary combination. wSamp is the
// globally ordered sampling plane (slot = j*imax + i); the outputs share
// that ordering over the boundary plane.
func (s *Solver) Solve(wSamp []float64, uAvg [2]float64) (uBC, vBC, wBC []float64) {
	switch {
	case s.cat.bcX == Periodic && s.cat.bcY == Periodic:
		uBC, vBC, wBC = s.PotentialBCPeriodicPeriodic(wSamp, uAvg)
	case s.cat.bcX == Inflow && s.cat.bcY == Inflow:
		uBC, vBC, wBC = s.PotentialBCInflowInflow(wSamp, uAvg)
	default:
		uBC, vBC, wBC = s.PotentialBCInflowPeriodic(wSamp, uAvg)
	}
	return
}

// PotentialBCPeriodicPeriodic solves the fully periodic case with the 2D
// Fourier pair.
func (s *Solver) PotentialBCPeriodicPeriodic(wSamp []float64, uAvg [2]float64) (uBC, vBC, wBC []float64) {
	var (
		g    = s.cat.Geom
		ncx  = s.plans.NCoefX()
		wHat = s.plans.Forward2D(wSamp)
		uHat = make([]complex128, len(wHat))
		vHat = make([]complex128, len(wHat))
		wTop = make([]complex128, len(wHat))
	)
	for q := 0; q < g.Jmax; q++ {
		qs := q
		if q > g.Jmax/2 {
			qs = q - g.Jmax
		}
		ky := 2 * math.Pi * float64(qs) / g.YL
		for m := 0; m < ncx; m++ {
			if m == 0 && q == 0 {
				continue
			}
			kx := 2 * math.Pi * float64(m) / g.XL
			k := math.Hypot(kx, ky)
			decay := math.Exp(-k * g.DeltaZ)
			c := wHat[q*ncx+m]
			uHat[q*ncx+m] = complex(0, -kx/k*decay) * c
			vHat[q*ncx+m] = complex(0, -ky/k*decay) * c
			wTop[q*ncx+m] = complex(decay, 0) * c
		}
	}
	// Zero-wavenumber mode: never divided by |k|. The horizontal
	// coefficients carry the mean velocity, scaled to the unnormalized
	// forward convention; the vertical mean is zero through an
	// impermeable-in-the-mean upper boundary.
	n := float64(g.Imax * g.Jmax)
	uHat[0] = complex(uAvg[0]*n, 0)
	vHat[0] = complex(uAvg[1]*n, 0)
	wTop[0] = 0
	uBC = make([]float64, g.Imax*g.Jmax)
	vBC = make([]float64, g.Imax*g.Jmax)
	wBC = make([]float64, g.Imax*g.Jmax)
	s.plans.Inverse2D(uHat, uBC)
	s.plans.Inverse2D(vHat, vBC)
	s.plans.Inverse2D(wTop, wBC)
	return
}

// PotentialBCInflowPeriodic solves the mixed case for either orientation.
// The mirrored (periodic-x, inflow-y) case transposes the plane so the
// inflow direction is always the fast axis of the mixed transforms.
func (s *Solver) PotentialBCInflowPeriodic(wSamp []float64, uAvg [2]float64) (uBC, vBC, wBC []float64) {
	var (
		g = s.cat.Geom
	)
	if s.cat.bcX == Inflow {
		uBC, vBC, wBC = s.solveMixed(wSamp, g.XL, g.YL, uAvg[0], uAvg[1])
		applyInflowProfile(uBC, s.cat.XInflowSlots, s.cat.XInflowWeight, uAvg[0])
		return
	}
	wT := transpose(wSamp, g.Imax, g.Jmax)
	vT, uT, wTopT := s.solveMixed(wT, g.YL, g.XL, uAvg[1], uAvg[0])
	uBC = transpose(uT, g.Jmax, g.Imax)
	vBC = transpose(vT, g.Jmax, g.Imax)
	wBC = transpose(wTopT, g.Jmax, g.Imax)
	applyInflowProfile(vBC, s.cat.YInflowSlots, s.cat.YInflowWeight, uAvg[1])
	return
}

// solveMixed works in the orientation-normalized layout of the plan cache:
// the inflow axis is the fast index with nInf points, the periodic axis has
// nPer points. Returns the velocity along the inflow axis, along the
// periodic axis, and the vertical component. Every retained mode has
// |k| > 0 because the sine expansion starts at mode one; the mean enters as
// the cosine zero mode (inflow axis) and a uniform physical-space offset
// (periodic axis, whose transverse component has no mean mode in the sine
// basis).
func (s *Solver) solveMixed(w []float64, lInf, lPer, meanInf, meanPer float64) (uInf, uPer, wB []float64) {
	var (
		g       = s.cat.Geom
		nInf    = s.plans.nInf
		nPer    = s.plans.nPer
		ni      = nInf - 2
		ncp     = s.plans.NCoefPer()
		cw      = s.plans.ForwardMixed(w)
		uInfHat = make([]complex128, nInf*ncp)
		uPerHat = make([]complex128, ni*ncp)
		wHat    = make([]complex128, ni*ncp)
	)
	for m := 0; m < ni; m++ {
		ka := math.Pi * float64(m+1) / lInf
		for q := 0; q < ncp; q++ {
			kb := 2 * math.Pi * float64(q) / lPer
			k := math.Hypot(ka, kb)
			decay := math.Exp(-k * g.DeltaZ)
			c := cw[m*ncp+q]
			uInfHat[(m+1)*ncp+q] = complex(-ka/k*decay, 0) * c
			uPerHat[m*ncp+q] = complex(0, -kb/k*decay) * c
			wHat[m*ncp+q] = complex(decay, 0) * c
		}
	}
	// Cosine zero mode carries the inflow-axis mean
	uInfHat[0] = complex(meanInf*s.plans.mixedNorm(), 0)
	uInf = make([]float64, nInf*nPer)
	uPer = make([]float64, nInf*nPer)
	wB = make([]float64, nInf*nPer)
	s.plans.InverseMixedCos(uInfHat, uInf)
	s.plans.InverseMixedSin(uPerHat, uPer)
	s.plans.InverseMixedSin(wHat, wB)
	floats.AddConst(meanPer, uPer)
	return
}

// PotentialBCInflowInflow solves the double-inflow case with sine/cosine
// pairs along both directions.
func (s *Solver) PotentialBCInflowInflow(wSamp []float64, uAvg [2]float64) (uBC, vBC, wBC []float64) {
	var (
		g    = s.cat.Geom
		ni   = g.Imax - 2
		nj   = g.Jmax - 2
		cw   = s.plans.ForwardSinSin(wSamp)
		uHat = make([]float64, nj*g.Imax)
		vHat = make([]float64, g.Jmax*ni)
		wHat = make([]float64, nj*ni)
	)
	for q := 0; q < nj; q++ {
		ky := math.Pi * float64(q+1) / g.YL
		for m := 0; m < ni; m++ {
			kx := math.Pi * float64(m+1) / g.XL
			k := math.Hypot(kx, ky)
			decay := math.Exp(-k * g.DeltaZ)
			c := cw[q*ni+m]
			uHat[q*g.Imax+m+1] = -kx / k * decay * c
			vHat[(q+1)*ni+m] = -ky / k * decay * c
			wHat[q*ni+m] = decay * c
		}
	}
	uBC = make([]float64, g.Imax*g.Jmax)
	vBC = make([]float64, g.Imax*g.Jmax)
	wBC = make([]float64, g.Imax*g.Jmax)
	s.plans.InverseCosSin(uHat, uBC)
	s.plans.InverseSinCos(vHat, vBC)
	s.plans.InverseSinSin(wHat, wBC)
	// The double-sine basis has no mean mode; the mean enters in physical
	// space before the edge profiles are imposed.
	floats.AddConst(uAvg[0], uBC)
	floats.AddConst(uAvg[1], vBC)
	applyInflowProfile(uBC, s.cat.XInflowSlots, s.cat.XInflowWeight, uAvg[0])
	applyInflowProfile(vBC, s.cat.YInflowSlots, s.cat.YInflowWeight, uAvg[1])
	return
}

// applyInflowProfile imposes the prescribed mean inflow on an edge,
// overriding the spectral solve's edge behavior.
func applyInflowProfile(field []float64, slots utils.Index, weights []float64, mean float64) {
	for idx, s := range slots {
		field[s] = mean * weights[idx]
	}
}

func transpose(src []float64, nFast, nSlow int) (dst []float64) {
	dst = make([]float64, len(src))
	for b := 0; b < nSlow; b++ {
		for a := 0; a < nFast; a++ {
			dst[a*nSlow+b] = src[b*nFast+a]
		}
	}
	return
}
