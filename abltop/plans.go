package abltop

import (
	"fmt"

	"gonum.org/v1/gonum/dsp/fourier"
)

// PlanCache owns the spectral transform plans for one (imax, jmax,
// boundary-condition) configuration. Plans are built once at
// initialization and reused for every timestep; construction dominates a
// single execution, so the cache is never rebuilt mid-run. The plan
// objects carry internal scratch and must be invoked from one goroutine at
// a time.
//
// Transform selection per direction:
//   - periodic: half-complex real FFT (x) or full complex FFT (y),
//     convention e^(-i k x) forward, so a derivative multiplies
//     coefficients by +i*k;
//   - inflow: DST-I over the interior points for fields that vanish at the
//     edge (w and the transverse component), paired with DCT-I over all
//     points for the streamwise component, whose sine-to-cosine pairing
//     shares the wavenumbers k = pi*m/L and the round-trip factor
//     2*(n-1).
//
// Inverse helpers apply the convention's normalization, so forward followed
// by inverse reproduces the input.
type PlanCache struct {
	imax, jmax int
	bcX, bcY   BCType

	// periodic-periodic
	fourierX *fourier.FFT
	fourierY *fourier.CmplxFFT

	// inflow-periodic, either orientation: sized along the inflow (nInf)
	// and periodic (nPer) directions after orientation normalization
	nInf, nPer int
	sinInf     *fourier.DST
	cosInf     *fourier.DCT
	fourierPer *fourier.FFT

	// inflow-inflow
	sinX *fourier.DST
	cosX *fourier.DCT
	sinY *fourier.DST
	cosY *fourier.DCT

	released bool
}

func NewPlanCache(imax, jmax int, bcX, bcY BCType) (pc *PlanCache, err error) {
	if !bcX.valid() || !bcY.valid() {
		err = fmt.Errorf("%w: horizontal boundary types (%v, %v) must be periodic or inflow",
			ErrConfiguration, bcX, bcY)
		return
	}
	pc = &PlanCache{imax: imax, jmax: jmax, bcX: bcX, bcY: bcY}
	switch {
	case bcX == Periodic && bcY == Periodic:
		pc.fourierX = fourier.NewFFT(imax)
		pc.fourierY = fourier.NewCmplxFFT(jmax)
	case bcX == Inflow && bcY == Periodic:
		pc.nInf, pc.nPer = imax, jmax
		pc.sinInf = fourier.NewDST(imax - 2)
		pc.cosInf = fourier.NewDCT(imax)
		pc.fourierPer = fourier.NewFFT(jmax)
	case bcX == Periodic && bcY == Inflow:
		pc.nInf, pc.nPer = jmax, imax
		pc.sinInf = fourier.NewDST(jmax - 2)
		pc.cosInf = fourier.NewDCT(jmax)
		pc.fourierPer = fourier.NewFFT(imax)
	default: // inflow-inflow
		pc.sinX = fourier.NewDST(imax - 2)
		pc.cosX = fourier.NewDCT(imax)
		pc.sinY = fourier.NewDST(jmax - 2)
		pc.cosY = fourier.NewDCT(jmax)
	}
	return
}

// Release drops the plans. Safe to call once at teardown; repeated calls
// are no-ops.
func (pc *PlanCache) Release() {
	if pc.released {
		return
	}
	pc.fourierX, pc.fourierY = nil, nil
	pc.sinInf, pc.cosInf, pc.fourierPer = nil, nil, nil
	pc.sinX, pc.cosX, pc.sinY, pc.cosY = nil, nil, nil, nil
	pc.released = true
}

func (pc *PlanCache) Released() bool { return pc.released }

func (pc *PlanCache) checkLive() {
	if pc.released {
		panic("abl top bc: transform plans used after release")
	}
}

// --- periodic-periodic ---------------------------------------------------

// NCoefX is the half-complex coefficient count along x.
func (pc *PlanCache) NCoefX() int { return pc.imax/2 + 1 }

// Forward2D transforms the plane (layout j-major, i fastest) into
// half-complex coefficients indexed q*NCoefX() + m, with m the nonnegative
// x mode and q the (wrapped) signed y mode. Unnormalized.
func (pc *PlanCache) Forward2D(w []float64) (coef []complex128) {
	pc.checkLive()
	var (
		ncx  = pc.NCoefX()
		row  = make([]complex128, ncx)
		col  = make([]complex128, pc.jmax)
		colT = make([]complex128, pc.jmax)
	)
	coef = make([]complex128, pc.jmax*ncx)
	for j := 0; j < pc.jmax; j++ {
		pc.fourierX.Coefficients(row, w[j*pc.imax:(j+1)*pc.imax])
		copy(coef[j*ncx:(j+1)*ncx], row)
	}
	for m := 0; m < ncx; m++ {
		for j := 0; j < pc.jmax; j++ {
			col[j] = coef[j*ncx+m]
		}
		pc.fourierY.Coefficients(colT, col)
		for j := 0; j < pc.jmax; j++ {
			coef[j*ncx+m] = colT[j]
		}
	}
	return
}

// Inverse2D is the normalized inverse of Forward2D.
func (pc *PlanCache) Inverse2D(coef []complex128, w []float64) {
	pc.checkLive()
	var (
		ncx   = pc.NCoefX()
		col   = make([]complex128, pc.jmax)
		colT  = make([]complex128, pc.jmax)
		row   = make([]complex128, ncx)
		scale = 1. / float64(pc.imax*pc.jmax)
		work  = make([]complex128, len(coef))
	)
	copy(work, coef)
	for m := 0; m < ncx; m++ {
		for j := 0; j < pc.jmax; j++ {
			col[j] = work[j*ncx+m]
		}
		pc.fourierY.Sequence(colT, col)
		for j := 0; j < pc.jmax; j++ {
			work[j*ncx+m] = colT[j]
		}
	}
	out := make([]float64, pc.imax)
	for j := 0; j < pc.jmax; j++ {
		copy(row, work[j*ncx:(j+1)*ncx])
		pc.fourierX.Sequence(out, row)
		for i := 0; i < pc.imax; i++ {
			w[j*pc.imax+i] = out[i] * scale
		}
	}
	return
}

// --- inflow-periodic (orientation-normalized: a = inflow axis) -----------

// NCoefPer is the half-complex coefficient count along the periodic axis.
func (pc *PlanCache) NCoefPer() int { return pc.nPer/2 + 1 }

// ForwardMixed transforms a plane laid out b-major (inflow axis fastest,
// nInf points per row, nPer rows) into sine/Fourier coefficients indexed
// m*NCoefPer() + q, with sine mode m+1 (m = 0..nInf-3) and periodic mode q.
// The inflow edge values do not enter the sine expansion. Unnormalized.
func (pc *PlanCache) ForwardMixed(w []float64) (coef []complex128) {
	pc.checkLive()
	var (
		ni   = pc.nInf - 2
		ncp  = pc.NCoefPer()
		sin  = make([]float64, ni)
		sinT = make([]float64, ni)
		sArr = make([]float64, ni*pc.nPer) // sine coefficients, b-major
		col  = make([]float64, pc.nPer)
		colT = make([]complex128, ncp)
	)
	for b := 0; b < pc.nPer; b++ {
		copy(sin, w[b*pc.nInf+1:b*pc.nInf+1+ni])
		pc.sinInf.Transform(sinT, sin)
		copy(sArr[b*ni:(b+1)*ni], sinT)
	}
	coef = make([]complex128, ni*ncp)
	for m := 0; m < ni; m++ {
		for b := 0; b < pc.nPer; b++ {
			col[b] = sArr[b*ni+m]
		}
		pc.fourierPer.Coefficients(colT, col)
		copy(coef[m*ncp:(m+1)*ncp], colT)
	}
	return
}

// mixedNorm is the shared round-trip factor of the DST-I/DCT-I pairing and
// the periodic FFT.
func (pc *PlanCache) mixedNorm() float64 {
	return 2 * float64(pc.nInf-1) * float64(pc.nPer)
}

// InverseMixedSin inverts sine/Fourier coefficients (layout of
// ForwardMixed) onto the plane, writing zeros on the inflow edge rows and
// applying the normalization.
func (pc *PlanCache) InverseMixedSin(coef []complex128, w []float64) {
	pc.checkLive()
	var (
		ni    = pc.nInf - 2
		ncp   = pc.NCoefPer()
		col   = make([]float64, pc.nPer)
		row   = make([]complex128, ncp)
		sin   = make([]float64, ni)
		sinT  = make([]float64, ni)
		sArr  = make([]float64, ni*pc.nPer)
		scale = 1. / pc.mixedNorm()
	)
	for m := 0; m < ni; m++ {
		copy(row, coef[m*ncp:(m+1)*ncp])
		pc.fourierPer.Sequence(col, row)
		for b := 0; b < pc.nPer; b++ {
			sArr[b*ni+m] = col[b]
		}
	}
	for b := 0; b < pc.nPer; b++ {
		copy(sin, sArr[b*ni:(b+1)*ni])
		pc.sinInf.Transform(sinT, sin)
		w[b*pc.nInf] = 0
		w[b*pc.nInf+pc.nInf-1] = 0
		for a := 0; a < ni; a++ {
			w[b*pc.nInf+1+a] = sinT[a] * scale
		}
	}
	return
}

// InverseMixedCos inverts cosine/Fourier coefficients indexed
// m*NCoefPer() + q with cosine mode m = 0..nInf-1, covering the edge
// points, and applies the shared normalization.
func (pc *PlanCache) InverseMixedCos(coef []complex128, w []float64) {
	pc.checkLive()
	var (
		na    = pc.nInf
		ncp   = pc.NCoefPer()
		col   = make([]float64, pc.nPer)
		row   = make([]complex128, ncp)
		cos   = make([]float64, na)
		cosT  = make([]float64, na)
		cArr  = make([]float64, na*pc.nPer)
		scale = 1. / pc.mixedNorm()
	)
	for m := 0; m < na; m++ {
		copy(row, coef[m*ncp:(m+1)*ncp])
		pc.fourierPer.Sequence(col, row)
		for b := 0; b < pc.nPer; b++ {
			cArr[b*na+m] = col[b]
		}
	}
	for b := 0; b < pc.nPer; b++ {
		copy(cos, cArr[b*na:(b+1)*na])
		pc.cosInf.Transform(cosT, cos)
		for a := 0; a < na; a++ {
			w[b*na+a] = cosT[a] * scale
		}
	}
	return
}

// --- inflow-inflow -------------------------------------------------------

// ForwardSinSin transforms the plane (j-major, i fastest) into double-sine
// coefficients indexed q*(imax-2) + m, sine modes (m+1, q+1). Unnormalized.
func (pc *PlanCache) ForwardSinSin(w []float64) (coef []float64) {
	pc.checkLive()
	var (
		ni   = pc.imax - 2
		nj   = pc.jmax - 2
		sin  = make([]float64, ni)
		sinT = make([]float64, ni)
		sArr = make([]float64, ni*pc.jmax)
		col  = make([]float64, nj)
		colT = make([]float64, nj)
	)
	for j := 0; j < pc.jmax; j++ {
		copy(sin, w[j*pc.imax+1:j*pc.imax+1+ni])
		pc.sinX.Transform(sinT, sin)
		copy(sArr[j*ni:(j+1)*ni], sinT)
	}
	coef = make([]float64, ni*nj)
	for m := 0; m < ni; m++ {
		for j := 0; j < nj; j++ {
			col[j] = sArr[(j+1)*ni+m]
		}
		pc.sinY.Transform(colT, col)
		for q := 0; q < nj; q++ {
			coef[q*ni+m] = colT[q]
		}
	}
	return
}

func (pc *PlanCache) doubleNorm() float64 {
	return 4 * float64(pc.imax-1) * float64(pc.jmax-1)
}

// InverseSinSin inverts double-sine coefficients onto the plane, zero on
// all inflow edges, normalized.
func (pc *PlanCache) InverseSinSin(coef, w []float64) {
	pc.checkLive()
	var (
		ni    = pc.imax - 2
		nj    = pc.jmax - 2
		col   = make([]float64, nj)
		colT  = make([]float64, nj)
		sin   = make([]float64, ni)
		sinT  = make([]float64, ni)
		sArr  = make([]float64, ni*pc.jmax)
		scale = 1. / pc.doubleNorm()
	)
	for m := 0; m < ni; m++ {
		for q := 0; q < nj; q++ {
			col[q] = coef[q*ni+m]
		}
		pc.sinY.Transform(colT, col)
		for j := 0; j < nj; j++ {
			sArr[(j+1)*ni+m] = colT[j]
		}
	}
	for i := range w {
		w[i] = 0
	}
	for j := 1; j < pc.jmax-1; j++ {
		copy(sin, sArr[j*ni:(j+1)*ni])
		pc.sinX.Transform(sinT, sin)
		for a := 0; a < ni; a++ {
			w[j*pc.imax+1+a] = sinT[a] * scale
		}
	}
	return
}

// InverseCosSin inverts cosine-in-x, sine-in-y coefficients indexed
// q*imax + m (cosine mode m = 0..imax-1, sine mode q+1), normalized.
func (pc *PlanCache) InverseCosSin(coef, w []float64) {
	pc.checkLive()
	var (
		na    = pc.imax
		nj    = pc.jmax - 2
		col   = make([]float64, nj)
		colT  = make([]float64, nj)
		cos   = make([]float64, na)
		cosT  = make([]float64, na)
		cArr  = make([]float64, na*pc.jmax)
		scale = 1. / pc.doubleNorm()
	)
	for m := 0; m < na; m++ {
		for q := 0; q < nj; q++ {
			col[q] = coef[q*na+m]
		}
		pc.sinY.Transform(colT, col)
		for j := 0; j < nj; j++ {
			cArr[(j+1)*na+m] = colT[j]
		}
	}
	for i := range w {
		w[i] = 0
	}
	for j := 1; j < pc.jmax-1; j++ {
		copy(cos, cArr[j*na:(j+1)*na])
		pc.cosX.Transform(cosT, cos)
		for a := 0; a < na; a++ {
			w[j*pc.imax+a] = cosT[a] * scale
		}
	}
	return
}

// InverseSinCos inverts sine-in-x, cosine-in-y coefficients indexed
// q*(imax-2) + m (sine mode m+1, cosine mode q = 0..jmax-1), normalized.
func (pc *PlanCache) InverseSinCos(coef, w []float64) {
	pc.checkLive()
	var (
		ni    = pc.imax - 2
		nb    = pc.jmax
		col   = make([]float64, nb)
		colT  = make([]float64, nb)
		sin   = make([]float64, ni)
		sinT  = make([]float64, ni)
		sArr  = make([]float64, ni*nb)
		scale = 1. / pc.doubleNorm()
	)
	for m := 0; m < ni; m++ {
		for q := 0; q < nb; q++ {
			col[q] = coef[q*ni+m]
		}
		pc.cosY.Transform(colT, col)
		for j := 0; j < nb; j++ {
			sArr[j*ni+m] = colT[j]
		}
	}
	for i := range w {
		w[i] = 0
	}
	for j := 0; j < nb; j++ {
		copy(sin, sArr[j*ni:(j+1)*ni])
		pc.sinX.Transform(sinT, sin)
		for a := 0; a < ni; a++ {
			w[j*pc.imax+1+a] = sinT[a] * scale
		}
	}
	return
}
