// Package abltop implements an open upper boundary condition for
// atmospheric boundary layer simulations on structured Cartesian meshes.
// A potential flow problem is solved in the thin layer between an interior
// sampling plane and the top of the domain: the vertical velocity sampled
// on the lower plane determines, mode by mode in the horizontal wavenumber
// space, the full velocity vector on the upper boundary. The mesh nodes
// must carry persisted structured (i,j,k) index tags from the mesh
// generation step; the horizontal spacing must be uniform at the sampling
// elevation.
package abltop

import (
	"fmt"
	"sync"

	"github.com/jhux2/nalu-wind/mesh"
)

// TopBC owns one configured boundary condition: the index catalog, the
// transform plan cache, the spectral solver and the boundary writer. The
// grid configuration is static for the simulation run, so all of this
// state is built once, on the first Execute if not explicitly earlier, and
// persists until Destroy.
type TopBC struct {
	parts   []mesh.Part
	horizBC [2]BCType

	cat    *Catalog
	plans  *PlanCache
	solver *Solver
	writer *BoundaryWriter

	needToInitialize bool

	// Per-step scratch, sized at initialization
	gatherBuf []float64
	wSamp     []float64
}

// NewTopBC configures the boundary condition for a partitioned mesh.
// gridDims is (imax, jmax) or (imax, jmax, kmax); horizBC holds the x and y
// horizontal boundary types; zSample is the sampling plane elevation.
func NewTopBC(parts []mesh.Part, gridDims []int, horizBC [2]BCType, zSample float64) (bc *TopBC, err error) {
	cat, err := NewCatalog(parts, gridDims, horizBC, zSample)
	if err != nil {
		return
	}
	bc = &TopBC{
		parts:            parts,
		horizBC:          horizBC,
		cat:              cat,
		needToInitialize: true,
	}
	return
}

// DiscoverConnectivity scans the mesh into per-role node lists. Invoked
// once before initialization.
func (bc *TopBC) DiscoverConnectivity() (err error) {
	return bc.cat.DiscoverConnectivity()
}

// Initialize builds the catalog orderings, the geometry and the transform
// plans. Idempotent after the first success; a second call changes nothing
// and creates no plan resources.
func (bc *TopBC) Initialize() (err error) {
	if !bc.needToInitialize {
		return
	}
	if err = bc.cat.Initialize(); err != nil {
		return
	}
	g := bc.cat.Geom
	if bc.plans, err = NewPlanCache(g.Imax, g.Jmax, bc.horizBC[0], bc.horizBC[1]); err != nil {
		return
	}
	bc.solver = NewSolver(bc.cat, bc.plans)
	bc.writer = NewBoundaryWriter(bc.cat)
	bc.gatherBuf = make([]float64, g.Imax*g.Jmax)
	bc.wSamp = make([]float64, g.Imax*g.Jmax)
	bc.needToInitialize = false
	return
}

// Destroy releases the cached transform plans. The instance is not usable
// afterwards.
func (bc *TopBC) Destroy() {
	if bc.plans != nil {
		bc.plans.Release()
	}
}

// Execute performs one gather/solve/scatter cycle. It is a blocking
// collective over all ranks: the sampling plane is assembled in the
// catalog's structured order, solved once (every rank would reach the
// identical result from the identical assembled plane), and each rank
// writes back the boundary nodes it owns.
func (bc *TopBC) Execute() (err error) {
	if bc.needToInitialize {
		if err = bc.Initialize(); err != nil {
			return
		}
	}
	var (
		np      = len(bc.parts)
		wg      = sync.WaitGroup{}
		rankErr = make([]error, np)
		sumU    = make([]float64, np)
		sumV    = make([]float64, np)
	)
	// Gather phase: every rank contributes its sampling plane values into
	// its descriptor slice of the concatenated buffer, with partial sums
	// for the plane-averaged mean velocity.
	for r := 0; r < np; r++ {
		wg.Add(1)
		go func(r int) {
			defer wg.Done()
			rankErr[r] = bc.gatherRank(r, &sumU[r], &sumV[r])
		}(r)
	}
	wg.Wait()
	for r := 0; r < np; r++ {
		if rankErr[r] != nil {
			return rankErr[r]
		}
	}
	bc.cat.OrderGather(bc.wSamp, bc.gatherBuf)
	var (
		g    = bc.cat.Geom
		n    = float64(g.Imax * g.Jmax)
		uAvg = [2]float64{0, 0}
	)
	for r := 0; r < np; r++ {
		uAvg[0] += sumU[r]
		uAvg[1] += sumV[r]
	}
	uAvg[0] /= n
	uAvg[1] /= n
	uBC, vBC, wBC := bc.solver.Solve(bc.wSamp, uAvg)
	// Scatter phase: ranks own disjoint boundary nodes.
	for r := 0; r < np; r++ {
		wg.Add(1)
		go func(r int) {
			defer wg.Done()
			bc.writer.Write(r, uBC, vBC, wBC)
		}(r)
	}
	wg.Wait()
	return
}

func (bc *TopBC) gatherRank(r int, sumU, sumV *float64) (err error) {
	var (
		cat  = bc.cat
		part = cat.parts[r]
		vel  = part.Mesh.Field(mesh.VelocityField)
		seq  = cat.SampSeq[r]
	)
	if len(seq) != cat.SampCounts[r] {
		return fmt.Errorf("%w: rank %d sampling list holds %d nodes, descriptor expects %d",
			ErrDistributionMismatch, r, len(seq), cat.SampCounts[r])
	}
	off := cat.SampOffsets[r]
	for loc, nid := range seq {
		v := vel.Values(nid)
		bc.gatherBuf[off+loc] = v[2]
		*sumU += v[0]
		*sumV += v[1]
	}
	return
}

// Geometry exposes the derived grid geometry after initialization.
func (bc *TopBC) Geometry() GridGeometry { return bc.cat.Geom }

// Catalog exposes the index catalog, read-only after initialization.
func (bc *TopBC) Catalog() *Catalog { return bc.cat }

// Plans exposes the transform plan cache, owned by the solver component.
func (bc *TopBC) Plans() *PlanCache { return bc.plans }
