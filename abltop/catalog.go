package abltop

import (
	"fmt"
	"math"
	"sort"

	"github.com/jhux2/nalu-wind/mesh"
	"github.com/jhux2/nalu-wind/utils"
)

const spacingTol = 1.e-8

// Catalog reconstructs structured plane orderings from the unordered,
// distributed node sets of the mesh. Every node on the sampling and boundary
// planes carries a persisted (i,j,k) tag; the tag is the sole ordering key,
// so the resulting sequences are identical on every rank regardless of
// discovery order.
type Catalog struct {
	imax, jmax, kmax int
	bcX, bcY         BCType
	zSample          float64

	parts []mesh.Part

	discovered  bool
	initialized bool

	Geom GridGeometry

	// Rank-local node sequences ordered by structured index. Node IDs are
	// weak references into mesh storage, never owned here.
	SampSeq    [][]mesh.NodeID
	BCSeq      [][]mesh.NodeID
	XInflowSeq [][]mesh.NodeID
	YInflowSeq [][]mesh.NodeID

	// Distribution descriptor for the sampling plane gather: per-rank
	// element counts and prefix-sum offsets into the concatenated buffer.
	SampCounts  utils.Index
	SampOffsets utils.Index

	// orderOp permutes the concatenated per-rank gather buffer into the
	// global ordering slot(i,j) = j*imax + i.
	orderOp utils.CSR

	// Global slot of each rank-local boundary node, aligned with BCSeq.
	BCSlot []utils.Index

	// Inflow edge slots over the whole boundary plane and their weights,
	// normalized to unit mean so a uniform mean inflow profile is preserved.
	XInflowSlots  utils.Index
	YInflowSlots  utils.Index
	XInflowWeight []float64
	YInflowWeight []float64
}

func NewCatalog(parts []mesh.Part, gridDims []int, horizBC [2]BCType, zSample float64) (cat *Catalog, err error) {
	if len(gridDims) != 2 && len(gridDims) != 3 {
		err = fmt.Errorf("%w: grid dimensions must be (imax, jmax) or (imax, jmax, kmax), have %v",
			ErrConfiguration, gridDims)
		return
	}
	cat = &Catalog{
		imax:    gridDims[0],
		jmax:    gridDims[1],
		bcX:     horizBC[0],
		bcY:     horizBC[1],
		zSample: zSample,
		parts:   parts,
	}
	if len(gridDims) == 3 {
		cat.kmax = gridDims[2]
	}
	if cat.imax < 4 || cat.jmax < 4 {
		err = fmt.Errorf("%w: horizontal point counts must be at least 4, have imax=%d jmax=%d",
			ErrConfiguration, cat.imax, cat.jmax)
		cat = nil
	}
	return
}

func (cat *Catalog) slot(n mesh.Node) int {
	return n.Tag[1]*cat.imax + n.Tag[0]
}

// DiscoverConnectivity scans each rank's nodes into raw role lists: the
// sampling plane is the structured layer nearest zSample, the boundary plane
// is the top layer, and the inflow edge sets are the boundary plane rows at
// the extremes of any inflow direction. Called exactly once.
func (cat *Catalog) DiscoverConnectivity() (err error) {
	if cat.discovered {
		return fmt.Errorf("%w: connectivity discovery invoked twice", ErrConfiguration)
	}
	// Resolve kmax from the tags when the grid dimensions omitted it, and
	// locate the structured layer nearest the requested sampling elevation.
	var (
		kTop    = -1
		kSample = -1
		bestDz  = math.Inf(1)
	)
	for _, part := range cat.parts {
		for _, nid := range part.Nodes {
			node := part.Mesh.Nodes[nid]
			if node.Tag[2] > kTop {
				kTop = node.Tag[2]
			}
			if dz := math.Abs(node.Coords[2] - cat.zSample); dz < bestDz {
				bestDz = dz
				kSample = node.Tag[2]
			}
		}
	}
	if cat.kmax == 0 {
		cat.kmax = kTop + 1
	}
	if kTop != cat.kmax-1 {
		return fmt.Errorf("%w: top structured layer k=%d disagrees with kmax=%d",
			ErrConfiguration, kTop, cat.kmax)
	}
	if kSample < 0 || kSample >= kTop {
		return fmt.Errorf("%w: sampling elevation %g does not select a layer below the upper boundary",
			ErrConfiguration, cat.zSample)
	}
	np := len(cat.parts)
	cat.SampSeq = make([][]mesh.NodeID, np)
	cat.BCSeq = make([][]mesh.NodeID, np)
	cat.XInflowSeq = make([][]mesh.NodeID, np)
	cat.YInflowSeq = make([][]mesh.NodeID, np)
	for r, part := range cat.parts {
		for _, nid := range part.Nodes {
			node := part.Mesh.Nodes[nid]
			switch node.Tag[2] {
			case kSample:
				cat.SampSeq[r] = append(cat.SampSeq[r], nid)
			case kTop:
				cat.BCSeq[r] = append(cat.BCSeq[r], nid)
				if cat.bcX == Inflow && (node.Tag[0] == 0 || node.Tag[0] == cat.imax-1) {
					cat.XInflowSeq[r] = append(cat.XInflowSeq[r], nid)
				}
				if cat.bcY == Inflow && (node.Tag[1] == 0 || node.Tag[1] == cat.jmax-1) {
					cat.YInflowSeq[r] = append(cat.YInflowSeq[r], nid)
				}
			}
		}
	}
	cat.discovered = true
	return
}

// Initialize derives the grid geometry, sorts every role list into its
// structured ordering, and builds the sampling plane distribution
// descriptor. Idempotent after the first success.
func (cat *Catalog) Initialize() (err error) {
	if cat.initialized {
		return
	}
	if !cat.discovered {
		return fmt.Errorf("%w: initialize called before connectivity discovery", ErrConfiguration)
	}
	if !cat.bcX.valid() || !cat.bcY.valid() {
		return fmt.Errorf("%w: horizontal boundary types (%v, %v) must be periodic or inflow",
			ErrConfiguration, cat.bcX, cat.bcY)
	}
	nTotal := 0
	for _, part := range cat.parts {
		nTotal += len(part.Nodes)
	}
	if nTotal != cat.imax*cat.jmax*cat.kmax {
		return fmt.Errorf("%w: mesh holds %d nodes, grid dimensions %dx%dx%d require %d",
			ErrConfiguration, nTotal, cat.imax, cat.jmax, cat.kmax, cat.imax*cat.jmax*cat.kmax)
	}
	for r := range cat.parts {
		cat.sortByTag(r, cat.SampSeq[r])
		cat.sortByTag(r, cat.BCSeq[r])
		cat.sortByTag(r, cat.XInflowSeq[r])
		cat.sortByTag(r, cat.YInflowSeq[r])
	}
	if err = cat.buildDescriptor(); err != nil {
		return
	}
	if err = cat.validatePlane("boundary", cat.BCSeq); err != nil {
		return
	}
	if err = cat.buildGeometry(); err != nil {
		return
	}
	cat.buildBCSlots()
	cat.buildInflowWeights()
	cat.initialized = true
	return
}

func (cat *Catalog) Initialized() bool { return cat.initialized }

// sortByTag orders a node list by structured index, j-major then i. The
// comparator is the only ordering authority; it makes the sequence
// reproducible independently on every rank.
func (cat *Catalog) sortByTag(r int, seq []mesh.NodeID) {
	m := cat.parts[r].Mesh
	sort.SliceStable(seq, func(a, b int) bool {
		ta, tb := m.Nodes[seq[a]].Tag, m.Nodes[seq[b]].Tag
		if ta[1] != tb[1] {
			return ta[1] < tb[1]
		}
		return ta[0] < tb[0]
	})
}

// buildDescriptor assembles the sampling plane distribution descriptor and
// the ordering operator, validating that every (i,j) slot is claimed exactly
// once across all ranks.
func (cat *Catalog) buildDescriptor() (err error) {
	var (
		np    = len(cat.parts)
		nSamp = cat.imax * cat.jmax
	)
	cat.SampCounts = utils.NewIndex(np)
	cat.SampOffsets = utils.NewIndex(np)
	total := 0
	for r := range cat.parts {
		cat.SampCounts[r] = len(cat.SampSeq[r])
		cat.SampOffsets[r] = total
		total += cat.SampCounts[r]
	}
	if total != nSamp {
		return fmt.Errorf("%w: sampling plane holds %d nodes across %d ranks, expected imax*jmax = %d",
			ErrConfiguration, total, np, nSamp)
	}
	seen := make([]bool, nSamp)
	order := utils.NewDOK(nSamp, nSamp)
	for r, part := range cat.parts {
		for loc, nid := range cat.SampSeq[r] {
			node := part.Mesh.Nodes[nid]
			i, j := node.Tag[0], node.Tag[1]
			if i < 0 || i >= cat.imax || j < 0 || j >= cat.jmax {
				return fmt.Errorf("%w: sampling plane node tag (%d,%d) outside grid %dx%d",
					ErrConfiguration, i, j, cat.imax, cat.jmax)
			}
			s := cat.slot(node)
			if seen[s] {
				return fmt.Errorf("%w: duplicate structured index (%d,%d) on sampling plane",
					ErrConfiguration, i, j)
			}
			seen[s] = true
			order.Set(s, cat.SampOffsets[r]+loc, 1)
		}
	}
	// total == nSamp and no duplicates implies no missing slots
	cat.orderOp = order.ToCSR()
	return
}

// validatePlane checks that a plane's node tags tile (imax, jmax) exactly
// once across all ranks.
func (cat *Catalog) validatePlane(name string, seqs [][]mesh.NodeID) (err error) {
	var (
		nPlane = cat.imax * cat.jmax
		seen   = make([]bool, nPlane)
		total  = 0
	)
	for r, part := range cat.parts {
		total += len(seqs[r])
		for _, nid := range seqs[r] {
			node := part.Mesh.Nodes[nid]
			i, j := node.Tag[0], node.Tag[1]
			if i < 0 || i >= cat.imax || j < 0 || j >= cat.jmax {
				return fmt.Errorf("%w: %s plane node tag (%d,%d) outside grid %dx%d",
					ErrConfiguration, name, i, j, cat.imax, cat.jmax)
			}
			s := cat.slot(node)
			if seen[s] {
				return fmt.Errorf("%w: duplicate structured index (%d,%d) on %s plane",
					ErrConfiguration, i, j, name)
			}
			seen[s] = true
		}
	}
	if total != nPlane {
		return fmt.Errorf("%w: %s plane holds %d nodes, expected imax*jmax = %d",
			ErrConfiguration, name, total, nPlane)
	}
	return
}

// buildGeometry derives spacings, extents and the vertical gap from the
// discovered coordinates, enforcing uniform horizontal spacing.
func (cat *Catalog) buildGeometry() (err error) {
	var (
		xByI  = make([]float64, cat.imax)
		yByJ  = make([]float64, cat.jmax)
		haveI = make([]bool, cat.imax)
		haveJ = make([]bool, cat.jmax)
		zSamp = math.NaN()
		zTop  = math.Inf(-1)
	)
	for r, part := range cat.parts {
		for _, nid := range cat.SampSeq[r] {
			node := part.Mesh.Nodes[nid]
			i, j := node.Tag[0], node.Tag[1]
			xByI[i], haveI[i] = node.Coords[0], true
			yByJ[j], haveJ[j] = node.Coords[1], true
			if math.IsNaN(zSamp) {
				zSamp = node.Coords[2]
			}
		}
		for _, nid := range cat.BCSeq[r] {
			if z := part.Mesh.Nodes[nid].Coords[2]; z > zTop {
				zTop = z
			}
		}
	}
	for i, ok := range haveI {
		if !ok {
			return fmt.Errorf("%w: no sampling plane node found at structured column i=%d", ErrConfiguration, i)
		}
	}
	for j, ok := range haveJ {
		if !ok {
			return fmt.Errorf("%w: no sampling plane node found at structured row j=%d", ErrConfiguration, j)
		}
	}
	dx, errX := uniformSpacing(xByI)
	if errX != nil {
		return fmt.Errorf("%w: x direction: %v", ErrConfiguration, errX)
	}
	dy, errY := uniformSpacing(yByJ)
	if errY != nil {
		return fmt.Errorf("%w: y direction: %v", ErrConfiguration, errY)
	}
	cat.Geom = GridGeometry{
		Imax:    cat.imax,
		Jmax:    cat.jmax,
		Kmax:    cat.kmax,
		Dx:      dx,
		Dy:      dy,
		XL:      extent(cat.bcX, cat.imax, dx),
		YL:      extent(cat.bcY, cat.jmax, dy),
		ZSample: zSamp,
		DeltaZ:  zTop - zSamp,
	}
	if cat.Geom.DeltaZ <= 0 {
		return fmt.Errorf("%w: sampling plane at z=%g is not below the upper boundary at z=%g",
			ErrConfiguration, zSamp, zTop)
	}
	return
}

func uniformSpacing(coords []float64) (d float64, err error) {
	d = coords[1] - coords[0]
	if d <= 0 {
		err = fmt.Errorf("non-increasing coordinates, spacing %g", d)
		return
	}
	for i := 1; i < len(coords); i++ {
		di := coords[i] - coords[i-1]
		if math.Abs(di-d) > spacingTol*d {
			err = fmt.Errorf("non-uniform spacing: interval %d has %g, expected %g", i, di, d)
			return
		}
	}
	return
}

// The period of a periodic direction spans one spacing past the last node;
// an inflow direction ends on its boundary nodes.
func extent(bc BCType, n int, d float64) float64 {
	if bc == Periodic {
		return float64(n) * d
	}
	return float64(n-1) * d
}

func (cat *Catalog) buildBCSlots() {
	cat.BCSlot = make([]utils.Index, len(cat.parts))
	for r, part := range cat.parts {
		cat.BCSlot[r] = utils.NewIndex(len(cat.BCSeq[r]))
		for loc, nid := range cat.BCSeq[r] {
			cat.BCSlot[r][loc] = cat.slot(part.Mesh.Nodes[nid])
		}
	}
}

// buildInflowWeights assembles, per inflow direction, the global edge slot
// list and a per-node weight vector. Weights are normalized to unit mean so
// applying weight*mean across an edge reproduces a uniform mean inflow
// profile exactly.
func (cat *Catalog) buildInflowWeights() {
	if cat.bcX == Inflow {
		cat.XInflowSlots = nil
		for _, i := range []int{0, cat.imax - 1} {
			for j := 0; j < cat.jmax; j++ {
				cat.XInflowSlots = append(cat.XInflowSlots, j*cat.imax+i)
			}
		}
		cat.XInflowWeight = normalizedWeights(len(cat.XInflowSlots))
	}
	if cat.bcY == Inflow {
		cat.YInflowSlots = nil
		for _, j := range []int{0, cat.jmax - 1} {
			for i := 0; i < cat.imax; i++ {
				cat.YInflowSlots = append(cat.YInflowSlots, j*cat.imax+i)
			}
		}
		cat.YInflowWeight = normalizedWeights(len(cat.YInflowSlots))
	}
}

func normalizedWeights(n int) (w []float64) {
	w = make([]float64, n)
	sum := 0.
	for i := range w {
		w[i] = 1
		sum += w[i]
	}
	scale := float64(n) / sum
	for i := range w {
		w[i] *= scale
	}
	return
}

// OrderGather permutes the concatenated per-rank gather buffer into the
// globally ordered plane array.
func (cat *Catalog) OrderGather(dst, gathered []float64) {
	cat.orderOp.Apply(dst, gathered)
}
