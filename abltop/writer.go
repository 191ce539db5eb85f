package abltop

import (
	"github.com/jhux2/nalu-wind/mesh"
)

// BoundaryWriter deposits solved boundary values into the externally owned
// bc velocity field. Pure scatter: each rank writes only the boundary nodes
// it owns, indexed through the catalog's boundary sequence and slot map.
type BoundaryWriter struct {
	cat *Catalog
}

func NewBoundaryWriter(cat *Catalog) (bw *BoundaryWriter) {
	return &BoundaryWriter{cat: cat}
}

func (bw *BoundaryWriter) Write(rank int, uBC, vBC, wBC []float64) {
	var (
		part = bw.cat.parts[rank]
		f    = part.Mesh.Field(mesh.BCVelocityField)
	)
	for loc, nid := range bw.cat.BCSeq[rank] {
		s := bw.cat.BCSlot[rank][loc]
		v := f.Values(nid)
		v[0] = uBC[s]
		v[1] = vBC[s]
		v[2] = wBC[s]
	}
}
