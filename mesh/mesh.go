package mesh

import (
	"fmt"

	"github.com/jhux2/nalu-wind/utils"
)

// Field names used by the boundary condition algorithms. Field storage is
// owned by the mesh; algorithms hold node IDs only.
const (
	VelocityField       = "velocity"
	BCVelocityField     = "bc_velocity"
	DensityField        = "density"
	ExposedAreaVecField = "exposed_area_vec"
)

// NodeID is a weak back-reference into a Mesh's node storage.
type NodeID int

// Node carries the coordinates and the persisted structured (i,j,k) index
// tag produced by the mesh generation step.
type Node struct {
	Coords [3]float64
	Tag    [3]int
}

// Field is nodal storage with Ncomp values per node, node-major.
type Field struct {
	Name  string
	Ncomp int
	Data  []float64
}

func (f *Field) At(n NodeID, c int) float64 {
	return f.Data[int(n)*f.Ncomp+c]
}

func (f *Field) Set(n NodeID, c int, val float64) {
	f.Data[int(n)*f.Ncomp+c] = val
}

// Values returns the per-node component slice, aliasing the field storage.
func (f *Field) Values(n NodeID) []float64 {
	return f.Data[int(n)*f.Ncomp : int(n+1)*f.Ncomp]
}

type Mesh struct {
	Nodes  []Node
	fields map[string]*Field
}

func NewMesh(nNodes int) (m *Mesh) {
	m = &Mesh{
		Nodes:  make([]Node, nNodes),
		fields: make(map[string]*Field),
	}
	return
}

func (m *Mesh) RegisterField(name string, ncomp int) (f *Field) {
	if _, exists := m.fields[name]; exists {
		panic(fmt.Errorf("field %q already registered", name))
	}
	f = &Field{
		Name:  name,
		Ncomp: ncomp,
		Data:  make([]float64, ncomp*len(m.Nodes)),
	}
	m.fields[name] = f
	return
}

func (m *Mesh) Field(name string) (f *Field) {
	var (
		exists bool
	)
	if f, exists = m.fields[name]; !exists {
		panic(fmt.Errorf("field %q is not registered on this mesh", name))
	}
	return
}

// Part is the rank-local view of a distributed mesh: the subset of node IDs
// owned by one worker. All workers share the underlying Mesh storage, which
// stands in for the per-rank field storage of a distributed run.
type Part struct {
	Mesh  *Mesh
	Rank  int
	Nodes []NodeID
}

// PartitionMesh block-partitions the mesh nodes over np ranks. The partition
// is fixed for the life of the simulation.
func PartitionMesh(m *Mesh, np int) (parts []Part) {
	var (
		pm = utils.NewPartitionMap(np, len(m.Nodes))
	)
	parts = make([]Part, pm.ParallelDegree)
	for n := 0; n < pm.ParallelDegree; n++ {
		kMin, kMax := pm.GetBucketRange(n)
		ids := make([]NodeID, 0, kMax-kMin)
		for k := kMin; k < kMax; k++ {
			ids = append(ids, NodeID(k))
		}
		parts[n] = Part{Mesh: m, Rank: n, Nodes: ids}
	}
	return
}
