package abltop

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jhux2/nalu-wind/mesh"
)

func near(a, b float64) (l bool) {
	return nearTol(a, b, 1.e-10)
}

func nearTol(a, b, tol float64) (l bool) {
	if math.Abs(a-b) < tol*(1+math.Abs(a)) {
		l = true
	}
	return
}

type testCase struct {
	imax, jmax, kmax int
	dx, dy, dz       float64
	bcX, bcY         BCType
	zSample          float64
	m                *mesh.Mesh
	parts            []mesh.Part
	bc               *TopBC
}

// buildBC assembles a box mesh with the sampling plane one layer below
// the top boundary and a fully initialized TopBC over np workers.
func buildBC(t *testing.T, imax, jmax int, dx, dy float64, bcX, bcY BCType, np int) (tc *testCase) {
	t.Helper()
	var (
		kmax = 3
		dz   = 1.0
	)
	tc = &testCase{
		imax: imax, jmax: jmax, kmax: kmax,
		dx: dx, dy: dy, dz: dz,
		bcX: bcX, bcY: bcY,
		zSample: float64(kmax-2) * dz,
	}
	tc.m = mesh.NewBoxMesh(imax, jmax, kmax, dx, dy, dz, true)
	tc.m.RegisterField(mesh.VelocityField, 3)
	tc.m.RegisterField(mesh.BCVelocityField, 3)
	tc.parts = mesh.PartitionMesh(tc.m, np)
	bc, err := NewTopBC(tc.parts, []int{imax, jmax, kmax}, [2]BCType{bcX, bcY}, tc.zSample)
	require.NoError(t, err)
	require.NoError(t, bc.DiscoverConnectivity())
	require.NoError(t, bc.Initialize())
	tc.bc = bc
	return
}

// setVelocity writes w = f(x, y) on every node and the mean velocity into
// the horizontal components.
func (tc *testCase) setVelocity(meanU, meanV float64, f func(x, y float64) float64) {
	vel := tc.m.Field(mesh.VelocityField)
	for nid := range tc.m.Nodes {
		node := tc.m.Nodes[nid]
		v := vel.Values(mesh.NodeID(nid))
		v[0] = meanU
		v[1] = meanV
		v[2] = f(node.Coords[0], node.Coords[1])
	}
}

// planeFromFunc evaluates f on the sampling plane in global slot order.
func (tc *testCase) planeFromFunc(f func(x, y float64) float64) (w []float64) {
	w = make([]float64, tc.imax*tc.jmax)
	for j := 0; j < tc.jmax; j++ {
		for i := 0; i < tc.imax; i++ {
			w[j*tc.imax+i] = f(float64(i)*tc.dx, float64(j)*tc.dy)
		}
	}
	return
}

// boundaryField reads one component of the written boundary velocity in
// global slot order.
func (tc *testCase) boundaryField(c int) (vals []float64) {
	var (
		bcVel = tc.m.Field(mesh.BCVelocityField)
	)
	vals = make([]float64, tc.imax*tc.jmax)
	for nid := range tc.m.Nodes {
		node := tc.m.Nodes[nid]
		if node.Tag[2] != tc.kmax-1 {
			continue
		}
		vals[node.Tag[1]*tc.imax+node.Tag[0]] = bcVel.At(mesh.NodeID(nid), c)
	}
	return
}
