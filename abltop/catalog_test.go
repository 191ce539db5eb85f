package abltop

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhux2/nalu-wind/mesh"
)

func discoveredCatalog(t *testing.T, m *mesh.Mesh, np int, horizBC [2]BCType) (cat *Catalog, parts []mesh.Part) {
	t.Helper()
	parts = mesh.PartitionMesh(m, np)
	cat, err := NewCatalog(parts, []int{6, 6, 3}, horizBC, 1.0)
	require.NoError(t, err)
	require.NoError(t, cat.DiscoverConnectivity())
	return
}

// findNode locates a node by structured tag.
func findNode(m *mesh.Mesh, i, j, k int) mesh.NodeID {
	for nid := range m.Nodes {
		tag := m.Nodes[nid].Tag
		if tag[0] == i && tag[1] == j && tag[2] == k {
			return mesh.NodeID(nid)
		}
	}
	panic("tag not present")
}

func TestCatalogOrderGather(t *testing.T) {
	// On a scrambled mesh split over several ranks, the ordering operator
	// must permute the concatenated rank-local gather buffer into the
	// global slot ordering, whatever the discovery order was.
	var (
		m           = mesh.NewBoxMesh(6, 6, 3, 1, 1, 1, true)
		cat, parts  = discoveredCatalog(t, m, 3, [2]BCType{Periodic, Periodic})
		nSamp       = 36
		buf         = make([]float64, nSamp)
		ordered     = make([]float64, nSamp)
		totalGather = 0
	)
	require.NoError(t, cat.Initialize())
	for r, part := range parts {
		off := cat.SampOffsets[r]
		for loc, nid := range cat.SampSeq[r] {
			buf[off+loc] = float64(cat.slot(part.Mesh.Nodes[nid]))
			totalGather++
		}
	}
	assert.Equal(t, nSamp, totalGather)
	cat.OrderGather(ordered, buf)
	for s := 0; s < nSamp; s++ {
		assert.Equal(t, float64(s), ordered[s])
	}
}

func TestCatalogGeometry(t *testing.T) {
	var (
		m      = mesh.NewBoxMesh(6, 6, 3, 0.5, 0.25, 1, true)
		parts  = mesh.PartitionMesh(m, 2)
		horiz  = [2]BCType{Periodic, Inflow}
		cat, _ = NewCatalog(parts, []int{6, 6, 3}, horiz, 1.0)
	)
	require.NoError(t, cat.DiscoverConnectivity())
	require.NoError(t, cat.Initialize())
	g := cat.Geom
	assert.True(t, near(g.Dx, 0.5))
	assert.True(t, near(g.Dy, 0.25))
	assert.True(t, near(g.XL, 3.0))  // periodic: 6*dx
	assert.True(t, near(g.YL, 1.25)) // inflow: 5*dy
	assert.True(t, near(g.ZSample, 1))
	assert.True(t, near(g.DeltaZ, 1))
	// Inflow edge weights are normalized to unit mean
	require.Len(t, cat.YInflowSlots, 12)
	for _, w := range cat.YInflowWeight {
		assert.True(t, near(w, 1))
	}
	assert.Nil(t, cat.XInflowSlots)
}

func TestCatalogInitializeIdempotent(t *testing.T) {
	m := mesh.NewBoxMesh(6, 6, 3, 1, 1, 1, true)
	cat, _ := discoveredCatalog(t, m, 2, [2]BCType{Periodic, Periodic})
	require.NoError(t, cat.Initialize())
	seq0 := cat.SampSeq[0]
	require.NoError(t, cat.Initialize())
	assert.True(t, cat.Initialized())
	assert.Equal(t, seq0, cat.SampSeq[0])
}

func TestCatalogDuplicateTag(t *testing.T) {
	m := mesh.NewBoxMesh(6, 6, 3, 1, 1, 1, true)
	cat, _ := discoveredCatalog(t, m, 2, [2]BCType{Periodic, Periodic})
	// Two sampling plane nodes claiming the same structured index
	a := findNode(m, 0, 0, 1)
	b := findNode(m, 1, 0, 1)
	m.Nodes[b].Tag = m.Nodes[a].Tag
	assert.ErrorIs(t, cat.Initialize(), ErrConfiguration)
}

func TestCatalogNodeCountMismatch(t *testing.T) {
	var (
		m     = mesh.NewBoxMesh(6, 6, 3, 1, 1, 1, true)
		parts = mesh.PartitionMesh(m, 2)
	)
	// A rank silently missing one node
	parts[0].Nodes = parts[0].Nodes[1:]
	cat, err := NewCatalog(parts, []int{6, 6, 3}, [2]BCType{Periodic, Periodic}, 1.0)
	require.NoError(t, err)
	require.NoError(t, cat.DiscoverConnectivity())
	assert.ErrorIs(t, cat.Initialize(), ErrConfiguration)
}

func TestCatalogNonUniformSpacing(t *testing.T) {
	m := mesh.NewBoxMesh(6, 6, 3, 1, 1, 1, true)
	for nid := range m.Nodes {
		if m.Nodes[nid].Tag[0] == 2 {
			m.Nodes[nid].Coords[0] += 0.3
		}
	}
	cat, _ := discoveredCatalog(t, m, 2, [2]BCType{Periodic, Periodic})
	assert.ErrorIs(t, cat.Initialize(), ErrConfiguration)
}

func TestCatalogDiscoverTwice(t *testing.T) {
	m := mesh.NewBoxMesh(6, 6, 3, 1, 1, 1, false)
	cat, _ := discoveredCatalog(t, m, 1, [2]BCType{Periodic, Periodic})
	assert.ErrorIs(t, cat.DiscoverConnectivity(), ErrConfiguration)
}

func TestCatalogInitializeBeforeDiscover(t *testing.T) {
	var (
		m     = mesh.NewBoxMesh(6, 6, 3, 1, 1, 1, false)
		parts = mesh.PartitionMesh(m, 1)
	)
	cat, err := NewCatalog(parts, []int{6, 6, 3}, [2]BCType{Periodic, Periodic}, 1.0)
	require.NoError(t, err)
	assert.ErrorIs(t, cat.Initialize(), ErrConfiguration)
}

func TestCatalogInvalidBCType(t *testing.T) {
	m := mesh.NewBoxMesh(6, 6, 3, 1, 1, 1, false)
	cat, _ := discoveredCatalog(t, m, 1, [2]BCType{BCType(9), Periodic})
	assert.ErrorIs(t, cat.Initialize(), ErrConfiguration)
}

func TestCatalogGridTooSmall(t *testing.T) {
	var (
		m     = mesh.NewBoxMesh(6, 6, 3, 1, 1, 1, false)
		parts = mesh.PartitionMesh(m, 1)
	)
	_, err := NewCatalog(parts, []int{3, 6, 3}, [2]BCType{Periodic, Periodic}, 1.0)
	assert.ErrorIs(t, err, ErrConfiguration)
	_, err = NewCatalog(parts, []int{6}, [2]BCType{Periodic, Periodic}, 1.0)
	assert.ErrorIs(t, err, ErrConfiguration)
}

func TestCatalogSamplingAboveBoundary(t *testing.T) {
	var (
		m     = mesh.NewBoxMesh(6, 6, 3, 1, 1, 1, false)
		parts = mesh.PartitionMesh(m, 1)
	)
	// Sampling elevation resolves to the top layer itself
	cat, err := NewCatalog(parts, []int{6, 6, 3}, [2]BCType{Periodic, Periodic}, 2.0)
	require.NoError(t, err)
	assert.ErrorIs(t, cat.DiscoverConnectivity(), ErrConfiguration)
}
