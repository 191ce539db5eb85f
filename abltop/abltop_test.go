package abltop

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhux2/nalu-wind/mesh"
)

func TestExecutePeriodicEndToEnd(t *testing.T) {
	// Full gather/solve/scatter cycle over two workers on a scrambled 4x4x3
	// box: a single kx mode on the sampling plane, a mean u of 2.
	var (
		tc    = buildBC(t, 4, 4, 1, 1, Periodic, Periodic, 2)
		g     = tc.bc.Geometry()
		kx    = 2 * math.Pi / g.XL
		decay = math.Exp(-kx * g.DeltaZ)
	)
	tc.setVelocity(2, 0, func(x, y float64) float64 {
		return math.Sin(kx * x)
	})
	require.NoError(t, tc.bc.Execute())
	var (
		uBC = tc.boundaryField(0)
		vBC = tc.boundaryField(1)
		wBC = tc.boundaryField(2)
	)
	for j := 0; j < 4; j++ {
		for i := 0; i < 4; i++ {
			var (
				s = j*4 + i
				x = float64(i)
			)
			assert.True(t, near(uBC[s], 2-decay*math.Cos(kx*x)), "u at (%d,%d)", i, j)
			assert.True(t, near(vBC[s], 0), "v at (%d,%d)", i, j)
			assert.True(t, near(wBC[s], decay*math.Sin(kx*x)), "w at (%d,%d)", i, j)
		}
	}
}

func TestExecuteWorkerCountInvariance(t *testing.T) {
	// The boundary velocity must not depend on how the mesh is partitioned.
	f := func(x, y float64) float64 {
		return math.Sin(0.8*x+0.3) * math.Cos(1.1*y)
	}
	for _, combo := range bcCombos {
		var (
			one  = buildBC(t, 8, 8, 1, 1, combo[0], combo[1], 1)
			many = buildBC(t, 8, 8, 1, 1, combo[0], combo[1], 5)
		)
		one.setVelocity(1.5, -0.5, f)
		many.setVelocity(1.5, -0.5, f)
		require.NoError(t, one.bc.Execute())
		require.NoError(t, many.bc.Execute())
		for c := 0; c < 3; c++ {
			a, b := one.boundaryField(c), many.boundaryField(c)
			for s := range a {
				assert.True(t, nearTol(a[s], b[s], 1.e-12),
					"component %d slot %d combo %v: %g vs %g", c, s, combo, a[s], b[s])
			}
		}
	}
}

func TestExecuteInflowEdges(t *testing.T) {
	// With both directions inflow, the spectral solve never touches the
	// edge values: the streamwise edges carry the weighted mean profile and
	// the vertical velocity vanishes on the whole boundary frame.
	tc := buildBC(t, 8, 8, 1, 1, Inflow, Inflow, 3)
	tc.setVelocity(3, -2, func(x, y float64) float64 {
		return math.Sin(0.9*x) * math.Sin(0.7*y+0.2)
	})
	require.NoError(t, tc.bc.Execute())
	var (
		uBC = tc.boundaryField(0)
		vBC = tc.boundaryField(1)
		wBC = tc.boundaryField(2)
	)
	for j := 0; j < 8; j++ {
		assert.True(t, near(uBC[j*8], 3))
		assert.True(t, near(uBC[j*8+7], 3))
	}
	for i := 0; i < 8; i++ {
		assert.True(t, near(vBC[i], -2))
		assert.True(t, near(vBC[7*8+i], -2))
	}
	for j := 0; j < 8; j++ {
		for i := 0; i < 8; i++ {
			if i == 0 || i == 7 || j == 0 || j == 7 {
				assert.True(t, near(wBC[j*8+i], 0), "w edge at (%d,%d)", i, j)
			}
		}
	}
}

func TestInitializeIdempotent(t *testing.T) {
	tc := buildBC(t, 6, 6, 1, 1, Periodic, Periodic, 2)
	p := tc.bc.Plans()
	require.NotNil(t, p)
	require.NoError(t, tc.bc.Initialize())
	// No plan resources are recreated on repeated initialization
	assert.Same(t, p, tc.bc.Plans())
	require.NoError(t, tc.bc.Execute())
}

func TestExecuteDistributionMismatch(t *testing.T) {
	tc := buildBC(t, 6, 6, 1, 1, Periodic, Periodic, 2)
	tc.bc.cat.SampCounts[0]--
	assert.ErrorIs(t, tc.bc.Execute(), ErrDistributionMismatch)
}

func TestExecuteLazyInitialize(t *testing.T) {
	// Execute on a never-initialized instance builds everything on first use.
	var (
		m     = mesh.NewBoxMesh(6, 6, 3, 1, 1, 1, true)
		parts = mesh.PartitionMesh(m, 2)
	)
	m.RegisterField(mesh.VelocityField, 3)
	m.RegisterField(mesh.BCVelocityField, 3)
	bc, err := NewTopBC(parts, []int{6, 6, 3}, [2]BCType{Periodic, Periodic}, 1.0)
	require.NoError(t, err)
	require.NoError(t, bc.DiscoverConnectivity())
	require.NoError(t, bc.Execute())
	assert.NotNil(t, bc.Plans())
}

func TestDestroyReleasesPlans(t *testing.T) {
	tc := buildBC(t, 6, 6, 1, 1, Periodic, Periodic, 1)
	tc.bc.Destroy()
	assert.True(t, tc.bc.Plans().Released())
	assert.Panics(t, func() { _ = tc.bc.Execute() })
}

func TestParseBCType(t *testing.T) {
	bc, err := ParseBCType("periodic")
	assert.NoError(t, err)
	assert.Equal(t, Periodic, bc)
	bc, err = ParseBCType("inflow")
	assert.NoError(t, err)
	assert.Equal(t, Inflow, bc)
	_, err = ParseBCType("outflow")
	assert.ErrorIs(t, err, ErrConfiguration)
	assert.Equal(t, "periodic", Periodic.String())
	assert.Equal(t, "inflow", Inflow.String())
}
