package mesh

// NewBoxMesh builds a structured Cartesian box with uniform spacings
// (dx, dy, dz) and persisted (i,j,k) node tags, the layout the external
// abl_mesh generator produces. When scramble is true the node storage order
// is permuted deterministically so that discovery order carries no
// structured information; the tags remain the only ordering key.
func NewBoxMesh(imax, jmax, kmax int, dx, dy, dz float64, scramble bool) (m *Mesh) {
	var (
		nNodes = imax * jmax * kmax
	)
	m = NewMesh(nNodes)
	perm := identityPerm(nNodes)
	if scramble {
		perm = scramblePerm(nNodes)
	}
	for k := 0; k < kmax; k++ {
		for j := 0; j < jmax; j++ {
			for i := 0; i < imax; i++ {
				n := perm[i+imax*(j+jmax*k)]
				m.Nodes[n] = Node{
					Coords: [3]float64{float64(i) * dx, float64(j) * dy, float64(k) * dz},
					Tag:    [3]int{i, j, k},
				}
			}
		}
	}
	return
}

func identityPerm(n int) (perm []int) {
	perm = make([]int, n)
	for i := range perm {
		perm[i] = i
	}
	return
}

// scramblePerm is a seeded Fisher-Yates shuffle with a small LCG so the
// permutation is reproducible across runs.
func scramblePerm(n int) (perm []int) {
	var (
		state = uint64(0x9E3779B97F4A7C15)
	)
	perm = identityPerm(n)
	next := func(bound int) int {
		state = state*6364136223846793005 + 1442695040888963407
		return int((state >> 33) % uint64(bound))
	}
	for i := n - 1; i > 0; i-- {
		j := next(i + 1)
		perm[i], perm[j] = perm[j], perm[i]
	}
	return
}
