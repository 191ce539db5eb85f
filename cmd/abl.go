/*
Copyright © 2020 NAME HERE <EMAIL ADDRESS>

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"fmt"
	"math"
	"os"
	"runtime"
	"time"

	"github.com/pkg/profile"
	"github.com/spf13/cobra"

	"github.com/jhux2/nalu-wind/InputParameters"
	"github.com/jhux2/nalu-wind/abltop"
	"github.com/jhux2/nalu-wind/mesh"
)

type ModelABL struct {
	ICFile  string
	Profile string
	Steps   int
}

// ABLCmd represents the abl command
var ABLCmd = &cobra.Command{
	Use:   "abl",
	Short: "Open-top ABL boundary condition driver on a structured box mesh",
	Long: `Builds a structured Cartesian box mesh, seeds a single-mode vertical
velocity distribution on the sampling plane, and runs the potential flow
open-top boundary condition for the configured number of steps`,
	Run: func(cmd *cobra.Command, args []string) {
		var (
			err error
		)
		mabl := &ModelABL{}
		if mabl.ICFile, err = cmd.Flags().GetString("inputConditionsFile"); err != nil {
			panic(err)
		}
		mabl.Profile, _ = cmd.Flags().GetString("profile")
		mabl.Steps, _ = cmd.Flags().GetInt("steps")
		ip := processABLInput(mabl)
		RunABL(mabl, ip)
	},
}

func init() {
	rootCmd.AddCommand(ABLCmd)
	ABLCmd.Flags().StringP("inputConditionsFile", "I", "", "YAML case parameters file")
	ABLCmd.Flags().String("profile", "", "write a profile while running: cpu or mem")
	ABLCmd.Flags().Int("steps", 0, "override the number of steps in the case file")
}

func processABLInput(mabl *ModelABL) (ip *InputParameters.ABLParameters) {
	if len(mabl.ICFile) == 0 {
		err := fmt.Errorf("must supply a case parameters file (-I, --inputConditionsFile) in YAML format")
		fmt.Printf("error: %s\n", err.Error())
		exampleFile := `
########################################
Title: "48x48 periodic box"
Imax: 48
Jmax: 48
Kmax: 24
XL: 1000.
YL: 1000.
ZL: 500.
ZSample: 450.
HorizBCX: periodic
HorizBCY: periodic
MeanU: 8.
MeanV: 0.
Amplitude: 0.5
ModeX: 2
ModeY: 0
NSteps: 10
Workers: 0
########################################
`
		fmt.Printf("Example Case File Contents:%s", exampleFile)
		os.Exit(1)
	}
	var (
		data []byte
		err  error
	)
	if data, err = os.ReadFile(mabl.ICFile); err != nil {
		panic(err)
	}
	ip = &InputParameters.ABLParameters{Workers: runtime.NumCPU()}
	if err = ip.Parse(data); err != nil {
		panic(err)
	}
	if mabl.Steps != 0 {
		ip.NSteps = mabl.Steps
	}
	if ip.NSteps == 0 {
		ip.NSteps = 1
	}
	if ip.Workers == 0 {
		ip.Workers = runtime.NumCPU()
	}
	ip.Print()
	return
}

func RunABL(mabl *ModelABL, ip *InputParameters.ABLParameters) {
	switch mabl.Profile {
	case "cpu":
		defer profile.Start(profile.CPUProfile).Stop()
	case "mem":
		defer profile.Start(profile.MemProfile).Stop()
	}
	var (
		bcX, errX = abltop.ParseBCType(ip.HorizBCX)
		bcY, errY = abltop.ParseBCType(ip.HorizBCY)
	)
	if errX != nil {
		panic(errX)
	}
	if errY != nil {
		panic(errY)
	}
	m := buildCase(ip, bcX, bcY)
	parts := mesh.PartitionMesh(m, ip.Workers)
	bc, err := abltop.NewTopBC(parts, []int{ip.Imax, ip.Jmax, ip.Kmax},
		[2]abltop.BCType{bcX, bcY}, ip.ZSample)
	if err != nil {
		panic(err)
	}
	defer bc.Destroy()
	if err = bc.DiscoverConnectivity(); err != nil {
		panic(err)
	}
	if err = bc.Initialize(); err != nil {
		panic(err)
	}
	g := bc.Geometry()
	fmt.Printf("grid %dx%dx%d, dx,dy = %g,%g, deltaZ = %g\n",
		g.Imax, g.Jmax, g.Kmax, g.Dx, g.Dy, g.DeltaZ)
	start := time.Now()
	for step := 1; step <= ip.NSteps; step++ {
		if err = bc.Execute(); err != nil {
			panic(err)
		}
	}
	elapsed := time.Since(start)
	fmt.Printf("%d steps in %v (%v per step)\n",
		ip.NSteps, elapsed, elapsed/time.Duration(ip.NSteps))
	printBoundaryStats(m, ip.Kmax)
}

// buildCase assembles the box mesh and seeds the velocity field with the
// mean flow plus a single-mode vertical velocity distribution whose edge
// behavior matches the boundary types.
func buildCase(ip *InputParameters.ABLParameters, bcX, bcY abltop.BCType) (m *mesh.Mesh) {
	var (
		dx = spacing(bcX, ip.Imax, ip.XL)
		dy = spacing(bcY, ip.Jmax, ip.YL)
		dz = ip.ZL / float64(ip.Kmax-1)
	)
	m = mesh.NewBoxMesh(ip.Imax, ip.Jmax, ip.Kmax, dx, dy, dz, ip.Scrambled)
	vel := m.RegisterField(mesh.VelocityField, 3)
	m.RegisterField(mesh.BCVelocityField, 3)
	rho := m.RegisterField(mesh.DensityField, 1)
	area := m.RegisterField(mesh.ExposedAreaVecField, 3)
	for nid := range m.Nodes {
		node := m.Nodes[nid]
		w := ip.Amplitude *
			modeShape(bcX, ip.ModeX, node.Coords[0], ip.XL) *
			modeShape(bcY, ip.ModeY, node.Coords[1], ip.YL)
		v := vel.Values(mesh.NodeID(nid))
		v[0] = ip.MeanU
		v[1] = ip.MeanV
		v[2] = w
		rho.Set(mesh.NodeID(nid), 0, 1.2)
		if node.Tag[2] == ip.Kmax-1 {
			area.Set(mesh.NodeID(nid), 2, dx*dy)
		}
	}
	return
}

func spacing(bc abltop.BCType, n int, L float64) float64 {
	if bc == abltop.Periodic {
		return L / float64(n)
	}
	return L / float64(n-1)
}

func modeShape(bc abltop.BCType, mode int, x, L float64) float64 {
	if mode == 0 {
		return 1
	}
	if bc == abltop.Periodic {
		return math.Sin(2 * math.Pi * float64(mode) * x / L)
	}
	return math.Sin(math.Pi * float64(mode) * x / L)
}

func printBoundaryStats(m *mesh.Mesh, kmax int) {
	var (
		bcVel = m.Field(mesh.BCVelocityField)
		rho   = m.Field(mesh.DensityField)
		area  = m.Field(mesh.ExposedAreaVecField)
		name  = []string{"uBC", "vBC", "wBC"}
		mdot  = 0.
	)
	for c := 0; c < 3; c++ {
		var (
			lo    = math.Inf(1)
			hi    = math.Inf(-1)
			sum   = 0.
			count = 0
		)
		for nid := range m.Nodes {
			if m.Nodes[nid].Tag[2] != kmax-1 {
				continue
			}
			val := bcVel.At(mesh.NodeID(nid), c)
			lo = math.Min(lo, val)
			hi = math.Max(hi, val)
			sum += val
			count++
		}
		fmt.Printf("%s: min %10.6f, max %10.6f, mean %10.6f over %d boundary nodes\n",
			name[c], lo, hi, sum/float64(count), count)
	}
	for nid := range m.Nodes {
		if m.Nodes[nid].Tag[2] != kmax-1 {
			continue
		}
		n := mesh.NodeID(nid)
		mdot += rho.At(n, 0) * bcVel.At(n, 2) * area.At(n, 2)
	}
	fmt.Printf("mass flux through the open top: %12.6g\n", mdot)
}
