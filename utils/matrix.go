package utils

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

type Matrix struct {
	M        *mat.Dense
	DataP    []float64
	readOnly bool
	name     string
}

func NewMatrix(nr, nc int, dataO ...[]float64) (R Matrix) {
	var (
		data []float64
	)
	if len(dataO) != 0 {
		if len(dataO[0]) < nr*nc {
			panic(fmt.Errorf("mismatch in allocation: NewMatrix nr,nc = %d,%d, len(data[0]) = %d",
				nr, nc, len(dataO[0])))
		}
		data = dataO[0][0 : nr*nc]
	} else {
		data = make([]float64, nr*nc)
	}
	R = Matrix{
		M:    mat.NewDense(nr, nc, data),
		name: "unnamed - hint: pass a variable name to SetReadOnly()",
	}
	R.DataP = R.M.RawMatrix().Data
	return
}

func (m Matrix) Dims() (r, c int)    { return m.M.Dims() }
func (m Matrix) At(i, j int) float64 { return m.M.At(i, j) }
func (m Matrix) Data() []float64     { return m.DataP }

func (m *Matrix) SetReadOnly(name ...string) Matrix {
	if len(name) != 0 {
		m.name = name[0]
	}
	m.readOnly = true
	return *m
}

func (m Matrix) Set(i, j int, val float64) Matrix { // Changes receiver
	m.checkWritable()
	m.M.Set(i, j, val)
	return m
}

func (m Matrix) Row(i int) (r []float64) {
	var (
		_, nc = m.Dims()
	)
	r = make([]float64, nc)
	copy(r, m.M.RawRowView(i))
	return
}

func (m Matrix) checkWritable() {
	if m.readOnly {
		err := fmt.Errorf("unable to change matrix, it is read only. Matrix name: \"%v\"", m.name)
		panic(err)
	}
}
