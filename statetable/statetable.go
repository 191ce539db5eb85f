// Package statetable holds ordered tabular property data for state
// lookups: one rectangular block of numeric rows, typically loaded from a
// whitespace-separated property table file.
package statetable

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/jhux2/nalu-wind/utils"
)

type StateTable struct {
	Name  string
	table utils.Matrix
	nRows int
	nCols int
}

// New loads the named property table file.
func New(propertyTableName string) (st *StateTable, err error) {
	f, err := os.Open(propertyTableName)
	if err != nil {
		return
	}
	defer f.Close()
	st, err = Read(f, propertyTableName)
	return
}

// Read parses rows of whitespace-separated numbers. Every row must have the
// same column count; blank lines and lines starting with '#' are skipped.
func Read(r io.Reader, name string) (st *StateTable, err error) {
	var (
		rows    [][]float64
		scanner = bufio.NewScanner(r)
		lineNum = 0
	)
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		row := make([]float64, len(fields))
		for i, field := range fields {
			if row[i], err = strconv.ParseFloat(field, 64); err != nil {
				err = fmt.Errorf("property table %s line %d: %v", name, lineNum, err)
				return
			}
		}
		if len(rows) > 0 && len(row) != len(rows[0]) {
			err = fmt.Errorf("property table %s line %d: %d columns, expected %d",
				name, lineNum, len(row), len(rows[0]))
			return
		}
		rows = append(rows, row)
	}
	if err = scanner.Err(); err != nil {
		return
	}
	if len(rows) == 0 {
		err = fmt.Errorf("property table %s: no data rows", name)
		return
	}
	var (
		nr = len(rows)
		nc = len(rows[0])
	)
	st = &StateTable{Name: name, nRows: nr, nCols: nc}
	st.table = utils.NewMatrix(nr, nc)
	for i, row := range rows {
		for j, val := range row {
			st.table.Set(i, j, val)
		}
	}
	st.table.SetReadOnly(name)
	return
}

func (st *StateTable) Dims() (nRows, nCols int) { return st.nRows, st.nCols }

// Entry returns the table contents as rows.
func (st *StateTable) Entry() (rows [][]float64) {
	rows = make([][]float64, st.nRows)
	for i := range rows {
		rows[i] = st.table.Row(i)
	}
	return
}

// At reads one cell.
func (st *StateTable) At(i, j int) float64 { return st.table.At(i, j) }
