package main

import (
	"fmt"
	"math"

	"github.com/benjaminaudurier/anna/result"
	"github.com/benjaminaudurier/anna/spectra"
)

// ValueGrid holds a quantity per kinematic bin (x) and centrality class
// (y). It satisfies plotter.GridXYZ. Missing values are NaN.
type ValueGrid struct {
	x []float64
	z [][]float64
}

// NewValueGrid reads quantity from every bin of each spectra. The first
// non nil spectra defines the bins; nil spectra give an empty row.
func NewValueGrid(rows []*spectra.Spectra, quantity, sub string) (*ValueGrid, error) {
	var ref *spectra.Spectra
	for _, s := range rows {
		if s != nil {
			ref = s
			break
		}
	}
	if ref == nil {
		return nil, fmt.Errorf("no spectra found")
	}

	var keys []string
	g := &ValueGrid{}
	for _, key := range ref.Bins() {
		b, ok := ref.Bin(key)
		if !ok {
			continue
		}
		keys = append(keys, key)
		g.x = append(g.x, b.Center())
	}
	if len(keys) == 0 {
		return nil, fmt.Errorf("spectra %q has no kinematic bin", ref.Name())
	}

	g.z = make([][]float64, len(rows))
	for j, s := range rows {
		g.z[j] = make([]float64, len(keys))
		for i, key := range keys {
			g.z[j][i] = math.NaN()
			if s == nil {
				continue
			}
			r, ok := s.ResultsForBin(key)
			if !ok {
				continue
			}
			if v, err := result.ValueOf(r, quantity, sub); err == nil {
				g.z[j][i] = v
			}
		}
	}
	return g, nil
}

func (g *ValueGrid) Dims() (int, int) { return len(g.x), len(g.z) }

func (g *ValueGrid) Z(i, j int) float64 { return g.z[j][i] }

func (g *ValueGrid) X(i int) float64 { return g.x[i] }

func (g *ValueGrid) Y(j int) float64 { return float64(j) }

// Max returns the largest value of the grid, 1 when it holds none.
func (g *ValueGrid) Max() float64 {
	top := math.Inf(-1)
	for _, row := range g.z {
		for _, v := range row {
			if !math.IsNaN(v) && v > top {
				top = v
			}
		}
	}
	if math.IsInf(top, -1) {
		return 1
	}
	return top
}
