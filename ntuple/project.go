package ntuple

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"go-hep.org/x/hep/hbook"

	"github.com/benjaminaudurier/anna/selection"
)

// ProjectOptions describes a mass projection.
type ProjectOptions struct {
	// Mass is the branch histogrammed.
	Mass string

	// Variable splits the candidates in [Edges[i], Edges[i+1]) bins. An
	// empty Variable gives a single histogram.
	Variable string
	Edges    []float64

	Selection selection.Selection

	NBins     int
	Low, High float64
}

// NHistos returns the number of histograms Project fills.
func (o ProjectOptions) NHistos() int {
	if o.Variable == "" {
		return 1
	}
	return len(o.Edges) - 1
}

func (o ProjectOptions) branches() []string {
	set := map[string]struct{}{o.Mass: {}}
	if o.Variable != "" {
		set[o.Variable] = struct{}{}
	}
	for _, b := range o.Selection.Branches() {
		set[b] = struct{}{}
	}
	names := make([]string, 0, len(set))
	for name := range set {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (o ProjectOptions) validate() error {
	switch {
	case o.Mass == "":
		return errors.New("ntuple: no mass branch")
	case o.NBins <= 0:
		return fmt.Errorf("ntuple: invalid number of bins %d", o.NBins)
	case o.High <= o.Low:
		return fmt.Errorf("ntuple: invalid mass range [%g, %g]", o.Low, o.High)
	case o.Variable != "" && len(o.Edges) < 2:
		return fmt.Errorf("ntuple: %q binning needs at least two edges", o.Variable)
	}
	for i := 1; i < len(o.Edges); i++ {
		if o.Edges[i] <= o.Edges[i-1] {
			return fmt.Errorf("ntuple: %q edges are not increasing", o.Variable)
		}
	}
	return nil
}

// Project reads src once and fills one mass histogram per kinematic bin
// with the selected candidates.
func Project(ctx context.Context, src Source, opts ProjectOptions) ([]*hbook.H1D, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}

	hs := make([]*hbook.H1D, opts.NHistos())
	for i := range hs {
		hs[i] = hbook.NewH1D(opts.NBins, opts.Low, opts.High)
		hs[i].Annotation()["name"] = histName(src.Name(), opts, i)
	}

	err := src.Scan(ctx, opts.branches(), func(row Row) error {
		if !opts.Selection.Pass(row.Get) {
			return nil
		}
		i := 0
		if opts.Variable != "" {
			i = binIndex(opts.Edges, row[opts.Variable])
			if i < 0 {
				return nil
			}
		}
		hs[i].Fill(row[opts.Mass], 1)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return hs, nil
}

func histName(src string, opts ProjectOptions, i int) string {
	if opts.Variable == "" {
		return fmt.Sprintf("%s_%s", src, opts.Mass)
	}
	return fmt.Sprintf("%s_%s_%s_%g_%g", src, opts.Mass, opts.Variable, opts.Edges[i], opts.Edges[i+1])
}

// binIndex returns i such that edges[i] <= x < edges[i+1], or -1.
func binIndex(edges []float64, x float64) int {
	i := sort.SearchFloat64s(edges, x)
	if i < len(edges) && edges[i] == x {
		i++
	}
	i--
	if i < 0 || i >= len(edges)-1 {
		return -1
	}
	return i
}
