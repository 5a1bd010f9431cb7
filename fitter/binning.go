package fitter

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/benjaminaudurier/anna/spectra"
)

// Binning splits the candidates along one kinematic variable. Edges are in
// the units of the ntuple (MeV for momenta).
type Binning struct {
	Name     string
	Variable string
	Edges    []float64
}

// DefaultBinning returns the "pt", "y" or "integrated" binning.
func DefaultBinning(name string) (Binning, error) {
	switch strings.ToLower(name) {
	case "pt":
		return Binning{
			Name:     "PT",
			Variable: "PT",
			Edges:    []float64{0, 1000, 2000, 3000, 4000, 5000, 6000, 8000, 10000},
		}, nil
	case "y":
		return Binning{
			Name:     "Y",
			Variable: "Y",
			Edges:    []float64{2.5, 2.75, 3.0, 3.25, 3.5, 3.75, 4.0},
		}, nil
	case "integrated":
		return Binning{
			Name:     "INTEGRATED",
			Variable: "PT",
			Edges:    []float64{0, 12000},
		}, nil
	}
	return Binning{}, fmt.Errorf("fitter: unknown binning %q", name)
}

// ParseBinning reads either a default binning name or "VAR:e0,e1,...".
func ParseBinning(s string) (Binning, error) {
	v, edges, ok := strings.Cut(s, ":")
	if !ok {
		return DefaultBinning(s)
	}
	b := Binning{Name: strings.ToUpper(v), Variable: strings.ToUpper(v)}
	for _, e := range strings.Split(edges, ",") {
		x, err := strconv.ParseFloat(strings.TrimSpace(e), 64)
		if err != nil {
			return Binning{}, fmt.Errorf("fitter: could not parse binning %q: %w", s, err)
		}
		b.Edges = append(b.Edges, x)
	}
	if err := b.Validate(); err != nil {
		return Binning{}, err
	}
	return b, nil
}

func (b Binning) Validate() error {
	if b.Variable == "" {
		return fmt.Errorf("fitter: binning %q has no variable", b.Name)
	}
	if len(b.Edges) < 2 {
		return fmt.Errorf("fitter: binning %q needs at least two edges", b.Name)
	}
	for i := 1; i < len(b.Edges); i++ {
		if b.Edges[i] <= b.Edges[i-1] {
			return fmt.Errorf("fitter: binning %q edges are not increasing", b.Name)
		}
	}
	return nil
}

func (b Binning) NBins() int { return len(b.Edges) - 1 }

// Branch returns the ntuple branch of the binning variable for a mother
// leaf. An empty leaf means a flat ntuple.
func (b Binning) Branch(mother string) string { return branch(mother, b.Variable) }

func (b Binning) Bins() []spectra.Bin {
	bins := make([]spectra.Bin, 0, b.NBins())
	for i := 0; i < b.NBins(); i++ {
		bins = append(bins, spectra.Bin{Variable: b.Variable, Low: b.Edges[i], High: b.Edges[i+1]})
	}
	return bins
}

func branch(mother, variable string) string {
	if mother == "" || mother == "#" {
		return variable
	}
	return mother + "_" + variable
}

// MassBranch returns the invariant mass branch of a mother leaf.
func MassBranch(mother string) string { return branch(mother, "MM") }
