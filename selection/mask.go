package selection

import (
	"fmt"
	"sort"
	"strings"
)

// NVeloClusters is the multiplicity variable that defines the centrality
// classes.
const NVeloClusters = "nVeloClusters"

// centralities maps a class to its [low, high) nVeloClusters range.
var centralities = map[string][2]float64{
	"90_100": {0, 1311},
	"80_90":  {1311, 3009},
	"70_80":  {3009, 5580},
	"60_70":  {5580, 9685},
	"50_60":  {9685, 15417},
	"40_50":  {15417, 22473},
}

// Centrality returns the cut of a centrality class. "ALL", "#" and ""
// select every event.
func Centrality(name string) (Selection, error) {
	switch strings.ToUpper(name) {
	case "", "#", "ALL":
		return Selection{}, nil
	}
	r, ok := centralities[name]
	if !ok {
		return Selection{}, fmt.Errorf("selection: unknown centrality class %q", name)
	}
	return Selection{Cuts: []Cut{
		{Var: NVeloClusters, Op: ">=", Value: r[0]},
		{Var: NVeloClusters, Op: "<", Value: r[1]},
	}}, nil
}

// CentralityClasses returns the known classes, most peripheral first.
func CentralityClasses() []string {
	names := make([]string, 0, len(centralities))
	for name := range centralities {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		return centralities[names[i]][0] < centralities[names[j]][0]
	})
	return names
}

// FilterMask holds the cuts applied before the fit. Each field lists cuts
// separated by "**". Muon cuts are prefixed by every daughter leaf, Mother
// cuts by the mother leaf, and Other cuts are used as is.
type FilterMask struct {
	Muon   string
	Mother string
	Other  string
}

// DefaultJpsiMask is the J/psi PbPb mask.
var DefaultJpsiMask = FilterMask{
	Muon:   "TRACK_GhostProb<0.5 ** ProbNNghost<0.8 ** TRACK_CHI2NDOF<3.** IP_OWNPV<3.** PIDmu > 3 ** ETA<4.5 ** ETA>2.0",
	Mother: "Y<4.5 ** Y>2.0",
	Other:  "nPVs>0",
}

// GeneralMask joins the mask cuts with "&&", each prefixed by its leaf,
// and drops every space.
func (m FilterMask) GeneralMask(mother string, daughters []string) string {
	var terms []string
	if m.Muon != "" {
		for _, leaf := range daughters {
			for _, cut := range strings.Split(m.Muon, "**") {
				terms = append(terms, leaf+"_"+cut)
			}
		}
	}
	if m.Mother != "" {
		for _, cut := range strings.Split(m.Mother, "**") {
			terms = append(terms, mother+"_"+cut)
		}
	}
	if m.Other != "" {
		terms = append(terms, strings.Split(m.Other, "**")...)
	}
	return strings.ReplaceAll(strings.Join(terms, "&&"), " ", "")
}

// Selection parses the general mask.
func (m FilterMask) Selection(mother string, daughters []string) (Selection, error) {
	return Parse(m.GeneralMask(mother, daughters))
}

// Parts returns the cuts of each group, for display.
func (m FilterMask) Parts() (muon, mother, other []string) {
	split := func(s string) []string {
		if s == "" {
			return nil
		}
		parts := strings.Split(s, "**")
		for i, p := range parts {
			parts[i] = strings.TrimSpace(p)
		}
		return parts
	}
	return split(m.Muon), split(m.Mother), split(m.Other)
}
