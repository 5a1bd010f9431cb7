package selection

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rowOf(values map[string]float64) func(string) (float64, bool) {
	return func(name string) (float64, bool) {
		v, ok := values[name]
		return v, ok
	}
}

func TestParse(t *testing.T) {
	s, err := Parse("2.5 < Jpsi_Y && Jpsi_Y<4&&Jpsi_PT>=1000")
	require.NoError(t, err)

	want := []Cut{
		{Var: "Jpsi_Y", Op: ">", Value: 2.5},
		{Var: "Jpsi_Y", Op: "<", Value: 4},
		{Var: "Jpsi_PT", Op: ">=", Value: 1000},
	}
	if diff := cmp.Diff(want, s.Cuts); diff != "" {
		t.Fatalf("cuts mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, "Jpsi_Y>2.5&&Jpsi_Y<4&&Jpsi_PT>=1000", s.String())
	assert.Equal(t, []string{"Jpsi_PT", "Jpsi_Y"}, s.Branches())

	assert.True(t, s.Pass(rowOf(map[string]float64{"Jpsi_Y": 3, "Jpsi_PT": 1000})))
	assert.False(t, s.Pass(rowOf(map[string]float64{"Jpsi_Y": 4, "Jpsi_PT": 1000})))
	assert.False(t, s.Pass(rowOf(map[string]float64{"Jpsi_Y": 3})))
}

func TestParseAll(t *testing.T) {
	for _, in := range []string{"", "#", "ALL", " all "} {
		s, err := Parse(in)
		require.NoError(t, err)
		assert.True(t, s.All())
		assert.True(t, s.Pass(rowOf(nil)))
		assert.Equal(t, "ALL", s.String())
	}
}

func TestParseErrors(t *testing.T) {
	for _, in := range []string{"Jpsi_Y", "a<b", "<4", "3<4", "1x<3", "Y<4&&"} {
		_, err := Parse(in)
		assert.True(t, errors.Is(err, ErrSyntax), "%q: got %v", in, err)
	}
}

func TestOperators(t *testing.T) {
	for _, tc := range []struct {
		expr string
		x    float64
		want bool
	}{
		{"x<=1", 1, true},
		{"x>=1", 0.5, false},
		{"x==2", 2, true},
		{"x!=2", 2, false},
		{"1<=x", 1, true},
		{"1>x", 0, true},
		{"1==x", 1, true},
	} {
		s := MustParse(tc.expr)
		assert.Equal(t, tc.want, s.Pass(rowOf(map[string]float64{"x": tc.x})), tc.expr)
	}
}

func TestAnd(t *testing.T) {
	a := MustParse("x>1")
	b := MustParse("y<2")
	c := a.And(b)
	assert.Equal(t, "x>1&&y<2", c.String())
	assert.Len(t, a.Cuts, 1)
}

func TestCentrality(t *testing.T) {
	s, err := Centrality("70_80")
	require.NoError(t, err)
	assert.Equal(t, "nVeloClusters>=3009&&nVeloClusters<5580", s.String())
	assert.True(t, s.Pass(rowOf(map[string]float64{NVeloClusters: 3009})))
	assert.False(t, s.Pass(rowOf(map[string]float64{NVeloClusters: 5580})))

	s, err = Centrality("ALL")
	require.NoError(t, err)
	assert.True(t, s.All())

	_, err = Centrality("0_10")
	assert.Error(t, err)

	assert.Equal(t, []string{"90_100", "80_90", "70_80", "60_70", "50_60", "40_50"}, CentralityClasses())
}

func TestGeneralMask(t *testing.T) {
	m := FilterMask{
		Muon:   "TRACK_GhostProb<0.5 ** PIDmu > 3",
		Mother: "Y<4.5 ** Y>2.0",
		Other:  "nPVs>0",
	}
	got := m.GeneralMask("Jpsi", []string{"muplus", "muminus"})
	assert.Equal(t,
		"muplus_TRACK_GhostProb<0.5&&muplus_PIDmu>3&&muminus_TRACK_GhostProb<0.5&&muminus_PIDmu>3&&Jpsi_Y<4.5&&Jpsi_Y>2.0&&nPVs>0",
		got)

	sel, err := m.Selection("Jpsi", []string{"muplus", "muminus"})
	require.NoError(t, err)
	assert.Len(t, sel.Cuts, 7)

	assert.Equal(t, "", FilterMask{}.GeneralMask("Jpsi", nil))

	muon, mother, other := m.Parts()
	assert.Equal(t, []string{"TRACK_GhostProb<0.5", "PIDmu > 3"}, muon)
	assert.Equal(t, []string{"Y<4.5", "Y>2.0"}, mother)
	assert.Equal(t, []string{"nPVs>0"}, other)

	_, err = DefaultJpsiMask.Selection("Jpsi", []string{"muplus", "muminus"})
	assert.NoError(t, err)
}
