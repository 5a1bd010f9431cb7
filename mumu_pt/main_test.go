package main

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/plot"

	"github.com/benjaminaudurier/anna/fitter"
	"github.com/benjaminaudurier/anna/ntuple"
)

func TestMassWindow(t *testing.T) {
	sel, err := massWindow("Jpsi", fitter.JPsi)
	require.NoError(t, err)
	assert.True(t, sel.Pass(ntuple.Row{"Jpsi_MM": 3097}.Get))
	assert.False(t, sel.Pass(ntuple.Row{"Jpsi_MM": 2899}.Get))
	assert.False(t, sel.Pass(ntuple.Row{"Jpsi_MM": 3300}.Get))

	sel, err = massWindow("#", fitter.Upsilon)
	require.NoError(t, err)
	assert.True(t, sel.Pass(ntuple.Row{"MM": 9460}.Get))
}

func TestMakeHists(t *testing.T) {
	tbl := ntuple.NewTable("DecayTree", "Jpsi_MM", "Jpsi_PT", "nVeloClusters")
	for _, row := range [][]float64{
		{3097, 500, 100},
		{3097, 1500, 100},
		{3097, 2500, 3000},
		{3600, 2500, 3000},
		{3097, 2500, 9000},
	} {
		require.NoError(t, tbl.Fill(row...))
	}
	sel, err := massWindow("Jpsi", fitter.JPsi)
	require.NoError(t, err)
	ctx := context.Background()

	hs, err := makeHists(ctx, tbl, "Jpsi", "PT", sel, nil, 12, 0, 12000)
	require.NoError(t, err)
	require.Len(t, hs, 1)
	assert.Equal(t, 4.0, hs[0].Integral())

	hs, err = makeHists(ctx, tbl, "Jpsi", "PT", sel, []float64{0, 1000, 5000}, 12, 0, 12000)
	require.NoError(t, err)
	require.Len(t, hs, 2)
	assert.Equal(t, 2.0, hs[0].Integral())
	assert.Equal(t, 1.0, hs[1].Integral())

	_, err = makeHists(ctx, tbl, "Jpsi", "ETA", sel, nil, 12, 0, 12000)
	assert.Error(t, err)
}

func TestNewPlot(t *testing.T) {
	p := newPlot("spectrum", "PT")
	assert.Equal(t, "spectrum", p.Title.Text)
	assert.Equal(t, "PT (MeV)", p.X.Label.Text)
	assert.IsType(t, plot.LogScale{}, p.Y.Scale)
	assert.IsType(t, plot.LogTicks{}, p.Y.Tick.Marker)
}
