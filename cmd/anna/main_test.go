package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/benjaminaudurier/anna"
	"github.com/benjaminaudurier/anna/config"
	"github.com/benjaminaudurier/anna/result"
	"github.com/benjaminaudurier/anna/selection"
	"github.com/benjaminaudurier/anna/spectra"
	"github.com/benjaminaudurier/anna/store"
)

const steering = `Centrality: 90_100
CutCombination: #
FitType: signal=gaus|bkgr=exp
FitType: signal=cb|bkgr=pol1
MotherLeaf: Jpsi
MuplusLeaf: muplus
MuminusLeaf: muminus
`

func testSpectra() *spectra.Spectra {
	sp := spectra.New("PT", "JPsi")
	for i, s := range []float64{1000, 800} {
		c := result.NewComposite(spectra.Bin{Variable: "PT", Low: float64(1000 * i), High: float64(1000 * (i + 1))}.String(), "")
		gaus := result.NewLeaf("signal=gaus|bkgr=exp", "")
		gaus.Set("S", s, 30, 0)
		c.AdoptSubResult(gaus)
		if i == 0 {
			cb := result.NewLeaf("signal=cb|bkgr=pol1", "")
			cb.Set("S", s+20, 30, 0)
			c.AdoptSubResult(cb)
		}
		sp.AdoptResult(c, spectra.Bin{Variable: "PT", Low: float64(1000 * i), High: float64(1000 * (i + 1))})
	}
	return sp
}

// run executes the command line args against a fresh store holding one
// spectra and returns the standard output.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	dir := t.TempDir()
	steer := filepath.Join(dir, "steer.txt")
	require.NoError(t, os.WriteFile(steer, []byte(steering), 0o644))

	db := filepath.Join(dir, "results.db")
	st, err := store.Open(db)
	require.NoError(t, err)
	_, err = st.Put(context.Background(), store.Path("DecayTree", "90_100", "#", "Jpsi", "PT"), testSpectra())
	require.NoError(t, err)
	require.NoError(t, st.Close())

	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append(args,
		"--config", steer,
		"--store", db,
		"--settings", filepath.Join(dir, "missing.toml"),
	))
	err = cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestShow(t *testing.T) {
	out, err := run(t, "show")
	require.NoError(t, err)
	assert.Contains(t, out, "DecayTree/FitParticle/90_100/#/Jpsi/PT")
	assert.Contains(t, out, "PT_0.00_1000.00")
	assert.Contains(t, out, "1020 +- 30")

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, 3, strings.Count(lines[2], "+-"))
	assert.Equal(t, 2, strings.Count(lines[3], "+-"))
}

func TestShowRaw(t *testing.T) {
	out, err := run(t, "show", "--raw", "--spectra", "PT")
	require.NoError(t, err)
	assert.Contains(t, out, "=== DecayTree/FitParticle/90_100/#/Jpsi/PT")
	assert.Contains(t, out, "spectra PT")
}

func TestKeys(t *testing.T) {
	out, err := run(t, "keys", "DecayTree/")
	require.NoError(t, err)
	assert.Equal(t, "DecayTree/FitParticle/90_100/#/Jpsi/PT\n", out)

	_, err = run(t, "keys", "--delete")
	assert.Error(t, err)
}

func TestExport(t *testing.T) {
	out, err := run(t, "export", "DecayTree/FitParticle/90_100/#/Jpsi/PT")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "# DecayTree/FitParticle/90_100/#/Jpsi/PT, run "))
	assert.Contains(t, out, "name: PT")
	assert.Contains(t, out, "signal=cb|bkgr=pol1")

	_, err = run(t, "export", "nope")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestFilterMask(t *testing.T) {
	out, err := run(t, "filter-mask")
	require.NoError(t, err)
	assert.Contains(t, out, "Jpsi_Y<4.5&&Jpsi_Y>2.0&&nPVs>0")
	assert.Contains(t, out, "muplus_PIDmu>3")
	assert.Contains(t, out, "muminus_ETA>2.0")

	_, err = run(t, "filter-mask", "--mask", "none")
	assert.Error(t, err)
}

func TestPrintMask(t *testing.T) {
	cfg, err := config.Read(strings.NewReader(steering), zap.NewNop())
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, printMask(&buf, selection.FilterMask{Mother: "PT>1000", Other: "nPVs==1"}, cfg))
	assert.Contains(t, buf.String(), "Jpsi_PT>1000&&nPVs==1")

	err = printMask(&buf, selection.FilterMask{Other: "nPVs=1"}, cfg)
	assert.Error(t, err)
}

func TestFitBinning(t *testing.T) {
	binningName = "pt"
	binEdges = anna.FloatArrayFlags{}
	b, err := fitBinning()
	require.NoError(t, err)
	assert.Equal(t, 8, b.NBins())

	require.NoError(t, binEdges.Set("0,2000,12000"))
	b, err = fitBinning()
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 2000, 12000}, b.Edges)

	require.NoError(t, binEdges.Set("5,1"))
	_, err = fitBinning()
	assert.Error(t, err)
}

func TestRenderSpectra(t *testing.T) {
	out := renderSpectra(testSpectra(), "S", []string{"signal=gaus|bkgr=exp"})
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[0], "signal=gaus|bkgr=exp")
	assert.NotContains(t, lines[0], "signal=cb|bkgr=pol1")
	assert.Contains(t, lines[2], "800 +- 30")

	assert.Equal(t, []string{"signal=gaus|bkgr=exp", "signal=cb|bkgr=pol1"}, subResultNames(testSpectra()))
}
