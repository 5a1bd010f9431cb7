package main

import (
	"math"

	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"

	"github.com/benjaminaudurier/anna/fitter"
	"github.com/benjaminaudurier/anna/result"
	"github.com/benjaminaudurier/anna/spectra"
)

// good reports whether a fit converged with a full covariance matrix.
func good(r result.Result) bool {
	status, err := r.Value(result.FitResultKey)
	if err != nil || status != fitter.StatusOK {
		return false
	}
	cov, err := r.Value(result.CovMatrixStatusKey)
	return err == nil && cov == fitter.CovFull
}

// quality returns, for each bin of sp, the fraction of good sub-results
// with its binomial error.
func quality(sp *spectra.Spectra) plotutil.ErrorPoints {
	var points plotutil.ErrorPoints
	for _, key := range sp.Bins() {
		bin, ok := sp.Bin(key)
		if !ok {
			continue
		}
		r, _ := sp.ResultsForBin(key)
		c, ok := r.(*result.Composite)
		if !ok {
			continue
		}

		var n, k float64
		for _, name := range c.SubResultNames() {
			sub, err := c.SubResult(name)
			if err != nil {
				continue
			}
			n++
			if good(sub) {
				k++
			}
		}
		if n == 0 {
			continue
		}

		eff := k / n
		binSigma := bin.HalfWidth() / math.Sqrt(3.)
		points.XYs = append(points.XYs, plotter.XY{X: bin.Center(), Y: eff})
		points.XErrors = append(points.XErrors, struct{ Low, High float64 }{Low: binSigma, High: binSigma})
		yErr := math.Sqrt((1 - eff) * eff / n)
		points.YErrors = append(points.YErrors, struct{ Low, High float64 }{Low: yErr, High: yErr})
	}
	return points
}
