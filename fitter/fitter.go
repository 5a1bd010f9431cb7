// Package fitter fits dimuon invariant mass spectra with a signal plus
// background model, one composite result per kinematic bin.
package fitter

import (
	"context"
	"fmt"
	"runtime"

	"go-hep.org/x/hep/hbook"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/benjaminaudurier/anna/fittype"
	"github.com/benjaminaudurier/anna/result"
	"github.com/benjaminaudurier/anna/spectra"
)

// Fitter fits the histograms of every bin of a Binning.
type Fitter struct {
	Particle Particle
	Binning  Binning

	// Workers bounds the number of bins fitted at once. Zero means one per
	// CPU.
	Workers int

	Logger *zap.Logger
}

func New(p Particle, b Binning, logger *zap.Logger) *Fitter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Fitter{Particle: p, Binning: b, Logger: logger}
}

// Fit fits histos[i], the mass histogram of bin i, with every descriptor.
// The returned spectra holds one composite per bin, named after the bin,
// with one leaf per descriptor that could be fitted.
func (f *Fitter) Fit(ctx context.Context, histos []*hbook.H1D, descs []fittype.Descriptor) (*spectra.Spectra, error) {
	if err := f.Binning.Validate(); err != nil {
		return nil, err
	}
	bins := f.Binning.Bins()
	if len(histos) != len(bins) {
		return nil, fmt.Errorf("fitter: got %d histograms for %d bins", len(histos), len(bins))
	}
	if len(descs) == 0 {
		return nil, fmt.Errorf("fitter: no fit type")
	}

	workers := f.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	results := make([]*result.Composite, len(bins))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i := range bins {
		i := i
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			results[i] = f.fitBin(bins[i], histos[i], descs)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	s := spectra.New(f.Binning.Name, f.Particle.Name)
	for i, r := range results {
		if len(r.SubResultNames()) == 0 {
			f.Logger.Warn("no fit converged in bin", zap.Stringer("bin", bins[i]))
			continue
		}
		s.AdoptResult(r, bins[i])
	}
	return s, nil
}

func (f *Fitter) fitBin(bin spectra.Bin, h *hbook.H1D, descs []fittype.Descriptor) *result.Composite {
	c := result.NewComposite(bin.String(), fmt.Sprintf("%s %s", f.Particle.Name, bin))
	for _, desc := range descs {
		leaf, err := FitHistogram(h, desc, f.Particle)
		if err != nil {
			f.Logger.Warn("could not fit bin",
				zap.Stringer("bin", bin),
				zap.Stringer("fit", desc),
				zap.Error(err),
			)
			continue
		}
		f.Logger.Debug("fitted bin",
			zap.Stringer("bin", bin),
			zap.String("fit", leaf.Name()),
			zap.Float64("S", valueOr(leaf, "S")),
			zap.Float64("chi2/ndf", valueOr(leaf, result.Chi2PerNDFKey)),
		)
		c.AdoptSubResult(leaf)
	}
	return c
}

func valueOr(r result.Result, name string) float64 {
	v, err := r.Value(name)
	if err != nil {
		return 0
	}
	return v
}
