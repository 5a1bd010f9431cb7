// Package facade drives an analysis from a steering file: it fits every
// centrality, cut and mother leaf combination, stores the spectra and
// draws or prints them back.
package facade

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"

	"go.uber.org/zap"

	"github.com/benjaminaudurier/anna/config"
	"github.com/benjaminaudurier/anna/fitter"
	"github.com/benjaminaudurier/anna/fittype"
	"github.com/benjaminaudurier/anna/ntuple"
	"github.com/benjaminaudurier/anna/selection"
	"github.com/benjaminaudurier/anna/spectra"
	"github.com/benjaminaudurier/anna/store"
)

var ErrNoFitType = errors.New("facade: no fit type in steering file")

// Facade runs the analysis described by a steering Config.
type Facade struct {
	Config *config.Config
	Store  *store.Store
	Logger *zap.Logger

	// Mask, when set, is applied to every candidate before the fit.
	Mask *selection.FilterMask

	// NBins is the number of mass bins over the particle window.
	NBins   int
	Workers int
}

func New(cfg *config.Config, st *store.Store, logger *zap.Logger) *Facade {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Facade{Config: cfg, Store: st, Logger: logger, NBins: 100}
}

type combination struct {
	centrality, cut, leaf string
}

func (f *Facade) combinations() []combination {
	var out []combination
	for _, centrality := range f.Config.Centralities() {
		for _, cut := range f.Config.CutCombinations() {
			for _, leaf := range f.Config.Get(config.MotherLeaf) {
				out = append(out, combination{centrality, cut, leaf})
			}
		}
	}
	return out
}

func (c combination) path(source, name string) string {
	return store.Path(source, c.centrality, c.cut, c.leaf, name)
}

func (f *Facade) selection(c combination) (selection.Selection, error) {
	sel, err := selection.Centrality(c.centrality)
	if err != nil {
		return selection.Selection{}, err
	}
	cut, err := selection.Parse(c.cut)
	if err != nil {
		return selection.Selection{}, err
	}
	sel = sel.And(cut)
	if f.Mask != nil {
		mask, err := f.Mask.Selection(c.leaf, f.Config.DaughterLeaves())
		if err != nil {
			return selection.Selection{}, err
		}
		sel = sel.And(mask)
	}
	return sel, nil
}

func (f *Facade) fitTypes() ([]fittype.Descriptor, error) {
	raw := f.Config.FitTypes()
	if len(raw) == 0 {
		return nil, ErrNoFitType
	}
	descs := make([]fittype.Descriptor, 0, len(raw))
	for _, s := range raw {
		d, err := fittype.Parse(s)
		if err != nil {
			return nil, err
		}
		descs = append(descs, d)
	}
	return descs, nil
}

// massWindow covers the particle window and every fit range, keeping the
// bin width of NBins over the particle window.
func (f *Facade) massWindow(p fitter.Particle, descs []fittype.Descriptor) (lo, hi float64, nbins int) {
	lo, hi = p.Low, p.High
	for _, d := range descs {
		if d.HasRange() {
			lo = math.Min(lo, d.Low)
			hi = math.Max(hi, d.High)
		}
	}
	n := f.NBins
	if n <= 0 {
		n = 100
	}
	width := (p.High - p.Low) / float64(n)
	return lo, hi, int(math.Round((hi - lo) / width))
}

// FitParticle fits src for every combination of the steering file and
// stores the spectra. It returns the stored paths.
func (f *Facade) FitParticle(ctx context.Context, src ntuple.Source, p fitter.Particle, b fitter.Binning) ([]string, error) {
	descs, err := f.fitTypes()
	if err != nil {
		return nil, err
	}
	lo, hi, nbins := f.massWindow(p, descs)

	f.Logger.Info("fitting particle",
		zap.String("particle", p.Name),
		zap.String("binning", b.Name),
		zap.String("source", src.Name()),
		zap.Int("fit types", len(descs)),
	)

	var paths []string
	for _, c := range f.combinations() {
		logger := f.Logger.With(
			zap.String("centrality", c.centrality),
			zap.String("cut", c.cut),
			zap.String("leaf", c.leaf),
		)

		sel, err := f.selection(c)
		if err != nil {
			return paths, err
		}

		histos, err := ntuple.Project(ctx, src, ntuple.ProjectOptions{
			Mass:      fitter.MassBranch(c.leaf),
			Variable:  b.Branch(c.leaf),
			Edges:     b.Edges,
			Selection: sel,
			NBins:     nbins,
			Low:       lo,
			High:      hi,
		})
		if err != nil {
			return paths, fmt.Errorf("facade: could not project %q: %w", src.Name(), err)
		}

		ft := fitter.New(p, b, logger)
		ft.Workers = f.Workers
		sp, err := ft.Fit(ctx, histos, descs)
		if err != nil {
			return paths, err
		}

		path := c.path(src.Name(), sp.Name())
		replaced, err := f.Store.Put(ctx, path, sp)
		if err != nil {
			return paths, err
		}
		if replaced {
			logger.Warn("replacing stored spectra", zap.String("path", path))
		}
		logger.Info("stored spectra", zap.String("path", path), zap.Int("bins", len(sp.Bins())))
		paths = append(paths, path)
	}
	return paths, nil
}

// Spectra returns the stored spectra named name for every combination of
// the steering file. Missing entries are logged and skipped.
func (f *Facade) Spectra(ctx context.Context, source, name string) (map[string]*spectra.Spectra, []string, error) {
	found := make(map[string]*spectra.Spectra)
	var paths []string
	for _, c := range f.combinations() {
		path := c.path(source, name)
		e, err := f.Store.Get(ctx, path)
		switch {
		case errors.Is(err, store.ErrNotFound):
			f.Logger.Warn("cannot find spectra, continue", zap.String("path", path))
			continue
		case err != nil:
			return nil, nil, err
		}
		found[path] = e.Spectra
		paths = append(paths, path)
	}
	return found, paths, nil
}

// PrintResults prints the stored spectra named name.
func (f *Facade) PrintResults(ctx context.Context, w io.Writer, source, name, opt string) error {
	found, paths, err := f.Spectra(ctx, source, name)
	if err != nil {
		return err
	}
	for _, path := range paths {
		fmt.Fprintf(w, "=== %s\n", path)
		spectra.Print(w, found[path], opt)
	}
	return nil
}
