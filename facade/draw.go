package facade

import (
	"context"
	"fmt"
	"image/color"
	"os"
	"path/filepath"
	"strings"

	"go-hep.org/x/hep/hplot"
	"go.uber.org/zap"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/benjaminaudurier/anna"
	"github.com/benjaminaudurier/anna/fitter"
	"github.com/benjaminaudurier/anna/result"
	"github.com/benjaminaudurier/anna/spectra"
)

const tileSize = 3 * vg.Inch

// DrawFitResults draws, for every combination of the steering file, the
// fitted histograms of the stored spectra on one canvas, with the signal
// yield, mean and width of each fit. Only the given sub-results are drawn
// when subResults is not empty. It returns the written files.
func (f *Facade) DrawFitResults(ctx context.Context, p fitter.Particle, spectraName, source string, subResults []string, outDir string) ([]string, error) {
	found, paths, err := f.Spectra(ctx, source, spectraName)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, err
	}

	var outputs []string
	for _, path := range paths {
		frames := f.frames(found[path], p, subResults)
		if len(frames) == 0 {
			f.Logger.Warn("cannot retrieve any frame", zap.String("path", path))
			continue
		}

		cols, rows := anna.TileGrid(len(frames))
		output := filepath.Join(outDir, FileName(path)+".png")
		err := anna.SaveTiles(frames, cols, rows, vg.Length(cols)*tileSize, vg.Length(rows)*tileSize, output)
		if err != nil {
			return outputs, fmt.Errorf("facade: could not save %q: %w", output, err)
		}
		f.Logger.Info("drew fit results", zap.String("path", path), zap.String("output", output))
		outputs = append(outputs, output)
	}
	return outputs, nil
}

func (f *Facade) frames(sp *spectra.Spectra, p fitter.Particle, subResults []string) []*plot.Plot {
	var frames []*plot.Plot
	for _, bin := range sp.Bins() {
		r, _ := sp.ResultsForBin(bin)
		c, ok := r.(*result.Composite)
		if !ok {
			continue
		}
		names := subResults
		if len(names) == 0 {
			names = c.SubResultNames()
		}
		for _, name := range names {
			sub, err := c.SubResult(name)
			if err != nil {
				f.Logger.Debug("no sub-result in bin", zap.String("bin", bin), zap.String("sub", name))
				continue
			}
			leaf, ok := sub.(*result.Leaf)
			if !ok || leaf.Hist == nil {
				f.Logger.Warn("cannot find frame in sub-result", zap.String("bin", bin), zap.String("sub", name))
				continue
			}
			frame, err := drawFit(leaf, p, bin)
			if err != nil {
				f.Logger.Warn("cannot draw sub-result", zap.String("bin", bin), zap.String("sub", name), zap.Error(err))
				continue
			}
			frames = append(frames, frame)
		}
	}
	return frames
}

// drawFit draws the histogram of leaf with its fitted function and the
// fitted quantities in the legend.
func drawFit(leaf *result.Leaf, p fitter.Particle, bin string) (*plot.Plot, error) {
	m, ps, err := fitter.Curve(leaf, p)
	if err != nil {
		return nil, err
	}

	plt := hplot.New()
	plt.Title.Text = bin
	plt.X.Label.Text = "Mass (MeV)"
	plt.X.Tick.Marker = anna.PreciseTicks{NSuggestedTicks: 4}
	plt.Y.Tick.Marker = anna.PreciseTicks{NSuggestedTicks: 4}

	h := hplot.NewH1D(leaf.Hist)
	h.FillColor = nil
	h.LineStyle.Color = anna.LineColor(0)
	h.Infos.Style = hplot.HInfoNone
	plt.Add(h)

	width := leaf.Hist.Binning.Bins[0].XWidth()
	curve := plotter.NewFunction(func(x float64) float64 { return width * m.Density(x, ps) })
	curve.XMin, curve.XMax = m.Low, m.High
	curve.Samples = 200
	curve.Color = color.RGBA{R: 255, A: 255}
	plt.Add(curve)

	bkg := plotter.NewFunction(func(x float64) float64 { return width * m.BackgroundDensity(x, ps) })
	bkg.XMin, bkg.XMax = m.Low, m.High
	bkg.Samples = 200
	bkg.Color = anna.LineColor(2)
	bkg.Dashes = []vg.Length{vg.Points(4), vg.Points(2)}
	plt.Add(bkg)

	for _, key := range []string{"S", p.MeanKey(), p.WidthKey()} {
		v, e := 0.0, 0.0
		if leaf.HasValue(key) > 0 {
			v, _ = leaf.Value(key)
			e, _ = leaf.ErrorStat(key)
		}
		plt.Legend.Add(fmt.Sprintf("%s : %.1f +- %.1f", key, v, e))
	}
	plt.Legend.Top = true
	return plt.Plot, nil
}

// FileName turns a store path into a file name.
func FileName(path string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-':
			return r
		}
		return '_'
	}, path)
}
