package spectra

import (
	"errors"
	"fmt"
	"image/color"

	"go-hep.org/x/hep/hplot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"

	"github.com/benjaminaudurier/anna"
	"github.com/benjaminaudurier/anna/result"
)

var ErrNothingToDraw = errors.New("spectra: nothing to draw")

// DrawOptions selects what Draw puts on the plot.
type DrawOptions struct {
	Title  string
	XLabel string

	// Quantity is the value name drawn versus bin, "S" by default.
	Quantity string

	// SubResults are drawn next to the aggregated value of each bin.
	SubResults []string
}

// Draw plots Quantity with its stat. error for every bin of s.
func Draw(s *Spectra, opts DrawOptions) (*hplot.Plot, error) {
	if opts.Quantity == "" {
		opts.Quantity = "S"
	}

	p := hplot.New()
	p.Title.Text = opts.Title
	if p.Title.Text == "" {
		p.Title.Text = s.title
	}
	p.X.Label.Text = opts.XLabel
	p.Y.Label.Text = opts.Quantity
	p.X.Tick.Marker = anna.PreciseTicks{NSuggestedTicks: 5}
	p.Y.Tick.Marker = anna.PreciseTicks{NSuggestedTicks: 5}

	series := append([]string{""}, opts.SubResults...)
	drawn := 0
	for i, sub := range series {
		points := s.errorPoints(opts.Quantity, sub)
		if len(points.XYs) == 0 {
			continue
		}

		xerr, err := plotter.NewXErrorBars(points)
		if err != nil {
			return nil, fmt.Errorf("spectra: could not create x error bars: %w", err)
		}
		yerr, err := plotter.NewYErrorBars(points)
		if err != nil {
			return nil, fmt.Errorf("spectra: could not create y error bars: %w", err)
		}
		sc, err := plotter.NewScatter(points.XYs)
		if err != nil {
			return nil, fmt.Errorf("spectra: could not create scatter: %w", err)
		}

		pointColor := plotutil.Color(i)
		if sub == "" {
			pointColor = color.RGBA{A: 255}
		}
		xerr.LineStyle.Color = pointColor
		yerr.LineStyle.Color = pointColor
		sc.GlyphStyle.Color = pointColor

		p.Add(xerr, yerr, sc)
		label := sub
		if label == "" {
			label = "mean"
		}
		p.Legend.Add(label, sc)
		drawn++
	}

	if drawn == 0 {
		return nil, fmt.Errorf("%w: no %q value in %q", ErrNothingToDraw, opts.Quantity, s.name)
	}
	return p, nil
}

// errorPoints collects the points of one series. Bins adopted without a
// kinematic range are placed at their index.
func (s *Spectra) errorPoints(quantity, sub string) plotutil.ErrorPoints {
	var points plotutil.ErrorPoints
	for i, key := range s.keys {
		r := s.results[key]
		v, err := result.ValueOf(r, quantity, sub)
		if err != nil {
			continue
		}
		e, err := result.ErrorStatOf(r, quantity, sub)
		if err != nil {
			e = 0
		}

		x, dx := float64(i), 0.5
		if b, ok := s.bins[key]; ok {
			x, dx = b.Center(), b.HalfWidth()
		}
		points.XYs = append(points.XYs, plotter.XY{X: x, Y: v})
		points.XErrors = append(points.XErrors, struct{ Low, High float64 }{dx, dx})
		points.YErrors = append(points.YErrors, struct{ Low, High float64 }{e, e})
	}
	return points
}
