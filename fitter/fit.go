package fitter

import (
	"errors"
	"fmt"
	"math"

	"go-hep.org/x/hep/fit"
	"go-hep.org/x/hep/hbook"
	"gonum.org/v1/gonum/diff/fd"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize"

	"github.com/benjaminaudurier/anna/fittype"
	"github.com/benjaminaudurier/anna/result"
)

var ErrTooFewBins = errors.New("fitter: too few filled bins")

// Fit status codes, as stored under result.FitResultKey.
const (
	StatusOK        = 0
	StatusFailed    = 1
	StatusCovFailed = 4000
)

// Covariance matrix status codes, as stored under result.CovMatrixStatusKey.
const (
	CovNone   = 0
	CovForced = 1
	CovFull   = 3
)

type point struct {
	x, y, w float64
}

// points collects the bins of h inside the window of m, merged by groups
// of rebin. A trailing incomplete group is dropped.
func points(h *hbook.H1D, m *Model, desc fittype.Descriptor) []point {
	var raw []point
	for _, b := range h.Binning.Bins {
		if m.InWindow(b.XMid()) {
			raw = append(raw, point{x: b.XMid(), y: b.SumW(), w: b.XWidth()})
		}
	}

	rebin := desc.Rebin
	if rebin == 0 && desc.NBins > 0 {
		rebin = len(raw) / desc.NBins
	}
	if rebin <= 1 {
		return raw
	}

	var out []point
	for i := 0; i+rebin <= len(raw); i += rebin {
		var p point
		for _, r := range raw[i : i+rebin] {
			p.x += r.x
			p.y += r.y
			p.w += r.w
		}
		p.x /= float64(rebin)
		out = append(out, p)
	}
	return out
}

// transform maps the free parameters onto an unbounded space with
// p = min + (max-min)(sin(q)+1)/2.
type transform struct {
	specs []ParamSpec
	free  []int
}

func newTransform(specs []ParamSpec) transform {
	t := transform{specs: specs}
	for i, s := range specs {
		if !s.Fixed {
			t.free = append(t.free, i)
		}
	}
	return t
}

func (t transform) start() []float64 {
	q := make([]float64, len(t.free))
	for j, i := range t.free {
		s := t.specs[i]
		u := 2*(s.Init-s.Min)/(s.Max-s.Min) - 1
		q[j] = math.Asin(math.Max(-1, math.Min(1, u)))
	}
	return q
}

func (t transform) external(q []float64) []float64 {
	ps := make([]float64, len(t.specs))
	for i, s := range t.specs {
		ps[i] = s.Init
	}
	for j, i := range t.free {
		s := t.specs[i]
		ps[i] = s.Min + (s.Max-s.Min)*(math.Sin(q[j])+1)/2
	}
	return ps
}

// with returns ps with its free parameters replaced by free.
func (t transform) with(ps, free []float64) []float64 {
	out := append([]float64(nil), ps...)
	for j, i := range t.free {
		out[i] = free[j]
	}
	return out
}

// FitHistogram fits the mass histogram h with the model described by desc.
// The returned leaf is named after the canonical descriptor and holds the
// yields S and B, the shape parameters and the fit diagnostics.
func FitHistogram(h *hbook.H1D, desc fittype.Descriptor, p Particle) (*result.Leaf, error) {
	m, err := NewModel(desc, p)
	if err != nil {
		return nil, err
	}

	pts := points(h, m, desc)
	var (
		total      float64
		xs, ys, es []float64
	)
	for _, pt := range pts {
		total += pt.y
		if pt.y > 0 {
			xs = append(xs, pt.x)
			ys = append(ys, pt.y)
			es = append(es, math.Sqrt(pt.y))
		}
	}

	specs := m.Specs()
	for i := range specs[:2] {
		if s := &specs[i]; !s.Fixed && s.Max <= s.Min {
			s.Min, s.Max = 0, 2*total+10
			s.Init = total / 2
		}
	}
	tr := newTransform(specs)

	ndf := len(xs) - len(tr.free)
	if ndf <= 0 {
		return nil, fmt.Errorf("%w: %d bins for %d free parameters in %q", ErrTooFewBins, len(xs), len(tr.free), desc)
	}
	width := pts[0].w

	status := StatusOK
	best := tr.external(tr.start())
	res, err := fit.Curve1D(
		fit.Func1D{
			F: func(x float64, q []float64) float64 {
				return width * m.Density(x, tr.external(q))
			},
			X:   xs,
			Y:   ys,
			Err: es,
			Ps:  tr.start(),
		},
		nil, &optimize.NelderMead{},
	)
	switch {
	case err != nil || res == nil:
		status = StatusFailed
		if res != nil {
			best = tr.external(res.X)
		}
	default:
		best = tr.external(res.X)
	}

	chi2 := func(ps []float64) float64 {
		var c float64
		for i, x := range xs {
			d := (ys[i] - width*m.Density(x, ps)) / es[i]
			c += d * d
		}
		return c
	}

	errs, covStatus := parameterErrors(tr, best, chi2)
	if status == StatusOK && covStatus != CovFull {
		status = StatusCovFailed
	}

	leaf := result.NewLeaf(desc.String(), p.Name)
	leaf.SetWeight(desc.Weight)
	for i, s := range specs {
		leaf.Set(m.Key(s.Name), best[i], errs[i], 0)
	}
	leaf.Set(result.FitResultKey, float64(status), 0, 0)
	leaf.Set(result.CovMatrixStatusKey, float64(covStatus), 0, 0)
	leaf.Set(result.Chi2PerNDFKey, chi2(best)/float64(ndf), 0, 0)
	leaf.Hist = h
	return leaf, nil
}

// parameterErrors returns the errors of every parameter from the chi2
// Hessian at best. The Hessian is taken in units of each parameter range.
// Fixed parameters get a zero error.
func parameterErrors(tr transform, best []float64, chi2 func([]float64) float64) ([]float64, int) {
	n := len(tr.free)
	errs := make([]float64, len(best))
	if n == 0 {
		return errs, CovFull
	}

	scale := make([]float64, n)
	y := make([]float64, n)
	for j, i := range tr.free {
		scale[j] = tr.specs[i].Max - tr.specs[i].Min
		y[j] = best[i] / scale[j]
	}
	f := func(y []float64) float64 {
		free := make([]float64, n)
		for j := range y {
			free[j] = y[j] * scale[j]
		}
		return chi2(tr.with(best, free))
	}

	hess := mat.NewSymDense(n, nil)
	fd.Hessian(hess, f, y, &fd.Settings{Formula: fd.Central, Step: 1e-4})

	diag, status := inverseDiagonal(hess)
	for j, i := range tr.free {
		// cov = 2 H^-1 for a chi2
		errs[i] = scale[j] * math.Sqrt(math.Abs(2*diag[j]))
	}
	return errs, status
}

func inverseDiagonal(h *mat.SymDense) ([]float64, int) {
	n := h.SymmetricDim()
	diag := make([]float64, n)

	var chol mat.Cholesky
	if chol.Factorize(h) {
		var inv mat.SymDense
		if err := chol.InverseTo(&inv); err == nil {
			for i := range diag {
				diag[i] = inv.At(i, i)
			}
			return diag, CovFull
		}
	}

	var inv mat.Dense
	if err := inv.Inverse(h); err == nil {
		for i := range diag {
			diag[i] = inv.At(i, i)
		}
		return diag, CovForced
	}
	return diag, CovNone
}

// Curve rebuilds the model of a fitted leaf and its parameters, in the
// order of Model.Names.
func Curve(leaf *result.Leaf, p Particle) (*Model, []float64, error) {
	desc, err := fittype.Parse(leaf.Name())
	if err != nil {
		return nil, nil, err
	}
	m, err := NewModel(desc, p)
	if err != nil {
		return nil, nil, err
	}
	names := m.Names()
	ps := make([]float64, len(names))
	for i, name := range names {
		v, err := leaf.Value(m.Key(name))
		if err != nil {
			return nil, nil, fmt.Errorf("fitter: could not rebuild %q: %w", leaf.Name(), err)
		}
		ps[i] = v
	}
	return m, ps, nil
}
