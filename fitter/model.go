package fitter

import (
	"errors"
	"fmt"
	"math"

	"github.com/benjaminaudurier/anna/fittype"
)

var ErrUnknownParam = errors.New("fitter: unknown parameter")

// ParamSpec describes one fit parameter. Every free parameter is bounded;
// a spec with Max <= Min takes its bounds from the data.
type ParamSpec struct {
	Name     string
	Init     float64
	Min, Max float64
	Fixed    bool
}

// Shape is a mass distribution normalised to unity.
type Shape interface {
	Name() string
	Params() []ParamSpec
	PDF(x float64, ps []float64) float64
}

// NewShape builds the named signal or background shape.
func NewShape(name string, p Particle, low, high float64) (Shape, error) {
	switch name {
	case "gaus":
		return gaussian{p: p, low: low, high: high}, nil
	case "cb":
		return crystalBall{gaussian{p: p, low: low, high: high}}, nil
	case "exp":
		return exponential{low: low, high: high}, nil
	case "pol1":
		return polynomial{order: 1, low: low, high: high}, nil
	case "pol2":
		return polynomial{order: 2, low: low, high: high}, nil
	}
	return nil, fmt.Errorf("%w %q", fittype.ErrUnknownModel, name)
}

type gaussian struct {
	p         Particle
	low, high float64
}

func (g gaussian) Name() string { return "gaus" }

func (g gaussian) Params() []ParamSpec {
	return []ParamSpec{
		{Name: "mean", Init: g.p.Mass, Min: g.low, Max: g.high},
		{Name: "sigma", Init: g.p.Width, Min: 0.1 * g.p.Width, Max: 0.5 * (g.high - g.low)},
	}
}

func (g gaussian) PDF(x float64, ps []float64) float64 {
	z := (x - ps[0]) / ps[1]
	return math.Exp(-0.5*z*z) / (ps[1] * math.Sqrt(2*math.Pi))
}

// crystalBall has a power-law tail below the peak.
type crystalBall struct {
	gaussian
}

func (cb crystalBall) Name() string { return "cb" }

func (cb crystalBall) Params() []ParamSpec {
	return append(cb.gaussian.Params(),
		ParamSpec{Name: "alpha", Init: 1.5, Min: 0.1, Max: 10},
		ParamSpec{Name: "n", Init: 3, Min: 1.05, Max: 50},
	)
}

func (cb crystalBall) PDF(x float64, ps []float64) float64 {
	mean, sigma, alpha, n := ps[0], ps[1], math.Abs(ps[2]), ps[3]
	z := (x - mean) / sigma

	c := n / alpha / (n - 1) * math.Exp(-0.5*alpha*alpha)
	d := math.Sqrt(math.Pi/2) * (1 + math.Erf(alpha/math.Sqrt2))
	norm := 1 / (sigma * (c + d))

	if z > -alpha {
		return norm * math.Exp(-0.5*z*z)
	}
	a := math.Pow(n/alpha, n) * math.Exp(-0.5*alpha*alpha)
	b := n/alpha - alpha
	return norm * a * math.Pow(b-z, -n)
}

type exponential struct {
	low, high float64
}

func (e exponential) Name() string { return "exp" }

func (e exponential) Params() []ParamSpec {
	lim := 20 / (e.high - e.low)
	return []ParamSpec{{Name: "slope", Init: -0.1 * lim, Min: -lim, Max: lim}}
}

func (e exponential) PDF(x float64, ps []float64) float64 {
	l := e.high - e.low
	k := ps[0]
	if math.Abs(k*l) < 1e-9 {
		return 1 / l
	}
	return k * math.Exp(k*(x-e.low)) / math.Expm1(k*l)
}

// polynomial is written in u = (2x-low-high)/(high-low), in [-1, 1] over
// the window.
type polynomial struct {
	order     int
	low, high float64
}

func (p polynomial) Name() string { return fmt.Sprintf("pol%d", p.order) }

func (p polynomial) Params() []ParamSpec {
	specs := []ParamSpec{{Name: "a1", Min: -1, Max: 1}}
	if p.order == 2 {
		specs = append(specs, ParamSpec{Name: "a2", Min: -1, Max: 1})
	}
	return specs
}

func (p polynomial) PDF(x float64, ps []float64) float64 {
	l := p.high - p.low
	u := (2*x - p.low - p.high) / l
	v := 1 + ps[0]*u
	norm := l
	if p.order == 2 {
		v += ps[1] * u * u
		norm *= 1 + ps[1]/3
	}
	return v / norm
}

// Model is a signal plus background fit function. Its parameters are the
// signal yield S, the background yield B, then the signal and background
// shape parameters.
type Model struct {
	Signal     Shape
	Background Shape
	Particle   Particle
	Low, High  float64

	specs []ParamSpec
}

// NewModel builds the model described by desc for particle p. Parameter
// overrides of desc are applied to the default specs.
func NewModel(desc fittype.Descriptor, p Particle) (*Model, error) {
	low, high := p.Low, p.High
	if desc.HasRange() {
		low, high = desc.Low, desc.High
	}

	sig, err := NewShape(desc.Signal, p, low, high)
	if err != nil {
		return nil, err
	}
	bkg, err := NewShape(desc.Background, p, low, high)
	if err != nil {
		return nil, err
	}

	m := &Model{Signal: sig, Background: bkg, Particle: p, Low: low, High: high}
	m.specs = []ParamSpec{
		{Name: "S"},
		{Name: "B"},
	}
	m.specs = append(m.specs, sig.Params()...)
	m.specs = append(m.specs, bkg.Params()...)

	for name, o := range desc.Params {
		i := m.index(name)
		if i < 0 {
			return nil, fmt.Errorf("%w %q for %s+%s", ErrUnknownParam, name, sig.Name(), bkg.Name())
		}
		spec := &m.specs[i]
		if o.Bounded {
			spec.Min, spec.Max = o.Min, o.Max
		}
		if o.HasInit {
			spec.Init = o.Init
		}
		spec.Fixed = o.Fixed
		if o.Bounded && o.Min == o.Max {
			spec.Init, spec.Fixed = o.Min, true
		}
		if !spec.Fixed {
			spec.Init = math.Max(spec.Min, math.Min(spec.Max, spec.Init))
		}
	}
	return m, nil
}

func (m *Model) index(name string) int {
	for i, s := range m.specs {
		if s.Name == name {
			return i
		}
	}
	return -1
}

// Specs returns the parameter specs in evaluation order.
func (m *Model) Specs() []ParamSpec { return append([]ParamSpec(nil), m.specs...) }

// Names returns the parameter names in evaluation order.
func (m *Model) Names() []string {
	names := make([]string, len(m.specs))
	for i, s := range m.specs {
		names[i] = s.Name
	}
	return names
}

// Key returns the result key a parameter is stored under.
func (m *Model) Key(name string) string {
	switch name {
	case "mean":
		return m.Particle.MeanKey()
	case "sigma":
		return m.Particle.WidthKey()
	}
	return name
}

func (m *Model) nsig() int { return len(m.Signal.Params()) }

// SignalDensity returns the signal candidates per unit mass at x.
func (m *Model) SignalDensity(x float64, ps []float64) float64 {
	return ps[0] * m.Signal.PDF(x, ps[2:2+m.nsig()])
}

// BackgroundDensity returns the background candidates per unit mass at x.
func (m *Model) BackgroundDensity(x float64, ps []float64) float64 {
	return ps[1] * m.Background.PDF(x, ps[2+m.nsig():])
}

// Density returns the candidates per unit mass at x.
func (m *Model) Density(x float64, ps []float64) float64 {
	return m.SignalDensity(x, ps) + m.BackgroundDensity(x, ps)
}

// InWindow reports whether x is inside the fit window.
func (m *Model) InWindow(x float64) bool { return m.Low <= x && x < m.High }
