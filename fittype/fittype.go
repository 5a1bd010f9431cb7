// Package fittype parses fit-type descriptors such as
//
//	signal=cb|bkgr=exp|range=2900;3300|alpha=1.5
//
// A descriptor names exactly one signal shape and one background shape.
// The keys range, nbins, weight and rebin configure the fit itself, and any
// other key overrides a model parameter.
package fittype

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

var (
	ErrMissingSignal     = errors.New("fittype: missing signal= entry")
	ErrMissingBackground = errors.New("fittype: missing bkgr= entry")
	ErrDuplicateKey      = errors.New("fittype: duplicate key")
	ErrMalformed         = errors.New("fittype: malformed entry")
	ErrUnknownModel      = errors.New("fittype: unknown model")
)

// Known shapes.
var (
	Signals     = []string{"gaus", "cb"}
	Backgrounds = []string{"exp", "pol1", "pol2"}
)

// Param overrides one model parameter. A fixed parameter keeps Init during
// the fit; a bounded one is kept within [Min, Max].
type Param struct {
	Init    float64
	Min     float64
	Max     float64
	HasInit bool
	Fixed   bool
	Bounded bool
}

func (p Param) String() string {
	switch {
	case p.Fixed:
		return ftoa(p.Init)
	case p.HasInit && p.Bounded:
		return ftoa(p.Init) + ";" + ftoa(p.Min) + ";" + ftoa(p.Max)
	case p.Bounded:
		return ftoa(p.Min) + ";" + ftoa(p.Max)
	}
	return ""
}

// Clamp brings v into the parameter bounds, if any.
func (p Param) Clamp(v float64) float64 {
	if !p.Bounded {
		return v
	}
	if v < p.Min {
		return p.Min
	}
	if v > p.Max {
		return p.Max
	}
	return v
}

// Descriptor is a parsed fit type.
type Descriptor struct {
	Signal     string
	Background string

	// Fit window. Both zero means the particle default.
	Low, High float64

	NBins  int
	Rebin  int
	Weight float64

	Params map[string]Param
}

// HasRange reports whether the descriptor sets its own fit window.
func (d Descriptor) HasRange() bool { return d.Low != 0 || d.High != 0 }

// Param returns the override for name.
func (d Descriptor) Param(name string) (Param, bool) {
	p, ok := d.Params[name]
	return p, ok
}

// String returns the canonical form of d. Two descriptors with the same
// meaning print the same.
func (d Descriptor) String() string {
	parts := []string{"signal=" + d.Signal, "bkgr=" + d.Background}
	if d.HasRange() {
		parts = append(parts, "range="+ftoa(d.Low)+";"+ftoa(d.High))
	}
	if d.NBins > 0 {
		parts = append(parts, "nbins="+strconv.Itoa(d.NBins))
	}
	if d.Rebin > 1 {
		parts = append(parts, "rebin="+strconv.Itoa(d.Rebin))
	}
	if d.Weight != 1 {
		parts = append(parts, "weight="+ftoa(d.Weight))
	}

	names := make([]string, 0, len(d.Params))
	for name := range d.Params {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		parts = append(parts, name+"="+d.Params[name].String())
	}
	return strings.Join(parts, "|")
}

// Parse reads a descriptor. Whitespace is ignored and empty entries are
// skipped.
func Parse(s string) (Descriptor, error) {
	d := Descriptor{Weight: 1}
	seen := make(map[string]bool)

	for _, entry := range strings.Split(strings.Join(strings.Fields(s), ""), "|") {
		if entry == "" {
			continue
		}
		key, value, ok := strings.Cut(entry, "=")
		if !ok || key == "" || value == "" {
			return Descriptor{}, fmt.Errorf("%w: %q", ErrMalformed, entry)
		}
		if key == "bckgr" {
			key = "bkgr"
		}
		if seen[key] {
			return Descriptor{}, fmt.Errorf("%w: %q in %q", ErrDuplicateKey, key, s)
		}
		seen[key] = true

		var err error
		switch key {
		case "signal":
			d.Signal, err = model(value, Signals)
		case "bkgr":
			d.Background, err = model(value, Backgrounds)
		case "range":
			d.Low, d.High, err = parseRange(value)
		case "nbins":
			d.NBins, err = parsePositive(value)
		case "rebin":
			d.Rebin, err = parsePositive(value)
		case "weight":
			d.Weight, err = strconv.ParseFloat(value, 64)
		default:
			var p Param
			p, err = parseParam(value)
			if d.Params == nil {
				d.Params = make(map[string]Param)
			}
			d.Params[key] = p
		}
		if err != nil {
			return Descriptor{}, fmt.Errorf("fittype: could not parse %q: %w", entry, err)
		}
	}

	switch {
	case d.Signal == "":
		return Descriptor{}, fmt.Errorf("%w in %q", ErrMissingSignal, s)
	case d.Background == "":
		return Descriptor{}, fmt.Errorf("%w in %q", ErrMissingBackground, s)
	}
	return d, nil
}

// MustParse is like Parse but panics on error.
func MustParse(s string) Descriptor {
	d, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return d
}

func model(name string, known []string) (string, error) {
	name = strings.ToLower(name)
	for _, k := range known {
		if k == name {
			return name, nil
		}
	}
	return "", fmt.Errorf("%w %q, expected one of %s", ErrUnknownModel, name, strings.Join(known, ","))
}

func parseRange(v string) (lo, hi float64, err error) {
	fields, err := floats(v)
	if err != nil {
		return 0, 0, err
	}
	if len(fields) != 2 || fields[0] >= fields[1] {
		return 0, 0, fmt.Errorf("%w: range wants min;max with min<max", ErrMalformed)
	}
	return fields[0], fields[1], nil
}

func parsePositive(v string) (int, error) {
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, err
	}
	if n <= 0 {
		return 0, fmt.Errorf("%w: %d is not positive", ErrMalformed, n)
	}
	return n, nil
}

func parseParam(v string) (Param, error) {
	fields, err := floats(v)
	if err != nil {
		return Param{}, err
	}
	switch len(fields) {
	case 1:
		return Param{Init: fields[0], HasInit: true, Fixed: true}, nil
	case 2:
		if fields[0] > fields[1] {
			return Param{}, fmt.Errorf("%w: min>max", ErrMalformed)
		}
		if fields[0] == fields[1] {
			return Param{Init: fields[0], HasInit: true, Fixed: true}, nil
		}
		return Param{Min: fields[0], Max: fields[1], Bounded: true}, nil
	case 3:
		if fields[1] > fields[2] {
			return Param{}, fmt.Errorf("%w: min>max", ErrMalformed)
		}
		// A zero-width range pins the parameter.
		if fields[1] == fields[2] {
			return Param{Init: fields[1], HasInit: true, Fixed: true}, nil
		}
		p := Param{Init: fields[0], Min: fields[1], Max: fields[2], HasInit: true, Bounded: true}
		p.Init = p.Clamp(p.Init)
		return p, nil
	}
	return Param{}, fmt.Errorf("%w: parameter wants v, min;max or init;min;max", ErrMalformed)
}

func floats(v string) ([]float64, error) {
	parts := strings.Split(v, ";")
	out := make([]float64, len(parts))
	for i, p := range parts {
		f, err := strconv.ParseFloat(p, 64)
		if err != nil {
			return nil, err
		}
		out[i] = f
	}
	return out, nil
}

func ftoa(v float64) string { return strconv.FormatFloat(v, 'g', -1, 64) }
