// Package result holds fit results and aggregates them across sub-fits.
//
// A Result is either a *Leaf, which stores named (value, stat. error, rms)
// records for one fit, or a *Composite, which holds named sub-results and
// merges their records with a weighted mean or a sum. Sub-results whose fit
// did not converge, or whose chi2/ndf is too large, are left out of every
// aggregate.
package result

import (
	"errors"
	"fmt"
)

// Keys of the fit diagnostics read by the quality gate.
const (
	FitResultKey       = "FitResult"
	CovMatrixStatusKey = "CovMatrixStatus"
	Chi2PerNDFKey      = "FitChi2PerNDF"
)

const (
	defaultFitStatus = 0
	defaultCovStatus = 3
	defaultChi2      = 1
	maxChi2PerNDF    = 2.5
)

var (
	ErrNoValue      = errors.New("result: no such value")
	ErrNoSubResult  = errors.New("result: no such sub-result")
	ErrNoQualifying = errors.New("result: no qualifying sub-result")
	ErrUndefined    = errors.New("result: aggregate undefined")
)

// Record is one named measurement.
type Record struct {
	Value     float64
	StatError float64
	RMS       float64
}

// Result is implemented by *Leaf and *Composite.
type Result interface {
	Name() string
	Title() string
	Weight() float64
	SetWeight(w float64)

	// Names lists the value names known to the result.
	Names() []string
	Value(name string) (float64, error)
	ErrorStat(name string) (float64, error)
	// RMS returns 0 when the spread cannot be computed.
	RMS(name string) float64
	HasValue(name string) int

	SubResult(name string) (Result, error)
}

// MergePolicy selects how a Composite combines its sub-results.
type MergePolicy int

const (
	Mean MergePolicy = iota
	Sum
)

func (p MergePolicy) String() string {
	switch p {
	case Mean:
		return "mean"
	case Sum:
		return "sum"
	}
	return fmt.Sprintf("MergePolicy(%d)", int(p))
}

// ParsePolicy is the inverse of MergePolicy.String.
func ParsePolicy(s string) (MergePolicy, error) {
	switch s {
	case "mean", "":
		return Mean, nil
	case "sum":
		return Sum, nil
	}
	return Mean, fmt.Errorf("result: unknown merge policy %q", s)
}

// ValueOf returns r.Value(name), or the value of the named sub-result when
// sub is not empty.
func ValueOf(r Result, name, sub string) (float64, error) {
	if sub == "" {
		return r.Value(name)
	}
	s, err := r.SubResult(sub)
	if err != nil {
		return 0, err
	}
	return s.Value(name)
}

// ErrorStatOf is the ErrorStat counterpart of ValueOf.
func ErrorStatOf(r Result, name, sub string) (float64, error) {
	if sub == "" {
		return r.ErrorStat(name)
	}
	s, err := r.SubResult(sub)
	if err != nil {
		return 0, err
	}
	return s.ErrorStat(name)
}

// RMSOf is the RMS counterpart of ValueOf. It returns 0 for an unknown
// sub-result.
func RMSOf(r Result, name, sub string) float64 {
	if sub == "" {
		return r.RMS(name)
	}
	s, err := r.SubResult(sub)
	if err != nil {
		return 0
	}
	return s.RMS(name)
}

// HasValueOf is the HasValue counterpart of ValueOf. It returns 0 for an
// unknown sub-result.
func HasValueOf(r Result, name, sub string) int {
	if sub == "" {
		return r.HasValue(name)
	}
	s, err := r.SubResult(sub)
	if err != nil {
		return 0
	}
	return s.HasValue(name)
}

func valueOr(r Result, name string, def float64) float64 {
	v, err := r.Value(name)
	if err != nil {
		return def
	}
	return v
}
