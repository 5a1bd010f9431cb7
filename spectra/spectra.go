// Package spectra stores fit results per kinematic bin.
package spectra

import (
	"fmt"
	"io"
	"strconv"

	"github.com/benjaminaudurier/anna/result"
)

// Bin is a slice [Low, High) of a kinematic variable.
type Bin struct {
	Variable string  `json:"variable" yaml:"variable"`
	Low      float64 `json:"low" yaml:"low"`
	High     float64 `json:"high" yaml:"high"`
}

func (b Bin) String() string {
	return b.Variable + "_" + strconv.FormatFloat(b.Low, 'f', 2, 64) + "_" + strconv.FormatFloat(b.High, 'f', 2, 64)
}

func (b Bin) Center() float64    { return 0.5 * (b.Low + b.High) }
func (b Bin) HalfWidth() float64 { return 0.5 * (b.High - b.Low) }

// Contains reports whether x falls inside [Low, High).
func (b Bin) Contains(x float64) bool { return x >= b.Low && x < b.High }

// Spectra maps a bin key to the result fitted in that bin.
type Spectra struct {
	name  string
	title string

	keys    []string
	bins    map[string]Bin
	results map[string]result.Result
}

func New(name, title string) *Spectra {
	return &Spectra{
		name:    name,
		title:   title,
		bins:    make(map[string]Bin),
		results: make(map[string]result.Result),
	}
}

func (s *Spectra) Name() string  { return s.name }
func (s *Spectra) Title() string { return s.title }

// AdoptResult stores r under the string form of bin. It returns 1 when a
// new bin was added and 0 otherwise: r is nil, or the bin was already
// present, in which case the stored result is replaced.
func (s *Spectra) AdoptResult(r result.Result, bin any) int {
	if r == nil {
		return 0
	}
	key := fmt.Sprint(bin)
	if b, ok := bin.(Bin); ok {
		s.bins[key] = b
	}
	_, dup := s.results[key]
	s.results[key] = r
	if dup {
		return 0
	}
	s.keys = append(s.keys, key)
	return 1
}

// ResultsForBin returns the result stored under key.
func (s *Spectra) ResultsForBin(key any) (result.Result, bool) {
	r, ok := s.results[fmt.Sprint(key)]
	return r, ok
}

// Bins returns the bin keys in adoption order.
func (s *Spectra) Bins() []string {
	return append([]string(nil), s.keys...)
}

// Bin returns the kinematic bin adopted under key, if any.
func (s *Spectra) Bin(key string) (Bin, bool) {
	b, ok := s.bins[key]
	return b, ok
}

func (s *Spectra) Results() map[string]result.Result {
	out := make(map[string]result.Result, len(s.results))
	for k, v := range s.results {
		out[k] = v
	}
	return out
}

// Print writes every bin result with result.Print.
func Print(w io.Writer, s *Spectra, opt string) {
	fmt.Fprintf(w, "spectra %s (%s): %d bins\n", s.name, s.title, len(s.keys))
	for _, key := range s.keys {
		fmt.Fprintf(w, "--- bin %s\n", key)
		result.Print(w, s.results[key], opt)
	}
}
