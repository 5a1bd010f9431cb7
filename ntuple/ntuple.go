// Package ntuple reads dimuon candidates from ROOT trees and projects their
// invariant mass into histograms.
package ntuple

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
)

// DefaultTreePath is the location of the candidate tree in DaVinci output.
const DefaultTreePath = "Jpsi/DecayTree"

var ErrMissingBranch = errors.New("ntuple: missing branch")

// Row gives access to the values of the current entry.
type Row map[string]float64

// Get returns the value of a branch.
func (r Row) Get(name string) (float64, bool) {
	v, ok := r[name]
	return v, ok
}

// Source is a table of candidates.
type Source interface {
	Name() string
	Branches() []string

	// Scan calls fn for every entry, with only the named branches filled.
	Scan(ctx context.Context, branches []string, fn func(Row) error) error
}

// CheckBranches reports every name missing from src.
func CheckBranches(src Source, names ...string) error {
	have := make(map[string]struct{})
	for _, b := range src.Branches() {
		have[b] = struct{}{}
	}
	var missing []string
	for _, name := range names {
		if _, ok := have[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return fmt.Errorf("%w in %q: %s", ErrMissingBranch, src.Name(), strings.Join(missing, ", "))
	}
	return nil
}

// Table is an in-memory Source with float64 columns.
type Table struct {
	name    string
	columns []string
	index   map[string]int
	rows    [][]float64
}

func NewTable(name string, columns ...string) *Table {
	t := &Table{
		name:    name,
		columns: append([]string(nil), columns...),
		index:   make(map[string]int, len(columns)),
	}
	for i, c := range columns {
		t.index[c] = i
	}
	return t
}

func (t *Table) Name() string       { return t.name }
func (t *Table) Branches() []string { return append([]string(nil), t.columns...) }
func (t *Table) Len() int           { return len(t.rows) }

// Fill appends one entry, with values in column order.
func (t *Table) Fill(values ...float64) error {
	if len(values) != len(t.columns) {
		return fmt.Errorf("ntuple: got %d values for %d columns", len(values), len(t.columns))
	}
	t.rows = append(t.rows, append([]float64(nil), values...))
	return nil
}

func (t *Table) Scan(ctx context.Context, branches []string, fn func(Row) error) error {
	if err := CheckBranches(t, branches...); err != nil {
		return err
	}
	row := make(Row, len(branches))
	for i, values := range t.rows {
		if i%1024 == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}
		for _, b := range branches {
			row[b] = values[t.index[b]]
		}
		if err := fn(row); err != nil {
			return err
		}
	}
	return nil
}
