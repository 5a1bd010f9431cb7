package result

import (
	"fmt"

	"go-hep.org/x/hep/hbook"
)

// Leaf holds the records of a single fit.
type Leaf struct {
	name   string
	title  string
	weight float64

	keys    []string
	records map[string]*Record

	// Hist is the histogram the fit was performed on, if kept.
	Hist *hbook.H1D
}

func NewLeaf(name, title string) *Leaf {
	return &Leaf{
		name:    name,
		title:   title,
		weight:  1,
		records: make(map[string]*Record),
	}
}

func (l *Leaf) Name() string        { return l.name }
func (l *Leaf) Title() string       { return l.title }
func (l *Leaf) Weight() float64     { return l.weight }
func (l *Leaf) SetWeight(w float64) { l.weight = w }
func (l *Leaf) Names() []string     { return append([]string(nil), l.keys...) }
func (l *Leaf) HasValue(name string) int {
	if _, ok := l.records[name]; ok {
		return 1
	}
	return 0
}

// Set inserts or replaces the record stored under name.
func (l *Leaf) Set(name string, value, statError, rms float64) {
	rec, ok := l.records[name]
	if !ok {
		rec = &Record{}
		l.records[name] = rec
		l.keys = append(l.keys, name)
	}
	rec.Value = value
	rec.StatError = statError
	rec.RMS = rms
}

// Record returns a copy of the record stored under name.
func (l *Leaf) Record(name string) (Record, bool) {
	rec, ok := l.records[name]
	if !ok {
		return Record{}, false
	}
	return *rec, true
}

func (l *Leaf) Value(name string) (float64, error) {
	rec, ok := l.records[name]
	if !ok {
		return 0, fmt.Errorf("%w: %q in %q", ErrNoValue, name, l.name)
	}
	return rec.Value, nil
}

func (l *Leaf) ErrorStat(name string) (float64, error) {
	rec, ok := l.records[name]
	if !ok {
		return 0, fmt.Errorf("%w: %q in %q", ErrNoValue, name, l.name)
	}
	return rec.StatError, nil
}

func (l *Leaf) RMS(name string) float64 {
	rec, ok := l.records[name]
	if !ok {
		return 0
	}
	return rec.RMS
}

func (l *Leaf) SubResult(name string) (Result, error) {
	return nil, fmt.Errorf("%w: %q has no sub-results (asked for %q)", ErrNoSubResult, l.name, name)
}

// Scale multiplies value, error and rms of every record by w.
func (l *Leaf) Scale(w float64) {
	for _, key := range l.keys {
		rec := l.records[key]
		l.Set(key, rec.Value*w, rec.StatError*w, rec.RMS*w)
	}
}
