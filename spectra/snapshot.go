package spectra

import (
	"fmt"

	"github.com/benjaminaudurier/anna/result"
)

// Snapshot is the serialisable form of a Spectra.
type Snapshot struct {
	Name    string          `json:"name" yaml:"name"`
	Title   string          `json:"title,omitempty" yaml:"title,omitempty"`
	Entries []EntrySnapshot `json:"entries" yaml:"entries"`
}

type EntrySnapshot struct {
	Key    string          `json:"key" yaml:"key"`
	Bin    *Bin            `json:"bin,omitempty" yaml:"bin,omitempty"`
	Result result.Snapshot `json:"result" yaml:"result"`
}

func Encode(s *Spectra) (Snapshot, error) {
	snap := Snapshot{Name: s.name, Title: s.title}
	for _, key := range s.keys {
		r, err := result.Encode(s.results[key])
		if err != nil {
			return Snapshot{}, fmt.Errorf("spectra: could not encode bin %q: %w", key, err)
		}
		e := EntrySnapshot{Key: key, Result: r}
		if b, ok := s.bins[key]; ok {
			e.Bin = &b
		}
		snap.Entries = append(snap.Entries, e)
	}
	return snap, nil
}

func Decode(snap Snapshot) (*Spectra, error) {
	s := New(snap.Name, snap.Title)
	for _, e := range snap.Entries {
		r, err := result.Decode(e.Result)
		if err != nil {
			return nil, fmt.Errorf("spectra: could not decode bin %q: %w", e.Key, err)
		}
		var bin any = e.Key
		if e.Bin != nil {
			bin = *e.Bin
		}
		s.AdoptResult(r, bin)
	}
	return s, nil
}
