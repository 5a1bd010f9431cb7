package result

import (
	"fmt"

	"go-hep.org/x/hep/hbook"
)

const (
	kindLeaf      = "leaf"
	kindComposite = "composite"
)

// Snapshot is the serialisable form of a Result tree. The histogram held
// by a Leaf is kept in YODA format.
type Snapshot struct {
	Kind   string  `json:"kind" yaml:"kind"`
	Name   string  `json:"name" yaml:"name"`
	Title  string  `json:"title,omitempty" yaml:"title,omitempty"`
	Weight float64 `json:"weight" yaml:"weight"`

	Records []NamedRecord `json:"records,omitempty" yaml:"records,omitempty"`
	Hist    string        `json:"hist,omitempty" yaml:"-"`

	Policy     string     `json:"policy,omitempty" yaml:"policy,omitempty"`
	IncludeAll bool       `json:"include_all,omitempty" yaml:"include_all,omitempty"`
	Included   []string   `json:"included,omitempty" yaml:"included,omitempty"`
	Children   []Snapshot `json:"children,omitempty" yaml:"children,omitempty"`
}

type NamedRecord struct {
	Name      string  `json:"name" yaml:"name"`
	Value     float64 `json:"value" yaml:"value"`
	StatError float64 `json:"stat" yaml:"stat"`
	RMS       float64 `json:"rms" yaml:"rms"`
}

// Encode converts r into a Snapshot.
func Encode(r Result) (Snapshot, error) {
	switch r := r.(type) {
	case *Leaf:
		snap := Snapshot{
			Kind:   kindLeaf,
			Name:   r.name,
			Title:  r.title,
			Weight: r.weight,
		}
		for _, key := range r.keys {
			rec := r.records[key]
			snap.Records = append(snap.Records, NamedRecord{
				Name:      key,
				Value:     rec.Value,
				StatError: rec.StatError,
				RMS:       rec.RMS,
			})
		}
		if r.Hist != nil {
			raw, err := r.Hist.MarshalYODA()
			if err != nil {
				return Snapshot{}, fmt.Errorf("result: could not encode histogram of %q: %w", r.name, err)
			}
			snap.Hist = string(raw)
		}
		return snap, nil

	case *Composite:
		snap := Snapshot{
			Kind:       kindComposite,
			Name:       r.name,
			Title:      r.title,
			Weight:     r.weight,
			Policy:     r.policy.String(),
			IncludeAll: r.included == nil,
		}
		for _, sub := range r.order {
			if r.included != nil && r.IsIncluded(sub) {
				snap.Included = append(snap.Included, sub)
			}
			child, err := Encode(r.children[sub])
			if err != nil {
				return Snapshot{}, err
			}
			snap.Children = append(snap.Children, child)
		}
		return snap, nil

	case nil:
		return Snapshot{}, fmt.Errorf("result: cannot encode nil result")
	}
	return Snapshot{}, fmt.Errorf("result: cannot encode %T", r)
}

// Decode rebuilds the Result tree described by snap.
func Decode(snap Snapshot) (Result, error) {
	switch snap.Kind {
	case kindLeaf:
		l := NewLeaf(snap.Name, snap.Title)
		l.weight = snap.Weight
		for _, rec := range snap.Records {
			l.Set(rec.Name, rec.Value, rec.StatError, rec.RMS)
		}
		if snap.Hist != "" {
			h := hbook.NewH1D(1, 0, 1)
			if err := h.UnmarshalYODA([]byte(snap.Hist)); err != nil {
				return nil, fmt.Errorf("result: could not decode histogram of %q: %w", snap.Name, err)
			}
			l.Hist = h
		}
		return l, nil

	case kindComposite:
		policy, err := ParsePolicy(snap.Policy)
		if err != nil {
			return nil, err
		}
		c := NewComposite(snap.Name, snap.Title)
		c.weight = snap.Weight
		c.policy = policy
		for _, child := range snap.Children {
			r, err := Decode(child)
			if err != nil {
				return nil, fmt.Errorf("result: could not decode child of %q: %w", snap.Name, err)
			}
			c.AdoptSubResult(r)
		}
		switch {
		case snap.IncludeAll:
			c.included = nil
		default:
			c.included = make(map[string]struct{}, len(snap.Included))
			for _, name := range snap.Included {
				c.included[name] = struct{}{}
			}
		}
		return c, nil
	}
	return nil, fmt.Errorf("result: unknown snapshot kind %q", snap.Kind)
}
