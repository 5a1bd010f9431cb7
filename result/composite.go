package result

import (
	"fmt"
	"math"
	"strings"
)

// Composite merges the records of its sub-results.
type Composite struct {
	name   string
	title  string
	weight float64
	policy MergePolicy

	order    []string
	children map[string]Result

	// nil means every sub-result is included.
	included map[string]struct{}
}

func NewComposite(name, title string) *Composite {
	return &Composite{
		name:     name,
		title:    title,
		weight:   1,
		children: make(map[string]Result),
	}
}

func (c *Composite) Name() string        { return c.name }
func (c *Composite) Title() string       { return c.title }
func (c *Composite) Weight() float64     { return c.weight }
func (c *Composite) SetWeight(w float64) { c.weight = w }

func (c *Composite) Policy() MergePolicy          { return c.policy }
func (c *Composite) SetPolicy(policy MergePolicy) { c.policy = policy }

// AdoptSubResult stores each child under its name and includes it. A child
// whose name is already present replaces the previous one but is not
// counted: the returned value is the number of new names.
func (c *Composite) AdoptSubResult(children ...Result) int {
	if c.included == nil {
		c.included = make(map[string]struct{})
	}
	added := 0
	for _, r := range children {
		if r == nil {
			continue
		}
		name := r.Name()
		if _, dup := c.children[name]; !dup {
			c.order = append(c.order, name)
			added++
		}
		c.children[name] = r
		c.included[name] = struct{}{}
	}
	return added
}

// SubResultNames returns the sub-result names in adoption order.
func (c *Composite) SubResultNames() []string {
	return append([]string(nil), c.order...)
}

func (c *Composite) SubResult(name string) (Result, error) {
	r, ok := c.children[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q in %q", ErrNoSubResult, name, c.name)
	}
	return r, nil
}

// Include (re)includes the given sub-result names. "*" stands for every
// sub-result; no name at all is the same as Exclude("*").
func (c *Composite) Include(names ...string) {
	if len(names) == 0 {
		c.Exclude("*")
		return
	}
	if c.included == nil {
		return
	}
	for _, name := range c.expand(names) {
		c.included[name] = struct{}{}
	}
}

// Exclude removes the given names from the aggregation. "*" excludes every
// sub-result.
func (c *Composite) Exclude(names ...string) {
	if c.included == nil {
		c.included = make(map[string]struct{})
		for _, name := range c.order {
			c.included[name] = struct{}{}
		}
	}
	for _, name := range c.expand(names) {
		delete(c.included, name)
	}
}

func (c *Composite) expand(names []string) []string {
	var out []string
	for _, n := range names {
		for _, name := range strings.Split(n, ",") {
			name = strings.TrimSpace(name)
			switch name {
			case "":
			case "*":
				out = append(out, c.order...)
			default:
				out = append(out, name)
			}
		}
	}
	return out
}

func (c *Composite) IsIncluded(alias string) bool {
	if c.included == nil {
		return true
	}
	_, ok := c.included[alias]
	return ok
}

// Names returns the union of the sub-results value names.
func (c *Composite) Names() []string {
	var (
		names []string
		seen  = make(map[string]bool)
	)
	for _, sub := range c.order {
		for _, name := range c.children[sub].Names() {
			if seen[name] {
				continue
			}
			seen[name] = true
			names = append(names, name)
		}
	}
	return names
}

// HasValue counts the sub-results, included or not, that hold name.
func (c *Composite) HasValue(name string) int {
	n := 0
	for _, sub := range c.order {
		if c.children[sub].HasValue(name) > 0 {
			n++
		}
	}
	return n
}

// Rejection describes a sub-result left out of an aggregate.
type Rejection struct {
	Name      string
	Reason    string
	FitStatus float64
	CovStatus float64
	Chi2      float64
}

type candidate struct {
	r    Result
	v, e float64
	w    float64
}

// qualify returns the sub-results entering the aggregate of name.
func (c *Composite) qualify(name string) ([]candidate, []Rejection) {
	var (
		cands []candidate
		rejs  []Rejection
	)
	for _, sub := range c.order {
		r := c.children[sub]
		if !c.IsIncluded(sub) || r.HasValue(name) <= 0 {
			continue
		}

		rej := Rejection{
			Name:      sub,
			FitStatus: valueOr(r, FitResultKey, defaultFitStatus),
			CovStatus: valueOr(r, CovMatrixStatusKey, defaultCovStatus),
			Chi2:      valueOr(r, Chi2PerNDFKey, defaultChi2),
		}
		// Composite children are gated through their own sub-results.
		if _, nested := r.(*Composite); !nested && !goodFit(rej.FitStatus, rej.Chi2) {
			rej.Reason = "fit quality"
			rejs = append(rejs, rej)
			continue
		}

		v, err := r.Value(name)
		if err != nil {
			rej.Reason = "no value"
			rejs = append(rejs, rej)
			continue
		}
		e, err := r.ErrorStat(name)
		if err != nil || e < 0 {
			rej.Reason = "bad stat. error"
			rejs = append(rejs, rej)
			continue
		}
		cands = append(cands, candidate{r: r, v: v, e: e, w: r.Weight()})
	}
	return cands, rejs
}

func goodFit(status, chi2 float64) bool {
	return (status == 0 || status == 4000) && chi2 <= maxChi2PerNDF
}

// Rejected lists the included sub-results holding name that are left out
// of its aggregate, with the reason.
func (c *Composite) Rejected(name string) []Rejection {
	_, rejs := c.qualify(name)
	return rejs
}

func (c *Composite) Value(name string) (float64, error) {
	cands, _ := c.qualify(name)
	if len(cands) == 0 {
		return 0, fmt.Errorf("%w: %q in %q", ErrNoQualifying, name, c.name)
	}

	switch c.policy {
	case Sum:
		sum := 0.0
		for _, x := range cands {
			sum += x.v
		}
		if sum == 0 {
			return 0, fmt.Errorf("%w: %q in %q sums to zero", ErrUndefined, name, c.name)
		}
		return sum, nil
	default:
		var sum, sumw float64
		for _, x := range cands {
			sum += x.w * x.v
			sumw += x.w
		}
		if sumw == 0 {
			return 0, fmt.Errorf("%w: %q in %q has zero total weight", ErrUndefined, name, c.name)
		}
		return sum / sumw, nil
	}
}

// ErrorStat returns the weighted mean of the sub-results stat. errors, or,
// for the Sum policy, the summed value times the quadratic sum of the
// relative errors.
func (c *Composite) ErrorStat(name string) (float64, error) {
	cands, _ := c.qualify(name)
	if len(cands) == 0 {
		return 0, fmt.Errorf("%w: %q in %q", ErrNoQualifying, name, c.name)
	}

	switch c.policy {
	case Sum:
		var sum, rel2 float64
		for _, x := range cands {
			if x.v == 0 {
				return 0, fmt.Errorf("%w: %q is zero in %q", ErrUndefined, name, x.r.Name())
			}
			rel := x.e / x.v
			rel2 += rel * rel
			sum += x.v
		}
		return sum * math.Sqrt(rel2), nil
	default:
		if len(cands) == 1 {
			return cands[0].r.ErrorStat(name)
		}
		var werr, sumw float64
		for _, x := range cands {
			werr += x.w * x.e
			sumw += x.w
		}
		if sumw == 0 {
			return 0, fmt.Errorf("%w: %q in %q has zero total weight", ErrUndefined, name, c.name)
		}
		return werr / sumw, nil
	}
}

// RMS returns the unbiased weighted standard deviation of the qualifying
// sub-results around the aggregated value.
func (c *Composite) RMS(name string) float64 {
	cands, _ := c.qualify(name)
	switch len(cands) {
	case 0:
		return 0
	case 1:
		return cands[0].r.RMS(name)
	}

	mean, err := c.Value(name)
	if err != nil {
		return 0
	}

	var v1, v2, sm float64
	for _, x := range cands {
		v1 += x.w
		v2 += x.w * x.w
		d := x.v - mean
		sm += x.w * d * d
	}
	den := v1*v1 - v2
	if den <= 0 {
		return 0
	}
	return math.Sqrt(v1 / den * sm)
}
