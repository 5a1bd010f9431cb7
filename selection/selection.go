// Package selection parses the cut strings used to select dimuon
// candidates, like "2.5<Jpsi_Y&&Jpsi_Y<4".
package selection

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

var ErrSyntax = errors.New("selection: syntax error")

// Operators, longest first so that "<=" is not read as "<".
var operators = []string{"<=", ">=", "==", "!=", "<", ">"}

// Cut compares one variable with a constant, the variable on the left.
type Cut struct {
	Var   string
	Op    string
	Value float64
}

func (c Cut) String() string {
	return c.Var + c.Op + strconv.FormatFloat(c.Value, 'g', -1, 64)
}

// Pass applies the cut to x.
func (c Cut) Pass(x float64) bool {
	switch c.Op {
	case "<":
		return x < c.Value
	case "<=":
		return x <= c.Value
	case ">":
		return x > c.Value
	case ">=":
		return x >= c.Value
	case "==":
		return x == c.Value
	case "!=":
		return x != c.Value
	}
	return false
}

// Selection is a conjunction of cuts. The zero value selects everything.
type Selection struct {
	Cuts []Cut
}

// All reports whether s has no cut.
func (s Selection) All() bool { return len(s.Cuts) == 0 }

// Parse reads terms joined by "&&". The empty string, "#" and "ALL" give
// the empty selection.
func Parse(expr string) (Selection, error) {
	expr = strings.Join(strings.Fields(expr), "")
	switch strings.ToUpper(expr) {
	case "", "#", "ALL":
		return Selection{}, nil
	}

	var sel Selection
	for _, term := range strings.Split(expr, "&&") {
		c, err := parseCut(term)
		if err != nil {
			return Selection{}, fmt.Errorf("selection: could not parse %q: %w", expr, err)
		}
		sel.Cuts = append(sel.Cuts, c)
	}
	return sel, nil
}

// MustParse is like Parse but panics on error.
func MustParse(expr string) Selection {
	s, err := Parse(expr)
	if err != nil {
		panic(err)
	}
	return s
}

func parseCut(term string) (Cut, error) {
	for _, op := range operators {
		i := strings.Index(term, op)
		if i < 0 {
			continue
		}
		lhs, rhs := term[:i], term[i+len(op):]
		if lhs == "" || rhs == "" {
			return Cut{}, fmt.Errorf("%w: %q", ErrSyntax, term)
		}

		if v, err := strconv.ParseFloat(rhs, 64); err == nil {
			if !isIdent(lhs) {
				return Cut{}, fmt.Errorf("%w: %q is not a variable", ErrSyntax, lhs)
			}
			return Cut{Var: lhs, Op: op, Value: v}, nil
		}
		if v, err := strconv.ParseFloat(lhs, 64); err == nil {
			if !isIdent(rhs) {
				return Cut{}, fmt.Errorf("%w: %q is not a variable", ErrSyntax, rhs)
			}
			return Cut{Var: rhs, Op: flip(op), Value: v}, nil
		}
		return Cut{}, fmt.Errorf("%w: %q compares two variables", ErrSyntax, term)
	}
	return Cut{}, fmt.Errorf("%w: no operator in %q", ErrSyntax, term)
}

func flip(op string) string {
	switch op {
	case "<":
		return ">"
	case "<=":
		return ">="
	case ">":
		return "<"
	case ">=":
		return "<="
	}
	return op
}

func isIdent(s string) bool {
	for i, r := range s {
		switch {
		case r == '_', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9' && i > 0:
		default:
			return false
		}
	}
	return s != ""
}

// Pass reports whether a row passes every cut. row returns the value of a
// variable; a missing variable fails the selection.
func (s Selection) Pass(row func(name string) (float64, bool)) bool {
	for _, c := range s.Cuts {
		x, ok := row(c.Var)
		if !ok || !c.Pass(x) {
			return false
		}
	}
	return true
}

// Branches returns the sorted variables used by s.
func (s Selection) Branches() []string {
	set := make(map[string]struct{}, len(s.Cuts))
	for _, c := range s.Cuts {
		set[c.Var] = struct{}{}
	}
	names := make([]string, 0, len(set))
	for name := range set {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// And returns the conjunction of s and o.
func (s Selection) And(o Selection) Selection {
	cuts := make([]Cut, 0, len(s.Cuts)+len(o.Cuts))
	cuts = append(cuts, s.Cuts...)
	return Selection{Cuts: append(cuts, o.Cuts...)}
}

func (s Selection) String() string {
	if s.All() {
		return "ALL"
	}
	terms := make([]string, len(s.Cuts))
	for i, c := range s.Cuts {
		terms[i] = c.String()
	}
	return strings.Join(terms, "&&")
}
