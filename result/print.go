package result

import (
	"fmt"
	"io"
	"strings"
)

// Print writes a summary of r to w. Sub-results are printed as well when
// opt contains "ALL" or "FULL"; the rest of opt, digits removed, prefixes
// the output.
func Print(w io.Writer, r Result, opt string) {
	option := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return -1
		}
		return r
	}, opt)
	prefix := strings.NewReplacer("ALL", "", "FULL", "").Replace(option)

	fmt.Fprintf(w, "%s name : %s title : %s", prefix, r.Name(), r.Title())
	if r.Weight() > 0 {
		fmt.Fprintf(w, " WEIGHT %g", r.Weight())
	}
	fmt.Fprintln(w)

	c, composite := r.(*Composite)
	if composite && len(c.order) > 1 {
		fmt.Fprintf(w, "%s (%d subresults)\n", prefix, len(c.order))
	}

	for _, key := range r.Names() {
		if composite && r.HasValue(key) != len(c.order) {
			continue
		}
		fmt.Fprintf(w, "%s -- %s : %s\n", prefix, key, formatRecord(r, key))
	}

	if !composite || !(strings.Contains(option, "ALL") || strings.Contains(option, "FULL")) {
		return
	}

	fmt.Fprintf(w, "%s\t===== sub results =====\n", prefix)
	for _, sub := range c.order {
		if !c.IsIncluded(sub) {
			fmt.Fprintf(w, "%s [EXCLUDED]\n", prefix)
		}
		Print(w, c.children[sub], "\t"+opt)
	}
}

func formatRecord(r Result, key string) string {
	v, err := r.Value(key)
	if err != nil {
		return "n/a"
	}
	e, err := r.ErrorStat(key)
	if err != nil {
		return fmt.Sprintf("%g +- n/a (stat) +- %g (RMS)", v, r.RMS(key))
	}
	return fmt.Sprintf("%g +- %g (stat) +- %g (RMS)", v, e, r.RMS(key))
}
