package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/benjaminaudurier/anna/result"
	"github.com/benjaminaudurier/anna/spectra"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#C89A3A"))
	titleStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Underline(true)
	missStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	cellStyle   = lipgloss.NewStyle().PaddingRight(2)

	raw      bool
	printOpt string
)

func newShowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show a quantity of the stored spectra, bin by bin",
		Args:  cobra.NoArgs,
		RunE:  runShowCmd,
	}
	addSpectraFlags(cmd)
	cmd.Flags().StringVarP(&quantity, "quantity", "q", "S", "quantity shown")
	cmd.Flags().BoolVar(&raw, "raw", false, "print every record of the results")
	cmd.Flags().StringVar(&printOpt, "opt", "", "print option, ALL to include sub-results")
	return cmd
}

func runShowCmd(cmd *cobra.Command, _ []string) error {
	f, closeStore, err := openFacade()
	if err != nil {
		return err
	}
	defer closeStore()

	w := cmd.OutOrStdout()
	if raw {
		return f.PrintResults(cmd.Context(), w, sourceName, spectraName, printOpt)
	}

	found, paths, err := f.Spectra(cmd.Context(), sourceName, spectraName)
	if err != nil {
		return err
	}
	for _, path := range paths {
		fmt.Fprintln(w, titleStyle.Render(path))
		fmt.Fprintln(w, renderSpectra(found[path], quantity, subResults))
	}
	return nil
}

// subResultNames returns the sub-results found in any bin, in order of
// first appearance.
func subResultNames(sp *spectra.Spectra) []string {
	seen := make(map[string]bool)
	var names []string
	for _, bin := range sp.Bins() {
		r, _ := sp.ResultsForBin(bin)
		c, ok := r.(*result.Composite)
		if !ok {
			continue
		}
		for _, name := range c.SubResultNames() {
			if !seen[name] {
				seen[name] = true
				names = append(names, name)
			}
		}
	}
	return names
}

// renderSpectra lays out quantity for every bin, the aggregated value
// first and then each sub-result.
func renderSpectra(sp *spectra.Spectra, quantity string, subs []string) string {
	if len(subs) == 0 {
		subs = subResultNames(sp)
	}
	header := append([]string{"bin", "all"}, subs...)
	rows := [][]string{header}
	for _, bin := range sp.Bins() {
		r, _ := sp.ResultsForBin(bin)
		row := []string{bin, cell(r, quantity, "")}
		for _, sub := range subs {
			row = append(row, cell(r, quantity, sub))
		}
		rows = append(rows, row)
	}

	widths := make([]int, len(header))
	for _, row := range rows {
		for i, s := range row {
			widths[i] = max(widths[i], lipgloss.Width(s))
		}
	}

	var sb strings.Builder
	for i, row := range rows {
		cells := make([]string, len(row))
		for j, s := range row {
			style := cellStyle.Width(widths[j] + 2)
			switch {
			case i == 0:
				style = style.Inherit(headerStyle)
			case s == "-":
				style = style.Inherit(missStyle)
			}
			cells[j] = style.Render(s)
		}
		sb.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, cells...))
		sb.WriteByte('\n')
	}
	return sb.String()
}

func cell(r result.Result, quantity, sub string) string {
	v, err := result.ValueOf(r, quantity, sub)
	if err != nil {
		return "-"
	}
	e, err := result.ErrorStatOf(r, quantity, sub)
	if err != nil {
		return fmt.Sprintf("%.4g", v)
	}
	return fmt.Sprintf("%.4g +- %.2g", v, e)
}
