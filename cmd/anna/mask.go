package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/benjaminaudurier/anna/config"
	"github.com/benjaminaudurier/anna/selection"
)

var printedMask string

func newFilterMaskCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "filter-mask",
		Short: "Print the filter mask for the leaves of the steering file",
		Args:  cobra.NoArgs,
		RunE:  runFilterMaskCmd,
	}
	cmd.Flags().StringVar(&printedMask, "mask", "jpsi", "filter mask: jpsi")
	return cmd
}

func runFilterMaskCmd(cmd *cobra.Command, _ []string) error {
	mask, err := filterMask(printedMask)
	if err != nil {
		return err
	}
	if mask == nil {
		return fmt.Errorf("no filter mask %q", printedMask)
	}
	if steeringPath == "" {
		return fmt.Errorf("no steering file, use --config")
	}
	cfg, err := config.ReadFile(steeringPath, logger)
	if err != nil {
		return err
	}
	return printMask(cmd.OutOrStdout(), *mask, cfg)
}

func printMask(w io.Writer, m selection.FilterMask, cfg *config.Config) error {
	muon, mother, other := m.Parts()
	for _, part := range []struct {
		name string
		cuts []string
	}{{"muon", muon}, {"mother", mother}, {"other", other}} {
		fmt.Fprintln(w, headerStyle.Render(part.name))
		for _, cut := range part.cuts {
			fmt.Fprintf(w, "  %s\n", cut)
		}
	}

	daughters := cfg.DaughterLeaves()
	for _, leaf := range cfg.MotherLeaves() {
		mask := m.GeneralMask(leaf, daughters)
		if _, err := selection.Parse(mask); err != nil {
			return fmt.Errorf("invalid mask for %q: %w", leaf, err)
		}
		fmt.Fprintln(w, titleStyle.Render(leaf))
		fmt.Fprintln(w, mask)
	}
	return nil
}
