package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/benjaminaudurier/anna/spectra"
)

var exportOut string

func newExportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export PATH",
		Short: "Export a stored spectra as YAML",
		Args:  cobra.ExactArgs(1),
		RunE:  runExportCmd,
	}
	cmd.Flags().StringVarP(&exportOut, "out", "o", "", "output file (default stdout)")
	return cmd
}

func runExportCmd(cmd *cobra.Command, args []string) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	e, err := st.Get(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	if exportOut != "" {
		f, err := os.Create(exportOut)
		if err != nil {
			return err
		}
		defer f.Close()
		w = f
	}
	fmt.Fprintf(w, "# %s, run %s, %s\n", e.Path, e.RunID, e.UpdatedAt.Format("2006-01-02 15:04:05"))
	return exportSpectra(w, e.Spectra)
}

func exportSpectra(w io.Writer, sp *spectra.Spectra) error {
	snap, err := spectra.Encode(sp)
	if err != nil {
		return err
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(snap); err != nil {
		return fmt.Errorf("failed to encode %q: %w", sp.Name(), err)
	}
	return enc.Close()
}
