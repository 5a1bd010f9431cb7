package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/benjaminaudurier/anna"
	"github.com/benjaminaudurier/anna/fitter"
	"github.com/benjaminaudurier/anna/ntuple"
	"github.com/benjaminaudurier/anna/selection"
)

var (
	particleName string
	binningName  string
	binEdges     anna.FloatArrayFlags
	treePath     string
	maskName     string
)

func addParticleFlags(fs *pflag.FlagSet) {
	fs.StringVarP(&particleName, "particle", "p", fitter.JPsi.Name, "particle (JPsi, PsiP or Upsilon)")
}

func newFitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fit [flags] file.root...",
		Short: "Fit the candidates of ROOT ntuples and store the spectra",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runFitCmd,
	}
	fs := cmd.Flags()
	addParticleFlags(fs)
	fs.StringVarP(&binningName, "binning", "b", "pt", "binning: pt, y, integrated or VAR:e0,e1,...")
	fs.Var(&binEdges, "edges", "bin edges, replacing those of --binning")
	fs.StringVar(&treePath, "tree", ntuple.DefaultTreePath, "tree path inside the ROOT files")
	fs.StringVar(&maskName, "mask", "none", "filter mask applied before the fit: none or jpsi")
	return cmd
}

func fitBinning() (fitter.Binning, error) {
	b, err := fitter.ParseBinning(binningName)
	if err != nil {
		return fitter.Binning{}, err
	}
	if len(binEdges.Array) > 0 {
		if !binEdges.Increasing() {
			return fitter.Binning{}, fmt.Errorf("bin edges %v are not increasing", binEdges.Array)
		}
		b.Edges = binEdges.Array
	}
	return b, b.Validate()
}

func filterMask(name string) (*selection.FilterMask, error) {
	switch name {
	case "", "none":
		return nil, nil
	case "jpsi":
		m := selection.DefaultJpsiMask
		return &m, nil
	}
	return nil, fmt.Errorf("unknown filter mask %q", name)
}

func runFitCmd(cmd *cobra.Command, args []string) error {
	p, err := fitter.ParticleByName(particleName)
	if err != nil {
		return err
	}
	b, err := fitBinning()
	if err != nil {
		return err
	}
	mask, err := filterMask(maskName)
	if err != nil {
		return err
	}

	f, closeStore, err := openFacade()
	if err != nil {
		return err
	}
	defer closeStore()
	f.Mask = mask

	for _, path := range args {
		t, err := ntuple.Open(path, treePath)
		if err != nil {
			return err
		}
		logger.Info("opened ntuple", zap.String("file", path), zap.Int64("entries", t.Entries()))

		paths, err := f.FitParticle(cmd.Context(), t, p, b)
		t.Close()
		if err != nil {
			return fmt.Errorf("failed to fit %q: %w", path, err)
		}
		for _, key := range paths {
			fmt.Fprintln(cmd.OutOrStdout(), key)
		}
	}
	return nil
}
