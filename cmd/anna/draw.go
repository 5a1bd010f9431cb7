package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gonum.org/v1/plot/vg"

	"github.com/benjaminaudurier/anna/facade"
	"github.com/benjaminaudurier/anna/fitter"
	"github.com/benjaminaudurier/anna/spectra"
)

var (
	sourceName  string
	spectraName string
	subResults  []string
	outDir      string
	quantity    string
)

func addSpectraFlags(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.StringVarP(&sourceName, "source", "s", "DecayTree", "name of the fitted tree")
	fs.StringVarP(&spectraName, "spectra", "n", "PT", "spectra name")
	fs.StringSliceVar(&subResults, "sub", nil, "sub-results to show (default all)")
}

func newDrawCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "draw",
		Short: "Draw the fitted histograms and the spectra of the stored results",
		Args:  cobra.NoArgs,
		RunE:  runDrawCmd,
	}
	addParticleFlags(cmd.Flags())
	addSpectraFlags(cmd)
	cmd.Flags().StringVarP(&outDir, "out", "o", "plots", "output directory")
	cmd.Flags().StringVarP(&quantity, "quantity", "q", "S", "quantity drawn versus bin")
	return cmd
}

func runDrawCmd(cmd *cobra.Command, _ []string) error {
	p, err := fitter.ParticleByName(particleName)
	if err != nil {
		return err
	}
	f, closeStore, err := openFacade()
	if err != nil {
		return err
	}
	defer closeStore()

	ctx := cmd.Context()
	outputs, err := f.DrawFitResults(ctx, p, spectraName, sourceName, subResults, outDir)
	if err != nil {
		return err
	}

	found, paths, err := f.Spectra(ctx, sourceName, spectraName)
	if err != nil {
		return err
	}
	for _, path := range paths {
		plt, err := spectra.Draw(found[path], spectra.DrawOptions{
			Title:      path,
			XLabel:     found[path].Name(),
			Quantity:   quantity,
			SubResults: subResults,
		})
		if err != nil {
			logger.Warn("cannot draw spectra", zap.String("path", path), zap.Error(err))
			continue
		}
		output := filepath.Join(outDir, facade.FileName(path+"_"+quantity)+".png")
		if err := plt.Save(6*vg.Inch, 4*vg.Inch, output); err != nil {
			return fmt.Errorf("failed to save %q: %w", output, err)
		}
		outputs = append(outputs, output)
	}

	for _, output := range outputs {
		fmt.Fprintln(cmd.OutOrStdout(), output)
	}
	return nil
}
