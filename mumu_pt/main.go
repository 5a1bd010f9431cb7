package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/pkg/profile"
	"go-hep.org/x/hep/hbook"
	"go-hep.org/x/hep/hplot"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/vg"

	"github.com/benjaminaudurier/anna"
	"github.com/benjaminaudurier/anna/fitter"
	"github.com/benjaminaudurier/anna/ntuple"
	"github.com/benjaminaudurier/anna/selection"
)

func printUsage() {
	fmt.Fprintf(os.Stderr, `Usage: `+os.Args[0]+` [options] <root-input-files>...

options:
`,
	)
	flag.PrintDefaults()
}

func main() {
	defer profile.Start(profile.ProfilePath(".")).Stop()

	var (
		title    = flag.String("title", "", "plot title")
		output   = flag.String("output", "out.png", "output file")
		particle = flag.String("particle", "JPsi", "particle whose mass window selects the candidates")
		leaf     = flag.String("leaf", "Jpsi", "mother leaf")
		variable = flag.String("var", "PT", "kinematic variable of the mother")
		tree     = flag.String("tree", ntuple.DefaultTreePath, "tree path")
		nBins    = flag.Int("nbins", 50, "number of bins")
		low      = flag.Float64("min", 0, "lower edge")
		high     = flag.Float64("max", 12000, "upper edge")
		classes  anna.FloatArrayFlags
	)
	flag.Var(&classes, "clusters", "nVeloClusters edges, one histogram per class (default none)")
	flag.Usage = printUsage
	flag.Parse()
	if flag.NArg() < 1 {
		printUsage()
		log.Fatal("Invalid arguments")
	}
	if !classes.Increasing() {
		log.Fatal("clusters edges are not increasing")
	}

	part, err := fitter.ParticleByName(*particle)
	if err != nil {
		log.Fatal(err)
	}
	sel, err := massWindow(*leaf, part)
	if err != nil {
		log.Fatal(err)
	}

	p := newPlot(*title, *variable)

	var hists []*hbook.H1D
	for _, filename := range flag.Args() {
		t, err := ntuple.Open(filename, *tree)
		if err != nil {
			log.Fatal(err)
		}
		hs, err := makeHists(context.Background(), t, *leaf, *variable, sel, classes.Array, *nBins, *low, *high)
		t.Close()
		if err != nil {
			log.Fatal(err)
		}
		hists = append(hists, hs...)
	}

	for i, hist := range hists {
		h := hplot.NewH1D(hist, hplot.WithLogY(true))
		h.FillColor = nil
		h.LineStyle.Color = anna.LineColor(i)
		h.Infos.Style = hplot.HInfoNone

		p.Add(h)
	}

	if err := p.Save(6*vg.Inch, 4*vg.Inch, *output); err != nil {
		log.Fatal(err)
	}
}

func newPlot(title, variable string) *plot.Plot {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = variable + " (MeV)"
	p.X.Tick.Marker = anna.PreciseTicks{NSuggestedTicks: 5}
	p.Y.Tick.Marker = plot.LogTicks{}
	p.Y.Scale = plot.LogScale{}
	return p
}

// massWindow selects the candidates of leaf inside the mass window of part.
func massWindow(leaf string, part fitter.Particle) (selection.Selection, error) {
	mass := fitter.MassBranch(leaf)
	return selection.Parse(fmt.Sprintf("%s>%g&&%s<%g", mass, part.Low, mass, part.High))
}

// makeHists fills the spectrum of variable, one histogram per
// nVeloClusters class when classes are given.
func makeHists(ctx context.Context, src ntuple.Source, leaf, variable string, sel selection.Selection, classes []float64, nBins int, low, high float64) ([]*hbook.H1D, error) {
	opts := ntuple.ProjectOptions{
		Mass:      fitter.Binning{Variable: variable}.Branch(leaf),
		Selection: sel,
		NBins:     nBins,
		Low:       low,
		High:      high,
	}
	if len(classes) > 1 {
		opts.Variable = selection.NVeloClusters
		opts.Edges = classes
	}
	return ntuple.Project(ctx, src, opts)
}
