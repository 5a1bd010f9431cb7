package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

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
	var (
		title    = flag.String("title", "", "plot title")
		output   = flag.String("output", "out.png", "output file")
		particle = flag.String("particle", "JPsi", "particle whose mass window is drawn")
		leaf     = flag.String("leaf", "Jpsi", "mother leaf")
		tree     = flag.String("tree", ntuple.DefaultTreePath, "tree path")
		cut      = flag.String("cut", "ALL", "selection, e.g. 2.5<Jpsi_Y&&Jpsi_Y<4")
		nBins    = flag.Int("nbins", 50, "number of bins")
	)
	flag.Usage = printUsage
	flag.Parse()
	if flag.NArg() < 1 {
		printUsage()
		log.Fatal("Invalid arguments")
	}

	part, err := fitter.ParticleByName(*particle)
	if err != nil {
		log.Fatal(err)
	}
	sel, err := selection.Parse(*cut)
	if err != nil {
		log.Fatal(err)
	}

	p := newPlot(*title)
	for i, filename := range flag.Args() {
		t, err := ntuple.Open(filename, *tree)
		if err != nil {
			log.Fatal(err)
		}
		hist, err := massHist(context.Background(), t, *leaf, sel, *nBins, part)
		t.Close()
		if err != nil {
			log.Fatal(err)
		}

		h := hplot.NewH1D(hist)
		h.LineStyle.Color = anna.LineColor(i)
		if len(flag.Args()) == 1 {
			h.Infos.Style = hplot.HInfoSummary
		}

		p.Add(h)
	}

	if err := p.Save(6*vg.Inch, 4*vg.Inch, *output); err != nil {
		log.Fatal(err)
	}
}

func newPlot(title string) *plot.Plot {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "Mass (MeV)"
	p.X.Tick.Marker = anna.PreciseTicks{NSuggestedTicks: 5}
	p.Y.Tick.Marker = anna.PreciseTicks{NSuggestedTicks: 5}
	return p
}

// massHist fills the dimuon mass of the selected candidates over the mass
// window of part.
func massHist(ctx context.Context, src ntuple.Source, leaf string, sel selection.Selection, nBins int, part fitter.Particle) (*hbook.H1D, error) {
	hists, err := ntuple.Project(ctx, src, ntuple.ProjectOptions{
		Mass:      fitter.MassBranch(leaf),
		Selection: sel,
		NBins:     nBins,
		Low:       part.Low,
		High:      part.High,
	})
	if err != nil {
		return nil, err
	}
	return hists[0], nil
}
