package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/benjaminaudurier/anna"
	"github.com/benjaminaudurier/anna/config"
	"github.com/benjaminaudurier/anna/selection"
	"github.com/benjaminaudurier/anna/store"
)

var (
	dbPath = flag.String("store", config.DefaultStorePath(), "result database")
	source = flag.String("source", "DecayTree", "name of the fitted tree")
	cut    = flag.String("cut", "#", "cut combination")
	leaf   = flag.String("leaf", "Jpsi", "mother leaf")
	name   = flag.String("spectra", "PT", "spectra name")
	title  = flag.String("title", "", "plot title")
	prefix = flag.String("prefix", "out", "output file prefix")
)

func printUsage() {
	fmt.Fprintf(os.Stderr, `Usage: `+os.Args[0]+` [options] [centrality classes]...

Draws, per kinematic bin, the fraction of fits that converged with a full
covariance matrix, one series per centrality class (default all).

options:
`,
	)
	flag.PrintDefaults()
}

func main() {
	flag.Usage = printUsage
	flag.Parse()

	classes := flag.Args()
	if len(classes) == 0 {
		classes = selection.CentralityClasses()
	}

	st, err := store.Open(*dbPath)
	if err != nil {
		log.Fatal(err)
	}
	defer st.Close()

	p := plot.New()
	p.Title.Text = *title
	p.X.Label.Text = *name
	p.Y.Label.Text = "good fits"
	p.X.Tick.Marker = anna.PreciseTicks{NSuggestedTicks: 5}
	p.Y.Tick.Marker = anna.PreciseTicks{NSuggestedTicks: 5}
	p.Legend.Top = true
	p.Legend.Left = true

	drawn := 0
	for _, c := range classes {
		e, err := st.Get(context.Background(), store.Path(*source, c, *cut, *leaf, *name))
		switch {
		case errors.Is(err, store.ErrNotFound):
			log.Printf("no %s spectra for %s", *name, c)
			continue
		case err != nil:
			log.Fatal(err)
		}

		errPoints := quality(e.Spectra)
		if len(errPoints.XYs) == 0 {
			continue
		}
		xerr, _ := plotter.NewXErrorBars(errPoints)
		yerr, _ := plotter.NewYErrorBars(errPoints)

		pointColor := anna.LineColor(drawn)
		xerr.LineStyle.Color = pointColor
		yerr.LineStyle.Color = pointColor

		p.Add(xerr, yerr)
		p.Legend.Add(c, yerr)
		drawn++
	}
	if drawn == 0 {
		log.Fatal("nothing to draw")
	}

	p.Save(6*vg.Inch, 4*vg.Inch, *prefix+".pdf")
	p.Save(6*vg.Inch, 4*vg.Inch, *prefix+".png")
}
