package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"math"
	"os"

	"go-hep.org/x/hep/hbook"
	"go-hep.org/x/hep/hplot"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/vg"

	"github.com/benjaminaudurier/anna"
	"github.com/benjaminaudurier/anna/config"
	"github.com/benjaminaudurier/anna/result"
	"github.com/benjaminaudurier/anna/store"
)

func printUsage() {
	fmt.Fprintf(os.Stderr, `Usage: `+os.Args[0]+` [options] [path-prefix]

Draws the chi2/ndf of every stored fit under path-prefix.

options:
`,
	)
	flag.PrintDefaults()
}

var (
	dbPath = flag.String("store", config.DefaultStorePath(), "result database")
	output = flag.String("output", "out.png", "output file")
)

func main() {
	flag.Usage = printUsage
	flag.Parse()
	if flag.NArg() > 1 {
		printUsage()
		log.Fatal("Invalid arguments")
	}

	st, err := store.Open(*dbPath)
	if err != nil {
		log.Fatal(err)
	}
	defer st.Close()

	ctx := context.Background()
	keys, err := st.Keys(ctx, flag.Arg(0))
	if err != nil {
		log.Fatal(err)
	}

	p := plot.New()
	p.X.Label.Text = "log_10{chi2/ndf}"
	p.X.Tick.Marker = anna.PreciseTicks{NSuggestedTicks: 5}
	p.Y.Tick.Marker = plot.LogTicks{}
	p.Y.Scale = plot.LogScale{}

	hist := hbook.NewH1D(60, -2, 2)

	for _, key := range keys {
		e, err := st.Get(ctx, key)
		if err != nil {
			log.Fatal(err)
		}
		for _, r := range e.Spectra.Results() {
			for _, chi2 := range chi2Values(r) {
				if chi2 > 0 {
					hist.Fill(math.Log10(chi2), 1)
				}
			}
		}
	}

	hPlot := hplot.NewH1D(hist, hplot.WithLogY(true))
	p.Add(hPlot)

	p.Save(6*vg.Inch, 4*vg.Inch, *output)
}

// chi2Values returns the chi2/ndf of every leaf below r.
func chi2Values(r result.Result) []float64 {
	c, ok := r.(*result.Composite)
	if !ok {
		v, err := r.Value(result.Chi2PerNDFKey)
		if err != nil {
			return nil
		}
		return []float64{v}
	}
	var values []float64
	for _, name := range c.SubResultNames() {
		sub, err := c.SubResult(name)
		if err != nil {
			continue
		}
		values = append(values, chi2Values(sub)...)
	}
	return values
}
