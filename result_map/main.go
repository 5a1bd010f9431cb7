package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette/moreland"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	"github.com/benjaminaudurier/anna"
	"github.com/benjaminaudurier/anna/config"
	"github.com/benjaminaudurier/anna/selection"
	"github.com/benjaminaudurier/anna/spectra"
	"github.com/benjaminaudurier/anna/store"
)

var (
	dbPath   = flag.String("store", config.DefaultStorePath(), "result database")
	source   = flag.String("source", "DecayTree", "name of the fitted tree")
	cut      = flag.String("cut", "#", "cut combination")
	leaf     = flag.String("leaf", "Jpsi", "mother leaf")
	name     = flag.String("spectra", "PT", "spectra name")
	quantity = flag.String("quantity", "S", "quantity shown in the color map")
	sub      = flag.String("sub", "", "sub-result, the aggregated value by default")
	zMin     = flag.Float64("min", 0, "lower end of the color map")
	zMax     = flag.Float64("max", 0, "upper end of the color map (default largest value)")
	title    = flag.String("title", "", "plot title")
	output   = flag.String("output", "out.png", "output file")
)

func printUsage() {
	fmt.Fprintf(os.Stderr, `Usage: `+os.Args[0]+` [options]

Draws a stored quantity versus kinematic bin and centrality class.

options:
`,
	)
	flag.PrintDefaults()
}

func main() {
	flag.Usage = printUsage
	flag.Parse()
	if flag.NArg() != 0 {
		printUsage()
		log.Fatal("Invalid arguments")
	}

	st, err := store.Open(*dbPath)
	if err != nil {
		log.Fatal(err)
	}
	defer st.Close()

	centralities := selection.CentralityClasses()
	var found []*spectra.Spectra
	for _, c := range centralities {
		e, err := st.Get(context.Background(), store.Path(*source, c, *cut, *leaf, *name))
		switch {
		case errors.Is(err, store.ErrNotFound):
			found = append(found, nil)
			continue
		case err != nil:
			log.Fatal(err)
		}
		found = append(found, e.Spectra)
	}

	grid, err := NewValueGrid(found, *quantity, *sub)
	if err != nil {
		log.Fatal(err)
	}
	zTop := *zMax
	if zTop <= *zMin {
		zTop = grid.Max()
	}
	if zTop <= *zMin {
		zTop = *zMin + 1
	}

	p := plot.New()
	p.Title.Text = *title
	p.X.Label.Text = *name
	p.Y.Label.Text = "centrality class"
	p.X.Tick.Marker = anna.PreciseTicks{NSuggestedTicks: 5}
	p.Y.Tick.Marker = classTicks(centralities)

	img := vgimg.New(670, 400)
	dc := draw.New(img)
	dc0 := draw.Crop(dc, 0, -70, 0, 0)
	dc1 := draw.Crop(dc, 620, 0, 0, 0)

	colorMap := moreland.ExtendedBlackBody()
	colorMap.SetMin(*zMin)
	colorMap.SetMax(zTop)
	pal := colorMap.Palette(1000)
	heatMap := plotter.NewHeatMap(grid, pal)
	heatMap.Min = *zMin
	heatMap.Max = zTop
	p.Add(heatMap)

	p.Draw(dc0)

	p = plot.New()

	colorBar := &plotter.ColorBar{ColorMap: colorMap}
	colorBar.Vertical = true
	p.Add(colorBar)
	p.HideX()
	p.Y.Padding = 0

	p.Draw(dc1)

	w, err := os.Create(*output)
	if err != nil {
		log.Panic(err)
	}
	defer w.Close()
	png := vgimg.PngCanvas{Canvas: img}
	if _, err = png.WriteTo(w); err != nil {
		log.Panic(err)
	}
}

func classTicks(classes []string) plot.ConstantTicks {
	ticks := make(plot.ConstantTicks, len(classes))
	for i, c := range classes {
		ticks[i] = plot.Tick{Value: float64(i), Label: c}
	}
	return ticks
}
