package anna

import (
	"fmt"
	"image/color"
	"math"
	"os"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
)

// LineColor returns the color of the i-th overlaid histogram.
func LineColor(i int) color.Color {
	switch i % 4 {
	case 1:
		return color.RGBA{G: 255, A: 255}
	case 2:
		return color.RGBA{B: 255, A: 255}
	case 3:
		return color.RGBA{R: 255, B: 127, G: 127, A: 255}
	}
	return color.RGBA{A: 255}
}

// TileGrid returns the number of columns and rows used to show n frames on
// one canvas.
func TileGrid(n int) (cols, rows int) {
	switch {
	case n <= 1:
		return 1, 1
	case n == 2:
		return 2, 1
	}
	rows = int(math.Round(math.Sqrt(float64(n))))
	cols = (n + rows - 1) / rows
	return cols, rows
}

// SaveTiles draws plots row by row on a cols x rows grid and writes the
// result as a PNG file.
func SaveTiles(plots []*plot.Plot, cols, rows int, width, height vg.Length, output string) error {
	if len(plots) > cols*rows {
		return fmt.Errorf("anna: %d plots do not fit on a %dx%d grid", len(plots), cols, rows)
	}

	img := vgimg.New(width, height)
	dc := draw.New(img)
	tiles := draw.Tiles{
		Rows: rows,
		Cols: cols,
		PadX: vg.Millimeter,
		PadY: vg.Millimeter,
	}
	for i, p := range plots {
		if p == nil {
			continue
		}
		p.Draw(tiles.At(dc, i%cols, i/cols))
	}

	w, err := os.Create(output)
	if err != nil {
		return err
	}
	png := vgimg.PngCanvas{Canvas: img}
	if _, err = png.WriteTo(w); err != nil {
		w.Close()
		return err
	}
	return w.Close()
}
