// Package anna holds plotting helpers shared by the anna commands.
package anna

import (
	"math"
	"strconv"

	"gonum.org/v1/plot"
)

// PreciseTicks places labelled major ticks on round values, with enough
// significant digits to tell neighbouring labels apart, and unlabelled minor
// ticks between them.
type PreciseTicks struct {
	NSuggestedTicks int
}

func (t PreciseTicks) Ticks(min, max float64) []plot.Tick {
	n := t.NSuggestedTicks
	if n == 0 {
		n = 4
	}
	if max <= min {
		panic("illegal range")
	}

	step := math.Pow10(int(math.Floor(math.Log10(max - min))))
	for (max-min)/step < float64(n-1) {
		step /= 10
	}

	mult := int((max - min) / step / float64(n-1))
	switch mult {
	case 7:
		mult = 6
	case 9:
		mult = 8
	}
	major := float64(mult) * step

	ticks := majorTicks(min, max, major)
	return append(ticks, minorTicks(min, max, minorStep(major, mult), ticks)...)
}

func majorTicks(min, max, delta float64) []plot.Tick {
	var values []float64
	v := math.Floor(min/delta) * delta
	for ; v <= max; v += delta {
		if v >= min {
			values = append(values, v)
		}
	}

	prec := int(math.Ceil(math.Log10(v)) - math.Floor(math.Log10(delta)))
	ticks := make([]plot.Tick, 0, len(values))
	for _, x := range values {
		x = roundTo(x, prec)
		ticks = append(ticks, plot.Tick{Value: x, Label: strconv.FormatFloat(x, 'g', -1, 64)})
	}
	return ticks
}

func minorStep(major float64, mult int) float64 {
	switch mult {
	case 3, 6:
		return major / 3
	case 5:
		return major / 5
	}
	return major / 2
}

func minorTicks(min, max, delta float64, majors []plot.Tick) []plot.Tick {
	var ticks []plot.Tick
	for v := math.Floor(min/delta) * delta; v <= max; v += delta {
		if v < min || hasTick(majors, v) {
			continue
		}
		ticks = append(ticks, plot.Tick{Value: v})
	}
	return ticks
}

func hasTick(ticks []plot.Tick, v float64) bool {
	for _, t := range ticks {
		if t.Value == v {
			return true
		}
	}
	return false
}

// roundTo rounds x half away from zero to prec decimal places.
func roundTo(x float64, prec int) float64 {
	if x == 0 {
		// no negative zero
		return 0
	}
	if prec >= 0 && x == math.Trunc(x) {
		return x
	}
	pow := math.Pow10(prec)
	scaled := x * pow
	if math.IsInf(scaled, 0) {
		return x
	}
	r := math.Floor(scaled + 0.5)
	if x < 0 {
		r = math.Ceil(scaled - 0.5)
	}
	if r == 0 {
		return 0
	}
	return r / pow
}
