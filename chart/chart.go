// Package chart computes the SVG geometry for the dashboard pie and bar charts.
package chart

import (
	"fmt"
	"math"
	"strconv"
)

// Datum is one labelled value.
type Datum struct {
	Label string
	Value float64
}

const (
	PieViewBox = "-1 -1 2 2"
	BarViewBox = "0 0 100 56"

	barAreaHeight = 40.0
	barBaseline   = 50.0
	barLabelY     = barBaseline + 4
	barGap        = 4.0
)

// Color returns the palette color of series i out of n.
func Color(i, n int) string {
	if n <= 0 {
		n = 1
	}
	return "hsl(" + strconv.FormatFloat(float64(i)*360/float64(n), 'f', -1, 64) + ", 70%, 50%)"
}

func total(data []Datum) float64 {
	var t float64
	for _, d := range data {
		t += d.Value
	}
	return t
}

// Slice is one pie wedge drawn from the center on the unit circle.
type Slice struct {
	Label   string
	Path    string // empty when Circle is set
	Circle  bool   // the slice covers the whole pie
	Fill    string
	Percent string
}

// Pie lays slices clockwise starting at angle 0. Slices with a zero value are
// skipped; a zero total yields no slices.
func Pie(data []Datum) []Slice {
	sum := total(data)
	if sum <= 0 {
		return nil
	}
	var slices []Slice
	cumulative := 0.0
	for i, d := range data {
		if d.Value <= 0 {
			continue
		}
		angle := d.Value / sum * 360
		s := Slice{
			Label:   d.Label,
			Fill:    Color(i, len(data)),
			Percent: Percent(d.Value, sum),
		}
		if angle >= 360 {
			s.Circle = true
			slices = append(slices, s)
			continue
		}
		x1, y1 := point(cumulative)
		cumulative += angle
		x2, y2 := point(cumulative)
		large := 0
		if angle > 180 {
			large = 1
		}
		s.Path = fmt.Sprintf("M 0 0 L %s %s A 1 1 0 %d 1 %s %s Z", num(x1), num(y1), large, num(x2), num(y2))
		slices = append(slices, s)
	}
	return slices
}

func point(deg float64) (float64, float64) {
	rad := deg * math.Pi / 180
	return math.Cos(rad), math.Sin(rad)
}

// Bar is one rectangle in the bar chart together with its labels. Bars stand on
// y=50; the item label sits below at LabelY.
type Bar struct {
	Label  string
	Value  string
	X, Y   float64
	Width  float64
	Height float64
	LabelX float64
	LabelY float64
	Fill   string
}

// Bars scales values against the largest one; the tallest bar is 40 units high.
func Bars(data []Datum) []Bar {
	if len(data) == 0 {
		return nil
	}
	peak := 0.0
	for _, d := range data {
		if d.Value > peak {
			peak = d.Value
		}
	}
	width := 100 / float64(len(data))
	bars := make([]Bar, 0, len(data))
	for i, d := range data {
		h := 0.0
		if peak > 0 && d.Value > 0 {
			h = d.Value / peak * barAreaHeight
		}
		x := float64(i)*width + 2
		bars = append(bars, Bar{
			Label:  d.Label,
			Value:  strconv.FormatFloat(d.Value, 'f', -1, 64),
			X:      x,
			Y:      barBaseline - h,
			Width:  width - barGap,
			Height: h,
			LabelX: x + (width-barGap)/2,
			LabelY: barLabelY,
			Fill:   Color(i, len(data)),
		})
	}
	return bars
}

// LegendEntry is one colored swatch with its share of the total.
type LegendEntry struct {
	Label   string
	Fill    string
	Percent string
}

func Legend(data []Datum) []LegendEntry {
	sum := total(data)
	out := make([]LegendEntry, 0, len(data))
	for i, d := range data {
		out = append(out, LegendEntry{Label: d.Label, Fill: Color(i, len(data)), Percent: Percent(d.Value, sum)})
	}
	return out
}

// Percent formats value/total as a percentage with two decimals.
func Percent(value, total float64) string {
	if total == 0 {
		return "0.00"
	}
	return strconv.FormatFloat(value/total*100, 'f', 2, 64)
}

// num trims float noise so paths stay short and stable.
func num(v float64) string {
	v = math.Round(v*1e6) / 1e6
	if v == 0 {
		v = 0 // drop negative zero
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}
