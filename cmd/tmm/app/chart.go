package app

import (
	"fmt"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
)

const (
	chartWidth  = 10 * vg.Inch
	chartHeight = 5 * vg.Inch
)

// series is a single line of a chart: a quantity over frequency
type series struct {
	name      string
	frequency []float64
	values    []float64
}

func (s series) xys() plotter.XYs {
	xys := make(plotter.XYs, len(s.frequency))
	for i := range s.frequency {
		xys[i].X = s.frequency[i] / 1e9
		xys[i].Y = s.values[i]
	}
	return xys
}

// newChart plots every series against frequency in GHz. The power fractions share a
// fixed 0..1 axis so charts of different runs compare at a glance.
func newChart(title string, lines []series) (*plot.Plot, error) {
	if len(lines) == 0 {
		return nil, fmt.Errorf("creating chart: no data")
	}

	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "Frequency (GHz)"
	p.Y.Label.Text = "Power fraction"
	p.Y.Min = 0
	p.Y.Max = 1.05
	p.Legend.Top = true
	p.Add(plotter.NewGrid())

	vs := make([]any, 0, 2*len(lines))
	for _, l := range lines {
		if len(l.frequency) != len(l.values) {
			return nil, fmt.Errorf("creating chart: series %s has %d frequencies and %d values", l.name, len(l.frequency), len(l.values))
		}
		vs = append(vs, l.name, l.xys())
	}
	if err := plotutil.AddLines(p, vs...); err != nil {
		return nil, fmt.Errorf("adding lines: %w", err)
	}

	return p, nil
}

// saveChart writes the chart to path, the image format follows the file extension
func saveChart(path, title string, lines []series) error {
	p, err := newChart(title, lines)
	if err != nil {
		return err
	}
	if err = p.Save(chartWidth, chartHeight, path); err != nil {
		return fmt.Errorf("saving chart: %w", err)
	}
	return nil
}
