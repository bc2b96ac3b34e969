package sim

import (
	"fmt"
	"image/color"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

const (
	// ChartWidth is the default chart width: 1600 pixels at 96 DPI
	ChartWidth vg.Length = 1200
	// ChartHeight is the default chart height: 1200 pixels at 96 DPI
	ChartHeight vg.Length = 900
)

type chartLine struct {
	name  string
	data  []float64
	color color.Color
	dash  []vg.Length
}

// NewChart creates new plot of the filter run from the three data sources:
// res:   filter estimates
// truth: true positions, may be nil
// meas:  measurements
// The first state component and the first measurement component are drawn against the step index
// together with the priori Sigma envelope.
// It returns error if the plot fails to be created. This can be due to either of the following conditions:
// * res is nil or empty
// * the length of measurements or truth differs from the number of estimates
// * gonum plot fails to be created
func NewChart(res *Result, truth []float64, meas []mat.Vector) (*plot.Plot, error) {
	if res == nil || res.Len() == 0 {
		return nil, fmt.Errorf("invalid result supplied")
	}

	n := res.Len()
	if len(meas) != n || (truth != nil && len(truth) != n) {
		return nil, fmt.Errorf("invalid data dimensions: %d measurements, %d truths, %d estimates", len(meas), len(truth), n)
	}

	p := plot.New()

	p.Title.Text = "Kalman Filter Results"
	p.X.Label.Text = "Step"
	p.Y.Label.Text = "Position"
	p.Legend.Top = true
	p.Add(plotter.NewGrid())

	zs := make([]float64, n)
	for i, z := range meas {
		if z == nil || z.Len() == 0 {
			return nil, fmt.Errorf("invalid measurement %d", i)
		}
		zs[i] = z.AtVec(0)
	}

	lower, upper := res.Bounds(0)

	lines := []chartLine{
		{"Measurements", zs, color.RGBA{R: 255, A: 255}, nil},
		{"Predictions", res.PriorSeries(0), color.RGBA{B: 255, A: 255}, nil},
		{"Upper 3-Sigma Bound", upper, color.RGBA{G: 160, A: 255}, nil},
		{"Lower 3-Sigma Bound", lower, color.RGBA{G: 160, A: 255}, nil},
	}
	if truth != nil {
		lines = append(lines, chartLine{"Truth", truth, color.Black, []vg.Length{vg.Points(5), vg.Points(5)}})
	}

	for _, l := range lines {
		line, err := plotter.NewLine(makePoints(l.data))
		if err != nil {
			return nil, fmt.Errorf("failed to create line %s: %v", l.name, err)
		}
		line.LineStyle.Color = l.color
		line.LineStyle.Width = vg.Points(1)
		line.LineStyle.Dashes = l.dash

		p.Add(line)
		p.Legend.Add(l.name, line)
	}

	if len(res.Skipped) > 0 {
		skipped := make(plotter.XYs, len(res.Skipped))
		for i, k := range res.Skipped {
			skipped[i] = plotter.XY{X: float64(k), Y: zs[k]}
		}

		sc, err := plotter.NewScatter(skipped)
		if err != nil {
			return nil, fmt.Errorf("failed to create scatter: %v", err)
		}
		sc.GlyphStyle.Shape = draw.CrossGlyph{}
		sc.GlyphStyle.Radius = vg.Points(3)

		p.Add(sc)
		p.Legend.Add("Skipped", sc)
	}

	return p, nil
}

// SaveChart saves the plot to path. Image format is chosen by the path extension:
// png, jpg, svg, pdf, eps and tiff are supported.
// Zero width or height defaults to ChartWidth and ChartHeight.
func SaveChart(p *plot.Plot, path string, w, h vg.Length) error {
	if p == nil {
		return fmt.Errorf("invalid plot supplied")
	}

	if w <= 0 {
		w = ChartWidth
	}

	if h <= 0 {
		h = ChartHeight
	}

	return p.Save(w, h, path)
}

func makePoints(ys []float64) plotter.XYs {
	pts := make(plotter.XYs, len(ys))
	for i := range ys {
		pts[i].X = float64(i)
		pts[i].Y = ys[i]
	}

	return pts
}
