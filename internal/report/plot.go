// Package report renders station series for people: PNG plots for the
// command-line tools and HTML charts for the service.
package report

import (
	"errors"
	"fmt"
	"io"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/couchcryptid/adcirc-etl/internal/domain"
)

const secondsPerHour = 3600.0

// PlotStation writes a PNG line plot of one station series to w. Missing
// values break the line rather than being drawn as zero.
func PlotStation(w io.Writer, ss domain.StationSeries) error {
	segments, points := presentSegments(ss)
	if len(points) == 0 {
		return errors.New("plot station: series has no values")
	}

	p := plot.New()
	p.Title.Text = fmt.Sprintf("%s (node %d)", ss.Station, ss.NodeID)
	p.X.Label.Text = "Time (h)"
	p.Y.Label.Text = fmt.Sprintf("Value (%s)", ss.Datum)

	for _, seg := range segments {
		line, err := plotter.NewLine(seg)
		if err != nil {
			return fmt.Errorf("plot station: %w", err)
		}
		line.Width = vg.Points(1)
		p.Add(line)
	}

	scatter, err := plotter.NewScatter(points)
	if err != nil {
		return fmt.Errorf("plot station: %w", err)
	}
	scatter.GlyphStyle.Radius = vg.Points(1.5)
	p.Add(scatter)

	wt, err := p.WriterTo(10*vg.Inch, 4*vg.Inch, "png")
	if err != nil {
		return fmt.Errorf("plot station: %w", err)
	}
	if _, err := wt.WriteTo(w); err != nil {
		return fmt.Errorf("plot station: write png: %w", err)
	}
	return nil
}

// presentSegments splits the series at missing values into runs of at least
// two points, and also returns every present point.
func presentSegments(ss domain.StationSeries) ([]plotter.XYs, plotter.XYs) {
	var segments []plotter.XYs
	var current plotter.XYs
	points := make(plotter.XYs, 0, len(ss.Values))

	flush := func() {
		if len(current) > 1 {
			segments = append(segments, current)
		}
		current = nil
	}

	for i, v := range ss.Values {
		if v.Missing() || i >= len(ss.Times) {
			flush()
			continue
		}
		pt := plotter.XY{X: ss.Times[i] / secondsPerHour, Y: float64(v)}
		current = append(current, pt)
		points = append(points, pt)
	}
	flush()
	return segments, points
}
