package report

import (
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/couchcryptid/adcirc-etl/internal/domain"
)

// ChartStations writes an HTML page with one line per station series.
// The x axis comes from the first series; all series of a run share it.
func ChartStations(w io.Writer, series []domain.StationSeries) error {
	if len(series) == 0 {
		return errors.New("chart stations: no series")
	}

	labels := make([]string, len(series[0].Times))
	for i, t := range series[0].Times {
		labels[i] = strconv.FormatFloat(t/secondsPerHour, 'f', 2, 64)
	}

	subtitle := fmt.Sprintf("datum=%s stations=%d", series[0].Datum, len(series))
	if sf := series[0].Shortfall; sf != nil {
		subtitle += " " + sf.String()
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: "ADCIRC station series", Width: "1200px", Height: "600px"}),
		charts.WithTitleOpts(opts.Title{Title: "Station series", Subtitle: subtitle}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Time (h)", NameLocation: "middle", NameGap: 25}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Value", NameLocation: "middle", NameGap: 40}),
	)

	line.SetXAxis(labels)
	for _, ss := range series {
		line.AddSeries(ss.Station, lineData(ss.Values))
	}

	if err := line.Render(w); err != nil {
		return fmt.Errorf("chart stations: %w", err)
	}
	return nil
}

// lineData converts values to chart points. "-" is the echarts gap marker.
func lineData(values []domain.FieldValue) []opts.LineData {
	data := make([]opts.LineData, len(values))
	for i, v := range values {
		if v.Missing() {
			data[i] = opts.LineData{Value: "-"}
			continue
		}
		data[i] = opts.LineData{Value: float64(v)}
	}
	return data
}
