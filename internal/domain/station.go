package domain

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"strings"
	"time"

	"gonum.org/v1/gonum/stat"
)

// Datum source labels recorded on a StationSeries.
const (
	DatumSourceModel     = "model"
	DatumSourceConverted = "converted"
	DatumSourceFailed    = "failed"
)

// Station is a named point of interest whose time series is extracted from
// the nearest mesh node.
type Station struct {
	Name string
	Lat  float64
	Lon  float64
}

// StationSeries is the field history at the mesh node nearest a station.
type StationSeries struct {
	Station string  `json:"station"`
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`

	NodeID  int     `json:"node_id"` // 1-based
	NodeLat float64 `json:"node_lat"`
	NodeLon float64 `json:"node_lon"`
	Depth   float64 `json:"depth"`

	Datum       string     `json:"datum"`
	DatumSource string     `json:"datum_source"`
	DatumOffset FieldValue `json:"datum_offset"`

	Times     []float64    `json:"times"`
	Values    []FieldValue `json:"values"`
	Mean      FieldValue   `json:"mean"`
	Shortfall *Shortfall   `json:"shortfall,omitempty"`

	RunID       string    `json:"run_id"`
	ProcessedAt time.Time `json:"processed_at"`
}

// ParseStations parses a comma-separated list of name:lat:lon entries.
func ParseStations(s string) ([]Station, error) {
	var stations []Station
	for _, entry := range strings.Split(s, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		parts := strings.Split(entry, ":")
		if len(parts) != 3 || strings.TrimSpace(parts[0]) == "" {
			return nil, fmt.Errorf("parse station %q: want name:lat:lon", entry)
		}
		lat, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
		if err != nil {
			return nil, fmt.Errorf("parse station %q latitude: %w", entry, err)
		}
		lon, err := strconv.ParseFloat(strings.TrimSpace(parts[2]), 64)
		if err != nil {
			return nil, fmt.Errorf("parse station %q longitude: %w", entry, err)
		}
		stations = append(stations, Station{Name: strings.TrimSpace(parts[0]), Lat: lat, Lon: lon})
	}
	return stations, nil
}

// ExtractStationSeries pulls the series of the node nearest st. Values keep
// the model datum; missing values stay NaN.
func ExtractStationSeries(grid *GridRecord, series *FieldSeries, st Station) (StationSeries, error) {
	if series.NodeCount != grid.NodeCount {
		return StationSeries{}, fmt.Errorf("extract station %s: series has %d nodes, grid has %d",
			st.Name, series.NodeCount, grid.NodeCount)
	}
	idx, err := grid.NearestNode(st.Lat, st.Lon)
	if err != nil {
		return StationSeries{}, fmt.Errorf("extract station %s: %w", st.Name, err)
	}

	values := series.NodeSeries(idx)
	node := grid.Nodes[idx]
	out := StationSeries{
		Station:     st.Name,
		Lat:         st.Lat,
		Lon:         st.Lon,
		NodeID:      idx + 1,
		NodeLat:     node.Lat,
		NodeLon:     node.Lon,
		Depth:       node.Depth,
		DatumSource: DatumSourceModel,
		DatumOffset: FieldValue(0),
		Times:       append([]float64(nil), series.Times...),
		Values:      toFieldValues(values),
		Mean:        FieldValue(meanPresent(values)),
	}
	if series.Shortfall != nil {
		sf := *series.Shortfall
		out.Shortfall = &sf
	}
	return out, nil
}

// ShiftToDatum converts a station series from the model datum to the target
// frame by adding the frame offset at the node location to every present
// value. If converter is nil the series is returned unchanged. A failed or
// missing conversion leaves the values in the model datum and marks
// DatumSource as failed.
func ShiftToDatum(ctx context.Context, ss StationSeries, converter DatumConverter, frames DatumFrames, logger *slog.Logger) StationSeries {
	if ss.Datum == "" {
		ss.Datum = frames.SourceVertical
	}
	if converter == nil {
		return ss
	}

	result, err := converter.Convert(ctx, frames.Request(ss.NodeLat, ss.NodeLon))
	if err != nil {
		logger.Warn("datum conversion failed",
			"station", ss.Station,
			"node_id", ss.NodeID,
			"error", err,
		)
		ss.DatumSource = DatumSourceFailed
		return ss
	}
	if math.IsNaN(result.Height) {
		logger.Warn("datum conversion returned no height",
			"station", ss.Station,
			"node_id", ss.NodeID,
			"message", result.Message,
		)
		ss.DatumSource = DatumSourceFailed
		return ss
	}

	shifted := make([]FieldValue, len(ss.Values))
	for i, v := range ss.Values {
		if v.Missing() {
			shifted[i] = v
			continue
		}
		shifted[i] = v + FieldValue(result.Height)
	}
	ss.Values = shifted
	if !ss.Mean.Missing() {
		ss.Mean += FieldValue(result.Height)
	}
	ss.Datum = frames.TargetVertical
	ss.DatumSource = DatumSourceConverted
	ss.DatumOffset = FieldValue(result.Height)
	return ss
}

// Stamp sets ProcessedAt from the package clock.
func Stamp(ss StationSeries) StationSeries {
	ss.ProcessedAt = clock.Now().UTC()
	return ss
}

// meanPresent averages the non-NaN values, NaN when there are none.
func meanPresent(values []float64) float64 {
	present := make([]float64, 0, len(values))
	for _, v := range values {
		if !math.IsNaN(v) {
			present = append(present, v)
		}
	}
	if len(present) == 0 {
		return math.NaN()
	}
	return stat.Mean(present, nil)
}
