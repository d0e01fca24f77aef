// Command adcircinfo reads an ADCIRC grid and, optionally, a field series
// and prints a summary. It exits non-zero when either file fails to parse,
// which makes it usable as a pre-flight check before pointing the ETL
// service at a run directory.
//
// Usage:
//
//	go run ./cmd/adcircinfo -grid fort.14 -field fort.63 \
//	  -station duck:36.18:-75.75 -plot duck.png
package main

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"

	"github.com/couchcryptid/adcirc-etl/internal/adcirc"
	"github.com/couchcryptid/adcirc-etl/internal/domain"
	"github.com/couchcryptid/adcirc-etl/internal/report"
	"gonum.org/v1/gonum/floats"
)

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, "adcircinfo:", err)
		os.Exit(1)
	}
}

func run(args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("adcircinfo", flag.ContinueOnError)
	fs.SetOutput(stderr)
	gridPath := fs.String("grid", "", "path to the fort.14 grid (required)")
	fieldPath := fs.String("field", "", "path to a fort.63-style scalar series")
	stationSpec := fs.String("station", "", "station as name:lat:lon to report from the field series")
	plotPath := fs.String("plot", "", "write a PNG of the station series to this path")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *gridPath == "" {
		fs.Usage()
		return fmt.Errorf("-grid is required")
	}
	if *plotPath != "" && (*stationSpec == "" || *fieldPath == "") {
		return fmt.Errorf("-plot needs -station and -field")
	}

	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))

	grid, err := adcirc.ReadGrid(*gridPath, logger)
	if err != nil {
		return err
	}
	printGrid(stdout, *gridPath, grid)

	if *fieldPath == "" {
		return nil
	}
	series, err := adcirc.ReadFieldSeries(*fieldPath, grid.NodeCount, logger)
	if err != nil {
		return err
	}
	printField(stdout, *fieldPath, series)

	if *stationSpec == "" {
		return nil
	}
	stations, err := domain.ParseStations(*stationSpec)
	if err != nil {
		return err
	}
	if *plotPath != "" && len(stations) > 1 {
		return fmt.Errorf("-plot takes a single station, got %d", len(stations))
	}
	for _, st := range stations {
		ss, err := domain.ExtractStationSeries(grid, series, st)
		if err != nil {
			return err
		}
		printStation(stdout, ss)

		if *plotPath != "" {
			if err := writePlot(*plotPath, ss); err != nil {
				return err
			}
			fmt.Fprintf(stdout, "  plot:        %s\n", *plotPath)
		}
	}
	return nil
}

func printGrid(w io.Writer, path string, g *domain.GridRecord) {
	fmt.Fprintf(w, "%s: %q\n", path, g.Description)
	fmt.Fprintf(w, "  nodes:       %d\n", g.NodeCount)
	fmt.Fprintf(w, "  elements:    %d\n", g.ElementCount)
	if g.NodeCount > 0 {
		depths := g.Depths()
		fmt.Fprintf(w, "  depth:       %.3f to %.3f m\n", floats.Min(depths), floats.Max(depths))
	}
	fmt.Fprintf(w, "  open:        %d segments, %d nodes\n", len(g.ElevationBoundaries), g.ElevationNodeTotal)
	fmt.Fprintf(w, "  flow:        %d segments, %d nodes\n", len(g.NormalFlowBoundaries), g.NormalFlowNodeTotal)

	counts := g.BoundaryTypeCounts()
	types := make([]domain.BoundaryType, 0, len(counts))
	for bt := range counts {
		types = append(types, bt)
	}
	slices.Sort(types)
	for _, bt := range types {
		layout, _ := bt.Layout()
		fmt.Fprintf(w, "    ibtype %-3d %3d  (%s)\n", bt, counts[bt], layout)
	}
}

func printField(w io.Writer, path string, s *domain.FieldSeries) {
	fmt.Fprintf(w, "%s: %q\n", path, s.Description)
	fmt.Fprintf(w, "  timesteps:   %d/%d", s.TimestepCount(), s.DeclaredTimesteps)
	if s.Shortfall != nil {
		fmt.Fprint(w, " (truncated)")
	}
	fmt.Fprintln(w)
	fmt.Fprintf(w, "  interval:    %g s every %d steps\n", s.OutputInterval, s.OutputSpool)
	fmt.Fprintf(w, "  missing:     %d of %d values\n", s.MissingCount(), len(s.Values))
}

func printStation(w io.Writer, ss domain.StationSeries) {
	fmt.Fprintf(w, "station %s\n", ss.Station)
	fmt.Fprintf(w, "  node:        %d at (%.5f, %.5f), depth %.3f m\n", ss.NodeID, ss.NodeLat, ss.NodeLon, ss.Depth)
	if ss.Mean.Missing() {
		fmt.Fprintln(w, "  mean:        dry")
		return
	}
	fmt.Fprintf(w, "  mean:        %.4f m\n", float64(ss.Mean))
}

func writePlot(path string, ss domain.StationSeries) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create plot: %w", err)
	}
	if err := report.PlotStation(f, ss); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
