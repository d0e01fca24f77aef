package adcirc

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"strconv"

	"github.com/couchcryptid/adcirc-etl/internal/domain"
)

// formatReal writes v with 17 significant digits so it parses back exactly.
func formatReal(v float64) string {
	return strconv.FormatFloat(v, 'E', 16, 64)
}

// WriteGrid writes g in fort.14 layout.
func WriteGrid(w io.Writer, g *domain.GridRecord) error {
	bw := bufio.NewWriter(w)

	fmt.Fprintln(bw, g.Description)
	fmt.Fprintf(bw, "%d %d\n", len(g.Elements), len(g.Nodes))
	for i, n := range g.Nodes {
		fmt.Fprintf(bw, "%d %s %s %s\n", i+1, formatReal(n.Lon), formatReal(n.Lat), formatReal(n.Depth))
	}
	for i, e := range g.Elements {
		fmt.Fprintf(bw, "%d 3 %d %d %d\n", i+1, e[0], e[1], e[2])
	}

	fmt.Fprintf(bw, "%d = Number of open boundaries\n", len(g.ElevationBoundaries))
	fmt.Fprintf(bw, "%d = Total number of open boundary nodes\n", g.ElevationNodeTotal)
	for k, seg := range g.ElevationBoundaries {
		fmt.Fprintf(bw, "%d %d = Number of nodes for open boundary %d\n", len(seg.Nodes), int(seg.Type), k+1)
		for _, id := range seg.Nodes {
			fmt.Fprintf(bw, "%d\n", id)
		}
	}

	fmt.Fprintf(bw, "%d = Number of land boundaries\n", len(g.NormalFlowBoundaries))
	fmt.Fprintf(bw, "%d = Total number of land boundary nodes\n", g.NormalFlowNodeTotal)
	for k, seg := range g.NormalFlowBoundaries {
		layout, ok := seg.Type.Layout()
		if !ok {
			return fmt.Errorf("write grid: land boundary %d: %w %d", k+1, domain.ErrUnsupportedBoundaryType, int(seg.Type))
		}
		fmt.Fprintf(bw, "%d %d = Number of nodes for land boundary %d\n", len(seg.Nodes), int(seg.Type), k+1)
		for j, n := range seg.Nodes {
			line, err := normalFlowLine(layout, n)
			if err != nil {
				return fmt.Errorf("write grid: land boundary %d node %d: %w", k+1, j+1, err)
			}
			fmt.Fprintln(bw, line)
		}
	}
	return bw.Flush()
}

func normalFlowLine(layout domain.BoundaryLayout, n domain.NormalFlowNode) (string, error) {
	switch layout {
	case domain.LayoutNodeOnly:
		return strconv.Itoa(n.NodeID), nil
	case domain.LayoutExternalBarrier:
		if n.External == nil {
			return "", fmt.Errorf("%s layout without barrier values", layout)
		}
		return fmt.Sprintf("%d %s %s", n.NodeID, formatReal(n.External.Height), formatReal(n.External.CFSP)), nil
	case domain.LayoutInternalBarrier, domain.LayoutInternalBarrierPipe:
		if n.Internal == nil {
			return "", fmt.Errorf("%s layout without barrier values", layout)
		}
		line := fmt.Sprintf("%d %d %s %s %s", n.NodeID, n.Internal.BackFaceNodeID,
			formatReal(n.Internal.Height), formatReal(n.Internal.CFSB), formatReal(n.Internal.CFSP))
		if layout == domain.LayoutInternalBarrier {
			return line, nil
		}
		if n.Pipe == nil {
			return "", fmt.Errorf("%s layout without pipe values", layout)
		}
		return fmt.Sprintf("%s %s %s %s", line,
			formatReal(n.Pipe.Height), formatReal(n.Pipe.FrictionFactor), formatReal(n.Pipe.Diameter)), nil
	}
	return "", fmt.Errorf("unknown layout %s", layout)
}

// WriteFieldSeries writes s in fort.63 layout with declared as NDSETSE.
// declared may exceed the blocks held to mimic a run that stopped early.
// NaN values are written as the fill value.
func WriteFieldSeries(w io.Writer, s *domain.FieldSeries, declared int) error {
	bw := bufio.NewWriter(w)

	fmt.Fprintln(bw, s.Description)
	fmt.Fprintf(bw, "%d %d %s %d %d\n", declared, s.NodeCount, formatReal(s.OutputInterval), s.OutputSpool, scalarRecordType)
	for step := 0; step < s.TimestepCount(); step++ {
		fmt.Fprintf(bw, "%s %d\n", formatReal(s.Times[step]), s.Iterations[step])
		for n, v := range s.Timestep(step) {
			if math.IsNaN(v) {
				v = domain.FillValue
			}
			fmt.Fprintf(bw, "%d %s\n", n+1, formatReal(v))
		}
	}
	return bw.Flush()
}
