package main

import (
	"math"

	"github.com/couchcryptid/adcirc-etl/internal/domain"
)

// m2Period is the principal lunar semidiurnal tide period in seconds.
const m2Period = 44712.0

// wetThreshold is the minimum water column, in meters, for a node to count
// as wet.
const wetThreshold = 0.05

// meshSpec describes a structured rectangle of nx × ny cells.
type meshSpec struct {
	nx, ny     int
	lon0, lat0 float64
	dx         float64 // cell size in degrees
	shoreDepth float64 // depth at the west edge, negative above the geoid
	seaDepth   float64 // depth at the east edge
}

func (m meshSpec) nodeID(i, j int) int { return j*(m.nx+1) + i + 1 }

// rectangleGrid triangulates the rectangle with two elements per cell. The
// east edge is an open boundary and the west edge a mainland boundary.
func rectangleGrid(m meshSpec, description string) *domain.GridRecord {
	np := (m.nx + 1) * (m.ny + 1)
	ne := 2 * m.nx * m.ny

	g := &domain.GridRecord{
		Description:  description,
		NodeCount:    np,
		ElementCount: ne,
		Nodes:        make([]domain.Node, 0, np),
		Elements:     make([]domain.Element, 0, ne),
	}

	for j := 0; j <= m.ny; j++ {
		for i := 0; i <= m.nx; i++ {
			frac := float64(i) / float64(m.nx)
			g.Nodes = append(g.Nodes, domain.Node{
				Lon:   m.lon0 + float64(i)*m.dx,
				Lat:   m.lat0 + float64(j)*m.dx,
				Depth: m.shoreDepth + frac*(m.seaDepth-m.shoreDepth),
			})
		}
	}

	for j := 0; j < m.ny; j++ {
		for i := 0; i < m.nx; i++ {
			a, b := m.nodeID(i, j), m.nodeID(i+1, j)
			c, d := m.nodeID(i+1, j+1), m.nodeID(i, j+1)
			g.Elements = append(g.Elements, domain.Element{a, b, c}, domain.Element{a, c, d})
		}
	}

	open := domain.ElevationBoundary{}
	for j := 0; j <= m.ny; j++ {
		open.Nodes = append(open.Nodes, m.nodeID(m.nx, j))
	}
	g.ElevationBoundaries = []domain.ElevationBoundary{open}
	g.ElevationNodeTotal = len(open.Nodes)

	land := domain.NormalFlowBoundary{Type: 20}
	for j := m.ny; j >= 0; j-- {
		land.Nodes = append(land.Nodes, domain.NormalFlowNode{NodeID: m.nodeID(0, j)})
	}
	g.NormalFlowBoundaries = []domain.NormalFlowBoundary{land}
	g.NormalFlowNodeTotal = len(land.Nodes)

	return g
}

// syntheticTide fills a series with an M2 tide of the given amplitude that
// propagates from east to west. Nodes whose water column is below
// wetThreshold are dry and left missing.
func syntheticTide(g *domain.GridRecord, steps int, interval float64, spool int, amplitude float64) *domain.FieldSeries {
	s := domain.NewFieldSeries(g.NodeCount, steps)
	s.OutputInterval = interval
	s.OutputSpool = spool
	s.RecordType = 1

	minLon, maxLon := lonRange(g)
	span := maxLon - minLon

	for k := 0; k < steps; k++ {
		t := float64(k+1) * interval
		s.Times[k] = t
		s.Iterations[k] = (k + 1) * spool

		row := s.Timestep(k)
		for n, node := range g.Nodes {
			phase := 0.0
			if span > 0 {
				phase = (maxLon - node.Lon) / span * math.Pi / 4
			}
			eta := amplitude * math.Sin(2*math.Pi*t/m2Period-phase)
			if node.Depth+eta < wetThreshold {
				row[n] = math.NaN()
				continue
			}
			row[n] = eta
		}
	}
	return s
}

func lonRange(g *domain.GridRecord) (float64, float64) {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, n := range g.Nodes {
		lo = math.Min(lo, n.Lon)
		hi = math.Max(hi, n.Lon)
	}
	return lo, hi
}
