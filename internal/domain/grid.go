package domain

// Node is a mesh vertex. Depth is positive below the geoid.
type Node struct {
	Lon   float64
	Lat   float64
	Depth float64
}

// Element is a triangle given by three 1-based node ids.
type Element [3]int

// GridRecord is a parsed fort.14 mesh. Nodes and Elements are sized exactly
// to NodeCount and ElementCount; node i (0-based) has id i+1.
type GridRecord struct {
	Description  string
	NodeCount    int
	ElementCount int
	Nodes        []Node
	Elements     []Element

	// ElevationNodeTotal and NormalFlowNodeTotal are NETA and NVEL as read.
	// They are informational; segment lengths come from each segment header.
	ElevationNodeTotal   int
	ElevationBoundaries  []ElevationBoundary
	NormalFlowNodeTotal  int
	NormalFlowBoundaries []NormalFlowBoundary
}

// Longitudes returns a copy of the node longitudes in node order.
func (g *GridRecord) Longitudes() []float64 {
	out := make([]float64, len(g.Nodes))
	for i, n := range g.Nodes {
		out[i] = n.Lon
	}
	return out
}

// Latitudes returns a copy of the node latitudes in node order.
func (g *GridRecord) Latitudes() []float64 {
	out := make([]float64, len(g.Nodes))
	for i, n := range g.Nodes {
		out[i] = n.Lat
	}
	return out
}

// Depths returns a copy of the node depths in node order.
func (g *GridRecord) Depths() []float64 {
	out := make([]float64, len(g.Nodes))
	for i, n := range g.Nodes {
		out[i] = n.Depth
	}
	return out
}

// NearestNode returns the 0-based index of the node closest to (lat, lon).
func (g *GridRecord) NearestNode(lat, lon float64) (int, error) {
	return NearestNode(g.Latitudes(), g.Longitudes(), lat, lon)
}

// BoundaryTypeCounts tallies normal-flow segments by IBTYPE.
func (g *GridRecord) BoundaryTypeCounts() map[BoundaryType]int {
	counts := make(map[BoundaryType]int)
	for _, b := range g.NormalFlowBoundaries {
		counts[b.Type]++
	}
	return counts
}
