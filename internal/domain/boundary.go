package domain

import "fmt"

// BoundaryType is the ADCIRC IBTYPE code of a normal-flow boundary segment.
// The code selects which columns each of the segment's node lines carries:
//
//	0 1 2 10 11 12 20 21 22 30   node id
//	3 13 23                      node id, barrier height, supercritical coefficient
//	4 24                         node id, back-face node, barrier height,
//	                             subcritical and supercritical coefficients
//	5 25                         as 4/24, plus pipe height, bulk friction
//	                             factor and pipe diameter
//
// Any other code is rejected rather than read as zero columns.
type BoundaryType int

// BoundaryLayout identifies the column set of a normal-flow node line.
type BoundaryLayout int

const (
	LayoutNodeOnly BoundaryLayout = iota + 1
	LayoutExternalBarrier
	LayoutInternalBarrier
	LayoutInternalBarrierPipe
)

// Layout returns the column layout for the code, or false if the code is
// not a supported normal-flow boundary type.
func (t BoundaryType) Layout() (BoundaryLayout, bool) {
	switch t {
	case 0, 1, 2, 10, 11, 12, 20, 21, 22, 30:
		return LayoutNodeOnly, true
	case 3, 13, 23:
		return LayoutExternalBarrier, true
	case 4, 24:
		return LayoutInternalBarrier, true
	case 5, 25:
		return LayoutInternalBarrierPipe, true
	}
	return 0, false
}

// Columns is the number of leading tokens a node line of this layout must
// provide.
func (l BoundaryLayout) Columns() int {
	switch l {
	case LayoutNodeOnly:
		return 1
	case LayoutExternalBarrier:
		return 3
	case LayoutInternalBarrier:
		return 5
	case LayoutInternalBarrierPipe:
		return 8
	}
	return 0
}

func (l BoundaryLayout) String() string {
	switch l {
	case LayoutNodeOnly:
		return "node"
	case LayoutExternalBarrier:
		return "external barrier"
	case LayoutInternalBarrier:
		return "internal barrier"
	case LayoutInternalBarrierPipe:
		return "internal barrier with pipes"
	}
	return fmt.Sprintf("layout(%d)", int(l))
}

// ElevationBoundaryType is the optional IBTYPEE code on an elevation
// (open) boundary segment header. It does not change the node line layout.
type ElevationBoundaryType int

// ElevationBoundary is one elevation-specified (open) boundary segment.
// Type is 0 when the segment header carries no IBTYPEE.
type ElevationBoundary struct {
	Type  ElevationBoundaryType
	Nodes []int
}

// NormalFlowBoundary is one normal-flow boundary segment.
type NormalFlowBoundary struct {
	Type  BoundaryType
	Nodes []NormalFlowNode
}

// NormalFlowNode is one node line of a normal-flow segment. The optional parts
// are set only when the segment's layout carries them; a nil part means the
// file had no such columns, not that they were zero.
type NormalFlowNode struct {
	NodeID   int
	External *ExternalBarrier
	Internal *InternalBarrier
	Pipe     *CrossBarrierPipe
}

// ExternalBarrier holds the BARLANHT and BARLANCFSP columns.
type ExternalBarrier struct {
	Height float64
	CFSP   float64 // supercritical weir coefficient
}

// InternalBarrier holds the IBCONN, BARINHT, BARINCFSB and BARINCFSP columns.
type InternalBarrier struct {
	BackFaceNodeID int
	Height         float64
	CFSB           float64 // subcritical weir coefficient
	CFSP           float64 // supercritical weir coefficient
}

// CrossBarrierPipe holds the PIPEHT, PIPECOEF and PIPEDIAM columns.
type CrossBarrierPipe struct {
	Height         float64
	FrictionFactor float64
	Diameter       float64
}
