package domain

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// FillValue is the ADCIRC sentinel for "no data" in scalar output files.
const FillValue = -99999.0

// Shortfall records that fewer complete timestep blocks were found on disk
// than the file header declared.
type Shortfall struct {
	Found    int `json:"found"`
	Declared int `json:"declared"`
}

func (s Shortfall) String() string {
	return fmt.Sprintf("found %d/%d timesteps", s.Found, s.Declared)
}

// FieldSeries is a scalar field over NodeCount nodes and TimestepCount()
// timesteps. Missing values are NaN.
//
// Values is stored block by block, as the file is laid out: the value of
// node n at timestep s is Values[s*NodeCount+n]. Matrix exposes the same
// storage as a node × timestep matrix without copying.
type FieldSeries struct {
	Description       string
	NodeCount         int
	DeclaredTimesteps int
	OutputInterval    float64 // DTDP*NSPOOLGE, seconds between blocks
	OutputSpool       int     // NSPOOLGE, timesteps between blocks
	RecordType        int     // IRTYPE

	Times      []float64
	Iterations []int
	Values     []float64

	// Shortfall is nil when every declared timestep was read.
	Shortfall *Shortfall
}

// NewFieldSeries allocates storage for nodeCount × timesteps values.
func NewFieldSeries(nodeCount, timesteps int) *FieldSeries {
	return &FieldSeries{
		NodeCount:  nodeCount,
		Times:      make([]float64, timesteps),
		Iterations: make([]int, timesteps),
		Values:     make([]float64, nodeCount*timesteps),
	}
}

// TimestepCount is the number of complete blocks held.
func (s *FieldSeries) TimestepCount() int { return len(s.Times) }

// Complete reports whether every declared timestep is present.
func (s *FieldSeries) Complete() bool { return s.Shortfall == nil }

// At returns the value of node (0-based) at timestep step.
func (s *FieldSeries) At(node, step int) float64 {
	return s.Values[step*s.NodeCount+node]
}

// Timestep returns the values of every node at one timestep. The slice
// aliases the series storage.
func (s *FieldSeries) Timestep(step int) []float64 {
	return s.Values[step*s.NodeCount : (step+1)*s.NodeCount : (step+1)*s.NodeCount]
}

// NodeSeries returns a copy of one node's values across all timesteps.
func (s *FieldSeries) NodeSeries(node int) []float64 {
	if s.TimestepCount() == 0 {
		return []float64{}
	}
	return mat.Row(nil, node, s.Matrix())
}

// Matrix returns a node × timestep view of the values, or nil when the series
// holds no timesteps.
func (s *FieldSeries) Matrix() mat.Matrix {
	if s.TimestepCount() == 0 || s.NodeCount == 0 {
		return nil
	}
	return mat.NewDense(s.TimestepCount(), s.NodeCount, s.Values).T()
}

// Truncate keeps only the first n timesteps.
func (s *FieldSeries) Truncate(n int) {
	if n >= s.TimestepCount() {
		return
	}
	s.Times = s.Times[:n:n]
	s.Iterations = s.Iterations[:n:n]
	s.Values = s.Values[: n*s.NodeCount : n*s.NodeCount]
}

// MissingCount returns how many values are NaN.
func (s *FieldSeries) MissingCount() int {
	var n int
	for _, v := range s.Values {
		if math.IsNaN(v) {
			n++
		}
	}
	return n
}
