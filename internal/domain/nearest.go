package domain

import (
	"errors"
	"fmt"
)

// NearestNode linearly scans parallel latitude/longitude slices for the index
// minimizing squared planar distance to (lat, lon). Ties go to the lowest
// index. Coordinates are treated as planar: no antimeridian or projection
// handling.
func NearestNode(lats, lons []float64, lat, lon float64) (int, error) {
	if len(lats) != len(lons) {
		return 0, fmt.Errorf("nearest node: %d latitudes but %d longitudes", len(lats), len(lons))
	}
	if len(lats) == 0 {
		return 0, errors.New("nearest node: no candidate nodes")
	}

	best := 0
	bestDist := sq(lats[0]-lat) + sq(lons[0]-lon)
	for i := 1; i < len(lats); i++ {
		d := sq(lats[i]-lat) + sq(lons[i]-lon)
		if d < bestDist {
			best, bestDist = i, d
		}
	}
	return best, nil
}

func sq(v float64) float64 { return v * v }
