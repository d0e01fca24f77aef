package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNearestNode(t *testing.T) {
	lats := []float64{0, 0, 1, 1}
	lons := []float64{0, 2, 2, 0}

	tests := []struct {
		name     string
		lat, lon float64
		want     int
	}{
		{"exact match", 1, 2, 2},
		{"closest to first", -5, -5, 0},
		{"between nodes", 0.75, 0.5, 3},
		{"tie goes to lowest index", 0, 1, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NearestNode(lats, lons, tt.lat, tt.lon)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNearestNode_InvalidInput(t *testing.T) {
	_, err := NearestNode(nil, nil, 0, 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no candidate nodes")

	_, err = NearestNode([]float64{1, 2}, []float64{1}, 0, 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "2 latitudes but 1 longitudes")
}

func TestGridRecord_NearestNode(t *testing.T) {
	g := &GridRecord{Nodes: []Node{
		{Lon: -75.0, Lat: 35.0},
		{Lon: -74.0, Lat: 36.0},
	}}
	idx, err := g.NearestNode(35.9, -74.1)
	require.NoError(t, err)
	assert.Equal(t, 1, idx)
}
