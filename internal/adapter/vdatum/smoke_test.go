//go:build vdatum

package vdatum

import (
	"context"
	"io"
	"log/slog"
	"math"
	"testing"
	"time"

	"github.com/couchcryptid/adcirc-etl/internal/domain"
	"github.com/couchcryptid/adcirc-etl/internal/observability"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// These tests hit the real VDatum API.
// Run with: go test -tags=vdatum ./internal/adapter/vdatum/ -v -count=1

func smokeClient() *Client {
	return NewClient("https://vdatum.noaa.gov/vdatumweb/api/tidal", 30*time.Second,
		observability.NewMetricsForTesting(), slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestSmoke_Convert_CapeHatteras(t *testing.T) {
	frames := domain.DatumFrames{Horizontal: "NAD83_2011", SourceVertical: "LMSL", TargetVertical: "NAVD88", Unit: "m"}

	result, err := smokeClient().Convert(context.Background(), frames.Request(35.2234, -75.6352))
	require.NoError(t, err)

	assert.False(t, math.IsNaN(result.Height), "message: %s", result.Message)
	assert.Less(t, math.Abs(result.Height), 1.0)
	t.Logf("LMSL->NAVD88 offset: %.3f m", result.Height)
}

func TestSmoke_Convert_Inland(t *testing.T) {
	frames := domain.DatumFrames{Horizontal: "NAD83_2011", SourceVertical: "LMSL", TargetVertical: "NAVD88", Unit: "m"}

	// Kansas has no tidal datum coverage.
	result, err := smokeClient().Convert(context.Background(), frames.Request(38.5, -98.0))
	require.NoError(t, err)
	assert.True(t, math.IsNaN(result.Height))
	t.Logf("message: %s", result.Message)
}
