package http_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"

	httpadapter "github.com/couchcryptid/adcirc-etl/internal/adapter/http"
	"github.com/couchcryptid/adcirc-etl/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockReadiness struct {
	err error
}

func (m *mockReadiness) CheckReadiness(_ context.Context) error { return m.err }

type mockSeries struct {
	series []domain.StationSeries
}

func (m *mockSeries) LatestSeries() []domain.StationSeries { return m.series }

func testSeries() []domain.StationSeries {
	return []domain.StationSeries{
		{Station: "duck", NodeID: 3, Datum: "NAVD88", Times: []float64{3600, 7200}, Values: []domain.FieldValue{0.4, domain.FieldValue(math.NaN())}},
		{Station: "hatteras", NodeID: 9, Datum: "NAVD88", Times: []float64{3600, 7200}, Values: []domain.FieldValue{0.1, 0.2}},
	}
}

func newTestServer(readyErr error, series []domain.StationSeries) *httpadapter.Server {
	return httpadapter.NewServer(":0", &mockReadiness{err: readyErr}, &mockSeries{series: series},
		slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func get(srv *httpadapter.Server, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestHealthzReturns200(t *testing.T) {
	rec := get(newTestServer(nil, nil), "/healthz")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestReadyzReturns200WhenReady(t *testing.T) {
	rec := get(newTestServer(nil, testSeries()), "/readyz")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestReadyzReturns503WhenNotReady(t *testing.T) {
	rec := get(newTestServer(fmt.Errorf("pipeline has not loaded any station series yet"), nil), "/readyz")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	rec := get(newTestServer(nil, nil), "/metrics")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}

func TestStationsEndpoint(t *testing.T) {
	rec := get(newTestServer(nil, testSeries()), "/stations")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body, 2)
	assert.Equal(t, "duck", body[0]["station"])
	assert.Equal(t, []any{0.4, nil}, body[0]["values"], "missing values are null")
}

func TestStationsEndpoint_NoRunYet(t *testing.T) {
	rec := get(newTestServer(nil, nil), "/stations")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestStationEndpoint(t *testing.T) {
	srv := newTestServer(nil, testSeries())

	rec := get(srv, "/stations/hatteras")
	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, float64(9), body["node_id"])

	rec = get(srv, "/stations/oregon-inlet")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"error":"unknown station oregon-inlet"}`, rec.Body.String())
}

func TestChartEndpoint(t *testing.T) {
	rec := get(newTestServer(nil, testSeries()), "/stations/chart")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, rec.Body.String(), "hatteras")
}

func TestChartEndpoint_NoRunYet(t *testing.T) {
	rec := get(newTestServer(nil, nil), "/stations/chart")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
