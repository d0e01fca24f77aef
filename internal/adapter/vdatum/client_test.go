package vdatum

import (
	"context"
	"io"
	"log/slog"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/couchcryptid/adcirc-etl/internal/domain"
	"github.com/couchcryptid/adcirc-etl/internal/observability"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	contentTypeJSON   = "application/json"
	headerContentType = "Content-Type"
)

func testClient(baseURL string) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 5 * time.Second},
		baseURL:    baseURL,
		metrics:    observability.NewMetricsForTesting(),
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

func testRequest() domain.DatumRequest {
	return domain.DatumRequest{
		Lat:              35.2234,
		Lon:              -75.6352,
		SourceHorizontal: "NAD83_2011",
		SourceVertical:   "LMSL",
		SourceUnit:       "m",
		TargetVertical:   "NAVD88",
		TargetUnit:       "m",
	}
}

func serveJSON(t *testing.T, body string, check func(*http.Request)) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if check != nil {
			check(r)
		}
		w.Header().Set(headerContentType, contentTypeJSON)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestClient_Convert_Success(t *testing.T) {
	srv := serveJSON(t, `{"tar_lon":"-75.635200","tar_lat":"35.223400","tar_height":"0.094","tar_h_frame":"NAD83_2011","tar_v_frame":"NAVD88"}`,
		func(r *http.Request) {
			q := r.URL.Query()
			assert.Equal(t, "-75.635200", q.Get("lon"))
			assert.Equal(t, "35.223400", q.Get("lat"))
			assert.Equal(t, "0", q.Get("height"))
			assert.Equal(t, "NAD83_2011", q.Get("s_h_frame"))
			assert.Equal(t, "LMSL", q.Get("s_v_frame"))
			assert.Equal(t, "m", q.Get("s_v_unit"))
			assert.Equal(t, "NAVD88", q.Get("t_v_frame"))
			assert.Equal(t, "m", q.Get("t_v_unit"))
		})

	c := testClient(srv.URL)
	result, err := c.Convert(context.Background(), testRequest())
	require.NoError(t, err)

	assert.Equal(t, 0.094, result.Height)
	assert.Equal(t, 35.2234, result.Lat)
	assert.Equal(t, -75.6352, result.Lon)
	assert.Equal(t, "NAD83_2011", result.HorizontalFrame)
	assert.Equal(t, "NAVD88", result.VerticalFrame)
	assert.Empty(t, result.Message)
}

func TestClient_Convert_NumericFields(t *testing.T) {
	srv := serveJSON(t, `{"tar_lon":-75.6,"tar_lat":35.2,"tar_height":-0.125,"tar_v_frame":"NAVD88"}`, nil)

	result, err := testClient(srv.URL).Convert(context.Background(), testRequest())
	require.NoError(t, err)
	assert.Equal(t, -0.125, result.Height)
}

func TestClient_Convert_ErrorCodeYieldsMissingHeight(t *testing.T) {
	srv := serveJSON(t, `{"errorCode":412,"message":"Point outside of the transformation grid"}`, nil)

	result, err := testClient(srv.URL).Convert(context.Background(), testRequest())
	require.NoError(t, err, "an untransformable point is not a request failure")
	assert.True(t, math.IsNaN(result.Height))
	assert.Equal(t, "Point outside of the transformation grid", result.Message)
	assert.Equal(t, 35.2234, result.Lat)
}

func TestClient_Convert_PlaceholderHeight(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"sentinel string", `{"tar_height":"-999999"}`},
		{"sentinel number", `{"tar_height":-999999.0}`},
		{"nan string", `{"tar_height":"NaN"}`},
		{"null", `{"tar_height":null}`},
		{"absent", `{"tar_v_frame":"NAVD88"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := serveJSON(t, tt.body, nil)
			result, err := testClient(srv.URL).Convert(context.Background(), testRequest())
			require.NoError(t, err)
			assert.True(t, math.IsNaN(result.Height))
		})
	}
}

func TestClient_Convert_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte(`upstream unavailable`))
	}))
	defer srv.Close()

	_, err := testClient(srv.URL).Convert(context.Background(), testRequest())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")
	assert.Contains(t, err.Error(), "upstream unavailable")
}

func TestClient_Convert_MalformedBody(t *testing.T) {
	srv := serveJSON(t, `not json`, nil)

	_, err := testClient(srv.URL).Convert(context.Background(), testRequest())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode response")
}

func TestClient_Convert_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := testClient(srv.URL)
	c.httpClient.Timeout = 50 * time.Millisecond

	_, err := c.Convert(context.Background(), testRequest())
	require.Error(t, err)
}

func TestNewClient(t *testing.T) {
	c := NewClient("https://example.invalid/tidal", 3*time.Second, observability.NewMetricsForTesting(), slog.Default())
	assert.Equal(t, "https://example.invalid/tidal", c.baseURL)
	assert.Equal(t, 3*time.Second, c.httpClient.Timeout)
}
