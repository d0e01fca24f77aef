package vdatum

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/couchcryptid/adcirc-etl/internal/domain"
	"github.com/couchcryptid/adcirc-etl/internal/observability"
)

// Client implements domain.DatumConverter using the NOAA VDatum tidal API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewClient creates a VDatum client against baseURL.
func NewClient(baseURL string, timeout time.Duration, metrics *observability.Metrics, logger *slog.Logger) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL: baseURL,
		metrics: metrics,
		logger:  logger,
	}
}

// Convert transforms req.Height at (req.Lat, req.Lon) between the requested
// frames. A point the service cannot transform is not an error: the result
// carries a NaN height and the service's message.
func (c *Client) Convert(ctx context.Context, req domain.DatumRequest) (domain.DatumResult, error) {
	params := url.Values{
		"lon":       {formatCoord(req.Lon)},
		"lat":       {formatCoord(req.Lat)},
		"height":    {strconv.FormatFloat(req.Height, 'g', -1, 64)},
		"s_h_frame": {req.SourceHorizontal},
		"s_v_frame": {req.SourceVertical},
		"s_v_unit":  {req.SourceUnit},
		"t_v_frame": {req.TargetVertical},
		"t_v_unit":  {req.TargetUnit},
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return domain.DatumResult{}, fmt.Errorf("create request: %w", err)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	c.metrics.DatumAPIDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		c.metrics.DatumRequests.WithLabelValues("error").Inc()
		return domain.DatumResult{}, fmt.Errorf("vdatum request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.metrics.DatumRequests.WithLabelValues("error").Inc()
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return domain.DatumResult{}, fmt.Errorf("vdatum API error: status %d: %s", resp.StatusCode, body)
	}

	vr := response{Height: flexFloat(math.NaN())}
	if err := json.NewDecoder(resp.Body).Decode(&vr); err != nil {
		c.metrics.DatumRequests.WithLabelValues("error").Inc()
		return domain.DatumResult{}, fmt.Errorf("decode response: %w", err)
	}

	if vr.failed() {
		c.metrics.DatumRequests.WithLabelValues("empty").Inc()
		c.logger.Debug("vdatum returned no height",
			"lat", req.Lat,
			"lon", req.Lon,
			"error_code", string(vr.ErrorCode),
			"message", vr.Message,
		)
		return domain.DatumResult{
			Lat:     req.Lat,
			Lon:     req.Lon,
			Height:  math.NaN(),
			Message: vr.Message,
		}, nil
	}

	c.metrics.DatumRequests.WithLabelValues("success").Inc()
	return domain.DatumResult{
		Lat:             float64(vr.Lat),
		Lon:             float64(vr.Lon),
		Height:          float64(vr.Height),
		HorizontalFrame: vr.HorizontalFrame,
		VerticalFrame:   vr.VerticalFrame,
	}, nil
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', 6, 64)
}

// VDatum API response types.

type response struct {
	Lon             flexFloat       `json:"tar_lon"`
	Lat             flexFloat       `json:"tar_lat"`
	Height          flexFloat       `json:"tar_height"`
	HorizontalFrame string          `json:"tar_h_frame"`
	VerticalFrame   string          `json:"tar_v_frame"`
	ErrorCode       json.RawMessage `json:"errorCode"`
	Message         string          `json:"message"`
}

func (r response) failed() bool {
	if len(r.ErrorCode) > 0 && !bytes.Equal(r.ErrorCode, []byte("null")) {
		return true
	}
	return math.IsNaN(float64(r.Height))
}

// flexFloat accepts a JSON number or a numeric string. Null, non-numeric
// strings and the -999999 placeholder decode as NaN.
type flexFloat float64

func (f *flexFloat) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		*f = flexFloat(math.NaN())
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil || v <= missingHeight {
			*f = flexFloat(math.NaN())
			return nil
		}
		*f = flexFloat(v)
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	if v <= missingHeight {
		v = math.NaN()
	}
	*f = flexFloat(v)
	return nil
}

// missingHeight is the service's placeholder for an untransformable point.
const missingHeight = -999999.0
