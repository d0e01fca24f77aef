package domain

import "context"

// DatumRequest asks for a point's height to be transformed between vertical
// reference frames.
type DatumRequest struct {
	Lat              float64
	Lon              float64
	Height           float64
	SourceHorizontal string // e.g. NAD83_2011
	SourceVertical   string // e.g. LMSL, MSL, MLLW
	SourceUnit       string // m or ft
	TargetVertical   string // e.g. NAVD88
	TargetUnit       string
}

// DatumResult is the transformed point. Height is NaN when the service could
// not transform the point; Message then carries the service's explanation.
type DatumResult struct {
	Lat             float64
	Lon             float64
	Height          float64
	HorizontalFrame string
	VerticalFrame   string
	Message         string
}

// DatumConverter transforms heights between vertical datums.
type DatumConverter interface {
	Convert(ctx context.Context, req DatumRequest) (DatumResult, error)
}

// DatumFrames is the fixed frame configuration used when shifting station
// series from the model datum.
type DatumFrames struct {
	Horizontal     string
	SourceVertical string
	TargetVertical string
	Unit           string
}

// Request builds the zero-height conversion request whose result is the
// offset between the two vertical frames at (lat, lon).
func (f DatumFrames) Request(lat, lon float64) DatumRequest {
	return DatumRequest{
		Lat:              lat,
		Lon:              lon,
		SourceHorizontal: f.Horizontal,
		SourceVertical:   f.SourceVertical,
		SourceUnit:       f.Unit,
		TargetVertical:   f.TargetVertical,
		TargetUnit:       f.Unit,
	}
}
