package pipeline

import (
	"context"
	"log/slog"

	"github.com/couchcryptid/adcirc-etl/internal/domain"
)

// StationTransformer implements Transformer using the domain station
// functions with optional datum conversion.
type StationTransformer struct {
	converter domain.DatumConverter
	frames    domain.DatumFrames
	logger    *slog.Logger
}

// NewTransformer creates a StationTransformer. Pass a nil converter to keep
// series in the model datum.
func NewTransformer(converter domain.DatumConverter, frames domain.DatumFrames, logger *slog.Logger) *StationTransformer {
	return &StationTransformer{
		converter: converter,
		frames:    frames,
		logger:    logger,
	}
}

func (t *StationTransformer) Transform(ctx context.Context, ds Dataset, st domain.Station) (domain.StationSeries, error) {
	ss, err := domain.ExtractStationSeries(ds.Grid, ds.Series, st)
	if err != nil {
		return domain.StationSeries{}, err
	}

	ss = domain.ShiftToDatum(ctx, ss, t.converter, t.frames, t.logger)
	ss = domain.Stamp(ss)

	return ss, nil
}
