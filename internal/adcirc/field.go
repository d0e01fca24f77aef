package adcirc

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"

	"github.com/couchcryptid/adcirc-etl/internal/domain"
)

const (
	sectionFieldPrelude = "field description"
	sectionFieldHeader  = "field header"
	sectionTimestep     = "timestep header"
	sectionFieldValues  = "field values"
)

// scalarRecordType is IRTYPE for one value per node.
const scalarRecordType = 1

// fieldHeader is the NDSETSE NP DTDP*NSPOOLGE NSPOOLGE IRTYPE line.
type fieldHeader struct {
	declared   int
	nodeCount  int
	interval   float64
	spool      int
	recordType int
}

// ReadFieldSeries opens and parses a scalar output file for a mesh of
// nodeCount nodes. A file holding fewer complete blocks than it declares is
// not an error: the complete blocks are returned and the series carries a
// Shortfall. A nil logger discards progress messages.
func ReadFieldSeries(path string, nodeCount int, logger *slog.Logger) (*domain.FieldSeries, error) {
	logger = orDiscard(logger)
	logger.Info("reading field series", "path", path, "nodes", nodeCount)

	f, err := os.Open(path)
	if err != nil {
		return nil, &domain.FormatError{Path: path, Err: err}
	}
	defer f.Close()

	return parseFieldSeries(f, path, nodeCount, logger)
}

// ParseFieldSeries parses a scalar output file from r. r is read twice: once
// to count complete blocks and once to fill them.
func ParseFieldSeries(r io.ReadSeeker, nodeCount int, logger *slog.Logger) (*domain.FieldSeries, error) {
	return parseFieldSeries(r, "", nodeCount, orDiscard(logger))
}

func parseFieldSeries(r io.ReadSeeker, path string, nodeCount int, logger *slog.Logger) (*domain.FieldSeries, error) {
	if nodeCount <= 0 {
		return nil, fmt.Errorf("read field series: node count must be positive, got %d", nodeCount)
	}

	// Pass 1: count complete blocks without allocating.
	lr := newLineReader(r, path)
	desc, hdr, err := readFieldPrelude(lr, nodeCount)
	if err != nil {
		return nil, err
	}
	found, err := countBlocks(lr, nodeCount)
	if err != nil {
		return nil, err
	}
	logger.Debug("field blocks counted", "complete", found, "declared", hdr.declared)

	// Pass 2: rewind, allocate exactly, fill.
	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return nil, &domain.FormatError{Path: path, Err: fmt.Errorf("rewind: %w", err)}
	}
	lr = newLineReader(r, path)
	if _, _, err := readFieldPrelude(lr, nodeCount); err != nil {
		return nil, err
	}

	series := domain.NewFieldSeries(nodeCount, found)
	series.Description = desc
	series.DeclaredTimesteps = hdr.declared
	series.OutputInterval = hdr.interval
	series.OutputSpool = hdr.spool
	series.RecordType = hdr.recordType

	filled, err := fillBlocks(lr, series, found)
	if err != nil {
		return nil, err
	}
	series.Truncate(filled)

	switch {
	case filled < hdr.declared:
		series.Shortfall = &domain.Shortfall{Found: filled, Declared: hdr.declared}
		logger.Warn("incomplete field output",
			"path", path,
			"found", filled,
			"declared", hdr.declared,
			"shortfall", series.Shortfall.String(),
		)
	case filled > hdr.declared:
		logger.Warn("field output holds more timesteps than declared",
			"path", path,
			"found", filled,
			"declared", hdr.declared,
		)
	}
	logger.Info("field series read",
		"timesteps", filled,
		"declared", hdr.declared,
		"missing_values", series.MissingCount(),
	)
	return series, nil
}

// readFieldPrelude consumes the description and file header. Blank lines are
// ignored from the header onward.
func readFieldPrelude(lr *lineReader, nodeCount int) (string, fieldHeader, error) {
	var hdr fieldHeader

	desc, err := lr.next(sectionFieldPrelude)
	if err != nil {
		return "", hdr, err
	}
	lr.skipBlank = true

	f, err := lr.fields(sectionFieldHeader, 2)
	if err != nil {
		return "", hdr, err
	}
	if hdr.declared, err = lr.atoi(sectionFieldHeader, f[0]); err != nil {
		return "", hdr, err
	}
	if hdr.declared < 0 {
		return "", hdr, lr.parseErr(sectionFieldHeader, f[0], errors.New("negative dataset count"))
	}
	if hdr.nodeCount, err = lr.atoi(sectionFieldHeader, f[1]); err != nil {
		return "", hdr, err
	}
	if hdr.nodeCount != nodeCount {
		return "", hdr, &domain.FormatError{
			Path: lr.path,
			Err:  fmt.Errorf("file holds %d nodes, grid has %d", hdr.nodeCount, nodeCount),
		}
	}

	hdr.recordType = scalarRecordType
	if len(f) > 2 {
		if hdr.interval, err = lr.atof(sectionFieldHeader, f[2]); err != nil {
			return "", hdr, err
		}
	}
	if len(f) > 3 {
		if hdr.spool, err = lr.atoi(sectionFieldHeader, f[3]); err != nil {
			return "", hdr, err
		}
	}
	if len(f) > 4 {
		if hdr.recordType, err = lr.atoi(sectionFieldHeader, f[4]); err != nil {
			return "", hdr, err
		}
		if hdr.recordType != scalarRecordType {
			return "", hdr, &domain.FormatError{
				Path: lr.path,
				Err:  fmt.Errorf("record type %d not supported, only scalar output (%d)", hdr.recordType, scalarRecordType),
			}
		}
	}
	return desc, hdr, nil
}

// countBlocks counts the complete header-plus-nodeCount-line blocks left in
// the input. An incomplete trailing block is not counted.
func countBlocks(lr *lineReader, nodeCount int) (int, error) {
	var lines int
	for {
		_, err := lr.next(sectionTimestep)
		if isTruncated(err) {
			break
		}
		if err != nil {
			return 0, err
		}
		lines++
	}
	return lines / (nodeCount + 1), nil
}

// fillBlocks reads up to steps blocks into series and returns how many were
// read completely. Running out of input, or a malformed last line, ends the
// fill early without error.
func fillBlocks(lr *lineReader, series *domain.FieldSeries, steps int) (int, error) {
	for s := 0; s < steps; s++ {
		if err := fillBlock(lr, series, s); err != nil {
			if isTruncated(err) || cutShort(lr, err) {
				return s, nil
			}
			return 0, err
		}
	}
	return steps, nil
}

func fillBlock(lr *lineReader, series *domain.FieldSeries, s int) error {
	f, err := lr.fields(sectionTimestep, 2)
	if err != nil {
		return err
	}
	if series.Times[s], err = lr.atof(sectionTimestep, f[0]); err != nil {
		return err
	}
	if series.Iterations[s], err = lr.atoi(sectionTimestep, f[1]); err != nil {
		return err
	}

	block := series.Timestep(s)
	for n := range series.NodeCount {
		f, err := lr.fields(sectionFieldValues, 2)
		if err != nil {
			return err
		}
		if err := lr.expectID(sectionFieldValues, f[0], n+1); err != nil {
			return err
		}
		v, err := lr.atof(sectionFieldValues, f[1])
		if err != nil {
			return err
		}
		if v == domain.FillValue {
			v = math.NaN()
		}
		block[n] = v
	}
	return nil
}

// cutShort reports whether err is a parse error on the last line of input.
func cutShort(lr *lineReader, err error) bool {
	var perr *domain.ParseError
	return errors.As(err, &perr) && lr.exhausted()
}

func isTruncated(err error) bool {
	var trunc *domain.TruncatedInputError
	return errors.As(err, &trunc)
}
