package adcirc

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/couchcryptid/adcirc-etl/internal/domain"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// threeStepField is a complete 3-node, 3-timestep elevation file.
const threeStepField = `RUNDES RUNID AGRID
3 3 3600.0 360 1
3600.0 360
1 0.10
2 -99999.0
3 0.30
7200.0 720
1 0.11
2 0.21
3 0.31
10800.0 1080
1 0.12
2 0.22
3 -99999.0
`

func writeTemp(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestReadFieldSeries_Complete(t *testing.T) {
	path := writeTemp(t, "fort.63", threeStepField)

	s, err := ReadFieldSeries(path, 3, nil)
	require.NoError(t, err)

	assert.Equal(t, "RUNDES RUNID AGRID", s.Description)
	assert.Equal(t, 3, s.NodeCount)
	assert.Equal(t, 3, s.TimestepCount())
	assert.Equal(t, 3, s.DeclaredTimesteps)
	assert.Equal(t, 3600.0, s.OutputInterval)
	assert.Equal(t, 360, s.OutputSpool)
	assert.Equal(t, 1, s.RecordType)
	assert.True(t, s.Complete())
	assert.Nil(t, s.Shortfall)

	assert.Equal(t, []float64{3600, 7200, 10800}, s.Times)
	assert.Equal(t, []int{360, 720, 1080}, s.Iterations)
	assert.Equal(t, 0.10, s.At(0, 0))
	assert.Equal(t, 0.21, s.At(1, 1))
	assert.Equal(t, 0.12, s.At(0, 2))
	assert.Equal(t, []float64{0.10, 0.11, 0.12}, s.NodeSeries(0))
}

func TestReadFieldSeries_SentinelBecomesNaN(t *testing.T) {
	path := writeTemp(t, "fort.63", threeStepField)

	s, err := ReadFieldSeries(path, 3, nil)
	require.NoError(t, err)

	assert.True(t, math.IsNaN(s.At(1, 0)))
	assert.True(t, math.IsNaN(s.At(2, 2)))
	assert.False(t, math.IsNaN(s.At(1, 1)))
	assert.Equal(t, 2, s.MissingCount())
}

func TestReadFieldSeries_ValuesPassThroughExactly(t *testing.T) {
	values := []float64{0.1, -1.2345678901234567, 1e-300, 99999.0, -99998.99999999999}
	var b strings.Builder
	fmt.Fprintf(&b, "precision\n1 %d\n0.0 0\n", len(values))
	for i, v := range values {
		fmt.Fprintf(&b, "%d %.17g\n", i+1, v)
	}

	s, err := ParseFieldSeries(strings.NewReader(b.String()), len(values), nil)
	require.NoError(t, err)
	for i, v := range values {
		assert.Equal(t, v, s.At(i, 0), "node %d", i+1)
	}
}

func TestReadFieldSeries_TruncatedOutput(t *testing.T) {
	// Header declares 5 timesteps; two complete blocks plus a partial third.
	src := strings.Replace(threeStepField, "3 3 3600.0 360 1", "5 3 3600.0 360 1", 1)
	src = strings.TrimSuffix(src, "3 -99999.0\n")

	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, nil))

	s, err := ParseFieldSeries(strings.NewReader(src), 3, logger)
	require.NoError(t, err, "a short file is degraded, not failed")

	assert.Equal(t, 2, s.TimestepCount())
	assert.Len(t, s.Values, 6)
	assert.Equal(t, []float64{3600, 7200}, s.Times)
	assert.Equal(t, 5, s.DeclaredTimesteps)
	require.NotNil(t, s.Shortfall)
	assert.Equal(t, domain.Shortfall{Found: 2, Declared: 5}, *s.Shortfall)
	assert.Equal(t, "found 2/5 timesteps", s.Shortfall.String())
	assert.False(t, s.Complete())

	assert.Contains(t, logs.String(), "incomplete field output")
	assert.Contains(t, logs.String(), "found=2")
	assert.Contains(t, logs.String(), "declared=5")
}

func TestReadFieldSeries_TrailingHeaderOnly(t *testing.T) {
	src := strings.Replace(threeStepField, "3 3 3600.0 360 1", "4 3 3600.0 360 1", 1) + "14400.0 1440\n"

	s, err := ParseFieldSeries(strings.NewReader(src), 3, nil)
	require.NoError(t, err)
	assert.Equal(t, 3, s.TimestepCount())
	assert.Equal(t, &domain.Shortfall{Found: 3, Declared: 4}, s.Shortfall)
}

func TestReadFieldSeries_NoCompleteBlocks(t *testing.T) {
	src := "desc\n10 3 3600.0 360 1\n3600.0 360\n1 0.5\n"

	s, err := ParseFieldSeries(strings.NewReader(src), 3, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, s.TimestepCount())
	assert.Empty(t, s.Values)
	assert.Nil(t, s.Matrix())
	assert.Equal(t, &domain.Shortfall{Found: 0, Declared: 10}, s.Shortfall)
}

func TestReadFieldSeries_MoreBlocksThanDeclared(t *testing.T) {
	src := strings.Replace(threeStepField, "3 3 3600.0 360 1", "2 3 3600.0 360 1", 1)

	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, nil))

	s, err := ParseFieldSeries(strings.NewReader(src), 3, logger)
	require.NoError(t, err)
	assert.Equal(t, 3, s.TimestepCount(), "every complete block is kept")
	assert.Equal(t, 2, s.DeclaredTimesteps)
	assert.Equal(t, []float64{3600, 7200, 10800}, s.Times)
	assert.Equal(t, 0.22, s.At(1, 2))
	assert.Nil(t, s.Shortfall)
	assert.Contains(t, logs.String(), "more timesteps than declared")
}

func TestReadFieldSeries_LastLineCutShort(t *testing.T) {
	declareFive := strings.Replace(threeStepField, "3 3 3600.0 360 1", "5 3 3600.0 360 1", 1)
	tests := []struct {
		name string
		src  string
	}{
		{"value column missing", strings.TrimSuffix(declareFive, " -99999.0\n") + "\n"},
		{"value cut mid-token", strings.TrimSuffix(declareFive, "-99999.0\n") + "-9.9E\n"},
		{"no trailing newline", strings.TrimSuffix(declareFive, " -99999.0\n")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := ParseFieldSeries(strings.NewReader(tt.src), 3, nil)
			require.NoError(t, err, "a cut final line is degraded, not failed")
			assert.Equal(t, 2, s.TimestepCount())
			assert.Equal(t, []float64{3600, 7200}, s.Times)
			assert.Equal(t, &domain.Shortfall{Found: 2, Declared: 5}, s.Shortfall)
		})
	}
}

func TestReadFieldSeries_MalformedLineBeforeEnd(t *testing.T) {
	// The third block header lost its iteration column. With data after it
	// the file is corrupt; without, it is an incomplete trailing block.
	src := strings.Replace(threeStepField, "10800.0 1080\n", "10800.0\n", 1)
	src = strings.Replace(src, "3 3 3600.0 360 1", "4 3 3600.0 360 1", 1)
	lines := strings.SplitAfter(src, "10800.0\n")
	src = lines[0]

	s, err := ParseFieldSeries(strings.NewReader(src+"1 0.12\n2 0.22\n3 0.5\n"), 3, nil)
	require.Error(t, err, "a malformed line with input after it still fails")
	assert.Nil(t, s)

	s, err = ParseFieldSeries(strings.NewReader(src), 3, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, s.TimestepCount())
}

func TestReadFieldSeries_NodeCountInDataDoesNotCountAsHeader(t *testing.T) {
	// Values equal to the node count must not be mistaken for block headers.
	src := "desc\n2 3 1.0 1 1\n1.0 1\n1 3\n2 3   \n3 3\n"

	s, err := ParseFieldSeries(strings.NewReader(src), 3, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, s.TimestepCount())
	assert.Equal(t, []float64{3, 3, 3}, s.Timestep(0))
	assert.Equal(t, &domain.Shortfall{Found: 1, Declared: 2}, s.Shortfall)
}

func TestReadFieldSeries_BlankLinesIgnored(t *testing.T) {
	src := strings.Replace(threeStepField, "7200.0 720\n", "\n7200.0 720\n\n", 1) + "\n\n"

	s, err := ParseFieldSeries(strings.NewReader(src), 3, nil)
	require.NoError(t, err)
	assert.Equal(t, 3, s.TimestepCount())
	assert.Equal(t, 0.31, s.At(2, 1))
}

func TestReadFieldSeries_MinimalHeader(t *testing.T) {
	src := "maxele\n1 2\n0.0 0\n1 1.5\n2 2.5\n"

	s, err := ParseFieldSeries(strings.NewReader(src), 2, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, s.RecordType)
	assert.Equal(t, 0.0, s.OutputInterval)
	assert.Equal(t, []float64{1.5, 2.5}, s.Timestep(0))
}

func TestReadFieldSeries_FormatErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		msg  string
	}{
		{"node count mismatch", strings.Replace(threeStepField, "3 3 3600.0 360 1", "3 4 3600.0 360 1", 1), "file holds 4 nodes, grid has 3"},
		{"vector output", strings.Replace(threeStepField, "3 3 3600.0 360 1", "3 3 3600.0 360 2", 1), "record type 2 not supported"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseFieldSeries(strings.NewReader(tt.src), 3, nil)
			require.Error(t, err)

			var ferr *domain.FormatError
			require.True(t, errors.As(err, &ferr), "got %T: %v", err, err)
			assert.Contains(t, err.Error(), tt.msg)
		})
	}
}

func TestReadFieldSeries_ParseErrors(t *testing.T) {
	tests := []struct {
		name    string
		src     string
		section string
		token   string
	}{
		{"non-numeric value", strings.Replace(threeStepField, "2 0.21", "2 wet", 1), sectionFieldValues, "wet"},
		{"non-numeric time", strings.Replace(threeStepField, "7200.0 720", "later 720", 1), sectionTimestep, "later"},
		{"node id out of sequence", strings.Replace(threeStepField, "2 0.21", "3 0.21", 1), sectionFieldValues, "3"},
		{"bad dataset count", strings.Replace(threeStepField, "3 3 3600.0 360 1", "x 3 3600.0 360 1", 1), sectionFieldHeader, "x"},
		{"missing value column", strings.Replace(threeStepField, "2 0.21", "2", 1), sectionFieldValues, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := ParseFieldSeries(strings.NewReader(tt.src), 3, nil)
			require.Error(t, err)
			assert.Nil(t, s)

			var perr *domain.ParseError
			require.True(t, errors.As(err, &perr), "got %T: %v", err, err)
			assert.Equal(t, tt.section, perr.Section)
			assert.Equal(t, tt.token, perr.Token)
		})
	}
}

func TestReadFieldSeries_EmptyFile(t *testing.T) {
	_, err := ParseFieldSeries(strings.NewReader(""), 3, nil)

	var terr *domain.TruncatedInputError
	require.True(t, errors.As(err, &terr))
	assert.Equal(t, sectionFieldPrelude, terr.Section)
}

func TestReadFieldSeries_MissingFile(t *testing.T) {
	_, err := ReadFieldSeries(filepath.Join(t.TempDir(), "fort.63"), 3, nil)

	var ferr *domain.FormatError
	require.True(t, errors.As(err, &ferr))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestReadFieldSeries_InvalidNodeCount(t *testing.T) {
	_, err := ParseFieldSeries(strings.NewReader(threeStepField), 0, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "node count must be positive")
}

// failingSeeker reads normally but cannot rewind.
type failingSeeker struct{ io.Reader }

func (failingSeeker) Seek(int64, int) (int64, error) { return 0, errors.New("not seekable") }

func TestReadFieldSeries_RewindFailure(t *testing.T) {
	_, err := ParseFieldSeries(failingSeeker{strings.NewReader(threeStepField)}, 3, nil)

	var ferr *domain.FormatError
	require.True(t, errors.As(err, &ferr))
	assert.Contains(t, err.Error(), "rewind")
}

func TestReadFieldSeries_Idempotent(t *testing.T) {
	path := writeTemp(t, "fort.63", threeStepField)

	first, err := ReadFieldSeries(path, 3, nil)
	require.NoError(t, err)
	second, err := ReadFieldSeries(path, 3, nil)
	require.NoError(t, err)

	if diff := cmp.Diff(first, second, cmpopts.EquateNaNs()); diff != "" {
		t.Fatalf("second read differs (-first +second):\n%s", diff)
	}
}
