package adcirc

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/couchcryptid/adcirc-etl/internal/domain"
)

// maxLineSize bounds a single record line. Mesh descriptions and data lines
// are short; this only guards against binary input.
const maxLineSize = 1024 * 1024

// maxPrealloc caps the capacity reserved up front for a count read from the
// file. Larger sections grow as records arrive, so a corrupt count runs out
// of input instead of memory.
const maxPrealloc = 1 << 16

func capHint(n int) int { return min(n, maxPrealloc) }

// lineReader hands out one whitespace-tokenized record per line and keeps the
// line number for error reporting.
type lineReader struct {
	sc        *bufio.Scanner
	path      string
	line      int
	skipBlank bool
}

func newLineReader(r io.Reader, path string) *lineReader {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	return &lineReader{sc: sc, path: path}
}

// next returns the raw text of the next line.
func (lr *lineReader) next(section string) (string, error) {
	for lr.sc.Scan() {
		lr.line++
		text := lr.sc.Text()
		if lr.skipBlank && strings.TrimSpace(text) == "" {
			continue
		}
		return text, nil
	}
	if err := lr.sc.Err(); err != nil {
		return "", &domain.FormatError{Path: lr.path, Err: fmt.Errorf("read line %d: %w", lr.line+1, err)}
	}
	return "", &domain.TruncatedInputError{Path: lr.path, Section: section, Line: lr.line}
}

// fields returns the tokens of the next line, which must carry at least want.
func (lr *lineReader) fields(section string, want int) ([]string, error) {
	text, err := lr.next(section)
	if err != nil {
		return nil, err
	}
	f := strings.Fields(text)
	if len(f) < want {
		return nil, lr.parseErr(section, "", fmt.Errorf("expected at least %d fields, got %d", want, len(f)))
	}
	return f, nil
}

// count reads a line whose first token is a non-negative count. Anything
// after the first token is commentary.
func (lr *lineReader) count(section string) (int, error) {
	f, err := lr.fields(section, 1)
	if err != nil {
		return 0, err
	}
	n, err := lr.atoi(section, f[0])
	if err != nil {
		return 0, err
	}
	if n < 0 {
		return 0, lr.parseErr(section, f[0], errors.New("negative count"))
	}
	return n, nil
}

// exhausted reports whether the input holds no further non-blank lines. It
// consumes what it reads, so callers use it only when about to stop.
func (lr *lineReader) exhausted() bool {
	_, err := lr.next("")
	var trunc *domain.TruncatedInputError
	return errors.As(err, &trunc)
}

func (lr *lineReader) atoi(section, tok string) (int, error) {
	n, err := strconv.Atoi(tok)
	if err != nil {
		return 0, lr.parseErr(section, tok, errors.New("not an integer"))
	}
	return n, nil
}

// atof parses a real, accepting Fortran D exponents (1.5D+00).
func (lr *lineReader) atof(section, tok string) (float64, error) {
	s := tok
	if strings.ContainsAny(s, "dD") {
		s = strings.NewReplacer("d", "e", "D", "E").Replace(s)
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, lr.parseErr(section, tok, errors.New("not a number"))
	}
	return v, nil
}

// expectID checks that a record's leading id matches its 1-based position.
func (lr *lineReader) expectID(section, tok string, want int) error {
	id, err := lr.atoi(section, tok)
	if err != nil {
		return err
	}
	if id != want {
		return lr.parseErr(section, tok, fmt.Errorf("id out of sequence, want %d", want))
	}
	return nil
}

func (lr *lineReader) parseErr(section, tok string, err error) *domain.ParseError {
	return &domain.ParseError{Path: lr.path, Section: section, Line: lr.line, Token: tok, Err: err}
}
