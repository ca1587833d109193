// Package bed reads truth-variant intervals from BED files.
package bed

import (
	"bufio"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/inodb/vibe-eval/internal/variant"
)

// Record is one BED row: a 0-based half-open interval with optional
// variant-type (4th column) and indel length (5th column) annotations.
type Record struct {
	Chrom  string
	Start  int64
	End    int64
	Type   variant.Type
	Length int
}

// Reader reads records from a BED file.
type Reader struct {
	reader     *bufio.Reader
	file       *os.File
	gzipReader *gzip.Reader
	lineNumber int
}

// Open opens a plain or gzipped BED file. Use "-" for stdin.
func Open(path string) (*Reader, error) {
	if path == "-" {
		return NewReader(os.Stdin), nil
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open bed file: %w", err)
	}

	r := &Reader{file: file}
	br := bufio.NewReader(file)

	// Check for gzip magic number (0x1f, 0x8b)
	magic, err := br.Peek(2)
	if err == nil && magic[0] == 0x1f && magic[1] == 0x8b {
		r.gzipReader, err = gzip.NewReader(br)
		if err != nil {
			file.Close()
			return nil, fmt.Errorf("create gzip reader: %w", err)
		}
		r.reader = bufio.NewReader(r.gzipReader)
	} else {
		r.reader = br
	}

	return r, nil
}

// NewReader creates a reader over uncompressed BED content.
func NewReader(rd io.Reader) *Reader {
	return &Reader{reader: bufio.NewReader(rd)}
}

// Next returns the next record, or nil, nil at end of input.
// A *ParseError reports a malformed row; reading may continue after it.
func (r *Reader) Next() (*Record, error) {
	for {
		line, err := r.reader.ReadString('\n')
		if err != nil && err != io.EOF {
			return nil, fmt.Errorf("read bed line: %w", err)
		}
		if err == io.EOF && line == "" {
			return nil, nil
		}
		r.lineNumber++

		line = strings.TrimRight(line, "\r\n")
		if skipLine(line) {
			if err == io.EOF {
				return nil, nil
			}
			continue
		}
		return r.parseLine(line)
	}
}

func skipLine(line string) bool {
	return strings.TrimSpace(line) == "" ||
		strings.HasPrefix(line, "#") ||
		strings.HasPrefix(line, "track") ||
		strings.HasPrefix(line, "browser")
}

func (r *Reader) parseLine(line string) (*Record, error) {
	fields := strings.Fields(line)
	if len(fields) < 3 {
		return nil, r.errorf("expected at least 3 columns, found %d", len(fields))
	}

	start, err := strconv.ParseInt(fields[1], 10, 64)
	if err != nil || start < 0 {
		return nil, r.errorf("invalid start: %s", fields[1])
	}
	end, err := strconv.ParseInt(fields[2], 10, 64)
	if err != nil {
		return nil, r.errorf("invalid end: %s", fields[2])
	}
	if end < start {
		return nil, r.errorf("end %d before start %d", end, start)
	}

	rec := &Record{Chrom: fields[0], Start: start, End: end}
	if len(fields) > 3 {
		rec.Type = variant.ParseType(fields[3])
	}
	// Column 5 is only an indel length when it is a non-negative integer;
	// other content (names, scores, alleles) leaves Length unset.
	if len(fields) > 4 {
		if n, err := strconv.Atoi(fields[4]); err == nil && n >= 0 {
			rec.Length = n
		}
	}
	return rec, nil
}

func (r *Reader) errorf(format string, args ...any) error {
	return &ParseError{Line: r.lineNumber, Message: fmt.Sprintf(format, args...)}
}

// LineNumber returns the current line number being processed.
func (r *Reader) LineNumber() int {
	return r.lineNumber
}

// Close closes the reader and underlying file.
func (r *Reader) Close() error {
	if r.gzipReader != nil {
		r.gzipReader.Close()
	}
	if r.file != nil {
		return r.file.Close()
	}
	return nil
}

// ParseError represents an error during BED parsing with line context.
type ParseError struct {
	Line    int
	Message string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("bed parse error at line %d: %s", e.Line, e.Message)
}
