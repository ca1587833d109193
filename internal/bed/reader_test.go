package bed

import (
	"bytes"
	"compress/gzip"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inodb/vibe-eval/internal/variant"
)

func readAll(t *testing.T, r *Reader) ([]*Record, []*ParseError) {
	t.Helper()
	var recs []*Record
	var bad []*ParseError
	for {
		rec, err := r.Next()
		var pe *ParseError
		if errors.As(err, &pe) {
			bad = append(bad, pe)
			continue
		}
		require.NoError(t, err)
		if rec == nil {
			return recs, bad
		}
		recs = append(recs, rec)
	}
}

func TestReader_Columns(t *testing.T) {
	input := "track name=truth\n" +
		"# simulated variants\n" +
		"chr1\t100\t110\n" +
		"chr1\t200\t201\tSNV\n" +
		"chr2\t300\t305\tINDEL\t5\n" +
		"\n" +
		"chr3\t10\t20\tSV"

	recs, bad := readAll(t, NewReader(strings.NewReader(input)))
	assert.Empty(t, bad)
	require.Len(t, recs, 4)

	assert.Equal(t, Record{Chrom: "chr1", Start: 100, End: 110}, *recs[0])
	assert.Equal(t, variant.SNV, recs[1].Type)
	assert.Equal(t, variant.INDEL, recs[2].Type)
	assert.Equal(t, 5, recs[2].Length)
	assert.Equal(t, variant.Unknown, recs[3].Type)
}

func TestReader_MalformedRows(t *testing.T) {
	input := "chr1\t100\n" +
		"chr1\tx\t110\n" +
		"chr1\t120\t110\n" +
		"chr1\t-5\t110\n" +
		"chr1\t100\t110\n"

	recs, bad := readAll(t, NewReader(strings.NewReader(input)))
	assert.Len(t, recs, 1)
	require.Len(t, bad, 4)
	assert.Equal(t, 1, bad[0].Line)
	assert.Equal(t, 4, bad[3].Line)
	assert.Equal(t, "bed parse error at line 3: end 110 before start 120", bad[2].Error())
}

func TestReader_NonNumericFifthColumnKeepsInterval(t *testing.T) {
	input := "chr1\t100\t110\tSNV\tA>G\n" +
		"chr1\t200\t201\tsite1\t0\t+\n" +
		"chr1\t300\t302\tINDEL\t-2\n"

	recs, bad := readAll(t, NewReader(strings.NewReader(input)))
	assert.Empty(t, bad)
	require.Len(t, recs, 3)

	assert.Equal(t, Record{Chrom: "chr1", Start: 100, End: 110, Type: variant.SNV}, *recs[0])
	assert.Equal(t, Record{Chrom: "chr1", Start: 200, End: 201}, *recs[1])
	assert.Equal(t, variant.INDEL, recs[2].Type)
	assert.Equal(t, 0, recs[2].Length)
}

func TestOpen_Gzip(t *testing.T) {
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	_, err := zw.Write([]byte("chr1\t1\t2\nchr1\t5\t9\n"))
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	path := filepath.Join(t.TempDir(), "truth.bed.gz")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))

	r, err := Open(path)
	require.NoError(t, err)
	defer r.Close()

	recs, bad := readAll(t, r)
	assert.Empty(t, bad)
	assert.Len(t, recs, 2)
}

func TestOpen_EmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.bed")
	require.NoError(t, os.WriteFile(path, nil, 0o644))

	r, err := Open(path)
	require.NoError(t, err)
	defer r.Close()

	rec, err := r.Next()
	require.NoError(t, err)
	assert.Nil(t, rec)
}
