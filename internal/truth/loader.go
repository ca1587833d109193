package truth

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/inodb/vibe-eval/internal/bed"
	"github.com/inodb/vibe-eval/internal/variant"
)

// RecordReader yields BED records; *bed.Reader implements it.
type RecordReader interface {
	Next() (*bed.Record, error)
}

// LoadStats counts the rows seen while loading a truth set.
type LoadStats struct {
	Loaded    int
	Malformed int
}

// LoadOptions configures Load.
type LoadOptions struct {
	Logger *zap.Logger
	// StripChr removes a leading "chr" from chromosome names.
	StripChr bool
}

// Load reads every record from r. Malformed rows are skipped and counted.
func Load(r RecordReader, opts LoadOptions) ([]variant.TruthVariant, LoadStats, error) {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	var truths []variant.TruthVariant
	var stats LoadStats
	for {
		rec, err := r.Next()
		if err != nil {
			var pe *bed.ParseError
			if errors.As(err, &pe) {
				stats.Malformed++
				logger.Debug("skipping malformed truth interval", zap.Int("line", pe.Line), zap.String("reason", pe.Message))
				continue
			}
			return nil, stats, fmt.Errorf("read truth interval: %w", err)
		}
		if rec == nil {
			break
		}

		chrom := rec.Chrom
		if opts.StripChr {
			chrom = variant.NormalizeChrom(chrom)
		}
		truths = append(truths, variant.TruthVariant{
			Interval: variant.Interval{Chrom: chrom, Start: rec.Start, End: rec.End},
			Type:     rec.Type,
			Length:   rec.Length,
		})
		stats.Loaded++
	}

	return truths, stats, nil
}
