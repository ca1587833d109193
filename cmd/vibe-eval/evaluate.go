package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/inodb/vibe-eval/internal/bed"
	"github.com/inodb/vibe-eval/internal/classify"
	"github.com/inodb/vibe-eval/internal/duckdb"
	"github.com/inodb/vibe-eval/internal/normalize"
	"github.com/inodb/vibe-eval/internal/output"
	"github.com/inodb/vibe-eval/internal/report"
	"github.com/inodb/vibe-eval/internal/truth"
	"github.com/inodb/vibe-eval/internal/variant"
	"github.com/inodb/vibe-eval/internal/vcf"
)

// settings holds the resolved and validated evaluate options.
type settings struct {
	Mode      normalize.Mode
	Coverage  string
	Classify  classify.Config
	DoAll     bool
	Bins      []variant.LengthRange
	Normalize normalize.Options
	StripChr  bool
	DB        string
}

// outputs holds the output paths of one evaluate invocation.
type outputs struct {
	Summary    string
	NoHeader   bool
	Correct    string
	Missing    string
	False      string
	Collisions string
}

func newEvaluateCmd(v *viper.Viper) *cobra.Command {
	var out outputs

	cmd := &cobra.Command{
		Use:   "evaluate [flags] <truth.bed> <calls.vcf>",
		Short: "Evaluate variant calls against truth intervals",
		Long: `Classify every truth interval as correct or missing and every call as correct,
false or colliding, then print one summary row per evaluated partition.

Truth intervals are BED (chrom, start, end, optional type and indel length).
Calls are VCF, plain or gzipped; use '-' to read either input from stdin.`,
		Example: `  vibe-eval evaluate --mode kevlar truth.bed kevlar.vcf
  vibe-eval evaluate --mode gatk --vartype INDEL --minlength 2 --maxlength 5 truth.bed gatk.vcf.gz
  vibe-eval evaluate --mode triodenovo --proband child --do-all --coverage 30x truth.bed td.vcf
  vibe-eval evaluate --mode kevlar --missing missing.txt --db results.duckdb truth.bed kevlar.vcf`,
		Args: usageArgs(cobra.ExactArgs(2)),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := loadSettings(v)
			if err != nil {
				return err
			}
			logger, err := newLogger(v.GetBool("verbose"))
			if err != nil {
				return fmt.Errorf("create logger: %w", err)
			}
			defer logger.Sync() //nolint:errcheck
			return runEvaluate(cmd, s, out, args[0], args[1], logger)
		},
	}

	f := cmd.Flags()
	f.String("mode", "", "Caller VCF convention: kevlar, gatk or triodenovo (required)")
	f.Int64("tolerance", classify.DefaultTolerance, "Positional slack in bases around each truth interval")
	f.String("coverage", "", "Coverage label copied into the summary")
	f.String("vartype", "", "Restrict evaluation to SNV or INDEL")
	f.Int("minlength", 0, "Minimum INDEL length (inclusive)")
	f.Int("maxlength", 0, "Maximum INDEL length (inclusive)")
	f.Bool("do-all", false, "Report every observed variant type and INDEL length bin")
	f.String("proband", "", "Proband sample name (gatk, triodenovo)")
	f.Float64("min-score", 0, "Override the mode's minimum call score")
	f.Bool("low-confidence", false, "Also accept GATK loConfDeNovo calls")
	f.Int("workers", 0, "Number of parallel workers (0 = all CPUs)")
	f.Bool("strip-chr", false, "Remove a leading \"chr\" from chromosome names in both inputs")
	f.String("db", "", "Append results to a DuckDB database")
	f.StringVarP(&out.Summary, "output", "o", "", "Summary output file (default: stdout)")
	f.BoolVar(&out.NoHeader, "no-header", false, "Omit the summary header line")
	f.StringVar(&out.Correct, "correct", "", "Write correct truth intervals to this file")
	f.StringVar(&out.Missing, "missing", "", "Write missing truth intervals to this file")
	f.StringVar(&out.False, "false", "", "Write false call intervals to this file")
	f.StringVar(&out.Collisions, "collisions", "", "Write colliding calls and their truth intervals to this file")

	for _, name := range []string{
		"mode", "tolerance", "coverage", "vartype", "minlength", "maxlength", "do-all",
		"proband", "min-score", "low-confidence", "workers", "strip-chr", "db",
	} {
		_ = v.BindPFlag(name, f.Lookup(name))
	}

	return cmd
}

// loadSettings resolves flags, config file and environment into validated
// settings. It opens no files.
func loadSettings(v *viper.Viper) (settings, error) {
	var s settings

	modeName := v.GetString("mode")
	if modeName == "" {
		return s, &usageError{fmt.Errorf("--mode is required (kevlar, gatk or triodenovo)")}
	}
	mode, err := normalize.ParseMode(modeName)
	if err != nil {
		return s, err
	}
	s.Mode = mode

	s.Classify = classify.DefaultConfig()
	s.Classify.Tolerance = v.GetInt64("tolerance")
	s.Classify.Workers = v.GetInt("workers")

	if vt := v.GetString("vartype"); vt != "" {
		s.Classify.VarType = variant.ParseType(vt)
		if s.Classify.VarType == variant.Unknown {
			return s, fmt.Errorf("unsupported variant type %q: must be SNV or INDEL", vt)
		}
	}
	if v.IsSet("minlength") {
		n := v.GetInt("minlength")
		s.Classify.Lengths.Min = &n
	}
	if v.IsSet("maxlength") {
		n := v.GetInt("maxlength")
		s.Classify.Lengths.Max = &n
	}
	if err := s.Classify.Validate(); err != nil {
		return s, err
	}

	s.Coverage = v.GetString("coverage")
	s.DoAll = v.GetBool("do-all")
	s.DB = v.GetString("db")
	s.StripChr = v.GetBool("strip-chr")

	s.Bins = report.DefaultLengthBins
	if raw := v.GetStringSlice("length-bins"); len(raw) > 0 {
		s.Bins, err = parseLengthBins(raw)
		if err != nil {
			return s, err
		}
	}

	s.Normalize = normalize.Options{
		Mode:               mode,
		Proband:            v.GetString("proband"),
		AllowLowConfidence: v.GetBool("low-confidence"),
		Workers:            s.Classify.Workers,
		StripChr:           s.StripChr,
	}
	if v.IsSet("min-score") {
		minScore := v.GetFloat64("min-score")
		s.Normalize.MinScore = &minScore
	}

	return s, nil
}

// parseLengthBins parses range labels such as "1-10" or ">=401". Entries may
// themselves be comma-separated.
func parseLengthBins(raw []string) ([]variant.LengthRange, error) {
	var bins []variant.LengthRange
	for _, entry := range raw {
		for _, part := range strings.Split(entry, ",") {
			if strings.TrimSpace(part) == "" {
				continue
			}
			r, err := variant.ParseLengthRange(part)
			if err != nil {
				return nil, fmt.Errorf("length-bins: %w", err)
			}
			if !r.IsSet() {
				return nil, fmt.Errorf("length-bins: %w: %q is unbounded", variant.ErrInvalidLengthRange, part)
			}
			bins = append(bins, r)
		}
	}
	return bins, nil
}

func runEvaluate(cmd *cobra.Command, s settings, out outputs, truthPath, callsPath string, logger *zap.Logger) error {
	norm, err := normalize.New(s.Normalize)
	if err != nil {
		return err
	}
	norm.SetLogger(logger)

	index, err := loadTruth(truthPath, s.StripChr, logger)
	if err != nil {
		return err
	}

	calls, err := loadCalls(norm, callsPath, logger)
	if err != nil {
		return err
	}

	warnDisjointChroms(index, calls, logger)

	agg, err := report.NewAggregator(index, report.Options{
		Caller:     s.Mode.Caller(),
		Coverage:   s.Coverage,
		Classify:   s.Classify,
		DoAll:      s.DoAll,
		LengthBins: s.Bins,
	})
	if err != nil {
		return err
	}
	agg.SetLogger(logger)

	ev, err := agg.Evaluate(cmd.Context(), calls)
	if err != nil {
		return fmt.Errorf("evaluate: %w", err)
	}

	if err := writeSummary(cmd.OutOrStdout(), out, ev.Rows); err != nil {
		return err
	}
	if err := writeLists(out, ev); err != nil {
		return err
	}

	if s.DB != "" {
		if err := exportResults(s, truthPath, callsPath, ev, logger); err != nil {
			return err
		}
	}

	if logger.Core().Enabled(zap.DebugLevel) {
		output.WriteSummary(cmd.ErrOrStderr(), ev.Rows)
	}
	return nil
}

func loadTruth(path string, stripChr bool, logger *zap.Logger) (*truth.Index, error) {
	r, err := bed.Open(path)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	truths, stats, err := truth.Load(r, truth.LoadOptions{Logger: logger, StripChr: stripChr})
	if err != nil {
		return nil, err
	}
	if stats.Malformed > 0 {
		logger.Info("skipped malformed truth intervals", zap.Int("count", stats.Malformed))
	}
	logger.Info("loaded truth set", zap.String("path", path), zap.Int("intervals", stats.Loaded))
	return truth.Build(truths), nil
}

func loadCalls(norm *normalize.Normalizer, path string, logger *zap.Logger) ([]*variant.Call, error) {
	parser, err := vcf.NewParser(path)
	if err != nil {
		return nil, err
	}
	defer parser.Close()

	calls, stats, err := norm.NormalizeAll(parser)
	if err != nil {
		return nil, err
	}
	logger.Info("loaded calls",
		zap.String("path", path),
		zap.Int("records", stats.Records),
		zap.Int("calls", stats.Calls),
		zap.Int("passing", stats.Passing))
	return calls, nil
}

// warnDisjointChroms flags inputs that share no chromosome name, which
// usually means one side uses "chr" prefixes and the other does not.
func warnDisjointChroms(index *truth.Index, calls []*variant.Call, logger *zap.Logger) {
	if index.Len() == 0 || len(calls) == 0 {
		return
	}
	for _, c := range calls {
		if len(index.IDsByChrom(c.Chrom)) > 0 {
			return
		}
	}
	logger.Warn("no call chromosome appears in the truth set; consider --strip-chr",
		zap.Strings("truth_chromosomes", index.Chromosomes()),
		zap.String("first_call_chromosome", calls[0].Chrom))
}

func writeSummary(stdout io.Writer, out outputs, rows []output.SummaryRow) error {
	w := stdout
	if out.Summary != "" {
		f, err := os.Create(out.Summary)
		if err != nil {
			return fmt.Errorf("create output file: %w", err)
		}
		defer f.Close()
		w = f
	}

	tw := output.NewTabWriter(w)
	if !out.NoHeader {
		if err := tw.WriteHeader(); err != nil {
			return fmt.Errorf("write header: %w", err)
		}
	}
	for _, row := range rows {
		if err := tw.Write(row); err != nil {
			return fmt.Errorf("write summary: %w", err)
		}
	}
	if err := tw.Flush(); err != nil {
		return fmt.Errorf("flush summary: %w", err)
	}
	return nil
}

func writeLists(out outputs, ev *report.Evaluation) error {
	var sinks report.Sinks
	var files []*os.File
	defer func() {
		for _, f := range files {
			f.Close()
		}
	}()

	open := func(path string) (io.Writer, error) {
		if path == "" {
			return nil, nil
		}
		f, err := os.Create(path)
		if err != nil {
			return nil, fmt.Errorf("create interval list: %w", err)
		}
		files = append(files, f)
		return f, nil
	}

	var err error
	if sinks.Correct, err = open(out.Correct); err != nil {
		return err
	}
	if sinks.Missing, err = open(out.Missing); err != nil {
		return err
	}
	if sinks.False, err = open(out.False); err != nil {
		return err
	}
	if sinks.Collisions, err = open(out.Collisions); err != nil {
		return err
	}

	if err := ev.WriteLists(sinks); err != nil {
		return fmt.Errorf("write interval lists: %w", err)
	}
	for _, f := range files {
		if err := f.Close(); err != nil {
			return fmt.Errorf("close interval list: %w", err)
		}
	}
	files = nil
	return nil
}

func exportResults(s settings, truthPath, callsPath string, ev *report.Evaluation, logger *zap.Logger) error {
	truthFile, err := duckdb.StatFile(truthPath)
	if err != nil {
		return fmt.Errorf("stat truth file: %w", err)
	}
	callsFile, err := duckdb.StatFile(callsPath)
	if err != nil {
		return fmt.Errorf("stat calls file: %w", err)
	}

	store, err := duckdb.Open(s.DB)
	if err != nil {
		return err
	}
	defer store.Close()

	run := duckdb.NewRun(s.Mode.Caller(), s.Coverage, s.Classify.Tolerance, truthFile, callsFile)
	if err := store.WriteEvaluation(run, ev); err != nil {
		return fmt.Errorf("export results: %w", err)
	}
	logger.Info("exported results", zap.String("db", s.DB), zap.String("run_id", run.ID))
	return nil
}
