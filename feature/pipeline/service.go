package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"iter"

	"post-sieve/core/classify"
	"post-sieve/core/diff"
	"post-sieve/core/logger"
	"post-sieve/core/oracle"
	"post-sieve/core/prompt"
	"post-sieve/core/record"
	"post-sieve/core/store"

	"go.uber.org/zap"
)

// Stream is a named JSONL input.
type Stream struct {
	Name   string
	Reader io.Reader
}

// DiffReport summarizes a diff pass.
type DiffReport struct {
	// Reference is the number of distinct ids in the reference snapshot.
	Reference int `json:"reference"`
	diff.Tally
	// Skipped counts malformed lines across both inputs.
	Skipped int `json:"skipped"`
}

// RunReport summarizes a diff followed by classification.
type RunReport struct {
	Diff     DiffReport       `json:"diff"`
	Classify classify.Summary `json:"classify"`
}

// Service composes the record store, the diff engine and the dispatcher.
type Service struct {
	oracle  oracle.Client
	prompts *prompt.Builder
	cfg     classify.Config
	logger  *zap.Logger
}

// NewService creates a pipeline service. oracle may be nil when only diffs run.
func NewService(client oracle.Client, prompts *prompt.Builder, cfg classify.Config, logger *zap.Logger) *Service {
	if prompts == nil {
		prompts = prompt.Default()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		oracle:  client,
		prompts: prompts,
		cfg:     cfg,
		logger:  logger,
	}
}

// Diff writes the NEW and CHANGED records of target to out. The report covers
// every target line consumed, including when the pass stops early.
func (s *Service) Diff(ctx context.Context, reference, target Stream, opts diff.Options, out classify.Sink) (report DiffReport, err error) {
	l, _ := logger.WithRunID(s.logger)

	ref, report, err := s.loadReference(reference, l)
	if err != nil {
		return report, err
	}

	rd := record.NewReader(target.Reader, target.Name, l)
	defer func() {
		report.Skipped += rd.Skipped()
		logDiff(l, report, opts)
	}()

	filtered := diff.New(ref, opts).Filter(rd.All(), &report.Tally)
	for rec := range filtered {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		if err := out.Write(rec); err != nil {
			return report, fmt.Errorf("%w: %v", classify.ErrSink, err)
		}
	}
	if err := rd.Err(); err != nil {
		return report, fmt.Errorf("read %s: %w", target.Name, err)
	}
	return report, nil
}

// Classify runs every record of in through the oracle and writes matches to out.
// workers overrides the configured concurrency when > 0.
func (s *Service) Classify(ctx context.Context, in Stream, out classify.Sink, workers int) (classify.Summary, error) {
	if s.oracle == nil {
		return classify.Summary{}, errors.New("no oracle configured")
	}
	l, _ := logger.WithRunID(s.logger)

	rd := record.NewReader(in.Reader, in.Name, l)
	summary, err := s.dispatcher(out, workers, l).Run(ctx, rd.All())
	if rerr := rd.Err(); rerr != nil {
		err = errors.Join(err, fmt.Errorf("read %s: %w", in.Name, rerr))
	}

	logSummary(l, summary, err)
	return summary, err
}

// Run diffs target against reference and classifies the emitted records as
// they are produced. When diffOut is non-nil every emitted record is also
// written there before classification.
func (s *Service) Run(ctx context.Context, reference, target Stream, opts diff.Options, out, diffOut classify.Sink, workers int) (RunReport, error) {
	var report RunReport
	if s.oracle == nil {
		return report, errors.New("no oracle configured")
	}
	l, _ := logger.WithRunID(s.logger)

	ref, dr, err := s.loadReference(reference, l)
	report.Diff = dr
	if err != nil {
		return report, err
	}

	rd := record.NewReader(target.Reader, target.Name, l)
	filtered := diff.New(ref, opts).Filter(rd.All(), &report.Diff.Tally)

	var teeErr error
	if diffOut != nil {
		filtered = tee(filtered, diffOut, &teeErr)
	}

	summary, err := s.dispatcher(out, workers, l).Run(ctx, filtered)
	report.Classify = summary
	report.Diff.Skipped += rd.Skipped()

	if teeErr != nil {
		err = errors.Join(err, teeErr)
	}
	if rerr := rd.Err(); rerr != nil {
		err = errors.Join(err, fmt.Errorf("read %s: %w", target.Name, rerr))
	}

	logDiff(l, report.Diff, opts)
	logSummary(l, summary, err)
	return report, err
}

func (s *Service) dispatcher(out classify.Sink, workers int, l *zap.Logger) *classify.Dispatcher {
	cfg := s.cfg
	if workers > 0 {
		cfg.Concurrency = workers
	}
	return classify.New(s.oracle, s.prompts, out, cfg, l)
}

func (s *Service) loadReference(in Stream, l *zap.Logger) (*store.Store, DiffReport, error) {
	var report DiffReport

	ref, skipped, err := store.FromReader(in.Reader, in.Name, l)
	report.Skipped = skipped
	if err != nil {
		return nil, report, fmt.Errorf("read %s: %w", in.Name, err)
	}
	report.Reference = ref.Len()

	l.Info("Loaded reference snapshot",
		zap.String("source", in.Name),
		zap.Int("records", ref.Len()),
		zap.Int("skipped", skipped),
	)
	return ref, report, nil
}

// tee writes every record to sink before passing it on. The first write
// failure is stored in errp and ends the sequence.
func tee(seq iter.Seq[record.Record], sink classify.Sink, errp *error) iter.Seq[record.Record] {
	return func(yield func(record.Record) bool) {
		for rec := range seq {
			if err := sink.Write(rec); err != nil {
				*errp = fmt.Errorf("diff output: %w: %v", classify.ErrSink, err)
				return
			}
			if !yield(rec) {
				return
			}
		}
	}
}

func logDiff(l *zap.Logger, r DiffReport, opts diff.Options) {
	l.Info("Diff finished",
		zap.Int("reference", r.Reference),
		zap.Int("new", r.New),
		zap.Int("changed", r.Changed),
		zap.Int("unchanged", r.Unchanged),
		zap.Int("emitted", r.Emitted),
		zap.Int("skipped", r.Skipped),
		zap.Bool("modified_only", opts.ModifiedOnly),
	)
}

func logSummary(l *zap.Logger, s classify.Summary, err error) {
	fields := []zap.Field{
		zap.Int("submitted", s.Submitted),
		zap.Int("completed", s.Completed),
		zap.Int("failed", s.Failed),
		zap.Int("matched", s.Matched),
	}
	if err != nil {
		l.Error("Classification aborted", append(fields, zap.Error(err))...)
		return
	}
	l.Info("Classification finished", fields...)
}
