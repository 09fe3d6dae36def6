package pipeline

import (
	"context"
	"errors"
	"io"
	"os"

	"post-sieve/core/classify"
	"post-sieve/core/diff"
	"post-sieve/core/record"
	"post-sieve/core/source"
)

// Files runs the pipeline between input locations and local output files.
// Every input is checked before any work starts.
type Files struct {
	service *Service
	opener  *source.Opener
	durable bool
	stdout  io.Writer
}

// NewFiles wraps service. Matches go to stdout when no output path is given.
func NewFiles(service *Service, opener *source.Opener, durable bool) *Files {
	return &Files{
		service: service,
		opener:  opener,
		durable: durable,
		stdout:  os.Stdout,
	}
}

// DiffArgs are the inputs of a diff-only run.
type DiffArgs struct {
	Reference    string
	Target       string
	Output       string
	ModifiedOnly bool
}

// ClassifyArgs are the inputs of a classify-only run.
type ClassifyArgs struct {
	Input   string
	Output  string
	Workers int
}

// RunArgs are the inputs of a diff followed by classification.
type RunArgs struct {
	Reference    string
	Target       string
	Output       string
	DiffOutput   string
	ModifiedOnly bool
	Workers      int
}

// Diff runs a diff between two inputs.
func (f *Files) Diff(ctx context.Context, args DiffArgs) (DiffReport, error) {
	if err := f.opener.Check(ctx, args.Reference, args.Target); err != nil {
		return DiffReport{}, err
	}
	ref, target, closeInputs, err := f.openPair(ctx, args.Reference, args.Target)
	if err != nil {
		return DiffReport{}, err
	}
	defer closeInputs()

	out, err := f.output(args.Output)
	if err != nil {
		return DiffReport{}, err
	}

	report, err := f.service.Diff(ctx, ref, target, diff.Options{ModifiedOnly: args.ModifiedOnly}, out)
	return report, errors.Join(err, out.Close())
}

// Classify classifies every record of an input.
func (f *Files) Classify(ctx context.Context, args ClassifyArgs) (classify.Summary, error) {
	if err := f.opener.Check(ctx, args.Input); err != nil {
		return classify.Summary{}, err
	}
	rc, err := f.opener.Open(ctx, args.Input)
	if err != nil {
		return classify.Summary{}, err
	}
	defer rc.Close()

	out, err := f.output(args.Output)
	if err != nil {
		return classify.Summary{}, err
	}

	summary, err := f.service.Classify(ctx, Stream{Name: args.Input, Reader: rc}, out, args.Workers)
	return summary, errors.Join(err, out.Close())
}

// Run diffs two inputs and classifies the result.
func (f *Files) Run(ctx context.Context, args RunArgs) (RunReport, error) {
	if err := f.opener.Check(ctx, args.Reference, args.Target); err != nil {
		return RunReport{}, err
	}
	ref, target, closeInputs, err := f.openPair(ctx, args.Reference, args.Target)
	if err != nil {
		return RunReport{}, err
	}
	defer closeInputs()

	out, err := f.output(args.Output)
	if err != nil {
		return RunReport{}, err
	}

	var diffOut *record.Writer
	var diffSink classify.Sink
	if args.DiffOutput != "" {
		if diffOut, err = f.output(args.DiffOutput); err != nil {
			return RunReport{}, errors.Join(err, out.Close())
		}
		diffSink = diffOut
	}

	report, err := f.service.Run(ctx, ref, target, diff.Options{ModifiedOnly: args.ModifiedOnly}, out, diffSink, args.Workers)
	err = errors.Join(err, out.Close())
	if diffOut != nil {
		err = errors.Join(err, diffOut.Close())
	}
	return report, err
}

func (f *Files) openPair(ctx context.Context, refURI, targetURI string) (Stream, Stream, func(), error) {
	ref, err := f.opener.Open(ctx, refURI)
	if err != nil {
		return Stream{}, Stream{}, nil, err
	}
	target, err := f.opener.Open(ctx, targetURI)
	if err != nil {
		ref.Close()
		return Stream{}, Stream{}, nil, err
	}
	closeAll := func() {
		ref.Close()
		target.Close()
	}
	return Stream{Name: refURI, Reader: ref}, Stream{Name: targetURI, Reader: target}, closeAll, nil
}

func (f *Files) output(path string) (*record.Writer, error) {
	if path == "" {
		return record.NewWriter(stdoutWriter{f.stdout}, false), nil
	}
	file, err := source.Create(path)
	if err != nil {
		return nil, err
	}
	return record.NewWriter(file, f.durable), nil
}

// stdoutWriter hides Close and Sync of the wrapped writer.
type stdoutWriter struct {
	io.Writer
}
