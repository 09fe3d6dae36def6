package classify

import (
	"context"
	"fmt"
	"iter"
	"sync"
	"time"

	"post-sieve/core/oracle"
	"post-sieve/core/prompt"
	"post-sieve/core/record"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Dispatcher classifies records concurrently and writes matches to a sink.
type Dispatcher struct {
	oracle  oracle.Client
	prompts *prompt.Builder
	sink    Sink
	cfg     Config
	logger  *zap.Logger
}

// New creates a dispatcher. A nil prompts uses prompt.Default; a nil logger
// discards logs.
func New(client oracle.Client, prompts *prompt.Builder, sink Sink, cfg Config, logger *zap.Logger) *Dispatcher {
	if prompts == nil {
		prompts = prompt.Default()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Concurrency < 1 {
		cfg.Concurrency = 1
	}
	return &Dispatcher{
		oracle:  client,
		prompts: prompts,
		sink:    sink,
		cfg:     cfg,
		logger:  logger,
	}
}

// run holds the state shared by the workers of a single Run.
type run struct {
	mu      sync.Mutex
	summary Summary
	cache   *responseCache
}

// Run submits every record of seq to the pool and blocks until all submitted
// tasks reach a terminal state. The returned summary is complete even when an
// error is returned; the error is either a sink failure or ctx cancellation.
func (d *Dispatcher) Run(ctx context.Context, seq iter.Seq[record.Record]) (Summary, error) {
	r := &run{}
	if d.cfg.Dedupe {
		r.cache = newResponseCache()
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(d.cfg.Concurrency)

	for rec := range seq {
		if gctx.Err() != nil {
			break
		}
		r.mu.Lock()
		r.summary.Submitted++
		r.mu.Unlock()

		g.Go(func() error {
			return d.observe(r, d.classify(gctx, r, rec))
		})
	}

	err := g.Wait()
	if err == nil {
		err = ctx.Err()
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	return r.summary, err
}

func (d *Dispatcher) classify(ctx context.Context, r *run, rec record.Record) Outcome {
	out := Outcome{Record: rec}
	if err := ctx.Err(); err != nil {
		out.Err = err
		return out
	}

	text, err := d.prompts.Build(rec)
	if err != nil {
		out.Err = err
		return out
	}

	tasksInFlight.Inc()
	start := time.Now()
	raw, err := d.invoke(ctx, r, text)
	oracleDuration.Observe(time.Since(start).Seconds())
	tasksInFlight.Dec()

	if err != nil {
		out.Err = fmt.Errorf("oracle: %w", err)
		return out
	}
	out.Raw = raw

	out.Verdict, out.Err = ParseVerdict(raw)
	return out
}

func (d *Dispatcher) invoke(ctx context.Context, r *run, text string) (string, error) {
	if r.cache == nil {
		return d.oracle.Invoke(ctx, text)
	}
	raw, hit, err := r.cache.Do(text, func() (string, error) {
		return d.oracle.Invoke(ctx, text)
	})
	if hit {
		cacheHits.Inc()
	}
	return raw, err
}

// observe records a terminal outcome. Matches are written to the sink while
// the run lock is held, so sink writes never interleave.
func (d *Dispatcher) observe(r *run, out Outcome) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var sinkErr error
	if out.Err == nil && out.Verdict == VerdictMatch {
		if err := d.sink.Write(out.Record); err != nil {
			sinkErr = fmt.Errorf("%w: %v", ErrSink, err)
			out.Err = sinkErr
		}
	}

	if out.Err != nil {
		r.summary.Failed++
		tasksTotal.WithLabelValues("failed").Inc()
		fields := []zap.Field{zap.String("id", out.Record.ID), zap.Error(out.Err)}
		if out.Raw != "" {
			fields = append(fields, zap.String("response", excerpt(out.Raw, 200)))
		}
		d.logger.Error("Classification failed", fields...)
	} else {
		r.summary.Completed++
		if out.Verdict == VerdictMatch {
			r.summary.Matched++
			tasksTotal.WithLabelValues("matched").Inc()
			d.logger.Info("Matching post",
				zap.String("id", out.Record.ID),
				zap.String("user", out.Record.UserOr("Unknown")),
				zap.String("text", out.Record.Excerpt(200)),
			)
		} else {
			tasksTotal.WithLabelValues("unmatched").Inc()
			d.logger.Debug("Post did not match", zap.String("id", out.Record.ID))
		}
	}

	if every := d.cfg.ProgressEvery; every > 0 {
		if done := r.summary.Completed + r.summary.Failed; done%every == 0 {
			d.logger.Info("Classification progress",
				zap.Int("processed", done),
				zap.Int("submitted", r.summary.Submitted),
				zap.Int("matched", r.summary.Matched),
				zap.Int("failed", r.summary.Failed),
			)
		}
	}

	return sinkErr
}
