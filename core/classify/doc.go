// Package classify runs records through the oracle under bounded concurrency
// and streams the matches to a sink.
//
// # Execution Model
//
// The Dispatcher keeps exactly Config.Concurrency oracle calls in flight
// (errgroup with SetLimit). Submission happens in stream order and blocks while
// the pool is saturated. Outcomes are observed in completion order: a MATCH is
// written to the sink and flushed before the worker releases its slot, so an
// interrupted run leaves only complete lines behind.
//
// # Failure Isolation
//
// An oracle error, an empty or malformed response, or a response without a
// verdict fails only its own task. The failure is logged, counted and left out
// of the match set. The only run-level failure is a sink write error, which
// stops new submissions and is returned after in-flight tasks drain.
//
// # Verdicts
//
// Responses are free text, read case-sensitively. "DOES NOT MATCH", "NO_MATCH"
// or "NO MATCH" mean NO_MATCH; otherwise "MATCH" (e.g. "MATCHES") means MATCH.
// Lowercase prose such as "mismatch" carries no verdict.
//
// # Usage
//
//	d := classify.New(client, prompt.Default(), out, cfg.Dispatch, log)
//	summary, err := d.Run(ctx, records)
package classify
