// Package pipeline composes the record store, the diff engine and the
// classification dispatcher into the three run modes.
//
// # Modes
//
//   - Diff: write the NEW and CHANGED records of a target snapshot.
//   - Classify: run every record of a stream through the oracle.
//   - Run: diff, then classify the emitted records as they are produced.
//
// Service works on readers and sinks; Files adds input resolution (local paths
// and s3:// objects) and output files for the CLI; Handler exposes the same
// operations over HTTP.
//
// Every run gets its own run_id, and the final counts are logged even when the
// run fails.
package pipeline
