// Package logger provides a structured logging facility based on Zap.
//
// Level debug selects the development configuration, every other level the
// production one. Format auto writes colored console output when stderr is a
// terminal and JSON otherwise, so piped runs stay machine readable.
//
// # Correlation
//
// WithRunID tags every line of one pipeline run with a run_id. WithRayID pulls
// the request id set by the rayid middleware out of a Fiber context.
//
// # Usage
//
//	log, _ := logger.New(&cfg.Log)
//	runLog, runID := logger.WithRunID(log)
//	runLog.Info("Run started")
//
//	// In a request handler:
//	l := logger.WithRayID(log, c)
//	l.Error("Handler failed", zap.Error(err))
package logger
