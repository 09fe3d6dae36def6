package classify

import (
	"errors"
	"sync"

	"post-sieve/core/record"
)

// ErrSink wraps a failure to append a match to the sink.
var ErrSink = errors.New("sink write failed")

// Verdict is the binary classification derived from an oracle response.
type Verdict int

const (
	// VerdictUnknown means no verdict was derived.
	VerdictUnknown Verdict = iota
	// VerdictMatch means the record satisfies the criteria.
	VerdictMatch
	// VerdictNoMatch means the record does not satisfy the criteria.
	VerdictNoMatch
)

func (v Verdict) String() string {
	switch v {
	case VerdictMatch:
		return "MATCH"
	case VerdictNoMatch:
		return "NO_MATCH"
	default:
		return "UNKNOWN"
	}
}

// Outcome is the terminal state of one classification task. Err is set for a
// failed task; otherwise Verdict holds the result.
type Outcome struct {
	Record  record.Record
	Verdict Verdict
	Raw     string
	Err     error
}

// Summary aggregates the outcomes of a run.
// Completed + Failed == Submitted once Run returns.
type Summary struct {
	Submitted int `json:"submitted"`
	Completed int `json:"completed"`
	Failed    int `json:"failed"`
	Matched   int `json:"matched"`
}

// Sink receives matched records. Implementations must persist the record
// before returning.
type Sink interface {
	Write(rec record.Record) error
}

// MemorySink collects matches in memory, in completion order.
type MemorySink struct {
	mu      sync.Mutex
	records []record.Record
}

// Write implements Sink.
func (m *MemorySink) Write(rec record.Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = append(m.records, rec)
	return nil
}

// Records returns a copy of the collected matches.
func (m *MemorySink) Records() []record.Record {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]record.Record, len(m.records))
	copy(out, m.records)
	return out
}
