package record

import (
	"bufio"
	"bytes"
	"errors"
	"io"
	"iter"

	"go.uber.org/zap"
)

// Reader decodes a JSONL stream into records.
type Reader struct {
	name    string
	br      *bufio.Reader
	logger  *zap.Logger
	line    int
	skipped int
	err     error
}

// NewReader creates a Reader over r. name identifies the stream in warnings.
// A nil logger discards warnings.
func NewReader(r io.Reader, name string, logger *zap.Logger) *Reader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Reader{
		name:   name,
		br:     bufio.NewReaderSize(r, 64*1024),
		logger: logger,
	}
}

// All returns a single-pass sequence of the well-formed records in the stream.
// The sequence consumes the underlying stream; it is meant to be ranged once.
func (r *Reader) All() iter.Seq[Record] {
	return func(yield func(Record) bool) {
		for r.err == nil {
			raw, err := r.br.ReadBytes('\n')
			if len(raw) > 0 {
				r.line++
				if rec, ok := r.decode(raw); ok {
					if !yield(rec) {
						return
					}
				}
			}
			if err != nil {
				if !errors.Is(err, io.EOF) {
					r.err = err
				}
				return
			}
		}
	}
}

func (r *Reader) decode(raw []byte) (Record, bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return Record{}, false
	}
	rec, err := Decode(raw)
	if err != nil {
		r.skipped++
		r.logger.Warn("Skipping malformed record",
			zap.String("source", r.name),
			zap.Int("line", r.line),
			zap.String("snippet", snippet(raw)),
			zap.Error(err),
		)
		return Record{}, false
	}
	return rec, true
}

// Err returns the first read error of the underlying stream, if any.
// Malformed lines are not errors.
func (r *Reader) Err() error {
	return r.err
}

// Skipped returns how many non-blank lines were rejected so far.
func (r *Reader) Skipped() int {
	return r.skipped
}

func snippet(raw []byte) string {
	runes := []rune(string(raw))
	if len(runes) > 50 {
		return string(runes[:50]) + "..."
	}
	return string(raw)
}
