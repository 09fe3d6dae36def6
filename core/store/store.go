// Package store holds the reference snapshot the diff engine compares against.
//
// A Store is built once from a record stream and never mutated afterwards, so
// it can be shared by concurrent readers without locking.
package store

import (
	"io"
	"iter"

	"post-sieve/core/record"

	"go.uber.org/zap"
)

// Store maps record id to record.
type Store struct {
	records map[string]record.Record
}

// Load builds a store from seq. A later occurrence of an id replaces an
// earlier one.
func Load(seq iter.Seq[record.Record]) *Store {
	s := &Store{records: make(map[string]record.Record)}
	for rec := range seq {
		s.records[rec.ID] = rec
	}
	return s
}

// Empty returns a store with no records.
func Empty() *Store {
	return &Store{records: make(map[string]record.Record)}
}

// FromReader decodes a JSONL stream into a store and reports how many lines
// were skipped. Malformed lines are skipped with a warning; the returned error
// only reports an I/O failure of r.
func FromReader(r io.Reader, name string, logger *zap.Logger) (*Store, int, error) {
	rd := record.NewReader(r, name, logger)
	s := Load(rd.All())
	if err := rd.Err(); err != nil {
		return nil, rd.Skipped(), err
	}
	return s, rd.Skipped(), nil
}

// Get returns the record stored under id.
func (s *Store) Get(id string) (record.Record, bool) {
	rec, ok := s.records[id]
	return rec, ok
}

// Len returns the number of distinct ids.
func (s *Store) Len() int {
	return len(s.records)
}
