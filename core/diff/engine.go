package diff

import (
	"iter"

	"post-sieve/core/record"
	"post-sieve/core/store"
)

// Engine evaluates target records against a reference store.
type Engine struct {
	ref  *store.Store
	opts Options
}

// New creates an engine over ref. A nil ref behaves like an empty snapshot.
func New(ref *store.Store, opts Options) *Engine {
	if ref == nil {
		ref = store.Empty()
	}
	return &Engine{ref: ref, opts: opts}
}

// Compare returns the status of rec relative to the reference.
func (e *Engine) Compare(rec record.Record) Status {
	prev, ok := e.ref.Get(rec.ID)
	if !ok {
		return StatusNew
	}
	if prev.Text != rec.Text {
		return StatusChanged
	}
	return StatusUnchanged
}

// Changes yields every target record together with its status, in stream order.
func (e *Engine) Changes(target iter.Seq[record.Record]) iter.Seq[Change] {
	return func(yield func(Change) bool) {
		for rec := range target {
			if !yield(Change{Record: rec, Status: e.Compare(rec)}) {
				return
			}
		}
	}
}

// Filter yields the target records that should be passed downstream.
// When tally is non-nil it is updated as the sequence is consumed.
func (e *Engine) Filter(target iter.Seq[record.Record], tally *Tally) iter.Seq[record.Record] {
	return func(yield func(record.Record) bool) {
		for ch := range e.Changes(target) {
			if tally != nil {
				tally.Add(ch.Status)
			}
			if !e.emits(ch.Status) {
				continue
			}
			if tally != nil {
				tally.Emitted++
			}
			if !yield(ch.Record) {
				return
			}
		}
	}
}

func (e *Engine) emits(s Status) bool {
	switch s {
	case StatusChanged:
		return true
	case StatusNew:
		return !e.opts.ModifiedOnly
	default:
		return false
	}
}
