package diff

import "post-sieve/core/record"

// Status is the change classification of a target record.
type Status int

const (
	// StatusNew means the id does not exist in the reference.
	StatusNew Status = iota + 1
	// StatusChanged means the id exists with different text.
	StatusChanged
	// StatusUnchanged means the id exists with identical text.
	StatusUnchanged
)

func (s Status) String() string {
	switch s {
	case StatusNew:
		return "new"
	case StatusChanged:
		return "changed"
	case StatusUnchanged:
		return "unchanged"
	default:
		return "unknown"
	}
}

// Change pairs a target record with its status.
type Change struct {
	Record record.Record
	Status Status
}

// Options controls which changes Filter emits.
type Options struct {
	// ModifiedOnly suppresses NEW records; only CHANGED ones are emitted.
	ModifiedOnly bool
}

// Tally counts statuses seen while iterating a target stream.
type Tally struct {
	// New counts records absent from the reference.
	New int `json:"new"`
	// Changed counts records whose text differs from the reference.
	Changed int `json:"changed"`
	// Unchanged counts records identical in text to the reference.
	Unchanged int `json:"unchanged"`
	// Emitted counts records passed on by Filter.
	Emitted int `json:"emitted"`
}

// Add records one status.
func (t *Tally) Add(s Status) {
	switch s {
	case StatusNew:
		t.New++
	case StatusChanged:
		t.Changed++
	case StatusUnchanged:
		t.Unchanged++
	}
}

// Total returns the number of target records seen.
func (t Tally) Total() int {
	return t.New + t.Changed + t.Unchanged
}
