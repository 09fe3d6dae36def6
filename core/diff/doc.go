// Package diff compares a target record stream against a reference snapshot.
//
// Every target record gets exactly one Status:
//
//   - StatusNew: the id is absent from the reference.
//   - StatusChanged: the id is present and the text differs.
//   - StatusUnchanged: the id is present and the text is identical.
//
// Only Text participates in the comparison. Author and timestamp changes do
// not make a record CHANGED.
//
// # Filtering
//
// Engine.Filter yields the records worth re-classifying: NEW and CHANGED,
// or only CHANGED when Options.ModifiedOnly is set. The sequence is lazy and
// single-pass; nothing is buffered, and the reference store is never mutated,
// so duplicate ids in the target are each evaluated against the same snapshot.
//
// # Usage
//
//	ref, _, _ := store.FromReader(refFile, "reference.jsonl", log)
//	engine := diff.New(ref, diff.Options{ModifiedOnly: false})
//	var tally diff.Tally
//	for rec := range engine.Filter(target.All(), &tally) {
//	    out.Write(rec)
//	}
package diff
