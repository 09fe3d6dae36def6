// Package record defines the Record type shared by every stage of the pipeline
// and its line-delimited JSON (JSONL) encoding.
//
// # Reading
//
// Reader walks a JSONL stream lazily. Blank lines are ignored, and a line that
// cannot be decoded (bad JSON, missing or empty id) is skipped with a warning
// on the supplied zap logger. One bad line never invalidates the rest of the
// stream; only an I/O failure of the underlying reader stops iteration, and it
// is reported through Reader.Err.
//
// # Writing
//
// Writer appends one record per line and flushes after every record, so a
// reader of the output never observes a partially written entry.
//
// # Usage
//
//	rd := record.NewReader(f, "posts.jsonl", log)
//	for rec := range rd.All() {
//	    fmt.Println(rec.ID)
//	}
//	if err := rd.Err(); err != nil {
//	    return err
//	}
package record
