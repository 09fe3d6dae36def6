package record

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

// ErrMalformed is returned when a serialized record cannot be decoded or
// fails validation.
var ErrMalformed = errors.New("malformed record")

var validate = validator.New(validator.WithRequiredStructEnabled())

// Record is a single post. Identity is ID; change detection only looks at Text.
type Record struct {
	// ID uniquely identifies the record within a stream.
	ID string `json:"id" validate:"required"`
	// User is the author handle, if known.
	User *string `json:"user"`
	// Timestamp is the source timestamp, kept verbatim.
	Timestamp *string `json:"timestamp"`
	// Text is the post body.
	Text string `json:"text"`
}

// Validate checks the required fields of the record.
func (r Record) Validate() error {
	if err := validate.Struct(r); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return nil
}

// UserOr returns the author or fallback when the author is unknown.
func (r Record) UserOr(fallback string) string {
	if r.User == nil || *r.User == "" {
		return fallback
	}
	return *r.User
}

// Excerpt returns at most n runes of the text.
func (r Record) Excerpt(n int) string {
	runes := []rune(r.Text)
	if len(runes) <= n {
		return r.Text
	}
	return string(runes[:n]) + "..."
}

// Decode parses a single serialized record and validates it.
func Decode(data []byte) (Record, error) {
	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return Record{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if err := rec.Validate(); err != nil {
		return Record{}, err
	}
	return rec, nil
}

// Encode serializes a record without a trailing newline. Text is written
// verbatim: &, < and > are not escaped.
func Encode(rec Record) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(rec); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}
