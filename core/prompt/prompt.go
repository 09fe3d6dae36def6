// Package prompt renders the fixed instruction sent to the oracle for every
// record. The template receives the record serialized as a single JSON line.
package prompt

import (
	"fmt"
	"os"
	"strings"
	"text/template"

	"post-sieve/core/record"
)

// DefaultTemplate asks the oracle to screen a hiring-thread post. The record
// JSON is the last line so offline oracles can find it.
const DefaultTemplate = `I'm looking for a job. Below, I'll give you a json object representing a post from the latest Hacker
news hiring thread. Read the post and respond with whether it meets the following criteria:
* The role should be primarily ML engineering. Designing, implementing, training and/or finetuning
  models, gathering data, evaluating models, that sort of thing. Use your best judgement when
  reading the post. Do not include any "developer relations" roles. The following titles are likely
  to be what I'm looking for, but the exact title is not important:
   * ML Engineer
   * Research Engineer
   * Software Engineer, ML
   * Member of Technical Staff
   * AI Engineer
* Location should be either NYC or remote and compatible with NYC working hours.
Err toward including posts when it's ambiguous. Respond with either "MATCHES" or "DOES NOT MATCH".
Include no other text in your response. Here's the job post:
{{.Record}}`

// Data is the template input.
type Data struct {
	// Record is the serialized record, one JSON line.
	Record string
	// ID is the record id.
	ID string
}

// Builder renders prompts from a parsed template. Safe for concurrent use.
type Builder struct {
	tmpl *template.Template
}

// New parses text as a template.
func New(text string) (*Builder, error) {
	tmpl, err := template.New("prompt").Option("missingkey=error").Parse(text)
	if err != nil {
		return nil, fmt.Errorf("parse prompt template: %w", err)
	}
	return &Builder{tmpl: tmpl}, nil
}

// Default returns a Builder for DefaultTemplate.
func Default() *Builder {
	b, err := New(DefaultTemplate)
	if err != nil {
		panic(err)
	}
	return b
}

// Load returns the Builder for the template at path, or Default when path is empty.
func Load(path string) (*Builder, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read prompt template: %w", err)
	}
	return New(strings.TrimSpace(string(data)))
}

// Build renders the prompt for rec.
func (b *Builder) Build(rec record.Record) (string, error) {
	encoded, err := record.Encode(rec)
	if err != nil {
		return "", fmt.Errorf("encode record %s: %w", rec.ID, err)
	}
	var sb strings.Builder
	if err := b.tmpl.Execute(&sb, Data{Record: string(encoded), ID: rec.ID}); err != nil {
		return "", fmt.Errorf("render prompt for %s: %w", rec.ID, err)
	}
	return sb.String(), nil
}
