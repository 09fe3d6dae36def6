package oracle

import (
	"context"
	"strings"
)

// Echo is an offline oracle. It inspects the last line of the prompt, where
// the built-in template places the serialized record, and answers "MATCHES"
// when any keyword occurs in it (case-insensitive).
type Echo struct {
	keywords []string
}

// NewEcho creates an Echo oracle from a comma separated keyword list.
func NewEcho(keywords string) *Echo {
	var kw []string
	for _, k := range strings.Split(keywords, ",") {
		if k = strings.ToLower(strings.TrimSpace(k)); k != "" {
			kw = append(kw, k)
		}
	}
	return &Echo{keywords: kw}
}

// Invoke implements Client.
func (e *Echo) Invoke(ctx context.Context, prompt string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	last := prompt
	if i := strings.LastIndex(strings.TrimRight(prompt, "\n"), "\n"); i >= 0 {
		last = prompt[i+1:]
	}
	last = strings.ToLower(last)
	for _, k := range e.keywords {
		if strings.Contains(last, k) {
			return "MATCHES", nil
		}
	}
	return "DOES NOT MATCH", nil
}
