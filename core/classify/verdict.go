package classify

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNoVerdict is returned when a response carries no recognizable verdict.
var ErrNoVerdict = errors.New("no verdict in response")

// Tokens are matched case-sensitively so prose like "mismatch" is not a verdict.
// Negative tokens are checked first: each of them also contains "MATCH".
var negativeTokens = []string{"DOES NOT MATCH", "NO_MATCH", "NO MATCH"}

const positiveToken = "MATCH"

// ParseVerdict derives a verdict from a free-text oracle response.
func ParseVerdict(raw string) (Verdict, error) {
	for _, tok := range negativeTokens {
		if strings.Contains(raw, tok) {
			return VerdictNoMatch, nil
		}
	}
	if strings.Contains(raw, positiveToken) {
		return VerdictMatch, nil
	}
	return VerdictUnknown, fmt.Errorf("%w: %q", ErrNoVerdict, excerpt(raw, 80))
}

// excerpt shortens s to at most n runes for logging.
func excerpt(s string, n int) string {
	runes := []rune(strings.TrimSpace(s))
	if len(runes) > n {
		return string(runes[:n]) + "..."
	}
	return string(runes)
}
