// Package oracle adapts external reasoning services to a single call:
// send a prompt, receive free text.
//
// # Providers
//
//   - anthropic: Messages API over REST, with optional extended thinking.
//     The final content block must be text; anything else is reported as
//     ErrResponseInvalid.
//   - openai: any OpenAI-compatible chat completions endpoint (go-openai).
//   - echo: offline provider for dry runs. It answers "MATCHES" when the last
//     line of the prompt contains one of the configured keywords.
//
// Requests can be throttled with Config.RequestsPerMinute (x/time/rate).
// The package never retries; callers that need resilience wrap the Client.
//
// # Usage
//
//	client, err := oracle.New(cfg.Oracle, log)
//	answer, err := client.Invoke(ctx, "Is this post about Go?")
package oracle
