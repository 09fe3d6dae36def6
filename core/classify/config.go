package classify

// Config holds configuration for the classification dispatcher.
type Config struct {
	// Concurrency is the number of oracle calls kept in flight.
	Concurrency int `mapstructure:"concurrency" default:"4" validate:"gte=1"`
	// Dedupe shares one oracle call between identical prompts within a run.
	Dedupe bool `mapstructure:"dedupe" default:"true"`
	// DurableWrites syncs the output file after every match.
	DurableWrites bool `mapstructure:"durable_writes" default:"true"`
	// ProgressEvery logs progress after this many finished tasks (0 disables).
	ProgressEvery int `mapstructure:"progress_every" default:"25" validate:"gte=0"`
}
