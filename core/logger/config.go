package logger

// Config holds configuration for the logger.
type Config struct {
	// Level is the minimum enabled level (debug, info, warn, error).
	Level string `mapstructure:"level" default:"info" validate:"oneof=debug info warn error"`
	// Format is console, json, or auto (console on a terminal, json otherwise).
	Format string `mapstructure:"format" default:"auto" validate:"oneof=console json auto"`
}

const (
	FormatConsole = "console"
	FormatJSON    = "json"
	FormatAuto    = "auto"
)
