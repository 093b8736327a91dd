package domain

import "errors"

// ConfigError represents a configuration error
type ConfigError struct {
	Field string
	Err   error
}

func (e *ConfigError) Error() string {
	return "config error [" + e.Field + "]: " + e.Err.Error()
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// NewConfigError creates a ConfigError for field.
func NewConfigError(field string, err error) *ConfigError {
	return &ConfigError{Field: field, Err: err}
}

var (
	// ErrUnknownDenomination is returned when a value is not in the catalog.
	ErrUnknownDenomination = errors.New("unknown denomination")

	// ErrInvalidQuantity is returned when a quantity cannot be parsed or exceeds MaxQuantity.
	ErrInvalidQuantity = errors.New("invalid quantity")

	// ErrSequencerStopped is returned when an event is submitted after the sequencer exited.
	ErrSequencerStopped = errors.New("sequencer stopped")

	// ErrConfigNotFound is returned when configuration file is missing
	ErrConfigNotFound = errors.New("configuration not found")
)
