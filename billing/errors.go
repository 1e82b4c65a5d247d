package billing

import "fmt"

// ConfigurationError means a required configuration singleton or one of its
// references is missing. The whole batch fails; the user fixes the
// configuration and retries.
type ConfigurationError struct {
	Msg string
}

func (e *ConfigurationError) Error() string { return e.Msg }

// ValidationError is an illegal operation on an identified record, surfaced
// to the caller. One bad record fails the whole batch.
type ValidationError struct {
	Record string
	Msg    string
}

func (e *ValidationError) Error() string {
	if e.Record == "" {
		return e.Msg
	}
	return fmt.Sprintf("%s: %s", e.Record, e.Msg)
}

// InvariantViolation is a programming error upstream, not user input. It
// aborts loudly instead of letting inconsistent state through.
type InvariantViolation struct {
	Msg string
}

func (e *InvariantViolation) Error() string { return "invariant violation: " + e.Msg }

func configErrorf(format string, args ...any) error {
	return &ConfigurationError{Msg: fmt.Sprintf(format, args...)}
}

func validationErrorf(record, format string, args ...any) error {
	return &ValidationError{Record: record, Msg: fmt.Sprintf(format, args...)}
}

func invariantf(format string, args ...any) error {
	return &InvariantViolation{Msg: fmt.Sprintf(format, args...)}
}
