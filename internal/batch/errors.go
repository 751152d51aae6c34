package batch

import (
	"errors"
	"fmt"
)

var (
	// ErrConfiguration matches every *ConfigurationError.
	ErrConfiguration = errors.New("invalid batch configuration")
	// ErrRemoteCall matches every *RemoteCallError.
	ErrRemoteCall = errors.New("remote call failed")
	// ErrResultCountMismatch is wrapped when a call returns a different number of results than it was given.
	ErrResultCountMismatch = errors.New("result count does not match batch size")
)

// ConfigurationError reports a limit below 1.
type ConfigurationError struct {
	Field string
	Value int
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("%s must be >= 1, got %d", e.Field, e.Value)
}

func (e *ConfigurationError) Is(target error) bool {
	return target == ErrConfiguration
}

// RemoteCallError reports the first batch whose call failed. Translated is the number
// of input items whose results were merged before that batch, so a caller can resume
// from items[Translated:].
type RemoteCallError struct {
	BatchIndex int
	Translated int
	Err        error
}

func (e *RemoteCallError) Error() string {
	return fmt.Sprintf("batch %d failed after %d items: %v", e.BatchIndex, e.Translated, e.Err)
}

func (e *RemoteCallError) Unwrap() error {
	return e.Err
}

func (e *RemoteCallError) Is(target error) bool {
	return target == ErrRemoteCall
}
