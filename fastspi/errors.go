package fastspi

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrInitialized is returned by a second call to Init.
	ErrInitialized = errors.New("fastspi: already initialized")
	// ErrNotInitialized is returned by transfers attempted before Init.
	ErrNotInitialized = errors.New("fastspi: not initialized")
	// ErrTimeout matches every *HardwareTimeout with errors.Is.
	ErrTimeout = errors.New("fastspi: hardware timeout")
)

// ConfigurationError reports a driver that cannot be brought up with the
// parameters it was built with. It is not recoverable at runtime.
type ConfigurationError struct {
	Field  string
	Value  int64
	Reason string
	Err    error
}

func (e *ConfigurationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("fastspi: invalid %s %d: %v", e.Field, e.Value, e.Err)
	}
	return fmt.Sprintf("fastspi: invalid %s %d: %s", e.Field, e.Value, e.Reason)
}

func (e *ConfigurationError) Unwrap() error { return e.Err }

// HardwareTimeout is returned when the transmit register does not drain
// within the configured deadline.
type HardwareTimeout struct {
	Op    string
	After time.Duration
}

func (e *HardwareTimeout) Error() string {
	return fmt.Sprintf("fastspi: %s did not complete after %s", e.Op, e.After)
}

func (e *HardwareTimeout) Is(target error) bool { return target == ErrTimeout }
