package codegen

import (
	"errors"
	"fmt"
)

// ErrNoOutputRoot is the configuration error raised when a round starts without an
// output directory. It aborts the whole round.
var ErrNoOutputRoot = &ConfigurationError{Reason: "no output directory configured (set output.dir)"}

var (
	ErrUnknownPrimitive = errors.New("unknown primitive kind")
	ErrInvalidTypeName  = errors.New("invalid type name")
	ErrInvalidShape     = errors.New("invalid type shape")
)

// ConfigurationError makes a whole processing round impossible.
type ConfigurationError struct {
	Reason string
}

func (e *ConfigurationError) Error() string {
	return "configuration error: " + e.Reason
}

// ElementShapeError reports a target that cannot get a builder. It is fatal for that
// target only.
type ElementShapeError struct {
	Target string
	Reason string
	Err    error
}

func (e *ElementShapeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Target, e.Reason, e.Err)
	}

	return fmt.Sprintf("%s: %s", e.Target, e.Reason)
}

func (e *ElementShapeError) Unwrap() error {
	return e.Err
}
