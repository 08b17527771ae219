// Package builder holds the runtime support used by generated builders.
package builder

import (
	"fmt"
	"slices"
	"strings"
)

// ValidationError is returned by a generated Build method when required fields
// were never set. Fields lists them in declaration order.
type ValidationError struct {
	Type   string
	Fields []string
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 1 {
		return fmt.Sprintf("%s: required field %s is not set", e.Type, e.Fields[0])
	}

	return fmt.Sprintf("%s: required fields %s are not set", e.Type, strings.Join(e.Fields, ", "))
}

// Has reports whether field is one of the missing fields.
func (e *ValidationError) Has(field string) bool {
	return slices.Contains(e.Fields, field)
}

// Value returns *p, or the zero value of T when p is nil.
func Value[T any](p *T) T {
	if p == nil {
		var zero T
		return zero
	}

	return *p
}
