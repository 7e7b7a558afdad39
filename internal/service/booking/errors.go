package booking

import (
	"fmt"
	"sort"
	"strings"
)

// ValidationError lists the form fields that failed input checks.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, e.Fields[k])
	}
	return "invalid booking form: " + strings.Join(parts, "; ")
}

// PersistenceError means the appointment store rejected the request. The
// form is kept so the user can retry.
type PersistenceError struct {
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("failed to save appointment: %v", e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}
