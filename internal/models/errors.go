package models

import "fmt"

// ValidationError rejects a malformed record at the connector boundary.
// The record is not stored and not coerced; the batch continues.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid record: %s %s", e.Field, e.Reason)
}
