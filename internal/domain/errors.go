package domain

import "fmt"

// MalformedInputError reports a record whose numeric field failed to parse.
// The merge aborts on it: silently dropping a position would understate the
// aggregate totals in a financial report.
type MalformedInputError struct {
	Source  string
	Address string
	Field   string
	Value   string
}

func (e *MalformedInputError) Error() string {
	if e.Address != "" {
		return fmt.Sprintf("malformed %s %q for address %s in source %s", e.Field, e.Value, e.Address, e.Source)
	}
	return fmt.Sprintf("malformed %s %q in %s", e.Field, e.Value, e.Source)
}

// MissingReferenceDataError reports that the vault reference snapshot omits
// a required scalar.
type MissingReferenceDataError struct {
	Field string
}

func (e *MissingReferenceDataError) Error() string {
	return fmt.Sprintf("vault reference data is missing required field %q", e.Field)
}
