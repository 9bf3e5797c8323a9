package dataprocessing

import "fmt"

// MalformedInputError reports a missing column or an invalid count value.
type MalformedInputError struct {
	Row    int // 1-based data row, 0 for header problems
	Column string
	Value  string
	Reason string
}

func (e *MalformedInputError) Error() string {
	if e.Row == 0 {
		return fmt.Sprintf("malformed input: column %q: %s", e.Column, e.Reason)
	}
	return fmt.Sprintf("malformed input: row %d column %q value %q: %s", e.Row, e.Column, e.Value, e.Reason)
}

// UnparsableTimestampError reports a timestamp that matches no accepted layout.
type UnparsableTimestampError struct {
	Row   int
	Value string
}

func (e *UnparsableTimestampError) Error() string {
	return fmt.Sprintf("unparsable timestamp at row %d: %q", e.Row, e.Value)
}
