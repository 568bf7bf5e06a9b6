package parser

import "fmt"

// SyntaxError is returned for any input the parser rejects. It carries
// enough position information to point at the offending token.
type SyntaxError struct {
	Line    int32
	Column  int
	Message string
}

func newSyntaxError(line int32, column int, format string, args ...any) SyntaxError {
	return SyntaxError{Line: line, Column: column, Message: fmt.Sprintf(format, args...)}
}

func (e SyntaxError) Error() string {
	return fmt.Sprintf("💥 syntax error: line %d, column %d: %s", e.Line, e.Column, e.Message)
}
