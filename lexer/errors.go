package lexer

import "fmt"

// ErrorKind enumerates every way lexing can fail, per SPEC_FULL.md §4.1.
type ErrorKind string

const (
	BadIndentation  ErrorKind = "BadIndentation"
	MissingColon    ErrorKind = "MissingColon"
	UnknownBlockKind ErrorKind = "UnknownBlockKind"
	BadEscape       ErrorKind = "BadEscape"
	UnterminatedString ErrorKind = "UnterminatedString"
	BadNumber       ErrorKind = "BadNumber"
	UnknownSymbol   ErrorKind = "UnknownSymbol"
)

// SyntaxError is the lexer's single error type; every failure mode above
// is a Kind value rather than a distinct Go error type, so callers can
// always errors.As into one SyntaxError and switch on Kind.
type SyntaxError struct {
	Kind    ErrorKind
	Message string
	Line    int
	Column  int
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("%s at %d:%d: %s", e.Kind, e.Line, e.Column, e.Message)
}

func newErr(kind ErrorKind, line, col int, format string, args ...interface{}) *SyntaxError {
	return &SyntaxError{Kind: kind, Line: line, Column: col, Message: fmt.Sprintf(format, args...)}
}
