package config

import (
	"errors"
	"fmt"
)

// Structural error kinds. Any of these aborts the whole load; no partial
// tree is ever returned.
var (
	ErrUnterminatedBlock = errors.New("unterminated block")
	ErrUnterminatedField = errors.New("unterminated text field")
	ErrUnterminatedRule  = errors.New("unterminated rule block")
)

// SyntaxError reports a structural problem in the dump together with the
// line on which it was detected.
type SyntaxError struct {
	Line int
	Err  error
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("line %d: %v", e.Line, e.Err)
}

func (e *SyntaxError) Unwrap() error {
	return e.Err
}
