package guard

import (
	"errors"
	"fmt"
)

var (
	// ErrDirectiveDetected matches every *DirectiveError through errors.Is.
	ErrDirectiveDetected = errors.New("preprocessor directive detected")
	// ErrParseFailed matches every *ParseError through errors.Is.
	ErrParseFailed = errors.New("C parse failed")
)

// DirectiveError reports the first line holding a directive or predefined
// macro. Line is 0-based.
type DirectiveError struct {
	Finding
}

func (e *DirectiveError) Error() string {
	return fmt.Sprintf("On line %d, cannot have preprocessor macro %s", e.Line, e.Kind)
}

func (e *DirectiveError) Is(target error) bool {
	return target == ErrDirectiveDetected
}

// ParseError wraps a failure of the grammar parser that ran after the
// scanner accepted the text.
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string {
	if e.Err == nil {
		return "C syntax error"
	}
	return "C syntax error: " + e.Err.Error()
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

func (e *ParseError) Is(target error) bool {
	return target == ErrParseFailed
}
