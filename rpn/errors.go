/*
Copyright © 2026 Red Hat, Inc.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package rpn

import (
	"errors"
	"fmt"
)

// Error kinds returned by the expression engine. Use errors.Is to check
// which kind of problem was found.
var (
	// ErrInvalidCharacter is returned when the expression contains a
	// character that is not a digit, whitespace, operator, or bracket.
	ErrInvalidCharacter = errors.New("expression contains invalid character")

	// ErrEmptyResult is returned when the expression does not contain any
	// token or when the conversion produced empty output.
	ErrEmptyResult = errors.New("expression produced no result")

	// ErrMalformedExpression is returned for structural problems:
	// unbalanced parentheses, missing or superfluous operands etc.
	ErrMalformedExpression = errors.New("malformed expression")

	// ErrDivisionByZero is returned when the right operand of division is
	// zero.
	ErrDivisionByZero = errors.New("division by zero")
)

// ExpressionError describes a problem found at a concrete token.
type ExpressionError struct {
	Token    string // token where the problem was detected
	Position int    // index of the token in token sequence
	Message  string
	Err      error // one of the Err* values above
}

// Error implements the error interface.
func (e *ExpressionError) Error() string {
	if e.Token == "" {
		return e.Message
	}
	return fmt.Sprintf("%s (token %q at position %d)", e.Message, e.Token, e.Position)
}

// Unwrap returns the error kind.
func (e *ExpressionError) Unwrap() error {
	return e.Err
}

func malformed(token string, position int, message string) *ExpressionError {
	return &ExpressionError{
		Token:    token,
		Position: position,
		Message:  message,
		Err:      ErrMalformedExpression,
	}
}

// IsNoResult returns true for errors caused by input validation, ie. for
// expressions that simply do not have any result. Structural and arithmetic
// problems are not included.
func IsNoResult(err error) bool {
	return errors.Is(err, ErrInvalidCharacter) || errors.Is(err, ErrEmptyResult)
}
