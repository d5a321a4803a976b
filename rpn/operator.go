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

// Operator represents one binary arithmetic operator or the end-of-input
// sentinel used by the converter.
type Operator byte

// All supported operators
const (
	Add      Operator = '+'
	Subtract Operator = '-'
	Multiply Operator = '*'
	Divide   Operator = '/'

	// Sentinel has the lowest precedence, it is appended to the token
	// sequence to flush the operator stack at the end of input. It is
	// never part of the output.
	Sentinel Operator = '#'
)

// ParseOperator converts token into Operator.
func ParseOperator(token string) (Operator, bool) {
	if len(token) != 1 {
		return 0, false
	}
	switch op := Operator(token[0]); op {
	case Add, Subtract, Multiply, Divide, Sentinel:
		return op, true
	}
	return 0, false
}

// Precedence returns rank of operator. Higher rank binds tighter.
func (op Operator) Precedence() int {
	switch op {
	case Multiply, Divide:
		return 2
	case Add, Subtract:
		return 1
	default:
		return 0
	}
}

// String returns the operator symbol.
func (op Operator) String() string {
	return string(rune(op))
}

// Apply computes a op b. Division is real division, so 7/2 is 3.5.
func (op Operator) Apply(a, b float64) (float64, error) {
	switch op {
	case Add:
		return a + b, nil
	case Subtract:
		return a - b, nil
	case Multiply:
		return a * b, nil
	case Divide:
		if b == 0 {
			return 0, ErrDivisionByZero
		}
		return a / b, nil
	}
	return 0, &ExpressionError{
		Token:   op.String(),
		Message: "operator can not be evaluated",
		Err:     ErrMalformedExpression,
	}
}
