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
	"math"
	"strconv"
)

// valueStack holds operands during evaluation.
type valueStack []float64

func (s *valueStack) push(value float64) {
	*s = append(*s, value)
}

func (s *valueStack) pop() float64 {
	old := *s
	value := old[len(old)-1]
	*s = old[:len(old)-1]
	return value
}

// RPNCalculate evaluates expression in reverse polish notation.
//
// The expression goes through the same validation as in Infix2RPN, so
// ErrInvalidCharacter and ErrEmptyResult are returned for the same inputs.
// Missing operands, superfluous operands and brackets are reported as
// ErrMalformedExpression.
func RPNCalculate(expression string) (float64, error) {
	if !IsValidExpression(expression) {
		return 0, ErrInvalidCharacter
	}

	tokens := Tokenize(expression)
	if tokens == nil {
		return 0, ErrEmptyResult
	}

	stack := make(valueStack, 0, len(tokens))

	for position, token := range tokens {
		if IsNumber(token) {
			value, err := strconv.ParseFloat(token, 64)
			if err != nil {
				return 0, malformed(token, position, "number out of range")
			}
			stack.push(value)
			continue
		}

		operator, ok := ParseOperator(token)
		if !ok || operator == Sentinel {
			return 0, malformed(token, position, "unexpected token in postfix expression")
		}

		if len(stack) < 2 {
			return 0, malformed(token, position, "not enough operands for operator")
		}

		// right operand is on top of the stack
		b := stack.pop()
		a := stack.pop()

		result, err := operator.Apply(a, b)
		if err != nil {
			if errors.Is(err, ErrDivisionByZero) {
				return 0, &ExpressionError{
					Token:    token,
					Position: position,
					Message:  "division by zero",
					Err:      ErrDivisionByZero,
				}
			}
			return 0, err
		}
		if math.IsInf(result, 0) || math.IsNaN(result) {
			return 0, malformed(token, position, "result out of range")
		}
		stack.push(result)
	}

	if len(stack) != 1 {
		return 0, &ExpressionError{
			Message: fmt.Sprintf("%d operands left on stack after evaluation", len(stack)),
			Err:     ErrMalformedExpression,
		}
	}

	result := stack[0]
	if result == 0 {
		// avoid negative zero
		result = 0
	}
	return result, nil
}
