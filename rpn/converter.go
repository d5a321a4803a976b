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

// This source file contains the infix to postfix converter. It is an
// implementation of the shunting-yard algorithm with two stacks: the
// operator stack and the output sequence.

import (
	"strings"
)

// stackEntry is an operator or left bracket together with its position in
// the token sequence.
type stackEntry struct {
	token    string
	position int
}

// operatorStack holds operators and left brackets during conversion.
type operatorStack []stackEntry

func (s *operatorStack) push(token string, position int) {
	*s = append(*s, stackEntry{token, position})
}

func (s *operatorStack) pop() string {
	old := *s
	entry := old[len(old)-1]
	*s = old[:len(old)-1]
	return entry.token
}

func (s operatorStack) top() string {
	return s[len(s)-1].token
}

func (s operatorStack) empty() bool {
	return len(s) == 0
}

// Infix2RPN converts infix expression into reverse polish notation. Tokens
// in the returned string are separated by one space.
//
// ErrInvalidCharacter is returned for expression with invalid characters
// and ErrEmptyResult when there is nothing to convert. Unbalanced brackets
// are reported as ErrMalformedExpression.
func Infix2RPN(expression string) (string, error) {
	if !IsValidExpression(expression) {
		return "", ErrInvalidCharacter
	}

	tokens := Tokenize(expression)
	if tokens == nil {
		return "", ErrEmptyResult
	}

	// lowest precedence operator flushes the stack at the end
	tokens = append(tokens, Sentinel.String())

	var operators operatorStack
	output := make([]string, 0, len(tokens))

	for position, token := range tokens {
		switch {
		case IsNumber(token):
			output = append(output, token)

		case IsOperator(token):
			current, _ := ParseOperator(token)
			for !operators.empty() && operators.top() != LeftBracket {
				previous, _ := ParseOperator(operators.top())
				if current.Precedence() > previous.Precedence() {
					break
				}
				output = append(output, operators.pop())
			}
			operators.push(token, position)

		case token == LeftBracket:
			operators.push(token, position)

		case token == RightBracket:
			for {
				if operators.empty() {
					return "", malformed(token, position, "right bracket without matching left bracket")
				}
				top := operators.pop()
				if top == LeftBracket {
					break
				}
				output = append(output, top)
			}
		}
	}

	// only the sentinel is allowed to stay on the stack
	for _, entry := range operators {
		if entry.token == LeftBracket {
			return "", malformed(entry.token, entry.position, "left bracket without matching right bracket")
		}
	}

	if len(output) == 0 {
		return "", ErrEmptyResult
	}

	return strings.Join(output, " "), nil
}
