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

// This source file contains the tokenizer and validator. The validator is
// the only sanitization gate used by both Infix2RPN and RPNCalculate.

import (
	"strings"
	"unicode"
)

// Brackets
const (
	LeftBracket  = "("
	RightBracket = ")"
)

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

func isAllowedSymbol(r rune) bool {
	return strings.ContainsRune("+-*/()", r)
}

// IsValidExpression returns false if text contains any character that is
// not a digit, whitespace, one of + - * / or a bracket.
func IsValidExpression(text string) bool {
	for _, r := range text {
		if !isDigit(r) && !unicode.IsSpace(r) && !isAllowedSymbol(r) {
			return false
		}
	}
	return true
}

// Tokenize splits text into maximal runs of digits and single non-digit,
// non-whitespace characters. Whitespace is dropped. Nil is returned when no
// token is found.
func Tokenize(text string) []string {
	var tokens []string

	start := -1
	for i, r := range text {
		if isDigit(r) {
			if start < 0 {
				start = i
			}
			continue
		}
		if start >= 0 {
			tokens = append(tokens, text[start:i])
			start = -1
		}
		if !unicode.IsSpace(r) {
			tokens = append(tokens, string(r))
		}
	}
	if start >= 0 {
		tokens = append(tokens, text[start:])
	}

	return tokens
}

// IsNumber checks if token consists of decimal digits only.
func IsNumber(token string) bool {
	if token == "" {
		return false
	}
	for _, r := range token {
		if !isDigit(r) {
			return false
		}
	}
	return true
}

// IsOperator checks if token is one of / * - + or the sentinel #.
func IsOperator(token string) bool {
	_, ok := ParseOperator(token)
	return ok
}

// IsBracket checks if token is a left or right bracket.
func IsBracket(token string) bool {
	return token == LeftBracket || token == RightBracket
}
