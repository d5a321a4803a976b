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

// Package rpn contains the expression engine: conversion of infix
// arithmetic expressions over unsigned integers into reverse polish notation
// and evaluation of expressions in reverse polish notation.
//
// Supported operators are + - * / and brackets. Operands are unsigned
// integers, but results can be negative (subtraction) and non-integral
// (division is not integer division).
//
// All functions are pure and can be called concurrently.
package rpn

// Generated documentation is available at:
// https://pkg.go.dev/github.com/RedHatInsights/rpn-calculator/rpn

import (
	"math"
	"strconv"
	"strings"
)

// Calculate converts infix expression into reverse polish notation and
// evaluates it. Errors from both stages are returned as is.
func Calculate(expression string) (float64, error) {
	rpnExpression, err := Infix2RPN(expression)
	if err != nil {
		return 0, err
	}

	return RPNCalculate(rpnExpression)
}

// FormatRPN normalizes expression in reverse polish notation so that tokens
// are separated by exactly one space.
func FormatRPN(expression string) (string, error) {
	if !IsValidExpression(expression) {
		return "", ErrInvalidCharacter
	}

	tokens := Tokenize(expression)
	if tokens == nil {
		return "", ErrEmptyResult
	}

	return strings.Join(tokens, " "), nil
}

// FormatResult converts result of calculation into string. Integral values
// are displayed without decimal point. Very large and very small values use
// exponent notation without leading zeros in exponent, ie. 1e-7 or 1e+21.
func FormatResult(value float64) string {
	if value == 0 {
		return "0"
	}
	abs := math.Abs(value)
	if abs >= 1e21 || abs < 1e-6 {
		return trimExponent(strconv.FormatFloat(value, 'e', -1, 64))
	}
	return strconv.FormatFloat(value, 'f', -1, 64)
}

// trimExponent removes leading zeros from exponent produced by strconv
func trimExponent(formatted string) string {
	mantissa, exponent, found := strings.Cut(formatted, "e")
	if !found || len(exponent) < 2 {
		return formatted
	}
	sign, digits := exponent[:1], strings.TrimLeft(exponent[1:], "0")
	if digits == "" {
		digits = "0"
	}
	return mantissa + "e" + sign + digits
}
