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

// Package types contains data types shared by other packages of the
// calculator service.
package types

// Generated documentation is available at:
// https://pkg.go.dev/github.com/RedHatInsights/rpn-calculator/types

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Timestamp represents any timestamp in a form gathered from database
type Timestamp time.Time

// DBDriver type for db driver enum
type DBDriver int

const (
	// DBDriverSQLite3 shows that db driver is sqlite
	DBDriverSQLite3 DBDriver = iota
	// DBDriverPostgres shows that db driver is postgres
	DBDriverPostgres
	// DBDriverGeneral general sql(used for mock now)
	DBDriverGeneral
)

// CalculationID uniquely identifies one calculation.
type CalculationID string

// NewCalculationID generates new random calculation ID.
func NewCalculationID() CalculationID {
	return CalculationID(uuid.New().String())
}

// CalculationMode represents notation of the expression entered by user
type CalculationMode int

// Calculation modes as enum
const (
	// InfixMode means that the expression is converted to RPN first
	InfixMode CalculationMode = iota
	// RPNMode means that the expression is evaluated directly
	RPNMode
)

// Calculation modes string representation
const (
	calculationModeInfix = "infix"
	calculationModeRPN   = "rpn"
)

// String function returns string representation of given calculation mode
func (m CalculationMode) String() string {
	switch m {
	case InfixMode:
		return calculationModeInfix
	case RPNMode:
		return calculationModeRPN
	default:
		return fmt.Sprintf("unknown(%d)", int(m))
	}
}

// ParseCalculationMode converts string representation into calculation mode
func ParseCalculationMode(value string) (CalculationMode, error) {
	switch value {
	case calculationModeInfix:
		return InfixMode, nil
	case calculationModeRPN:
		return RPNMode, nil
	}
	return InfixMode, fmt.Errorf("unknown calculation mode %q", value)
}

// CalculationRecord structure represents one record stored in `calculations`
// table.
type CalculationRecord struct {
	ID         CalculationID
	Mode       CalculationMode
	Expression string
	RPN        string
	Result     *float64 // nil when the expression has no result
	ErrorText  string
	CreatedAt  Timestamp
}

// Failed returns true if the calculation does not have any result
func (r CalculationRecord) Failed() bool {
	return r.Result == nil
}

// CalculationEvent represents content of messages sent to the configured
// Kafka topic or AMQP exchange for each calculation.
type CalculationEvent struct {
	ID         CalculationID `json:"id"`
	Mode       string        `json:"mode"`
	Expression string        `json:"expression"`
	RPN        string        `json:"rpn,omitempty"`
	Result     *float64      `json:"result"`
	Error      string        `json:"error,omitempty"`
	Timestamp  string        `json:"timestamp"`
}

// NewCalculationEvent prepares event for given calculation record
func NewCalculationEvent(record CalculationRecord) CalculationEvent {
	return CalculationEvent{
		ID:         record.ID,
		Mode:       record.Mode.String(),
		Expression: record.Expression,
		RPN:        record.RPN,
		Result:     record.Result,
		Error:      record.ErrorText,
		Timestamp:  time.Time(record.CreatedAt).UTC().Format(time.RFC3339Nano),
	}
}

// ProducerMessage is a type used to represent any message sent by a producer
type ProducerMessage []byte

// CliFlags represents structure holding all command line arguments/flags.
// ExpressionSet and RPNExpressionSet are true when the flag was given on
// command line, even with empty value.
type CliFlags struct {
	Expression                     string
	ExpressionSet                  bool
	RPNExpression                  string
	RPNExpressionSet               bool
	InputFile                      string
	History                        int
	ShowVersion                    bool
	ShowAuthors                    bool
	ShowConfiguration              bool
	PrintOldCalculationsForCleanup bool
	PerformOldCalculationsCleanup  bool
	CleanupOnStartup               bool
	Verbose                        bool
	MaxAge                         string
}

// HasExpression returns true when infix expression needs to be evaluated
func (f CliFlags) HasExpression() bool {
	return f.ExpressionSet || f.Expression != ""
}

// HasRPNExpression returns true when expression in reverse polish notation
// needs to be evaluated
func (f CliFlags) HasRPNExpression() bool {
	return f.RPNExpressionSet || f.RPNExpression != ""
}
