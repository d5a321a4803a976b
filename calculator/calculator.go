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

// Package calculator contains the service built around the expression
// engine from the rpn package. It evaluates expressions entered on command
// line or read from a file, keeps history of calculations in SQL database,
// publishes calculation events to Kafka and/or AMQP broker, and exposes
// metrics via Prometheus push gateway.
package calculator

// Generated documentation is available at:
// https://pkg.go.dev/github.com/RedHatInsights/rpn-calculator/calculator

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/RedHatInsights/rpn-calculator/conf"
	"github.com/RedHatInsights/rpn-calculator/producer"
	"github.com/RedHatInsights/rpn-calculator/producer/amqp"
	"github.com/RedHatInsights/rpn-calculator/producer/disabled"
	"github.com/RedHatInsights/rpn-calculator/producer/kafka"
	"github.com/RedHatInsights/rpn-calculator/rpn"
	"github.com/RedHatInsights/rpn-calculator/types"
)

// Exit codes
const (
	// ExitStatusOK means that the tool finished with success
	ExitStatusOK = iota
	// ExitStatusConfiguration is an error code related to program configuration
	ExitStatusConfiguration
	// ExitStatusError is a general error code
	ExitStatusError
	// ExitStatusStorageError is returned in case of any storage-related error
	ExitStatusStorageError
	// ExitStatusProducerError is returned when event can not be published
	// or producer can not be initialized
	ExitStatusProducerError
	// ExitStatusCleanerError is raised when clean operation is not successful
	ExitStatusCleanerError
	// ExitStatusEvaluationError is returned when at least one expression
	// does not have any result
	ExitStatusEvaluationError
	// ExitStatusMetricsError is raised when prometheus metrics cannot be pushed
	ExitStatusMetricsError
)

// Messages
const (
	separator                   = "------------------------------------------------------------"
	operationFailedMessage      = "Operation failed"
	metricsPushFailedMessage    = "Couldn't push prometheus metrics"
	invalidJSONContent          = "The provided content cannot be encoded as JSON."
	storageNotConfigured        = "Storage is not configured, but selected operation needs it"
	expressionNotSpecified      = "Expression, RPN expression, or input file needs to be specified on command line"
	noResultMessage             = "no result"
	expressionAttribute         = "expression"
	modeAttribute               = "mode"
	resultAttribute             = "result"
	calculationIDAttribute      = "calculation ID"
	evaluatedAttribute          = "evaluated"
	failedAttribute             = "failed"
	commentPrefix               = ";"
	stdinFileName               = "-"
	producerSetupFailedTemplate = "Couldn't initialize %s producer with the provided config."
)

// Calculator evaluates expressions and takes care of everything that
// happens with the result: storing it into history, publishing it as an
// event, and printing it.
type Calculator struct {
	// Storage is nil when calculation history is not kept
	Storage    Storage
	Producers  []producer.Producer
	Processing conf.ProcessingConfiguration
	Output     io.Writer
}

// New constructs new calculator
func New(storage Storage, producers []producer.Producer,
	processing conf.ProcessingConfiguration, output io.Writer) *Calculator {
	return &Calculator{
		Storage:    storage,
		Producers:  producers,
		Processing: processing,
		Output:     output,
	}
}

// Evaluate evaluates one expression in given notation and returns the
// calculation record. Failure of evaluation is stored in the record, it is
// not returned as an error.
func (c *Calculator) Evaluate(mode types.CalculationMode, expression string) types.CalculationRecord {
	ExpressionsReceived.Inc()

	record := types.CalculationRecord{
		ID:         types.NewCalculationID(),
		Mode:       mode,
		Expression: expression,
		CreatedAt:  types.Timestamp(time.Now().UTC()),
	}

	limit := c.Processing.MaxExpressionLength
	if limit > 0 && len(expression) > limit {
		err := &ExpressionTooLongError{Length: len(expression), Limit: limit}
		ExpressionsRejected.Inc()
		record.ErrorText = err.Error()
		return record
	}

	postfix, err := toRPN(mode, expression)
	if err != nil {
		countFailure(err)
		record.ErrorText = err.Error()
		return record
	}
	record.RPN = postfix

	result, err := rpn.RPNCalculate(postfix)
	if err != nil {
		countFailure(err)
		record.ErrorText = err.Error()
		return record
	}

	ExpressionsEvaluated.Inc()
	record.Result = &result
	return record
}

// toRPN converts infix expression into reverse polish notation or
// normalizes expression that is in reverse polish notation already
func toRPN(mode types.CalculationMode, expression string) (string, error) {
	if mode == types.RPNMode {
		return rpn.FormatRPN(expression)
	}
	return rpn.Infix2RPN(expression)
}

// countFailure updates metrics for expression without result
func countFailure(err error) {
	if rpn.IsNoResult(err) {
		ExpressionsRejected.Inc()
		return
	}
	ExpressionsMalformed.Inc()
}

// Process evaluates one expression, prints the result, stores the
// calculation into history, and publishes calculation event. Returned error
// is related to storage or producers only.
func (c *Calculator) Process(mode types.CalculationMode, expression string) (types.CalculationRecord, error) {
	record := c.Evaluate(mode, expression)

	log.Debug().
		Str(calculationIDAttribute, string(record.ID)).
		Str(modeAttribute, mode.String()).
		Str(expressionAttribute, expression).
		Str(resultAttribute, FormatRecordResult(record)).
		Msg("Expression evaluated")

	c.printRecord(record)

	storageErr := c.store(record)
	producerErr := c.publish(record)

	return record, errors.Join(storageErr, producerErr)
}

// ProcessBatch processes all expressions (one per line, in infix notation)
// read from given reader. Empty lines and lines starting with semicolon are
// skipped. Number of evaluated and failed expressions is returned.
func (c *Calculator) ProcessBatch(reader io.Reader) (evaluated, failed int, err error) {
	var processErrs []error

	scanner := bufio.NewScanner(reader)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, commentPrefix) {
			continue
		}

		record, err := c.Process(types.InfixMode, line)
		if err != nil {
			processErrs = append(processErrs, err)
		}
		evaluated++
		if record.Failed() {
			failed++
		}
	}

	if err := scanner.Err(); err != nil {
		processErrs = append(processErrs, err)
	}

	log.Info().
		Int(evaluatedAttribute, evaluated).
		Int(failedAttribute, failed).
		Msg("Batch processed")

	return evaluated, failed, errors.Join(processErrs...)
}

// PrintHistory prints up to limit newest calculations from the history
func (c *Calculator) PrintHistory(limit int) error {
	if c.Storage == nil {
		return &ConfigurationError{Msg: storageNotConfigured}
	}

	records, err := c.Storage.ReadLatestCalculations(limit)
	if err != nil {
		return &StorageError{Msg: "unable to read calculation history", Err: err}
	}

	for _, record := range records {
		fmt.Fprintf(c.Output, "%s  %-5s  %s  =  %s\n",
			time.Time(record.CreatedAt).Format(time.RFC3339),
			record.Mode, record.Expression, FormatRecordResult(record))
	}
	return nil
}

// Close closes storage and all producers
func (c *Calculator) Close() error {
	var errs []error

	for _, p := range c.Producers {
		if err := p.Close(); err != nil {
			log.Err(err).Msg(operationFailedMessage)
			errs = append(errs, &ProducerError{Msg: "unable to close producer", Err: err})
		}
	}

	if c.Storage != nil {
		if err := c.Storage.Close(); err != nil {
			log.Err(err).Msg(operationFailedMessage)
			errs = append(errs, &StorageError{Msg: "unable to close storage", Err: err})
		}
	}

	return errors.Join(errs...)
}

// FormatRecordResult returns result of calculation as displayed to user
func FormatRecordResult(record types.CalculationRecord) string {
	if record.Failed() {
		return fmt.Sprintf("%s (%s)", noResultMessage, record.ErrorText)
	}
	return rpn.FormatResult(*record.Result)
}

func (c *Calculator) printRecord(record types.CalculationRecord) {
	fmt.Fprintf(c.Output, "expression: %s\n", record.Expression)
	if record.RPN != "" {
		fmt.Fprintf(c.Output, "rpn: %s\n", record.RPN)
	}
	fmt.Fprintf(c.Output, "result: %s\n", FormatRecordResult(record))
}

func (c *Calculator) store(record types.CalculationRecord) error {
	if c.Storage == nil {
		return nil
	}
	if record.Failed() && !c.Processing.StoreFailed {
		return nil
	}

	err := c.Storage.WriteCalculationRecord(record)
	if err != nil {
		StorageWriteErrors.Inc()
		log.Err(err).Str(calculationIDAttribute, string(record.ID)).Msg(operationFailedMessage)
		return &StorageError{Msg: "unable to store calculation", Err: err}
	}
	return nil
}

func (c *Calculator) publish(record types.CalculationRecord) error {
	if len(c.Producers) == 0 {
		return nil
	}

	msgBytes, err := json.Marshal(types.NewCalculationEvent(record))
	if err != nil {
		log.Error().Err(err).Msg(invalidJSONContent)
		return &ProducerError{Msg: invalidJSONContent, Err: err}
	}

	var errs []error
	for _, p := range c.Producers {
		_, offset, err := p.ProduceMessage(msgBytes)
		if err != nil {
			EventsNotSent.Inc()
			log.Error().Err(err).Str(calculationIDAttribute, string(record.ID)).Msg("Couldn't send calculation event")
			errs = append(errs, &ProducerError{Msg: "unable to send calculation event", Err: err})
			continue
		}
		// offset -1 is returned by disabled producer
		if offset != -1 {
			EventsSent.Inc()
		}
	}
	return errors.Join(errs...)
}

// registerMetrics registers metrics using the provided namespace, if any
func registerMetrics(metricsConfig conf.MetricsConfiguration) {
	if metricsConfig.Namespace != "" {
		log.Info().Str("namespace", metricsConfig.Namespace).Msg("Setting metrics namespace")
		AddMetricsWithNamespace(metricsConfig.Namespace)
	}
}

// setupStorage prepares storage when it is configured. Nil is returned
// together with ExitStatusOK when no storage driver is set.
func setupStorage(storageConfiguration conf.StorageConfiguration) (Storage, int) {
	if storageConfiguration.Driver == "" {
		log.Info().Msg("Storage is not configured, calculation history won't be kept")
		return nil, ExitStatusOK
	}

	storage, err := NewStorage(storageConfiguration)
	if err != nil {
		StorageSetupErrors.Inc()
		log.Err(err).Msg(operationFailedMessage)
		return nil, ExitStatusStorageError
	}

	err = storage.Init()
	if err != nil {
		StorageSetupErrors.Inc()
		log.Err(err).Msg(operationFailedMessage)
		closeStorage(storage)
		return nil, ExitStatusStorageError
	}
	return storage, ExitStatusOK
}

func closeStorage(storage Storage) {
	if storage == nil {
		return
	}
	if err := storage.Close(); err != nil {
		log.Err(err).Msg(operationFailedMessage)
	}
}

// setupProducers creates Kafka and AMQP producers that are enabled in
// configuration. Disabled producer is used when no broker is enabled.
func setupProducers(config *conf.ConfigStruct) ([]producer.Producer, int) {
	var producers []producer.Producer

	// broker enable/disable is very important information, let's inform
	// admins about the state
	if conf.GetKafkaBrokerConfiguration(config).Enabled {
		log.Info().Msg("Kafka broker is enabled")
		kafkaProducer, err := kafka.New(config)
		if err != nil {
			ProducerSetupErrors.Inc()
			log.Error().Err(err).Msgf(producerSetupFailedTemplate, "Kafka")
			return nil, ExitStatusProducerError
		}
		producers = append(producers, kafkaProducer)
	} else {
		log.Info().Msg("Kafka broker is disabled")
	}

	if conf.GetAMQPBrokerConfiguration(config).Enabled {
		log.Info().Msg("AMQP broker is enabled")
		amqpProducer, err := amqp.New(config)
		if err != nil {
			ProducerSetupErrors.Inc()
			log.Error().Err(err).Msgf(producerSetupFailedTemplate, "AMQP")
			for _, p := range producers {
				_ = p.Close()
			}
			return nil, ExitStatusProducerError
		}
		producers = append(producers, amqpProducer)
	} else {
		log.Info().Msg("AMQP broker is disabled")
	}

	if len(producers) == 0 {
		producers = append(producers, &disabled.Producer{})
	}
	return producers, ExitStatusOK
}

// storageOperationSpecified returns true when operation that works with
// storage only has been selected on command line
func storageOperationSpecified(cliFlags types.CliFlags) bool {
	return cliFlags.PrintOldCalculationsForCleanup ||
		cliFlags.PerformOldCalculationsCleanup
}

// evaluationSpecified returns true when there is anything to evaluate
func evaluationSpecified(cliFlags types.CliFlags) bool {
	return cliFlags.HasExpression() ||
		cliFlags.HasRPNExpression() ||
		cliFlags.InputFile != ""
}

// exitCodeFromError maps errors returned by Calculator methods to exit codes
func exitCodeFromError(err error) int {
	var storageErr *StorageError
	var producerErr *ProducerError
	var configurationErr *ConfigurationError

	switch {
	case err == nil:
		return ExitStatusOK
	case errors.As(err, &configurationErr):
		return ExitStatusConfiguration
	case errors.As(err, &storageErr):
		return ExitStatusStorageError
	case errors.As(err, &producerErr):
		return ExitStatusProducerError
	default:
		return ExitStatusError
	}
}

// evaluateExpressions evaluates everything specified on command line
func evaluateExpressions(calculator *Calculator, cliFlags types.CliFlags) int {
	var (
		failed int
		err    error
	)

	switch {
	case cliFlags.HasExpression():
		var record types.CalculationRecord
		record, err = calculator.Process(types.InfixMode, cliFlags.Expression)
		if record.Failed() {
			failed++
		}
	case cliFlags.HasRPNExpression():
		var record types.CalculationRecord
		record, err = calculator.Process(types.RPNMode, cliFlags.RPNExpression)
		if record.Failed() {
			failed++
		}
	case cliFlags.InputFile == stdinFileName:
		_, failed, err = calculator.ProcessBatch(os.Stdin)
	default:
		file, openErr := os.Open(cliFlags.InputFile)
		if openErr != nil {
			log.Err(openErr).Str("file", cliFlags.InputFile).Msg("Unable to open input file")
			return ExitStatusError
		}
		defer func() {
			if closeErr := file.Close(); closeErr != nil {
				log.Err(closeErr).Msg(operationFailedMessage)
			}
		}()
		_, failed, err = calculator.ProcessBatch(file)
	}

	if err != nil {
		return exitCodeFromError(err)
	}
	if failed > 0 {
		return ExitStatusEvaluationError
	}
	return ExitStatusOK
}

// pushMetrics pushes metrics to the push gateway if it is configured
func pushMetrics(metricsConf conf.MetricsConfiguration) int {
	if metricsConf.GatewayURL == "" {
		return ExitStatusOK
	}
	if err := PushMetricsWithRetries(metricsConf); err != nil {
		return ExitStatusMetricsError
	}
	return ExitStatusOK
}

// Run function is entry point to the calculator. Exit code is returned.
func Run(config conf.ConfigStruct, cliFlags types.CliFlags) int {
	log.Info().Msg("Calculator started")
	log.Info().Msg(separator)

	registerMetrics(conf.GetMetricsConfiguration(&config))

	// override default value by one read from configuration file
	if cliFlags.MaxAge == "" {
		cliFlags.MaxAge = conf.GetCleanerConfiguration(&config).MaxAge
	}

	storage, exitCode := setupStorage(conf.GetStorageConfiguration(&config))
	if exitCode != ExitStatusOK {
		return exitCode
	}

	if storageOperationSpecified(cliFlags) || cliFlags.History > 0 {
		defer closeStorage(storage)
		if storage == nil {
			log.Error().Msg(storageNotConfigured)
			return ExitStatusConfiguration
		}
		if cliFlags.History > 0 {
			calculator := New(storage, nil, conf.GetProcessingConfiguration(&config), os.Stdout)
			return exitCodeFromError(calculator.PrintHistory(cliFlags.History))
		}
		if err := PerformCleanupOperation(storage, cliFlags); err != nil {
			return ExitStatusCleanerError
		}
		return ExitStatusOK
	}

	if !evaluationSpecified(cliFlags) {
		log.Error().Msg(expressionNotSpecified)
		closeStorage(storage)
		return ExitStatusConfiguration
	}

	// perform database cleanup on startup if specified on command line
	if cliFlags.CleanupOnStartup && storage != nil {
		err := PerformCleanupOnStartup(storage, cliFlags)
		if err != nil {
			closeStorage(storage)
			return ExitStatusCleanerError
		}
		// if previous operation is correct, just continue
	}

	log.Info().Msg("Preparing producers")
	producers, exitCode := setupProducers(&config)
	if exitCode != ExitStatusOK {
		closeStorage(storage)
		return exitCode
	}
	log.Info().Msg(separator)

	calculator := New(storage, producers, conf.GetProcessingConfiguration(&config), os.Stdout)
	exitCode = evaluateExpressions(calculator, cliFlags)

	log.Info().Msg(separator)
	if err := calculator.Close(); err != nil && exitCode == ExitStatusOK {
		exitCode = exitCodeFromError(err)
	}

	log.Info().Msg("Calculator finished. Pushing metrics to the configured prometheus gateway.")
	if metricsExitCode := pushMetrics(conf.GetMetricsConfiguration(&config)); exitCode == ExitStatusOK {
		exitCode = metricsExitCode
	}
	log.Info().Msg(separator)

	return exitCode
}
