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

package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/RedHatInsights/rpn-calculator/calculator"
	"github.com/RedHatInsights/rpn-calculator/conf"
	"github.com/RedHatInsights/rpn-calculator/types"
	"github.com/RedHatInsights/rpn-calculator/utils"
)

const (
	versionMessage = "RPN calculator version 1.0"
	authorsMessage = "Red Hat Inc."
)

// output used to display version and authors
var stdout io.Writer = os.Stdout

// showVersion function displays version information.
func showVersion() {
	fmt.Fprintln(stdout, versionMessage)
}

// showAuthors function displays information about authors.
func showAuthors() {
	fmt.Fprintln(stdout, authorsMessage)
}

// setupCliFlags defines and parses all command line options
func setupCliFlags(args []string) (types.CliFlags, error) {
	var cliFlags types.CliFlags

	flags := flag.NewFlagSet("rpn-calculator", flag.ContinueOnError)
	flags.StringVar(&cliFlags.Expression, "expression", "", "expression in infix notation to evaluate")
	flags.StringVar(&cliFlags.RPNExpression, "rpn", "", "expression in reverse polish notation to evaluate")
	flags.StringVar(&cliFlags.InputFile, "input", "", "file with expressions in infix notation, one per line (- for standard input)")
	flags.IntVar(&cliFlags.History, "history", 0, "show given number of latest calculations and exit")
	flags.BoolVar(&cliFlags.ShowVersion, "show-version", false, "show version and exit")
	flags.BoolVar(&cliFlags.ShowAuthors, "show-authors", false, "show authors and exit")
	flags.BoolVar(&cliFlags.ShowConfiguration, "show-configuration", false, "show configuration and exit")
	flags.BoolVar(&cliFlags.PrintOldCalculationsForCleanup, "print-old-calculations-for-cleanup", false, "print old calculations to be cleaned up")
	flags.BoolVar(&cliFlags.PerformOldCalculationsCleanup, "old-calculations-cleanup", false, "perform old calculations clean up")
	flags.BoolVar(&cliFlags.CleanupOnStartup, "cleanup-on-startup", false, "perform database clean up on startup")
	flags.BoolVar(&cliFlags.Verbose, "verbose", false, "verbose logs")
	flags.StringVar(&cliFlags.MaxAge, "max-age", "", "max age for displaying/cleaning old records")

	err := flags.Parse(args)

	// empty expression given explicitly is still evaluated
	flags.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "expression":
			cliFlags.ExpressionSet = true
		case "rpn":
			cliFlags.RPNExpressionSet = true
		}
	})
	return cliFlags, err
}

// showConfiguration function displays actual configuration.
func showConfiguration(config *conf.ConfigStruct) {
	brokerConfig := conf.GetKafkaBrokerConfiguration(config)
	log.Info().
		Bool("Enabled", brokerConfig.Enabled).
		Str("Addresses", brokerConfig.Addresses).
		Str("SecurityProtocol", brokerConfig.SecurityProtocol).
		Str("SaslMechanism", brokerConfig.SaslMechanism).
		Str("Topic", brokerConfig.Topic).
		Str("Timeout", brokerConfig.Timeout.String()).
		Msg("Broker configuration")

	amqpConfig := conf.GetAMQPBrokerConfiguration(config)
	log.Info().
		Bool("Enabled", amqpConfig.Enabled).
		Str("URL", utils.RedactURLPassword(amqpConfig.URL)).
		Str("Exchange", amqpConfig.Exchange).
		Str("Routing key", amqpConfig.RoutingKey).
		Str("Timeout", amqpConfig.Timeout.String()).
		Msg("AMQP broker configuration")

	storageConfig := conf.GetStorageConfiguration(config)
	log.Info().
		Str("Driver", storageConfig.Driver).
		Str("SQLite data source", storageConfig.SQLiteDataSource).
		Str("DB Name", storageConfig.PGDBName).
		Str("Username", storageConfig.PGUsername). // password is omitted on purpose
		Str("Host", storageConfig.PGHost).
		Int("Port", storageConfig.PGPort).
		Bool("LogSQLQueries", storageConfig.LogSQLQueries).
		Str("Parameters", storageConfig.PGParams).
		Msg("Storage configuration")

	loggingConfig := conf.GetLoggingConfiguration(config)
	log.Info().
		Str("Level", loggingConfig.LogLevel).
		Bool("Pretty colored debug logging", loggingConfig.Debug).
		Msg("Logging configuration")

	metricsConfig := conf.GetMetricsConfiguration(config)

	// Authentication token is omitted on purpose
	log.Info().
		Str("Job", metricsConfig.Job).
		Str("Namespace", metricsConfig.Namespace).
		Str("Push Gateway", metricsConfig.GatewayURL).
		Int("Retries", metricsConfig.Retries).
		Str("Retry after", metricsConfig.RetryAfter.String()).
		Msg("Metrics configuration")

	cleanerConfig := conf.GetCleanerConfiguration(config)
	log.Info().
		Str("Max age", cleanerConfig.MaxAge).
		Msg("Cleaner configuration")

	processingConfig := conf.GetProcessingConfiguration(config)
	log.Info().
		Int("Max expression length", processingConfig.MaxExpressionLength).
		Bool("Store failed calculations", processingConfig.StoreFailed).
		Msg("Processing configuration")
}

// checkArgs function handles command line options passed to the process.
// True is returned together with exit code when the process has to stop.
func checkArgs(args *types.CliFlags) (bool, int) {
	switch {
	case args.ShowVersion:
		showVersion()
		return true, calculator.ExitStatusOK
	case args.ShowAuthors:
		showAuthors()
		return true, calculator.ExitStatusOK
	case args.ShowConfiguration:
		// config not loaded yet, just skip the rest of function for
		// now
		return false, calculator.ExitStatusOK
	case args.PrintOldCalculationsForCleanup,
		args.PerformOldCalculationsCleanup:
		// DB only operations, no need for additional args
		return false, calculator.ExitStatusOK
	case args.History < 0:
		log.Error().Int("history", args.History).Msg("Number of calculations to display can not be negative")
		return true, calculator.ExitStatusConfiguration
	case args.History > 0:
		return false, calculator.ExitStatusOK
	default:
	}

	// exactly one source of expressions needs to be specified
	sources := 0
	for _, specified := range []bool{args.HasExpression(), args.HasRPNExpression(), args.InputFile != ""} {
		if specified {
			sources++
		}
	}

	switch sources {
	case 0:
		log.Error().Msg("Expression, RPN expression, or input file needs to be specified on command line")
		return true, calculator.ExitStatusConfiguration
	case 1:
		return false, calculator.ExitStatusOK
	default:
		log.Error().Msg("Only one of expression, RPN expression, or input file can be specified on command line")
		return true, calculator.ExitStatusConfiguration
	}
}

func convertLogLevel(level string) zerolog.Level {
	level = strings.ToLower(strings.TrimSpace(level))
	switch level {
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "fatal":
		return zerolog.FatalLevel
	}

	return zerolog.DebugLevel
}
