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

// Entry point to the RPN calculator.
//
// The calculator evaluates arithmetic expressions written in infix notation
// (like `(1+2)*3`) or in reverse polish notation (like `1 2 + 3 *`).
// Expressions are read from command line or from a file, one expression per
// line. Infix expressions are converted into reverse polish notation by the
// shunting-yard algorithm and then evaluated using a stack.
//
// Each calculation can be stored into SQL database (SQLite or PostgreSQL) so
// the history can be displayed later, and a calculation event can be sent to
// Kafka topic and/or AMQP exchange. Old calculations can be deleted from the
// history by the cleaner.
//
// Additionally the calculator exposes several metrics about evaluated
// expressions. These metrics are pushed to Prometheus push gateway and can
// be displayed by Grafana tools.
package main

// Generated documentation is available at:
// https://pkg.go.dev/github.com/RedHatInsights/rpn-calculator/

import (
	"os"

	"github.com/RedHatInsights/insights-operator-utils/logger"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/RedHatInsights/rpn-calculator/calculator"
	"github.com/RedHatInsights/rpn-calculator/conf"
	"github.com/RedHatInsights/rpn-calculator/types"
)

// Configuration-related constants
const (
	loadConfigurationMessage = "Load configuration"
)

func main() {
	cliFlags, err := setupCliFlags(os.Args[1:])
	if err != nil {
		os.Exit(calculator.ExitStatusConfiguration)
	}

	os.Exit(run(cliFlags))
}

// run function loads configuration, initializes logging, and starts the
// operation selected on command line. Exit code is returned.
func run(cliFlags types.CliFlags) int {
	if stop, exitCode := checkArgs(&cliFlags); stop {
		return exitCode
	}

	// config has exactly the same structure as *.toml file
	config, err := conf.LoadConfiguration(conf.ConfigFileEnvVariableName, conf.DefaultConfigFileName)
	if err != nil {
		log.Err(err).Msg(loadConfigurationMessage)
		return calculator.ExitStatusConfiguration
	}

	err = logger.InitZerolog(
		conf.GetLoggingConfiguration(&config),
		conf.GetCloudWatchConfiguration(&config),
		conf.GetSentryLoggingConfiguration(&config),
		conf.GetKafkaZerologConfiguration(&config),
	)
	if err != nil {
		log.Err(err).Msg(loadConfigurationMessage)
		return calculator.ExitStatusConfiguration
	}

	// configuration is loaded, so it would be possible to display it if
	// asked by user
	if cliFlags.ShowConfiguration {
		showConfiguration(&config)
		return calculator.ExitStatusOK
	}

	loggingConfig := conf.GetLoggingConfiguration(&config)
	if loggingConfig.Debug {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}

	// verbose mode overrides level from configuration file
	logLevel := convertLogLevel(loggingConfig.LogLevel)
	if cliFlags.Verbose {
		logLevel = zerolog.DebugLevel
	}
	zerolog.SetGlobalLevel(logLevel)
	log.Debug().
		Str("configured", loggingConfig.LogLevel).
		Int("internal", int(logLevel)).
		Msg("Log level")

	if cliFlags.Verbose {
		showConfiguration(&config)
	}

	return calculator.Run(config, cliFlags)
}
