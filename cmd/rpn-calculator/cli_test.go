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
	"bytes"
	"os"
	"testing"

	"github.com/RedHatInsights/insights-operator-utils/tests/helpers"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"github.com/RedHatInsights/rpn-calculator/calculator"
	"github.com/RedHatInsights/rpn-calculator/conf"
	"github.com/RedHatInsights/rpn-calculator/types"
)

func init() {
	zerolog.SetGlobalLevel(zerolog.WarnLevel)
}

// captureStdout replaces output used by showVersion and showAuthors
func captureStdout(t *testing.T) *bytes.Buffer {
	buffer := &bytes.Buffer{}
	original := stdout
	stdout = buffer
	t.Cleanup(func() { stdout = original })
	return buffer
}

func TestSetupCliFlags(t *testing.T) {
	cliFlags, err := setupCliFlags([]string{
		"-expression", "(1+2)*3",
		"-cleanup-on-startup",
		"-max-age", "3 days",
		"-verbose",
	})
	assert.NoError(t, err)
	assert.Equal(t, types.CliFlags{
		Expression:       "(1+2)*3",
		ExpressionSet:    true,
		CleanupOnStartup: true,
		MaxAge:           "3 days",
		Verbose:          true,
	}, cliFlags)

	cliFlags, err = setupCliFlags([]string{"-rpn", "1 2 +", "-history", "5"})
	assert.NoError(t, err)
	assert.Equal(t, "1 2 +", cliFlags.RPNExpression)
	assert.True(t, cliFlags.RPNExpressionSet)
	assert.False(t, cliFlags.ExpressionSet)
	assert.Equal(t, 5, cliFlags.History)

	cliFlags, err = setupCliFlags([]string{"-input", "-", "-old-calculations-cleanup", "-print-old-calculations-for-cleanup"})
	assert.NoError(t, err)
	assert.Equal(t, "-", cliFlags.InputFile)
	assert.True(t, cliFlags.PerformOldCalculationsCleanup)
	assert.True(t, cliFlags.PrintOldCalculationsForCleanup)

	_, err = setupCliFlags([]string{"-unknown-flag"})
	assert.Error(t, err)
}

// TestSetupCliFlagsEmptyExpression checks that expression given explicitly
// on command line is recognized even when it is empty
func TestSetupCliFlagsEmptyExpression(t *testing.T) {
	cliFlags, err := setupCliFlags([]string{"-expression", ""})
	assert.NoError(t, err)
	assert.Equal(t, "", cliFlags.Expression)
	assert.True(t, cliFlags.ExpressionSet)
	assert.True(t, cliFlags.HasExpression())

	stop, exitCode := checkArgs(&cliFlags)
	assert.False(t, stop)
	assert.Equal(t, calculator.ExitStatusOK, exitCode)

	cliFlags, err = setupCliFlags([]string{"-rpn="})
	assert.NoError(t, err)
	assert.True(t, cliFlags.HasRPNExpression())

	stop, exitCode = checkArgs(&cliFlags)
	assert.False(t, stop)
	assert.Equal(t, calculator.ExitStatusOK, exitCode)

	// empty expression still counts as a source of expressions
	cliFlags, err = setupCliFlags([]string{"-expression", "", "-input", "-"})
	assert.NoError(t, err)
	stop, exitCode = checkArgs(&cliFlags)
	assert.True(t, stop)
	assert.Equal(t, calculator.ExitStatusConfiguration, exitCode)
}

func TestCheckArgsVersionAndAuthors(t *testing.T) {
	output := captureStdout(t)

	stop, exitCode := checkArgs(&types.CliFlags{ShowVersion: true})
	assert.True(t, stop)
	assert.Equal(t, calculator.ExitStatusOK, exitCode)
	assert.Equal(t, versionMessage+"\n", output.String())

	output.Reset()
	stop, exitCode = checkArgs(&types.CliFlags{ShowAuthors: true})
	assert.True(t, stop)
	assert.Equal(t, calculator.ExitStatusOK, exitCode)
	assert.Equal(t, authorsMessage+"\n", output.String())
}

func TestCheckArgs(t *testing.T) {
	testcases := []struct {
		cliFlags types.CliFlags
		stop     bool
		exitCode int
	}{
		{types.CliFlags{ShowConfiguration: true}, false, calculator.ExitStatusOK},
		{types.CliFlags{PrintOldCalculationsForCleanup: true}, false, calculator.ExitStatusOK},
		{types.CliFlags{PerformOldCalculationsCleanup: true}, false, calculator.ExitStatusOK},
		{types.CliFlags{History: 10}, false, calculator.ExitStatusOK},
		{types.CliFlags{History: -1}, true, calculator.ExitStatusConfiguration},
		{types.CliFlags{Expression: "1+1"}, false, calculator.ExitStatusOK},
		{types.CliFlags{RPNExpression: "1 1 +"}, false, calculator.ExitStatusOK},
		{types.CliFlags{InputFile: "-"}, false, calculator.ExitStatusOK},
		{types.CliFlags{ExpressionSet: true}, false, calculator.ExitStatusOK},
		{types.CliFlags{RPNExpressionSet: true}, false, calculator.ExitStatusOK},
		{types.CliFlags{}, true, calculator.ExitStatusConfiguration},
		{types.CliFlags{Expression: "1+1", RPNExpression: "1 1 +"}, true, calculator.ExitStatusConfiguration},
		{types.CliFlags{Expression: "1+1", InputFile: "input.txt"}, true, calculator.ExitStatusConfiguration},
	}

	for _, tc := range testcases {
		stop, exitCode := checkArgs(&tc.cliFlags)
		assert.Equal(t, tc.stop, stop, tc.cliFlags)
		assert.Equal(t, tc.exitCode, exitCode, tc.cliFlags)
	}
}

func TestConvertLogLevel(t *testing.T) {
	testcases := []struct {
		level    string
		expected zerolog.Level
	}{
		{"debug", zerolog.DebugLevel},
		{" Info ", zerolog.InfoLevel},
		{"warn", zerolog.WarnLevel},
		{"WARNING", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{"fatal", zerolog.FatalLevel},
		{"", zerolog.DebugLevel},
		{"unknown", zerolog.DebugLevel},
	}

	for _, tc := range testcases {
		assert.Equal(t, tc.expected, convertLogLevel(tc.level), tc.level)
	}
}

func TestShowConfiguration(t *testing.T) {
	os.Clearenv()
	helpers.FailOnError(t, os.Setenv(conf.ConfigFileEnvVariableName, "../../tests/config2"))

	config, err := conf.LoadConfiguration(conf.ConfigFileEnvVariableName, "")
	helpers.FailOnError(t, err)

	assert.NotPanics(t, func() { showConfiguration(&config) })
}

func TestRunEvaluatesExpression(t *testing.T) {
	os.Clearenv()
	// no broker and no push gateway is configured
	helpers.FailOnError(t, os.Setenv(conf.ConfigFileEnvVariableName, "../../tests/cli"))

	assert.Equal(t, calculator.ExitStatusOK, run(types.CliFlags{Expression: "2*(3+4)-5"}))
	assert.Equal(t, calculator.ExitStatusEvaluationError, run(types.CliFlags{Expression: "2*(3+4"}))
	assert.Equal(t, calculator.ExitStatusEvaluationError, run(types.CliFlags{ExpressionSet: true}))
	assert.Equal(t, calculator.ExitStatusOK, run(types.CliFlags{History: 3}))
	assert.Equal(t, calculator.ExitStatusOK, run(types.CliFlags{ShowConfiguration: true}))
}

func TestRunWrongConfiguration(t *testing.T) {
	os.Clearenv()
	helpers.FailOnError(t, os.Setenv(conf.ConfigFileEnvVariableName, "non existing file"))

	assert.Equal(t, calculator.ExitStatusConfiguration, run(types.CliFlags{Expression: "1"}))
}
