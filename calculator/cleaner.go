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

package calculator

import (
	"errors"

	"github.com/rs/zerolog/log"

	"github.com/RedHatInsights/rpn-calculator/types"
)

// Messages
const (
	databasePrintOldCalculationsForCleanupOperationFailedMessage = "Print records from `calculations` table prepared for cleanup failed"
	databaseCleanupOldCalculationsOperationFailedMessage         = "Cleanup records from `calculations` table failed"
	rowsDeletedMessage                                           = "Rows deleted"
	maxAgeNotSetMessage                                          = "Max age for cleanup is not set"
)

// PerformCleanupOperation function performs selected cleanup operation
func PerformCleanupOperation(storage Storage, cliFlags types.CliFlags) error {
	switch {
	case cliFlags.PrintOldCalculationsForCleanup:
		return PrintOldCalculationsForCleanup(storage, cliFlags)
	case cliFlags.PerformOldCalculationsCleanup:
		return PerformOldCalculationsCleanup(storage, cliFlags)
	default:
		return errors.New("Unknown operation selected")
	}
}

// PerformCleanupOnStartup function deletes old calculations before the
// service starts to evaluate expressions
func PerformCleanupOnStartup(storage Storage, cliFlags types.CliFlags) error {
	return PerformOldCalculationsCleanup(storage, cliFlags)
}

// PrintOldCalculationsForCleanup function prints all calculations from
// `calculations` table that are older than specified max age.
func PrintOldCalculationsForCleanup(storage Storage, cliFlags types.CliFlags) error {
	if cliFlags.MaxAge == "" {
		log.Error().Msg(maxAgeNotSetMessage)
		return &ConfigurationError{Msg: maxAgeNotSetMessage}
	}

	err := storage.PrintOldCalculationsForCleanup(cliFlags.MaxAge)
	if err != nil {
		log.Error().Err(err).Msg(databasePrintOldCalculationsForCleanupOperationFailedMessage)
		return err
	}

	return nil
}

// PerformOldCalculationsCleanup function deletes all calculations from
// `calculations` table that are older than specified max age.
func PerformOldCalculationsCleanup(storage Storage, cliFlags types.CliFlags) error {
	if cliFlags.MaxAge == "" {
		log.Error().Msg(maxAgeNotSetMessage)
		return &ConfigurationError{Msg: maxAgeNotSetMessage}
	}

	affected, err := storage.CleanupOldCalculations(cliFlags.MaxAge)
	if err != nil {
		log.Error().Err(err).Msg(databaseCleanupOldCalculationsOperationFailedMessage)
		return err
	}
	log.Info().Int(rowsDeletedMessage, affected).Msg("Cleanup `calculations` finished")

	return nil
}
