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

// Generated documentation is available at:
// https://pkg.go.dev/github.com/RedHatInsights/rpn-calculator/calculator

// This source file contains an implementation of interface between Go code and
// SQL database (PostgreSQL or SQLite) used to keep history of calculations.
//
// It is possible to configure connection to selected database by using
// StorageConfiguration structure. The driver is one of:
//
// sqlite3 - SQLite database, data source is taken from sqlite_datasource
// postgres - PostgreSQL accessed via lib/pq
// pgx - PostgreSQL accessed via jackc/pgx

import (
	"database/sql"
	"fmt"
	"math"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // PostgreSQL database driver (pgx)
	_ "github.com/lib/pq"              // PostgreSQL database driver
	_ "github.com/mattn/go-sqlite3"    // SQLite database driver

	"github.com/rs/zerolog/log"

	"github.com/RedHatInsights/rpn-calculator/conf"
	"github.com/RedHatInsights/rpn-calculator/types"
)

// Storage represents an interface to almost any database or storage system
type Storage interface {
	Close() error
	Init() error
	WriteCalculationRecord(record types.CalculationRecord) error
	ReadLatestCalculations(limit int) ([]types.CalculationRecord, error)
	PrintOldCalculationsForCleanup(maxAge string) error
	CleanupOldCalculations(maxAge string) (int, error)
}

// DBStorage is an implementation of Storage interface that use selected SQL like database
// like SQLite or PostgreSQL. That implementation is based on the standard
// sql package. It is possible to configure connection via Configuration structure.
type DBStorage struct {
	connection    *sql.DB
	dbDriverType  types.DBDriver
	logSQLQueries bool
}

// error messages
const (
	unableToCloseDBRowsHandle = "Unable to close DB rows handle"
)

// other messages
const (
	CalculationIDMessage = "Calculation ID"
	ExpressionMessage    = "Expression"
	ModeMessage          = "Mode"
	CreatedAtMessage     = "Created at"
	AgeMessage           = "Age"
	MaxAgeAttribute      = "max age"
	DeleteStatement      = "delete statement"
)

// SQL statements
const (
	// CreateCalculationsTableStatement creates table with calculation
	// history when it does not exist yet
	CreateCalculationsTableStatement = `
		CREATE TABLE IF NOT EXISTS calculations (
		    id          VARCHAR(36) NOT NULL,
		    mode        VARCHAR(10) NOT NULL,
		    expression  VARCHAR NOT NULL,
		    rpn         VARCHAR NOT NULL,
		    result      DOUBLE PRECISION,
		    error_text  VARCHAR NOT NULL,
		    created_at  TIMESTAMP NOT NULL,
		    PRIMARY KEY (id)
		)
`

	// InsertCalculationStatement stores one calculation record
	InsertCalculationStatement = `
		INSERT INTO calculations
		(id, mode, expression, rpn, result, error_text, created_at)
		VALUES
		($1, $2, $3, $4, $5, $6, $7)
`

	// ReadLatestCalculationsQuery reads given number of newest records
	ReadLatestCalculationsQuery = `
		SELECT id, mode, expression, rpn, result, error_text, created_at
		  FROM calculations
		 ORDER BY created_at DESC
		 LIMIT $1
`

	// Display older records from calculations table (PostgreSQL)
	displayOldCalculationsPostgres = `
		SELECT id, mode, expression, created_at
		  FROM calculations
		 WHERE created_at < NOW() - $1::INTERVAL
		 ORDER BY created_at
`

	// Display older records from calculations table (SQLite)
	displayOldCalculationsSQLite = `
		SELECT id, mode, expression, created_at
		  FROM calculations
		 WHERE created_at < datetime('now', '-' || $1)
		 ORDER BY created_at
`

	// Delete older records from calculations table (PostgreSQL)
	deleteOldCalculationsPostgres = `
		DELETE
		  FROM calculations
		 WHERE created_at < NOW() - $1::INTERVAL
`

	// Delete older records from calculations table (SQLite)
	deleteOldCalculationsSQLite = `
		DELETE
		  FROM calculations
		 WHERE created_at < datetime('now', '-' || $1)
`
)

// NewStorage function creates and initializes a new instance of Storage interface
func NewStorage(configuration conf.StorageConfiguration) (*DBStorage, error) {
	driverType, driverName, dataSource, err := initAndGetDriver(configuration)
	if err != nil {
		return nil, err
	}

	log.Info().Msgf(
		"Making connection to data storage, driver=%s",
		driverName,
	)

	connection, err := sql.Open(driverName, dataSource)
	if err != nil {
		log.Error().Err(err).Msg("Can not connect to data storage")
		return nil, err
	}

	// in-memory SQLite database exists per connection
	if driverType == types.DBDriverSQLite3 {
		connection.SetMaxOpenConns(1)
	}

	storage := NewFromConnection(connection, driverType)
	storage.logSQLQueries = configuration.LogSQLQueries
	return storage, nil
}

// NewFromConnection function creates and initializes a new instance of Storage interface from prepared connection
func NewFromConnection(connection *sql.DB, dbDriverType types.DBDriver) *DBStorage {
	return &DBStorage{
		connection:   connection,
		dbDriverType: dbDriverType,
	}
}

// initAndGetDriver checks if the driver is supported and returns driver
// type, driver name, dataSource and error
func initAndGetDriver(configuration conf.StorageConfiguration) (driverType types.DBDriver, driverName, dataSource string, err error) {
	driverName = configuration.Driver

	switch driverName {
	case "sqlite3":
		driverType = types.DBDriverSQLite3
		dataSource = configuration.SQLiteDataSource
	case "postgres", "pgx":
		driverType = types.DBDriverPostgres
		dataSource = fmt.Sprintf(
			"postgresql://%v:%v@%v:%v/%v?%v",
			configuration.PGUsername,
			configuration.PGPassword,
			configuration.PGHost,
			configuration.PGPort,
			configuration.PGDBName,
			configuration.PGParams,
		)
	default:
		err = fmt.Errorf("driver %v is not supported", driverName)
		return
	}

	return
}

// Close method closes the connection to database. Needs to be called at the end of application lifecycle.
func (storage DBStorage) Close() error {
	log.Info().Msg("Closing connection to data storage")
	if storage.connection != nil {
		err := storage.connection.Close()
		if err != nil {
			log.Error().Err(err).Msg("Can not close connection to data storage")
			return err
		}
	}
	return nil
}

// Init method creates the table with calculation history if it does not
// exist
func (storage DBStorage) Init() error {
	storage.logQuery(CreateCalculationsTableStatement)
	_, err := storage.connection.Exec(CreateCalculationsTableStatement)
	if err != nil {
		log.Error().Err(err).Msg("Unable to create table with calculations")
		return err
	}
	return nil
}

// WriteCalculationRecord method writes one calculation into the table
// `calculations`. Result column is NULL for calculations without result.
func (storage DBStorage) WriteCalculationRecord(record types.CalculationRecord) error {
	result := sql.NullFloat64{}
	if record.Result != nil {
		result.Float64 = *record.Result
		result.Valid = true
	}

	storage.logQuery(InsertCalculationStatement)
	_, err := storage.connection.Exec(InsertCalculationStatement,
		string(record.ID), record.Mode.String(), record.Expression,
		record.RPN, result, record.ErrorText, time.Time(record.CreatedAt))
	if err != nil {
		log.Err(err).
			Str(CalculationIDMessage, string(record.ID)).
			Str(ExpressionMessage, record.Expression).
			Msg("Unable to write record into calculations table")
		return err
	}
	return nil
}

// ReadLatestCalculations method reads up to limit newest calculations from
// the history. The newest record is the first one.
func (storage DBStorage) ReadLatestCalculations(limit int) ([]types.CalculationRecord, error) {
	var records = make([]types.CalculationRecord, 0, limit)

	storage.logQuery(ReadLatestCalculationsQuery)
	rows, err := storage.connection.Query(ReadLatestCalculationsQuery, limit)
	if err != nil {
		return records, err
	}

	defer func() {
		err := rows.Close()
		if err != nil {
			log.Error().Err(err).Msg(unableToCloseDBRowsHandle)
		}
	}()

	for rows.Next() {
		var (
			id         string
			mode       string
			expression string
			rpn        string
			result     sql.NullFloat64
			errorText  string
			createdAt  time.Time
		)

		if err := rows.Scan(&id, &mode, &expression, &rpn, &result, &errorText, &createdAt); err != nil {
			return records, err
		}

		calculationMode, err := types.ParseCalculationMode(mode)
		if err != nil {
			return records, err
		}

		record := types.CalculationRecord{
			ID:         types.CalculationID(id),
			Mode:       calculationMode,
			Expression: expression,
			RPN:        rpn,
			ErrorText:  errorText,
			CreatedAt:  types.Timestamp(createdAt),
		}
		if result.Valid {
			value := result.Float64
			record.Result = &value
		}
		records = append(records, record)
	}

	return records, rows.Err()
}

// getPrintableStatement returns SQL statement in form prepared for logging
func getPrintableStatement(sqlStatement string) string {
	s := strings.ReplaceAll(sqlStatement, "\n", " ")
	s = strings.ReplaceAll(s, "\t", "")
	return strings.Trim(s, " ")
}

// logQuery logs SQL statement when logging of SQL queries is enabled
func (storage DBStorage) logQuery(sqlStatement string) {
	if storage.logSQLQueries {
		log.Debug().Str("statement", getPrintableStatement(sqlStatement)).Msg("SQL query")
	}
}

// selectStatement returns statement for the configured SQL dialect
func (storage DBStorage) selectStatement(postgres, sqlite string) string {
	if storage.dbDriverType == types.DBDriverSQLite3 {
		return sqlite
	}
	return postgres
}

// PrintOldCalculationsForCleanup method prints all calculations from
// `calculations` table older than specified relative time
func (storage DBStorage) PrintOldCalculationsForCleanup(maxAge string) error {
	query := storage.selectStatement(displayOldCalculationsPostgres, displayOldCalculationsSQLite)

	log.Info().
		Str(MaxAgeAttribute, maxAge).
		Str("select statement", getPrintableStatement(query)).
		Msg("PrintOldCalculationsForCleanup operation")

	rows, err := storage.connection.Query(query, maxAge)
	if err != nil {
		return err
	}

	defer func() {
		err := rows.Close()
		if err != nil {
			log.Error().Err(err).Msg(unableToCloseDBRowsHandle)
		}
	}()

	// used to compute a real record age
	now := time.Now()

	// iterate over all old records
	for rows.Next() {
		var (
			id         string
			mode       string
			expression string
			createdAt  time.Time
		)

		// read one old record from the calculations table
		if err := rows.Scan(&id, &mode, &expression, &createdAt); err != nil {
			return err
		}

		// compute the real record age
		age := int(math.Ceil(now.Sub(createdAt).Hours() / 24)) // in days

		// just print the record
		log.Info().
			Str(CalculationIDMessage, id).
			Str(ModeMessage, mode).
			Str(ExpressionMessage, expression).
			Str(CreatedAtMessage, createdAt.Format(time.RFC3339)).
			Int(AgeMessage, age).
			Msg("Old calculation from `calculations` table")
	}
	return rows.Err()
}

// CleanupOldCalculations method deletes all calculations older than
// specified relative time. Number of deleted rows is returned.
func (storage DBStorage) CleanupOldCalculations(maxAge string) (int, error) {
	statement := storage.selectStatement(deleteOldCalculationsPostgres, deleteOldCalculationsSQLite)

	log.Info().
		Str(MaxAgeAttribute, maxAge).
		Str(DeleteStatement, getPrintableStatement(statement)).
		Msg("Cleanup operation for calculations table")

	// perform the SQL statement
	result, err := storage.connection.Exec(statement, maxAge)
	if err != nil {
		return 0, err
	}

	// read number of affected (deleted) rows
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, err
	}
	return int(affected), nil
}
