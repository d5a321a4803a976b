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

// Package conf contains definition of data type named ConfigStruct that
// represents configuration of the calculator service. This package also
// contains function named LoadConfiguration that can be used to load
// configuration from provided configuration file and/or from environment
// variables. Additionally several specific functions named
// GetStorageConfiguration, GetLoggingConfiguration,
// GetKafkaBrokerConfiguration, GetAMQPBrokerConfiguration,
// GetMetricsConfiguration etc. are to be used to return specific
// configuration options.
package conf

// Generated documentation is available at:
// https://pkg.go.dev/github.com/RedHatInsights/rpn-calculator/conf

// Default name of configuration file is config.toml
// It can be changed via environment variable RPN_CALCULATOR_CONFIG_FILE

// An example of configuration file that can be used in devel environment:
//
// [storage]
// db_driver = "sqlite3"
// sqlite_datasource = "calculations.db"
// log_sql_queries = true
//
// [logging]
// debug = true
// log_level = ""
//
// [processing]
// max_expression_length = 1024
// store_failed = true
//
// Environment variables that can be used to override configuration file
// settings use prefix RPN_CALCULATOR__ and double underscore as a separator
// of nested keys, for example RPN_CALCULATOR__STORAGE__DB_DRIVER.

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/RedHatInsights/insights-operator-utils/logger"
	clowder "github.com/redhatinsights/app-common-go/pkg/api/v1"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

// Configuration-related constants
const (
	// ConfigFileEnvVariableName is name of environment variable that
	// contains name of configuration file
	ConfigFileEnvVariableName = "RPN_CALCULATOR_CONFIG_FILE"

	// DefaultConfigFileName is name of configuration file used when the
	// environment variable is not set
	DefaultConfigFileName = "config"

	envPrefix = "RPN_CALCULATOR_"
)

// ConfigStruct is a structure holding the whole calculator service
// configuration
type ConfigStruct struct {
	Logging      logger.LoggingConfiguration       `mapstructure:"logging" toml:"logging"`
	CloudWatch   logger.CloudWatchConfiguration    `mapstructure:"cloudwatch" toml:"cloudwatch"`
	Sentry       logger.SentryLoggingConfiguration `mapstructure:"sentry" toml:"sentry"`
	KafkaZerolog logger.KafkaZerologConfiguration  `mapstructure:"kafka_zerolog" toml:"kafka_zerolog"`
	Storage      StorageConfiguration              `mapstructure:"storage" toml:"storage"`
	Kafka        KafkaConfiguration                `mapstructure:"kafka_broker" toml:"kafka_broker"`
	AMQP         AMQPConfiguration                 `mapstructure:"amqp_broker" toml:"amqp_broker"`
	Metrics      MetricsConfiguration              `mapstructure:"metrics" toml:"metrics"`
	Cleaner      CleanerConfiguration              `mapstructure:"cleaner" toml:"cleaner"`
	Processing   ProcessingConfiguration           `mapstructure:"processing" toml:"processing"`
}

// StorageConfiguration represents configuration of data storage that is
// used to keep history of calculations. Storage is not used at all when the
// driver is not set.
type StorageConfiguration struct {
	Driver           string `mapstructure:"db_driver"         toml:"db_driver"`
	SQLiteDataSource string `mapstructure:"sqlite_datasource" toml:"sqlite_datasource"`
	PGUsername       string `mapstructure:"pg_username"       toml:"pg_username"`
	PGPassword       string `mapstructure:"pg_password"       toml:"pg_password"`
	PGHost           string `mapstructure:"pg_host"           toml:"pg_host"`
	PGPort           int    `mapstructure:"pg_port"           toml:"pg_port"`
	PGDBName         string `mapstructure:"pg_db_name"        toml:"pg_db_name"`
	PGParams         string `mapstructure:"pg_params"         toml:"pg_params"`
	LogSQLQueries    bool   `mapstructure:"log_sql_queries"   toml:"log_sql_queries"`
}

// KafkaConfiguration represents configuration of Kafka brokers and topics
// used to publish calculation events
type KafkaConfiguration struct {
	Enabled          bool          `mapstructure:"enabled"           toml:"enabled"`
	Addresses        string        `mapstructure:"addresses"         toml:"addresses"`
	SecurityProtocol string        `mapstructure:"security_protocol" toml:"security_protocol"`
	CertPath         string        `mapstructure:"cert_path"         toml:"cert_path"`
	SaslMechanism    string        `mapstructure:"sasl_mechanism"    toml:"sasl_mechanism"`
	SaslUsername     string        `mapstructure:"sasl_username"     toml:"sasl_username"`
	SaslPassword     string        `mapstructure:"sasl_password"     toml:"sasl_password"`
	Topic            string        `mapstructure:"topic"             toml:"topic"`
	Timeout          time.Duration `mapstructure:"timeout"           toml:"timeout"`
}

// AMQPConfiguration represents configuration of AMQP (RabbitMQ) broker
// used to publish calculation events
type AMQPConfiguration struct {
	Enabled    bool          `mapstructure:"enabled"     toml:"enabled"`
	URL        string        `mapstructure:"url"         toml:"url"`
	Exchange   string        `mapstructure:"exchange"    toml:"exchange"`
	RoutingKey string        `mapstructure:"routing_key" toml:"routing_key"`
	Timeout    time.Duration `mapstructure:"timeout"     toml:"timeout"`
}

// MetricsConfiguration holds metrics related configuration
type MetricsConfiguration struct {
	Job              string        `mapstructure:"job_name"           toml:"job_name"`
	Namespace        string        `mapstructure:"namespace"          toml:"namespace"`
	GatewayURL       string        `mapstructure:"gateway_url"        toml:"gateway_url"`
	GatewayAuthToken string        `mapstructure:"gateway_auth_token" toml:"gateway_auth_token"`
	Retries          int           `mapstructure:"retries"            toml:"retries"`
	RetryAfter       time.Duration `mapstructure:"retry_after"        toml:"retry_after"`
}

// CleanerConfiguration represents configuration for the history cleaner
type CleanerConfiguration struct {
	// MaxAge is specification of max age for records to be cleaned
	MaxAge string `mapstructure:"max_age" toml:"max_age"`
}

// ProcessingConfiguration represents configuration of expression
// processing
type ProcessingConfiguration struct {
	// MaxExpressionLength limits length of expressions accepted by the
	// service, zero means no limit
	MaxExpressionLength int `mapstructure:"max_expression_length" toml:"max_expression_length"`

	// StoreFailed enables storing calculations without result into the
	// history
	StoreFailed bool `mapstructure:"store_failed" toml:"store_failed"`
}

// LoadConfiguration loads configuration from defaultConfigFile, file set in
// configFileEnvVariableName or from env
func LoadConfiguration(configFileEnvVariableName, defaultConfigFile string) (ConfigStruct, error) {
	var config ConfigStruct

	v := viper.New()

	// env. variable holding name of configuration file
	configFile, specified := os.LookupEnv(configFileEnvVariableName)
	if specified {
		// we need to separate the directory name and filename without
		// extension
		directory, basename := filepath.Split(configFile)
		file := strings.TrimSuffix(basename, filepath.Ext(basename))
		// parse the configuration
		v.SetConfigName(file)
		v.AddConfigPath(directory)
	} else {
		log.Info().Str("filename", defaultConfigFile).Msg("Parsing configuration file")
		// parse the configuration
		v.SetConfigName(defaultConfigFile)
		v.AddConfigPath(".")
	}

	// try to read the whole configuration
	err := v.ReadInConfig()
	var notFoundError viper.ConfigFileNotFoundError
	if !specified && errors.As(err, &notFoundError) {
		// If config file is not present (which might be correct in
		// some environment) we need to read configuration from
		// environment variables The problem is that Viper is not smart
		// enough to understand the structure of config by itself, so
		// we need to read fake config file
		fakeTomlConfigWriter := new(bytes.Buffer)

		err := toml.NewEncoder(fakeTomlConfigWriter).Encode(config)
		if err != nil {
			return config, err
		}

		fakeTomlConfig := fakeTomlConfigWriter.String()

		v.SetConfigType("toml")

		err = v.ReadConfig(strings.NewReader(fakeTomlConfig))
		if err != nil {
			return config, err
		}
	} else if err != nil {
		// error is processed on caller side
		return config, fmt.Errorf("fatal error config file: %s", err)
	}

	// override config from env if there's variable in env
	v.AutomaticEnv()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "__"))

	err = v.Unmarshal(&config)
	if err != nil {
		return config, err
	}

	if clowder.IsClowderEnabled() {
		// can not use Zerolog at this moment!
		fmt.Fprintln(os.Stderr, "Clowder is enabled")

		updateBrokerCfgFromClowder(&config)
		updateStorageCfgFromClowder(&config)
	} else {
		// can not use Zerolog at this moment!
		fmt.Fprintln(os.Stderr, "Clowder is disabled")
	}

	// everything's should be ok
	return config, nil
}

// updateBrokerCfgFromClowder replaces Kafka address and topic by values
// provided by Clowder
func updateBrokerCfgFromClowder(configuration *ConfigStruct) {
	if clowder.LoadedConfig == nil || clowder.LoadedConfig.Kafka == nil {
		fmt.Fprintln(os.Stderr, "No Kafka configuration available in Clowder, using default one")
		return
	}

	brokers := clowder.LoadedConfig.Kafka.Brokers
	if len(brokers) > 0 {
		addresses := make([]string, 0, len(brokers))
		for _, broker := range brokers {
			if broker.Port != nil {
				addresses = append(addresses, fmt.Sprintf("%s:%d", broker.Hostname, *broker.Port))
			} else {
				addresses = append(addresses, broker.Hostname)
			}
		}
		configuration.Kafka.Addresses = strings.Join(addresses, ",")

		// SASL configuration of the first broker is used
		broker := brokers[0]
		if broker.Sasl != nil {
			if broker.Sasl.SecurityProtocol != nil {
				configuration.Kafka.SecurityProtocol = *broker.Sasl.SecurityProtocol
			}
			if broker.Sasl.SaslMechanism != nil {
				configuration.Kafka.SaslMechanism = *broker.Sasl.SaslMechanism
			}
			if broker.Sasl.Username != nil {
				configuration.Kafka.SaslUsername = *broker.Sasl.Username
			}
			if broker.Sasl.Password != nil {
				configuration.Kafka.SaslPassword = *broker.Sasl.Password
			}
		}
	}

	if topicCfg, ok := clowder.KafkaTopics[configuration.Kafka.Topic]; ok {
		configuration.Kafka.Topic = topicCfg.Name
	} else {
		fmt.Fprintf(os.Stderr, "Topic %s not found in Clowder configuration\n", configuration.Kafka.Topic)
	}
}

// updateStorageCfgFromClowder replaces PostgreSQL connection settings by
// values provided by Clowder
func updateStorageCfgFromClowder(configuration *ConfigStruct) {
	if clowder.LoadedConfig == nil || clowder.LoadedConfig.Database == nil {
		fmt.Fprintln(os.Stderr, "No database configuration available in Clowder, using default one")
		return
	}

	database := clowder.LoadedConfig.Database
	configuration.Storage.PGDBName = database.Name
	configuration.Storage.PGHost = database.Hostname
	configuration.Storage.PGPort = database.Port
	configuration.Storage.PGUsername = database.Username
	configuration.Storage.PGPassword = database.Password
	if database.SslMode != "" {
		configuration.Storage.PGParams = "sslmode=" + database.SslMode
	}
}

// GetStorageConfiguration returns storage configuration
func GetStorageConfiguration(config *ConfigStruct) StorageConfiguration {
	return config.Storage
}

// GetLoggingConfiguration returns logging configuration
func GetLoggingConfiguration(config *ConfigStruct) logger.LoggingConfiguration {
	return config.Logging
}

// GetCloudWatchConfiguration returns cloudwatch configuration
func GetCloudWatchConfiguration(config *ConfigStruct) logger.CloudWatchConfiguration {
	return config.CloudWatch
}

// GetSentryLoggingConfiguration returns the sentry log configuration
func GetSentryLoggingConfiguration(config *ConfigStruct) logger.SentryLoggingConfiguration {
	return config.Sentry
}

// GetKafkaZerologConfiguration returns the kafkazerolog configuration
func GetKafkaZerologConfiguration(config *ConfigStruct) logger.KafkaZerologConfiguration {
	return config.KafkaZerolog
}

// GetKafkaBrokerConfiguration returns kafka broker configuration
func GetKafkaBrokerConfiguration(config *ConfigStruct) KafkaConfiguration {
	return config.Kafka
}

// GetAMQPBrokerConfiguration returns AMQP broker configuration
func GetAMQPBrokerConfiguration(config *ConfigStruct) AMQPConfiguration {
	return config.AMQP
}

// GetMetricsConfiguration returns metrics configuration
func GetMetricsConfiguration(config *ConfigStruct) MetricsConfiguration {
	return config.Metrics
}

// GetCleanerConfiguration returns cleaner configuration
func GetCleanerConfiguration(config *ConfigStruct) CleanerConfiguration {
	return config.Cleaner
}

// GetProcessingConfiguration returns processing configuration
func GetProcessingConfiguration(config *ConfigStruct) ProcessingConfiguration {
	return config.Processing
}
