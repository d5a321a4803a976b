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

package conf_test

// Benchmark for config module

import (
	"os"
	"testing"
	"time"

	conf "github.com/RedHatInsights/rpn-calculator/conf"
)

// Configuration-related constants
const (
	configFileEnvName = "RPN_CALCULATOR_CONFIG_FILE"
	configFileName    = "../tests/benchmark"
)

// loadConfiguration function loads configuration prepared to be used by
// benchmarks
func loadConfiguration() (conf.ConfigStruct, error) {
	os.Clearenv()

	err := os.Setenv(configFileEnvName, configFileName)
	if err != nil {
		return conf.ConfigStruct{}, err
	}

	config, err := conf.LoadConfiguration(configFileEnvName, configFileName)
	if err != nil {
		return conf.ConfigStruct{}, err
	}

	return config, nil
}

func mustLoadBenchmarkConfiguration(b *testing.B) conf.ConfigStruct {
	configuration, err := loadConfiguration()
	if err != nil {
		b.Fatal(err)
	}
	return configuration
}

// BenchmarkLoadConfiguration measures the speed of LoadConfiguration
// function from the conf module.
func BenchmarkLoadConfiguration(b *testing.B) {
	for i := 0; i < b.N; i++ {
		_, err := loadConfiguration()
		if err != nil {
			b.Fatal(err)
		}
	}
}

// BenchmarkGetProcessingConfiguration measures the speed of
// GetProcessingConfiguration function from the conf module.
func BenchmarkGetProcessingConfiguration(b *testing.B) {
	configuration := mustLoadBenchmarkConfiguration(b)

	for i := 0; i < b.N; i++ {
		// call benchmarked function
		m := conf.GetProcessingConfiguration(&configuration)

		b.StopTimer()
		if m.MaxExpressionLength != 1024 {
			b.Fatal("Wrong configuration: max_expression_length is not set to 1024")
		}
		if !m.StoreFailed {
			b.Fatal("Wrong configuration: store_failed is set to false")
		}
		b.StartTimer()
	}
}

// BenchmarkGetCleanerConfiguration measures the speed of
// GetCleanerConfiguration function from the conf module.
func BenchmarkGetCleanerConfiguration(b *testing.B) {
	configuration := mustLoadBenchmarkConfiguration(b)

	for i := 0; i < b.N; i++ {
		// call benchmarked function
		m := conf.GetCleanerConfiguration(&configuration)

		b.StopTimer()
		if m.MaxAge != "90 days" {
			b.Fatal("Wrong configuration: max_age = '" + m.MaxAge + "'")
		}
		b.StartTimer()
	}
}

// BenchmarkGetStorageConfiguration measures the speed of
// GetStorageConfiguration function from the conf module.
func BenchmarkGetStorageConfiguration(b *testing.B) {
	configuration := mustLoadBenchmarkConfiguration(b)

	for i := 0; i < b.N; i++ {
		// call benchmarked function
		m := conf.GetStorageConfiguration(&configuration)

		b.StopTimer()
		if m.Driver != "sqlite3" {
			b.Fatal("Wrong configuration: db_driver = '" + m.Driver + "'")
		}
		if m.SQLiteDataSource != ":memory:" {
			b.Fatal("Wrong configuration: sqlite_datasource = '" + m.SQLiteDataSource + "'")
		}
		b.StartTimer()
	}
}

// BenchmarkGetLoggingConfiguration measures the speed of
// GetLoggingConfiguration function from the conf module.
func BenchmarkGetLoggingConfiguration(b *testing.B) {
	configuration := mustLoadBenchmarkConfiguration(b)

	for i := 0; i < b.N; i++ {
		// call benchmarked function
		m := conf.GetLoggingConfiguration(&configuration)

		b.StopTimer()
		if m.Debug {
			b.Fatal("Wrong configuration: debug is set to true")
		}
		if m.LogLevel != "info" {
			b.Fatal("Wrong configuration: log_level = '" + m.LogLevel + "'")
		}
		b.StartTimer()
	}
}

// BenchmarkGetKafkaBrokerConfiguration measures the speed of
// GetKafkaBrokerConfiguration function from the conf module.
func BenchmarkGetKafkaBrokerConfiguration(b *testing.B) {
	configuration := mustLoadBenchmarkConfiguration(b)

	for i := 0; i < b.N; i++ {
		// call benchmarked function
		m := conf.GetKafkaBrokerConfiguration(&configuration)

		b.StopTimer()
		if !m.Enabled {
			b.Fatal("Wrong configuration: enabled is set to false")
		}
		if m.Addresses != "localhost:9092" {
			b.Fatal("Wrong configuration: addresses = '" + m.Addresses + "'")
		}
		if m.Topic != "rpn_calculator_benchmark_events" {
			b.Fatal("Wrong configuration: topic = '" + m.Topic + "'")
		}
		if m.Timeout != 10*time.Second {
			b.Fatal("Wrong configuration: timeout = '" + m.Timeout.String() + "'")
		}
		b.StartTimer()
	}
}

// BenchmarkGetAMQPBrokerConfiguration measures the speed of
// GetAMQPBrokerConfiguration function from the conf module.
func BenchmarkGetAMQPBrokerConfiguration(b *testing.B) {
	configuration := mustLoadBenchmarkConfiguration(b)

	for i := 0; i < b.N; i++ {
		// call benchmarked function
		m := conf.GetAMQPBrokerConfiguration(&configuration)

		b.StopTimer()
		if !m.Enabled {
			b.Fatal("Wrong configuration: enabled is set to false")
		}
		if m.Exchange != "calculations" {
			b.Fatal("Wrong configuration: exchange = '" + m.Exchange + "'")
		}
		if m.RoutingKey != "calculation.done" {
			b.Fatal("Wrong configuration: routing_key = '" + m.RoutingKey + "'")
		}
		b.StartTimer()
	}
}

// BenchmarkGetMetricsConfiguration measures the speed of
// GetMetricsConfiguration function from the conf module.
func BenchmarkGetMetricsConfiguration(b *testing.B) {
	configuration := mustLoadBenchmarkConfiguration(b)

	for i := 0; i < b.N; i++ {
		// call benchmarked function
		m := conf.GetMetricsConfiguration(&configuration)

		b.StopTimer()
		if m.Namespace != "rpn_calculator" {
			b.Fatal("Wrong configuration: namespace = '" + m.Namespace + "'")
		}
		if m.GatewayURL != "localhost:9091" {
			b.Fatal("Wrong configuration: gateway_url = '" + m.GatewayURL + "'")
		}
		if m.Retries != 3 {
			b.Fatal("Wrong configuration: retries is not set to 3")
		}
		b.StartTimer()
	}
}
