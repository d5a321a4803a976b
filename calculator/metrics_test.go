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

package calculator_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/RedHatInsights/rpn-calculator/calculator"
	"github.com/RedHatInsights/rpn-calculator/conf"
)

// newPushGateway starts fake push gateway that responds with given status
// codes in sequence, the last one is repeated
func newPushGateway(pushes *atomic.Int32, statusCodes ...int) *httptest.Server {
	return httptest.NewServer(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			i := int(pushes.Add(1)) - 1
			if i >= len(statusCodes) {
				i = len(statusCodes) - 1
			}
			w.Header().Set("Content-Type", `text/plain; charset=utf-8`)
			w.WriteHeader(statusCodes[i])
		}),
	)
}

// TestAddMetricsWithNamespace function checks the basic behaviour of function
// AddMetricsWithNamespace from `metrics.go`
func TestAddMetricsWithNamespace(t *testing.T) {
	// add all metrics into the namespace "foobar"
	calculator.AddMetricsWithNamespace("foobar")

	// check the registration
	assert.NotNil(t, calculator.ExpressionsReceived)
	assert.NotNil(t, calculator.ExpressionsEvaluated)
	assert.NotNil(t, calculator.ExpressionsRejected)
	assert.NotNil(t, calculator.ExpressionsMalformed)
	assert.NotNil(t, calculator.StorageSetupErrors)
	assert.NotNil(t, calculator.StorageWriteErrors)
	assert.NotNil(t, calculator.ProducerSetupErrors)
	assert.NotNil(t, calculator.EventsSent)
	assert.NotNil(t, calculator.EventsNotSent)

	// registering metrics again must not panic
	assert.NotPanics(t, func() { calculator.AddMetricsWithNamespace("foobar") })
}

// TestPushMetrics checks that metrics are pushed to the gateway under the
// configured job
func TestPushMetrics(t *testing.T) {
	var (
		pushes atomic.Int32
		path   atomic.Value
	)

	testServer := httptest.NewServer(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			pushes.Add(1)
			path.Store(r.URL.Path)
			w.WriteHeader(http.StatusOK)
		}),
	)
	defer testServer.Close()

	metricsConf := conf.MetricsConfiguration{
		Job:        "rpn_calculator",
		GatewayURL: testServer.URL,
	}

	err := calculator.PushMetrics(metricsConf)
	assert.NoError(t, err)
	assert.Equal(t, int32(1), pushes.Load())
	assert.Equal(t, "/metrics/job/rpn_calculator", path.Load())
}

// TestPushMetricsWithoutHTTPPrefix checks that gateway address without
// protocol is accepted
func TestPushMetricsWithoutHTTPPrefix(t *testing.T) {
	var pushes atomic.Int32

	testServer := newPushGateway(&pushes, http.StatusOK)
	defer testServer.Close()

	metricsConf := conf.MetricsConfiguration{
		Job:        "rpn_calculator",
		GatewayURL: strings.TrimPrefix(testServer.URL, "http://"),
	}

	err := calculator.PushMetrics(metricsConf)
	assert.NoError(t, err)
	assert.Equal(t, int32(1), pushes.Load())
}

// TestPushMetricsAuthorization checks that authorization header is added
// when token is configured
func TestPushMetricsAuthorization(t *testing.T) {
	var header atomic.Value

	testServer := httptest.NewServer(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header.Store(r.Header.Get("Authorization"))
			w.WriteHeader(http.StatusOK)
		}),
	)
	defer testServer.Close()

	metricsConf := conf.MetricsConfiguration{
		Job:              "rpn_calculator",
		GatewayURL:       testServer.URL,
		GatewayAuthToken: "dXNlcjpwYXNzd29yZA==",
	}

	err := calculator.PushMetrics(metricsConf)
	assert.NoError(t, err)
	assert.Equal(t, "Basic dXNlcjpwYXNzd29yZA==", header.Load())
}

// TestPushMetricsGatewayFailing checks that error status returned by the
// gateway is reported
func TestPushMetricsGatewayFailing(t *testing.T) {
	var pushes atomic.Int32

	testServer := newPushGateway(&pushes, http.StatusBadGateway)
	defer testServer.Close()

	metricsConf := conf.MetricsConfiguration{
		Job:        "rpn_calculator",
		GatewayURL: testServer.URL,
	}

	err := calculator.PushMetrics(metricsConf)
	assert.Error(t, err)
}

// TestPushMetricsGatewayNotFailingWithRetriesThenOk checks that push is
// retried until the gateway accepts metrics
func TestPushMetricsGatewayNotFailingWithRetriesThenOk(t *testing.T) {
	var pushes atomic.Int32

	testServer := newPushGateway(&pushes,
		http.StatusBadGateway, http.StatusBadGateway, http.StatusBadGateway, http.StatusOK)
	defer testServer.Close()

	metricsConf := conf.MetricsConfiguration{
		Job:        "rpn_calculator",
		Namespace:  "rpn_calculator",
		GatewayURL: testServer.URL,
		RetryAfter: 10 * time.Millisecond,
		Retries:    10,
	}

	err := calculator.PushMetricsWithRetries(metricsConf)
	assert.NoError(t, err)
	assert.Equal(t, int32(4), pushes.Load(), "expected exactly 4 pushes")
}

// TestPushMetricsGatewayNotFailingWithRetries checks that push is not
// retried when the first attempt is successful
func TestPushMetricsGatewayNotFailingWithRetries(t *testing.T) {
	var pushes atomic.Int32

	testServer := newPushGateway(&pushes, http.StatusOK)
	defer testServer.Close()

	metricsConf := conf.MetricsConfiguration{
		Job:        "rpn_calculator",
		GatewayURL: testServer.URL,
		RetryAfter: 10 * time.Millisecond,
		Retries:    10,
	}

	err := calculator.PushMetricsWithRetries(metricsConf)
	assert.NoError(t, err)
	assert.Equal(t, int32(1), pushes.Load(), "expected exactly one push")
}

// TestPushMetricsGatewayFailingAllRetries checks that error is returned
// when all retries fail
func TestPushMetricsGatewayFailingAllRetries(t *testing.T) {
	var pushes atomic.Int32

	testServer := newPushGateway(&pushes, http.StatusBadGateway)
	defer testServer.Close()

	metricsConf := conf.MetricsConfiguration{
		Job:        "rpn_calculator",
		GatewayURL: testServer.URL,
		RetryAfter: 10 * time.Millisecond,
		Retries:    3,
	}

	err := calculator.PushMetricsWithRetries(metricsConf)
	assert.Error(t, err)
	assert.Equal(t, int32(4), pushes.Load(), "expected first push and three retries")
}

// TestPushMetricsWithoutRetries checks that push is not retried when
// retries are not configured
func TestPushMetricsWithoutRetries(t *testing.T) {
	var pushes atomic.Int32

	testServer := newPushGateway(&pushes, http.StatusBadGateway)
	defer testServer.Close()

	metricsConf := conf.MetricsConfiguration{
		Job:        "rpn_calculator",
		GatewayURL: testServer.URL,
	}

	err := calculator.PushMetricsWithRetries(metricsConf)
	assert.Error(t, err)
	assert.Equal(t, int32(1), pushes.Load())
}
