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

// File metrics contains all metrics that needs to be exposed to Prometheus and
// indirectly to Grafana.

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/push"
	"github.com/rs/zerolog/log"

	"github.com/RedHatInsights/rpn-calculator/conf"
	"github.com/RedHatInsights/rpn-calculator/utils"
)

// Metrics names
const (
	ExpressionsReceivedName  = "expressions_received"
	ExpressionsEvaluatedName = "expressions_evaluated"
	ExpressionsRejectedName  = "expressions_rejected"
	ExpressionsMalformedName = "expressions_malformed"
	StorageSetupErrorsName   = "storage_setup_errors"
	StorageWriteErrorsName   = "storage_write_errors"
	ProducerSetupErrorsName  = "producer_setup_errors"
	EventsSentName           = "events_sent"
	EventsNotSentName        = "events_not_sent"
)

// Metrics helps
const (
	ExpressionsReceivedHelp  = "The total number of expressions received for evaluation"
	ExpressionsEvaluatedHelp = "The total number of expressions evaluated with result"
	ExpressionsRejectedHelp  = "The total number of expressions without result (invalid characters, empty or too long input)"
	ExpressionsMalformedHelp = "The total number of structurally malformed expressions, including division by zero"
	StorageSetupErrorsHelp   = "The total number of errors when setting up storage connection"
	StorageWriteErrorsHelp   = "The total number of errors when writing calculation into storage"
	ProducerSetupErrorsHelp  = "The total number of errors when setting up Kafka or AMQP producer"
	EventsSentHelp           = "The total number of calculation events sent"
	EventsNotSentHelp        = "The total number of calculation events not sent because of a producer error"
)

// PushGatewayClient is a simple wrapper over http.Client so that prometheus
// can do HTTP requests with the given authentication header
type PushGatewayClient struct {
	AuthToken string

	httpClient http.Client
}

// Do is a simple wrapper over http.Client.Do method that includes
// the authentication header configured in the PushGatewayClient instance
func (pgc *PushGatewayClient) Do(request *http.Request) (*http.Response, error) {
	if pgc.AuthToken != "" {
		log.Debug().Msg("Adding authorization header to HTTP request")
		request.Header.Set("Authorization", "Basic "+pgc.AuthToken)
	} else {
		log.Debug().Msg("No authorization token provided. Making HTTP request without credentials.")
	}
	log.Debug().Str("request", request.URL.String()).Str("method", request.Method).Msg("Pushing metrics to Prometheus push gateway")
	resp, err := pgc.httpClient.Do(request)
	if resp != nil {
		log.Debug().Int("code", resp.StatusCode).Msg("Returned status code")
	}
	return resp, err
}

// ExpressionsReceived shows number of expressions received for evaluation
var ExpressionsReceived = promauto.NewCounter(prometheus.CounterOpts{
	Name: ExpressionsReceivedName,
	Help: ExpressionsReceivedHelp,
})

// ExpressionsEvaluated shows number of expressions evaluated with result
var ExpressionsEvaluated = promauto.NewCounter(prometheus.CounterOpts{
	Name: ExpressionsEvaluatedName,
	Help: ExpressionsEvaluatedHelp,
})

// ExpressionsRejected shows number of expressions without result
var ExpressionsRejected = promauto.NewCounter(prometheus.CounterOpts{
	Name: ExpressionsRejectedName,
	Help: ExpressionsRejectedHelp,
})

// ExpressionsMalformed shows number of structurally malformed expressions
var ExpressionsMalformed = promauto.NewCounter(prometheus.CounterOpts{
	Name: ExpressionsMalformedName,
	Help: ExpressionsMalformedHelp,
})

// StorageSetupErrors shows number of errors when setting up storage
var StorageSetupErrors = promauto.NewCounter(prometheus.CounterOpts{
	Name: StorageSetupErrorsName,
	Help: StorageSetupErrorsHelp,
})

// StorageWriteErrors shows number of errors when writing into storage
var StorageWriteErrors = promauto.NewCounter(prometheus.CounterOpts{
	Name: StorageWriteErrorsName,
	Help: StorageWriteErrorsHelp,
})

// ProducerSetupErrors shows number of errors when setting up producers
var ProducerSetupErrors = promauto.NewCounter(prometheus.CounterOpts{
	Name: ProducerSetupErrorsName,
	Help: ProducerSetupErrorsHelp,
})

// EventsSent shows number of calculation events sent
var EventsSent = promauto.NewCounter(prometheus.CounterOpts{
	Name: EventsSentName,
	Help: EventsSentHelp,
})

// EventsNotSent shows number of calculation events not sent because of a
// producer error
var EventsNotSent = promauto.NewCounter(prometheus.CounterOpts{
	Name: EventsNotSentName,
	Help: EventsNotSentHelp,
})

// AddMetricsWithNamespace register the desired metrics using a given namespace
func AddMetricsWithNamespace(namespace string) {
	// Unregister all metrics and registrer them again
	prometheus.Unregister(ExpressionsReceived)
	prometheus.Unregister(ExpressionsEvaluated)
	prometheus.Unregister(ExpressionsRejected)
	prometheus.Unregister(ExpressionsMalformed)
	prometheus.Unregister(StorageSetupErrors)
	prometheus.Unregister(StorageWriteErrors)
	prometheus.Unregister(ProducerSetupErrors)
	prometheus.Unregister(EventsSent)
	prometheus.Unregister(EventsNotSent)

	ExpressionsReceived = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      ExpressionsReceivedName,
		Help:      ExpressionsReceivedHelp,
	})

	ExpressionsEvaluated = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      ExpressionsEvaluatedName,
		Help:      ExpressionsEvaluatedHelp,
	})

	ExpressionsRejected = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      ExpressionsRejectedName,
		Help:      ExpressionsRejectedHelp,
	})

	ExpressionsMalformed = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      ExpressionsMalformedName,
		Help:      ExpressionsMalformedHelp,
	})

	StorageSetupErrors = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      StorageSetupErrorsName,
		Help:      StorageSetupErrorsHelp,
	})

	StorageWriteErrors = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      StorageWriteErrorsName,
		Help:      StorageWriteErrorsHelp,
	})

	ProducerSetupErrors = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      ProducerSetupErrorsName,
		Help:      ProducerSetupErrorsHelp,
	})

	EventsSent = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      EventsSentName,
		Help:      EventsSentHelp,
	})

	EventsNotSent = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      EventsNotSentName,
		Help:      EventsNotSentHelp,
	})
}

// PushMetrics function pushes the metrics to the configured prometheus push
// gateway
func PushMetrics(metricsConf conf.MetricsConfiguration) error {
	client := PushGatewayClient{metricsConf.GatewayAuthToken, http.Client{}}

	// Creates a pusher to the gateway "$PUSHGW_URL/metrics/job/$(job_name)
	return push.New(utils.SetHTTPPrefix(metricsConf.GatewayURL), metricsConf.Job).
		Collector(ExpressionsReceived).
		Collector(ExpressionsEvaluated).
		Collector(ExpressionsRejected).
		Collector(ExpressionsMalformed).
		Collector(StorageSetupErrors).
		Collector(StorageWriteErrors).
		Collector(ProducerSetupErrors).
		Collector(EventsSent).
		Collector(EventsNotSent).
		Client(&client).
		Push()
}

// PushMetricsWithRetries function pushes the metrics and retries the
// operation configured number of times when the push gateway is not
// available
func PushMetricsWithRetries(metricsConf conf.MetricsConfiguration) error {
	err := PushMetrics(metricsConf)
	if err == nil {
		log.Info().Msg("Metrics pushed successfully")
		return nil
	}

	log.Err(err).Msg(metricsPushFailedMessage)
	if metricsConf.RetryAfter == 0 || metricsConf.Retries == 0 {
		return err
	}

	for i := metricsConf.Retries; i > 0; i-- {
		time.Sleep(metricsConf.RetryAfter)
		log.Info().Msgf("Push metrics. Retrying (%d/%d attempts left)", i, metricsConf.Retries)
		err = PushMetrics(metricsConf)
		if err == nil {
			log.Info().Msg("Metrics pushed successfully")
			return nil
		}
		log.Err(err).Msg(metricsPushFailedMessage)
	}
	return err
}
