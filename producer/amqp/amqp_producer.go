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

// Package amqp contains an implementation of Producer interface that
// publishes calculation events into an exchange of AMQP 0-9-1 broker
// (RabbitMQ).
package amqp

// Generated documentation is available at:
// https://pkg.go.dev/github.com/RedHatInsights/rpn-calculator/producer/amqp

import (
	"context"
	"fmt"
	"io"
	"sync/atomic"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog/log"

	"github.com/RedHatInsights/rpn-calculator/conf"
	"github.com/RedHatInsights/rpn-calculator/types"
)

// DefaultTimeout is used for publishing when no timeout is configured
const DefaultTimeout = 10 * time.Second

const contentTypeJSON = "application/json"

// Channel is the subset of *amqp.Channel used by the producer
type Channel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// Producer is an implementation of Producer interface
type Producer struct {
	Configuration conf.AMQPConfiguration
	Channel       Channel
	Connection    io.Closer

	sequence atomic.Int64
}

// New constructs new implementation of Producer interface. Connection to
// the broker is established immediately.
func New(config *conf.ConfigStruct) (*Producer, error) {
	amqpConfig := conf.GetAMQPBrokerConfiguration(config)

	connection, err := amqp.Dial(amqpConfig.URL)
	if err != nil {
		log.Error().Err(err).Str("exchange", amqpConfig.Exchange).Msg("unable to connect to AMQP broker")
		return nil, fmt.Errorf("dial amqp: %w", err)
	}

	channel, err := connection.Channel()
	if err != nil {
		log.Error().Err(err).Msg("unable to open AMQP channel")
		if closeErr := connection.Close(); closeErr != nil {
			log.Error().Err(closeErr).Msg("unable to close AMQP connection")
		}
		return nil, fmt.Errorf("open channel: %w", err)
	}

	return NewWithChannel(amqpConfig, channel, connection), nil
}

// NewWithChannel constructs producer from already opened channel
func NewWithChannel(configuration conf.AMQPConfiguration, channel Channel, connection io.Closer) *Producer {
	return &Producer{
		Configuration: configuration,
		Channel:       channel,
		Connection:    connection,
	}
}

// ProduceMessage publishes message into configured exchange with configured
// routing key. AMQP has no partitions so partition ID is always zero and
// offset is a sequence number of message published by this producer.
func (producer *Producer) ProduceMessage(msg types.ProducerMessage) (partitionID int32, offset int64, err error) {
	// no-op when producer is disabled
	if !producer.Configuration.Enabled {
		return
	}

	timeout := producer.Configuration.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	err = producer.Channel.PublishWithContext(
		ctx,
		producer.Configuration.Exchange,
		producer.Configuration.RoutingKey,
		false,
		false,
		amqp.Publishing{
			ContentType:  contentTypeJSON,
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now(),
			Body:         msg,
		},
	)
	if err != nil {
		log.Error().Err(err).
			Str("exchange", producer.Configuration.Exchange).
			Str("routing key", producer.Configuration.RoutingKey).
			Msg("failed to publish message to AMQP broker")
		return 0, -1, fmt.Errorf("publish to %s/%s: %w",
			producer.Configuration.Exchange, producer.Configuration.RoutingKey, err)
	}

	offset = producer.sequence.Add(1)
	log.Info().
		Str("exchange", producer.Configuration.Exchange).
		Int64("sequence", offset).
		Msg("message published")
	return 0, offset, nil
}

// Close closes the channel and the connection to the broker
func (producer *Producer) Close() error {
	log.Info().Msg("Shutting down AMQP producer")

	var firstErr error
	if producer.Channel != nil {
		if err := producer.Channel.Close(); err != nil {
			log.Error().Err(err).Msg("unable to close AMQP channel")
			firstErr = err
		}
	}
	if producer.Connection != nil {
		if err := producer.Connection.Close(); err != nil {
			log.Error().Err(err).Msg("unable to close AMQP connection")
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}
