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

// Package kafka contains an implementation of Producer interface that can be
// used to produce (that is send) calculation events to properly configured
// Kafka broker. Each event is keyed by calculation ID and carries headers
// with content type and calculation mode.
package kafka

// Generated documentation is available at:
// https://pkg.go.dev/github.com/RedHatInsights/rpn-calculator/producer/kafka

import (
	"encoding/json"
	"errors"
	"strings"

	tlsutils "github.com/RedHatInsights/insights-operator-utils/tls"
	"github.com/Shopify/sarama"
	"github.com/rs/zerolog/log"

	"github.com/RedHatInsights/rpn-calculator/conf"
	"github.com/RedHatInsights/rpn-calculator/types"
)

// Errors reported for incomplete broker configuration
var (
	ErrNoBrokerAddress = errors.New("no Kafka broker address is configured")
	ErrNoTopic         = errors.New("no Kafka topic is configured")
)

// Headers attached to each calculation event
const (
	ClientID              = "rpn-calculator"
	ContentTypeHeader     = "content-type"
	EventTypeHeader       = "event-type"
	CalculationModeHeader = "calculation-mode"

	contentTypeJSON      = "application/json"
	calculationEventType = "calculation"
)

// Producer is an implementation of Producer interface
type Producer struct {
	Configuration conf.KafkaConfiguration
	Producer      sarama.SyncProducer
}

// New constructs new implementation of Producer interface
func New(config *conf.ConfigStruct) (*Producer, error) {
	kafkaConfig := conf.GetKafkaBrokerConfiguration(config)

	addresses := BrokerAddresses(kafkaConfig.Addresses)
	if len(addresses) == 0 {
		log.Error().Msg(ErrNoBrokerAddress.Error())
		return nil, ErrNoBrokerAddress
	}
	if kafkaConfig.Topic == "" {
		log.Error().Msg(ErrNoTopic.Error())
		return nil, ErrNoTopic
	}

	saramaConfig, err := SaramaConfigFromBrokerConfig(&kafkaConfig)
	if err != nil {
		log.Error().Err(err).Msg("Unable to create a valid Kafka configuration")
		return nil, err
	}

	producer, err := sarama.NewSyncProducer(addresses, saramaConfig)
	if err != nil {
		log.Error().Strs("Kafka addresses", addresses).Err(err).Msg("Unable to start a Kafka producer")
		return nil, err
	}

	log.Info().
		Strs("Kafka addresses", addresses).
		Str("topic", kafkaConfig.Topic).
		Msg("Kafka producer for calculation events started")

	return &Producer{
		Configuration: kafkaConfig,
		Producer:      producer,
	}, nil
}

// BrokerAddresses splits comma separated list of broker addresses, empty
// items are skipped
func BrokerAddresses(addresses string) []string {
	var result []string
	for _, address := range strings.Split(addresses, ",") {
		address = strings.TrimSpace(address)
		if address != "" {
			result = append(result, address)
		}
	}
	return result
}

// ProduceMessage sends calculation event to the configured topic. It
// returns partition ID and offset of the new message.
func (producer *Producer) ProduceMessage(msg types.ProducerMessage) (partitionID int32, offset int64, err error) {
	// no-op when producer is disabled
	if !producer.Configuration.Enabled {
		return
	}

	producerMsg := newProducerMessage(producer.Configuration.Topic, msg)

	partitionID, offset, err = producer.Producer.SendMessage(producerMsg)
	if err != nil {
		log.Error().Err(err).Str("topic", producer.Configuration.Topic).Msg("Failed to send calculation event to Kafka")
		return
	}

	log.Debug().
		Int32("partition", partitionID).
		Int64("offset", offset).
		Msg("Calculation event sent")
	return
}

// newProducerMessage wraps calculation event into Kafka message. Calculation
// ID is used as the message key. Payload that is not a calculation event is
// sent without key and mode header.
func newProducerMessage(topic string, msg types.ProducerMessage) *sarama.ProducerMessage {
	producerMsg := &sarama.ProducerMessage{
		Topic: topic,
		Value: sarama.ByteEncoder(msg),
		Headers: []sarama.RecordHeader{
			{Key: []byte(ContentTypeHeader), Value: []byte(contentTypeJSON)},
			{Key: []byte(EventTypeHeader), Value: []byte(calculationEventType)},
		},
	}

	var event types.CalculationEvent
	if err := json.Unmarshal(msg, &event); err != nil || event.ID == "" {
		return producerMsg
	}

	producerMsg.Key = sarama.StringEncoder(event.ID)
	producerMsg.Headers = append(producerMsg.Headers, sarama.RecordHeader{
		Key:   []byte(CalculationModeHeader),
		Value: []byte(event.Mode),
	})
	return producerMsg
}

// Close allow the Sarama producer to be gracefully closed
func (producer *Producer) Close() error {
	log.Info().Msg("Shutting down kafka producer")
	if err := producer.Producer.Close(); err != nil {
		log.Error().Err(err).Msg("Unable to close Kafka producer")
		return err
	}

	return nil
}

// SaramaConfigFromBrokerConfig prepares Sarama configuration for sync
// producer with TLS and SASL settings taken from broker configuration
func SaramaConfigFromBrokerConfig(cfg *conf.KafkaConfiguration) (*sarama.Config, error) {
	saramaConfig := sarama.NewConfig()
	saramaConfig.Version = sarama.V2_8_0_0
	saramaConfig.ClientID = ClientID

	saramaConfig.Producer.RequiredAcks = sarama.WaitForAll
	saramaConfig.Producer.Return.Successes = true

	if cfg.Timeout > 0 {
		saramaConfig.Net.DialTimeout = cfg.Timeout
		saramaConfig.Net.ReadTimeout = cfg.Timeout
		saramaConfig.Net.WriteTimeout = cfg.Timeout
		saramaConfig.Producer.Timeout = cfg.Timeout
	}

	if err := configureTLS(saramaConfig, cfg); err != nil {
		return nil, err
	}
	configureSASL(saramaConfig, cfg)

	return saramaConfig, nil
}

// configureTLS enables TLS for SSL and SASL_SSL protocols. Certificate is
// loaded for plain SSL protocol only.
func configureTLS(saramaConfig *sarama.Config, cfg *conf.KafkaConfiguration) error {
	if !strings.Contains(cfg.SecurityProtocol, "SSL") {
		return nil
	}
	saramaConfig.Net.TLS.Enable = true

	if strings.EqualFold(cfg.SecurityProtocol, "SSL") && cfg.CertPath != "" {
		tlsConfig, err := tlsutils.NewTLSConfig(cfg.CertPath)
		if err != nil {
			log.Error().Str("cert path", cfg.CertPath).Msg("Unable to load TLS config")
			return err
		}
		saramaConfig.Net.TLS.Config = tlsConfig
	}
	return nil
}

// configureSASL sets SASL authentication for SASL_* protocols. SCRAM
// client is prepared for SCRAM-SHA-256 and SCRAM-SHA-512 mechanisms.
func configureSASL(saramaConfig *sarama.Config, cfg *conf.KafkaConfiguration) {
	if !strings.HasPrefix(cfg.SecurityProtocol, "SASL_") {
		return
	}

	log.Info().Str("mechanism", cfg.SaslMechanism).Msg("Configuring SASL authentication")
	saramaConfig.Net.SASL.Enable = true
	saramaConfig.Net.SASL.User = cfg.SaslUsername
	saramaConfig.Net.SASL.Password = cfg.SaslPassword
	saramaConfig.Net.SASL.Mechanism = sarama.SASLMechanism(cfg.SaslMechanism)

	switch {
	case strings.EqualFold(cfg.SaslMechanism, sarama.SASLTypeSCRAMSHA512):
		saramaConfig.Net.SASL.Mechanism = sarama.SASLTypeSCRAMSHA512
		saramaConfig.Net.SASL.Handshake = true
		saramaConfig.Net.SASL.SCRAMClientGeneratorFunc = func() sarama.SCRAMClient {
			return &SCRAMClient{HashGeneratorFcn: SHA512}
		}
	case strings.EqualFold(cfg.SaslMechanism, sarama.SASLTypeSCRAMSHA256):
		saramaConfig.Net.SASL.Mechanism = sarama.SASLTypeSCRAMSHA256
		saramaConfig.Net.SASL.Handshake = true
		saramaConfig.Net.SASL.SCRAMClientGeneratorFunc = func() sarama.SCRAMClient {
			return &SCRAMClient{HashGeneratorFcn: SHA256}
		}
	}
}
