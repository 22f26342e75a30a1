// Package events publishes pipeline run outcomes to Kafka so downstream
// services can react to finished transcriptions.
package events

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/IBM/sarama"
	"github.com/rs/zerolog"
)

// RunEvent describes one finished (or failed) pipeline run.
type RunEvent struct {
	RunID          string    `json:"run_id"`
	Filename       string    `json:"filename"`
	Status         string    `json:"status"` // "completed" or "failed"
	Stage          string    `json:"stage,omitempty"`
	Error          string    `json:"error,omitempty"`
	SegmentCount   int       `json:"segment_count,omitempty"`
	FailedSegments int       `json:"failed_segments,omitempty"`
	FinishedAt     time.Time `json:"finished_at"`
}

// Publisher sends run events to a single Kafka topic.
type Publisher struct {
	producer sarama.SyncProducer
	topic    string
	log      zerolog.Logger
}

// NewPublisher connects a synchronous producer to the given brokers.
func NewPublisher(brokers []string, topic string, log zerolog.Logger) (*Publisher, error) {
	cfg := sarama.NewConfig()
	cfg.Version = sarama.V3_6_0_0
	cfg.Producer.Return.Successes = true
	cfg.Producer.RequiredAcks = sarama.WaitForLocal

	producer, err := sarama.NewSyncProducer(brokers, cfg)
	if err != nil {
		return nil, fmt.Errorf("create kafka producer: %w", err)
	}

	return &Publisher{producer: producer, topic: topic, log: log}, nil
}

// Publish sends one event, keyed by run ID so events for a run stay in
// partition order.
func (p *Publisher) Publish(event RunEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal run event: %w", err)
	}

	partition, offset, err := p.producer.SendMessage(&sarama.ProducerMessage{
		Topic: p.topic,
		Key:   sarama.StringEncoder(event.RunID),
		Value: sarama.ByteEncoder(payload),
	})
	if err != nil {
		return fmt.Errorf("publish run event: %w", err)
	}

	p.log.Debug().Str("run_id", event.RunID).Str("status", event.Status).
		Int32("partition", partition).Int64("offset", offset).
		Msg("run event published")
	return nil
}

func (p *Publisher) Close() error {
	return p.producer.Close()
}
