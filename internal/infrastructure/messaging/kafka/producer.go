// Package kafka publishes score records to the analytics topic.
// Publication is best-effort: a failed publish is logged and counted
// but never fails the analyze call that produced the record.
package kafka

import (
	"context"
	"encoding/json"
	"sync/atomic"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/kvalencee/alfaia/internal/config"
	"github.com/kvalencee/alfaia/internal/infrastructure/monitoring/logging"
	"github.com/kvalencee/alfaia/pkg/errors"
	"github.com/kvalencee/alfaia/pkg/types/analysis"
)

var ErrProducerClosed = errors.New(errors.ErrCodeMessagingError, "producer closed")

// ScorePublisher emits one message per finished analysis.
type ScorePublisher interface {
	PublishScore(ctx context.Context, rec analysis.ScoreRecord) error
	Close() error
}

// writerInterface abstracts kafka.Writer for testing.
type writerInterface interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Producer writes score records with the learner id as partition key,
// so one learner's history stays ordered within a partition.
type Producer struct {
	writer writerInterface
	logger logging.Logger
	closed atomic.Bool

	published atomic.Int64
	failed    atomic.Int64
}

// NewProducer builds a Producer from configuration.
func NewProducer(cfg config.KafkaConfig, log logging.Logger) *Producer {
	topic := cfg.ScoreTopic
	if topic == "" {
		topic = config.DefaultScoreTopic
	}
	batchTimeout := cfg.BatchTimeout
	if batchTimeout == 0 {
		batchTimeout = 100 * time.Millisecond
	}
	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		MaxAttempts:  cfg.ProducerRetries + 1,
		BatchTimeout: batchTimeout,
		RequiredAcks: kafka.RequiredAcks(cfg.RequiredAcks),
	}
	return &Producer{writer: writer, logger: log}
}

// newProducerWithWriter is the test seam.
func newProducerWithWriter(w writerInterface, log logging.Logger) *Producer {
	return &Producer{writer: w, logger: log}
}

func (p *Producer) PublishScore(ctx context.Context, rec analysis.ScoreRecord) error {
	if p.closed.Load() {
		return ErrProducerClosed
	}
	payload, err := json.Marshal(rec)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeSerialization, "failed to encode score record")
	}
	msg := kafka.Message{
		Key:   []byte(rec.LearnerID),
		Value: payload,
		Time:  rec.CreatedAt,
		Headers: []kafka.Header{
			{Key: "submission_id", Value: []byte(rec.SubmissionID)},
		},
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.failed.Add(1)
		return errors.Wrap(err, errors.ErrCodeMessagingError, "failed to publish score record")
	}
	p.published.Add(1)
	return nil
}

// Counts reports published and failed message totals.
func (p *Producer) Counts() (published, failed int64) {
	return p.published.Load(), p.failed.Load()
}

func (p *Producer) Close() error {
	if !p.closed.CompareAndSwap(false, true) {
		return nil
	}
	return p.writer.Close()
}
