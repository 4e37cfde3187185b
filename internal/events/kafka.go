package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"eshop-api/internal/logger"

	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
)

var KafkaPublisherTracer = otel.Tracer("KafkaPublisher")

const (
	publishTimeout = 5 * time.Second
	batchTimeout   = 50 * time.Millisecond
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher writes JSON events keyed by entity id, so every event of
// one entity lands on the same partition.
type KafkaPublisher struct {
	writer messageWriter
}

func NewKafkaPublisher(brokers []string, topic string) *KafkaPublisher {
	return &KafkaPublisher{writer: newKafkaWriter(brokers, topic)}
}

// newKafkaWriter returns an async writer: WriteMessages only enqueues, and
// delivery failures surface in Completion. Close flushes what is queued.
func newKafkaWriter(brokers []string, topic string) *kafka.Writer {
	return &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireOne,
		AllowAutoTopicCreation: true,
		Async:                  true,
		MaxAttempts:            1,
		BatchTimeout:           batchTimeout,
		WriteTimeout:           publishTimeout,
		Completion:             logDeliveryFailure,
	}
}

func logDeliveryFailure(msgs []kafka.Message, err error) {
	if err == nil {
		return
	}
	for _, m := range msgs {
		logger.Instance().Warn("Event delivery failed",
			slog.String("event.id", string(m.Key)),
			slog.String("error", err.Error()),
		)
	}
}

func (p *KafkaPublisher) Publish(ctx context.Context, e Event) error {
	ctx, span := KafkaPublisherTracer.Start(ctx, "KafkaPublisher.Publish")
	defer span.End()
	logger.Info(ctx, "Publisher")

	data, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("kafka: json.Marshal failed: %w", err)
	}

	carrier := propagation.MapCarrier{}
	otel.GetTextMapPropagator().Inject(ctx, carrier)
	headers := make([]kafka.Header, 0, len(carrier)+1)
	headers = append(headers, kafka.Header{Key: "type", Value: []byte(e.Type)})
	for k, v := range carrier {
		headers = append(headers, kafka.Header{Key: k, Value: []byte(v)})
	}

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	msg := kafka.Message{Key: []byte(e.ID), Value: data, Headers: headers, Time: e.At}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		span.RecordError(err)
		return fmt.Errorf("kafka: write failed: %w", err)
	}
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}
