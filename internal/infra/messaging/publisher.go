// Package messaging は確定した入出庫を Kafka に流す。
package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"smartinventory/internal/domain/model"
	"smartinventory/internal/usecase"

	otelkafka "github.com/Trendyol/otel-kafka-konsumer"
	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/propagation"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const (
	DefaultTopic = "inventory.movements"
	clientID     = "smart-inventory"
	batchTimeout = 10 * time.Millisecond
	batchSize    = 1
	writeTimeout = 2 * time.Second
	maxAttempts  = 2
)

// MessageProducer は kafka へ1件書く
type MessageProducer interface {
	WriteMessage(ctx context.Context, msg kafka.Message) error
	Close() error
}

// 入出庫イベント（key は product_id、timestamp は RFC3339）
type MovementEvent struct {
	LogID     int64  `json:"log_id"`
	ProductID string `json:"product_id"`
	Direction string `json:"direction"`
	Timestamp string `json:"timestamp"`
}

func NewMovementEvent(log model.MovementLog) MovementEvent {
	ev := MovementEvent{
		LogID:     log.LogID,
		ProductID: log.ProductID,
		Direction: string(log.Direction()),
	}
	//タイムゾーン付き（RFC3339）で流す
	if ts, err := log.Timestamp(); err == nil {
		ev.Timestamp = ts.Format(time.RFC3339)
	}
	return ev
}

type KafkaPublisher struct {
	producer MessageProducer
	logger   *zap.Logger
}

var _ usecase.MovementPublisher = (*KafkaPublisher)(nil)

func NewKafkaPublisher(producer MessageProducer, logger *zap.Logger) *KafkaPublisher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &KafkaPublisher{producer: producer, logger: logger}
}

// NewKafkaWriter は trace を伝播する kafka writer を作る。
func NewKafkaWriter(broker, topic string, tp trace.TracerProvider) (MessageProducer, error) {
	if topic == "" {
		topic = DefaultTopic
	}

	baseWriter := &kafka.Writer{
		Addr:                   kafka.TCP(broker),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		BatchTimeout:           batchTimeout,
		BatchSize:              batchSize,
		WriteTimeout:           writeTimeout,
		MaxAttempts:            maxAttempts,
		AllowAutoTopicCreation: true,
	}

	writer, err := otelkafka.NewWriter(baseWriter,
		otelkafka.WithTracerProvider(tp),
		otelkafka.WithPropagator(propagation.TraceContext{}),
		otelkafka.WithAttributes(
			[]attribute.KeyValue{
				semconv.MessagingDestinationNameKey.String(topic),
				attribute.String("messaging.kafka.client_id", clientID),
			},
		),
	)
	if err != nil {
		return nil, fmt.Errorf("create kafka writer: %w", err)
	}
	return writer, nil
}

func (p *KafkaPublisher) PublishMovement(ctx context.Context, log model.MovementLog) error {
	ev := NewMovementEvent(log)
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal movement: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(ev.ProductID),
		Value: payload,
	}
	if err := p.producer.WriteMessage(ctx, msg); err != nil {
		return fmt.Errorf("publish movement %d: %w", ev.LogID, err)
	}

	p.logger.Debug("movement published", zap.Int64("log_id", ev.LogID), zap.String("product_id", ev.ProductID))
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.producer.Close()
}
