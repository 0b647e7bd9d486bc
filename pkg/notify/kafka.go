package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaNotifier publishes notifications as JSON, keyed by booking id so every
// message for one booking lands on the same partition in order.
type KafkaNotifier struct {
	writer messageWriter
	topic  string
	log    *zap.Logger
}

func NewKafkaNotifier(brokers []string, topic string, log *zap.Logger) *KafkaNotifier {
	writer := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireOne,
		MaxAttempts:            3,
		BatchTimeout:           10 * time.Millisecond,
		WriteTimeout:           5 * time.Second,
		AllowAutoTopicCreation: true,
	}
	return newKafkaNotifier(writer, topic, log)
}

func newKafkaNotifier(writer messageWriter, topic string, log *zap.Logger) *KafkaNotifier {
	return &KafkaNotifier{
		writer: writer,
		topic:  topic,
		log:    log.With(zap.String("notifier", "kafka"), zap.String("topic", topic)),
	}
}

func (k *KafkaNotifier) Notify(ctx context.Context, n Notification) error {
	value, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("marshal notification %s: %w", n.ID, err)
	}

	msg := kafka.Message{
		Key:   []byte(n.BookingID.String()),
		Value: value,
		Headers: []kafka.Header{
			{Key: "type", Value: []byte(n.Type)},
			{Key: "audience", Value: []byte(n.Audience)},
		},
		Time: n.OccurredAt,
	}

	if err := k.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("publish notification %s to %s: %w", n.ID, k.topic, err)
	}

	k.log.Debug("Notification published",
		zap.String("type", n.Type),
		zap.String("booking_id", n.BookingID.String()),
	)
	return nil
}

func (k *KafkaNotifier) Close() error {
	return k.writer.Close()
}
