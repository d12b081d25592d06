// kafka.go

package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/segmentio/kafka-go"

	"shop-backend/internal/models"
)

const listingKey = "products"

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaNotifier writes each listing as one JSON message keyed "products".
type KafkaNotifier struct {
	w messageWriter
}

func NewKafkaNotifier(brokers []string, topic string) *KafkaNotifier {
	return &KafkaNotifier{w: &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.LeastBytes{},
		AllowAutoTopicCreation: true,
	}}
}

func (k *KafkaNotifier) Publish(ctx context.Context, products []models.Product) error {
	payload, err := json.Marshal(products)
	if err != nil {
		return fmt.Errorf("marshal listing: %w", err)
	}
	if err := k.w.WriteMessages(ctx, kafka.Message{Key: []byte(listingKey), Value: payload}); err != nil {
		return fmt.Errorf("write listing: %w", err)
	}
	return nil
}

func (k *KafkaNotifier) Close() error {
	return k.w.Close()
}
