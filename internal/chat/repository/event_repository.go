package repository

import (
	"context"
	"encoding/json"

	"food_order_chat_service/internal/chat/domain"

	"github.com/segmentio/kafka-go"
)

// EventRepository definition the outbound reporting feed. Emission is
// best-effort: callers log failures and move on, the feed never gates a
// chat operation.
type EventRepository interface {
	Emit(ctx context.Context, event domain.ChatEvent) error
}

type kafkaEventRepository struct {
	writer *kafka.Writer
}

// NewKafkaEventRepository create an EventRepository over a kafka topic
func NewKafkaEventRepository(writer *kafka.Writer) EventRepository {
	return &kafkaEventRepository{writer: writer}
}

func (r *kafkaEventRepository) Emit(ctx context.Context, event domain.ChatEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return r.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(event.MessageID),
		Value: data,
	})
}
