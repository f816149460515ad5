package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"

	"taskhub/internal/model"
)

// TaskEventPublisher sends task lifecycle events to a durable queue.
type TaskEventPublisher struct {
	conn      *amqp.Connection
	queueName string
}

func NewTaskEventPublisher(conn *amqp.Connection, queueName string) (*TaskEventPublisher, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("open rabbitmq channel failed: %w", err)
	}
	defer ch.Close()

	if _, err := ch.QueueDeclare(queueName, true, false, false, false, nil); err != nil {
		return nil, fmt.Errorf("declare queue failed: %w", err)
	}

	return &TaskEventPublisher{
		conn:      conn,
		queueName: queueName,
	}, nil
}

func (p *TaskEventPublisher) Publish(ctx context.Context, event model.TaskEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal task event failed: %w", err)
	}

	ch, err := p.conn.Channel()
	if err != nil {
		return fmt.Errorf("open rabbitmq channel failed: %w", err)
	}
	defer ch.Close()

	if err := ch.PublishWithContext(
		ctx,
		"",
		p.queueName,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			Type:         event.Type,
			Timestamp:    event.OccurredAt,
			Body:         payload,
			DeliveryMode: amqp.Persistent,
		},
	); err != nil {
		return fmt.Errorf("publish task event failed: %w", err)
	}
	return nil
}
