package mq

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
)

// MessageType — тип сообщения в очереди.
type MessageType string

// Типы сообщений.
const (
	MessageTypeGradePending   MessageType = "grade.pending"
	MessageTypeGradeCompleted MessageType = "grade.completed"
)

// Publisher публикует сообщения в RabbitMQ.
type Publisher struct {
	conn   *Connection
	logger *slog.Logger
}

// NewPublisher создаёт новый Publisher.
func NewPublisher(conn *Connection, logger *slog.Logger) *Publisher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Publisher{
		conn:   conn,
		logger: logger,
	}
}

// Message — конверт сообщения.
type Message struct {
	// ID — уникальный идентификатор сообщения.
	ID string `json:"id"`

	// Type — тип сообщения.
	Type MessageType `json:"type"`

	// Payload — полезная нагрузка.
	Payload any `json:"payload"`

	// Timestamp — время создания.
	Timestamp time.Time `json:"timestamp"`
}

// NewMessage создаёт сообщение с новым ID.
func NewMessage(msgType MessageType, payload any) *Message {
	return &Message{
		ID:        uuid.New().String(),
		Type:      msgType,
		Payload:   payload,
		Timestamp: time.Now(),
	}
}

// GradePendingPayload — payload сообщения о новой проверке.
type GradePendingPayload struct {
	GradeID uuid.UUID `json:"grade_id"`
}

// GradeCompletedPayload — payload сообщения о завершённой проверке.
type GradeCompletedPayload struct {
	GradeID     uuid.UUID `json:"grade_id"`
	SolutionID  uuid.UUID `json:"solution_id"`
	LevelID     string    `json:"level_id"`
	Status      string    `json:"status"`
	PassedCases int       `json:"passed_cases"`
	TotalCases  int       `json:"total_cases"`
	Strides     int       `json:"strides"`
	Error       string    `json:"error,omitempty"`
}

// Publish публикует сообщение в указанный exchange с routing key.
func (p *Publisher) Publish(ctx context.Context, exchange Exchange, routingKey RoutingKey, msg *Message) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}

	return p.conn.WithChannel(ctx, func(ch *amqp.Channel) error {
		err := ch.PublishWithContext(
			ctx,
			string(exchange),   // exchange
			string(routingKey), // routing key
			false,
			false,
			amqp.Publishing{
				ContentType:  "application/json",
				DeliveryMode: amqp.Persistent,
				MessageId:    msg.ID,
				Type:         string(msg.Type),
				Timestamp:    msg.Timestamp,
				Body:         body,
			},
		)
		if err != nil {
			return fmt.Errorf("publish to %s/%s: %w", exchange, routingKey, err)
		}

		p.logger.Debug("published message",
			"exchange", exchange,
			"routing_key", routingKey,
			"message_id", msg.ID,
			"type", msg.Type,
		)
		return nil
	})
}

// PublishGradePending публикует событие о проверке, ожидающей выполнения.
// Потребитель: Grader.
func (p *Publisher) PublishGradePending(ctx context.Context, gradeID uuid.UUID) error {
	msg := NewMessage(MessageTypeGradePending, GradePendingPayload{GradeID: gradeID})
	return p.Publish(ctx, ExchangeGrades, RoutingKeyPending, msg)
}

// PublishGradeCompleted публикует итог проверки.
func (p *Publisher) PublishGradeCompleted(ctx context.Context, payload GradeCompletedPayload) error {
	msg := NewMessage(MessageTypeGradeCompleted, payload)
	return p.Publish(ctx, ExchangeGrades, RoutingKeyCompleted, msg)
}
