package mq

import (
	"context"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Exchange — тип для имени обменника.
type Exchange string

// Queue — тип для имени очереди.
type Queue string

// RoutingKey — тип для ключа маршрутизации.
type RoutingKey string

// Exchanges — имена обменников.
const (
	ExchangeGrades Exchange = "pulse.grades"
	ExchangeDLQ    Exchange = "pulse.dlq"
)

// Queues — имена очередей.
const (
	QueueGradesPending   Queue = "grades.pending"
	QueueGradesCompleted Queue = "grades.completed"
	QueueDLQGrades       Queue = "dlq.grades"
)

// Routing keys.
const (
	RoutingKeyPending   RoutingKey = "pending"
	RoutingKeyCompleted RoutingKey = "completed"
	RoutingKeyDLQGrades RoutingKey = "grades"
)

// SetupTopology объявляет exchanges, queues и bindings. Идемпотентна.
func SetupTopology(ctx context.Context, conn *Connection) error {
	return conn.WithChannel(ctx, func(ch *amqp.Channel) error {
		if err := declareExchanges(ch); err != nil {
			return err
		}
		if err := declareQueues(ch); err != nil {
			return err
		}
		return bindQueues(ch)
	})
}

// declareExchanges создаёт обменники.
func declareExchanges(ch *amqp.Channel) error {
	for _, name := range []Exchange{ExchangeGrades, ExchangeDLQ} {
		err := ch.ExchangeDeclare(
			string(name), // name
			"direct",     // type
			true,         // durable
			false,        // auto-deleted
			false,        // internal
			false,        // no-wait
			nil,          // arguments
		)
		if err != nil {
			return fmt.Errorf("declare exchange %s: %w", name, err)
		}
	}
	return nil
}

// declareQueues создаёт очереди.
func declareQueues(ch *amqp.Channel) error {
	queues := []struct {
		name Queue
		args amqp.Table
	}{
		// grades.pending — с DLQ: сообщение, которое не удалось обработать
		// дважды, уходит в dlq.grades
		{QueueGradesPending, amqp.Table{
			"x-dead-letter-exchange":    string(ExchangeDLQ),
			"x-dead-letter-routing-key": string(RoutingKeyDLQGrades),
		}},

		// grades.completed — уведомления для внешних подписчиков
		{QueueGradesCompleted, nil},

		// dlq.grades — ручной разбор
		{QueueDLQGrades, nil},
	}

	for _, q := range queues {
		_, err := ch.QueueDeclare(
			string(q.name), // name
			true,           // durable
			false,          // delete when unused
			false,          // exclusive
			false,          // no-wait
			q.args,         // arguments
		)
		if err != nil {
			return fmt.Errorf("declare queue %s: %w", q.name, err)
		}
	}
	return nil
}

// Binding — привязка очереди к обменнику.
type Binding struct {
	Queue      Queue
	RoutingKey RoutingKey
	Exchange   Exchange
}

// Bindings возвращает все привязки топологии.
func Bindings() []Binding {
	return []Binding{
		{QueueGradesPending, RoutingKeyPending, ExchangeGrades},
		{QueueGradesCompleted, RoutingKeyCompleted, ExchangeGrades},
		{QueueDLQGrades, RoutingKeyDLQGrades, ExchangeDLQ},
	}
}

// bindQueues привязывает очереди к обменникам.
func bindQueues(ch *amqp.Channel) error {
	for _, b := range Bindings() {
		err := ch.QueueBind(
			string(b.Queue),      // queue name
			string(b.RoutingKey), // routing key
			string(b.Exchange),   // exchange
			false,                // no-wait
			nil,                  // arguments
		)
		if err != nil {
			return fmt.Errorf("bind queue %s to %s: %w", b.Queue, b.Exchange, err)
		}
	}
	return nil
}

// TopologyInfo возвращает описание топологии для логирования.
func TopologyInfo() string {
	return `
  Pulse RabbitMQ Topology:

    pulse.grades (direct)
    ├── grades.pending [routing: pending]
    │       Consumer: Grader
    │       DLQ: dlq.grades
    └── grades.completed [routing: completed]
            Consumer: external subscribers

    pulse.dlq (direct)
    └── dlq.grades [routing: grades]
            Manual processing
  `
}
